package dto

import (
	"time"

	"github.com/candlepin/candlepin-sub005/internal/domain/pool"
	"github.com/candlepin/candlepin-sub005/internal/shared/query"
)

// ListAvailableRequest selects the pools an owner or consumer may draw
// from. At least one of OwnerKey and ConsumerUUID is required.
type ListAvailableRequest struct {
	OwnerKey       string
	ConsumerUUID   string
	ProductIDs     []string
	SubscriptionID string
	PoolIDs        []string
	ActiveOn       *time.Time
	AddFuture      bool
	OnlyFuture     bool
	After          *time.Time
	Matches        []string
	Attributes     map[string][]string
	IncludeUeber   bool
	Page           *query.PageRequest
}

// OversubscribedRequest names the subscriptions to check for one owner,
// keyed by subscription ID with the source entitlement ID as value.
type OversubscribedRequest struct {
	OwnerKey       string            `json:"owner_key" binding:"required"`
	BySubscription map[string]string `json:"subscriptions" binding:"required"`
}

// SubscriptionPoolsRequest names the subscriptions of one owner whose pools
// are wanted.
type SubscriptionPoolsRequest struct {
	OwnerKey        string
	SubscriptionIDs []string
}

// OwnerPoolStatusRequest asks about an owner's pools at ActiveOn, or now
// when ActiveOn is unset.
type OwnerPoolStatusRequest struct {
	OwnerKey string
	ActiveOn *time.Time
}

// OwnerPoolStatusResponse reports whether entitlement derived pools of the
// owner are active at ActiveOn.
type OwnerPoolStatusResponse struct {
	OwnerKey                  string    `json:"owner_key"`
	ActiveOn                  time.Time `json:"active_on"`
	HasActiveEntitlementPools bool      `json:"has_active_entitlement_pools"`
}

// PoolResponse represents the response for a single pool
type PoolResponse struct {
	ID                        string            `json:"id"`
	OwnerID                   string            `json:"owner_id"`
	Type                      string            `json:"type"`
	ProductID                 string            `json:"product_id"`
	ProductName               string            `json:"product_name,omitempty"`
	DerivedProductID          string            `json:"derived_product_id,omitempty"`
	ProvidedProductIDs        []string          `json:"provided_product_ids"`
	DerivedProvidedProductIDs []string          `json:"derived_provided_product_ids,omitempty"`
	Attributes                map[string]string `json:"attributes"`
	ProductAttributes         map[string]string `json:"product_attributes,omitempty"`
	Quantity                  int64             `json:"quantity"`
	Consumed                  int64             `json:"consumed"`
	Exported                  int64             `json:"exported"`
	StartDate                 time.Time         `json:"start_date"`
	EndDate                   time.Time         `json:"end_date"`
	SubscriptionID            string            `json:"subscription_id,omitempty"`
	SourceEntitlementID       string            `json:"source_entitlement_id,omitempty"`
	SourceStackID             string            `json:"source_stack_id,omitempty"`
	ContractNumber            string            `json:"contract_number,omitempty"`
	OrderNumber               string            `json:"order_number,omitempty"`
	AccountNumber             string            `json:"account_number,omitempty"`
	RestrictedToUsername      string            `json:"restricted_to_username,omitempty"`
}

// ListPoolsResponse is one page of pools.
type ListPoolsResponse struct {
	Pools      []*PoolResponse `json:"pools"`
	Total      int64           `json:"total"`
	Page       int             `json:"page"`
	PerPage    int             `json:"per_page"`
	TotalPages int             `json:"total_pages"`
}

func ToPoolResponse(p *pool.Pool) *PoolResponse {
	if p == nil {
		return nil
	}
	return &PoolResponse{
		ID:                        p.ID(),
		OwnerID:                   p.OwnerID(),
		Type:                      p.Type().String(),
		ProductID:                 p.ProductID(),
		ProductName:               p.ProductName(),
		DerivedProductID:          p.DerivedProductID(),
		ProvidedProductIDs:        p.ProvidedProductIDs(),
		DerivedProvidedProductIDs: p.DerivedProvidedProductIDs(),
		Attributes:                p.Attributes(),
		ProductAttributes:         p.ProductAttributes(),
		Quantity:                  p.Quantity(),
		Consumed:                  p.Consumed(),
		Exported:                  p.Exported(),
		StartDate:                 p.StartDate(),
		EndDate:                   p.EndDate(),
		SubscriptionID:            p.SubscriptionID(),
		SourceEntitlementID:       p.SourceEntitlementID(),
		SourceStackID:             p.SourceStackID(),
		ContractNumber:            p.ContractNumber(),
		OrderNumber:               p.OrderNumber(),
		AccountNumber:             p.AccountNumber(),
		RestrictedToUsername:      p.RestrictedToUsername(),
	}
}

func ToPoolResponses(pools []*pool.Pool) []*PoolResponse {
	out := make([]*PoolResponse, 0, len(pools))
	for _, p := range pools {
		out = append(out, ToPoolResponse(p))
	}
	return out
}

func ToListPoolsResponse(page *query.Page[*pool.Pool]) *ListPoolsResponse {
	return &ListPoolsResponse{
		Pools:      ToPoolResponses(page.Items),
		Total:      page.Total,
		Page:       page.Page,
		PerPage:    page.PerPage,
		TotalPages: page.TotalPages(),
	}
}

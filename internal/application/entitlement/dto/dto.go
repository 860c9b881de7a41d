package dto

import (
	"time"

	"github.com/candlepin/candlepin-sub005/internal/domain/entitlement"
)

// BindRequest consumes quantity from one pool for a consumer.
type BindRequest struct {
	ConsumerUUID string `json:"consumer_uuid" binding:"required"`
	PoolID       string `json:"pool_id" binding:"required"`
	Quantity     int64  `json:"quantity" binding:"omitempty,min=1"`
}

// ListConsumerEntitlementsRequest filters the entitlements of a consumer.
// ActiveOn keeps those whose pool is active at that instant. ProductID keeps
// those granting the product at ActiveOn, or now when ActiveOn is unset.
type ListConsumerEntitlementsRequest struct {
	ConsumerUUID string
	ActiveOn     *time.Time
	ProductID    string
}

// EntitlementResponse represents the response for a single entitlement
type EntitlementResponse struct {
	ID         string    `json:"id"`
	OwnerID    string    `json:"owner_id"`
	ConsumerID string    `json:"consumer_id"`
	PoolID     string    `json:"pool_id"`
	Quantity   int64     `json:"quantity"`
	StartDate  time.Time `json:"start_date"`
	EndDate    time.Time `json:"end_date"`
	Dirty      bool      `json:"dirty"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// ModifyingResponse lists the entitlements modifying another entitlement.
type ModifyingResponse struct {
	EntitlementID string   `json:"entitlement_id"`
	Modifying     []string `json:"modifying"`
}

func ToEntitlementResponse(e *entitlement.Entitlement) *EntitlementResponse {
	if e == nil {
		return nil
	}
	return &EntitlementResponse{
		ID:         e.ID(),
		OwnerID:    e.OwnerID(),
		ConsumerID: e.ConsumerID(),
		PoolID:     e.PoolID(),
		Quantity:   e.Quantity(),
		StartDate:  e.StartDate(),
		EndDate:    e.EndDate(),
		Dirty:      e.IsDirty(),
		CreatedAt:  e.CreatedAt(),
		UpdatedAt:  e.UpdatedAt(),
	}
}

func ToEntitlementResponses(ents []*entitlement.Entitlement) []*EntitlementResponse {
	out := make([]*EntitlementResponse, 0, len(ents))
	for _, e := range ents {
		out = append(out, ToEntitlementResponse(e))
	}
	return out
}

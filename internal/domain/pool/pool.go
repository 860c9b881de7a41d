// Package pool defines subscription pools, the merged attribute view used
// by every filter, and the query values describing available and
// oversubscribed pools.
package pool

import (
	"errors"
	"fmt"
	"maps"
	"slices"
	"time"

	"github.com/candlepin/candlepin-sub005/internal/domain/permission"
	"github.com/candlepin/candlepin-sub005/internal/domain/shared"
)

var (
	ErrPoolNotFound          = errors.New("pool not found")
	ErrOwnerRequired         = errors.New("pool owner is required")
	ErrProductRequired       = errors.New("pool product is required")
	ErrConflictingDerivation = errors.New("pool cannot derive from both an entitlement and a stack")
	ErrNegativeConsumed      = errors.New("pool consumed quantity cannot be negative")
)

// Params carries the fields of a Pool. Maps and slices are copied on
// construction so the caller may reuse them.
type Params struct {
	OwnerID                   string
	ProductID                 string
	ProductName               string
	ProductAttributes         map[string]string
	DerivedProductID          string
	ProvidedProductIDs        []string
	DerivedProvidedProductIDs []string
	Attributes                map[string]string
	Quantity                  int64
	Consumed                  int64
	Exported                  int64
	StartDate                 time.Time
	EndDate                   time.Time
	ActiveSubscription        bool
	SubscriptionID            string
	SubscriptionSubKey        string
	SourceEntitlementID       string
	SourceStackID             string
	ContractNumber            string
	OrderNumber               string
	AccountNumber             string
	RestrictedToUsername      string
	CreatedAt                 time.Time
	UpdatedAt                 time.Time
}

// Pool is a bounded grant of entitlement capacity for a product.
type Pool struct {
	id                        string
	ownerID                   string
	productID                 string
	productName               string
	productAttributes         map[string]string
	derivedProductID          string
	providedProductIDs        []string
	derivedProvidedProductIDs []string
	attributes                map[string]string
	quantity                  int64
	consumed                  int64
	exported                  int64
	startDate                 time.Time
	endDate                   time.Time
	activeSubscription        bool
	subscriptionID            string
	subscriptionSubKey        string
	sourceEntitlementID       string
	sourceStackID             string
	contractNumber            string
	orderNumber               string
	accountNumber             string
	restrictedToUsername      string
	version                   int
	createdAt                 time.Time
	updatedAt                 time.Time
}

// NewPool validates params and builds a new, unsaved pool.
func NewPool(p Params) (*Pool, error) {
	if p.OwnerID == "" {
		return nil, ErrOwnerRequired
	}
	if p.ProductID == "" {
		return nil, ErrProductRequired
	}
	if p.SourceEntitlementID != "" && p.SourceStackID != "" {
		return nil, ErrConflictingDerivation
	}
	if p.Consumed < 0 {
		return nil, ErrNegativeConsumed
	}
	if _, err := shared.NewDateRange(p.StartDate, p.EndDate); err != nil {
		return nil, fmt.Errorf("invalid pool dates: %w", err)
	}

	now := time.Now().UTC()
	if p.CreatedAt.IsZero() {
		p.CreatedAt = now
	}
	if p.UpdatedAt.IsZero() {
		p.UpdatedAt = now
	}

	return &Pool{
		ownerID:                   p.OwnerID,
		productID:                 p.ProductID,
		productName:               p.ProductName,
		productAttributes:         cloneAttrs(p.ProductAttributes),
		derivedProductID:          p.DerivedProductID,
		providedProductIDs:        slices.Clone(p.ProvidedProductIDs),
		derivedProvidedProductIDs: slices.Clone(p.DerivedProvidedProductIDs),
		attributes:                cloneAttrs(p.Attributes),
		quantity:                  p.Quantity,
		consumed:                  p.Consumed,
		exported:                  p.Exported,
		startDate:                 p.StartDate,
		endDate:                   p.EndDate,
		activeSubscription:        p.ActiveSubscription,
		subscriptionID:            p.SubscriptionID,
		subscriptionSubKey:        p.SubscriptionSubKey,
		sourceEntitlementID:       p.SourceEntitlementID,
		sourceStackID:             p.SourceStackID,
		contractNumber:            p.ContractNumber,
		orderNumber:               p.OrderNumber,
		accountNumber:             p.AccountNumber,
		restrictedToUsername:      p.RestrictedToUsername,
		version:                   1,
		createdAt:                 p.CreatedAt,
		updatedAt:                 p.UpdatedAt,
	}, nil
}

// ReconstructPool rebuilds a pool from persistence.
func ReconstructPool(id string, version int, p Params) (*Pool, error) {
	if id == "" {
		return nil, fmt.Errorf("pool ID cannot be empty")
	}
	pool, err := NewPool(p)
	if err != nil {
		return nil, err
	}
	pool.id = id
	pool.version = version
	return pool, nil
}

func (p *Pool) ID() string                   { return p.id }
func (p *Pool) OwnerID() string              { return p.ownerID }
func (p *Pool) ProductID() string            { return p.productID }
func (p *Pool) ProductName() string          { return p.productName }
func (p *Pool) DerivedProductID() string     { return p.derivedProductID }
func (p *Pool) Quantity() int64              { return p.quantity }
func (p *Pool) Consumed() int64              { return p.consumed }
func (p *Pool) Exported() int64              { return p.exported }
func (p *Pool) StartDate() time.Time         { return p.startDate }
func (p *Pool) EndDate() time.Time           { return p.endDate }
func (p *Pool) ActiveSubscription() bool     { return p.activeSubscription }
func (p *Pool) SubscriptionID() string       { return p.subscriptionID }
func (p *Pool) SubscriptionSubKey() string   { return p.subscriptionSubKey }
func (p *Pool) SourceEntitlementID() string  { return p.sourceEntitlementID }
func (p *Pool) SourceStackID() string        { return p.sourceStackID }
func (p *Pool) ContractNumber() string       { return p.contractNumber }
func (p *Pool) OrderNumber() string          { return p.orderNumber }
func (p *Pool) AccountNumber() string        { return p.accountNumber }
func (p *Pool) RestrictedToUsername() string { return p.restrictedToUsername }
func (p *Pool) Version() int                 { return p.version }
func (p *Pool) CreatedAt() time.Time         { return p.createdAt }
func (p *Pool) UpdatedAt() time.Time         { return p.updatedAt }

// Attributes returns a copy of the pool-level attributes.
func (p *Pool) Attributes() map[string]string {
	return maps.Clone(p.attributes)
}

// ProductAttributes returns a copy of the top-level product attributes.
func (p *Pool) ProductAttributes() map[string]string {
	return maps.Clone(p.productAttributes)
}

func (p *Pool) ProvidedProductIDs() []string {
	return slices.Clone(p.providedProductIDs)
}

func (p *Pool) DerivedProvidedProductIDs() []string {
	return slices.Clone(p.derivedProvidedProductIDs)
}

// ProvidedAndTopLevelProductIDs returns the product ID followed by the
// provided product IDs.
func (p *Pool) ProvidedAndTopLevelProductIDs() []string {
	ids := make([]string, 0, 1+len(p.providedProductIDs))
	ids = append(ids, p.productID)
	return append(ids, p.providedProductIDs...)
}

// DateRange returns the pool validity window.
func (p *Pool) DateRange() shared.DateRange {
	return shared.DateRange{Start: p.startDate, End: p.endDate}
}

// IsActiveOn reports whether t falls inside the validity window.
func (p *Pool) IsActiveOn(t time.Time) bool {
	return p.DateRange().Contains(t)
}

// IsExpired reports whether the pool ended before now.
func (p *Pool) IsExpired(now time.Time) bool {
	return p.endDate.Before(now)
}

// IsUnlimited reports whether the pool has no quantity bound.
func (p *Pool) IsUnlimited() bool {
	return p.quantity < 0
}

// IsOversubscribed reports whether more is consumed than the pool holds.
// Unlimited pools are never oversubscribed.
func (p *Pool) IsOversubscribed() bool {
	return p.quantity >= 0 && p.consumed > p.quantity
}

// AvailableQuantity returns the unconsumed quantity, or -1 when unlimited.
func (p *Pool) AvailableQuantity() int64 {
	if p.IsUnlimited() {
		return -1
	}
	if p.consumed >= p.quantity {
		return 0
	}
	return p.quantity - p.consumed
}

// SetConsumed records the recomputed consumed count.
func (p *Pool) SetConsumed(consumed int64) error {
	if consumed < 0 {
		return ErrNegativeConsumed
	}
	p.consumed = consumed
	p.updatedAt = time.Now().UTC()
	return nil
}

// SetQuantity changes the pool capacity.
func (p *Pool) SetQuantity(quantity int64) {
	p.quantity = quantity
	p.updatedAt = time.Now().UTC()
}

// SetID assigns the persistent ID once.
func (p *Pool) SetID(id string) error {
	if p.id != "" {
		return fmt.Errorf("pool ID is already set")
	}
	if id == "" {
		return fmt.Errorf("pool ID cannot be empty")
	}
	p.id = id
	return nil
}

// IncrementVersion is called after a successful optimistic update.
func (p *Pool) IncrementVersion() {
	p.version++
}

// PermissionSubject exposes the fields permission restrictions inspect.
func (p *Pool) PermissionSubject() permission.Subject {
	return permission.Subject{
		OwnerID:    p.ownerID,
		Username:   p.restrictedToUsername,
		Attributes: MergedAttributes(p),
	}
}

func cloneAttrs(m map[string]string) map[string]string {
	if m == nil {
		return make(map[string]string)
	}
	return maps.Clone(m)
}

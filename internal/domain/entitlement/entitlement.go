// Package entitlement defines the consumption of pool capacity by a
// consumer and the detection of entitlements that modify one another.
package entitlement

import (
	"fmt"
	"slices"
	"time"

	"github.com/candlepin/candlepin-sub005/internal/domain/shared"
)

// Params carries the fields of an Entitlement.
type Params struct {
	OwnerID         string
	ConsumerID      string
	PoolID          string
	Quantity        int64
	EndDateOverride *time.Time
	Pool            PoolSnapshot
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// Entitlement links one consumer to one pool. Its validity dates come from
// the pool unless an end date override is set.
type Entitlement struct {
	id              string
	ownerID         string
	consumerID      string
	poolID          string
	quantity        int64
	endDateOverride *time.Time
	dirty           bool
	pool            PoolSnapshot
	version         int
	createdAt       time.Time
	updatedAt       time.Time
}

// NewEntitlement validates params and builds an unsaved entitlement.
func NewEntitlement(p Params) (*Entitlement, error) {
	if p.OwnerID == "" {
		return nil, ErrOwnerRequired
	}
	if p.ConsumerID == "" {
		return nil, ErrConsumerRequired
	}
	if p.PoolID == "" {
		return nil, ErrPoolRequired
	}
	if p.Quantity < 1 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidQuantity, p.Quantity)
	}

	now := time.Now().UTC()
	if p.CreatedAt.IsZero() {
		p.CreatedAt = now
	}
	if p.UpdatedAt.IsZero() {
		p.UpdatedAt = now
	}

	var override *time.Time
	if p.EndDateOverride != nil {
		t := *p.EndDateOverride
		override = &t
	}

	return &Entitlement{
		ownerID:         p.OwnerID,
		consumerID:      p.ConsumerID,
		poolID:          p.PoolID,
		quantity:        p.Quantity,
		endDateOverride: override,
		pool:            p.Pool.clone(),
		version:         1,
		createdAt:       p.CreatedAt,
		updatedAt:       p.UpdatedAt,
	}, nil
}

// ReconstructEntitlement rebuilds an entitlement from persistence.
func ReconstructEntitlement(id string, version int, dirty bool, p Params) (*Entitlement, error) {
	if id == "" {
		return nil, fmt.Errorf("entitlement ID cannot be empty")
	}
	e, err := NewEntitlement(p)
	if err != nil {
		return nil, err
	}
	e.id = id
	e.version = version
	e.dirty = dirty
	return e, nil
}

func (e *Entitlement) ID() string           { return e.id }
func (e *Entitlement) OwnerID() string      { return e.ownerID }
func (e *Entitlement) ConsumerID() string   { return e.consumerID }
func (e *Entitlement) PoolID() string       { return e.poolID }
func (e *Entitlement) Quantity() int64      { return e.quantity }
func (e *Entitlement) IsDirty() bool        { return e.dirty }
func (e *Entitlement) Pool() PoolSnapshot   { return e.pool.clone() }
func (e *Entitlement) Version() int         { return e.version }
func (e *Entitlement) CreatedAt() time.Time { return e.createdAt }
func (e *Entitlement) UpdatedAt() time.Time { return e.updatedAt }

// EndDateOverride returns the override, or nil when the pool end applies.
func (e *Entitlement) EndDateOverride() *time.Time {
	if e.endDateOverride == nil {
		return nil
	}
	t := *e.endDateOverride
	return &t
}

// StartDate is the pool start date.
func (e *Entitlement) StartDate() time.Time {
	return e.pool.StartDate
}

// EndDate is the override when set, otherwise the pool end date.
func (e *Entitlement) EndDate() time.Time {
	if e.endDateOverride != nil {
		return *e.endDateOverride
	}
	return e.pool.EndDate
}

// DateRange returns the effective validity window.
func (e *Entitlement) DateRange() shared.DateRange {
	return shared.DateRange{Start: e.StartDate(), End: e.EndDate()}
}

// PoolDateRange returns the validity window of the backing pool.
func (e *Entitlement) PoolDateRange() shared.DateRange {
	return shared.DateRange{Start: e.pool.StartDate, End: e.pool.EndDate}
}

// ProductIDs returns the pool product followed by its provided products.
func (e *Entitlement) ProductIDs() []string {
	ids := make([]string, 0, 1+len(e.pool.ProvidedProductIDs))
	ids = append(ids, e.pool.ProductID)
	return append(ids, e.pool.ProvidedProductIDs...)
}

// SetID assigns the persistent ID once.
func (e *Entitlement) SetID(id string) error {
	if e.id != "" {
		return fmt.Errorf("entitlement ID is already set")
	}
	if id == "" {
		return fmt.Errorf("entitlement ID cannot be empty")
	}
	e.id = id
	return nil
}

// SetQuantity changes the consumed quantity.
func (e *Entitlement) SetQuantity(quantity int64) error {
	if quantity < 1 {
		return fmt.Errorf("%w: %d", ErrInvalidQuantity, quantity)
	}
	e.quantity = quantity
	e.updatedAt = time.Now().UTC()
	return nil
}

// MarkDirty flags the entitlement for certificate regeneration.
func (e *Entitlement) MarkDirty() {
	e.dirty = true
	e.updatedAt = time.Now().UTC()
}

func (e *Entitlement) IncrementVersion() {
	e.version++
}

// IDs returns the IDs of ents in order.
func IDs(ents []*Entitlement) []string {
	ids := make([]string, 0, len(ents))
	for _, e := range ents {
		ids = append(ids, e.id)
	}
	return ids
}

// PoolActiveOn keeps the entitlements whose pool window contains t.
func PoolActiveOn(ents []*Entitlement, t time.Time) []*Entitlement {
	return slices.DeleteFunc(slices.Clone(ents), func(e *Entitlement) bool {
		return !e.PoolDateRange().Contains(t)
	})
}

// PoolOverlapping keeps the entitlements whose pool window overlaps dr.
func PoolOverlapping(ents []*Entitlement, dr shared.DateRange) []*Entitlement {
	return slices.DeleteFunc(slices.Clone(ents), func(e *Entitlement) bool {
		return !shared.Overlaps(dr, e.PoolDateRange())
	})
}

// SortByID orders ents by ID in place.
func SortByID(ents []*Entitlement) {
	slices.SortFunc(ents, func(a, b *Entitlement) int {
		switch {
		case a.id < b.id:
			return -1
		case a.id > b.id:
			return 1
		}
		return 0
	})
}

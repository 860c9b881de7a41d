package entitlement

import (
	"context"
	"time"

	"github.com/candlepin/candlepin-sub005/internal/domain/shared"
)

// Repository persists entitlements.
type Repository interface {
	Create(ctx context.Context, e *Entitlement) error

	// Delete removes the entitlement. Deleting an absent entitlement is not
	// an error.
	Delete(ctx context.Context, id string) error

	// GetByID returns nil, nil when the entitlement does not exist.
	GetByID(ctx context.Context, id string) (*Entitlement, error)

	ListByConsumer(ctx context.Context, consumerID string) ([]*Entitlement, error)

	ListByPool(ctx context.Context, poolID string) ([]*Entitlement, error)

	// ListActiveAndFutureByConsumerAndDate returns the consumer's
	// entitlements whose pool window contains activeOn, boundaries included.
	ListActiveAndFutureByConsumerAndDate(ctx context.Context, consumerID string, activeOn time.Time) ([]*Entitlement, error)

	// ListModifying returns the consumer's entitlements whose pool window
	// overlaps dr and whose pool product carries content modifying any of
	// productIDs.
	ListModifying(ctx context.Context, consumerID string, productIDs []string, dr shared.DateRange) ([]*Entitlement, error)

	// ListProviding returns the consumer's entitlements whose pool window
	// overlaps dr and whose pool grants productID directly or as a provided
	// product.
	ListProviding(ctx context.Context, consumerID, productID string, dr shared.DateRange) ([]*Entitlement, error)

	// MarkDirty flags the entitlements for certificate regeneration.
	MarkDirty(ctx context.Context, ids []string) error
}

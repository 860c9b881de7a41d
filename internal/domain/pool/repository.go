package pool

import (
	"context"
	"time"

	"github.com/candlepin/candlepin-sub005/internal/shared/query"
)

// Repository persists pools and executes pool queries.
type Repository interface {
	Create(ctx context.Context, p *Pool) error
	// Update stores p when its version matches and fails with a concurrency
	// error otherwise.
	Update(ctx context.Context, p *Pool) error
	// GetByID returns nil, nil when the pool does not exist.
	GetByID(ctx context.Context, id string) (*Pool, error)
	// ListAvailable executes q. When q needs post-filtering the total is
	// the exact count after the filter ran.
	ListAvailable(ctx context.Context, q AvailabilityQuery) (*query.Page[*Pool], error)
	FindOversubscribed(ctx context.Context, q OversubscriptionQuery) ([]*Pool, error)
	// LockPools takes row locks on the pools in ID order and returns them.
	// It must run inside a transaction.
	LockPools(ctx context.Context, ids []string) ([]*Pool, error)
	// RecalculateConsumed sets each pool's consumed count to the sum of its
	// entitlement quantities.
	RecalculateConsumed(ctx context.Context, poolIDs []string) error
	ListBySourceEntitlements(ctx context.Context, entitlementIDs []string) ([]*Pool, error)
	GetBySubscriptionIDs(ctx context.Context, ownerID string, subscriptionIDs []string) ([]*Pool, error)
	// HasActiveEntitlementPools reports whether any pool of ownerID that is
	// active on date derives from an entitlement.
	HasActiveEntitlementPools(ctx context.Context, ownerID string, date time.Time) (bool, error)
	// ListExpired returns up to limit pools that ended before now and have
	// no entitlements. A limit below one means no limit.
	ListExpired(ctx context.Context, now time.Time, limit int) ([]*Pool, error)
	// BatchDelete removes the pools and their children and returns the
	// number of pools removed.
	BatchDelete(ctx context.Context, ids []string) (int64, error)
}

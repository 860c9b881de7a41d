package job

import (
	"context"

	"github.com/candlepin/candlepin-sub005/internal/shared/query"
)

// Filter narrows job listings. Empty fields match everything.
type Filter struct {
	JobKey  string
	OwnerID string
	States  []State
	Page    *query.PageRequest
}

// Repository persists job records.
type Repository interface {
	Create(ctx context.Context, s *Status) error
	// Update stores s when its version matches and fails with a concurrency
	// error otherwise.
	Update(ctx context.Context, s *Status) error
	// GetByID returns nil, nil when the job does not exist.
	GetByID(ctx context.Context, id string) (*Status, error)
	List(ctx context.Context, f Filter) (*query.Page[*Status], error)
}

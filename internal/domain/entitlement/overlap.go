package entitlement

import (
	"context"
	"fmt"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/candlepin/candlepin-sub005/internal/domain/product"
	"github.com/candlepin/candlepin-sub005/internal/shared/db"
	"github.com/candlepin/candlepin-sub005/internal/shared/logger"
)

// OverlapResolver finds the entitlements whose products modify the
// products granted by another entitlement of the same consumer.
type OverlapResolver struct {
	repo     Repository
	products product.Resolver
	logger   logger.Interface
}

func NewOverlapResolver(repo Repository, products product.Resolver, logger logger.Interface) *OverlapResolver {
	return &OverlapResolver{
		repo:     repo,
		products: products,
		logger:   logger,
	}
}

// FindModifyingEntitlements returns the IDs of the consumer's other
// entitlements whose pool overlaps e and whose product carries content
// modifying e's product or one of its provided products.
func (r *OverlapResolver) FindModifyingEntitlements(ctx context.Context, e *Entitlement) ([]string, error) {
	all, err := r.repo.ListByConsumer(ctx, e.ConsumerID())
	if err != nil {
		return nil, fmt.Errorf("failed to list consumer entitlements: %w", err)
	}

	byProduct := make(map[string][]*Entitlement)
	for _, other := range PoolOverlapping(all, e.DateRange()) {
		if other.ID() == e.ID() {
			continue
		}
		for _, id := range other.ProductIDs() {
			byProduct[id] = append(byProduct[id], other)
		}
	}
	if len(byProduct) == 0 {
		return []string{}, nil
	}

	ids := make([]string, 0, len(byProduct))
	for id := range byProduct {
		ids = append(ids, id)
	}
	products, err := r.fetchProducts(ctx, e.OwnerID(), ids)
	if err != nil {
		return nil, err
	}

	modified := e.ProductIDs()
	seen := make(map[string]struct{})
	result := make([]string, 0)
	for _, p := range products {
		if !p.ModifiesAny(modified) {
			continue
		}
		for _, other := range byProduct[p.ID()] {
			if _, dup := seen[other.ID()]; dup {
				continue
			}
			seen[other.ID()] = struct{}{}
			result = append(result, other.ID())
		}
	}

	r.logger.Debugw("resolved modifying entitlements",
		"entitlement_id", e.ID(),
		"candidates", len(byProduct),
		"modifying", len(result),
	)
	return result, nil
}

// fetchProducts resolves ids one block at a time. Blocks are fetched
// concurrently outside of a transaction.
func (r *OverlapResolver) fetchProducts(ctx context.Context, ownerID string, ids []string) ([]*product.Product, error) {
	blocks := db.Partition(ids, db.InBlockSize())
	if len(blocks) <= 1 || db.InTransaction(ctx) {
		var out []*product.Product
		for _, block := range blocks {
			found, err := r.products.GetProductsByIDs(ctx, ownerID, block)
			if err != nil {
				return nil, fmt.Errorf("failed to fetch products: %w", err)
			}
			out = append(out, found...)
		}
		return out, nil
	}

	var (
		mu  sync.Mutex
		out []*product.Product
	)
	g, gctx := errgroup.WithContext(ctx)
	for _, block := range blocks {
		g.Go(func() error {
			found, err := r.products.GetProductsByIDs(gctx, ownerID, block)
			if err != nil {
				return fmt.Errorf("failed to fetch products: %w", err)
			}
			mu.Lock()
			out = append(out, found...)
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

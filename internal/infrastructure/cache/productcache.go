package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"math/rand/v2"
	"slices"
	"sort"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"

	"github.com/candlepin/candlepin-sub005/internal/domain/product"
	"github.com/candlepin/candlepin-sub005/internal/shared/logger"
)

const (
	productKeyPrefix    = "product:"
	productTTLJitterDiv = 5               // up to TTL/5 extra, spreads expiry
	productNullTTL      = 1 * time.Minute // unknown IDs are remembered briefly
)

var _ product.Repository = (*CachedProductRepository)(nil)

// cachedContent is the cache form of a product.Content.
type cachedContent struct {
	Params  product.ContentParams `json:"params"`
	Enabled bool                  `json:"enabled"`
}

// cachedProduct is the cache form of a product. A NotFound entry marks an ID
// the owner does not have.
type cachedProduct struct {
	NotFound            bool              `json:"not_found,omitempty"`
	UUID                string            `json:"uuid,omitempty"`
	ID                  string            `json:"id,omitempty"`
	Name                string            `json:"name,omitempty"`
	Multiplier          int64             `json:"multiplier,omitempty"`
	Attributes          map[string]string `json:"attributes,omitempty"`
	DependentProductIDs []string          `json:"dependent_product_ids,omitempty"`
	ProvidedProductIDs  []string          `json:"provided_product_ids,omitempty"`
	Content             []cachedContent   `json:"content,omitempty"`
}

func toCachedProduct(p *product.Product) cachedProduct {
	c := cachedProduct{
		UUID:                p.UUID(),
		ID:                  p.ID(),
		Name:                p.Name(),
		Multiplier:          p.Multiplier(),
		Attributes:          p.Attributes(),
		DependentProductIDs: p.DependentProductIDs(),
		ProvidedProductIDs:  p.ProvidedProductIDs(),
	}
	for _, pc := range p.Content() {
		c.Content = append(c.Content, cachedContent{Params: pc.Content.Params(), Enabled: pc.Enabled})
	}
	return c
}

func (c cachedProduct) toProduct() (*product.Product, error) {
	content := make([]product.ProductContent, 0, len(c.Content))
	for _, cc := range c.Content {
		ct, err := product.NewContent(cc.Params)
		if err != nil {
			return nil, err
		}
		content = append(content, product.ProductContent{Content: ct, Enabled: cc.Enabled})
	}
	return product.NewProduct(product.Params{
		UUID:                c.UUID,
		ID:                  c.ID,
		Name:                c.Name,
		Multiplier:          c.Multiplier,
		Attributes:          c.Attributes,
		DependentProductIDs: c.DependentProductIDs,
		ProvidedProductIDs:  c.ProvidedProductIDs,
		Content:             content,
	})
}

// CachedProductRepository serves GetProductsByIDs from redis and falls back
// to the wrapped repository for misses. Concurrent misses for the same IDs
// share one lookup. Writes go to the wrapped repository and evict the
// affected entries.
type CachedProductRepository struct {
	product.Repository
	client *redis.Client
	ttl    time.Duration
	group  singleflight.Group
	logger logger.Interface
}

func NewCachedProductRepository(inner product.Repository, client *redis.Client, ttl time.Duration, logger logger.Interface) *CachedProductRepository {
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	return &CachedProductRepository{
		Repository: inner,
		client:     client,
		ttl:        ttl,
		logger:     logger,
	}
}

func (r *CachedProductRepository) key(ownerID, id string) string {
	return productKeyPrefix + ownerID + ":" + id
}

// GetProductsByIDs returns the owner's products sorted by ID. A redis
// failure degrades to reading through the wrapped repository.
func (r *CachedProductRepository) GetProductsByIDs(ctx context.Context, ownerID string, ids []string) ([]*product.Product, error) {
	ids = uniqueSorted(ids)
	if len(ids) == 0 {
		return nil, nil
	}

	found, missing, err := r.fromCache(ctx, ownerID, ids)
	if err != nil {
		r.logger.Warnw("product cache read failed, falling back to database", "owner_id", ownerID, "error", err)
		return r.Repository.GetProductsByIDs(ctx, ownerID, ids)
	}

	if len(missing) > 0 {
		flightKey := ownerID + "|" + strings.Join(missing, ",")
		v, err, _ := r.group.Do(flightKey, func() (any, error) {
			return r.load(ctx, ownerID, missing)
		})
		if err != nil {
			return nil, err
		}
		found = append(found, v.([]*product.Product)...)
	}

	sort.Slice(found, func(i, j int) bool { return found[i].ID() < found[j].ID() })
	return found, nil
}

func (r *CachedProductRepository) fromCache(ctx context.Context, ownerID string, ids []string) ([]*product.Product, []string, error) {
	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = r.key(ownerID, id)
	}
	values, err := r.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read products from cache: %w", err)
	}

	var found []*product.Product
	var missing []string
	for i, v := range values {
		raw, ok := v.(string)
		if !ok {
			missing = append(missing, ids[i])
			continue
		}
		var entry cachedProduct
		if err := json.Unmarshal([]byte(raw), &entry); err != nil {
			r.logger.Warnw("dropping corrupt product cache entry", "key", keys[i], "error", err)
			missing = append(missing, ids[i])
			continue
		}
		if entry.NotFound {
			continue
		}
		p, err := entry.toProduct()
		if err != nil {
			missing = append(missing, ids[i])
			continue
		}
		found = append(found, p)
	}
	return found, missing, nil
}

// load reads ids from the wrapped repository and caches every result,
// including null markers for the IDs it did not return.
func (r *CachedProductRepository) load(ctx context.Context, ownerID string, ids []string) ([]*product.Product, error) {
	products, err := r.Repository.GetProductsByIDs(ctx, ownerID, ids)
	if err != nil {
		return nil, err
	}

	pipe := r.client.Pipeline()
	seen := make(map[string]struct{}, len(products))
	for _, p := range products {
		seen[p.ID()] = struct{}{}
		data, err := json.Marshal(toCachedProduct(p))
		if err != nil {
			return nil, fmt.Errorf("failed to encode product %s: %w", p.ID(), err)
		}
		pipe.Set(ctx, r.key(ownerID, p.ID()), data, r.jitteredTTL())
	}
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		data, _ := json.Marshal(cachedProduct{NotFound: true})
		pipe.Set(ctx, r.key(ownerID, id), data, productNullTTL)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		r.logger.Warnw("failed to cache products", "owner_id", ownerID, "count", len(ids), "error", err)
	}

	return products, nil
}

func (r *CachedProductRepository) jitteredTTL() time.Duration {
	jitter := r.ttl / productTTLJitterDiv
	if jitter <= 0 {
		return r.ttl
	}
	return r.ttl + rand.N(jitter)
}

// Save stores p and evicts its cache entry for ownerID.
func (r *CachedProductRepository) Save(ctx context.Context, ownerID string, p *product.Product) error {
	if err := r.Repository.Save(ctx, ownerID, p); err != nil {
		return err
	}
	return r.Invalidate(ctx, ownerID, p.ID())
}

// RemoveFromOwner unlinks the product and evicts its cache entry.
func (r *CachedProductRepository) RemoveFromOwner(ctx context.Context, ownerID, productID string) error {
	if err := r.Repository.RemoveFromOwner(ctx, ownerID, productID); err != nil {
		return err
	}
	return r.Invalidate(ctx, ownerID, productID)
}

// Invalidate evicts the cached products of ownerID with the given IDs.
func (r *CachedProductRepository) Invalidate(ctx context.Context, ownerID string, ids ...string) error {
	if len(ids) == 0 {
		return nil
	}
	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = r.key(ownerID, id)
	}
	if err := r.client.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("failed to invalidate product cache: %w", err)
	}
	return nil
}

func uniqueSorted(ids []string) []string {
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if id != "" {
			out = append(out, id)
		}
	}
	slices.Sort(out)
	return slices.Compact(out)
}

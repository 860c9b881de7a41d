package consumer

import (
	"context"
	"strings"

	lru "github.com/hashicorp/golang-lru/v2"
)

// DefaultHostCacheSize bounds one request's memoized host lookups.
const DefaultHostCacheSize = 256

type hostKey struct {
	guestID string
	ownerID string
}

// HostCache memoizes guest to host lookups for the lifetime of one request.
// A cache must never be shared across requests. Absent hosts are memoized
// as nil.
type HostCache struct {
	entries *lru.Cache[hostKey, *Consumer]
}

// NewHostCache returns an empty cache holding at most size lookups.
func NewHostCache(size int) *HostCache {
	if size <= 0 {
		size = DefaultHostCacheSize
	}
	// lru.New only fails for non-positive sizes.
	entries, _ := lru.New[hostKey, *Consumer](size)
	return &HostCache{entries: entries}
}

func newHostKey(guestID, ownerID string) hostKey {
	return hostKey{guestID: strings.ToLower(guestID), ownerID: ownerID}
}

// Get returns the memoized host of guestID in ownerID. The second result is
// false when the lookup has not been made yet.
func (c *HostCache) Get(guestID, ownerID string) (*Consumer, bool) {
	return c.entries.Get(newHostKey(guestID, ownerID))
}

// Put memoizes host, which may be nil, for guestID in ownerID.
func (c *HostCache) Put(guestID, ownerID string, host *Consumer) {
	c.entries.Add(newHostKey(guestID, ownerID), host)
}

// Len returns the number of memoized lookups.
func (c *HostCache) Len() int {
	return c.entries.Len()
}

type hostCacheKey struct{}

// WithHostCache returns a context carrying cache.
func WithHostCache(ctx context.Context, cache *HostCache) context.Context {
	return context.WithValue(ctx, hostCacheKey{}, cache)
}

// HostCacheFrom returns the cache carried by ctx, if any.
func HostCacheFrom(ctx context.Context) (*HostCache, bool) {
	cache, ok := ctx.Value(hostCacheKey{}).(*HostCache)
	return cache, ok && cache != nil
}

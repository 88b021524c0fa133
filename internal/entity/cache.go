package entity

import (
	"context"
	"strings"
	"time"

	"vizify/internal/cache/memory"
)

type lookup struct {
	url string
	ok  bool
}

// Cached wraps a Resolver with an LRU+TTL cache. Misses are cached too so a
// term that has no page does not hit the API on every request.
type Cached struct {
	next  Resolver
	cache *memory.LRUTTL[string, lookup]
}

func NewCached(next Resolver, maxEntries int, ttl time.Duration) *Cached {
	if maxEntries <= 0 {
		maxEntries = 512
	}
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &Cached{
		next:  next,
		cache: memory.NewLRUTTL[string, lookup](maxEntries, ttl),
	}
}

func (c *Cached) Resolve(ctx context.Context, term string) (string, bool) {
	key := strings.ToLower(strings.TrimSpace(term))
	if key == "" {
		return "", false
	}
	if hit, ok := c.cache.Get(key); ok {
		return hit.url, hit.ok
	}
	url, ok := c.next.Resolve(ctx, term)
	c.cache.Set(key, lookup{url: url, ok: ok})
	return url, ok
}

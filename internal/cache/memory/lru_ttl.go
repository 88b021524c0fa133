// Package memory provides the in-process cache used in front of slow
// upstreams.
package memory

import (
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

// LRUTTL is a threadsafe LRU cache with per-entry TTL. Entity lookups
// sit in front of a remote API, so stale entries age out instead of
// pinning the first answer forever. A nil *LRUTTL never caches and
// never panics.
type LRUTTL[K comparable, V any] struct {
	lru *expirable.LRU[K, V]
}

// NewLRUTTL caps the cache at maxEntries and expires entries after ttl.
// Non-positive arguments fall back to a single entry and 30 seconds; an
// unlimited or immortal cache is never what a lookup cache wants.
func NewLRUTTL[K comparable, V any](maxEntries int, ttl time.Duration) *LRUTTL[K, V] {
	if maxEntries <= 0 {
		maxEntries = 1
	}
	if ttl <= 0 {
		ttl = 30 * time.Second
	}
	return &LRUTTL[K, V]{lru: expirable.NewLRU[K, V](maxEntries, nil, ttl)}
}

func (c *LRUTTL[K, V]) Get(key K) (V, bool) {
	if c == nil {
		var zero V
		return zero, false
	}
	return c.lru.Get(key)
}

func (c *LRUTTL[K, V]) Set(key K, value V) {
	if c == nil {
		return
	}
	c.lru.Add(key, value)
}

func (c *LRUTTL[K, V]) Delete(key K) {
	if c == nil {
		return
	}
	c.lru.Remove(key)
}

func (c *LRUTTL[K, V]) Len() int {
	if c == nil {
		return 0
	}
	return c.lru.Len()
}

func (c *LRUTTL[K, V]) Clear() {
	if c == nil {
		return
	}
	c.lru.Purge()
}

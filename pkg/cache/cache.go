// Package cache provides the content-addressed document outcome cache.
//
// Parsing, classifying and extracting a definition document is pure in the
// document's namespace, origin and bytes, so per-document outcomes can be
// cached under a digest key and reused across runs. The registry's global
// admission step is never cached. Cache failures are advisory: a broken or
// cold cache slows a run down, it never changes its result.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"sync/atomic"
	"time"

	lru "github.com/hashicorp/golang-lru/v2/expirable"
)

// ErrCacheMiss is returned by Get when the key is not present.
var ErrCacheMiss = errors.New("cache miss")

// Cache stores serialized per-document outcomes under digest keys.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Close() error
}

// Key derives the cache key for one document. The origin participates in the
// digest because extracted entities carry their origin for attribution; the
// same bytes under a different path must not share an entry.
func Key(namespace, origin string, data []byte) string {
	h := sha256.New()
	h.Write([]byte(namespace))
	h.Write([]byte{0})
	h.Write([]byte(origin))
	h.Write([]byte{0})
	h.Write(data)
	return "axle:doc:" + hex.EncodeToString(h.Sum(nil))
}

// Stats reports hit and miss counts for a cache instance.
type Stats struct {
	Hits   int64 `json:"hits"`
	Misses int64 `json:"misses"`
}

// MemoryCache is an in-process LRU cache with per-entry TTL.
type MemoryCache struct {
	cache  *lru.LRU[string, []byte]
	hits   atomic.Int64
	misses atomic.Int64
}

// NewMemoryCache creates an LRU cache holding up to maxEntries outcomes for
// at most ttl each. A zero ttl disables expiry.
func NewMemoryCache(maxEntries int, ttl time.Duration) *MemoryCache {
	if maxEntries < 16 {
		maxEntries = 16
	}
	return &MemoryCache{
		cache: lru.NewLRU[string, []byte](maxEntries, nil, ttl),
	}
}

// Get retrieves a cached outcome.
func (c *MemoryCache) Get(ctx context.Context, key string) ([]byte, error) {
	value, ok := c.cache.Get(key)
	if !ok {
		c.misses.Add(1)
		return nil, ErrCacheMiss
	}
	c.hits.Add(1)
	return value, nil
}

// Set stores an outcome.
func (c *MemoryCache) Set(ctx context.Context, key string, value []byte) error {
	c.cache.Add(key, value)
	return nil
}

// Close implements Cache. Nothing to release for the in-process cache.
func (c *MemoryCache) Close() error {
	c.cache.Purge()
	return nil
}

// Stats returns hit and miss counters.
func (c *MemoryCache) Stats() Stats {
	return Stats{Hits: c.hits.Load(), Misses: c.misses.Load()}
}

// Len returns the number of live entries.
func (c *MemoryCache) Len() int {
	return c.cache.Len()
}

// Package cache is a small TTL cache over ristretto for rendered summaries
// and per-trade sales history.
package cache

import (
	"sync"
	"time"

	"github.com/dgraph-io/ristretto"
)

// Key names shared by the server.
const (
	KeySummary     = "summary"
	KeySummaryHTML = "summary.html"
	KeyTrades      = "trades"
)

// SalesKey is the key of one trade's sales history.
func SalesKey(tradeID string) string {
	return "sales:" + tradeID
}

type Cache struct {
	c   *ristretto.Cache
	ttl time.Duration

	mu  sync.Mutex
	gen uint64
}

// New returns a cache holding up to maxCost entries. A zero
// ttl keeps entries until they are evicted or deleted.
func New(maxCost int64, ttl time.Duration) (*Cache, error) {
	c, err := ristretto.NewCache(&ristretto.Config{
		NumCounters: 1e5,
		MaxCost:     maxCost,
		BufferItems: 64,
	})
	if err != nil {
		return nil, err
	}
	return &Cache{c: c, ttl: ttl}, nil
}

func (c *Cache) Get(key string) (any, bool) { return c.c.Get(key) }

// Set stores val and waits for the write to become visible.
func (c *Cache) Set(key string, val any) {
	c.c.SetWithTTL(key, val, 1, c.ttl)
	c.c.Wait()
}

func (c *Cache) Del(key string) { c.c.Del(key) }

// Generation returns the current invalidation generation. Capture it
// before reading the source of a value and hand it to SetAt.
func (c *Cache) Generation() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.gen
}

// SetAt stores val only when no Invalidate happened since gen was
// captured. It reports whether the value was stored.
func (c *Cache) SetAt(gen uint64, key string, val any) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.gen != gen {
		return false
	}
	c.Set(key, val)
	return true
}

// Invalidate drops keys and advances the generation, so reads that
// started earlier cannot repopulate them.
func (c *Cache) Invalidate(keys ...string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.gen++
	for _, k := range keys {
		c.c.Del(k)
	}
}

// Clear drops every entry.
func (c *Cache) Clear() { c.c.Clear() }

// Close stops the cache's background goroutines.
func (c *Cache) Close() { c.c.Close() }

// Lookup returns the cached value at key when it holds a T.
func Lookup[T any](c *Cache, key string) (T, bool) {
	var zero T
	if c == nil {
		return zero, false
	}
	v, ok := c.Get(key)
	if !ok {
		return zero, false
	}
	t, ok := v.(T)
	return t, ok
}

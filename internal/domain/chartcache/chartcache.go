// Package chartcache keeps recently cast chart snapshots keyed by the full
// instant and coordinate tuple.
package chartcache

import (
	"context"
	"sync/atomic"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/okian/horary/internal/domain/model"
)

const defaultMaxSize = 10_000

// Cache is a bounded in-memory snapshot cache. When full, the least
// recently used entry is evicted.
type Cache struct {
	entries *lru.Cache[string, model.ChartSnapshot]
	maxSize int
	hits    atomic.Int64
	misses  atomic.Int64
}

// New creates a cache holding up to 10000 snapshots by default.
func New(opts ...Option) *Cache {
	c := &Cache{maxSize: defaultMaxSize}
	for _, opt := range opts {
		opt(c)
	}
	entries, err := lru.New[string, model.ChartSnapshot](c.maxSize)
	if err != nil {
		// Only a non-positive size fails, and WithMaxSize rejects those.
		panic(err)
	}
	c.entries = entries
	return c
}

// Get returns the snapshot stored under key and marks it recently used.
func (c *Cache) Get(_ context.Context, key string) (model.ChartSnapshot, bool) {
	snap, ok := c.entries.Get(key)
	if ok {
		c.hits.Add(1)
	} else {
		c.misses.Add(1)
	}
	return snap, ok
}

// Put stores snap under key. An existing entry is left as is; charts for a
// fixed key never change.
func (c *Cache) Put(_ context.Context, key string, snap model.ChartSnapshot) {
	c.entries.ContainsOrAdd(key, snap)
}

// Capacity returns the maximum number of cached snapshots.
func (c *Cache) Capacity() int { return c.maxSize }

// Size returns the number of cached snapshots.
func (c *Cache) Size() int64 { return int64(c.entries.Len()) }

// Stats returns cumulative hit and miss counts.
func (c *Cache) Stats() (hits, misses int64) { return c.hits.Load(), c.misses.Load() }

// Package cache provides the per-tree value cache: a bounded LRU keyed by
// the byte offset of a value in the tree's payload file. Read-through lookups
// populate it eagerly; writes do not warm it, since a freshly written value's
// bytes are already in the caller's hands.
//
// All operations happen under the owning tree's lock, so the cache needs no
// synchronization of its own beyond what the backing implementation carries.
package cache

import (
	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/baekhyunee7/fxkv/internal/metrics"
	"github.com/baekhyunee7/fxkv/pkg/errors"
)

// Cache maps payload-file offsets to value bytes with LRU eviction: Put
// evicts the least recently used entry once the capacity is reached, and Get
// refreshes the hit entry's recency.
type Cache struct {
	values *lru.Cache[uint64, []byte]
}

// New builds a cache bounded to the given number of entries.
func New(capacity int) (*Cache, error) {
	values, err := lru.New[uint64, []byte](capacity)
	if err != nil {
		return nil, errors.NewValidationError(err, errors.ErrorCodeInvalidInput, "Invalid cache capacity").
			WithField("capacity").
			WithRule("positive").
			WithProvided(capacity)
	}
	return &Cache{values: values}, nil
}

// Put stores the value bytes under their payload offset, evicting the least
// recently used entry when the cache is full.
func (c *Cache) Put(offset uint64, value []byte) {
	c.values.Add(offset, value)
}

// Get returns the cached bytes for the given offset, refreshing their
// recency on a hit.
func (c *Cache) Get(offset uint64) ([]byte, bool) {
	value, ok := c.values.Get(offset)
	if ok {
		metrics.CacheHitsTotal.Inc()
	} else {
		metrics.CacheMissesTotal.Inc()
	}
	return value, ok
}

// Len returns the number of cached values.
func (c *Cache) Len() int {
	return c.values.Len()
}

package ai

import (
	"context"
	"sync"
	"time"
)

// Cache maps fingerprint → produced summary. Entries are immutable; the
// first writer for a fingerprint wins and a later Put with different content
// for the same fingerprint is a collision, surfaced as an internal error
// rather than silently resolved.
type Cache interface {
	Get(ctx context.Context, fp Fingerprint) (*CacheEntry, error)
	Put(ctx context.Context, entry CacheEntry) error
}

// MemoryCache is a TTL cache with a capacity bound. Eviction is
// oldest-created once capacity is exceeded; there is no LRU pressure here
// since staleness, not access pattern, is the only reason to evict.
type MemoryCache struct {
	ttl      time.Duration
	capacity int
	now      func() time.Time

	mu      sync.Mutex
	entries map[Fingerprint]*CacheEntry
	order   []orderedKey // insertion order, oldest first
}

type orderedKey struct {
	fp        Fingerprint
	createdAt time.Time
}

func NewMemoryCache(ttl time.Duration, capacity int) *MemoryCache {
	return &MemoryCache{
		ttl:      ttl,
		capacity: capacity,
		now:      time.Now,
		entries:  make(map[Fingerprint]*CacheEntry),
	}
}

// Get implements Cache. Expired entries behave as a miss (nil, nil).
func (c *MemoryCache) Get(ctx context.Context, fp Fingerprint) (*CacheEntry, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.entries[fp]
	if !ok {
		return nil, nil
	}
	if c.now().Sub(entry.CreatedAt) >= c.ttl {
		delete(c.entries, fp)
		return nil, nil
	}
	cp := *entry
	return &cp, nil
}

// Put implements Cache: get-or-insert with first-writer-wins semantics.
func (c *MemoryCache) Put(ctx context.Context, entry CacheEntry) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if existing, ok := c.entries[entry.Fingerprint]; ok {
		if c.now().Sub(existing.CreatedAt) < c.ttl {
			if existing.ContentHash != entry.ContentHash {
				return newError(KindInternal, "fingerprint collision with mismatched content")
			}
			// Identical concurrent write; first writer wins.
			return nil
		}
		delete(c.entries, entry.Fingerprint)
	}

	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = c.now()
	}
	c.entries[entry.Fingerprint] = &entry
	c.order = append(c.order, orderedKey{fp: entry.Fingerprint, createdAt: entry.CreatedAt})
	c.evictLocked()
	c.compactLocked()
	return nil
}

// evictLocked drops oldest-created entries until within capacity. The order
// slice may hold stale keys from earlier deletes or re-inserts; a key only
// counts if it still refers to the live entry.
func (c *MemoryCache) evictLocked() {
	for len(c.entries) > c.capacity && len(c.order) > 0 {
		oldest := c.order[0]
		c.order = c.order[1:]
		if live, ok := c.entries[oldest.fp]; ok && live.CreatedAt.Equal(oldest.createdAt) {
			delete(c.entries, oldest.fp)
		}
	}
}

// compactLocked rebuilds order once stale keys outnumber live ones. TTL
// expiry deletes entries without touching order, so without this the slice
// would grow for as long as the process runs.
func (c *MemoryCache) compactLocked() {
	if len(c.order) <= 2*c.capacity {
		return
	}
	kept := make([]orderedKey, 0, len(c.entries))
	for _, k := range c.order {
		if live, ok := c.entries[k.fp]; ok && live.CreatedAt.Equal(k.createdAt) {
			kept = append(kept, k)
		}
	}
	c.order = kept
}

// Len reports the live entry count.
func (c *MemoryCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

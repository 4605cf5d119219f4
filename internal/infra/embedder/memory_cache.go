package embedder

import (
	"container/list"
	"context"
	"sync"
	"time"
)

type cacheEntry struct {
	key       string
	value     []byte
	expiresAt time.Time
}

// MemoryCache is a bounded in-process Cache with least-recently-used eviction.
type MemoryCache struct {
	mu         sync.Mutex
	maxEntries int
	ttl        time.Duration
	order      *list.List
	entries    map[string]*list.Element
}

// NewMemoryCache constructs a cache holding at most maxEntries values.
func NewMemoryCache(maxEntries int, ttl time.Duration) *MemoryCache {
	if maxEntries <= 0 {
		maxEntries = 1000
	}
	return &MemoryCache{
		maxEntries: maxEntries,
		ttl:        ttl,
		order:      list.New(),
		entries:    make(map[string]*list.Element),
	}
}

// Get implements Cache.
func (c *MemoryCache) Get(_ context.Context, key string) ([]byte, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	elem, ok := c.entries[key]
	if !ok {
		return nil, ErrCacheMiss
	}
	entry := elem.Value.(*cacheEntry)
	if !entry.expiresAt.IsZero() && entry.expiresAt.Before(time.Now()) {
		c.order.Remove(elem)
		delete(c.entries, key)
		return nil, ErrCacheMiss
	}
	c.order.MoveToFront(elem)
	out := make([]byte, len(entry.value))
	copy(out, entry.value)
	return out, nil
}

// Set implements Cache.
func (c *MemoryCache) Set(_ context.Context, key string, value []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	exp := time.Time{}
	if c.ttl > 0 {
		exp = time.Now().Add(c.ttl)
	}
	stored := make([]byte, len(value))
	copy(stored, value)
	if elem, ok := c.entries[key]; ok {
		entry := elem.Value.(*cacheEntry)
		entry.value = stored
		entry.expiresAt = exp
		c.order.MoveToFront(elem)
		return nil
	}
	c.entries[key] = c.order.PushFront(&cacheEntry{key: key, value: stored, expiresAt: exp})
	for c.order.Len() > c.maxEntries {
		oldest := c.order.Back()
		c.order.Remove(oldest)
		delete(c.entries, oldest.Value.(*cacheEntry).key)
	}
	return nil
}

// Len reports the number of cached entries.
func (c *MemoryCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.order.Len()
}

var _ Cache = (*MemoryCache)(nil)

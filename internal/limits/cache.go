package limits

import (
	"container/list"
	"sync"
	"time"
)

const (
	// DefaultCacheTTL is how long a cached fetch stays fresh.
	DefaultCacheTTL = 24 * time.Hour
	// DefaultCacheCapacity bounds the number of cached entries.
	DefaultCacheCapacity = 200
)

// Cache is a process-wide TTL cache with a fixed capacity. When full, the
// least recently cached entry is evicted; a Put of an existing key re-stores
// it. All state lives in memory and dies with the process.
type Cache[V any] struct {
	mu       sync.Mutex
	ttl      time.Duration
	capacity int
	entries  map[string]*list.Element
	order    *list.List // front = oldest stored

	now func() time.Time
}

type cacheEntry[V any] struct {
	key      string
	value    V
	storedAt time.Time
}

// NewCache creates a cache with the given TTL and capacity. Non-positive
// arguments fall back to the defaults.
func NewCache[V any](ttl time.Duration, capacity int) *Cache[V] {
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	if capacity <= 0 {
		capacity = DefaultCacheCapacity
	}
	return &Cache[V]{
		ttl:      ttl,
		capacity: capacity,
		entries:  make(map[string]*list.Element),
		order:    list.New(),
		now:      time.Now,
	}
}

// Get returns the cached value for key while its TTL has not elapsed.
// Expired entries are removed on access.
func (c *Cache[V]) Get(key string) (V, bool) {
	var zero V

	c.mu.Lock()
	defer c.mu.Unlock()

	elem, ok := c.entries[key]
	if !ok {
		return zero, false
	}

	entry := elem.Value.(*cacheEntry[V])
	if c.now().Sub(entry.storedAt) >= c.ttl {
		c.removeLocked(elem)
		return zero, false
	}

	return entry.value, true
}

// Put stores value under key, evicting the least recently cached entry
// when the cache is full.
func (c *Cache[V]) Put(key string, value V) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if elem, ok := c.entries[key]; ok {
		c.removeLocked(elem)
	}

	for c.order.Len() >= c.capacity {
		oldest := c.order.Front()
		if oldest == nil {
			break
		}
		c.removeLocked(oldest)
	}

	elem := c.order.PushBack(&cacheEntry[V]{key: key, value: value, storedAt: c.now()})
	c.entries[key] = elem
}

// Len reports the number of entries currently stored, expired or not.
func (c *Cache[V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.order.Len()
}

func (c *Cache[V]) removeLocked(elem *list.Element) {
	entry := elem.Value.(*cacheEntry[V])
	delete(c.entries, entry.key)
	c.order.Remove(elem)
}

package imagegen

import (
	"sync"
	"time"
)

// Cache holds rendered chart PNGs keyed by station for a short period so
// repeated requests between soundings do not re-render.
type Cache struct {
	mu       sync.RWMutex
	entries  map[string]cacheEntry
	cacheTTL time.Duration
}

type cacheEntry struct {
	data      []byte
	expiresAt time.Time
}

// NewCache creates a chart cache with the specified TTL.
func NewCache(ttl time.Duration) *Cache {
	return &Cache{
		entries:  make(map[string]cacheEntry),
		cacheTTL: ttl,
	}
}

// Get returns the cached chart for a key if still valid.
func (c *Cache) Get(key string) ([]byte, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	e, ok := c.entries[key]
	if !ok || time.Now().After(e.expiresAt) {
		return nil, false
	}
	return e.data, true
}

// Set stores a rendered chart under a key.
func (c *Cache) Set(key string, data []byte) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[key] = cacheEntry{
		data:      data,
		expiresAt: time.Now().Add(c.cacheTTL),
	}
}

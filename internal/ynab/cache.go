package ynab

import (
	"sync"
	"time"
)

// cacheEntry is a cached response body.
type cacheEntry struct {
	expiry time.Time
	body   []byte
}

// responseCache keeps GET response bodies for a short TTL so one run does
// not spend rate limit on identical requests.
type responseCache struct {
	entries map[string]cacheEntry
	now     func() time.Time
	ttl     time.Duration
	mu      sync.RWMutex
}

// newResponseCache creates a cache with the given TTL. A zero TTL disables it.
func newResponseCache(ttl time.Duration) *responseCache {
	return &responseCache{
		entries: make(map[string]cacheEntry),
		ttl:     ttl,
		now:     time.Now,
	}
}

// get returns the cached body for key if present and fresh.
func (c *responseCache) get(key string) ([]byte, bool) {
	if c.ttl <= 0 {
		return nil, false
	}

	c.mu.RLock()
	defer c.mu.RUnlock()

	entry, exists := c.entries[key]
	if !exists || c.now().After(entry.expiry) {
		return nil, false
	}

	return entry.body, true
}

// set stores a body under key.
func (c *responseCache) set(key string, body []byte) {
	if c.ttl <= 0 {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[key] = cacheEntry{
		body:   body,
		expiry: c.now().Add(c.ttl),
	}
}

// size returns the number of entries in the cache.
func (c *responseCache) size() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

package discovery

import (
	"log"
	"sync"
	"time"
)

// ResultCache is the process-wide TTL cache wrapping whole discovery cycles.
// It is an explicit instance injected into the service, never package state,
// so independent controller targets keep independent caches.
type ResultCache struct {
	mu      sync.Mutex
	entries map[string]resultEntry
	now     func() time.Time
}

type resultEntry struct {
	payload    interface{}
	insertedAt time.Time
}

// NewResultCache creates an empty result cache.
func NewResultCache() *ResultCache {
	return &ResultCache{
		entries: make(map[string]resultEntry),
		now:     time.Now,
	}
}

// GetOrFetch returns the cached payload for key if younger than ttl,
// otherwise calls fetch, stores its result, and returns it. Fetch errors are
// returned without touching the stored entry.
func (c *ResultCache) GetOrFetch(key string, ttl time.Duration, fetch func() (interface{}, error)) (interface{}, error) {
	c.mu.Lock()
	if e, ok := c.entries[key]; ok && c.now().Sub(e.insertedAt) < ttl {
		c.mu.Unlock()
		return e.payload, nil
	}
	c.mu.Unlock()

	payload, err := fetch()
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	c.entries[key] = resultEntry{payload: payload, insertedAt: c.now()}
	c.mu.Unlock()

	return payload, nil
}

// Peek returns the stored payload regardless of age.
func (c *ResultCache) Peek(key string) (interface{}, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[key]
	if !ok {
		return nil, false
	}
	return e.payload, true
}

// Refresh serves stale-while-revalidate: it returns the current payload (if
// any) immediately and schedules fetch in the background so the next request
// sees a fresh entry. A failing background fetch leaves the old entry alone.
func (c *ResultCache) Refresh(key string, fetch func() (interface{}, error)) (interface{}, bool) {
	stale, ok := c.Peek(key)

	go func() {
		payload, err := fetch()
		if err != nil {
			log.Printf("Background refresh of %q failed: %v", key, err)
			return
		}
		c.mu.Lock()
		c.entries[key] = resultEntry{payload: payload, insertedAt: c.now()}
		c.mu.Unlock()
	}()

	return stale, ok
}

// Clear drops every entry.
func (c *ResultCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]resultEntry)
}

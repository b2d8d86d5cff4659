package relay

import (
	"sync"
	"time"
)

// ModelsCache is the process-wide candidate cache. Reads and writes are
// single-step under the lock; concurrent refreshes converge to equivalent
// lists, so last-writer-wins is correctness-preserving. Staleness is
// bounded by the TTL and self-healing. In a multi-process deployment each
// process keeps its own copy; accepted staleness, not silently fixed.
type ModelsCache struct {
	mu        sync.RWMutex
	models    []string
	fetchedAt time.Time
	ttl       time.Duration
}

func NewModelsCache(ttl time.Duration) *ModelsCache {
	return &ModelsCache{ttl: ttl}
}

// Get returns the cached candidate list, or nil on a miss (empty or older
// than the TTL).
func (c *ModelsCache) Get() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if c.models == nil || time.Since(c.fetchedAt) > c.ttl {
		return nil
	}
	return c.models
}

// Set replaces the cached list and its timestamp together.
func (c *ModelsCache) Set(models []string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.models = models
	c.fetchedAt = time.Now()
}

// FetchedAt returns the time of the last successful refresh.
func (c *ModelsCache) FetchedAt() time.Time {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.fetchedAt
}

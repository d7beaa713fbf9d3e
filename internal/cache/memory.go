package cache

import (
	"context"
	"sync"
	"time"
)

type entry struct {
	data      []byte
	etag      string
	expiresAt time.Time
}

// Memory is a thread-safe in-process TTL cache.
type Memory struct {
	mu      sync.RWMutex
	entries map[string]entry
	gen     uint64
	enabled bool

	now func() time.Time
}

// NewMemory creates an in-process cache. Pass enabled=false to create a
// no-op cache.
func NewMemory(enabled bool) *Memory {
	return &Memory{
		entries: make(map[string]entry),
		enabled: enabled,
		now:     time.Now,
	}
}

// Enabled reports whether the cache stores entries.
func (c *Memory) Enabled() bool { return c.enabled }

// Get retrieves a cached value.
func (c *Memory) Get(_ context.Context, key string) ([]byte, string, bool, error) {
	if !c.enabled {
		return nil, "", false, nil
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	e, exists := c.entries[key]
	if !exists || c.now().After(e.expiresAt) {
		return nil, "", false, nil
	}
	return e.data, e.etag, true, nil
}

// Generation returns the number of purges so far.
func (c *Memory) Generation(_ context.Context) (uint64, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.gen, nil
}

// Set stores a value with a TTL unless a purge happened since gen was read.
func (c *Memory) Set(_ context.Context, key string, gen uint64, data []byte, ttl time.Duration) (string, error) {
	etag := ComputeETag(data)
	if !c.enabled {
		return etag, nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if gen != c.gen {
		return etag, nil
	}
	c.entries[key] = entry{
		data:      data,
		etag:      etag,
		expiresAt: c.now().Add(ttl),
	}
	return etag, nil
}

// Purge drops every entry.
func (c *Memory) Purge(_ context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	clear(c.entries)
	c.gen++
	return nil
}

// Stats returns cache statistics.
func (c *Memory) Stats(_ context.Context) (map[string]any, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	active := 0
	now := c.now()
	for _, e := range c.entries {
		if now.Before(e.expiresAt) {
			active++
		}
	}
	return map[string]any{
		"backend":      "memory",
		"enabled":      c.enabled,
		"generation":   c.gen,
		"total_keys":   len(c.entries),
		"active_keys":  active,
		"expired_keys": len(c.entries) - active,
	}, nil
}

// RunEviction removes expired entries every interval until ctx is done.
func (c *Memory) RunEviction(ctx context.Context, interval time.Duration) error {
	if !c.enabled {
		return nil
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			c.evict()
		}
	}
}

func (c *Memory) evict() {
	c.mu.Lock()
	defer c.mu.Unlock()
	now := c.now()
	for key, e := range c.entries {
		if now.After(e.expiresAt) {
			delete(c.entries, key)
		}
	}
}

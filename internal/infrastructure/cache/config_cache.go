package cache

import (
	"context"
	"sync"

	"golang.org/x/sync/singleflight"
)

// ConfigCache is a thread-safe registry of named configuration values.
// Entries have no TTL; they live until explicitly cleared, normally by the
// nightly refresh cycle. Implements domain.ConfigCache.
type ConfigCache struct {
	mu      sync.RWMutex
	entries map[string]any
	group   singleflight.Group
}

// NewConfigCache creates an empty configuration cache.
func NewConfigCache() *ConfigCache {
	return &ConfigCache{
		entries: make(map[string]any),
	}
}

// Get retrieves the value stored under name.
func (c *ConfigCache) Get(name string) (any, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	value, found := c.entries[name]
	return value, found
}

// Put stores value under name, overwriting any previous value.
func (c *ConfigCache) Put(name string, value any) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[name] = value
}

// Clear removes the value stored under name.
func (c *ConfigCache) Clear(name string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	delete(c.entries, name)
}

// ClearAll removes every named entry.
func (c *ConfigCache) ClearAll() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries = make(map[string]any)
}

// Names returns the names currently present, for reporting.
func (c *ConfigCache) Names() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()

	names := make([]string, 0, len(c.entries))
	for name := range c.entries {
		names = append(names, name)
	}
	return names
}

// GetOrCompute returns the cached value for name, computing and storing it on
// a miss. Concurrent callers for the same name share a single compute call.
// A failed compute stores nothing, so the next caller retries.
func (c *ConfigCache) GetOrCompute(ctx context.Context, name string, compute func(ctx context.Context) (any, error)) (any, error) {
	if value, found := c.Get(name); found {
		return value, nil
	}

	value, err, _ := c.group.Do(name, func() (any, error) {
		// Re-check under the flight: another caller may have populated
		// the entry between the miss and the flight start.
		if value, found := c.Get(name); found {
			return value, nil
		}

		value, err := compute(ctx)
		if err != nil {
			return nil, err
		}
		c.Put(name, value)
		return value, nil
	})
	if err != nil {
		return nil, err
	}
	return value, nil
}

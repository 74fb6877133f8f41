package cache

import (
	"context"
	"encoding/json"
	"sync"
	"time"
)

// MemoryCache is an in-process AnalysisCache for tests and local runs.
type MemoryCache struct {
	mu      sync.RWMutex
	entries map[string]entry
}

func NewMemoryCache() *MemoryCache {
	return &MemoryCache{
		entries: make(map[string]entry),
	}
}

func (c *MemoryCache) Get(_ context.Context, key string) (json.RawMessage, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	e, ok := c.entries[key]
	if !ok || !time.Now().Before(e.ExpiresAt) {
		return nil, nil
	}
	return e.Value, nil
}

func (c *MemoryCache) Set(_ context.Context, key string, value any, expiresAt time.Time) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = entry{Value: raw, ExpiresAt: expiresAt}
	return nil
}

func (c *MemoryCache) Delete(_ context.Context, key string) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	_, ok := c.entries[key]
	delete(c.entries, key)
	return ok, nil
}

func (c *MemoryCache) Exists(ctx context.Context, key string) (bool, error) {
	value, err := c.Get(ctx, key)
	if err != nil {
		return false, err
	}
	return value != nil, nil
}

func (c *MemoryCache) ClearExpired(_ context.Context) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := time.Now()
	removed := 0
	for key, e := range c.entries {
		if !now.Before(e.ExpiresAt) {
			delete(c.entries, key)
			removed++
		}
	}
	return removed, nil
}

package di

import (
	"context"
	"strings"
	"sync"
	"time"

	"triptrek-backend/application/ports"
)

const cacheSweepInterval = time.Minute

// InMemoryCache is the process-local trip lookup cache. Entries expire
// lazily on read and are swept once a minute.
type InMemoryCache struct {
	mu    sync.RWMutex
	items map[string]cacheEntry
	now   func() time.Time
}

type cacheEntry struct {
	value     interface{}
	expiresAt time.Time
}

var _ ports.Cache = (*InMemoryCache)(nil)

// NewInMemoryCache creates an empty cache whose sweeper runs until ctx is
// cancelled
func NewInMemoryCache(ctx context.Context) *InMemoryCache {
	c := &InMemoryCache{
		items: make(map[string]cacheEntry),
		now:   time.Now,
	}
	go c.sweepEvery(ctx, cacheSweepInterval)
	return c
}

// Get returns a live entry
func (c *InMemoryCache) Get(ctx context.Context, key string) (interface{}, bool) {
	c.mu.RLock()
	entry, ok := c.items[key]
	c.mu.RUnlock()

	if !ok || !c.now().Before(entry.expiresAt) {
		return nil, false
	}
	return entry.value, true
}

// Set stores value for ttl seconds. A non-positive ttl stores nothing.
func (c *InMemoryCache) Set(ctx context.Context, key string, value interface{}, ttl int) error {
	if ttl <= 0 {
		return nil
	}
	c.mu.Lock()
	c.items[key] = cacheEntry{value: value, expiresAt: c.now().Add(time.Duration(ttl) * time.Second)}
	c.mu.Unlock()
	return nil
}

func (c *InMemoryCache) Delete(ctx context.Context, key string) error {
	c.mu.Lock()
	delete(c.items, key)
	c.mu.Unlock()
	return nil
}

func (c *InMemoryCache) DeletePrefix(ctx context.Context, prefix string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for key := range c.items {
		if strings.HasPrefix(key, prefix) {
			delete(c.items, key)
		}
	}
	return nil
}

func (c *InMemoryCache) Clear(ctx context.Context) error {
	c.mu.Lock()
	c.items = make(map[string]cacheEntry)
	c.mu.Unlock()
	return nil
}

func (c *InMemoryCache) sweepEvery(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			c.sweep()
		}
	}
}

// sweep drops every expired entry
func (c *InMemoryCache) sweep() {
	now := c.now()
	c.mu.Lock()
	defer c.mu.Unlock()
	for key, entry := range c.items {
		if !now.Before(entry.expiresAt) {
			delete(c.items, key)
		}
	}
}

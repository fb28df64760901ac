package cache

import (
	"context"
	"time"
)

// MemoryCache is a process-local Cache used when no Valkey server is configured
type MemoryCache struct {
	store *lruStore
}

// NewMemoryCache creates an in-memory LRU cache holding at most maxItems values
func NewMemoryCache(maxItems int) *MemoryCache {
	return &MemoryCache{store: newLRUStore(maxItems)}
}

// Get retrieves a value from memory
func (c *MemoryCache) Get(ctx context.Context, key string) ([]byte, error) {
	if data, ok := c.store.get(key); ok {
		return data, nil
	}
	return nil, nil
}

// Set stores a value in memory
func (c *MemoryCache) Set(ctx context.Context, key string, value []byte, expiration time.Duration) error {
	c.store.set(key, value, expiration)
	return nil
}

// Delete removes a key from memory
func (c *MemoryCache) Delete(ctx context.Context, key string) error {
	c.store.delete(key)
	return nil
}

// Exists checks if a live key is present
func (c *MemoryCache) Exists(ctx context.Context, key string) (bool, error) {
	return c.store.contains(key), nil
}

// Len returns the number of stored entries, expired ones included
func (c *MemoryCache) Len() int {
	return c.store.len()
}

// Close drops all entries
func (c *MemoryCache) Close() error {
	c.store.clear()
	return nil
}

// Health always succeeds for the in-memory cache
func (c *MemoryCache) Health(ctx context.Context) error {
	return nil
}

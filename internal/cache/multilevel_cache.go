package cache

import (
	"context"
	"time"
)

// maxL1Expiration caps how long an entry lives in the in-memory level
const maxL1Expiration = time.Hour

// MultiLevelCache implements a multi-level cache with in-memory L1 and a shared L2
type MultiLevelCache struct {
	l1 *lruStore
	l2 Cache
}

// NewMultiLevelCache wraps l2 with an in-memory LRU of at most l1MaxItems entries
func NewMultiLevelCache(l2 Cache, l1MaxItems int) *MultiLevelCache {
	return &MultiLevelCache{
		l1: newLRUStore(l1MaxItems),
		l2: l2,
	}
}

// Get retrieves from L1 first, then L2
func (c *MultiLevelCache) Get(ctx context.Context, key string) ([]byte, error) {
	if data, ok := c.l1.get(key); ok {
		return data, nil
	}

	data, err := c.l2.Get(ctx, key)
	if err != nil {
		return nil, err
	}

	if data != nil {
		c.l1.set(key, data, maxL1Expiration)
	}

	return data, nil
}

// Set stores in both L1 and L2
func (c *MultiLevelCache) Set(ctx context.Context, key string, value []byte, expiration time.Duration) error {
	if err := c.l2.Set(ctx, key, value, expiration); err != nil {
		return err
	}

	l1Expiration := expiration
	if l1Expiration <= 0 || l1Expiration > maxL1Expiration {
		l1Expiration = maxL1Expiration
	}
	c.l1.set(key, value, l1Expiration)

	return nil
}

// Delete removes from both levels
func (c *MultiLevelCache) Delete(ctx context.Context, key string) error {
	c.l1.delete(key)
	return c.l2.Delete(ctx, key)
}

// Exists checks both levels
func (c *MultiLevelCache) Exists(ctx context.Context, key string) (bool, error) {
	if c.l1.contains(key) {
		return true, nil
	}
	return c.l2.Exists(ctx, key)
}

// Close closes L2
func (c *MultiLevelCache) Close() error {
	c.l1.clear()
	return c.l2.Close()
}

// Health checks L2 health
func (c *MultiLevelCache) Health(ctx context.Context) error {
	return c.l2.Health(ctx)
}

package cache

import (
	"context"
	"time"
)

// Cache stores opaque byte values, scaled cover art in practice, under string
// keys with an optional time to live. Implementations are safe for concurrent use.
type Cache interface {
	// Get retrieves a value from cache. A missing key returns nil, nil.
	Get(ctx context.Context, key string) ([]byte, error)

	// Set stores a value in cache with expiration. Zero expiration never expires.
	Set(ctx context.Context, key string, value []byte, expiration time.Duration) error

	// Delete removes a key from cache
	Delete(ctx context.Context, key string) error

	// Exists checks if a key exists in cache
	Exists(ctx context.Context, key string) (bool, error)

	// Close releases the cache's resources
	Close() error

	// Health checks cache health
	Health(ctx context.Context) error
}

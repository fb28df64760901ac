package cache

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/valkey-io/valkey-go"
)

// keyPrefix namespaces every key written to a shared Valkey instance
const keyPrefix = "spotdesk:"

// CacheError is returned when a Valkey command fails. Key is the caller's key,
// without the namespace prefix.
type CacheError struct {
	Operation string
	Key       string
	Err       error
}

func (e *CacheError) Error() string {
	return fmt.Sprintf("valkey %s %q: %v", e.Operation, e.Key, e.Err)
}

func (e *CacheError) Unwrap() error {
	return e.Err
}

// valkeyCache implements Cache interface using Valkey
type valkeyCache struct {
	client valkey.Client
}

// NewValkeyCache creates a new Valkey-backed cache
func NewValkeyCache(valkeyURL string) (Cache, error) {
	clientOption, err := parseValkeyURL(valkeyURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Valkey URL: %w", err)
	}

	client, err := valkey.NewClient(clientOption)
	if err != nil {
		return nil, fmt.Errorf("failed to create Valkey client: %w", err)
	}

	cache := &valkeyCache{
		client: client,
	}

	// Test connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := cache.Health(ctx); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to Valkey: %w", err)
	}

	return cache, nil
}

// Get retrieves a value from Valkey
func (c *valkeyCache) Get(ctx context.Context, key string) ([]byte, error) {
	cmd := c.client.B().Get().Key(keyPrefix + key).Build()
	result := c.client.Do(ctx, cmd)

	if err := result.Error(); err != nil {
		if valkey.IsValkeyNil(err) {
			return nil, nil // Key doesn't exist
		}
		return nil, &CacheError{Operation: "get", Key: key, Err: err}
	}

	data, err := result.AsBytes()
	if err != nil {
		return nil, &CacheError{Operation: "get", Key: key, Err: err}
	}

	return data, nil
}

// Set stores a value in Valkey with expiration
func (c *valkeyCache) Set(ctx context.Context, key string, value []byte, expiration time.Duration) error {
	var cmd valkey.Completed

	if expiration > 0 {
		cmd = c.client.B().Set().Key(keyPrefix + key).Value(valkey.BinaryString(value)).Ex(expiration).Build()
	} else {
		cmd = c.client.B().Set().Key(keyPrefix + key).Value(valkey.BinaryString(value)).Build()
	}

	if err := c.client.Do(ctx, cmd).Error(); err != nil {
		return &CacheError{Operation: "set", Key: key, Err: err}
	}

	return nil
}

// Delete removes a key from Valkey
func (c *valkeyCache) Delete(ctx context.Context, key string) error {
	cmd := c.client.B().Del().Key(keyPrefix + key).Build()
	if err := c.client.Do(ctx, cmd).Error(); err != nil {
		return &CacheError{Operation: "delete", Key: key, Err: err}
	}
	return nil
}

// Exists checks if a key exists in Valkey
func (c *valkeyCache) Exists(ctx context.Context, key string) (bool, error) {
	cmd := c.client.B().Exists().Key(keyPrefix + key).Build()
	result := c.client.Do(ctx, cmd)

	if err := result.Error(); err != nil {
		return false, &CacheError{Operation: "exists", Key: key, Err: err}
	}

	count, err := result.AsInt64()
	if err != nil {
		return false, &CacheError{Operation: "exists", Key: key, Err: err}
	}

	return count > 0, nil
}

// Close closes the Valkey connection
func (c *valkeyCache) Close() error {
	c.client.Close()
	return nil
}

// Health checks Valkey health
func (c *valkeyCache) Health(ctx context.Context) error {
	cmd := c.client.B().Ping().Build()
	if err := c.client.Do(ctx, cmd).Error(); err != nil {
		return fmt.Errorf("Valkey health check failed: %w", err)
	}
	return nil
}

// parseValkeyURL turns valkey://[:password@]host:port[/db] into client options.
// redis:// and rediss:// are accepted as well.
func parseValkeyURL(valkeyURL string) (valkey.ClientOption, error) {
	var option valkey.ClientOption

	u, err := url.Parse(valkeyURL)
	if err != nil {
		return option, fmt.Errorf("invalid URL format: %w", err)
	}

	switch u.Scheme {
	case "valkey", "redis", "rediss", "valkeys":
	default:
		return option, fmt.Errorf("unsupported scheme %q", u.Scheme)
	}

	if u.Host == "" {
		return option, fmt.Errorf("missing host in URL")
	}
	option.InitAddress = []string{u.Host}

	if u.User != nil {
		if password, ok := u.User.Password(); ok {
			option.Password = password
			option.Username = u.User.Username()
		}
	}

	if db := strings.Trim(u.Path, "/"); db != "" {
		n, err := strconv.Atoi(db)
		if err != nil {
			return option, fmt.Errorf("invalid database number %q", db)
		}
		option.SelectDB = n
	}

	return option, nil
}

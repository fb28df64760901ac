package covers

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-resty/resty/v2"

	"spotdesk/internal/cache"
)

// Defaults for Options
const (
	DefaultHeight      = 64
	DefaultTTL         = 24 * time.Hour
	DefaultConcurrency = 4
	defaultTimeout     = 10 * time.Second
)

// Options configures a Resolver
type Options struct {
	// Height is the target cover height in pixels. Zero stores covers as downloaded.
	Height int
	TTL    time.Duration
	// Concurrency bounds simultaneous downloads
	Concurrency int
	Timeout     time.Duration
}

// Resolver downloads cover art, scales it and caches the result by URL
type Resolver struct {
	client *resty.Client
	cache  cache.Cache
	height int
	ttl    time.Duration
	slots  chan struct{}
}

// NewResolver creates a new cover resolver backed by c
func NewResolver(c cache.Cache, opts Options) *Resolver {
	if opts.TTL <= 0 {
		opts.TTL = DefaultTTL
	}
	if opts.Concurrency <= 0 {
		opts.Concurrency = DefaultConcurrency
	}
	if opts.Timeout <= 0 {
		opts.Timeout = defaultTimeout
	}
	if opts.Height < 0 {
		opts.Height = 0
	}

	client := resty.New().
		SetTimeout(opts.Timeout).
		SetRetryCount(2).
		SetRetryWaitTime(500 * time.Millisecond).
		SetRetryMaxWaitTime(2 * time.Second)

	return &Resolver{
		client: client,
		cache:  c,
		height: opts.Height,
		ttl:    opts.TTL,
		slots:  make(chan struct{}, opts.Concurrency),
	}
}

// Resolve fetches url on a background goroutine and hands the cover to callback
func (r *Resolver) Resolve(ctx context.Context, url string, callback func(data []byte, err error)) {
	go func() {
		data, err := r.Fetch(ctx, url)
		callback(data, err)
	}()
}

// Fetch returns the scaled cover for url, from cache when possible
func (r *Resolver) Fetch(ctx context.Context, url string) ([]byte, error) {
	key := r.cacheKey(url)

	if data, err := r.cache.Get(ctx, key); err != nil {
		slog.Warn("Cover cache read failed", "url", url, "error", err)
	} else if data != nil {
		return data, nil
	}

	select {
	case r.slots <- struct{}{}:
		defer func() { <-r.slots }()
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	resp, err := r.client.R().
		SetContext(ctx).
		Get(url)
	if err != nil {
		return nil, fmt.Errorf("failed to download cover: %w", err)
	}
	if resp.StatusCode() != http.StatusOK {
		return nil, fmt.Errorf("cover download returned status %d", resp.StatusCode())
	}

	data := resp.Body()
	if r.height > 0 {
		data, err = Scale(data, r.height)
		if err != nil {
			return nil, err
		}
	}

	if err := r.cache.Set(ctx, key, data, r.ttl); err != nil {
		slog.Warn("Cover cache write failed", "url", url, "error", err)
	}

	slog.Debug("Cover resolved", "url", url, "bytes", len(data))
	return data, nil
}

// cacheKey includes the height so a config change never serves stale sizes
func (r *Resolver) cacheKey(url string) string {
	return "cover:" + strconv.Itoa(r.height) + ":" + url
}

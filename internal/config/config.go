package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Spotify caps search page sizes at 50
const maxSearchLimit = 50

// Config holds all configuration for the application
type Config struct {
	// Application settings
	Port     string `envconfig:"PORT" default:"8080"`
	GinMode  string `envconfig:"GIN_MODE" default:"debug"`
	LogLevel string `envconfig:"LOG_LEVEL" default:"info"`

	// Spotify Web API
	SpotifyClientID     string        `envconfig:"SPOTIFY_CLIENT_ID" required:"true"`
	SpotifyClientSecret string        `envconfig:"SPOTIFY_CLIENT_SECRET" required:"true"`
	SpotifyRefreshToken string        `envconfig:"SPOTIFY_REFRESH_TOKEN"`
	SpotifyAPIURL       string        `envconfig:"SPOTIFY_API_URL" default:"https://api.spotify.com/v1"`
	SpotifyTokenURL     string        `envconfig:"SPOTIFY_TOKEN_URL" default:"https://accounts.spotify.com/api/token"`
	SpotifyTimeout      time.Duration `envconfig:"SPOTIFY_TIMEOUT" default:"10s"`
	SearchLimit         int           `envconfig:"SEARCH_LIMIT" default:"20"`

	// Cover art cache. An empty Valkey URL keeps covers in memory only.
	ValkeyURL     string        `envconfig:"VALKEY_URL"`
	CoverCacheTTL time.Duration `envconfig:"COVER_CACHE_TTL" default:"24h"`
	CoverHeight   int           `envconfig:"COVER_HEIGHT" default:"64"`

	// Crash log. An empty MongoDB URL keeps crashes in memory only.
	MongodbURL      string `envconfig:"MONGODB_URL"`
	MongodbDatabase string `envconfig:"MONGODB_DATABASE" default:"spotdesk"`

	// ControlAPISecret enables bearer token auth on the control API
	ControlAPISecret string `envconfig:"CONTROL_API_SECRET"`
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}

	cfg.SearchLimit = ClampSearchLimit(cfg.SearchLimit)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks value ranges envconfig cannot express
func (c *Config) Validate() error {
	switch c.GinMode {
	case "debug", "release", "test":
	default:
		return fmt.Errorf("GIN_MODE must be debug, release or test, got %q", c.GinMode)
	}

	switch strings.ToLower(c.LogLevel) {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("LOG_LEVEL must be debug, info, warn or error, got %q", c.LogLevel)
	}

	if c.SpotifyTimeout <= 0 {
		return fmt.Errorf("SPOTIFY_TIMEOUT must be positive")
	}
	if c.SearchLimit < 1 || c.SearchLimit > maxSearchLimit {
		return fmt.Errorf("SEARCH_LIMIT must be between 1 and %d", maxSearchLimit)
	}
	if c.CoverHeight < 0 {
		return fmt.Errorf("COVER_HEIGHT must not be negative")
	}
	if c.CoverCacheTTL <= 0 {
		return fmt.Errorf("COVER_CACHE_TTL must be positive")
	}
	if c.MongodbURL != "" && c.MongodbDatabase == "" {
		return fmt.Errorf("MONGODB_DATABASE is required when MONGODB_URL is set")
	}
	return nil
}

// ClampSearchLimit forces n into the range Spotify accepts
func ClampSearchLimit(n int) int {
	if n < 1 {
		return 1
	}
	if n > maxSearchLimit {
		return maxSearchLimit
	}
	return n
}

// AuthEnabled reports whether the control API requires a bearer token
func (c *Config) AuthEnabled() bool {
	return c.ControlAPISecret != ""
}

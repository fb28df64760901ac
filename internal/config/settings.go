package config

import (
	"context"
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	toml "github.com/pelletier/go-toml/v2"
)

// Settings holds tunables that can change while the client runs
type Settings struct {
	// SearchLimit overrides SEARCH_LIMIT for text searches
	SearchLimit int `toml:"search_limit"`

	// CrashRetentionDays prunes older crash records; 0 keeps everything
	CrashRetentionDays int `toml:"crash_retention_days"`
}

// fileSettings mirrors Settings with pointer fields so a key set to zero can
// be told apart from a missing key
type fileSettings struct {
	SearchLimit        *int `toml:"search_limit"`
	CrashRetentionDays *int `toml:"crash_retention_days"`
}

// DefaultSettings returns the settings used when no file is present
func DefaultSettings() *Settings {
	return &Settings{
		CrashRetentionDays: 30,
	}
}

// SearchLimitOr returns the file override, or fallback when the file sets none
func (s *Settings) SearchLimitOr(fallback int) int {
	if s.SearchLimit > 0 {
		return s.SearchLimit
	}
	return fallback
}

// CrashRetention returns the retention as a duration, zero when disabled
func (s *Settings) CrashRetention() time.Duration {
	if s.CrashRetentionDays <= 0 {
		return 0
	}
	return time.Duration(s.CrashRetentionDays) * 24 * time.Hour
}

var (
	settings     *Settings
	settingsOnce sync.Once
	settingsMu   sync.RWMutex
)

// GetSettings loads settings from TOML if SETTINGS_PATH is set, otherwise
// from the first well-known location that exists. Falls back to defaults.
func GetSettings() *Settings {
	settingsOnce.Do(func() {
		cfg := DefaultSettings()
		if path := findSettingsPath(); path != "" {
			if fileCfg, err := loadSettingsFromPath(path); err != nil {
				slog.Warn("Failed to read settings file", "path", path, "error", err)
			} else if fileCfg != nil {
				mergeSettings(cfg, fileCfg)
			}
		}
		settingsMu.Lock()
		settings = cfg
		settingsMu.Unlock()
	})
	settingsMu.RLock()
	cfg := settings
	settingsMu.RUnlock()
	return cfg
}

func findSettingsPath() string {
	if explicit := os.Getenv("SETTINGS_PATH"); explicit != "" {
		return explicit
	}
	for _, p := range candidateSettingsPaths() {
		if fi, err := os.Stat(p); err == nil && !fi.IsDir() {
			return p
		}
	}
	return ""
}

func loadSettingsFromPath(path string) (*fileSettings, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, err
	}
	var cfg fileSettings
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func mergeSettings(base *Settings, override *fileSettings) {
	if override == nil || base == nil {
		return
	}
	if override.SearchLimit != nil && *override.SearchLimit > 0 {
		base.SearchLimit = ClampSearchLimit(*override.SearchLimit)
	}
	if override.CrashRetentionDays != nil {
		base.CrashRetentionDays = *override.CrashRetentionDays
	}
}

// candidateSettingsPaths returns common locations to auto-discover the settings file
func candidateSettingsPaths() []string {
	paths := []string{
		"spotdesk.toml",
		filepath.Join("config", "spotdesk.toml"),
	}

	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		paths = append(paths, filepath.Join(xdg, "spotdesk", "spotdesk.toml"))
	}
	if home := os.Getenv("HOME"); home != "" {
		paths = append(paths, filepath.Join(home, ".config", "spotdesk", "spotdesk.toml"))
	}
	return paths
}

// StartSettingsWatcher polls the settings file for changes, reloads it and
// hands the new settings to onReload. Without a settings file it is a no-op.
func StartSettingsWatcher(ctx context.Context, interval time.Duration, onReload func(*Settings)) {
	watchPath := findSettingsPath()
	if watchPath == "" {
		slog.Info("settings watcher: no settings file found; using defaults")
		return
	}

	var lastModTime time.Time
	if fi, err := os.Stat(watchPath); err == nil {
		lastModTime = fi.ModTime()
	}

	slog.Info("settings watcher: watching file", "path", watchPath)

	ticker := time.NewTicker(interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				slog.Info("settings watcher: stopped")
				return
			case <-ticker.C:
				fi, err := os.Stat(watchPath)
				if err != nil || fi.IsDir() || !fi.ModTime().After(lastModTime) {
					continue
				}
				fileCfg, err := loadSettingsFromPath(watchPath)
				if err != nil || fileCfg == nil {
					slog.Warn("settings watcher: reload failed", "path", watchPath, "error", err)
					continue
				}

				// Merge over defaults to keep unspecified keys sane
				newCfg := DefaultSettings()
				mergeSettings(newCfg, fileCfg)
				settingsMu.Lock()
				settings = newCfg
				settingsMu.Unlock()
				lastModTime = fi.ModTime()

				slog.Info("settings reloaded", "path", watchPath, "mtime", lastModTime)
				if onReload != nil {
					onReload(newCfg)
				}
			}
		}
	}()
}

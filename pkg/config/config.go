// Package config handles loading and saving brewsty configuration.
//
// Configuration follows the XDG Base Directory specification:
//   - Config:  ~/.config/brewsty/config.yaml
//   - Data:    ~/.local/share/brewsty/ (detail cache database)
//   - State:   ~/.local/state/brewsty/ (logs)
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// TasksConfig tunes the background task coordinator.
type TasksConfig struct {
	MaxConcurrentInfo      int  `yaml:"max_concurrent_info,omitempty"`     // parallel detail lookups (default 15)
	InfoTimeoutSeconds     int  `yaml:"info_timeout_seconds,omitempty"`    // per-lookup deadline (default 10)
	CancelLookupsOnTimeout bool `yaml:"cancel_lookups_on_timeout,omitempty"` // cancel the brew process instead of abandoning it
}

// CacheConfig controls the on-disk package detail cache.
type CacheConfig struct {
	Enabled  *bool  `yaml:"enabled,omitempty"` // default on
	Path     string `yaml:"path,omitempty"`    // default DataDir()/details.db
	TTLHours int    `yaml:"ttl_hours,omitempty"`
}

// WatchConfig controls watching Homebrew state for external changes.
type WatchConfig struct {
	Enabled             bool     `yaml:"enabled,omitempty"`
	Paths               []string `yaml:"paths,omitempty"` // extra directories to watch
	DebounceMs          int      `yaml:"debounce_ms,omitempty"`
	PollIntervalSeconds int      `yaml:"poll_interval_seconds,omitempty"` // fallback when fsnotify is unavailable
}

// Config is the top-level configuration for brewsty.
type Config struct {
	BrewPath        string      `yaml:"brew_path,omitempty"` // default "brew" (resolved via PATH)
	FrameIntervalMs int         `yaml:"frame_interval_ms,omitempty"`
	Tasks           TasksConfig `yaml:"tasks,omitempty"`
	Cache           CacheConfig `yaml:"cache,omitempty"`
	Watch           WatchConfig `yaml:"watch,omitempty"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		BrewPath:        "brew",
		FrameIntervalMs: 250,
		Tasks: TasksConfig{
			MaxConcurrentInfo:  15,
			InfoTimeoutSeconds: 10,
		},
		Cache: CacheConfig{
			TTLHours: 24,
		},
		Watch: WatchConfig{
			DebounceMs:          500,
			PollIntervalSeconds: 5,
		},
	}
}

// InfoTimeout returns the detail lookup deadline as a duration.
func (c TasksConfig) InfoTimeout() time.Duration {
	return time.Duration(c.InfoTimeoutSeconds) * time.Second
}

// TTL returns the cache entry lifetime as a duration.
func (c CacheConfig) TTL() time.Duration {
	return time.Duration(c.TTLHours) * time.Hour
}

// CacheEnabled reports whether the detail cache should be used.
func (c Config) CacheEnabled() bool {
	if c.Cache.Enabled == nil {
		return true
	}
	return *c.Cache.Enabled
}

// ResolvedCachePath returns the cache database path, defaulting into
// the XDG data directory.
func (c Config) ResolvedCachePath() string {
	if c.Cache.Path != "" {
		return expandHome(c.Cache.Path)
	}
	dir := DataDir()
	if dir == "" {
		return ""
	}
	return filepath.Join(dir, "details.db")
}

// FrameInterval returns the poll loop tick as a duration.
func (c Config) FrameInterval() time.Duration {
	return time.Duration(c.FrameIntervalMs) * time.Millisecond
}

// ConfigDir returns the XDG config directory for brewsty.
func ConfigDir() string {
	if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" {
		return filepath.Join(dir, "brewsty")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", "brewsty")
}

// DataDir returns the XDG data directory for brewsty.
func DataDir() string {
	if dir := os.Getenv("XDG_DATA_HOME"); dir != "" {
		return filepath.Join(dir, "brewsty")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".local", "share", "brewsty")
}

// StateDir returns the XDG state directory for brewsty.
func StateDir() string {
	if dir := os.Getenv("XDG_STATE_HOME"); dir != "" {
		return filepath.Join(dir, "brewsty")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".local", "state", "brewsty")
}

// ConfigPath returns the full path to config.yaml.
func ConfigPath() string {
	dir := ConfigDir()
	if dir == "" {
		return ""
	}
	return filepath.Join(dir, "config.yaml")
}

// Load reads the config file from the XDG config directory.
// Returns DefaultConfig if the file doesn't exist.
func Load() (Config, error) {
	path := ConfigPath()
	if path == "" {
		cfg := DefaultConfig()
		applyEnvOverrides(&cfg)
		return cfg, nil
	}
	return LoadFrom(path)
}

// LoadFrom reads config from a specific path.
// Returns DefaultConfig if the file doesn't exist.
func LoadFrom(path string) (Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			applyEnvOverrides(&cfg)
			return cfg, nil
		}
		return cfg, fmt.Errorf("reading config: %w", err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing config: %w", err)
	}

	// A config that names keys with zero values falls back to defaults.
	if cfg.Tasks.MaxConcurrentInfo <= 0 {
		cfg.Tasks.MaxConcurrentInfo = 15
	}
	if cfg.Tasks.InfoTimeoutSeconds <= 0 {
		cfg.Tasks.InfoTimeoutSeconds = 10
	}
	if cfg.FrameIntervalMs <= 0 {
		cfg.FrameIntervalMs = 250
	}
	if cfg.BrewPath == "" {
		cfg.BrewPath = "brew"
	}

	for i := range cfg.Watch.Paths {
		cfg.Watch.Paths[i] = expandHome(cfg.Watch.Paths[i])
	}

	applyEnvOverrides(&cfg)

	return cfg, nil
}

// Save writes the config to the XDG config directory.
func Save(cfg Config) error {
	path := ConfigPath()
	if path == "" {
		return fmt.Errorf("cannot determine config directory")
	}
	return SaveTo(cfg, path)
}

// SaveTo writes the config to a specific path.
func SaveTo(cfg Config, path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}

	return nil
}

func expandHome(path string) string {
	if !strings.HasPrefix(path, "~") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, path[1:])
}

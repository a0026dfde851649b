package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.BrewPath != "brew" {
		t.Errorf("expected brew path 'brew', got %q", cfg.BrewPath)
	}
	if cfg.Tasks.MaxConcurrentInfo != 15 {
		t.Errorf("expected 15 concurrent info loads, got %d", cfg.Tasks.MaxConcurrentInfo)
	}
	if cfg.Tasks.InfoTimeout() != 10*time.Second {
		t.Errorf("expected 10s info timeout, got %v", cfg.Tasks.InfoTimeout())
	}
	if cfg.Tasks.CancelLookupsOnTimeout {
		t.Error("cancel-on-timeout should default off")
	}
	if cfg.FrameInterval() != 250*time.Millisecond {
		t.Errorf("expected 250ms frame interval, got %v", cfg.FrameInterval())
	}
	if !cfg.CacheEnabled() {
		t.Error("cache should default on")
	}
	if cfg.Cache.TTL() != 24*time.Hour {
		t.Errorf("expected 24h cache TTL, got %v", cfg.Cache.TTL())
	}
}

func TestLoadFrom_NonExistent(t *testing.T) {
	cfg, err := LoadFrom("/nonexistent/path/config.yaml")
	if err != nil {
		t.Fatalf("expected no error for missing file, got: %v", err)
	}
	if cfg.Tasks.MaxConcurrentInfo != 15 {
		t.Errorf("expected default config, got %d concurrent info loads", cfg.Tasks.MaxConcurrentInfo)
	}
}

func TestLoadFrom_ValidConfig(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")

	content := `
brew_path: /opt/homebrew/bin/brew
frame_interval_ms: 100

tasks:
  max_concurrent_info: 5
  info_timeout_seconds: 30
  cancel_lookups_on_timeout: true

cache:
  path: ~/caches/brewsty.db
  ttl_hours: 6

watch:
  enabled: true
  paths:
    - ~/homebrew/locks
  debounce_ms: 250
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadFrom(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.BrewPath != "/opt/homebrew/bin/brew" {
		t.Errorf("unexpected brew path %q", cfg.BrewPath)
	}
	if cfg.Tasks.MaxConcurrentInfo != 5 {
		t.Errorf("expected 5 concurrent info loads, got %d", cfg.Tasks.MaxConcurrentInfo)
	}
	if cfg.Tasks.InfoTimeout() != 30*time.Second {
		t.Errorf("expected 30s timeout, got %v", cfg.Tasks.InfoTimeout())
	}
	if !cfg.Tasks.CancelLookupsOnTimeout {
		t.Error("expected cancel-on-timeout enabled")
	}
	if cfg.Cache.TTL() != 6*time.Hour {
		t.Errorf("expected 6h TTL, got %v", cfg.Cache.TTL())
	}

	// Cache path and watch paths should have ~ expanded.
	home, _ := os.UserHomeDir()
	if want := filepath.Join(home, "caches/brewsty.db"); cfg.ResolvedCachePath() != want {
		t.Errorf("expected expanded cache path %q, got %q", want, cfg.ResolvedCachePath())
	}
	if want := filepath.Join(home, "homebrew/locks"); cfg.Watch.Paths[0] != want {
		t.Errorf("expected expanded watch path %q, got %q", want, cfg.Watch.Paths[0])
	}
	if !cfg.Watch.Enabled || cfg.Watch.DebounceMs != 250 {
		t.Errorf("unexpected watch config: %+v", cfg.Watch)
	}
}

func TestLoadFrom_ZeroValuesFallBackToDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")

	content := `
tasks:
  max_concurrent_info: 0
  info_timeout_seconds: 0
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadFrom(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Tasks.MaxConcurrentInfo != 15 || cfg.Tasks.InfoTimeoutSeconds != 10 {
		t.Errorf("zero values should fall back to defaults, got %+v", cfg.Tasks)
	}
}

func TestLoadFrom_EnvOverrides(t *testing.T) {
	t.Setenv("BREWSTY_MAX_CONCURRENT_INFO", "3")
	t.Setenv("BREWSTY_INFO_TIMEOUT_S", "42")
	t.Setenv("BREWSTY_CANCEL_ON_TIMEOUT", "yes")
	t.Setenv("BREWSTY_BREW_PATH", "/custom/brew")

	cfg, err := LoadFrom("/nonexistent/config.yaml")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Tasks.MaxConcurrentInfo != 3 {
		t.Errorf("env override for concurrency ignored: %d", cfg.Tasks.MaxConcurrentInfo)
	}
	if cfg.Tasks.InfoTimeout() != 42*time.Second {
		t.Errorf("env override for timeout ignored: %v", cfg.Tasks.InfoTimeout())
	}
	if !cfg.Tasks.CancelLookupsOnTimeout {
		t.Error("env override for cancel-on-timeout ignored")
	}
	if cfg.BrewPath != "/custom/brew" {
		t.Errorf("env override for brew path ignored: %q", cfg.BrewPath)
	}

	t.Setenv("BREWSTY_MAX_CONCURRENT_INFO", "not-a-number")
	cfg, _ = LoadFrom("/nonexistent/config.yaml")
	if cfg.Tasks.MaxConcurrentInfo != 15 {
		t.Errorf("malformed env value should fall back to default, got %d", cfg.Tasks.MaxConcurrentInfo)
	}
}

func TestLoadFrom_InvalidYAML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")

	if err := os.WriteFile(path, []byte("{{invalid yaml"), 0o644); err != nil {
		t.Fatal(err)
	}

	_, err := LoadFrom(path)
	if err == nil {
		t.Error("expected error for invalid YAML")
	}
}

func TestSaveAndLoad_RoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")

	cfg := DefaultConfig()
	cfg.BrewPath = "/usr/local/bin/brew"
	cfg.Tasks.MaxConcurrentInfo = 7
	disabled := false
	cfg.Cache.Enabled = &disabled

	if err := SaveTo(cfg, path); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	loaded, err := LoadFrom(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if loaded.BrewPath != "/usr/local/bin/brew" {
		t.Errorf("brew path lost in roundtrip: %q", loaded.BrewPath)
	}
	if loaded.Tasks.MaxConcurrentInfo != 7 {
		t.Errorf("tasks config lost in roundtrip: %+v", loaded.Tasks)
	}
	if loaded.CacheEnabled() {
		t.Error("explicit cache disable lost in roundtrip")
	}
}

func TestConfigDir_RespectsXDG(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/tmp/xdgtest")
	if got := ConfigDir(); got != "/tmp/xdgtest/brewsty" {
		t.Errorf("expected /tmp/xdgtest/brewsty, got %q", got)
	}

	t.Setenv("XDG_DATA_HOME", "/tmp/xdgdata")
	if got := DataDir(); got != "/tmp/xdgdata/brewsty" {
		t.Errorf("expected /tmp/xdgdata/brewsty, got %q", got)
	}
}

func TestResolvedCachePath_DefaultsToDataDir(t *testing.T) {
	t.Setenv("XDG_DATA_HOME", "/tmp/xdgdata")
	cfg := DefaultConfig()
	if got := cfg.ResolvedCachePath(); got != "/tmp/xdgdata/brewsty/details.db" {
		t.Errorf("unexpected default cache path %q", got)
	}
}

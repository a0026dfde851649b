package config

import (
	"os"
	"strconv"
	"strings"
)

// applyEnvOverrides lets worker tunables be adjusted per run without
// editing the config file.
func applyEnvOverrides(cfg *Config) {
	cfg.Tasks.MaxConcurrentInfo = envPositiveIntOr("BREWSTY_MAX_CONCURRENT_INFO", cfg.Tasks.MaxConcurrentInfo)
	cfg.Tasks.InfoTimeoutSeconds = envPositiveIntOr("BREWSTY_INFO_TIMEOUT_S", cfg.Tasks.InfoTimeoutSeconds)
	cfg.FrameIntervalMs = envPositiveIntOr("BREWSTY_FRAME_INTERVAL_MS", cfg.FrameIntervalMs)
	if envBool("BREWSTY_CANCEL_ON_TIMEOUT") {
		cfg.Tasks.CancelLookupsOnTimeout = true
	}
	if path := strings.TrimSpace(os.Getenv("BREWSTY_BREW_PATH")); path != "" {
		cfg.BrewPath = path
	}
}

func envPositiveIntOr(name string, fallback int) int {
	n, ok := envPositiveInt(name)
	if !ok {
		return fallback
	}
	return n
}

func envPositiveInt(name string) (int, bool) {
	v := strings.TrimSpace(os.Getenv(name))
	if v == "" {
		return 0, false
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		return 0, false
	}
	return n, true
}

func envBool(name string) bool {
	v := strings.TrimSpace(strings.ToLower(os.Getenv(name)))
	if v == "" {
		return false
	}
	switch v {
	case "1", "true", "yes", "y", "on":
		return true
	default:
		return false
	}
}

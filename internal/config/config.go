package config

import (
	"os"
	"path/filepath"
	"strconv"
	"time"
)

// Config captures the runtime configuration for the storefront client.
type Config struct {
	APIURL         string
	APITimeout     time.Duration
	RefreshTimeout time.Duration
	DataDir        string
	LogLevel       string
	RateLimit      int
	RateBurst      int
}

// Load reads configuration from environment variables, applying sensible
// defaults for local development while allowing overrides per variable.
func Load() (Config, error) {
	cfg := Config{
		APIURL:         getString("PRICEPULSE_API_URL", "http://localhost:3000"),
		APITimeout:     getDuration("PRICEPULSE_API_TIMEOUT", 10*time.Second),
		RefreshTimeout: getDuration("PRICEPULSE_REFRESH_TIMEOUT", 10*time.Second),
		DataDir:        getString("PRICEPULSE_DATA_DIR", defaultDataDir()),
		LogLevel:       getString("PRICEPULSE_LOG_LEVEL", "info"),
		RateLimit:      getInt("PRICEPULSE_RATE_LIMIT", 20),
		RateBurst:      getInt("PRICEPULSE_RATE_BURST", 5),
	}

	return cfg, nil
}

func defaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".pricepulse"
	}
	return filepath.Join(home, ".pricepulse")
}

func getString(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getInt(key string, fallback int) int {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	i, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return i
}

func getDuration(key string, fallback time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return fallback
	}
	return d
}

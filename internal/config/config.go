// Package config reads service settings from the environment.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

const (
	DriverMemory = "memory"
	DriverSQLite = "sqlite"
)

// Config is the process configuration.
type Config struct {
	HTTPAddr       string
	StorageDriver  string
	SQLitePath     string
	WebhookURL     string
	WebhookTimeout time.Duration
	LogLevel       string
	MetricsEnabled bool
}

// Load reads the configuration from environment variables, falling back to
// defaults for unset ones.
func Load() (Config, error) {
	return load(os.Getenv)
}

func load(getenv func(string) string) (Config, error) {
	get := func(key, def string) string {
		if v := getenv(key); v != "" {
			return v
		}
		return def
	}

	cfg := Config{
		HTTPAddr:      get("HTTP_ADDR", ":8081"),
		StorageDriver: get("STORAGE_DRIVER", DriverMemory),
		SQLitePath:    get("SQLITE_PATH", "sales.db"),
		WebhookURL:    getenv("EVENTS_WEBHOOK_URL"),
		LogLevel:      get("LOG_LEVEL", "info"),
	}

	switch cfg.StorageDriver {
	case DriverMemory, DriverSQLite:
	default:
		return Config{}, fmt.Errorf("invalid STORAGE_DRIVER %q: want %q or %q", cfg.StorageDriver, DriverMemory, DriverSQLite)
	}

	timeout, err := time.ParseDuration(get("EVENTS_WEBHOOK_TIMEOUT", "5s"))
	if err != nil || timeout <= 0 {
		return Config{}, fmt.Errorf("invalid EVENTS_WEBHOOK_TIMEOUT: %q", getenv("EVENTS_WEBHOOK_TIMEOUT"))
	}
	cfg.WebhookTimeout = timeout

	enabled, err := strconv.ParseBool(get("METRICS_ENABLED", "true"))
	if err != nil {
		return Config{}, fmt.Errorf("invalid METRICS_ENABLED: %w", err)
	}
	cfg.MetricsEnabled = enabled

	switch cfg.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return Config{}, fmt.Errorf("invalid LOG_LEVEL %q", cfg.LogLevel)
	}

	return cfg, nil
}

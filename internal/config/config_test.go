package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func env(vars map[string]string) func(string) string {
	return func(key string) string { return vars[key] }
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := load(env(nil))
	require.NoError(t, err)

	assert.Equal(t, Config{
		HTTPAddr:       ":8081",
		StorageDriver:  DriverMemory,
		SQLitePath:     "sales.db",
		WebhookTimeout: 5 * time.Second,
		LogLevel:       "info",
		MetricsEnabled: true,
	}, cfg)
}

func TestLoad_Overrides(t *testing.T) {
	cfg, err := load(env(map[string]string{
		"HTTP_ADDR":              ":9090",
		"STORAGE_DRIVER":         "sqlite",
		"SQLITE_PATH":            "/tmp/sales.db",
		"EVENTS_WEBHOOK_URL":     "http://hooks.local/sales",
		"EVENTS_WEBHOOK_TIMEOUT": "750ms",
		"LOG_LEVEL":              "debug",
		"METRICS_ENABLED":        "false",
	}))
	require.NoError(t, err)

	assert.Equal(t, ":9090", cfg.HTTPAddr)
	assert.Equal(t, DriverSQLite, cfg.StorageDriver)
	assert.Equal(t, "/tmp/sales.db", cfg.SQLitePath)
	assert.Equal(t, "http://hooks.local/sales", cfg.WebhookURL)
	assert.Equal(t, 750*time.Millisecond, cfg.WebhookTimeout)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.False(t, cfg.MetricsEnabled)
}

func TestLoad_Invalid(t *testing.T) {
	tests := map[string]map[string]string{
		"driver":   {"STORAGE_DRIVER": "postgres"},
		"timeout":  {"EVENTS_WEBHOOK_TIMEOUT": "soon"},
		"negative": {"EVENTS_WEBHOOK_TIMEOUT": "-1s"},
		"metrics":  {"METRICS_ENABLED": "maybe"},
		"level":    {"LOG_LEVEL": "verbose"},
	}

	for name, vars := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := load(env(vars))
			assert.Error(t, err)
		})
	}
}

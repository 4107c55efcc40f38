package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "localhost", cfg.Server.Host)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, 5, cfg.Server.RateLimitRPS)
	assert.Empty(t, cfg.DB.URL)
	assert.Equal(t, "./data/crimes.db", cfg.DB.Path)
	assert.Zero(t, cfg.DB.YearFilter)
	assert.True(t, cfg.Open311.Enabled)
	assert.Equal(t, "2013-06-13", cfg.Open311.StartDate)
	assert.Equal(t, 15*time.Second, cfg.Open311.Timeout)
	assert.Equal(t, 1000, cfg.Open311.MaxPages)
	assert.Zero(t, cfg.Open311.SnapshotMaxAge)
	assert.Equal(t, 60, cfg.Forecast.Window)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, "json", cfg.Logging.Format)
}

func TestLoad_CustomEnv(t *testing.T) {
	t.Setenv("SERVER_PORT", "9090")
	t.Setenv("DATABASE_URL", "postgres://crimes@localhost/crimes?sslmode=disable")
	t.Setenv("CRIMES_YEAR_FILTER", "2013")
	t.Setenv("OPEN311_ENABLED", "false")
	t.Setenv("OPEN311_SNAPSHOT_MAX_AGE", "24h")
	t.Setenv("FORECAST_WINDOW", "12")
	t.Setenv("LOG_LEVEL", "debug")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "postgres://crimes@localhost/crimes?sslmode=disable", cfg.DB.URL)
	assert.Equal(t, 2013, cfg.DB.YearFilter)
	assert.False(t, cfg.Open311.Enabled)
	assert.Equal(t, 24*time.Hour, cfg.Open311.SnapshotMaxAge)
	assert.Equal(t, 12, cfg.Forecast.Window)
	assert.Equal(t, "debug", cfg.Logging.Level)
}

func TestLoad_InvalidValues(t *testing.T) {
	tests := []struct {
		name string
		key  string
		val  string
	}{
		{"port out of range", "SERVER_PORT", "70000"},
		{"unknown log level", "LOG_LEVEL", "verbose"},
		{"unknown log format", "LOG_FORMAT", "xml"},
		{"zero window", "FORECAST_WINDOW", "0"},
		{"zero rate limit", "RATE_LIMIT_RPS", "0"},
		{"zero max pages", "OPEN311_MAX_PAGES", "0"},
		{"negative snapshot age", "OPEN311_SNAPSHOT_MAX_AGE", "-1h"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(tt.key, tt.val)
			_, err := Load()
			assert.Error(t, err)
		})
	}
}

package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

type Config struct {
	Server   ServerConfig
	DB       DatabaseConfig
	Open311  Open311Config
	Forecast ForecastConfig
	Logging  LoggingConfig
}

type ServerConfig struct {
	Host         string
	Port         int
	RateLimitRPS int
}

// DatabaseConfig selects the crime store. When URL is set the Postgres
// adapter is used, otherwise the SQLite file at Path.
type DatabaseConfig struct {
	URL        string
	Path       string
	YearFilter int // 0 disables the year filter
}

type Open311Config struct {
	Enabled        bool
	URL            string
	StartDate      string
	Timeout        time.Duration
	MaxPages       int
	SnapshotPath   string
	SnapshotMaxAge time.Duration // 0 means the snapshot never expires
}

type ForecastConfig struct {
	Window int // months of history the crime counts span
}

type LoggingConfig struct {
	Level  string
	Format string // json or text
}

func Load() (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			Host:         getEnv("SERVER_HOST", "localhost"),
			Port:         getEnvInt("SERVER_PORT", 8080),
			RateLimitRPS: getEnvInt("RATE_LIMIT_RPS", 5),
		},
		DB: DatabaseConfig{
			URL:        getEnv("DATABASE_URL", ""),
			Path:       getEnv("DB_PATH", "./data/crimes.db"),
			YearFilter: getEnvInt("CRIMES_YEAR_FILTER", 0),
		},
		Open311: Open311Config{
			Enabled:        getEnvBool("OPEN311_ENABLED", true),
			URL:            getEnv("OPEN311_URL", "http://311api.cityofchicago.org/open311/v2/requests.json"),
			StartDate:      getEnv("OPEN311_START_DATE", "2013-06-13"),
			Timeout:        getEnvDuration("OPEN311_TIMEOUT", 15*time.Second),
			MaxPages:       getEnvInt("OPEN311_MAX_PAGES", 1000),
			SnapshotPath:   getEnv("OPEN311_SNAPSHOT_PATH", "./data/311requests.json"),
			SnapshotMaxAge: getEnvDuration("OPEN311_SNAPSHOT_MAX_AGE", 0),
		},
		Forecast: ForecastConfig{
			Window: getEnvInt("FORECAST_WINDOW", 60),
		},
		Logging: LoggingConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "json"),
		},
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}
	if c.Server.RateLimitRPS < 1 {
		return fmt.Errorf("rate limit must be at least 1 req/s, got %d", c.Server.RateLimitRPS)
	}

	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[c.Logging.Level] {
		return fmt.Errorf("invalid log level: %s", c.Logging.Level)
	}

	if c.Logging.Format != "json" && c.Logging.Format != "text" {
		return fmt.Errorf("invalid log format: %s", c.Logging.Format)
	}

	if c.Forecast.Window < 1 {
		return fmt.Errorf("forecast window must be positive, got %d", c.Forecast.Window)
	}
	if c.Open311.MaxPages < 1 {
		return fmt.Errorf("OPEN311_MAX_PAGES must be positive, got %d", c.Open311.MaxPages)
	}
	if c.Open311.Timeout <= 0 {
		return fmt.Errorf("OPEN311_TIMEOUT must be positive")
	}
	if c.Open311.SnapshotMaxAge < 0 {
		return fmt.Errorf("OPEN311_SNAPSHOT_MAX_AGE must not be negative")
	}
	if c.DB.URL == "" && c.DB.Path == "" {
		return fmt.Errorf("one of DATABASE_URL or DB_PATH is required")
	}

	return nil
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if val := os.Getenv(key); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			return i
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if val := os.Getenv(key); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			return b
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if val := os.Getenv(key); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			return d
		}
	}
	return fallback
}

package config

import (
	"os"
	"strconv"
	"time"

	"expdesign/internal/errors"
)

// Config represents the complete application configuration
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Session  SessionConfig
	Defaults DefaultsConfig
}

// ServerConfig holds web server settings
type ServerConfig struct {
	Port    string
	APIPort string
	GinMode string
}

// DatabaseConfig holds optional Postgres connection settings. When no
// DATABASE_URL is set the app falls back to in-memory session storage.
type DatabaseConfig struct {
	URL     string
	Enabled bool
}

// SessionConfig holds form-session retention settings
type SessionConfig struct {
	TTL             time.Duration
	CleanupInterval time.Duration
}

// DefaultsConfig holds the statistical defaults pre-filled into the
// designer and analysis forms.
type DefaultsConfig struct {
	Alpha float64
	Power float64
}

// Load reads configuration from environment variables and validates it
func Load() (*Config, error) {
	config := &Config{
		Server: ServerConfig{
			Port:    getEnvOrDefault("PORT", "8080"),
			APIPort: getEnvOrDefault("API_PORT", "8081"),
			GinMode: getEnvOrDefault("GIN_MODE", "release"),
		},
		Database: loadDatabaseConfig(),
		Session: SessionConfig{
			TTL:             getEnvDurationOrDefault("SESSION_TTL", 24*time.Hour),
			CleanupInterval: getEnvDurationOrDefault("SESSION_CLEANUP_INTERVAL", time.Hour),
		},
		Defaults: DefaultsConfig{
			Alpha: getEnvFloatOrDefault("DEFAULT_ALPHA", 0.05),
			Power: getEnvFloatOrDefault("DEFAULT_POWER", 0.80),
		},
	}

	if err := validateConfig(config); err != nil {
		return nil, errors.Wrap(err, "configuration validation failed")
	}
	return config, nil
}

func loadDatabaseConfig() DatabaseConfig {
	url := os.Getenv("DATABASE_URL")
	return DatabaseConfig{
		URL:     url,
		Enabled: url != "",
	}
}

func validateConfig(config *Config) error {
	if config.Server.Port == "" {
		return errors.ConfigInvalid("server port is required")
	}
	if a := config.Defaults.Alpha; a <= 0 || a >= 1 {
		return errors.ConfigInvalid("DEFAULT_ALPHA must be in (0, 1)")
	}
	if p := config.Defaults.Power; p <= 0 || p >= 1 {
		return errors.ConfigInvalid("DEFAULT_POWER must be in (0, 1)")
	}
	if config.Session.TTL <= 0 {
		return errors.ConfigInvalid("SESSION_TTL must be positive")
	}
	return nil
}

// Helper functions for environment variable parsing
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvFloatOrDefault(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}

func getEnvDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}

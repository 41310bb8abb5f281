package core

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config represents the main configuration for newsroom
type Config struct {
	Server   ServerConfig   `json:"server"`
	Database DatabaseConfig `json:"database"`
	Features FeatureConfig  `json:"features"`
}

// ServerConfig contains server-related configuration
type ServerConfig struct {
	Port int    `json:"port"`
	Host string `json:"host"`
}

// DatabaseConfig contains database-related configuration
type DatabaseConfig struct {
	Path string `json:"path"`
}

// FeatureConfig contains feature-specific configuration
type FeatureConfig struct {
	News NewsConfig `json:"news"`
}

// NewsConfig contains feed aggregation configuration
type NewsConfig struct {
	Enabled       bool          `json:"enabled"`
	FetchInterval time.Duration `json:"fetch_interval"`
	FetchTimeout  time.Duration `json:"fetch_timeout"`
	MaxWorkers    int           `json:"max_workers"`
	UserAgent     string        `json:"user_agent"`
}

// LoadConfig loads configuration from environment variables
func LoadConfig() (*Config, error) {
	config := &Config{
		Server: ServerConfig{
			Port: getEnvAsInt("NEWSROOM_PORT", 4100),
			Host: getEnvOrDefault("NEWSROOM_HOST", "0.0.0.0"),
		},
		Database: DatabaseConfig{
			Path: getEnvOrDefault("NEWSROOM_DB_PATH", "./newsroom.db"),
		},
		Features: FeatureConfig{
			News: NewsConfig{
				Enabled:       getEnvAsBool("NEWSROOM_ENABLE_NEWS", true),
				FetchInterval: getEnvAsDuration("NEWSROOM_FETCH_INTERVAL", 15*time.Minute),
				FetchTimeout:  getEnvAsDuration("NEWSROOM_FETCH_TIMEOUT", 30*time.Second),
				MaxWorkers:    getEnvAsInt("NEWSROOM_MAX_WORKERS", 5),
				UserAgent:     getEnvOrDefault("NEWSROOM_USER_AGENT", "newsroom/1.0"),
			},
		},
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}

	if c.Database.Path == "" {
		return fmt.Errorf("database path is required")
	}

	if c.Features.News.Enabled {
		if c.Features.News.FetchInterval < time.Minute {
			return fmt.Errorf("fetch interval must be at least one minute")
		}
		if c.Features.News.MaxWorkers < 1 {
			return fmt.Errorf("max workers must be at least 1")
		}
	}

	return nil
}

// IsFeatureEnabled checks if a feature is enabled
func (c *Config) IsFeatureEnabled(featureName string) bool {
	switch strings.ToLower(featureName) {
	case "news":
		return c.Features.News.Enabled
	default:
		return false
	}
}

// Helper functions for environment variable parsing
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		switch strings.ToLower(value) {
		case "true", "1", "yes", "on":
			return true
		case "false", "0", "no", "off":
			return false
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}

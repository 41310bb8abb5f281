package news

import (
	"fmt"
	"time"

	"newsroom/internal/core"
)

// Config represents news feature configuration
type Config struct {
	Enabled       bool
	FetchInterval time.Duration
	FetchTimeout  time.Duration
	MaxWorkers    int
	UserAgent     string
}

// NewConfig creates news config from core config
func NewConfig(coreConfig *core.Config) *Config {
	return &Config{
		Enabled:       coreConfig.Features.News.Enabled,
		FetchInterval: coreConfig.Features.News.FetchInterval,
		FetchTimeout:  coreConfig.Features.News.FetchTimeout,
		MaxWorkers:    coreConfig.Features.News.MaxWorkers,
		UserAgent:     coreConfig.Features.News.UserAgent,
	}
}

// Validate validates the news configuration
func (c *Config) Validate() error {
	if c.FetchInterval < time.Minute || c.FetchInterval > 24*time.Hour {
		return fmt.Errorf("fetch interval must be between 1 minute and 24 hours")
	}

	if c.FetchTimeout < time.Second || c.FetchTimeout > 5*time.Minute {
		return fmt.Errorf("fetch timeout must be between 1 second and 5 minutes")
	}

	if c.MaxWorkers < 1 || c.MaxWorkers > 20 {
		return fmt.Errorf("max workers must be between 1 and 20")
	}

	return nil
}

package models

import (
	"time"
)

// SchedulerConfig holds configuration for the refresh scheduler.
type SchedulerConfig struct {
	UpdateInterval time.Duration `json:"update_interval"`
	MaxWorkers     int           `json:"max_workers"`
}

// DefaultSchedulerConfig returns default scheduler configuration.
func DefaultSchedulerConfig() *SchedulerConfig {
	return &SchedulerConfig{
		UpdateInterval: 15 * time.Minute,
		MaxWorkers:     5,
	}
}

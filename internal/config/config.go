// Package config defines the service configuration and its defaults.
package config

import (
	"runtime"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// LogFormat selects the log handler: text or json.
	LogFormat string `koanf:"log_format"`

	// Addr configures the HTTP listen address, e.g. ":9080".
	Addr string `koanf:"addr"`

	// QueueSize bounds the in-memory attempt queue.
	QueueSize int `koanf:"queue_size"`

	// WorkerCount sets the number of scoring workers.
	WorkerCount int `koanf:"worker_count"`

	// DedupeSize sets how many attempt IDs are remembered for idempotency.
	DedupeSize int `koanf:"dedupe_size"`

	// ShardCount configures the shards of the in-memory session store.
	ShardCount int `koanf:"shard_count"`

	// BodyWeightKg is the body weight used for calorie estimates.
	BodyWeightKg float64 `koanf:"body_weight_kg"`

	// DatabaseURL selects the PostgreSQL session store; empty keeps sessions in memory.
	DatabaseURL string `koanf:"database_url"`

	// Cron specs for the periodic metrics refresh jobs.
	SystemMetricsSchedule  string `koanf:"system_metrics_schedule"`
	ServiceMetricsSchedule string `koanf:"service_metrics_schedule"`
}

// New creates a Config populated with defaults.
func New() *Config {
	return &Config{
		LogLevel:               "info",
		LogFormat:              "text",
		Addr:                   ":9080",
		QueueSize:              10_000,
		WorkerCount:            runtime.NumCPU() * 2,
		DedupeSize:             100_000,
		ShardCount:             8,
		BodyWeightKg:           70,
		SystemMetricsSchedule:  "@every 10s",
		ServiceMetricsSchedule: "@every 5s",
	}
}

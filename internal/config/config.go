// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - Defaults live in New; Load layers an optional YAML file and env vars.
// - External errors are wrapped via this package's sentinel kinds.
package config

import (
	"context"
	"runtime"
	"time"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// Addr configures the HTTP listen address, e.g. ":8080".
	Addr string `koanf:"addr"`

	// SettlementQueueSize bounds the in-memory settlement job queue.
	SettlementQueueSize int `koanf:"queue_size"`

	// WorkerCount sets the number of settlement workers.
	WorkerCount int `koanf:"worker_count"`

	// SweepInterval is how often the deadline sweeper looks for open
	// challenges past their deadline.
	SweepInterval time.Duration `koanf:"sweep_interval"`

	// MaxLeaderboardLimit caps GET /leaderboard?limit.
	MaxLeaderboardLimit int `koanf:"max_leaderboard_limit"`

	// AllowNegativeScore controls whether a proposer may wager more points
	// than they currently hold. When false, ProposeBet rejects such stakes.
	AllowNegativeScore bool `koanf:"allow_negative_score"`

	// Assessor holds the outcome assessor client settings.
	Assessor AssessorConfig `koanf:"assessor"`
}

// AssessorConfig configures the external outcome assessor.
type AssessorConfig struct {
	// APIKey authenticates against the model provider.
	APIKey string `koanf:"api_key"`

	// Model names the chat model used for verdicts and test cases.
	Model string `koanf:"model"`

	// RequestTimeout bounds a single assessor call.
	RequestTimeout time.Duration `koanf:"request_timeout"`

	// MaxRetryElapsed bounds the total retry window for one assessment.
	MaxRetryElapsed time.Duration `koanf:"max_retry_elapsed"`

	// RequestsPerSecond rate-limits calls to the provider.
	RequestsPerSecond int `koanf:"requests_per_second"`
}

// New creates a Config with defaults.
func New(_ context.Context) *Config {
	return &Config{
		LogLevel:            "info",
		Addr:                ":9080",
		SettlementQueueSize: 1024,
		WorkerCount:         runtime.NumCPU() * 2,
		SweepInterval:       time.Minute,
		MaxLeaderboardLimit: 100,
		AllowNegativeScore:  true,
		Assessor: AssessorConfig{
			Model:             "gpt-4o-mini",
			RequestTimeout:    30 * time.Second,
			MaxRetryElapsed:   2 * time.Minute,
			RequestsPerSecond: 5,
		},
	}
}

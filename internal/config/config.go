// Package config defines service configuration structures and loading hooks.
package config

import (
	"fmt"
	"runtime"

	"github.com/okian/vectordraw/internal/domain/grader"
	"github.com/okian/vectordraw/pkg/logger"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// LogFormat selects the log encoding: text or json.
	LogFormat string `koanf:"log_format"`

	// Addr configures the HTTP listen address, e.g. ":8080".
	Addr string `koanf:"addr"`

	// QueueSize bounds the in-memory submission queue.
	QueueSize int `koanf:"queue_size"`

	// WorkerCount sets the number of grading workers.
	WorkerCount int `koanf:"worker_count"`

	// DedupeSize sets how many submission IDs are remembered.
	DedupeSize int `koanf:"dedupe_size"`

	// ShardCount configures the number of shards in the attempt store.
	ShardCount int `koanf:"shard_count"`

	// SuccessMessage is returned for correct answers on exercises that do
	// not define their own.
	SuccessMessage string `koanf:"success_message"`

	// ExercisesDir is scanned for *.yaml exercise files at startup.
	// Empty means the service starts with no exercises.
	ExercisesDir string `koanf:"exercises_dir"`
}

// New creates a Config with defaults.
func New() *Config {
	return &Config{
		LogLevel:       "info",
		LogFormat:      logger.FormatText,
		Addr:           ":9080",
		QueueSize:      10_000,
		WorkerCount:    runtime.NumCPU() * 2,
		DedupeSize:     50_000,
		ShardCount:     16,
		SuccessMessage: grader.DefaultSuccessMessage,
		ExercisesDir:   "exercises",
	}
}

// Validate reports the first setting that cannot be used.
func (c *Config) Validate() error {
	switch {
	case c.Addr == "":
		return fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	case c.SuccessMessage == "":
		return fmt.Errorf("%w: success_message must not be empty", ErrInvalidConfig)
	case c.LogFormat != logger.FormatText && c.LogFormat != logger.FormatJSON:
		return fmt.Errorf("%w: unknown log_format %q", ErrInvalidConfig, c.LogFormat)
	}
	for name, v := range map[string]int{
		"queue_size":   c.QueueSize,
		"worker_count": c.WorkerCount,
		"dedupe_size":  c.DedupeSize,
		"shard_count":  c.ShardCount,
	} {
		if v < 0 {
			return fmt.Errorf("%w: %s must not be negative", ErrInvalidConfig, name)
		}
	}
	return nil
}

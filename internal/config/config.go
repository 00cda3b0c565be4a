// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - New() returns a Config populated with defaults.
// - Load(ctx) layers a YAML file, a dotenv file and the environment on top.
// - Validation errors wrap ErrInvalidConfig.
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

	// Addr configures the HTTP listen address, e.g. ":8000".
	Addr string `koanf:"addr"`

	// EnforceCapacity rejects signups once an activity reaches max_participants.
	EnforceCapacity bool `koanf:"enforce_capacity"`

	// SeedFile points at a YAML activity catalog. Empty uses the built-in catalog.
	SeedFile string `koanf:"seed_file"`

	// FeedQueueSize bounds the in-memory roster change queue.
	FeedQueueSize int `koanf:"feed_queue_size"`

	// FeedWorkerCount sets the number of goroutines draining the change queue.
	FeedWorkerCount int `koanf:"feed_worker_count"`

	// JournalSize is how many recent changes GET /changes can return.
	JournalSize int `koanf:"journal_size"`

	// MaxChangesLimit caps GET /changes?limit.
	MaxChangesLimit int `koanf:"max_changes_limit"`

	// MetricsInstance is attached to every metric as the "instance" label.
	// Empty leaves the label off.
	MetricsInstance string `koanf:"metrics_instance"`
}

// New creates a Config with defaults.
func New() *Config {
	return &Config{
		LogLevel:        "info",
		LogFormat:       "text",
		Addr:            ":8000",
		EnforceCapacity: true,
		SeedFile:        "",
		FeedQueueSize:   4096,
		FeedWorkerCount: runtime.NumCPU(),
		JournalSize:     1024,
		MaxChangesLimit: 200,
		MetricsInstance: "",
	}
}

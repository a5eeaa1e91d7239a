package fetch

import (
	"time"
)

const defaultBufferSize = 32 * 1024

type ConfigOption func(*Config)

type Config struct {
	MaxRetries   int           `json:"maxRetries"`
	RetryDelay   time.Duration `json:"retryDelay,omitempty"`
	BufferSize   int           `json:"bufferSize"`
	AtomicWrites bool          `json:"atomicWrites"`
}

func defaultConfig() *Config {
	return &Config{
		MaxRetries: 3,
		RetryDelay: 2 * time.Second,
		BufferSize: defaultBufferSize,
	}
}

// WithMaxRetries sets the total number of attempts per file. Values below
// one fall back to a single attempt.
func WithMaxRetries(maxRetries int) ConfigOption {
	return func(cfg *Config) {
		if maxRetries <= 0 {
			maxRetries = 1
		}

		cfg.MaxRetries = maxRetries
	}
}

func WithRetryDelay(retryDelay time.Duration) ConfigOption {
	return func(cfg *Config) {
		cfg.RetryDelay = retryDelay
	}
}

func WithBufferSize(size int) ConfigOption {
	return func(cfg *Config) {
		if size <= 0 {
			size = defaultBufferSize
		}

		cfg.BufferSize = size
	}
}

// WithAtomicWrites streams into a temporary sibling and renames it over the
// destination only once the body has been fully received.
func WithAtomicWrites(enabled bool) ConfigOption {
	return func(cfg *Config) {
		cfg.AtomicWrites = enabled
	}
}

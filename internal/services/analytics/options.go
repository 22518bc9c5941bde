package analytics

import "time"

type modelConfig struct {
    timeout  time.Duration
    attempts int
}

// ModelOption configures HTTPModelClient.
type ModelOption func(*modelConfig)

// WithModelTimeout sets the per-request timeout.
func WithModelTimeout(d time.Duration) ModelOption {
    return func(c *modelConfig) { c.timeout = d }
}

// WithModelAttempts sets how many times a transient failure is tried.
func WithModelAttempts(n int) ModelOption {
    return func(c *modelConfig) { c.attempts = n }
}

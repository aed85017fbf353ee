// Package retry provides bounded retry logic with linear back-off for
// transient errors.
package retry

import "time"

// Config holds retry configuration parameters.
type Config struct {
	// MaxAttempts is the maximum number of attempts (default: 3).
	// The initial request counts as attempt 1.
	MaxAttempts int

	// BaseDelay is the linear back-off unit (default: 2s).
	BaseDelay time.Duration
}

// DefaultConfig returns the default retry configuration.
// - 3 max attempts
// - 2 second base delay
func DefaultConfig() Config {
	return Config{
		MaxAttempts: 3,
		BaseDelay:   2 * time.Second,
	}
}

// Disabled returns a configuration that disables retries (single attempt).
func Disabled() Config {
	return Config{MaxAttempts: 1}
}

// Delay calculates the wait after the given failed attempt (1-indexed).
// Formula: baseDelay * attempt
func (c Config) Delay(attempt int) time.Duration {
	if attempt < 1 {
		attempt = 1
	}
	return c.BaseDelay * time.Duration(attempt)
}

func (c Config) attempts() int {
	if c.MaxAttempts < 1 {
		return 1
	}
	return c.MaxAttempts
}

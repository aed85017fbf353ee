package mediagen

import "time"

// RetryConfig holds retry configuration parameters.
// Use DefaultRetryConfig() for the standard policy or create custom configs.
type RetryConfig struct {
	// MaxAttempts is the maximum number of attempts (default: 3).
	// The initial request counts as attempt 1.
	MaxAttempts int

	// BaseDelay is the linear back-off unit (default: 2s).
	// The wait after failed attempt i (1-indexed) is BaseDelay * i.
	BaseDelay time.Duration
}

// DefaultRetryConfig returns the default retry configuration.
//   - 3 max attempts
//   - 2 second base delay (waits of 2s, then 4s)
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxAttempts: 3,
		BaseDelay:   2 * time.Second,
	}
}

// DisabledRetryConfig returns a configuration that disables retries (single attempt).
func DisabledRetryConfig() RetryConfig {
	return RetryConfig{MaxAttempts: 1}
}

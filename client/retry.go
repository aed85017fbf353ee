package client

import (
	"github.com/spetersoncode/mediagen"
	"github.com/spetersoncode/mediagen/internal/retry"
)

// toInternalRetryConfig converts a mediagen.RetryConfig to internal retry.Config.
func toInternalRetryConfig(cfg *mediagen.RetryConfig) retry.Config {
	return retry.Config{
		MaxAttempts: cfg.MaxAttempts,
		BaseDelay:   cfg.BaseDelay,
	}
}

// RetryEvent represents an observable occurrence during retry execution.
type RetryEvent = retry.Event

// RetryEventType identifies the kind of event occurring during retry execution.
type RetryEventType = retry.EventType

// Retry event type constants.
const (
	RetryEventAttemptStart  = retry.EventAttemptStart
	RetryEventAttemptFailed = retry.EventAttemptFailed
	RetryEventRetrying      = retry.EventRetrying
	RetryEventSuccess       = retry.EventSuccess
	RetryEventExhausted     = retry.EventExhausted
)

// IsTransientError determines if an error is transient and should be retried.
// Categorized errors decide by category; HTTP 400, 401 and 403 are terminal.
func IsTransientError(err error) bool {
	return retry.IsTransient(err)
}

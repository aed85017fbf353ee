package retry

import "time"

// EventType names a step of the retry loop.
type EventType string

// Every attempt emits attempt_start and then success or attempt_failed. A
// failed attempt with budget left emits retrying before the wait; the last
// failed attempt emits exhausted.
const (
	EventAttemptStart  EventType = "attempt_start"
	EventAttemptFailed EventType = "attempt_failed"
	EventRetrying      EventType = "retrying"
	EventSuccess       EventType = "success"
	EventExhausted     EventType = "exhausted"
)

// Event reports one step of DoWithEvents.
type Event struct {
	Type EventType

	// Attempt is 1-indexed; MaxAttempts is the configured budget.
	Attempt     int
	MaxAttempts int

	// Error is the attempt's failure for attempt_failed and exhausted.
	Error error

	// Delay is the wait before the next attempt (retrying only):
	// BaseDelay*Attempt, or the provider's Retry-After when that is longer.
	Delay time.Duration

	// ServerDelay is set when Delay came from Retry-After.
	ServerDelay bool

	// Retryable reports IsTransient for the failed attempt.
	Retryable bool

	Timestamp time.Time
}

// emit stamps event and offers it to ch. A full or nil channel drops it.
func emit(ch chan<- Event, event Event) {
	if ch == nil {
		return
	}
	event.Timestamp = time.Now()
	select {
	case ch <- event:
	default:
	}
}

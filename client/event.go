package client

import (
	"time"

	"github.com/spetersoncode/mediagen"
)

// EventType identifies the kind of event occurring during client operations.
type EventType string

const (
	// EventRequestStart fires before a generation begins.
	EventRequestStart EventType = "request_start"

	// EventRequestComplete fires after a generation completes successfully.
	EventRequestComplete EventType = "request_complete"

	// EventRequestError fires when a generation fails.
	EventRequestError EventType = "request_error"

	// EventRetry fires when a retry event occurs (forwarded from the retry loop).
	EventRetry EventType = "retry"
)

// Event represents an observable occurrence during client operations.
type Event struct {
	// Type identifies the kind of event.
	Type EventType

	// RequestID correlates all events of one GenerateImage call.
	RequestID string

	// Operation identifies the API operation ("image").
	Operation string

	// API identifies the wire protocol in use.
	API mediagen.API

	// Model is the model identifier.
	Model string

	// Duration is the elapsed time for finished requests.
	Duration time.Duration

	// Error contains the error for EventRequestError, and the attempt's
	// error for failed-attempt retry events.
	Error error

	// RetryEvent contains the underlying retry event for EventRetry.
	RetryEvent *RetryEvent

	// Diagnostics describes how the provider handled the call. Set on
	// finished requests once the provider has reported.
	Diagnostics *mediagen.Diagnostics

	// Timestamp is when the event occurred.
	Timestamp time.Time
}

// with returns a copy of the call metadata as an event of type t.
func (e Event) with(t EventType, d time.Duration, err error) Event {
	e.Type = t
	e.Duration = d
	e.Error = err
	return e
}

// emit sends an event with timestamp to the channel without blocking.
func emit(ch chan<- Event, event Event) {
	if ch == nil {
		return
	}
	event.Timestamp = time.Now()
	select {
	case ch <- event:
	default:
		// Channel full - don't block
	}
}

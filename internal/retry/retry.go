package retry

import (
	"context"
	"errors"
	"time"

	"github.com/spetersoncode/mediagen"
)

// retryAfterFromError extracts the RetryAfter duration from a CategorizedError.
func retryAfterFromError(err error) time.Duration {
	var ce mediagen.CategorizedError
	if errors.As(err, &ce) {
		return ce.RetryAfter()
	}
	return 0
}

// effectiveDelay returns the wait before the next attempt and whether it is
// the server's Retry-After, which wins when longer than the linear delay.
func effectiveDelay(configuredDelay time.Duration, err error) (time.Duration, bool) {
	serverDelay := retryAfterFromError(err)
	if serverDelay > configuredDelay {
		return serverDelay, true
	}
	return configuredDelay, false
}

// wait blocks for d or until ctx is done.
func wait(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// Do executes the given function with retry logic.
// It respects context cancellation during back-off waits.
// Returns the result on success, or the last error if all attempts fail.
func Do[T any](ctx context.Context, cfg Config, fn func() (T, error)) (T, error) {
	return DoWithEvents(ctx, cfg, nil, fn)
}

// DoWithEvents is like Do but emits events for observability.
// Events are sent non-blocking; if the channel is full, events are dropped.
// Pass nil for events to disable event emission (equivalent to Do).
func DoWithEvents[T any](ctx context.Context, cfg Config, events chan<- Event, fn func() (T, error)) (T, error) {
	var zero T
	var lastErr error
	maxAttempts := cfg.attempts()

	for attempt := 1; attempt <= maxAttempts; attempt++ {
		emit(events, Event{
			Type:        EventAttemptStart,
			Attempt:     attempt,
			MaxAttempts: maxAttempts,
		})

		result, err := fn()
		if err == nil {
			emit(events, Event{
				Type:        EventSuccess,
				Attempt:     attempt,
				MaxAttempts: maxAttempts,
			})
			return result, nil
		}

		lastErr = err
		retryable := IsTransient(err)

		emit(events, Event{
			Type:        EventAttemptFailed,
			Attempt:     attempt,
			MaxAttempts: maxAttempts,
			Error:       err,
			Retryable:   retryable,
		})

		if !retryable {
			return zero, err
		}

		// Don't sleep after the last attempt
		if attempt < maxAttempts {
			delay, fromServer := effectiveDelay(cfg.Delay(attempt), err)

			emit(events, Event{
				Type:        EventRetrying,
				Attempt:     attempt,
				MaxAttempts: maxAttempts,
				Delay:       delay,
				ServerDelay: fromServer,
			})

			if err := wait(ctx, delay); err != nil {
				return zero, err
			}
		}
	}

	emit(events, Event{
		Type:        EventExhausted,
		Attempt:     maxAttempts,
		MaxAttempts: maxAttempts,
		Error:       lastErr,
	})

	return zero, lastErr
}

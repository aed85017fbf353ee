package openai

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/openai/openai-go"
	"github.com/spetersoncode/mediagen"
	"github.com/spetersoncode/mediagen/internal/retry"
)

const (
	unsafePromptMessage = "the prompt may contain unsafe or prohibited content and could not be processed; revise it and try again"
	serverBusyMessage   = "the service is handling too many requests and could not process this one; try again later"
)

// wrapError wraps an SDK error with error categorization.
// It extracts status codes and Retry-After headers for proper retry handling.
func wrapError(err error) error {
	if err == nil {
		return nil
	}

	var apiErr *openai.Error
	if !errors.As(err, &apiErr) {
		// Transport failures carry URLs, never classify them by message
		return mediagen.NewTransientError("image request failed", 0, err)
	}

	code := apiErr.StatusCode
	switch categorizeStatusCode(code) {
	case mediagen.ErrorUserInput:
		return mediagen.NewUserInputError(unsafePromptMessage, code, err)
	case mediagen.ErrorPermanent:
		return mediagen.NewPermanentError("request rejected", code, err)
	}

	// Gateways relay upstream credential and request failures in the message
	if retry.MentionsTerminalStatus(apiErr.Message) {
		return mediagen.NewPermanentError("request rejected", code, err)
	}

	if retryAfter := parseRetryAfter(apiErr.Response); retryAfter > 0 {
		return mediagen.NewTransientErrorWithRetry("request failed", code, retryAfter, err)
	}
	if code == http.StatusInternalServerError {
		return mediagen.NewTransientError(serverBusyMessage, code, err)
	}
	return mediagen.NewTransientError("request failed", code, err)
}

// categorizeStatusCode determines the error category from an HTTP status code.
func categorizeStatusCode(code int) mediagen.ErrorCategory {
	switch code {
	case http.StatusBadRequest:
		return mediagen.ErrorUserInput
	case http.StatusUnauthorized, http.StatusForbidden:
		return mediagen.ErrorPermanent
	default:
		return mediagen.ErrorTransient
	}
}

// parseRetryAfter extracts the Retry-After duration from an HTTP response.
// Returns 0 if the header is not present or cannot be parsed.
func parseRetryAfter(resp *http.Response) time.Duration {
	if resp == nil {
		return 0
	}

	header := resp.Header.Get("Retry-After")
	if header == "" {
		return 0
	}

	// Try parsing as seconds (most common)
	if seconds, err := strconv.Atoi(header); err == nil {
		return time.Duration(seconds) * time.Second
	}

	// Try parsing as HTTP-date (RFC 7231)
	if t, err := http.ParseTime(header); err == nil {
		delay := time.Until(t)
		if delay > 0 {
			return delay
		}
	}

	return 0
}

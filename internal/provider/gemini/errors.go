package gemini

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/spetersoncode/mediagen"
	"github.com/spetersoncode/mediagen/internal/retry"
)

const (
	unsafePromptMessage = "the prompt may contain unsafe or prohibited content and could not be processed; revise it and try again"
	serverBusyMessage   = "the service is handling too many requests and could not process this one; try again later"
	rejectedMessage     = "request rejected"
	failedMessage       = "request failed"

	maxErrorBody = 64 << 10
)

// APIError is a non-success HTTP response from the provider.
type APIError struct {
	StatusCode int
	Message    string
}

// Error returns the status and the provider's message.
func (e *APIError) Error() string {
	return fmt.Sprintf("HTTP %d: %s", e.StatusCode, e.Message)
}

// ProviderMessage returns the provider's own error text.
func (e *APIError) ProviderMessage() string {
	return e.Message
}

// errorEnvelope is the provider's JSON error shape.
type errorEnvelope struct {
	Error struct {
		Message string `json:"message"`
	} `json:"error"`
}

// readAPIError builds an APIError from a failed response. The message is
// taken from error.message, then the raw body, then the status line.
func readAPIError(resp *http.Response) *APIError {
	apiErr := &APIError{
		StatusCode: resp.StatusCode,
		Message:    fmt.Sprintf("HTTP error: %d", resp.StatusCode),
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	if err != nil || len(body) == 0 {
		return apiErr
	}

	var env errorEnvelope
	if json.Unmarshal(body, &env) == nil && env.Error.Message != "" {
		apiErr.Message = env.Error.Message
		return apiErr
	}
	if text := strings.TrimSpace(string(body)); text != "" {
		apiErr.Message = text
	}
	return apiErr
}

// wrapStatusError categorizes a failed response.
func wrapStatusError(resp *http.Response) error {
	apiErr := readAPIError(resp)
	code := apiErr.StatusCode

	switch categorizeStatusCode(code) {
	case mediagen.ErrorUserInput:
		return mediagen.NewUserInputError(unsafePromptMessage, code, apiErr)
	case mediagen.ErrorPermanent:
		return mediagen.NewPermanentError(rejectedMessage, code, apiErr)
	}

	// Gateways relay upstream credential and request failures in the message
	if retry.MentionsTerminalStatus(apiErr.Message) {
		return mediagen.NewPermanentError(rejectedMessage, code, apiErr)
	}

	if retryAfter := parseRetryAfter(resp); retryAfter > 0 {
		return mediagen.NewTransientErrorWithRetry(failedMessage, code, retryAfter, apiErr)
	}
	if code == http.StatusInternalServerError {
		return mediagen.NewTransientError(serverBusyMessage, code, apiErr)
	}
	return mediagen.NewTransientError(failedMessage, code, apiErr)
}

// wrapTransportError categorizes a network failure. Transport errors carry
// URLs whose digits must not be mistaken for status codes, so they are
// always categorized explicitly.
func wrapTransportError(err error) error {
	return mediagen.NewTransientError("image request failed", 0, err)
}

// categorizeStatusCode determines the error category from an HTTP status code.
func categorizeStatusCode(code int) mediagen.ErrorCategory {
	switch code {
	case http.StatusBadRequest:
		return mediagen.ErrorUserInput // Unsafe or malformed prompt
	case http.StatusUnauthorized, http.StatusForbidden:
		return mediagen.ErrorPermanent // Invalid credential
	default:
		return mediagen.ErrorTransient
	}
}

// parseRetryAfter extracts the Retry-After duration from an HTTP response.
// Returns 0 if the header is not present or cannot be parsed.
func parseRetryAfter(resp *http.Response) time.Duration {
	header := resp.Header.Get("Retry-After")
	if header == "" {
		return 0
	}

	if seconds, err := strconv.Atoi(header); err == nil {
		return time.Duration(seconds) * time.Second
	}

	if t, err := http.ParseTime(header); err == nil {
		if delay := time.Until(t); delay > 0 {
			return delay
		}
	}

	return 0
}

package mediagen

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestSentinelErrors(t *testing.T) {
	t.Run("no image data is distinct from parse errors", func(t *testing.T) {
		parseErr := &ParseError{ContentType: "application/json", Err: errors.New("unexpected EOF")}
		assert.False(t, errors.Is(parseErr, ErrNoImageData))
		assert.NotEqual(t, ErrNoImageData.Error(), parseErr.Error())
	})

	t.Run("can be compared with errors.Is when wrapped", func(t *testing.T) {
		err := fmt.Errorf("stream: %w", ErrNoImageData)
		assert.True(t, errors.Is(err, ErrNoImageData))
	})
}

func TestCategorizedErrors(t *testing.T) {
	tests := []struct {
		name      string
		err       *Error
		category  ErrorCategory
		retryable bool
	}{
		{"transient", NewTransientError("busy", 500, nil), ErrorTransient, true},
		{"permanent", NewPermanentError("unauthorized", 401, nil), ErrorPermanent, false},
		{"user input", NewUserInputError("bad prompt", 400, nil), ErrorUserInput, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.category, tt.err.Category())
			assert.Equal(t, tt.retryable, tt.err.Retryable())
			assert.Equal(t, tt.retryable, IsTransient(tt.err))
		})
	}

	t.Run("helpers see through wrapping", func(t *testing.T) {
		inner := NewTransientErrorWithRetry("rate limited", 429, 3*time.Second, nil)
		wrapped := fmt.Errorf("generate: %w", inner)

		assert.True(t, IsTransient(wrapped))
		assert.False(t, IsPermanent(wrapped))
		assert.False(t, IsUserInput(wrapped))
		assert.Equal(t, 429, StatusCodeOf(wrapped))
		assert.Equal(t, 3*time.Second, RetryAfterOf(wrapped))
	})

	t.Run("uncategorized errors report zero values", func(t *testing.T) {
		err := errors.New("plain")
		assert.False(t, IsTransient(err))
		assert.Equal(t, 0, StatusCodeOf(err))
		assert.Zero(t, RetryAfterOf(err))
	})

	t.Run("message includes cause", func(t *testing.T) {
		err := NewPermanentError("request failed", 403, errors.New("forbidden"))
		assert.Equal(t, "request failed: forbidden", err.Error())
		assert.EqualError(t, err.Unwrap(), "forbidden")
	})
}

func TestParseError(t *testing.T) {
	err := &ParseError{ContentType: "application/json", Err: errors.New("invalid character 'x'")}

	assert.Equal(t, "image generation failed: invalid application/json response: invalid character 'x'", err.Error())
	assert.True(t, IsPermanent(err))
	assert.False(t, err.Retryable())
}

func TestImageError(t *testing.T) {
	t.Run("Error returns formatted message", func(t *testing.T) {
		tests := []struct {
			name     string
			op       string
			url      string
			err      error
			expected string
		}{
			{
				name:     "fetch error",
				op:       "fetch",
				url:      "https://example.com/image.png",
				err:      errors.New("connection refused"),
				expected: "image fetch error for https://example.com/image.png: connection refused",
			},
			{
				name:     "convert error",
				op:       "convert",
				url:      "https://example.com/image.png",
				err:      ErrConversion,
				expected: "image convert error for https://example.com/image.png: image conversion failed",
			},
		}

		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				imgErr := &ImageError{Op: tt.op, URL: tt.url, Err: tt.err}
				assert.Equal(t, tt.expected, imgErr.Error())
			})
		}
	})

	t.Run("Unwrap returns underlying error", func(t *testing.T) {
		imgErr := &ImageError{Op: "convert", URL: "test.png", Err: ErrConversion}
		assert.True(t, errors.Is(imgErr, ErrConversion))
	})

	t.Run("Unwrap returns nil when no underlying error", func(t *testing.T) {
		imgErr := &ImageError{Op: "fetch", URL: "test.png"}
		assert.Nil(t, imgErr.Unwrap())
	})
}

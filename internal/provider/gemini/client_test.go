package gemini

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/spetersoncode/mediagen"
	"github.com/spetersoncode/mediagen/internal/retry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const fooImage = `{"candidates":[{"content":{"parts":[{"inlineData":{"mimeType":"image/png","data":"Zm9v"}}]}}]}`

func fastRetry() retry.Config {
	return retry.Config{MaxAttempts: 3, BaseDelay: time.Millisecond}
}

func testModel(baseURL string) *mediagen.ResolvedModel {
	return &mediagen.ResolvedModel{ID: "gemini-2.5-flash-image", BaseURL: baseURL + "/"}
}

func TestGenerateImageSendsRequest(t *testing.T) {
	var got Request
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/v1beta/models/gemini-2.5-flash-image:generateContent", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		assert.Equal(t, "*/*", r.Header.Get("Accept"))
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))

		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, fooImage)
	}))
	defer srv.Close()

	c := New(WithRetryConfig(fastRetry()))
	uri, err := c.GenerateImage(context.Background(), testModel(srv.URL), "test-key",
		mediagen.GenerationRequest{Prompt: "a lighthouse", AspectRatio: mediagen.AspectRatio1x1})
	require.NoError(t, err)
	assert.Equal(t, "data:image/png;base64,Zm9v", uri)

	require.Len(t, got.Contents, 1)
	assert.Equal(t, "a lighthouse", got.Contents[0].Parts[0].Text)
	require.NotNil(t, got.GenerationConfig.ImageConfig)
	assert.Equal(t, "1:1", got.GenerationConfig.ImageConfig.AspectRatio)
}

func TestGenerateImageRetriesTransientFailures(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, fooImage)
	}))
	defer srv.Close()

	events := make(chan retry.Event, 16)
	c := New(WithRetryConfig(fastRetry()), WithRetryEvents(events))

	uri, err := c.GenerateImage(context.Background(), testModel(srv.URL), "k", mediagen.GenerationRequest{Prompt: "p"})
	require.NoError(t, err)
	assert.Equal(t, "data:image/png;base64,Zm9v", uri)
	assert.Equal(t, int32(3), calls.Load())

	close(events)
	var retrying []time.Duration
	for ev := range events {
		if ev.Type == retry.EventRetrying {
			retrying = append(retrying, ev.Delay)
		}
	}
	assert.Equal(t, []time.Duration{time.Millisecond, 2 * time.Millisecond}, retrying)
}

func TestGenerateImageTerminalStatuses(t *testing.T) {
	tests := []struct {
		name     string
		status   int
		body     string
		category mediagen.ErrorCategory
		contains string
	}{
		{name: "bad request", status: http.StatusBadRequest, body: `{"error":{"message":"blocked"}}`, category: mediagen.ErrorUserInput, contains: "unsafe or prohibited"},
		{name: "unauthorized", status: http.StatusUnauthorized, body: `{"error":{"message":"API key not valid"}}`, category: mediagen.ErrorPermanent, contains: "API key not valid"},
		{name: "forbidden", status: http.StatusForbidden, body: "denied", category: mediagen.ErrorPermanent, contains: "HTTP 403: denied"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var calls atomic.Int32
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				calls.Add(1)
				w.WriteHeader(tt.status)
				_, _ = io.WriteString(w, tt.body)
			}))
			defer srv.Close()

			c := New(WithRetryConfig(fastRetry()))
			_, err := c.GenerateImage(context.Background(), testModel(srv.URL), "k", mediagen.GenerationRequest{Prompt: "p"})
			require.Error(t, err)
			assert.Equal(t, int32(1), calls.Load())
			assert.Contains(t, err.Error(), tt.contains)
			assert.Equal(t, tt.status, mediagen.StatusCodeOf(err))

			var catErr mediagen.CategorizedError
			require.True(t, errors.As(err, &catErr))
			assert.Equal(t, tt.category, catErr.Category())
		})
	}
}

func TestGenerateImageExhaustsAttempts(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := New(WithRetryConfig(fastRetry()))
	_, err := c.GenerateImage(context.Background(), testModel(srv.URL), "k", mediagen.GenerationRequest{Prompt: "p"})
	require.Error(t, err)
	assert.Equal(t, int32(3), calls.Load())
	assert.Contains(t, err.Error(), "too many requests")
	assert.Contains(t, err.Error(), "HTTP error: 500")
}

func TestGenerateImageParseFailureNotRetried(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"candidates":[{"content":{"parts":[{"text":"no"}]}}]}`)
	}))
	defer srv.Close()

	c := New(WithRetryConfig(fastRetry()))
	_, err := c.GenerateImage(context.Background(), testModel(srv.URL), "k", mediagen.GenerationRequest{Prompt: "p"})
	assert.ErrorIs(t, err, mediagen.ErrNoImageData)
	assert.Equal(t, int32(1), calls.Load())
}

func TestGenerateImageCanceledDuringBackoff(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	c := New(WithRetryConfig(retry.Config{MaxAttempts: 3, BaseDelay: time.Hour}))
	_, err := c.GenerateImage(ctx, testModel(srv.URL), "k", mediagen.GenerationRequest{Prompt: "p"})
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestGenerateImageStreaming(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/event-stream")
		flusher := w.(http.Flusher)
		_, _ = io.WriteString(w, "data: {\"candidates\":[{\"content\":{\"parts\":[{\"text\":\"working\"}]}}]}\n\n")
		flusher.Flush()
		_, _ = io.WriteString(w, "data: "+fooImage+"\n\n")
		flusher.Flush()
	}))
	defer srv.Close()

	c := New(WithRetryConfig(fastRetry()))
	uri, err := c.GenerateImage(context.Background(), testModel(srv.URL), "k", mediagen.GenerationRequest{Prompt: "p"})
	require.NoError(t, err)
	assert.Equal(t, "data:image/png;base64,Zm9v", uri)
}

func TestGenerateImageRelayedTerminalStatus(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadGateway)
		_, _ = io.WriteString(w, `{"error":{"message":"upstream returned 401 Unauthorized"}}`)
	}))
	defer srv.Close()

	c := New(WithRetryConfig(fastRetry()))
	_, err := c.GenerateImage(context.Background(), testModel(srv.URL), "k", mediagen.GenerationRequest{Prompt: "p"})
	require.Error(t, err)
	assert.Equal(t, int32(1), calls.Load())
	assert.Contains(t, err.Error(), "upstream returned 401")
	assert.Equal(t, http.StatusBadGateway, mediagen.StatusCodeOf(err))
	assert.True(t, mediagen.IsPermanent(err))
}

func TestGenerateImageRetriesInterruptedStream(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			// Promise more body than is sent, then drop the connection
			conn, buf, err := w.(http.Hijacker).Hijack()
			if !assert.NoError(t, err) {
				return
			}
			_, _ = buf.WriteString("HTTP/1.1 200 OK\r\nContent-Type: text/event-stream\r\nContent-Length: 4096\r\n\r\n")
			_, _ = buf.WriteString("data: {\"candidates\":[{\"content\":{\"parts\":[{\"text\":\"working\"}]}}]}\n\n")
			_ = buf.Flush()
			_ = conn.Close()
			return
		}
		w.Header().Set("Content-Type", "text/event-stream")
		_, _ = io.WriteString(w, "data: "+fooImage+"\n\n")
	}))
	defer srv.Close()

	events := make(chan retry.Event, 16)
	c := New(WithRetryConfig(fastRetry()), WithRetryEvents(events))

	uri, err := c.GenerateImage(context.Background(), testModel(srv.URL), "k", mediagen.GenerationRequest{Prompt: "p"})
	require.NoError(t, err)
	assert.Equal(t, "data:image/png;base64,Zm9v", uri)
	assert.Equal(t, int32(2), calls.Load())

	close(events)
	var failed []error
	for ev := range events {
		if ev.Type == retry.EventAttemptFailed {
			failed = append(failed, ev.Error)
		}
	}
	require.Len(t, failed, 1)
	assert.Contains(t, failed[0].Error(), "image stream interrupted")
}

func TestGenerateImageDiagnostics(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/event-stream")
		_, _ = io.WriteString(w, "data: oops\n\ndata: "+fooImage+"\n\ndata: [DONE]\n\n")
	}))
	defer srv.Close()

	var got []mediagen.Diagnostics
	c := New(WithRetryConfig(fastRetry()), WithDiagnostics(func(d mediagen.Diagnostics) {
		got = append(got, d)
	}))

	req := mediagen.GenerationRequest{
		Prompt:          "p",
		ReferenceImages: []string{"data:image/png;base64,Zm9v", "not a data uri"},
	}
	_, err := c.GenerateImage(context.Background(), testModel(srv.URL), "k", req)
	require.NoError(t, err)

	require.Len(t, got, 1)
	assert.Equal(t, mediagen.Diagnostics{
		SkippedReferences: 1,
		Streamed:          true,
		Terminated:        true,
		IgnoredEvents:     1,
	}, got[0])

	t.Run("reported on failure", func(t *testing.T) {
		failing := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusForbidden)
		}))
		defer failing.Close()

		got = nil
		_, err := c.GenerateImage(context.Background(), testModel(failing.URL), "k", req)
		require.Error(t, err)
		require.Len(t, got, 1)
		assert.Equal(t, mediagen.Diagnostics{SkippedReferences: 1}, got[0])
	})
}

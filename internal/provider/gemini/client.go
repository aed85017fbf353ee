// Package gemini implements image generation over the generateContent API.
package gemini

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/spetersoncode/mediagen"
	"github.com/spetersoncode/mediagen/internal/fetch"
	"github.com/spetersoncode/mediagen/internal/retry"
)

// AssetFetcher turns a remote image URL into a data URI.
type AssetFetcher interface {
	Fetch(ctx context.Context, url string) (string, error)
}

// Client sends generateContent requests and normalizes their responses.
// A Client holds no per-request state and is safe for concurrent use.
type Client struct {
	httpClient  *http.Client
	fetcher     AssetFetcher
	retryConfig retry.Config
	events      chan<- retry.Event
	diagnostics func(mediagen.Diagnostics)
}

// ClientOption configures the Gemini client.
type ClientOption func(*Client)

// WithHTTPClient sets the HTTP client used for generation requests.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithFetcher sets the asset fetcher used for Markdown image links.
func WithFetcher(f AssetFetcher) ClientOption {
	return func(c *Client) {
		c.fetcher = f
	}
}

// WithRetryConfig sets the retry policy for network attempts.
func WithRetryConfig(cfg retry.Config) ClientOption {
	return func(c *Client) {
		c.retryConfig = cfg
	}
}

// WithRetryEvents sets a channel receiving retry events.
func WithRetryEvents(ch chan<- retry.Event) ClientOption {
	return func(c *Client) {
		c.events = ch
	}
}

// WithDiagnostics sets a function receiving the diagnostics of every call.
// It is called once per call, before GenerateImage returns.
func WithDiagnostics(fn func(mediagen.Diagnostics)) ClientOption {
	return func(c *Client) {
		c.diagnostics = fn
	}
}

// New creates a Gemini client.
func New(opts ...ClientOption) *Client {
	c := &Client{
		httpClient:  http.DefaultClient,
		retryConfig: retry.DefaultConfig(),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.fetcher == nil {
		c.fetcher = fetch.New(fetch.WithHTTPClient(c.httpClient))
	}
	return c
}

// GenerateImage builds the request, sends it with retries, and parses the
// response into a data URI. Each attempt reads its response body to the
// end, so a connection cut mid-body is retried like any network failure.
func (c *Client) GenerateImage(ctx context.Context, model *mediagen.ResolvedModel, apiKey string, req mediagen.GenerationRequest) (string, error) {
	body, report := BuildRequest(model, req)
	payload, err := json.Marshal(body)
	if err != nil {
		return "", fmt.Errorf("encode request: %w", err)
	}

	url := strings.TrimRight(model.BaseURL, "/") + model.EndpointPath()

	o, err := retry.DoWithEvents(ctx, c.retryConfig, c.events, func() (*outcome, error) {
		resp, err := c.send(ctx, url, apiKey, payload)
		if err != nil {
			return nil, err
		}
		defer resp.Body.Close()
		return readResponse(resp)
	})

	diag := mediagen.Diagnostics{SkippedReferences: report.Skipped()}
	if o != nil {
		diag.Streamed = o.streamed
		diag.Terminated = o.terminated
		diag.IgnoredEvents = o.ignored
	}
	if c.diagnostics != nil {
		c.diagnostics(diag)
	}

	if err != nil {
		return "", err
	}
	return c.finish(ctx, o)
}

// send performs one network attempt. Non-success responses are closed and
// returned as categorized errors.
func (c *Client) send(ctx context.Context, url, apiKey string, payload []byte) (*http.Response, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return nil, mediagen.NewPermanentError("invalid request", 0, err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+apiKey)
	httpReq.Header.Set("Accept", "*/*")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, wrapTransportError(err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		defer resp.Body.Close()
		err := wrapStatusError(resp)
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil, err
	}

	return resp, nil
}

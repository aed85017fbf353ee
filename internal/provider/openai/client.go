// Package openai implements image generation over OpenAI-compatible
// images/generations endpoints.
package openai

import (
	"context"
	"net/http"
	"strings"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/spetersoncode/mediagen"
	"github.com/spetersoncode/mediagen/internal/fetch"
	"github.com/spetersoncode/mediagen/internal/retry"
)

// AssetFetcher turns a remote image URL into a data URI.
type AssetFetcher interface {
	Fetch(ctx context.Context, url string) (string, error)
}

// Client generates images through the OpenAI SDK. The SDK's own retries are
// disabled; every attempt runs under the retry orchestrator instead.
type Client struct {
	httpClient  *http.Client
	fetcher     AssetFetcher
	retryConfig retry.Config
	events      chan<- retry.Event
	diagnostics func(mediagen.Diagnostics)
}

// ClientOption configures the OpenAI client.
type ClientOption func(*Client)

// WithHTTPClient sets the HTTP client used by the SDK.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithFetcher sets the asset fetcher used for URL results.
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
func WithDiagnostics(fn func(mediagen.Diagnostics)) ClientOption {
	return func(c *Client) {
		c.diagnostics = fn
	}
}

// New creates an OpenAI images client.
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

// sdk builds an SDK client bound to one credential and base URL.
func (c *Client) sdk(model *mediagen.ResolvedModel, apiKey string) openai.Client {
	opts := []option.RequestOption{
		option.WithAPIKey(apiKey),
		option.WithHTTPClient(c.httpClient),
		option.WithMaxRetries(0),
	}
	if model.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(strings.TrimRight(model.BaseURL, "/")+"/"))
	}
	return openai.NewClient(opts...)
}

package client

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/spetersoncode/mediagen"
	"github.com/spetersoncode/mediagen/internal/fetch"
	"github.com/spetersoncode/mediagen/internal/provider/gemini"
	"github.com/spetersoncode/mediagen/internal/provider/openai"
	"github.com/spetersoncode/mediagen/internal/retry"
	"github.com/spetersoncode/mediagen/model"
	"golang.org/x/sync/errgroup"
)

// DefaultConcurrency bounds GenerateImages when Config.Concurrency is unset.
const DefaultConcurrency = 4

// Registry supplies the active model and the credentials to reach it.
// *model.Registry implements it.
type Registry interface {
	// ActiveImageModel returns the model used when a call names none.
	ActiveImageModel() (*mediagen.ResolvedModel, bool)

	// APIKey returns the credential for a model, or "" if none is configured.
	APIKey(modelID string) string

	// BaseURL returns an origin override for a model, or "".
	BaseURL(modelID string) string
}

// Config holds configuration for creating a client.
type Config struct {
	// Registry resolves models and credentials. Required.
	Registry Registry

	// RetryConfig configures retry behavior for transient errors.
	// If nil, uses the default policy (3 attempts, 2s linear back-off).
	RetryConfig *mediagen.RetryConfig

	// Events is an optional channel for receiving client operation events.
	// Events are sent non-blocking; if the channel is full, events are dropped.
	Events chan<- Event

	// HTTPClient is used for provider requests and asset downloads.
	// If nil, http.DefaultClient is used.
	HTTPClient *http.Client

	// Origin is the local origin serving /image-proxy, e.g.
	// "http://localhost:8080". Without it, image downloads have no fallback.
	Origin string

	// Concurrency bounds parallel calls in GenerateImages.
	Concurrency int
}

// ErrMissingAPIKey is returned when the resolved model has no credential.
type ErrMissingAPIKey struct {
	Model string
}

func (e *ErrMissingAPIKey) Error() string {
	if e.Model != "" {
		return fmt.Sprintf("no API key configured (required by model %q)", e.Model)
	}
	return "no API key configured"
}

// ErrNoModel is returned when a call names no model and the registry has
// no active one.
type ErrNoModel struct{}

func (e *ErrNoModel) Error() string {
	return "no image model selected: register a model or use client.WithModel()"
}

// Configuration errors are permanent and never retried.
var (
	_ mediagen.CategorizedError = (*ErrMissingAPIKey)(nil)
	_ mediagen.CategorizedError = (*ErrNoModel)(nil)
)

func (e *ErrMissingAPIKey) Category() mediagen.ErrorCategory { return mediagen.ErrorPermanent }
func (e *ErrMissingAPIKey) Retryable() bool                  { return false }
func (e *ErrMissingAPIKey) StatusCode() int                  { return 0 }
func (e *ErrMissingAPIKey) RetryAfter() time.Duration        { return 0 }

func (e *ErrNoModel) Category() mediagen.ErrorCategory { return mediagen.ErrorPermanent }
func (e *ErrNoModel) Retryable() bool                  { return false }
func (e *ErrNoModel) StatusCode() int                  { return 0 }
func (e *ErrNoModel) RetryAfter() time.Duration        { return 0 }

// imageGenerator is implemented by every provider client.
type imageGenerator interface {
	GenerateImage(ctx context.Context, model *mediagen.ResolvedModel, apiKey string, req mediagen.GenerationRequest) (string, error)
}

// Client generates images through the registry's models.
// It holds no per-call state and is safe for concurrent use.
type Client struct {
	registry    Registry
	retryConfig retry.Config
	events      chan<- Event
	httpClient  *http.Client
	fetcher     *fetch.Fetcher
	concurrency int
}

// New creates a client with the given configuration.
func New(cfg Config) *Client {
	retryConfig := retry.DefaultConfig()
	if cfg.RetryConfig != nil {
		retryConfig = toInternalRetryConfig(cfg.RetryConfig)
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = http.DefaultClient
	}

	concurrency := cfg.Concurrency
	if concurrency <= 0 {
		concurrency = DefaultConcurrency
	}

	fetchOpts := []fetch.Option{fetch.WithHTTPClient(httpClient)}
	if cfg.Origin != "" {
		fetchOpts = append(fetchOpts, fetch.WithOrigin(cfg.Origin))
	}

	return &Client{
		registry:    cfg.Registry,
		retryConfig: retryConfig,
		events:      cfg.Events,
		httpClient:  httpClient,
		fetcher:     fetch.New(fetchOpts...),
		concurrency: concurrency,
	}
}

// GenerateOption configures a single GenerateImage call.
type GenerateOption func(*generateOptions)

type generateOptions struct {
	model *mediagen.ResolvedModel
}

// WithModel uses m instead of the registry's active model.
func WithModel(m *mediagen.ResolvedModel) GenerateOption {
	return func(o *generateOptions) {
		o.model = m
	}
}

// resolve picks the model and credential for a call. It never touches the
// network.
func (c *Client) resolve(opts []GenerateOption) (*mediagen.ResolvedModel, string, error) {
	var o generateOptions
	for _, opt := range opts {
		opt(&o)
	}

	m := o.model
	if m == nil && c.registry != nil {
		m, _ = c.registry.ActiveImageModel()
	}
	if m == nil {
		return nil, "", &ErrNoModel{}
	}

	var apiKey string
	if c.registry != nil {
		apiKey = c.registry.APIKey(m.ID)
	}
	if apiKey == "" {
		return nil, "", &ErrMissingAPIKey{Model: m.ID}
	}

	if m.BaseURL == "" {
		resolved := *m
		resolved.BaseURL = c.baseURL(m)
		m = &resolved
	}
	return m, apiKey, nil
}

// baseURL returns the registry override or the provider's default origin.
func (c *Client) baseURL(m *mediagen.ResolvedModel) string {
	if c.registry != nil {
		if u := c.registry.BaseURL(m.ID); u != "" {
			return u
		}
	}
	if m.APIOrDefault() == mediagen.APIOpenAIImages {
		return model.OpenAIBaseURL
	}
	return model.GeminiBaseURL
}

// provider returns a generator for the model's API reporting retries on
// retryEvents and call diagnostics to report.
func (c *Client) provider(api mediagen.API, retryEvents chan<- retry.Event, report func(mediagen.Diagnostics)) (imageGenerator, error) {
	switch api {
	case mediagen.APIGemini:
		return gemini.New(
			gemini.WithHTTPClient(c.httpClient),
			gemini.WithFetcher(c.fetcher),
			gemini.WithRetryConfig(c.retryConfig),
			gemini.WithRetryEvents(retryEvents),
			gemini.WithDiagnostics(report),
		), nil
	case mediagen.APIOpenAIImages:
		return openai.New(
			openai.WithHTTPClient(c.httpClient),
			openai.WithFetcher(c.fetcher),
			openai.WithRetryConfig(c.retryConfig),
			openai.WithRetryEvents(retryEvents),
			openai.WithDiagnostics(report),
		), nil
	default:
		return nil, mediagen.NewPermanentError(fmt.Sprintf("unsupported model API %q", api), 0, nil)
	}
}

// GenerateImage generates one image and returns it as a data URI.
// The model can be specified via WithModel, or the registry's active model
// is used. Transient network failures are retried according to the
// client's retry configuration.
func (c *Client) GenerateImage(ctx context.Context, req mediagen.GenerationRequest, opts ...GenerateOption) (string, error) {
	if strings.TrimSpace(req.Prompt) == "" {
		return "", mediagen.NewUserInputError("image generation failed", 0, mediagen.ErrEmptyPrompt)
	}

	m, apiKey, err := c.resolve(opts)
	if err != nil {
		return "", err
	}

	requestID := uuid.NewString()
	meta := Event{RequestID: requestID, Operation: "image", API: m.APIOrDefault(), Model: m.ID}

	var retryEvents chan retry.Event
	var forwarded chan struct{}
	if c.events != nil {
		retryEvents = make(chan retry.Event, 10)
		forwarded = make(chan struct{})
		go func() {
			defer close(forwarded)
			c.forwardRetryEvents(retryEvents, meta)
		}()
	}

	var diag *mediagen.Diagnostics
	gen, err := c.provider(m.APIOrDefault(), retryEvents, func(d mediagen.Diagnostics) {
		diag = &d
	})
	if err != nil {
		if retryEvents != nil {
			close(retryEvents)
			<-forwarded
		}
		return "", err
	}

	start := time.Now()
	emit(c.events, meta.with(EventRequestStart, 0, nil))

	uri, err := gen.GenerateImage(ctx, m, apiKey, req)

	if retryEvents != nil {
		close(retryEvents)
		<-forwarded
	}

	meta.Diagnostics = diag
	if err != nil {
		emit(c.events, meta.with(EventRequestError, time.Since(start), err))
		return "", err
	}

	emit(c.events, meta.with(EventRequestComplete, time.Since(start), nil))
	return uri, nil
}

// GenerateImages runs independent generations concurrently, bounded by
// Config.Concurrency. Each call has its own retry budget. Results keep the
// order of reqs; the first failure cancels the remaining calls.
func (c *Client) GenerateImages(ctx context.Context, reqs []mediagen.GenerationRequest, opts ...GenerateOption) ([]string, error) {
	results := make([]string, len(reqs))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(c.concurrency)
	for i, req := range reqs {
		g.Go(func() error {
			uri, err := c.GenerateImage(gctx, req, opts...)
			if err != nil {
				return fmt.Errorf("image %d: %w", i, err)
			}
			results[i] = uri
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// IsAspectRatioSupported reports whether m accepts ratio.
func IsAspectRatioSupported(ratio mediagen.AspectRatio, m *mediagen.ResolvedModel) bool {
	return m.Supports(ratio)
}

// forwardRetryEvents reads from a retry events channel and forwards events
// to the client's event channel as EventRetry events.
func (c *Client) forwardRetryEvents(retryEvents <-chan retry.Event, meta Event) {
	for re := range retryEvents {
		ev := meta.with(EventRetry, 0, re.Error)
		ev.RetryEvent = &re
		emit(c.events, ev)
	}
}

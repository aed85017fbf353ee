package main

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/spetersoncode/mediagen"
	"github.com/spetersoncode/mediagen/client"
)

// maxRequestBody bounds the JSON body, reference images included.
const maxRequestBody = 32 << 20

// ImageGenerator produces one image per request. *client.Client implements it.
type ImageGenerator interface {
	GenerateImage(ctx context.Context, req mediagen.GenerationRequest, opts ...client.GenerateOption) (string, error)
}

// ModelLookup resolves model identifiers. *model.Registry implements it.
type ModelLookup interface {
	Model(id string) (*mediagen.ResolvedModel, bool)
}

// imageRequest is the POST /api/images body.
type imageRequest struct {
	Prompt          string   `json:"prompt"`
	ReferenceImages []string `json:"reference_images,omitempty"`
	AspectRatio     string   `json:"aspect_ratio,omitempty"`
	Model           string   `json:"model,omitempty"`
}

// imageResponse carries the generated image as a data URI.
type imageResponse struct {
	RequestID string `json:"request_id"`
	Image     string `json:"image"`
}

type errorResponse struct {
	RequestID string `json:"request_id"`
	Error     string `json:"error"`
}

// ImageHandler handles image generation requests.
type ImageHandler struct {
	gen     ImageGenerator
	models  ModelLookup
	timeout time.Duration
}

// NewImageHandler creates a handler. A zero timeout leaves calls bounded
// only by the client connection.
func NewImageHandler(gen ImageGenerator, models ModelLookup, timeout time.Duration) *ImageHandler {
	return &ImageHandler{gen: gen, models: models, timeout: timeout}
}

// ServeHTTP handles POST requests generating one image.
func (h *ImageHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	requestID := uuid.NewString()
	log := slog.With("request_id", requestID)

	// Only accept POST
	if r.Method != http.MethodPost {
		log.Warn("method not allowed", "method", r.Method, "path", r.URL.Path)
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var input imageRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRequestBody)).Decode(&input); err != nil {
		log.Warn("invalid request body", "error", err)
		writeJSON(w, http.StatusBadRequest, errorResponse{RequestID: requestID, Error: "Invalid request body: " + err.Error()})
		return
	}

	var opts []client.GenerateOption
	if input.Model != "" {
		m, ok := h.models.Model(input.Model)
		if !ok {
			log.Warn("unknown model", "model", input.Model)
			writeJSON(w, http.StatusBadRequest, errorResponse{RequestID: requestID, Error: "unknown model: " + input.Model})
			return
		}
		opts = append(opts, client.WithModel(m))
	}

	req := mediagen.NewGenerationRequest(input.Prompt,
		mediagen.WithReferenceImages(input.ReferenceImages...),
		mediagen.WithAspectRatio(mediagen.AspectRatio(input.AspectRatio)),
	)

	log.Info("request started",
		"model", input.Model,
		"aspect_ratio", input.AspectRatio,
		"reference_count", len(input.ReferenceImages),
	)

	ctx := r.Context()
	if h.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, h.timeout)
		defer cancel()
	}

	uri, err := h.gen.GenerateImage(ctx, req, opts...)
	duration := time.Since(start)
	if err != nil {
		status := statusFor(err)
		log.Error("request failed",
			"duration_ms", duration.Milliseconds(),
			"status", status,
			"upstream_status", mediagen.StatusCodeOf(err),
			"error", err,
		)
		writeJSON(w, status, errorResponse{RequestID: requestID, Error: err.Error()})
		return
	}

	log.Info("request completed",
		"duration_ms", duration.Milliseconds(),
		"image_bytes", len(uri),
	)
	writeJSON(w, http.StatusOK, imageResponse{RequestID: requestID, Image: uri})
}

// statusFor maps a generation error onto the response status.
func statusFor(err error) int {
	var noModel *client.ErrNoModel
	var missingKey *client.ErrMissingAPIKey

	switch {
	case mediagen.IsUserInput(err):
		return http.StatusBadRequest
	case errors.Is(err, mediagen.ErrNoImageData):
		return http.StatusUnprocessableEntity
	case errors.As(err, &noModel), errors.As(err, &missingKey):
		return http.StatusInternalServerError
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	default:
		return http.StatusBadGateway
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("failed to write response", "error", err)
	}
}

// corsMiddleware adds CORS headers for cross-origin frontend requests.
func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// healthHandler returns a simple health check response.
func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(`{"status":"ok"}`))
}

// logEvents writes client events to the log until events is closed.
func logEvents(events <-chan client.Event) {
	for e := range events {
		log := slog.With("request_id", e.RequestID, "model", e.Model, "api", e.API)
		if d := e.Diagnostics; d != nil && (d.SkippedReferences > 0 || d.IgnoredEvents > 0) {
			log.Warn("provider skipped input",
				"skipped_references", d.SkippedReferences,
				"ignored_events", d.IgnoredEvents,
				"streamed", d.Streamed,
			)
		}
		switch e.Type {
		case client.EventRetry:
			if e.RetryEvent.Type == client.RetryEventRetrying {
				log.Warn("retrying image request",
					"attempt", e.RetryEvent.Attempt,
					"max_attempts", e.RetryEvent.MaxAttempts,
					"delay", e.RetryEvent.Delay,
				)
			} else {
				log.Debug("retry event", "type", e.RetryEvent.Type, "attempt", e.RetryEvent.Attempt, "error", e.RetryEvent.Error)
			}
		case client.EventRequestError:
			log.Debug("generation failed", "duration", e.Duration, "error", e.Error)
		default:
			log.Debug("generation event", "type", e.Type, "duration", e.Duration)
		}
	}
}

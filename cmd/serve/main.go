// Package main provides a reference HTTP server for image generation.
//
// Endpoints:
//
//	POST /api/images   - generate one image, returns {"request_id", "image"}
//	GET  /image-proxy  - same-origin download fallback (?url=<image url>)
//	GET  /health       - health check
//
// Configuration is via environment variables (a .env file is loaded if
// present):
//
//	MEDIAGEN_PORT         - Server port (default: 8080)
//	MEDIAGEN_ORIGIN       - Public origin of this server (default: http://localhost:<port>)
//	MEDIAGEN_MODEL        - Active model (default: gemini-2.5-flash-image)
//	MEDIAGEN_CATALOG      - YAML file with additional models (optional)
//	MEDIAGEN_MAX_ATTEMPTS - Attempts per request (default: 3)
//	MEDIAGEN_RETRY_DELAY  - Linear back-off unit (default: 2s)
//	MEDIAGEN_TIMEOUT      - Per-request timeout (default: 2m)
//	MEDIAGEN_LOG_LEVEL    - debug, info, warn, error (default: info)
//	GEMINI_API_KEY        - Gemini API key (GOOGLE_API_KEY is accepted too)
//	OPENAI_API_KEY        - OpenAI API key
//	GEMINI_BASE_URL       - Gemini origin override
//	OPENAI_BASE_URL       - OpenAI origin override
//
// Usage:
//
//	GEMINI_API_KEY=... go run ./cmd/serve
package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spetersoncode/mediagen/client"
	"github.com/spetersoncode/mediagen/internal/config"
	"github.com/spetersoncode/mediagen/internal/fetch"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		slog.Error("configuration error", "error", err)
		os.Exit(1)
	}
	slog.SetDefault(cfg.Logger())

	if cfg.Origin == "" {
		cfg.Origin = "http://localhost:" + cfg.Port
	}

	registry, err := cfg.NewRegistry()
	if err != nil {
		slog.Error("failed to build model registry", "error", err)
		os.Exit(1)
	}

	events := make(chan client.Event, 100)
	go logEvents(events)

	c := client.New(cfg.ClientConfig(registry, events))

	mux := routes(c, registry, cfg.Timeout)

	// Create server
	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      mux,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: cfg.Timeout + 30*time.Second,
		IdleTimeout:  120 * time.Second,
	}

	// Graceful shutdown
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh

		slog.Info("shutting down")
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := server.Shutdown(ctx); err != nil {
			slog.Error("shutdown error", "error", err)
		}
	}()

	active, _ := registry.ActiveImageModel()
	slog.Info("server starting",
		"addr", server.Addr,
		"model", active.ID,
		"origin", cfg.Origin,
	)

	if err := server.ListenAndServe(); err != http.ErrServerClosed {
		slog.Error("server error", "error", err)
		os.Exit(1)
	}

	slog.Info("server stopped")
}

// routes builds the server's handler tree.
func routes(gen ImageGenerator, models ModelLookup, timeout time.Duration) *http.ServeMux {
	mux := http.NewServeMux()
	mux.Handle("/api/images", corsMiddleware(NewImageHandler(gen, models, timeout)))
	// Same-origin fallback only: no CORS, public destinations only
	mux.Handle(fetch.ProxyPath, fetch.NewProxyHandler(fetch.New(fetch.WithHTTPClient(fetch.PublicHTTPClient()))))
	mux.HandleFunc("/health", healthHandler)
	return mux
}

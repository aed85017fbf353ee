// Package config loads command configuration from the environment.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spetersoncode/mediagen"
	"github.com/spetersoncode/mediagen/client"
	"github.com/spetersoncode/mediagen/model"
)

// Config holds the command configuration loaded from environment variables.
type Config struct {
	// Server
	Port     string
	LogLevel string // debug, info, warn, error
	// Origin is the public origin serving /image-proxy. Empty disables the
	// download fallback.
	Origin string

	// Model selection
	Model       string
	CatalogFile string // optional YAML file with extra models

	// API Keys
	GeminiKey string
	OpenAIKey string

	// Base URL overrides
	GeminiBaseURL string
	OpenAIBaseURL string

	// Generation
	MaxAttempts int
	RetryDelay  time.Duration
	Timeout     time.Duration
	Concurrency int
}

// Load loads configuration from environment variables.
// It loads a .env file if present (silent fail if not found).
func Load() (*Config, error) {
	godotenv.Load() // Load .env file if present

	port := getEnvOrDefault("MEDIAGEN_PORT", "8080")
	cfg := &Config{
		Port:          port,
		LogLevel:      getEnvOrDefault("MEDIAGEN_LOG_LEVEL", "info"),
		Origin:        os.Getenv("MEDIAGEN_ORIGIN"),
		Model:         getEnvOrDefault("MEDIAGEN_MODEL", model.DefaultGeminiImageModel.String()),
		CatalogFile:   os.Getenv("MEDIAGEN_CATALOG"),
		GeminiKey:     getEnvOrDefault("GEMINI_API_KEY", os.Getenv("GOOGLE_API_KEY")),
		OpenAIKey:     os.Getenv("OPENAI_API_KEY"),
		GeminiBaseURL: os.Getenv("GEMINI_BASE_URL"),
		OpenAIBaseURL: os.Getenv("OPENAI_BASE_URL"),
		MaxAttempts:   getEnvIntOrDefault("MEDIAGEN_MAX_ATTEMPTS", 3),
		RetryDelay:    getEnvDurationOrDefault("MEDIAGEN_RETRY_DELAY", 2*time.Second),
		Timeout:       getEnvDurationOrDefault("MEDIAGEN_TIMEOUT", 2*time.Minute),
		Concurrency:   getEnvIntOrDefault("MEDIAGEN_CONCURRENCY", client.DefaultConcurrency),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks that required configuration is present.
func (c *Config) Validate() error {
	if c.GeminiKey == "" && c.OpenAIKey == "" {
		return fmt.Errorf("GEMINI_API_KEY or OPENAI_API_KEY is required")
	}
	if c.MaxAttempts < 1 {
		return fmt.Errorf("MEDIAGEN_MAX_ATTEMPTS must be at least 1, got %d", c.MaxAttempts)
	}
	if c.RetryDelay < 0 {
		return fmt.Errorf("MEDIAGEN_RETRY_DELAY must not be negative")
	}
	if c.Concurrency < 1 {
		return fmt.Errorf("MEDIAGEN_CONCURRENCY must be at least 1, got %d", c.Concurrency)
	}
	if _, err := ParseLevel(c.LogLevel); err != nil {
		return err
	}
	return nil
}

// NewRegistry builds the model registry: every built-in model, the models
// from CatalogFile, credentials, base URL overrides, and the active model.
func (c *Config) NewRegistry() (*model.Registry, error) {
	reg := model.NewRegistry()
	for _, m := range model.ImageModels() {
		reg.Register(m.ResolveAt(c.baseURLFor(m.API(), m.DefaultBaseURL())))
	}

	if c.CatalogFile != "" {
		custom, err := LoadCatalog(c.CatalogFile)
		if err != nil {
			return nil, err
		}
		for _, m := range custom {
			reg.Register(m)
		}
	}

	// Catalog models without their own base_url follow the overrides too
	if c.GeminiBaseURL != "" {
		reg.SetBaseURL(mediagen.APIGemini, c.GeminiBaseURL)
	}
	if c.OpenAIBaseURL != "" {
		reg.SetBaseURL(mediagen.APIOpenAIImages, c.OpenAIBaseURL)
	}

	if c.GeminiKey != "" {
		reg.SetAPIKey(mediagen.APIGemini, c.GeminiKey)
	}
	if c.OpenAIKey != "" {
		reg.SetAPIKey(mediagen.APIOpenAIImages, c.OpenAIKey)
	}

	if err := reg.SetActive(c.Model); err != nil {
		return nil, fmt.Errorf("MEDIAGEN_MODEL: %w", err)
	}
	if reg.APIKey(c.Model) == "" {
		return nil, fmt.Errorf("no API key configured for model %q", c.Model)
	}
	return reg, nil
}

func (c *Config) baseURLFor(api mediagen.API, fallback string) string {
	switch {
	case api == mediagen.APIGemini && c.GeminiBaseURL != "":
		return c.GeminiBaseURL
	case api == mediagen.APIOpenAIImages && c.OpenAIBaseURL != "":
		return c.OpenAIBaseURL
	default:
		return fallback
	}
}

// ClientConfig returns the client configuration for reg.
func (c *Config) ClientConfig(reg client.Registry, events chan<- client.Event) client.Config {
	return client.Config{
		Registry: reg,
		RetryConfig: &mediagen.RetryConfig{
			MaxAttempts: c.MaxAttempts,
			BaseDelay:   c.RetryDelay,
		},
		Events:      events,
		Origin:      c.Origin,
		Concurrency: c.Concurrency,
	}
}

// ParseLevel converts a level name to a slog level.
func ParseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return 0, fmt.Errorf("unknown log level: %s (must be debug, info, warn, or error)", s)
	}
}

// Logger returns a text logger writing to stderr at the configured level.
func (c *Config) Logger() *slog.Logger {
	level, _ := ParseLevel(c.LogLevel)
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

func getEnvDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}

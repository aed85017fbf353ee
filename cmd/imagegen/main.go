// Command imagegen generates one image from the command line and writes it
// to a file.
//
// Usage:
//
//	go run ./cmd/imagegen -prompt "a lighthouse at dusk" -aspect 9:16 -out lighthouse.png
//	go run ./cmd/imagegen -prompt "same hero, new pose" -ref hero.png -ref scene.jpg
//
// Configuration is read from the same environment variables as cmd/serve
// (a .env file is loaded if present).
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spetersoncode/mediagen"
	"github.com/spetersoncode/mediagen/client"
	"github.com/spetersoncode/mediagen/internal/config"
	"github.com/spetersoncode/mediagen/model"
)

// refList collects repeated -ref flags.
type refList []string

func (r *refList) String() string { return strings.Join(*r, ",") }

func (r *refList) Set(v string) error {
	*r = append(*r, v)
	return nil
}

func main() {
	prompt := flag.String("prompt", "", "image description (required)")
	out := flag.String("out", "", "output file (default: image-<timestamp>.<ext>)")
	aspect := flag.String("aspect", "", "aspect ratio, e.g. 16:9, 9:16, 1:1")
	modelID := flag.String("model", "", "model id (default: MEDIAGEN_MODEL)")
	var refs refList
	flag.Var(&refs, "ref", "reference image file (repeatable)")
	flag.Parse()

	if strings.TrimSpace(*prompt) == "" {
		fmt.Fprintln(os.Stderr, "imagegen: -prompt is required")
		flag.Usage()
		os.Exit(2)
	}

	if err := run(*prompt, *out, *aspect, *modelID, refs); err != nil {
		slog.Error("generation failed", "error", err)
		os.Exit(1)
	}
}

func run(prompt, out, aspect, modelID string, refs []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	slog.SetDefault(cfg.Logger())

	if modelID != "" {
		cfg.Model = modelID
	}

	registry, err := cfg.NewRegistry()
	if err != nil {
		return err
	}

	uris := make([]string, 0, len(refs))
	for _, path := range refs {
		uri, err := readReference(path)
		if err != nil {
			return err
		}
		uris = append(uris, uri)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithTimeout(ctx, cfg.Timeout)
	defer cancel()

	events := make(chan client.Event, 16)
	done := make(chan struct{})
	go func() {
		defer close(done)
		for e := range events {
			if e.Type == client.EventRetry && e.RetryEvent.Type == client.RetryEventRetrying {
				slog.Warn("retrying", "attempt", e.RetryEvent.Attempt, "delay", e.RetryEvent.Delay, "error", e.RetryEvent.Error)
			}
		}
	}()

	c := client.New(cfg.ClientConfig(registry, events))
	active, _ := registry.ActiveImageModel()

	req := mediagen.NewGenerationRequest(prompt,
		mediagen.WithReferenceImages(uris...),
		mediagen.WithAspectRatio(mediagen.AspectRatio(aspect)),
	)
	if aspect != "" && !client.IsAspectRatioSupported(req.AspectRatio, active) {
		slog.Warn("aspect ratio not listed for model", "model", active.ID, "aspect_ratio", aspect)
	}

	start := time.Now()
	uri, err := c.GenerateImage(ctx, req)
	close(events)
	<-done
	if err != nil {
		return err
	}

	parsed, err := mediagen.ParseDataURI(uri)
	if err != nil {
		return fmt.Errorf("unexpected result: %w", err)
	}
	data, err := parsed.Bytes()
	if err != nil {
		return fmt.Errorf("decode image: %w", err)
	}

	if out == "" {
		out = defaultOutput(parsed.MIMEType, start)
	}
	if err := os.WriteFile(out, data, 0o644); err != nil {
		return fmt.Errorf("write image: %w", err)
	}

	slog.Info("image written",
		"path", out,
		"model", active.ID,
		"mime_type", parsed.MIMEType,
		"bytes", len(data),
		"duration", time.Since(start).Round(time.Millisecond),
		"estimated_cost_usd", model.EstimateCost(active.ID, 1),
	)
	return nil
}

// Package client is the entry point for image generation.
//
// The Client resolves a model and credential from a Registry, routes the
// call to the model's wire protocol, and returns one data URI:
//
//   - Registry-driven: the active model is used unless WithModel names another
//   - Two protocols: Gemini generateContent and OpenAI-compatible images
//   - Automatic retries: linear back-off for transient failures
//   - Event emission: observable operations via channel
//
// # Basic Usage
//
//	reg := model.NewRegistry()
//	reg.Register(model.Gemini25FlashImage.Resolve())
//	reg.SetAPIKey(mediagen.APIGemini, os.Getenv("GEMINI_API_KEY"))
//
//	c := client.New(client.Config{Registry: reg})
//
//	uri, err := c.GenerateImage(ctx, mediagen.GenerationRequest{
//	    Prompt: "sunset over mountains",
//	})
//
// # Choosing a Model
//
//	uri, err := c.GenerateImage(ctx, req, client.WithModel(model.GPTImage1.Resolve()))
//
// Check a ratio before asking for it:
//
//	if client.IsAspectRatioSupported(mediagen.AspectRatio21x9, m) { ... }
//
// # Batches
//
// GenerateImages runs independent requests concurrently, each with its own
// retry budget:
//
//	uris, err := c.GenerateImages(ctx, []mediagen.GenerationRequest{shot1, shot2, shot3})
//
// # Error Handling
//
// Configuration errors (ErrNoModel, ErrMissingAPIKey) are returned before
// any network request. HTTP 400, 401 and 403 fail immediately; other
// failures are retried up to RetryConfig.MaxAttempts times, waiting
// BaseDelay, 2*BaseDelay, ... between attempts:
//
//	c := client.New(client.Config{
//	    Registry:    reg,
//	    RetryConfig: &mediagen.RetryConfig{MaxAttempts: 5, BaseDelay: time.Second},
//	})
//
// # Events
//
// All events of one call share a RequestID:
//
//	events := make(chan client.Event, 100)
//	c := client.New(client.Config{Registry: reg, Events: events})
//
//	go func() {
//	    for e := range events {
//	        log.Printf("[%s] %s %s", e.RequestID, e.Type, e.Model)
//	    }
//	}()
package client

// Package mediagen turns third-party multimodal generation APIs into a single
// local contract: a prompt (plus optional reference images) goes in, one
// embeddable data URI comes out.
//
// The adapter layer builds provider-specific requests, recognizes both
// single-document JSON responses and incrementally delivered event streams,
// extracts inline image data (or fetches an image linked from generated text),
// and retries transient network failures with a bounded linear back-off.
//
// # Core Types
//
//   - [GenerationRequest]: prompt, reference images and aspect ratio for one call
//   - [ResolvedModel]: provider endpoint, base URL and aspect ratio defaults
//   - [DataURI]: the normalized result representation
//
// Use the [github.com/spetersoncode/mediagen/client] package as the entry
// point and the [github.com/spetersoncode/mediagen/model] package for the
// built-in model catalog and registry.
//
// # Basic Usage
//
//	reg := model.NewRegistry()
//	reg.Register(model.Gemini25FlashImage.Resolve())
//	reg.SetAPIKey(mediagen.APIGemini, os.Getenv("GEMINI_API_KEY"))
//
//	c := client.New(client.Config{Registry: reg})
//
//	uri, err := c.GenerateImage(ctx, mediagen.NewGenerationRequest(
//	    "sunset over mountains",
//	    mediagen.WithAspectRatio(mediagen.AspectRatio9x16),
//	))
//
// # Reference Images
//
// Reference images are data URIs. The first one describes the scene, any
// further ones describe characters that must be reproduced exactly:
//
//	req := mediagen.NewGenerationRequest("the hero enters the tavern",
//	    mediagen.WithReferenceImages(tavernURI, heroURI),
//	)
//
// # Error Handling
//
// Failures are categorized (see [CategorizedError]):
//
//   - Configuration errors (no model, no API key) fail before any request
//   - HTTP 400/401/403 fail immediately without retries
//   - Other network and HTTP failures are retried with linear back-off
//   - [ParseError] reports a malformed response body
//   - [ErrNoImageData] reports a valid response that contained no image
//
// Use [IsTransient], [IsPermanent], [IsUserInput] and [StatusCodeOf] to
// inspect errors.
package mediagen

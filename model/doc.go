// Package model provides the built-in image model catalog and an in-memory
// registry of resolved models and credentials.
//
// Catalog entries know their wire protocol, supported aspect ratios and
// pricing. Resolve turns one into the descriptor the client consumes:
//
//	reg := model.NewRegistry()
//	reg.Register(model.Gemini25FlashImage.Resolve())
//	reg.Register(model.GPTImage1.Resolve())
//	reg.SetAPIKey(mediagen.APIGemini, os.Getenv("GEMINI_API_KEY"))
//	reg.SetAPIKey(mediagen.APIOpenAIImages, os.Getenv("OPENAI_API_KEY"))
//
// The first registered model is active; switch with SetActive:
//
//	_ = reg.SetActive(model.GPTImage1.String())
//
// Models served by a gateway speaking the same protocol resolve with
// ResolveAt:
//
//	reg.Register(model.Gemini3ProImage.ResolveAt("https://gateway.internal"))
//
// # Pricing Information
//
// All models include pricing for cost estimation:
//
//	cost := model.Gemini25FlashImage.Pricing().Estimate(4)
package model

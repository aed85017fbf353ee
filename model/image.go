package model

import (
	"slices"

	"github.com/spetersoncode/mediagen"
)

// Default provider origins.
const (
	GeminiBaseURL = "https://generativelanguage.googleapis.com"
	OpenAIBaseURL = "https://api.openai.com/v1"
)

// ImageModel represents an image generation model from any provider.
type ImageModel struct {
	id      string
	name    string
	api     mediagen.API
	ratios  []mediagen.AspectRatio
	pricing ImagePricing
}

// String returns the API identifier for this model.
func (m ImageModel) String() string { return m.id }

// Name returns the human-readable model name.
func (m ImageModel) Name() string { return m.name }

// API returns the wire protocol the model speaks.
func (m ImageModel) API() mediagen.API { return m.api }

// Pricing returns the pricing for this model.
func (m ImageModel) Pricing() ImagePricing { return m.pricing }

// AspectRatios returns the ratios the model accepts.
func (m ImageModel) AspectRatios() []mediagen.AspectRatio { return slices.Clone(m.ratios) }

// DefaultBaseURL returns the provider origin for the model's API.
func (m ImageModel) DefaultBaseURL() string {
	if m.api == mediagen.APIOpenAIImages {
		return OpenAIBaseURL
	}
	return GeminiBaseURL
}

// Resolve returns a descriptor for the model served at the provider's
// default origin.
func (m ImageModel) Resolve() *mediagen.ResolvedModel {
	return m.ResolveAt(m.DefaultBaseURL())
}

// ResolveAt returns a descriptor for the model served at baseURL, e.g. a
// self-hosted gateway speaking the same protocol.
func (m ImageModel) ResolveAt(baseURL string) *mediagen.ResolvedModel {
	return &mediagen.ResolvedModel{
		ID:                    m.id,
		Name:                  m.name,
		API:                   m.api,
		BaseURL:               baseURL,
		DefaultAspectRatio:    mediagen.DefaultAspectRatio,
		SupportedAspectRatios: slices.Clone(m.ratios),
	}
}

var (
	geminiRatios = []mediagen.AspectRatio{
		mediagen.AspectRatio16x9, mediagen.AspectRatio9x16, mediagen.AspectRatio1x1,
		mediagen.AspectRatio4x3, mediagen.AspectRatio3x4, mediagen.AspectRatio21x9,
	}
	openAIRatios = []mediagen.AspectRatio{
		mediagen.AspectRatio16x9, mediagen.AspectRatio9x16, mediagen.AspectRatio1x1,
	}
)

// Google Gemini Image Models
// Model pricing last verified: December 14, 2025
var (
	Gemini25FlashImage = ImageModel{id: "gemini-2.5-flash-image", name: "Gemini 2.5 Flash Image", api: mediagen.APIGemini, ratios: geminiRatios, pricing: ImagePricing{PerImage: 0.039}}
	Gemini3ProImage    = ImageModel{id: "gemini-3-pro-image-preview", name: "Gemini 3 Pro Image", api: mediagen.APIGemini, ratios: geminiRatios, pricing: ImagePricing{PerImage: 0.134}}

	// DefaultGeminiImageModel is the recommended default Google image model.
	DefaultGeminiImageModel = Gemini25FlashImage
)

// OpenAI Image Models
// Model pricing last verified: December 14, 2025
var (
	// GPT Image 1 Series
	GPTImage1     = ImageModel{id: "gpt-image-1", name: "GPT Image 1", api: mediagen.APIOpenAIImages, ratios: openAIRatios, pricing: ImagePricing{LowQuality: 0.011, MediumQuality: 0.042, HighQuality: 0.167}}
	GPTImage1Mini = ImageModel{id: "gpt-image-1-mini", name: "GPT Image 1 Mini", api: mediagen.APIOpenAIImages, ratios: openAIRatios, pricing: ImagePricing{LowQuality: 0.005, MediumQuality: 0.013, HighQuality: 0.052}}
	DallE3        = ImageModel{id: "dall-e-3", name: "DALL-E 3", api: mediagen.APIOpenAIImages, ratios: openAIRatios, pricing: ImagePricing{MediumQuality: 0.040, HighQuality: 0.080}}

	// DefaultGPTImageModel is the recommended default OpenAI image model.
	DefaultGPTImageModel = GPTImage1
)

// ImageModels lists every built-in image model.
func ImageModels() []ImageModel {
	return []ImageModel{Gemini25FlashImage, Gemini3ProImage, GPTImage1, GPTImage1Mini, DallE3}
}

// Lookup returns the built-in model with the given identifier.
func Lookup(id string) (ImageModel, bool) {
	for _, m := range ImageModels() {
		if m.id == id {
			return m, true
		}
	}
	return ImageModel{}, false
}

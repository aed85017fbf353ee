package mediagen

import (
	"fmt"
	"slices"
)

// AspectRatio is a width:height ratio understood by image models, e.g. "16:9".
type AspectRatio string

// Common aspect ratios.
const (
	AspectRatio16x9 AspectRatio = "16:9" // Landscape
	AspectRatio9x16 AspectRatio = "9:16" // Portrait
	AspectRatio1x1  AspectRatio = "1:1"
	AspectRatio4x3  AspectRatio = "4:3"
	AspectRatio3x4  AspectRatio = "3:4"
	AspectRatio21x9 AspectRatio = "21:9"
)

// DefaultAspectRatio is the ratio providers assume when none is sent.
// Requests only carry an explicit ratio when it differs from this one.
const DefaultAspectRatio = AspectRatio16x9

// String returns the ratio as sent on the wire.
func (a AspectRatio) String() string { return string(a) }

// GenerationRequest describes one image generation call.
// It is owned by the caller and never modified by the adapter.
type GenerationRequest struct {
	// Prompt is the text description of the desired image.
	Prompt string

	// ReferenceImages are data URIs (data:<mime>;base64,<payload>).
	// The first is the scene/environment reference, any further ones are
	// character references. Malformed entries are skipped.
	ReferenceImages []string

	// AspectRatio overrides the model's default ratio when set.
	AspectRatio AspectRatio
}

// HasReferences reports whether the request carries reference images.
func (r GenerationRequest) HasReferences() bool {
	return len(r.ReferenceImages) > 0
}

// Diagnostics describes how a provider handled one generation call.
type Diagnostics struct {
	// SkippedReferences counts reference images left out of the request.
	SkippedReferences int

	// Streamed is set when the response was an event stream.
	Streamed bool

	// Terminated is set when a stream carried a terminal marker or a STOP
	// finish reason. End of stream decides the result either way.
	Terminated bool

	// IgnoredEvents counts stream payloads that were not valid JSON.
	IgnoredEvents int
}

// ResolvedModel identifies a provider configuration supplied by the model
// registry. The adapter treats it as read-only.
type ResolvedModel struct {
	// ID is the provider's model identifier, e.g. "gemini-2.5-flash-image".
	ID string

	// Name is a human-readable label.
	Name string

	// API selects the wire protocol. Empty means APIGemini.
	API API

	// Endpoint is the request path appended to BaseURL.
	// Empty selects the API's default path.
	Endpoint string

	// BaseURL is the provider origin, e.g. "https://generativelanguage.googleapis.com".
	BaseURL string

	// DefaultAspectRatio is used when the request carries none.
	DefaultAspectRatio AspectRatio

	// SupportedAspectRatios lists the ratios the model accepts.
	SupportedAspectRatios []AspectRatio
}

// EndpointPath returns the configured endpoint or the API's default path.
func (m *ResolvedModel) EndpointPath() string {
	if m.Endpoint != "" {
		return m.Endpoint
	}
	switch m.APIOrDefault() {
	case APIOpenAIImages:
		return "/images/generations"
	default:
		return fmt.Sprintf("/v1beta/models/%s:generateContent", m.ID)
	}
}

// APIOrDefault returns the model's API, defaulting to APIGemini.
func (m *ResolvedModel) APIOrDefault() API {
	if m.API == "" {
		return APIGemini
	}
	return m.API
}

// AspectRatioFor resolves the ratio for a request: the request's own ratio,
// then the model default, then DefaultAspectRatio.
func (m *ResolvedModel) AspectRatioFor(req GenerationRequest) AspectRatio {
	if req.AspectRatio != "" {
		return req.AspectRatio
	}
	if m != nil && m.DefaultAspectRatio != "" {
		return m.DefaultAspectRatio
	}
	return DefaultAspectRatio
}

// Supports reports whether ratio is in the model's supported list.
func (m *ResolvedModel) Supports(ratio AspectRatio) bool {
	if m == nil {
		return false
	}
	return slices.Contains(m.SupportedAspectRatios, ratio)
}

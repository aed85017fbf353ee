package mediagen

// RequestOption is a functional option for configuring a GenerationRequest.
type RequestOption func(*GenerationRequest)

// WithReferenceImages sets the reference images as data URIs.
// The first image is the scene reference; the rest are character references.
func WithReferenceImages(images ...string) RequestOption {
	return func(r *GenerationRequest) {
		r.ReferenceImages = append([]string(nil), images...)
	}
}

// WithAspectRatio sets the target aspect ratio.
func WithAspectRatio(ratio AspectRatio) RequestOption {
	return func(r *GenerationRequest) {
		r.AspectRatio = ratio
	}
}

// NewGenerationRequest builds a request from a prompt and options.
func NewGenerationRequest(prompt string, opts ...RequestOption) GenerationRequest {
	r := GenerationRequest{Prompt: prompt}
	for _, opt := range opts {
		opt(&r)
	}
	return r
}

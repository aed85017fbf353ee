package model

// ImagePricing contains image generation pricing (USD).
// Different providers use different pricing models.
type ImagePricing struct {
	// PerImage is a flat per-image price (Google).
	PerImage float64
	// LowQuality is the price for low quality images (OpenAI).
	LowQuality float64
	// MediumQuality is the price for medium quality images (OpenAI).
	MediumQuality float64
	// HighQuality is the price for high quality images (OpenAI).
	HighQuality float64
}

// HasQualityTiers returns true if the model has quality-based pricing tiers.
func (p ImagePricing) HasQualityTiers() bool {
	return p.LowQuality > 0 || p.MediumQuality > 0 || p.HighQuality > 0
}

// HasFlatPricing returns true if the model uses flat per-image pricing.
func (p ImagePricing) HasFlatPricing() bool {
	return p.PerImage > 0
}

// Estimate returns the cost of n images. Tiered models are estimated at
// medium quality, the tier used when none is requested.
func (p ImagePricing) Estimate(n int) float64 {
	if n <= 0 {
		return 0
	}
	if p.HasFlatPricing() {
		return p.PerImage * float64(n)
	}
	return p.MediumQuality * float64(n)
}

// EstimateCost returns the cost of n images generated with the model
// identified by id, or 0 for unknown models.
func EstimateCost(id string, n int) float64 {
	m, ok := Lookup(id)
	if !ok {
		return 0
	}
	return m.Pricing().Estimate(n)
}

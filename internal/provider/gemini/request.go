package gemini

import (
	"fmt"

	"github.com/spetersoncode/mediagen"
	"google.golang.org/genai"
)

// Request is the generateContent request body.
type Request struct {
	Contents         []*genai.Content `json:"contents"`
	GenerationConfig GenerationConfig `json:"generationConfig"`
}

// GenerationConfig is the subset of generation settings sent for image output.
type GenerationConfig struct {
	ResponseModalities []genai.Modality   `json:"responseModalities"`
	ImageConfig        *genai.ImageConfig `json:"imageConfig,omitempty"`
}

// ReferenceResult records how one reference image was handled.
type ReferenceResult struct {
	Index int
	// Err is set when the reference was skipped.
	Err error
}

// ReferenceReport lists the outcome of every reference image in a request.
type ReferenceReport []ReferenceResult

// Skipped returns the number of references left out of the request.
func (r ReferenceReport) Skipped() int {
	n := 0
	for _, res := range r {
		if res.Err != nil {
			n++
		}
	}
	return n
}

const consistencyTemplate = `CRITICAL REQUIREMENTS - CHARACTER CONSISTENCY

Reference images:
- The FIRST image is the scene/environment reference.
- Every following image is a character reference (base look or variation).

Task:
Generate a cinematic shot matching this prompt: %q.

ABSOLUTE REQUIREMENTS (NON-NEGOTIABLE):
1. Scene consistency:
   - Strictly keep the visual style, lighting and environment of the scene reference.

2. Character consistency - HIGHEST PRIORITY:
   Characters present in the prompt MUST be IDENTICAL to their reference images:
   - Facial features: eye color, shape and size, nose structure, mouth shape and facial contours must be exactly the same
   - Hairstyle and hair color: length, color, texture and style must match perfectly
   - Clothing and outfit: style, color, material and accessories must be identical
   - Body type: height, build and proportions must stay consistent

Do NOT create variations or interpretations of a character. Strict replication only.
Character appearance consistency is the most important requirement.`

// augmentPrompt rewrites the prompt with the reference-image directive when
// references are present. Image encodings are never touched.
func augmentPrompt(req mediagen.GenerationRequest) string {
	if !req.HasReferences() {
		return req.Prompt
	}
	return fmt.Sprintf(consistencyTemplate, req.Prompt)
}

// referencePart decodes a data URI into an inline-data part.
func referencePart(ref string) (*genai.Part, error) {
	uri, err := mediagen.ParseDataURI(ref)
	if err != nil {
		return nil, err
	}
	data, err := uri.Bytes()
	if err != nil {
		return nil, &mediagen.ImageError{Op: "decode", URL: "base64", Err: err}
	}
	return &genai.Part{
		InlineData: &genai.Blob{
			MIMEType: uri.MIMEType,
			Data:     data,
		},
	}, nil
}

// BuildRequest converts a generation request into the provider body.
// Malformed reference images are left out and recorded in the report.
func BuildRequest(model *mediagen.ResolvedModel, req mediagen.GenerationRequest) (*Request, ReferenceReport) {
	parts := []*genai.Part{{Text: augmentPrompt(req)}}

	report := make(ReferenceReport, 0, len(req.ReferenceImages))
	for i, ref := range req.ReferenceImages {
		part, err := referencePart(ref)
		report = append(report, ReferenceResult{Index: i, Err: err})
		if err != nil {
			continue
		}
		parts = append(parts, part)
	}

	body := &Request{
		Contents: []*genai.Content{genai.NewContentFromParts(parts, genai.RoleUser)},
		GenerationConfig: GenerationConfig{
			ResponseModalities: []genai.Modality{genai.ModalityText, genai.ModalityImage},
		},
	}

	// Only override the ratio providers already assume when it differs
	if ratio := model.AspectRatioFor(req); ratio != mediagen.DefaultAspectRatio {
		body.GenerationConfig.ImageConfig = &genai.ImageConfig{AspectRatio: ratio.String()}
	}

	return body, report
}

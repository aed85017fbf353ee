package openai

import (
	"context"
	"encoding/base64"
	"fmt"
	"net/http"
	"strings"

	"github.com/openai/openai-go"
	"github.com/spetersoncode/mediagen"
	"github.com/spetersoncode/mediagen/internal/retry"
)

// GenerateImage requests one image and returns it as a data URI.
// Reference images are not supported by this endpoint and are ignored.
func (c *Client) GenerateImage(ctx context.Context, model *mediagen.ResolvedModel, apiKey string, req mediagen.GenerationRequest) (string, error) {
	client := c.sdk(model, apiKey)
	params := buildParams(model, req)
	if c.diagnostics != nil {
		c.diagnostics(mediagen.Diagnostics{SkippedReferences: len(req.ReferenceImages)})
	}

	resp, err := retry.DoWithEvents(ctx, c.retryConfig, c.events, func() (*openai.ImagesResponse, error) {
		resp, err := client.Images.Generate(ctx, params)
		if err != nil {
			return nil, wrapError(err)
		}
		return resp, nil
	})
	if err != nil {
		return "", err
	}

	for _, img := range resp.Data {
		if img.B64JSON != "" {
			return mediagen.DataURI{MIMEType: sniffMIMEType(img.B64JSON), Data: img.B64JSON}.String(), nil
		}
		if img.URL != "" {
			return c.fetcher.Fetch(ctx, img.URL)
		}
	}
	return "", mediagen.ErrNoImageData
}

// buildParams converts a generation request into SDK parameters.
func buildParams(model *mediagen.ResolvedModel, req mediagen.GenerationRequest) openai.ImageGenerateParams {
	params := openai.ImageGenerateParams{
		Model:  openai.ImageModel(model.ID),
		Prompt: req.Prompt,
		N:      openai.Int(1),
		Size:   sizeFor(model.ID, model.AspectRatioFor(req)),
	}
	// gpt-image models always return base64 and reject response_format
	if isDallE(model.ID) {
		params.ResponseFormat = openai.ImageGenerateParamsResponseFormat("b64_json")
	}
	return params
}

const (
	sizeSquare         = "1024x1024"
	sizeLandscape      = "1536x1024"
	sizePortrait       = "1024x1536"
	sizeDallELandscape = "1792x1024"
	sizeDallEPortrait  = "1024x1792"
)

func isDallE(id string) bool {
	return strings.HasPrefix(id, "dall-e")
}

// sizeFor maps an aspect ratio onto the closest size the model accepts.
func sizeFor(id string, ratio mediagen.AspectRatio) openai.ImageGenerateParamsSize {
	var w, h int
	if _, err := fmt.Sscanf(string(ratio), "%d:%d", &w, &h); err != nil || w == h {
		return openai.ImageGenerateParamsSize(sizeSquare)
	}

	portrait := h > w
	switch {
	case isDallE(id) && portrait:
		return openai.ImageGenerateParamsSize(sizeDallEPortrait)
	case isDallE(id):
		return openai.ImageGenerateParamsSize(sizeDallELandscape)
	case portrait:
		return openai.ImageGenerateParamsSize(sizePortrait)
	default:
		return openai.ImageGenerateParamsSize(sizeLandscape)
	}
}

// sniffMIMEType detects the image type from the start of a base64 payload.
func sniffMIMEType(b64 string) string {
	// 512 bytes of content need at most 684 base64 characters
	head := b64
	if len(head) > 684 {
		head = head[:684]
	}
	data, err := base64.StdEncoding.DecodeString(head)
	if err != nil || len(data) == 0 {
		return mediagen.DefaultImageMIMEType
	}
	if mime := http.DetectContentType(data); strings.HasPrefix(mime, "image/") {
		return mime
	}
	return mediagen.DefaultImageMIMEType
}

package gemini

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"

	"github.com/spetersoncode/mediagen"
	"google.golang.org/genai"
)

const eventStreamType = "text/event-stream"

// Response bodies are decoded into local wire types rather than genai's.
// genai decodes inlineData.data into []byte, which rejects unpadded and
// URL-safe base64; the payload is passed through as received instead.
type (
	wireResponse struct {
		Candidates []*wireCandidate `json:"candidates"`
	}

	wireCandidate struct {
		Content      *wireContent       `json:"content"`
		FinishReason genai.FinishReason `json:"finishReason"`
	}

	wireContent struct {
		Parts []*wirePart `json:"parts"`
	}

	wirePart struct {
		Text       string    `json:"text"`
		Thought    bool      `json:"thought"`
		InlineData *wireBlob `json:"inlineData"`
	}

	wireBlob struct {
		MIMEType string `json:"mimeType"`
		Data     string `json:"data"`
	}
)

// outcome is what one attempt read from a successful response.
type outcome struct {
	inline *mediagen.DataURI
	text   string

	streamed   bool
	terminated bool
	ignored    int
}

// isEventStream reports whether the response declares an event stream.
func isEventStream(resp *http.Response) bool {
	return strings.Contains(resp.Header.Get("Content-Type"), eventStreamType)
}

// inlineImage returns the data URI of a part carrying inline binary data.
// Thought parts are interim renders and never count as the result.
func inlineImage(part *wirePart) (mediagen.DataURI, bool) {
	if part == nil || part.Thought || part.InlineData == nil || part.InlineData.Data == "" {
		return mediagen.DataURI{}, false
	}
	return mediagen.DataURI{MIMEType: part.InlineData.MIMEType, Data: part.InlineData.Data}, true
}

// partText returns the visible text of a part.
func partText(part *wirePart) string {
	if part == nil || part.Thought {
		return ""
	}
	return part.Text
}

// readResponse reads the whole body with the strategy selected by content
// type. Read failures are transient; an invalid document is a ParseError.
func readResponse(resp *http.Response) (*outcome, error) {
	if isEventStream(resp) {
		return readStream(resp.Body)
	}
	return readDocument(resp.Header.Get("Content-Type"), resp.Body)
}

// readDocument handles a single JSON response body.
func readDocument(contentType string, body io.Reader) (*outcome, error) {
	data, err := io.ReadAll(body)
	if err != nil {
		return nil, mediagen.NewTransientError("image response interrupted", 0, err)
	}

	var doc wireResponse
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, &mediagen.ParseError{ContentType: contentType, Err: err}
	}

	o := &outcome{}
	if len(doc.Candidates) == 0 || doc.Candidates[0] == nil || doc.Candidates[0].Content == nil {
		return o, nil
	}

	var text strings.Builder
	for _, part := range doc.Candidates[0].Content.Parts {
		if uri, ok := inlineImage(part); ok {
			o.inline = &uri
			return o, nil
		}
		text.WriteString(partText(part))
	}
	o.text = text.String()
	return o, nil
}

// finish turns an outcome into a data URI: inline data first, then a
// Markdown image link in the text.
func (c *Client) finish(ctx context.Context, o *outcome) (string, error) {
	if o.inline != nil {
		return o.inline.String(), nil
	}
	url, ok := mediagen.MarkdownImageURL(o.text)
	if !ok {
		return "", mediagen.ErrNoImageData
	}
	return c.fetcher.Fetch(ctx, url)
}

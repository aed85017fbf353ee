package gemini

import (
	"encoding/json"
	"io"
	"strings"

	"github.com/spetersoncode/mediagen"
	"github.com/spetersoncode/mediagen/internal/sse"
	"google.golang.org/genai"
)

// streamState accumulates one streaming parse. It is created per response
// and never shared.
type streamState struct {
	text    strings.Builder
	inline  *mediagen.DataURI
	stopped bool

	// ignored counts payloads that were not valid JSON.
	ignored int
}

// consume applies one event payload to the state.
func (s *streamState) consume(payload []byte) {
	if string(payload) == sse.DoneMarker {
		s.stopped = true
		return
	}

	var chunk wireResponse
	if err := json.Unmarshal(payload, &chunk); err != nil {
		s.ignored++
		return
	}

	for _, cand := range chunk.Candidates {
		if cand == nil {
			continue
		}
		if cand.FinishReason == genai.FinishReasonStop {
			s.stopped = true
		}
		if cand.Content == nil {
			continue
		}
		for _, part := range cand.Content.Parts {
			// First image across the whole stream wins; text keeps accumulating
			if s.inline == nil {
				if uri, ok := inlineImage(part); ok {
					s.inline = &uri
				}
			}
			s.text.WriteString(partText(part))
		}
	}
}

// outcome reports the accumulated state.
func (s *streamState) outcome() *outcome {
	return &outcome{
		inline:     s.inline,
		text:       s.text.String(),
		streamed:   true,
		terminated: s.stopped,
		ignored:    s.ignored,
	}
}

// readStream reads an event stream to its end. End of stream is
// authoritative; a missing terminal marker is not an error. A stream cut
// before EOF is a transient failure.
func readStream(body io.Reader) (*outcome, error) {
	state := &streamState{}
	dec := sse.NewDecoder(body)

	for dec.Next() {
		state.consume(dec.Data())
	}
	if err := dec.Err(); err != nil {
		return nil, mediagen.NewTransientError("image stream interrupted", 0, err)
	}
	return state.outcome(), nil
}

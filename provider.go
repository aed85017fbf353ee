package mediagen

// API identifies the wire protocol a model speaks.
type API string

// String returns the API identifier.
func (a API) String() string { return string(a) }

// Supported APIs.
const (
	// APIGemini is the generateContent protocol with JSON or event-stream responses.
	APIGemini API = "gemini"
	// APIOpenAIImages is the OpenAI-compatible images/generations protocol.
	APIOpenAIImages API = "openai-images"
)

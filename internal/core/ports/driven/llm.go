package driven

import "context"

// LLMService answers a conversation. Adapters exist for OpenAI-compatible
// APIs (Groq by default), Anthropic and a local Ollama server.
type LLMService interface {
	// Chat sends the turns in order and returns the model's reply.
	Chat(ctx context.Context, messages []ChatMessage, opts ChatOptions) (string, error)

	ModelName() string

	// Ping makes the cheapest authenticated request the provider offers.
	Ping(ctx context.Context) error

	Close() error
}

// ChatMessage is one turn sent to the model. Role is "system", "user" or
// "assistant".
type ChatMessage struct {
	Role    string
	Content string
}

// ChatOptions are per-call generation limits. Zero values leave the
// provider's defaults in place.
type ChatOptions struct {
	MaxTokens   int
	Temperature float64
}

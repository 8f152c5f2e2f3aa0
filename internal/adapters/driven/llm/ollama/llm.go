// Package ollama talks to a local Ollama server through /api/chat.
package ollama

import (
	"context"
	"time"

	"github.com/custodia-labs/docchat/internal/adapters/driven/llm"
	"github.com/custodia-labs/docchat/internal/core/ports/driven"
)

var _ driven.LLMService = (*Service)(nil)

// Defaults applies to any field left empty in the Config passed to New.
var Defaults = llm.Config{
	BaseURL: "http://localhost:11434",
	Model:   "llama3.2",
	Timeout: 2 * time.Minute,
}

// Service is an Ollama-backed driven.LLMService. Ollama needs no API key.
type Service struct {
	cfg    llm.Config
	client *llm.Client
}

type generation struct {
	NumPredict  int     `json:"num_predict,omitempty"`
	Temperature float64 `json:"temperature,omitempty"`
}

type chatRequest struct {
	Model    string      `json:"model"`
	Messages []llm.Turn  `json:"messages"`
	Stream   bool        `json:"stream"`
	Options  *generation `json:"options,omitempty"`
}

type chatResponse struct {
	Message llm.Turn `json:"message"`
	Done    bool     `json:"done"`
}

func New(cfg llm.Config) *Service {
	cfg = cfg.WithDefaults(Defaults)
	return &Service{cfg: cfg, client: cfg.NewClient("ollama")}
}

// Chat asks for a single non-streamed reply.
func (s *Service) Chat(ctx context.Context, messages []driven.ChatMessage, opts driven.ChatOptions) (string, error) {
	req := chatRequest{Model: s.cfg.Model, Messages: llm.Turns(messages, nil)}
	if opts.MaxTokens > 0 || opts.Temperature > 0 {
		req.Options = &generation{NumPredict: opts.MaxTokens, Temperature: opts.Temperature}
	}

	var resp chatResponse
	if err := s.client.PostJSON(ctx, s.cfg.URL("/api/chat"), nil, req, &resp); err != nil {
		return "", err
	}
	return resp.Message.Content, nil
}

func (s *Service) ModelName() string { return s.cfg.Model }

// Ping lists the installed models.
func (s *Service) Ping(ctx context.Context) error {
	return s.client.Get(ctx, s.cfg.URL("/api/tags"), nil)
}

func (s *Service) Close() error { return nil }

// Package openai talks to any OpenAI-compatible /chat/completions API.
// Without a base URL it targets Groq.
package openai

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/custodia-labs/docchat/internal/adapters/driven/llm"
	"github.com/custodia-labs/docchat/internal/core/domain"
	"github.com/custodia-labs/docchat/internal/core/ports/driven"
)

var _ driven.LLMService = (*Service)(nil)

// Defaults applies to any field left empty in the Config passed to New.
var Defaults = llm.Config{
	BaseURL: domain.DefaultLLMBaseURL,
	Model:   domain.DefaultLLMModel,
	Timeout: time.Minute,
}

// ErrMissingKey is returned by New when no API key is configured.
var ErrMissingKey = errors.New("openai: API key is required")

// Service is a chat-completions driven.LLMService.
type Service struct {
	cfg    llm.Config
	client *llm.Client
}

type completionRequest struct {
	Model       string     `json:"model"`
	Messages    []llm.Turn `json:"messages"`
	MaxTokens   int        `json:"max_tokens,omitempty"`
	Temperature float64    `json:"temperature,omitempty"`
}

type completionResponse struct {
	Choices []struct {
		Message      llm.Turn `json:"message"`
		FinishReason string   `json:"finish_reason"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

func New(cfg llm.Config) (*Service, error) {
	if cfg.APIKey == "" {
		return nil, ErrMissingKey
	}
	cfg = cfg.WithDefaults(Defaults)
	return &Service{cfg: cfg, client: cfg.NewClient("openai")}, nil
}

// Chat returns the first choice's content.
func (s *Service) Chat(ctx context.Context, messages []driven.ChatMessage, opts driven.ChatOptions) (string, error) {
	req := completionRequest{
		Model:       s.cfg.Model,
		Messages:    llm.Turns(messages, nil),
		MaxTokens:   max(opts.MaxTokens, 0),
		Temperature: max(opts.Temperature, 0),
	}

	var resp completionResponse
	if err := s.client.PostJSON(ctx, s.cfg.URL("/chat/completions"), s.auth(), req, &resp); err != nil {
		return "", err
	}
	switch {
	case resp.Error != nil:
		return "", fmt.Errorf("openai: %s", resp.Error.Message)
	case len(resp.Choices) == 0:
		return "", errors.New("openai: no response choices returned")
	}
	return resp.Choices[0].Message.Content, nil
}

func (s *Service) ModelName() string { return s.cfg.Model }

// Ping lists models, which checks the key without running inference.
func (s *Service) Ping(ctx context.Context) error {
	return s.client.Get(ctx, s.cfg.URL("/models"), s.auth())
}

func (s *Service) Close() error { return nil }

func (s *Service) auth() http.Header {
	return llm.Header("Authorization", "Bearer "+s.cfg.APIKey)
}

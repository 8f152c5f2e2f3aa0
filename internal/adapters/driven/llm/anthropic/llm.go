// Package anthropic talks to the Anthropic Messages API.
package anthropic

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/custodia-labs/docchat/internal/adapters/driven/llm"
	"github.com/custodia-labs/docchat/internal/core/domain"
	"github.com/custodia-labs/docchat/internal/core/ports/driven"
)

var _ driven.LLMService = (*Service)(nil)

// Defaults applies to any field left empty in the Config passed to New.
var Defaults = llm.Config{
	BaseURL: "https://api.anthropic.com",
	Model:   "claude-3-5-sonnet-latest",
	Timeout: 2 * time.Minute,
}

const apiVersion = "2023-06-01"

// ErrMissingKey is returned by New when no API key is configured.
var ErrMissingKey = errors.New("anthropic: API key is required")

// Service is a Messages API driven.LLMService.
type Service struct {
	cfg    llm.Config
	client *llm.Client
}

type messagesRequest struct {
	Model       string     `json:"model"`
	System      string     `json:"system,omitempty"`
	Messages    []llm.Turn `json:"messages"`
	MaxTokens   int        `json:"max_tokens"`
	Temperature float64    `json:"temperature,omitempty"`
}

type contentBlock struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

type messagesResponse struct {
	Content    []contentBlock `json:"content"`
	StopReason string         `json:"stop_reason"`
	Error      *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

func New(cfg llm.Config) (*Service, error) {
	if cfg.APIKey == "" {
		return nil, ErrMissingKey
	}
	cfg = cfg.WithDefaults(Defaults)
	return &Service{cfg: cfg, client: cfg.NewClient("anthropic")}, nil
}

// Chat sends the conversation with system turns moved to the top-level
// system field, and returns the concatenated text blocks of the reply.
func (s *Service) Chat(ctx context.Context, messages []driven.ChatMessage, opts driven.ChatOptions) (string, error) {
	var system []string
	for _, m := range messages {
		if m.Role == domain.RoleSystem {
			system = append(system, m.Content)
		}
	}

	// max_tokens is mandatory for this API.
	maxTokens := opts.MaxTokens
	if maxTokens <= 0 {
		maxTokens = domain.DefaultMaxTokens
	}

	req := messagesRequest{
		Model:  s.cfg.Model,
		System: strings.Join(system, "\n\n"),
		Messages: llm.Turns(messages, func(m driven.ChatMessage) bool {
			return m.Role != domain.RoleSystem
		}),
		MaxTokens:   maxTokens,
		Temperature: max(opts.Temperature, 0),
	}

	var resp messagesResponse
	if err := s.client.PostJSON(ctx, s.cfg.URL("/v1/messages"), s.auth(), req, &resp); err != nil {
		return "", err
	}
	if resp.Error != nil {
		return "", fmt.Errorf("anthropic: %s", resp.Error.Message)
	}
	if len(resp.Content) == 0 {
		return "", errors.New("anthropic: no response content returned")
	}

	var text strings.Builder
	for _, b := range resp.Content {
		if b.Type == "text" {
			text.WriteString(b.Text)
		}
	}
	return text.String(), nil
}

func (s *Service) ModelName() string { return s.cfg.Model }

// Ping lists models, which checks the key without running inference.
func (s *Service) Ping(ctx context.Context) error {
	return s.client.Get(ctx, s.cfg.URL("/v1/models"), s.auth())
}

func (s *Service) Close() error { return nil }

func (s *Service) auth() http.Header {
	return llm.Header("x-api-key", s.cfg.APIKey, "anthropic-version", apiVersion)
}

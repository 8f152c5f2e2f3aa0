// Package ai builds and checks LLM services from settings.
package ai

import (
	"fmt"

	"github.com/custodia-labs/docchat/internal/adapters/driven/llm"
	"github.com/custodia-labs/docchat/internal/adapters/driven/llm/anthropic"
	"github.com/custodia-labs/docchat/internal/adapters/driven/llm/ollama"
	"github.com/custodia-labs/docchat/internal/adapters/driven/llm/openai"
	"github.com/custodia-labs/docchat/internal/core/domain"
	"github.com/custodia-labs/docchat/internal/core/ports/driven"
)

// CreateLLMService returns the service for settings.Provider, or nil when
// the provider is not configured.
func CreateLLMService(settings *domain.LLMSettings) (driven.LLMService, error) {
	if settings == nil || !settings.IsConfigured() {
		return nil, nil
	}

	cfg := llm.Config{
		BaseURL:           settings.BaseURL,
		Model:             settings.Model,
		APIKey:            settings.APIKey,
		RequestsPerSecond: settings.RequestsPerSecond,
	}

	var (
		svc driven.LLMService
		err error
	)
	switch settings.Provider {
	case domain.AIProviderOllama:
		svc = ollama.New(cfg)
	case domain.AIProviderOpenAI:
		svc, err = openai.New(cfg)
	case domain.AIProviderAnthropic:
		svc, err = anthropic.New(cfg)
	default:
		err = fmt.Errorf("unsupported LLM provider: %s", settings.Provider)
	}
	if err != nil {
		return nil, err
	}
	return svc, nil
}

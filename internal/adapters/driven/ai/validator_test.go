package ai

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/docchat/internal/core/domain"
)

func TestNewConfigValidator_DefaultTimeout(t *testing.T) {
	assert.Equal(t, DefaultPingTimeout, NewConfigValidator(0).timeout)
	assert.Equal(t, time.Second, NewConfigValidator(time.Second).timeout)
}

func TestConfigValidator_Unconfigured(t *testing.T) {
	v := NewConfigValidator(0)

	assert.NoError(t, v.ValidateLLM(nil))
	assert.NoError(t, v.ValidateLLM(&domain.LLMSettings{Model: "test-model"}))
	assert.NoError(t, v.ValidateLLM(&domain.LLMSettings{Provider: domain.AIProviderOpenAI}))
}

func TestConfigValidator_OpenAIKey(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer good" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		_, _ = w.Write([]byte(`{"data":[]}`))
	}))
	defer server.Close()

	settings := func(key string) *domain.LLMSettings {
		return &domain.LLMSettings{
			Provider: domain.AIProviderOpenAI,
			BaseURL:  server.URL,
			APIKey:   key,
		}
	}
	v := NewConfigValidator(0)

	assert.NoError(t, v.ValidateLLM(settings("good")))

	err := v.ValidateLLM(settings("bad"))
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrLLMUnavailable)
	assert.Contains(t, err.Error(), server.URL)
}

func TestConfigValidator_OllamaReachability(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/tags", r.URL.Path)
		_, _ = w.Write([]byte(`{"models":[]}`))
	}))
	defer server.Close()

	v := NewConfigValidator(0)
	assert.NoError(t, v.ValidateLLM(&domain.LLMSettings{
		Provider: domain.AIProviderOllama,
		BaseURL:  server.URL,
	}))

	unreachable := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	url := unreachable.URL
	unreachable.Close()

	err := v.ValidateLLM(&domain.LLMSettings{
		Provider: domain.AIProviderOllama,
		BaseURL:  url,
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrLLMUnavailable)
}

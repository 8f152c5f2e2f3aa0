package ai

import (
	"context"
	"fmt"
	"time"

	"github.com/custodia-labs/docchat/internal/core/domain"
	"github.com/custodia-labs/docchat/internal/core/ports/driven"
)

// Ensure ConfigValidator implements the interface.
var _ driven.AIConfigValidator = (*ConfigValidator)(nil)

// DefaultPingTimeout bounds the connectivity check.
const DefaultPingTimeout = 5 * time.Second

// ConfigValidator checks LLM settings by building a client and pinging
// the provider.
type ConfigValidator struct {
	timeout time.Duration
}

// NewConfigValidator creates a validator. A non-positive timeout uses
// DefaultPingTimeout.
func NewConfigValidator(timeout time.Duration) *ConfigValidator {
	if timeout <= 0 {
		timeout = DefaultPingTimeout
	}
	return &ConfigValidator{timeout: timeout}
}

// ValidateLLM returns nil for unconfigured settings. Failures wrap
// domain.ErrLLMUnavailable.
func (v *ConfigValidator) ValidateLLM(settings *domain.LLMSettings) error {
	if settings == nil || !settings.IsConfigured() {
		return nil
	}

	svc, err := CreateLLMService(settings)
	if err != nil {
		return fmt.Errorf("%w: %w", domain.ErrLLMUnavailable, err)
	}
	defer svc.Close()

	ctx, cancel := context.WithTimeout(context.Background(), v.timeout)
	defer cancel()

	if err := svc.Ping(ctx); err != nil {
		return fmt.Errorf("%w: %s unreachable at %s: %w",
			domain.ErrLLMUnavailable, settings.Provider, endpoint(settings), err)
	}
	return nil
}

// endpoint names the URL that was pinged, for error messages.
func endpoint(settings *domain.LLMSettings) string {
	if settings.BaseURL != "" {
		return settings.BaseURL
	}
	return "the default endpoint"
}

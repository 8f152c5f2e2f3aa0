package driven

import "github.com/custodia-labs/docchat/internal/core/domain"

// AIConfigValidator checks that LLM settings reach a working provider
// before they are saved. Unconfigured settings pass.
type AIConfigValidator interface {
	ValidateLLM(config *domain.LLMSettings) error
}

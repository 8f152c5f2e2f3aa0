package driving

import "github.com/custodia-labs/docchat/internal/core/domain"

// SettingsService reads and edits the persisted configuration behind the
// config command and the server bootstrap.
type SettingsService interface {
	// Get returns the stored settings with defaults filled in.
	Get() (*domain.AppSettings, error)
	Save(settings *domain.AppSettings) error
	GetDefaults() domain.AppSettings

	// SetLLMProvider switches provider, model and key in one step.
	SetLLMProvider(provider domain.AIProvider, model, apiKey string) error

	// SetValue parses value for key and stores it. Unknown keys and bad
	// values fail with domain.ErrInvalidInput.
	SetValue(key, value string) error
	// Keys lists the keys SetValue accepts, sorted.
	Keys() []string

	// Validate reports settings the server cannot start with.
	Validate() error
	// ValidateLLMConfig pings the configured provider.
	ValidateLLMConfig() error
}

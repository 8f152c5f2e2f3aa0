package services

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/custodia-labs/docchat/internal/core/domain"
	"github.com/custodia-labs/docchat/internal/core/ports/driven"
	"github.com/custodia-labs/docchat/internal/core/ports/driving"
)

// Ensure SettingsService implements the interface.
var _ driving.SettingsService = (*SettingsService)(nil)

// Config keys for settings storage.
//
//nolint:gosec // G101: These are config key names, not actual credentials.
const (
	keyLLMProvider    = "llm.provider"
	keyLLMModel       = "llm.model"
	keyLLMBaseURL     = "llm.base_url"
	keyLLMAPIKey      = "llm.api_key"
	keyLLMTemperature = "llm.temperature"
	keyLLMMaxTokens   = "llm.max_tokens"
	keyLLMRate        = "llm.requests_per_second"

	keyTopK           = "retrieval.top_k"
	keyThreshold      = "retrieval.threshold"
	keyFallbackChunks = "retrieval.fallback_chunks"
	keyVocabularySize = "retrieval.vocabulary_size"
	keyHintKeywords   = "retrieval.hint_keywords"

	keyPipelineProfile = "pipeline.profile"

	keyStorageBackend = "storage.backend"
	keyDataDir        = "storage.data_dir"
	keyMongoURI       = "storage.mongo_uri"
	keyMongoDatabase  = "storage.mongo_database"

	keyAddr           = "server.addr"
	keyUserHeader     = "server.user_header"
	keyWebhookSecret  = "server.webhook_secret"
	keyMaxUpload      = "server.max_upload_bytes"
	keyRequestTimeout = "server.request_timeout"
)

type valueKind int

const (
	kindString valueKind = iota
	kindInt
	kindFloat
	kindList
	kindDuration
)

// settingKinds lists every key SetValue accepts.
var settingKinds = map[string]valueKind{
	keyLLMProvider:    kindString,
	keyLLMModel:       kindString,
	keyLLMBaseURL:     kindString,
	keyLLMAPIKey:      kindString,
	keyLLMTemperature: kindFloat,
	keyLLMMaxTokens:   kindInt,
	keyLLMRate:        kindFloat,
	keyTopK:           kindInt,
	keyThreshold:      kindFloat,
	keyFallbackChunks: kindInt,
	keyVocabularySize: kindInt,
	keyHintKeywords:   kindList,

	keyPipelineProfile: kindString,

	keyStorageBackend: kindString,
	keyDataDir:        kindString,
	keyMongoURI:       kindString,
	keyMongoDatabase:  kindString,
	keyAddr:           kindString,
	keyUserHeader:     kindString,
	keyWebhookSecret:  kindString,
	keyMaxUpload:      kindInt,
	keyRequestTimeout: kindDuration,
}

// SettingsService manages application settings.
type SettingsService struct {
	configStore driven.ConfigStore
	aiValidator driven.AIConfigValidator
}

// NewSettingsService creates a new settings service.
func NewSettingsService(configStore driven.ConfigStore, aiValidator driven.AIConfigValidator) *SettingsService {
	return &SettingsService{
		configStore: configStore,
		aiValidator: aiValidator,
	}
}

// Get retrieves current application settings.
func (s *SettingsService) Get() (*domain.AppSettings, error) {
	defaults := domain.DefaultAppSettings()

	provider := s.getProvider(keyLLMProvider, defaults.LLM.Provider)
	baseURL := s.configStore.GetString(keyLLMBaseURL)
	if baseURL == "" && provider == domain.AIProviderOpenAI {
		baseURL = defaults.LLM.BaseURL
	}
	model := s.getString(keyLLMModel, "")
	if model == "" {
		model = domain.DefaultLLMModels()[provider]
	}

	settings := &domain.AppSettings{
		LLM: domain.LLMSettings{
			Provider:          provider,
			Model:             model,
			BaseURL:           baseURL,
			APIKey:            s.configStore.GetString(keyLLMAPIKey),
			Temperature:       s.getFloat(keyLLMTemperature, defaults.LLM.Temperature),
			MaxTokens:         s.getInt(keyLLMMaxTokens, defaults.LLM.MaxTokens),
			RequestsPerSecond: s.getFloat(keyLLMRate, defaults.LLM.RequestsPerSecond),
		},
		Retrieval: domain.RetrievalSettings{
			TopK:           s.getInt(keyTopK, defaults.Retrieval.TopK),
			Threshold:      s.getFloat(keyThreshold, defaults.Retrieval.Threshold),
			FallbackChunks: s.getInt(keyFallbackChunks, defaults.Retrieval.FallbackChunks),
			VocabularySize: s.getInt(keyVocabularySize, defaults.Retrieval.VocabularySize),
			HintKeywords:   s.getStringSlice(keyHintKeywords, defaults.Retrieval.HintKeywords),
		},
		Indexing: domain.IndexingSettings{
			Profile: s.getProfile(defaults.Indexing.Profile),
		},
		Storage: domain.StorageSettings{
			Backend:       s.getBackend(defaults.Storage.Backend),
			DataDir:       s.configStore.GetString(keyDataDir),
			MongoURI:      s.configStore.GetString(keyMongoURI),
			MongoDatabase: s.getString(keyMongoDatabase, defaults.Storage.MongoDatabase),
		},
		Server: domain.ServerSettings{
			Addr:           s.getString(keyAddr, defaults.Server.Addr),
			UserHeader:     s.getString(keyUserHeader, defaults.Server.UserHeader),
			WebhookSecret:  s.configStore.GetString(keyWebhookSecret),
			MaxUploadBytes: int64(s.getInt(keyMaxUpload, int(defaults.Server.MaxUploadBytes))),
			RequestTimeout: s.getDuration(keyRequestTimeout, defaults.Server.RequestTimeout),
		},
	}

	return settings, nil
}

// Save persists application settings.
func (s *SettingsService) Save(settings *domain.AppSettings) error {
	values := []struct {
		key   string
		value any
	}{
		{keyLLMProvider, settings.LLM.Provider.String()},
		{keyLLMModel, settings.LLM.Model},
		{keyLLMBaseURL, settings.LLM.BaseURL},
		{keyLLMTemperature, settings.LLM.Temperature},
		{keyLLMMaxTokens, settings.LLM.MaxTokens},
		{keyLLMRate, settings.LLM.RequestsPerSecond},
		{keyTopK, settings.Retrieval.TopK},
		{keyThreshold, settings.Retrieval.Threshold},
		{keyFallbackChunks, settings.Retrieval.FallbackChunks},
		{keyVocabularySize, settings.Retrieval.VocabularySize},
		{keyHintKeywords, settings.Retrieval.HintKeywords},
		{keyPipelineProfile, string(settings.Indexing.Profile)},
		{keyStorageBackend, string(settings.Storage.Backend)},
		{keyDataDir, settings.Storage.DataDir},
		{keyMongoDatabase, settings.Storage.MongoDatabase},
		{keyAddr, settings.Server.Addr},
		{keyUserHeader, settings.Server.UserHeader},
		{keyMaxUpload, int(settings.Server.MaxUploadBytes)},
		{keyRequestTimeout, settings.Server.RequestTimeout.String()},
	}
	for _, v := range values {
		if err := s.configStore.Set(v.key, v.value); err != nil {
			return fmt.Errorf("save %s: %w", v.key, err)
		}
	}

	// Secrets are only written when present so env-provided values stay out of the file.
	secrets := map[string]string{
		keyLLMAPIKey:     settings.LLM.APIKey,
		keyMongoURI:      settings.Storage.MongoURI,
		keyWebhookSecret: settings.Server.WebhookSecret,
	}
	for key, value := range secrets {
		if value == "" {
			continue
		}
		if err := s.configStore.Set(key, value); err != nil {
			return fmt.Errorf("save %s: %w", key, err)
		}
	}

	return nil
}

// SetLLMProvider configures the LLM provider.
func (s *SettingsService) SetLLMProvider(provider domain.AIProvider, model, apiKey string) error {
	if !provider.IsValid() {
		return fmt.Errorf("%w: invalid LLM provider: %s", domain.ErrInvalidInput, provider)
	}

	// Validate API key if required
	if provider.RequiresAPIKey() && apiKey == "" {
		return fmt.Errorf("%w: API key required for %s", domain.ErrInvalidInput, provider)
	}

	settings, err := s.Get()
	if err != nil {
		return err
	}

	changed := settings.LLM.Provider != provider
	settings.LLM.Provider = provider

	// Set model - use provided or default
	if model != "" {
		settings.LLM.Model = model
	} else if changed {
		settings.LLM.Model = domain.DefaultLLMModels()[provider]
	}

	// Each adapter falls back to its own endpoint when the base URL is empty.
	if changed {
		settings.LLM.BaseURL = ""
		if provider == domain.AIProviderOpenAI {
			settings.LLM.BaseURL = domain.DefaultLLMBaseURL
		}
	}

	settings.LLM.APIKey = apiKey

	return s.Save(settings)
}

// SetValue parses and stores a single setting.
func (s *SettingsService) SetValue(key, value string) error {
	kind, ok := settingKinds[key]
	if !ok {
		return fmt.Errorf("%w: unknown setting %q", domain.ErrInvalidInput, key)
	}

	parsed, err := parseValue(kind, value)
	if err != nil {
		return fmt.Errorf("%w: %s: %w", domain.ErrInvalidInput, key, err)
	}

	switch key {
	case keyLLMProvider:
		if !domain.AIProvider(value).IsValid() {
			return fmt.Errorf("%w: invalid LLM provider: %s", domain.ErrInvalidInput, value)
		}
	case keyStorageBackend:
		if !domain.StorageBackend(value).IsValid() {
			return fmt.Errorf("%w: invalid storage backend: %s", domain.ErrInvalidInput, value)
		}
	case keyPipelineProfile:
		if !domain.PipelineProfile(value).IsValid() {
			return fmt.Errorf("%w: invalid pipeline profile: %s", domain.ErrInvalidInput, value)
		}
	}

	return s.configStore.Set(key, parsed)
}

// Keys returns every recognised config key, sorted.
func (s *SettingsService) Keys() []string {
	keys := make([]string, 0, len(settingKinds))
	for k := range settingKinds {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Validate checks the current settings can run the server.
func (s *SettingsService) Validate() error {
	settings, err := s.Get()
	if err != nil {
		return err
	}

	if !settings.LLM.IsConfigured() {
		return fmt.Errorf("%w: LLM provider %q is not configured (set %s or GROQ_API_KEY)",
			domain.ErrInvalidInput, settings.LLM.Provider, keyLLMAPIKey)
	}
	if settings.Storage.Backend == domain.StorageMongo && settings.Storage.MongoURI == "" {
		return fmt.Errorf("%w: mongo backend requires %s", domain.ErrInvalidInput, keyMongoURI)
	}
	if settings.Retrieval.TopK <= 0 {
		return fmt.Errorf("%w: %s must be positive", domain.ErrInvalidInput, keyTopK)
	}
	if settings.Server.MaxUploadBytes <= 0 {
		return fmt.Errorf("%w: %s must be positive", domain.ErrInvalidInput, keyMaxUpload)
	}

	return nil
}

// GetDefaults returns default settings.
func (s *SettingsService) GetDefaults() domain.AppSettings {
	return domain.DefaultAppSettings()
}

// ValidateLLMConfig validates the current LLM configuration by pinging the provider.
func (s *SettingsService) ValidateLLMConfig() error {
	if s.aiValidator == nil {
		return nil
	}
	settings, err := s.Get()
	if err != nil {
		return err
	}
	return s.aiValidator.ValidateLLM(&settings.LLM)
}

func parseValue(kind valueKind, value string) (any, error) {
	switch kind {
	case kindInt:
		return strconv.Atoi(value)
	case kindFloat:
		return strconv.ParseFloat(value, 64)
	case kindDuration:
		d, err := time.ParseDuration(value)
		if err != nil {
			return nil, err
		}
		return d.String(), nil
	case kindList:
		fields := strings.FieldsFunc(value, func(r rune) bool { return r == ',' })
		list := make([]string, 0, len(fields))
		for _, f := range fields {
			if f = strings.TrimSpace(f); f != "" {
				list = append(list, f)
			}
		}
		return list, nil
	default:
		return value, nil
	}
}

// Helper methods for reading config with defaults.

func (s *SettingsService) getString(key, defaultVal string) string {
	val := s.configStore.GetString(key)
	if val == "" {
		return defaultVal
	}
	return val
}

func (s *SettingsService) getInt(key string, defaultVal int) int {
	val := s.configStore.GetInt(key)
	if val == 0 {
		return defaultVal
	}
	return val
}

// getFloat distinguishes an explicit zero from a missing key.
func (s *SettingsService) getFloat(key string, defaultVal float64) float64 {
	if _, exists := s.configStore.Get(key); !exists {
		return defaultVal
	}
	return s.configStore.GetFloat(key)
}

// getStringSlice returns defaultVal only when the key is absent, so an
// empty list can switch a feature off.
func (s *SettingsService) getStringSlice(key string, defaultVal []string) []string {
	if _, exists := s.configStore.Get(key); !exists {
		return defaultVal
	}
	val := s.configStore.GetStringSlice(key)
	if val == nil {
		return []string{}
	}
	return val
}

func (s *SettingsService) getDuration(key string, defaultVal time.Duration) time.Duration {
	val := s.configStore.GetString(key)
	if val == "" {
		return defaultVal
	}
	d, err := time.ParseDuration(val)
	if err != nil || d <= 0 {
		return defaultVal
	}
	return d
}

func (s *SettingsService) getProvider(key string, defaultVal domain.AIProvider) domain.AIProvider {
	val := s.configStore.GetString(key)
	if val == "" {
		return defaultVal
	}
	provider := domain.AIProvider(val)
	if !provider.IsValid() {
		return defaultVal
	}
	return provider
}

func (s *SettingsService) getBackend(defaultVal domain.StorageBackend) domain.StorageBackend {
	backend := domain.StorageBackend(s.configStore.GetString(keyStorageBackend))
	if !backend.IsValid() {
		return defaultVal
	}
	return backend
}

func (s *SettingsService) getProfile(defaultVal domain.PipelineProfile) domain.PipelineProfile {
	profile := domain.PipelineProfile(s.configStore.GetString(keyPipelineProfile))
	if !profile.IsValid() {
		return defaultVal
	}
	return profile
}

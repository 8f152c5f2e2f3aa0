package domain

import "time"

const unknownDescription = "Unknown"

// AIProvider identifies an LLM service provider.
type AIProvider string

// Available AI providers.
const (
	// AIProviderOpenAI is any OpenAI-compatible chat completions API (Groq by default).
	AIProviderOpenAI AIProvider = "openai"

	// AIProviderOllama is a local Ollama instance.
	AIProviderOllama AIProvider = "ollama"

	// AIProviderAnthropic is Anthropic cloud API.
	AIProviderAnthropic AIProvider = "anthropic"
)

// IsValid returns true if the AI provider is recognised.
func (p AIProvider) IsValid() bool {
	switch p {
	case AIProviderOllama, AIProviderOpenAI, AIProviderAnthropic:
		return true
	default:
		return false
	}
}

// RequiresAPIKey returns true if this provider needs an API key.
func (p AIProvider) RequiresAPIKey() bool {
	return p == AIProviderOpenAI || p == AIProviderAnthropic
}

// String returns the string representation.
func (p AIProvider) String() string {
	return string(p)
}

// Description returns a human-readable description of the provider.
func (p AIProvider) Description() string {
	switch p {
	case AIProviderOllama:
		return "Ollama (local)"
	case AIProviderOpenAI:
		return "OpenAI-compatible (cloud)"
	case AIProviderAnthropic:
		return "Anthropic (cloud)"
	default:
		return unknownDescription
	}
}

// LLMSettings holds LLM provider configuration.
type LLMSettings struct {
	// Provider is the LLM service provider.
	Provider AIProvider

	// Model is the LLM model name.
	Model string

	// BaseURL is the API endpoint.
	BaseURL string

	// APIKey is the API key (for cloud providers).
	APIKey string

	// Temperature is the sampling temperature for chat replies.
	Temperature float64

	// MaxTokens caps the length of chat replies.
	MaxTokens int

	// RequestsPerSecond throttles outgoing calls. Zero disables throttling.
	RequestsPerSecond float64
}

// IsConfigured returns true if the LLM provider is set up.
func (l LLMSettings) IsConfigured() bool {
	if !l.Provider.IsValid() {
		return false
	}
	if l.Provider.RequiresAPIKey() && l.APIKey == "" {
		return false
	}
	return true
}

// RetrievalSettings controls how context is selected for a query.
type RetrievalSettings struct {
	// TopK is the number of best-scoring chunks considered.
	TopK int

	// Threshold is the score a chunk must exceed to be selected.
	Threshold float64

	// FallbackChunks is how many leading chunks are used when none pass the threshold.
	FallbackChunks int

	// VocabularySize is used when a document has no stored vocabulary.
	VocabularySize int

	// HintKeywords form a second query that boosts recall for
	// guide-like documents. Empty disables the boost.
	HintKeywords []string
}

// IndexingSettings controls how uploads are chunked and embedded.
type IndexingSettings struct {
	// Profile selects the pipeline configuration for each upload.
	Profile PipelineProfile
}

// StorageBackend selects the persistence adapter.
type StorageBackend string

// Available storage backends.
const (
	StorageSQLite StorageBackend = "sqlite"
	StorageMongo  StorageBackend = "mongo"
)

// IsValid returns true if the backend is recognised.
func (b StorageBackend) IsValid() bool {
	return b == StorageSQLite || b == StorageMongo
}

// StorageSettings holds persistence configuration.
type StorageSettings struct {
	// Backend is the storage adapter to use.
	Backend StorageBackend

	// DataDir holds the SQLite database (default: ~/.docchat/data).
	DataDir string

	// MongoURI is the connection string for the mongo backend.
	MongoURI string

	// MongoDatabase is the database name for the mongo backend.
	MongoDatabase string
}

// ServerSettings holds HTTP API configuration.
type ServerSettings struct {
	// Addr is the listen address.
	Addr string

	// UserHeader carries the verified user id set by the upstream auth proxy.
	UserHeader string

	// WebhookSecret verifies identity provider webhooks ("whsec_..." form).
	WebhookSecret string

	// MaxUploadBytes limits document uploads.
	MaxUploadBytes int64

	// RequestTimeout bounds each request, including extraction and generation.
	RequestTimeout time.Duration
}

// AppSettings holds all application settings.
type AppSettings struct {
	LLM       LLMSettings
	Retrieval RetrievalSettings
	Indexing  IndexingSettings
	Storage   StorageSettings
	Server    ServerSettings
}

// Default values shared by adapters and settings.
const (
	DefaultLLMBaseURL     = "https://api.groq.com/openai/v1"
	DefaultLLMModel       = "llama-3.1-8b-instant"
	DefaultTemperature    = 0.7
	DefaultMaxTokens      = 1024
	DefaultTopK           = 5
	DefaultThreshold      = 0.001
	DefaultFallbackChunks = 3
	DefaultVocabularySize = 20
	DefaultAddr           = ":8080"
	DefaultUserHeader     = "X-User-ID"
	DefaultMaxUploadBytes = 10 << 20
	DefaultRequestTimeout = 60 * time.Second
	DefaultMongoDatabase  = "docchat"
)

// DefaultHintKeywords are Arabic words for guide, section, chapter,
// explanation, usage and instructions.
func DefaultHintKeywords() []string {
	return []string{"دليل", "قسم", "فصل", "شرح", "استخدام", "إرشادات"}
}

// DefaultRetrievalSettings returns the standard selection policy.
func DefaultRetrievalSettings() RetrievalSettings {
	return RetrievalSettings{
		TopK:           DefaultTopK,
		Threshold:      DefaultThreshold,
		FallbackChunks: DefaultFallbackChunks,
		VocabularySize: DefaultVocabularySize,
		HintKeywords:   DefaultHintKeywords(),
	}
}

// DefaultAppSettings returns settings with sensible defaults.
// The LLM API key is left empty and must come from config or environment.
func DefaultAppSettings() AppSettings {
	return AppSettings{
		LLM: LLMSettings{
			Provider:    AIProviderOpenAI,
			Model:       DefaultLLMModel,
			BaseURL:     DefaultLLMBaseURL,
			Temperature: DefaultTemperature,
			MaxTokens:   DefaultMaxTokens,
		},
		Retrieval: DefaultRetrievalSettings(),
		Indexing:  IndexingSettings{Profile: ProfileStandard},
		Storage: StorageSettings{
			Backend:       StorageSQLite,
			MongoDatabase: DefaultMongoDatabase,
		},
		Server: ServerSettings{
			Addr:           DefaultAddr,
			UserHeader:     DefaultUserHeader,
			MaxUploadBytes: DefaultMaxUploadBytes,
			RequestTimeout: DefaultRequestTimeout,
		},
	}
}

// AllLLMProviders returns providers that support chat.
func AllLLMProviders() []AIProvider {
	return []AIProvider{
		AIProviderOpenAI,
		AIProviderOllama,
		AIProviderAnthropic,
	}
}

// DefaultLLMModels returns default models for each LLM provider.
func DefaultLLMModels() map[AIProvider]string {
	return map[AIProvider]string{
		AIProviderOpenAI:    DefaultLLMModel,
		AIProviderOllama:    "llama3.2",
		AIProviderAnthropic: "claude-3-5-sonnet-latest",
	}
}

package file

import (
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/pelletier/go-toml/v2"

	"github.com/custodia-labs/docchat/internal/adapters/driven/config/value"
	"github.com/custodia-labs/docchat/internal/core/ports/driven"
)

// Ensure ConfigStore implements the interface.
var _ driven.ConfigStore = (*ConfigStore)(nil)

// EnvOverrides maps environment variables to the configuration keys they
// override. Overrides are read at load time and never written to disk.
// When several variables name the same key, the later entry wins.
var EnvOverrides = []struct {
	Env string
	Key string
}{
	{"GROQ_API_KEY", "llm.api_key"},
	{"DOCCHAT_LLM_API_KEY", "llm.api_key"},
	{"DOCCHAT_MONGODB_URI", "storage.mongo_uri"},
	{"DOCCHAT_WEBHOOK_SECRET", "server.webhook_secret"},
	{"DOCCHAT_ADDR", "server.addr"},
}

// ConfigStore is a file-based implementation of driven.ConfigStore using TOML.
// Configuration is stored in a TOML file within the docchat config directory.
// Dotted keys are written as nested tables.
type ConfigStore struct {
	mu        sync.RWMutex
	filePath  string
	data      map[string]any
	overrides map[string]any
	getenv    func(string) string
}

// Option configures a ConfigStore.
type Option func(*ConfigStore)

// WithEnv sets the environment lookup used for overrides.
// Pass nil to disable environment overrides.
func WithEnv(getenv func(string) string) Option {
	return func(s *ConfigStore) {
		s.getenv = getenv
	}
}

// NewConfigStore creates a new TOML-based config store.
// If configDir is empty, defaults to ~/.docchat/config.toml.
func NewConfigStore(configDir string, opts ...Option) (*ConfigStore, error) {
	if configDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, err
		}
		configDir = filepath.Join(home, ".docchat")
	}

	// Ensure directory exists
	if err := os.MkdirAll(configDir, 0700); err != nil {
		return nil, err
	}

	s := &ConfigStore{
		filePath: filepath.Join(configDir, "config.toml"),
		data:     make(map[string]any),
		getenv:   os.Getenv,
	}
	for _, opt := range opts {
		opt(s)
	}

	if err := s.Load(); err != nil {
		return nil, err
	}

	return s, nil
}

// Get retrieves a configuration value by key. Environment overrides win.
func (s *ConfigStore) Get(key string) (any, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if val, ok := s.overrides[key]; ok {
		return val, true
	}
	val, ok := s.data[key]
	return val, ok
}

func (s *ConfigStore) GetString(key string) string        { return value.String(s.Get(key)) }
func (s *ConfigStore) GetInt(key string) int              { return value.Int(s.Get(key)) }
func (s *ConfigStore) GetFloat(key string) float64        { return value.Float(s.Get(key)) }
func (s *ConfigStore) GetBool(key string) bool            { return value.Bool(s.Get(key)) }
func (s *ConfigStore) GetStringSlice(key string) []string { return value.Strings(s.Get(key)) }

// Set stores a configuration value and persists immediately.
// An environment override for the same key still takes precedence on reads.
func (s *ConfigStore) Set(key string, value any) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.data[key] = value
	return s.save()
}

// Save persists the current configuration to disk.
func (s *ConfigStore) Save() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.save()
}

// save writes configuration to the TOML file (caller must hold lock).
func (s *ConfigStore) save() error {
	data, err := toml.Marshal(nestMap(s.data))
	if err != nil {
		return err
	}

	// Write with restricted permissions
	return os.WriteFile(s.filePath, data, 0600)
}

// Load reads configuration from the TOML file and the environment.
func (s *ConfigStore) Load() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.overrides = s.readEnv()

	data, err := os.ReadFile(s.filePath)
	if err != nil {
		if os.IsNotExist(err) {
			// No config file yet - that's fine, start empty
			s.data = make(map[string]any)
			return nil
		}
		return err
	}

	var loaded map[string]any
	if err := toml.Unmarshal(data, &loaded); err != nil {
		return err
	}

	// Flatten nested tables into dot-notation keys for easier access
	s.data = flattenMap(loaded, "")
	return nil
}

// Path returns the configuration file path.
func (s *ConfigStore) Path() string {
	return s.filePath
}

// readEnv collects environment overrides (caller must hold lock).
func (s *ConfigStore) readEnv() map[string]any {
	overrides := make(map[string]any)
	if s.getenv == nil {
		return overrides
	}
	for _, o := range EnvOverrides {
		if v := strings.TrimSpace(s.getenv(o.Env)); v != "" {
			overrides[o.Key] = v
		}
	}
	return overrides
}

// flattenMap converts nested maps to dot-notation keys.
// E.g., {"a": {"b": 1}} becomes {"a.b": 1}.
func flattenMap(m map[string]any, prefix string) map[string]any {
	result := make(map[string]any)

	for key, value := range m {
		fullKey := key
		if prefix != "" {
			fullKey = prefix + "." + key
		}

		if nested, ok := value.(map[string]any); ok {
			for k, v := range flattenMap(nested, fullKey) {
				result[k] = v
			}
		} else {
			result[fullKey] = value
		}
	}

	return result
}

// nestMap is the inverse of flattenMap: {"a.b": 1} becomes {"a": {"b": 1}}.
// A key that is both a value and a table prefix keeps the table.
func nestMap(flat map[string]any) map[string]any {
	result := make(map[string]any)

	for key, value := range flat {
		parts := strings.Split(key, ".")
		node := result
		for _, part := range parts[:len(parts)-1] {
			child, ok := node[part].(map[string]any)
			if !ok {
				child = make(map[string]any)
				node[part] = child
			}
			node = child
		}
		leaf := parts[len(parts)-1]
		if _, isTable := node[leaf].(map[string]any); !isTable {
			node[leaf] = value
		}
	}

	return result
}

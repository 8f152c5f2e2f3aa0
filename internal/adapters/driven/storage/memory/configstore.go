package memory

import (
	"maps"
	"sync"

	"github.com/custodia-labs/docchat/internal/adapters/driven/config/value"
	"github.com/custodia-labs/docchat/internal/core/ports/driven"
)

var _ driven.ConfigStore = (*ConfigStore)(nil)

// ConfigStore keeps settings in a map. Nothing is persisted.
type ConfigStore struct {
	mu     sync.RWMutex
	values map[string]any
}

// NewConfigStore returns a store holding the merged seed maps; later maps win.
func NewConfigStore(seed ...map[string]any) *ConfigStore {
	values := make(map[string]any)
	for _, m := range seed {
		maps.Copy(values, m)
	}
	return &ConfigStore{values: values}
}

func (s *ConfigStore) Get(key string) (any, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.values[key]
	return v, ok
}

func (s *ConfigStore) GetString(key string) string        { return value.String(s.Get(key)) }
func (s *ConfigStore) GetInt(key string) int              { return value.Int(s.Get(key)) }
func (s *ConfigStore) GetFloat(key string) float64        { return value.Float(s.Get(key)) }
func (s *ConfigStore) GetBool(key string) bool            { return value.Bool(s.Get(key)) }
func (s *ConfigStore) GetStringSlice(key string) []string { return value.Strings(s.Get(key)) }

func (s *ConfigStore) Set(key string, v any) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values[key] = v
	return nil
}

func (s *ConfigStore) Save() error  { return nil }
func (s *ConfigStore) Load() error  { return nil }
func (s *ConfigStore) Path() string { return ":memory:" }

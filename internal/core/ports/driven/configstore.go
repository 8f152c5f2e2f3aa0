package driven

// ConfigStore is a flat key/value view of the settings file. Keys are
// dotted paths such as "retrieval.top_k".
//
// The typed getters return the zero value when a key is missing or holds
// another type, so callers can layer their own defaults on top.
type ConfigStore interface {
	Get(key string) (any, bool)
	GetString(key string) string
	GetInt(key string) int
	// GetFloat also accepts integer values.
	GetFloat(key string) float64
	GetBool(key string) bool
	GetStringSlice(key string) []string

	// Set writes through to storage immediately.
	Set(key string, value any) error
	Save() error
	// Load replaces the in-memory values with what storage holds.
	Load() error

	// Path locates the backing file, for display.
	Path() string
}

package driven

// ConfigStore is a flat key/value view over persisted settings. Keys are
// dotted paths such as "search.limit"; typed getters return the zero value
// when a key is missing or holds another type.
type ConfigStore interface {
	// Get returns the raw value stored under key.
	Get(key string) (any, bool)

	GetString(key string) string
	GetInt(key string) int

	// GetFloat also accepts integer values.
	GetFloat(key string) float64

	GetBool(key string) bool
	GetStringSlice(key string) []string

	// Set stores value under key and persists it immediately.
	Set(key string, value any) error

	// Keys lists every stored key in sorted order.
	Keys() []string

	// Save writes the current values to storage.
	Save() error

	// Load replaces the current values with those in storage.
	Load() error

	// Path identifies where the values are persisted.
	Path() string
}

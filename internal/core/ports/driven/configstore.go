package driven

// ConfigStore reads and writes persistent application settings, keyed
// by dotted names such as "model.provider". The backing format is up
// to the adapter.
type ConfigStore interface {
	// Get returns the raw value for key and whether it exists.
	Get(key string) (any, bool)

	// GetString returns the value for key as a string, or "" when the
	// key is missing or holds a different type.
	GetString(key string) string

	// GetInt returns the value for key as an int, or 0 when the key is
	// missing or holds a different type.
	GetInt(key string) int

	// GetBool returns the value for key as a bool, or false when the
	// key is missing or holds a different type.
	GetBool(key string) bool

	// GetStringSlice returns the value for key as a string slice, or
	// nil when the key is missing or holds a different type.
	GetStringSlice(key string) []string

	// Set stores a value under key and persists it immediately.
	Set(key string, value any) error

	// Save writes the current settings to storage.
	Save() error

	// Load reads settings from storage.
	Load() error

	// Path returns the location of the backing file.
	Path() string
}

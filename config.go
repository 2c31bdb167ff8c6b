package scribe

import "github.com/xraph/scribe/activity"

// Config holds configuration for the Logger.
type Config struct {
	// DefaultLevel is the severity assigned to entries that set none.
	// Defaults to info.
	DefaultLevel activity.Level `json:"default_level,omitempty"`

	// MaxProperties caps the number of property keys stored per entry.
	// When exceeded, only the first keys in the order the options added
	// them are retained. Defaults to 50.
	MaxProperties int `json:"max_properties,omitempty"`

	// BatchSize is the buffered-entry count at which an active batch
	// auto-flushes. Defaults to 100.
	BatchSize int `json:"batch_size,omitempty"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		DefaultLevel:  activity.LevelInfo,
		MaxProperties: 50,
		BatchSize:     100,
	}
}

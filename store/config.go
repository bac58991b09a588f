package store

import "fmt"

// BackendMemory selects the in-memory store.
const BackendMemory = "memory"

// Config selects the store implementation.
type Config struct {
	Backend string `json:"backend,omitempty" yaml:"backend,omitempty"`
}

// DefaultConfig returns the in-memory configuration.
func DefaultConfig() Config {
	return Config{Backend: BackendMemory}
}

// Merge applies non-zero values from source into c.
func (c *Config) Merge(source *Config) {
	if source.Backend != "" {
		c.Backend = source.Backend
	}
}

// New creates a Store from configuration.
func New(cfg *Config) (Store, error) {
	switch cfg.Backend {
	case BackendMemory, "":
		return NewMemory(), nil
	default:
		return nil, fmt.Errorf("unknown store backend: %s", cfg.Backend)
	}
}

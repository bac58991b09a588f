// Package config loads flowgraph settings from JSON or YAML files and the
// environment. Every section follows the same pattern: a Default*Config
// constructor and a Merge method where non-zero source values win.
//
// Example file:
//
//	{
//	  "engine": {"max_steps": 50, "observer": "slog", "validate_routes": true},
//	  "server": {"addr": ":8080", "read_timeout": "10s", "shutdown_timeout": "5s"},
//	  "store":  {"backend": "memory"},
//	  "log":    {"level": "info", "format": "text"},
//	  "graphs": ["graphs/review.hcl"]
//	}
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/tailored-agentic-units/flowgraph/store"
)

// Environment variables applied by ApplyEnv.
const (
	EnvAddr     = "FLOWGRAPH_ADDR"
	EnvLogLevel = "FLOWGRAPH_LOG_LEVEL"
	EnvMaxSteps = "FLOWGRAPH_MAX_STEPS"
)

// Config holds initialization parameters for every flowgraph component.
type Config struct {
	Engine EngineConfig `json:"engine" yaml:"engine"`
	Server ServerConfig `json:"server" yaml:"server"`
	Store  store.Config `json:"store" yaml:"store"`
	Log    LogConfig    `json:"log" yaml:"log"`

	// Graphs lists graph definition files loaded at startup.
	Graphs []string `json:"graphs,omitempty" yaml:"graphs,omitempty"`
}

// DefaultConfig returns a Config with defaults for all sections.
func DefaultConfig() Config {
	return Config{
		Engine: DefaultEngineConfig(),
		Server: DefaultServerConfig(),
		Store:  store.DefaultConfig(),
		Log:    DefaultLogConfig(),
	}
}

// Merge applies non-zero values from source into c. Graph lists are
// appended.
func (c *Config) Merge(source *Config) {
	c.Engine.Merge(&source.Engine)
	c.Server.Merge(&source.Server)
	c.Store.Merge(&source.Store)
	c.Log.Merge(&source.Log)

	c.Graphs = append(c.Graphs, source.Graphs...)
}

// Load reads a JSON or YAML config file, chosen by extension, and merges it
// over the defaults. Relative graph paths are resolved against the file's
// directory.
func Load(filename string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var loaded Config
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &loaded)
	default:
		err = json.Unmarshal(data, &loaded)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	dir := filepath.Dir(filename)
	for i, path := range loaded.Graphs {
		if !filepath.IsAbs(path) {
			loaded.Graphs[i] = filepath.Join(dir, path)
		}
	}

	cfg.Merge(&loaded)
	return &cfg, nil
}

// ApplyEnv overrides settings from the environment through lookup, which
// is normally os.LookupEnv.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) error {
	if v, ok := lookup(EnvAddr); ok && v != "" {
		c.Server.Addr = v
	}
	if v, ok := lookup(EnvLogLevel); ok && v != "" {
		c.Log.Level = v
	}
	if v, ok := lookup(EnvMaxSteps); ok && v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			return fmt.Errorf("invalid %s %q", EnvMaxSteps, v)
		}
		c.Engine.MaxSteps = n
	}
	return nil
}

package config

import "github.com/tailored-agentic-units/flowgraph/engine"

// EngineConfig controls how runs are driven.
type EngineConfig struct {
	// MaxSteps is the budget for runs that do not request their own.
	MaxSteps int `json:"max_steps,omitempty" yaml:"max_steps,omitempty"`

	// Observer names a registered observer ("noop", "slog").
	Observer string `json:"observer,omitempty" yaml:"observer,omitempty"`

	// ValidateRoutesNil controls static route checking of created graphs.
	// Use ValidateRoutes() to read it; nil means true.
	ValidateRoutesNil *bool `json:"validate_routes,omitempty" yaml:"validate_routes,omitempty"`
}

// ValidateRoutes reports whether graphs must pass graph.ValidateRoutes
// before they are accepted.
func (c *EngineConfig) ValidateRoutes() bool {
	if c.ValidateRoutesNil == nil {
		return true
	}
	return *c.ValidateRoutesNil
}

// DefaultEngineConfig returns a 50 step budget, slog events and route
// validation enabled.
func DefaultEngineConfig() EngineConfig {
	validate := true
	return EngineConfig{
		MaxSteps:          engine.DefaultMaxSteps,
		Observer:          "slog",
		ValidateRoutesNil: &validate,
	}
}

func (c *EngineConfig) Merge(source *EngineConfig) {
	if source.MaxSteps > 0 {
		c.MaxSteps = source.MaxSteps
	}

	if source.Observer != "" {
		c.Observer = source.Observer
	}

	if source.ValidateRoutesNil != nil {
		c.ValidateRoutesNil = source.ValidateRoutesNil
	}
}

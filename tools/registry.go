package tools

import (
	"context"
	"fmt"
	"maps"
	"slices"
	"sync"

	"github.com/tailored-agentic-units/flowgraph/state"
)

// Tool transforms a run's context. The engine passes a private copy of the
// current context and adopts whatever the tool returns as the new context.
type Tool interface {
	Transform(ctx context.Context, c state.Context) (state.Context, error)
}

// Func adapts an ordinary function to the Tool interface.
type Func func(ctx context.Context, c state.Context) (state.Context, error)

// Transform calls f.
func (f Func) Transform(ctx context.Context, c state.Context) (state.Context, error) {
	return f(ctx, c)
}

// Resolver looks up tools by name.
type Resolver interface {
	Resolve(name string) (Tool, error)
}

// Registry maps tool names to tools. It is safe for concurrent use.
type Registry struct {
	entries map[string]Tool
	mu      sync.RWMutex
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{entries: make(map[string]Tool)}
}

// Register adds a new tool.
// Returns ErrAlreadyExists if a tool with the same name is already registered.
// Use Replace to update an existing tool.
func (r *Registry) Register(name string, tool Tool) error {
	if name == "" {
		return ErrEmptyName
	}
	if tool == nil {
		return fmt.Errorf("%w: %s", ErrNilTool, name)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.entries[name]; exists {
		return fmt.Errorf("%w: %s", ErrAlreadyExists, name)
	}

	r.entries[name] = tool
	return nil
}

// Replace updates an existing tool.
// Returns ErrNotFound if no tool with the given name is registered.
func (r *Registry) Replace(name string, tool Tool) error {
	if name == "" {
		return ErrEmptyName
	}
	if tool == nil {
		return fmt.Errorf("%w: %s", ErrNilTool, name)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.entries[name]; !exists {
		return fmt.Errorf("%w: %s", ErrNotFound, name)
	}

	r.entries[name] = tool
	return nil
}

// Get retrieves a tool by name.
func (r *Registry) Get(name string) (Tool, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	tool, exists := r.entries[name]
	return tool, exists
}

// Resolve is Get with an error for unknown names, wrapping ErrNotFound.
func (r *Registry) Resolve(name string) (Tool, error) {
	tool, exists := r.Get(name)
	if !exists {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	return tool, nil
}

// Names returns the registered tool names, sorted.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return slices.Sorted(maps.Keys(r.entries))
}

// Missing returns the names from want that are not registered.
func (r *Registry) Missing(want []string) []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var missing []string
	for _, name := range want {
		if _, exists := r.entries[name]; !exists {
			missing = append(missing, name)
		}
	}
	return missing
}

var register = NewRegistry()

// Default returns the process-wide registry used by the package-level
// functions.
func Default() *Registry {
	return register
}

// Register adds a tool to the default registry.
func Register(name string, tool Tool) error {
	return register.Register(name, tool)
}

// Replace updates a tool in the default registry.
func Replace(name string, tool Tool) error {
	return register.Replace(name, tool)
}

// Get retrieves a tool from the default registry.
func Get(name string) (Tool, bool) {
	return register.Get(name)
}

// Resolve looks a tool up in the default registry.
func Resolve(name string) (Tool, error) {
	return register.Resolve(name)
}

// Names lists the tools in the default registry.
func Names() []string {
	return register.Names()
}

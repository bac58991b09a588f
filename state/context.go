package state

import (
	"fmt"
	"maps"
)

// Context is the key-value scratchpad shared by every step of one run.
//
// Tools receive a deep copy of the run's Context and return the Context the
// run continues with. Keys are open-ended; values are restricted to the
// kinds a Value can hold.
type Context map[string]Value

// NewContext returns an empty Context.
func NewContext() Context {
	return make(Context)
}

// ContextFromMap converts plain Go data (typically decoded JSON) into a
// Context.
func ContextFromMap(m map[string]any) (Context, error) {
	c := make(Context, len(m))
	for k, raw := range m {
		v, err := FromAny(raw)
		if err != nil {
			return nil, fmt.Errorf("context key %q: %w", k, err)
		}
		c[k] = v
	}
	return c, nil
}

// Clone returns a deep copy. Cloning a nil Context yields an empty one.
func (c Context) Clone() Context {
	out := make(Context, len(c))
	for k, v := range c {
		out[k] = v.Clone()
	}
	return out
}

// Get returns the value stored under key.
func (c Context) Get(key string) (Value, bool) {
	v, ok := c[key]
	return v, ok
}

// Set stores v under key, replacing any previous value.
func (c Context) Set(key string, v Value) {
	c[key] = v
}

// Int reads an integer, falling back to def when the key is absent or not
// numeric. Float values are truncated.
func (c Context) Int(key string, def int64) int64 {
	v, ok := c[key]
	if !ok {
		return def
	}
	if i, ok := v.AsInt(); ok {
		return i
	}
	if f, ok := v.AsFloat(); ok {
		return int64(f)
	}
	return def
}

// Float reads a number, falling back to def when the key is absent or not
// numeric.
func (c Context) Float(key string, def float64) float64 {
	if f, ok := c[key].AsFloat(); ok {
		return f
	}
	return def
}

// Str reads a string, falling back to def.
func (c Context) Str(key string, def string) string {
	if s, ok := c[key].AsString(); ok {
		return s
	}
	return def
}

// StringList reads a list and returns the string items it holds. Missing
// keys and non-list values yield an empty slice.
func (c Context) StringList(key string) []string {
	items, ok := c[key].AsList()
	if !ok {
		return []string{}
	}
	out := make([]string, 0, len(items))
	for _, item := range items {
		if s, ok := item.AsString(); ok {
			out = append(out, s)
		}
	}
	return out
}

// Equal reports deep equality of two contexts.
func (c Context) Equal(o Context) bool {
	return maps.EqualFunc(c, o, Value.Equal)
}

package graph

import "maps"

// NodeConfig declares a single step: the tool it runs and how the next node
// is chosen from the context that tool produces.
//
// When RouteKey and Next are both set, the value stored under RouteKey is
// rendered as text and looked up in Next. DefaultNext is the fallback; an
// empty DefaultNext with no matching outcome ends the run.
type NodeConfig struct {
	Name        string            `json:"name" yaml:"name"`
	Tool        string            `json:"tool" yaml:"tool"`
	RouteKey    string            `json:"route_key,omitempty" yaml:"route_key,omitempty"`
	Next        map[string]string `json:"next,omitempty" yaml:"next,omitempty"`
	DefaultNext string            `json:"default_next,omitempty" yaml:"default_next,omitempty"`
}

// Routed reports whether the node selects its successor by outcome.
func (n NodeConfig) Routed() bool {
	return n.RouteKey != "" && len(n.Next) > 0
}

// Outcome returns the node mapped to outcome in Next.
func (n NodeConfig) Outcome(outcome string) (string, bool) {
	target, ok := n.Next[outcome]
	return target, ok
}

// Clone returns a copy that shares no map with n.
func (n NodeConfig) Clone() NodeConfig {
	n.Next = maps.Clone(n.Next)
	return n
}

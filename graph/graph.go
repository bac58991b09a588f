package graph

import (
	"encoding/json"
	"errors"
	"maps"
	"slices"
)

// GraphConfig is the declarative form of a graph, as read from JSON, YAML or
// HCL and as accepted by the HTTP API.
type GraphConfig struct {
	ID        string                `json:"id" yaml:"id"`
	StartNode string                `json:"start_node" yaml:"start_node"`
	Nodes     map[string]NodeConfig `json:"nodes" yaml:"nodes"`
}

// Clone returns a deep copy of the configuration.
func (c GraphConfig) Clone() GraphConfig {
	nodes := make(map[string]NodeConfig, len(c.Nodes))
	for key, node := range c.Nodes {
		nodes[key] = node.Clone()
	}
	c.Nodes = nodes
	return c
}

// Graph is a validated, immutable graph. It is safe to share across
// goroutines and runs.
type Graph struct {
	id        string
	startNode string
	nodes     map[string]NodeConfig
}

// New validates cfg and builds a Graph from a private copy of it.
//
// Only the start node is checked here. Routing targets are resolved when a
// run takes them (see ValidateRoutes for a static check) and tools when a
// node executes. Nodes are addressed by key; a node without a name takes
// its key, and a declared name is what the execution log records.
func New(cfg GraphConfig) (*Graph, error) {
	cfg = cfg.Clone()

	for key, node := range cfg.Nodes {
		if node.Name == "" {
			node.Name = key
			cfg.Nodes[key] = node
		}
	}

	if _, exists := cfg.Nodes[cfg.StartNode]; !exists {
		return nil, &GraphIntegrityError{
			GraphID: cfg.ID,
			Target:  cfg.StartNode,
			Reason:  ReasonStartNotFound,
		}
	}

	return &Graph{
		id:        cfg.ID,
		startNode: cfg.StartNode,
		nodes:     cfg.Nodes,
	}, nil
}

// ID returns the graph identifier.
func (g *Graph) ID() string {
	return g.id
}

// StartNode returns the name of the node every run begins at.
func (g *Graph) StartNode() string {
	return g.startNode
}

// Node returns the configuration of the named node.
func (g *Graph) Node(name string) (NodeConfig, bool) {
	node, exists := g.nodes[name]
	if !exists {
		return NodeConfig{}, false
	}
	return node.Clone(), true
}

// Has reports whether the graph contains the named node.
func (g *Graph) Has(name string) bool {
	_, exists := g.nodes[name]
	return exists
}

// NodeNames returns the node names in sorted order.
func (g *Graph) NodeNames() []string {
	return slices.Sorted(maps.Keys(g.nodes))
}

// Tools returns the distinct tool names the graph refers to, sorted.
func (g *Graph) Tools() []string {
	seen := make(map[string]struct{}, len(g.nodes))
	for _, node := range g.nodes {
		seen[node.Tool] = struct{}{}
	}
	return slices.Sorted(maps.Keys(seen))
}

// Config returns a deep copy of the graph's declarative form.
func (g *Graph) Config() GraphConfig {
	return GraphConfig{
		ID:        g.id,
		StartNode: g.startNode,
		Nodes:     g.nodes,
	}.Clone()
}

// ValidateRoutes checks every Next and DefaultNext target statically. The
// engine performs the same check lazily, when a route is actually taken, so
// calling this is optional. All violations are returned joined.
func (g *Graph) ValidateRoutes() error {
	var errs []error
	for _, name := range g.NodeNames() {
		node := g.nodes[name]
		for _, outcome := range slices.Sorted(maps.Keys(node.Next)) {
			target := node.Next[outcome]
			if !g.Has(target) {
				errs = append(errs, &GraphIntegrityError{
					GraphID: g.id,
					Node:    name,
					Target:  target,
					Reason:  ReasonNextNotFound,
				})
			}
		}
		if node.DefaultNext != "" && !g.Has(node.DefaultNext) {
			errs = append(errs, &GraphIntegrityError{
				GraphID: g.id,
				Node:    name,
				Target:  node.DefaultNext,
				Reason:  ReasonDefaultNextNotFound,
			})
		}
	}
	return errors.Join(errs...)
}

// MarshalJSON encodes the graph in its GraphConfig form.
func (g *Graph) MarshalJSON() ([]byte, error) {
	return json.Marshal(g.Config())
}

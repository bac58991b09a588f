// Package review is a sample code-review pipeline built from naive static
// checks. It ships the tools and the code_review_v1 graph that loops through
// an improvement round until the quality score passes the threshold:
//
//	extract -> complexity -> issues -> suggest -> decide
//	decide --continue--> improve -> suggest
//	decide --finish----> end
package review

import (
	_ "embed"
	"fmt"

	"github.com/tailored-agentic-units/flowgraph/graph"
	"github.com/tailored-agentic-units/flowgraph/tools"
)

// GraphID identifies the default review graph.
const GraphID = "code_review_v1"

//go:embed default.hcl
var defaultGraph []byte

// DefaultGraph returns the code_review_v1 graph.
func DefaultGraph() (*graph.Graph, error) {
	g, err := graph.Parse(defaultGraph, graph.FormatHCL)
	if err != nil {
		return nil, fmt.Errorf("failed to load default review graph: %w", err)
	}
	return g, nil
}

// Register adds the review tools to reg.
func Register(reg *tools.Registry) error {
	for name, tool := range Tools() {
		if err := reg.Register(name, tool); err != nil {
			return fmt.Errorf("failed to register review tool: %w", err)
		}
	}
	return nil
}

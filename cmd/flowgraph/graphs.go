package main

import (
	"github.com/tailored-agentic-units/flowgraph/graph"
	"github.com/tailored-agentic-units/flowgraph/review"
)

// loadGraph reads a graph file, or returns the review graph when path is
// empty.
func loadGraph(path string) (*graph.Graph, error) {
	if path == "" {
		return review.DefaultGraph()
	}
	return graph.LoadFile(path)
}

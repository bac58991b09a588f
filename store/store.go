// Package store keeps graphs and runs for the HTTP API and the CLI.
// Implementations must be safe for concurrent use and must never hand out
// values the caller could use to mutate stored runs. Stores only create,
// replace and read; nothing is ever removed.
package store

import (
	"context"
	"errors"

	"github.com/tailored-agentic-units/flowgraph/graph"
	"github.com/tailored-agentic-units/flowgraph/state"
)

// Sentinel errors for stores.
var (
	ErrNotFound      = errors.New("not found")
	ErrAlreadyExists = errors.New("already exists")
	ErrEmptyID       = errors.New("id is empty")
)

// GraphStore persists graphs by id.
type GraphStore interface {
	// CreateGraph stores g under g.ID(). Returns ErrAlreadyExists if the id
	// is taken.
	CreateGraph(ctx context.Context, g *graph.Graph) error
	// GetGraph returns the graph or ErrNotFound.
	GetGraph(ctx context.Context, id string) (*graph.Graph, error)
	// ListGraphs returns stored graph ids, sorted.
	ListGraphs(ctx context.Context) ([]string, error)
}

// RunStore persists runs by id.
type RunStore interface {
	// SaveRun stores a copy of run, replacing any run with the same id.
	SaveRun(ctx context.Context, run *state.RunState) error
	// GetRun returns a copy of the stored run or ErrNotFound.
	GetRun(ctx context.Context, id string) (*state.RunState, error)
	// ListRuns returns stored run ids, sorted.
	ListRuns(ctx context.Context) ([]string, error)
}

// Store combines graph and run storage.
type Store interface {
	GraphStore
	RunStore
}

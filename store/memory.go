package store

import (
	"context"
	"fmt"
	"iter"
	"maps"
	"slices"
	"sync"

	"github.com/tailored-agentic-units/flowgraph/graph"
	"github.com/tailored-agentic-units/flowgraph/state"
)

// Memory is an in-process Store. Contents are lost when the process exits.
type Memory struct {
	graphs map[string]*graph.Graph
	runs   map[string]*state.RunState
	mu     sync.RWMutex
}

// NewMemory creates an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{
		graphs: make(map[string]*graph.Graph),
		runs:   make(map[string]*state.RunState),
	}
}

func (m *Memory) CreateGraph(_ context.Context, g *graph.Graph) error {
	if g.ID() == "" {
		return fmt.Errorf("graph: %w", ErrEmptyID)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.graphs[g.ID()]; exists {
		return fmt.Errorf("graph %s: %w", g.ID(), ErrAlreadyExists)
	}
	m.graphs[g.ID()] = g
	return nil
}

func (m *Memory) GetGraph(_ context.Context, id string) (*graph.Graph, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	g, exists := m.graphs[id]
	if !exists {
		return nil, fmt.Errorf("graph %s: %w", id, ErrNotFound)
	}
	return g, nil
}

func (m *Memory) ListGraphs(context.Context) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return sortedIDs(maps.Keys(m.graphs)), nil
}

func (m *Memory) SaveRun(_ context.Context, run *state.RunState) error {
	if run.ID == "" {
		return fmt.Errorf("run: %w", ErrEmptyID)
	}

	stored := run.Clone()

	m.mu.Lock()
	defer m.mu.Unlock()

	m.runs[run.ID] = stored
	return nil
}

func (m *Memory) GetRun(_ context.Context, id string) (*state.RunState, error) {
	m.mu.RLock()
	run, exists := m.runs[id]
	m.mu.RUnlock()

	if !exists {
		return nil, fmt.Errorf("run %s: %w", id, ErrNotFound)
	}
	return run.Clone(), nil
}

func (m *Memory) ListRuns(context.Context) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return sortedIDs(maps.Keys(m.runs)), nil
}

// sortedIDs never returns nil, so empty listings encode as [].
func sortedIDs(keys iter.Seq[string]) []string {
	ids := slices.AppendSeq(make([]string, 0), keys)
	slices.Sort(ids)
	return ids
}

package store_test

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"
	"testing"

	"github.com/tailored-agentic-units/flowgraph/graph"
	"github.com/tailored-agentic-units/flowgraph/state"
	"github.com/tailored-agentic-units/flowgraph/store"
)

func testGraph(t *testing.T, id string) *graph.Graph {
	t.Helper()
	g, err := graph.New(graph.GraphConfig{
		ID:        id,
		StartNode: "a",
		Nodes:     map[string]graph.NodeConfig{"a": {Tool: "t"}},
	})
	if err != nil {
		t.Fatalf("graph.New() failed: %v", err)
	}
	return g
}

func TestMemory_Graphs(t *testing.T) {
	ctx := context.Background()
	s := store.NewMemory()

	if ids, err := s.ListGraphs(ctx); err != nil || ids == nil || len(ids) != 0 {
		t.Errorf("ListGraphs() on empty store = %#v, %v; want empty non-nil", ids, err)
	}
	if ids, err := s.ListRuns(ctx); err != nil || ids == nil || len(ids) != 0 {
		t.Errorf("ListRuns() on empty store = %#v, %v; want empty non-nil", ids, err)
	}

	if err := s.CreateGraph(ctx, testGraph(t, "b")); err != nil {
		t.Fatalf("CreateGraph(b) failed: %v", err)
	}
	if err := s.CreateGraph(ctx, testGraph(t, "a")); err != nil {
		t.Fatalf("CreateGraph(a) failed: %v", err)
	}

	if err := s.CreateGraph(ctx, testGraph(t, "a")); !errors.Is(err, store.ErrAlreadyExists) {
		t.Errorf("duplicate CreateGraph() error = %v, want %v", err, store.ErrAlreadyExists)
	}
	if err := s.CreateGraph(ctx, testGraph(t, "")); !errors.Is(err, store.ErrEmptyID) {
		t.Errorf("CreateGraph() with empty id error = %v, want %v", err, store.ErrEmptyID)
	}

	g, err := s.GetGraph(ctx, "a")
	if err != nil || g.ID() != "a" {
		t.Errorf("GetGraph(a) = %v, %v", g, err)
	}
	if _, err := s.GetGraph(ctx, "missing"); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("GetGraph(missing) error = %v, want %v", err, store.ErrNotFound)
	}

	ids, _ := s.ListGraphs(ctx)
	if !slices.Equal(ids, []string{"a", "b"}) {
		t.Errorf("ListGraphs() = %v, want [a b]", ids)
	}
}

func TestMemory_RunsAreCopied(t *testing.T) {
	ctx := context.Background()
	s := store.NewMemory()

	run := state.NewRun("run-1", "g", "a", nil)
	run.State.Set("k", state.Int(1))
	if err := s.SaveRun(ctx, run); err != nil {
		t.Fatalf("SaveRun() failed: %v", err)
	}

	run.State.Set("k", state.Int(2))
	run.Done = true

	got, err := s.GetRun(ctx, "run-1")
	if err != nil {
		t.Fatalf("GetRun() failed: %v", err)
	}
	if got.State.Int("k", 0) != 1 || got.Done {
		t.Errorf("stored run changed through caller's pointer: %+v", got)
	}

	got.State.Set("k", state.Int(3))
	again, _ := s.GetRun(ctx, "run-1")
	if again.State.Int("k", 0) != 1 {
		t.Error("GetRun() exposes the stored run")
	}

	if _, err := s.GetRun(ctx, "missing"); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("GetRun(missing) error = %v, want %v", err, store.ErrNotFound)
	}
	if err := s.SaveRun(ctx, &state.RunState{}); !errors.Is(err, store.ErrEmptyID) {
		t.Errorf("SaveRun() with empty id error = %v", err)
	}

	finished := state.NewRun("run-1", "g", "", nil)
	finished.Done = true
	if err := s.SaveRun(ctx, finished); err != nil {
		t.Fatalf("SaveRun() replacing run failed: %v", err)
	}
	if got, _ := s.GetRun(ctx, "run-1"); !got.Done {
		t.Error("SaveRun() did not replace the stored run")
	}
	if err := s.SaveRun(ctx, state.NewRun("run-0", "g", "a", nil)); err != nil {
		t.Fatalf("SaveRun(run-0) failed: %v", err)
	}
	if ids, _ := s.ListRuns(ctx); !slices.Equal(ids, []string{"run-0", "run-1"}) {
		t.Errorf("ListRuns() = %v, want [run-0 run-1]", ids)
	}
}

func TestMemory_Concurrent(t *testing.T) {
	ctx := context.Background()
	s := store.NewMemory()

	graphs := make([]*graph.Graph, 50)
	for i := range graphs {
		graphs[i] = testGraph(t, fmt.Sprintf("g-%02d", i))
	}

	var wg sync.WaitGroup
	for i := range 50 {
		wg.Add(2)
		go func() {
			defer wg.Done()
			run := state.NewRun(fmt.Sprintf("run-%02d", i), "g", "a", nil)
			if err := s.SaveRun(ctx, run); err != nil {
				t.Errorf("SaveRun() failed: %v", err)
			}
			s.GetRun(ctx, run.ID)
		}()
		go func() {
			defer wg.Done()
			s.ListRuns(ctx)
			if err := s.CreateGraph(ctx, graphs[i]); err != nil {
				t.Errorf("CreateGraph() failed: %v", err)
			}
		}()
	}
	wg.Wait()

	runIDs, _ := s.ListRuns(ctx)
	graphIDs, _ := s.ListGraphs(ctx)
	if len(runIDs) != 50 || len(graphIDs) != 50 {
		t.Errorf("runs = %d, graphs = %d, want 50 each", len(runIDs), len(graphIDs))
	}
}

func TestNew(t *testing.T) {
	cfg := store.DefaultConfig()
	s, err := store.New(&cfg)
	if err != nil {
		t.Fatalf("New() failed: %v", err)
	}
	if _, ok := s.(*store.Memory); !ok {
		t.Errorf("New() = %T, want *store.Memory", s)
	}

	override := store.Config{Backend: "badger"}
	cfg.Merge(&override)
	if _, err := store.New(&cfg); err == nil {
		t.Error("New() with unknown backend should fail")
	}
}

package state

// RunState is one execution instance of a graph.
//
// The engine is the only writer of CurrentNode, State, Done and Log; callers
// read. Once Done is true, CurrentNode is empty and Log no longer grows.
type RunState struct {
	ID          string        `json:"id"`
	GraphID     string        `json:"graph_id"`
	CurrentNode string        `json:"current_node,omitempty"`
	State       Context       `json:"state"`
	Done        bool          `json:"done"`
	Log         []RunLogEntry `json:"log"`
}

// RunLogEntry records a node execution and the context exactly as the
// node's tool left it.
type RunLogEntry struct {
	Node          string  `json:"node"`
	StateSnapshot Context `json:"state_snapshot"`
}

// NewRun creates a run positioned at startNode. The initial context is
// deep-copied so the caller keeps ownership of its map.
func NewRun(id, graphID, startNode string, initial Context) *RunState {
	return &RunState{
		ID:          id,
		GraphID:     graphID,
		CurrentNode: startNode,
		State:       initial.Clone(),
		Log:         []RunLogEntry{},
	}
}

// Clone returns a deep copy of the run, including every log snapshot.
func (r *RunState) Clone() *RunState {
	if r == nil {
		return nil
	}
	log := make([]RunLogEntry, len(r.Log))
	for i, entry := range r.Log {
		log[i] = RunLogEntry{
			Node:          entry.Node,
			StateSnapshot: entry.StateSnapshot.Clone(),
		}
	}
	return &RunState{
		ID:          r.ID,
		GraphID:     r.GraphID,
		CurrentNode: r.CurrentNode,
		State:       r.State.Clone(),
		Done:        r.Done,
		Log:         log,
	}
}

// Nodes returns the executed node names in order.
func (r *RunState) Nodes() []string {
	names := make([]string, len(r.Log))
	for i, entry := range r.Log {
		names[i] = entry.Node
	}
	return names
}

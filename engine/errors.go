package engine

import (
	"errors"
	"fmt"
)

// Sentinels matched by the typed step errors via errors.Is.
var (
	ErrUnknownTool     = errors.New("unknown tool")
	ErrNodeNotFound    = errors.New("node not found")
	ErrUnknownNextNode = errors.New("unknown next node")
	ErrToolFailed      = errors.New("tool failed")
)

// UnknownToolError reports a node whose tool is not registered. Nothing about
// the run has changed when it is returned.
type UnknownToolError struct {
	GraphID string
	Node    string
	Tool    string
	Err     error
}

func (e *UnknownToolError) Error() string {
	return fmt.Sprintf("graph %q node %q: unknown tool %q", e.GraphID, e.Node, e.Tool)
}

// Unwrap exposes both ErrUnknownTool and the resolver's error.
func (e *UnknownToolError) Unwrap() []error {
	return []error{ErrUnknownTool, e.Err}
}

// NodeNotFoundError reports a current node that is missing from the graph.
type NodeNotFoundError struct {
	GraphID string
	Node    string
}

func (e *NodeNotFoundError) Error() string {
	return fmt.Sprintf("graph %q: node %q not found", e.GraphID, e.Node)
}

func (e *NodeNotFoundError) Unwrap() error {
	return ErrNodeNotFound
}

// UnknownNextNodeError reports a routing target missing from the graph. By the
// time it is returned the step's log entry is written and the run's state
// holds the tool output; only the current node is left unchanged.
type UnknownNextNodeError struct {
	GraphID string
	From    string
	Next    string
}

func (e *UnknownNextNodeError) Error() string {
	return fmt.Sprintf("graph %q: next node %q from %q not found", e.GraphID, e.Next, e.From)
}

func (e *UnknownNextNodeError) Unwrap() error {
	return ErrUnknownNextNode
}

// ToolError wraps an error returned by a tool. The run is left as it was
// before the step.
type ToolError struct {
	Node string
	Tool string
	Err  error
}

func (e *ToolError) Error() string {
	return fmt.Sprintf("node %q: tool %q failed: %v", e.Node, e.Tool, e.Err)
}

func (e *ToolError) Unwrap() []error {
	return []error{ErrToolFailed, e.Err}
}

// ExecutionError is returned by Run when a step fails. Step is the 1-based
// number of the failing step within that call.
type ExecutionError struct {
	RunID string
	Node  string
	Step  int
	Err   error
}

func (e *ExecutionError) Error() string {
	return fmt.Sprintf("run %s: step %d at node %s failed: %v", e.RunID, e.Step, e.Node, e.Err)
}

func (e *ExecutionError) Unwrap() error {
	return e.Err
}

// errorKind names the failure for metrics and logs.
func errorKind(err error) string {
	switch {
	case errors.Is(err, ErrUnknownTool):
		return "unknown_tool"
	case errors.Is(err, ErrNodeNotFound):
		return "node_not_found"
	case errors.Is(err, ErrUnknownNextNode):
		return "unknown_next_node"
	case errors.Is(err, ErrToolFailed):
		return "tool_error"
	default:
		return "internal"
	}
}

package engine

import (
	"github.com/tailored-agentic-units/flowgraph/graph"
	"github.com/tailored-agentic-units/flowgraph/observability"
	"github.com/tailored-agentic-units/flowgraph/state"
)

type route struct {
	next    string
	via     string
	outcome string
}

// selectRoute picks a node's successor from the context its tool produced.
// An outcome found in Next wins, even when it maps to an empty name; a
// missing, null or unmapped outcome falls back to DefaultNext. An empty
// result means the run is finished.
func selectRoute(node graph.NodeConfig, c state.Context) route {
	var outcome string
	if node.Routed() {
		if v, ok := c.Get(node.RouteKey); ok && !v.IsNull() {
			outcome = v.String()
			if target, ok := node.Outcome(outcome); ok {
				return route{next: target, via: via(target, observability.ViaNext), outcome: outcome}
			}
		}
	}
	return route{
		next:    node.DefaultNext,
		via:     via(node.DefaultNext, observability.ViaDefault),
		outcome: outcome,
	}
}

func via(target, how string) string {
	if target == "" {
		return observability.ViaTerminal
	}
	return how
}

// Package engine walks graphs one node at a time.
//
// Step runs the current node's tool on a copy of the run context, records
// the result in the run log, and follows the node's routing table to the
// next node. Run repeats Step until the run finishes or its step budget is
// spent:
//
//	eng := engine.New(tools.Default(), engine.WithObserver(observer))
//	run := state.NewRun(id, g.ID(), g.StartNode(), initial)
//	run, err := eng.Run(ctx, g, run, engine.DefaultMaxSteps)
//
// Graphs are not checked for cycles. A loop that never reaches a terminal
// node ends when the budget runs out, with termination_reason set to
// max_steps_reached in the final context.
package engine

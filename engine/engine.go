package engine

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/tailored-agentic-units/flowgraph/graph"
	"github.com/tailored-agentic-units/flowgraph/observability"
	"github.com/tailored-agentic-units/flowgraph/state"
	"github.com/tailored-agentic-units/flowgraph/tools"
)

// DefaultMaxSteps is the step budget used when a caller does not choose one.
const DefaultMaxSteps = 50

// Keys written into the context when a run is stopped by its budget.
const (
	TerminationReasonKey = "termination_reason"
	MaxStepsReached      = "max_steps_reached"
)

const tracerName = "github.com/tailored-agentic-units/flowgraph/engine"

// Engine executes runs over graphs. It holds no per-run state, so one Engine
// can drive any number of runs, each from a single goroutine.
type Engine struct {
	tools    tools.Resolver
	observer observability.Observer
	tracer   trace.Tracer
	maxSteps int
}

// Option configures an Engine.
type Option func(*Engine)

// WithObserver sets the observer that receives run and step events.
func WithObserver(observer observability.Observer) Option {
	return func(e *Engine) {
		if observer != nil {
			e.observer = observer
		}
	}
}

// WithTracer sets the tracer used for engine.Run and engine.Step spans.
func WithTracer(tracer trace.Tracer) Option {
	return func(e *Engine) {
		if tracer != nil {
			e.tracer = tracer
		}
	}
}

// WithMaxSteps sets the budget reported by MaxSteps. Values below zero are
// ignored.
func WithMaxSteps(n int) Option {
	return func(e *Engine) {
		if n >= 0 {
			e.maxSteps = n
		}
	}
}

// New creates an engine resolving tools through resolver.
func New(resolver tools.Resolver, opts ...Option) *Engine {
	e := &Engine{
		tools:    resolver,
		observer: observability.NoOpObserver{},
		tracer:   otel.Tracer(tracerName),
		maxSteps: DefaultMaxSteps,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// MaxSteps returns the engine's configured default budget.
func (e *Engine) MaxSteps() int {
	return e.maxSteps
}

// Step executes the run's current node and advances the run in place.
//
// A run that is done or has no current node is returned untouched. Node
// lookup and tool resolution failures leave the run unchanged, as does a
// tool error. Once the tool returns, its output is logged and becomes the
// run's state before the successor is validated, so an UnknownNextNodeError
// leaves a log entry and new state behind with the current node unchanged.
func (e *Engine) Step(ctx context.Context, g *graph.Graph, run *state.RunState) (*state.RunState, error) {
	if run.Done || run.CurrentNode == "" {
		return run, nil
	}

	stepNum := len(run.Log) + 1
	ctx, span := e.tracer.Start(ctx, "engine.Step", trace.WithAttributes(
		attribute.String("flowgraph.run_id", run.ID),
		attribute.String("flowgraph.graph_id", g.ID()),
		attribute.String("flowgraph.node", run.CurrentNode),
		attribute.Int("flowgraph.step", stepNum),
	))
	defer span.End()

	run, err := e.step(ctx, g, run, stepNum)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		e.emit(ctx, observability.EventStepFailed, observability.LevelError, g.ID(), map[string]any{
			observability.KeyRunID:     run.ID,
			observability.KeyNode:      run.CurrentNode,
			observability.KeyStep:      stepNum,
			observability.KeyError:     err.Error(),
			observability.KeyErrorKind: errorKind(err),
		})
	}
	return run, err
}

func (e *Engine) step(ctx context.Context, g *graph.Graph, run *state.RunState, stepNum int) (*state.RunState, error) {
	node, exists := g.Node(run.CurrentNode)
	if !exists {
		return run, &NodeNotFoundError{GraphID: g.ID(), Node: run.CurrentNode}
	}

	tool, err := e.tools.Resolve(node.Tool)
	if err != nil {
		return run, &UnknownToolError{GraphID: g.ID(), Node: node.Name, Tool: node.Tool, Err: err}
	}

	e.emit(ctx, observability.EventStepStart, observability.LevelVerbose, g.ID(), map[string]any{
		observability.KeyRunID: run.ID,
		observability.KeyNode:  node.Name,
		observability.KeyTool:  node.Tool,
		observability.KeyStep:  stepNum,
	})

	start := time.Now()
	out, err := tool.Transform(ctx, run.State.Clone())
	if err != nil {
		return run, &ToolError{Node: node.Name, Tool: node.Tool, Err: err}
	}
	if out == nil {
		out = state.NewContext()
	}

	run.Log = append(run.Log, state.RunLogEntry{
		Node:          node.Name,
		StateSnapshot: out.Clone(),
	})

	e.emit(ctx, observability.EventStepComplete, observability.LevelInfo, g.ID(), map[string]any{
		observability.KeyRunID:    run.ID,
		observability.KeyNode:     node.Name,
		observability.KeyTool:     node.Tool,
		observability.KeyStep:     stepNum,
		observability.KeyDuration: time.Since(start),
	})

	decision := selectRoute(node, out)
	run.State = out

	e.emit(ctx, observability.EventRouteSelect, observability.LevelVerbose, g.ID(), map[string]any{
		observability.KeyRunID:   run.ID,
		observability.KeyNode:    node.Name,
		observability.KeyOutcome: decision.outcome,
		observability.KeyNext:    decision.next,
		observability.KeyVia:     decision.via,
	})

	if decision.next == "" {
		run.Done = true
		run.CurrentNode = ""
		return run, nil
	}

	if !g.Has(decision.next) {
		return run, &UnknownNextNodeError{GraphID: g.ID(), From: node.Name, Next: decision.next}
	}

	run.CurrentNode = decision.next
	return run, nil
}

// Run steps the run until it is done or maxSteps steps have executed in this
// call. A negative budget is treated as zero.
//
// Exhausting the budget is not an error: the run is marked done, its current
// node cleared, and the context gains termination_reason=max_steps_reached.
// Step failures are returned as *ExecutionError together with the run as the
// failing step left it.
func (e *Engine) Run(ctx context.Context, g *graph.Graph, run *state.RunState, maxSteps int) (*state.RunState, error) {
	maxSteps = max(maxSteps, 0)

	ctx, span := e.tracer.Start(ctx, "engine.Run", trace.WithAttributes(
		attribute.String("flowgraph.run_id", run.ID),
		attribute.String("flowgraph.graph_id", g.ID()),
		attribute.Int("flowgraph.max_steps", maxSteps),
	))
	defer span.End()

	e.emit(ctx, observability.EventRunStart, observability.LevelInfo, g.ID(), map[string]any{
		observability.KeyRunID:    run.ID,
		observability.KeyGraphID:  g.ID(),
		observability.KeyNode:     run.CurrentNode,
		observability.KeyMaxSteps: maxSteps,
	})

	start := time.Now()
	steps := 0
	for !run.Done && steps < maxSteps {
		node := run.CurrentNode
		steps++

		var err error
		if run, err = e.Step(ctx, g, run); err != nil {
			span.SetStatus(codes.Error, err.Error())
			e.complete(ctx, g, run, observability.StatusFailed, steps, start)
			return run, &ExecutionError{RunID: run.ID, Node: node, Step: steps, Err: err}
		}
	}

	status := observability.StatusCompleted
	if !run.Done {
		run.Done = true
		run.CurrentNode = ""
		if run.State == nil {
			run.State = state.NewContext()
		}
		run.State.Set(TerminationReasonKey, state.String(MaxStepsReached))
		status = observability.StatusBudgetExhausted

		e.emit(ctx, observability.EventBudgetExhausted, observability.LevelWarning, g.ID(), map[string]any{
			observability.KeyRunID:    run.ID,
			observability.KeyMaxSteps: maxSteps,
		})
	}

	span.SetAttributes(
		attribute.Int("flowgraph.steps", steps),
		attribute.String("flowgraph.status", status),
	)
	e.complete(ctx, g, run, status, steps, start)
	return run, nil
}

func (e *Engine) complete(ctx context.Context, g *graph.Graph, run *state.RunState, status string, steps int, start time.Time) {
	level := observability.LevelInfo
	if status == observability.StatusFailed {
		level = observability.LevelError
	}

	e.emit(ctx, observability.EventRunComplete, level, g.ID(), map[string]any{
		observability.KeyRunID:    run.ID,
		observability.KeyGraphID:  g.ID(),
		observability.KeyStatus:   status,
		observability.KeySteps:    steps,
		observability.KeyDuration: time.Since(start),
	})
}

func (e *Engine) emit(ctx context.Context, eventType observability.EventType, level observability.Level, source string, data map[string]any) {
	e.observer.OnEvent(ctx, observability.Event{
		Type:      eventType,
		Level:     level,
		Timestamp: time.Now(),
		Source:    source,
		Data:      data,
	})
}

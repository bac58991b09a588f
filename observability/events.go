package observability

// Engine event types.
const (
	EventRunStart        EventType = "run.start"
	EventRunComplete     EventType = "run.complete"
	EventBudgetExhausted EventType = "run.budget_exhausted"
	EventStepStart       EventType = "step.start"
	EventStepComplete    EventType = "step.complete"
	EventStepFailed      EventType = "step.failed"
	EventRouteSelect     EventType = "route.select"
)

// Event data keys.
const (
	KeyRunID     = "run_id"
	KeyGraphID   = "graph_id"
	KeyNode      = "node"
	KeyTool      = "tool"
	KeyStep      = "step"
	KeySteps     = "steps"
	KeyMaxSteps  = "max_steps"
	KeyNext      = "next"
	KeyOutcome   = "outcome"
	KeyVia       = "via"
	KeyStatus    = "status"
	KeyError     = "error"
	KeyErrorKind = "error_kind"
	KeyDuration  = "duration"
)

// Values of KeyStatus on EventRunComplete.
const (
	StatusCompleted       = "completed"
	StatusBudgetExhausted = "max_steps_reached"
	StatusFailed          = "failed"
)

// Values of KeyVia on EventRouteSelect.
const (
	ViaNext     = "next"
	ViaDefault  = "default_next"
	ViaTerminal = "terminal"
)

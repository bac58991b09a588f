// Package observability carries engine and server activity to logs, metrics
// and traces through a single Observer interface. Level values align with
// OpenTelemetry SeverityNumbers.
package observability

import (
	"context"
	"log/slog"
	"time"
)

// Level represents event severity aligned with OTel SeverityNumber ranges.
type Level int

const (
	LevelVerbose Level = 5  // OTel DEBUG (5-8), maps to slog.LevelDebug
	LevelInfo    Level = 9  // OTel INFO (9-12), maps to slog.LevelInfo
	LevelWarning Level = 13 // OTel WARN (13-16), maps to slog.LevelWarn
	LevelError   Level = 17 // OTel ERROR (17-20), maps to slog.LevelError
)

// String returns the OTel severity text for the level.
func (l Level) String() string {
	switch {
	case l <= 4:
		return "TRACE"
	case l <= 8:
		return "DEBUG"
	case l <= 12:
		return "INFO"
	case l <= 16:
		return "WARN"
	case l <= 20:
		return "ERROR"
	default:
		return "FATAL"
	}
}

// SlogLevel maps this level to the corresponding slog.Level for log emission.
func (l Level) SlogLevel() slog.Level {
	switch {
	case l <= 8:
		return slog.LevelDebug
	case l <= 12:
		return slog.LevelInfo
	case l <= 16:
		return slog.LevelWarn
	default:
		return slog.LevelError
	}
}

// EventType identifies the kind of event, e.g. "run.start" or "step.complete".
type EventType string

// Event is a single occurrence reported by the engine. Source is the graph id;
// Data holds the run id, node, tool and other event specific attributes
// under the Key* names.
type Event struct {
	Type      EventType
	Level     Level
	Timestamp time.Time
	Source    string
	Data      map[string]any
}

// Duration reads KeyDuration, set on step.complete and run.complete.
func (e Event) Duration() (time.Duration, bool) {
	d, ok := e.Data[KeyDuration].(time.Duration)
	return d, ok
}

// StringAttr reads a string attribute such as KeyRunID or KeyNode, or "" when
// absent.
func (e Event) StringAttr(key string) string {
	s, _ := e.Data[key].(string)
	return s
}

// Observer receives engine events. Implementations must not retain or mutate
// Data after OnEvent returns.
type Observer interface {
	OnEvent(ctx context.Context, event Event)
}

// NoOpObserver discards all events. It is the engine default and what Combine
// returns when nothing is left to forward to.
type NoOpObserver struct{}

func (NoOpObserver) OnEvent(context.Context, Event) {}

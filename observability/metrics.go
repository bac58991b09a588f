package observability

import (
	"context"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const metricsNamespace = "flowgraph"

// Metrics is an Observer that turns engine events into Prometheus series.
type Metrics struct {
	RunsTotal         *prometheus.CounterVec
	ActiveRuns        prometheus.Gauge
	StepsTotal        *prometheus.CounterVec
	StepFailuresTotal *prometheus.CounterVec
	StepDuration      *prometheus.HistogramVec
	RoutesTotal       *prometheus.CounterVec
}

// NewMetrics creates and registers the engine collectors on reg. Use a fresh
// prometheus.NewRegistry() in tests to keep series isolated.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		RunsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Subsystem: "engine",
				Name:      "runs_total",
				Help:      "Finished runs by graph and terminal status",
			},
			[]string{"graph_id", "status"},
		),
		ActiveRuns: factory.NewGauge(
			prometheus.GaugeOpts{
				Namespace: metricsNamespace,
				Subsystem: "engine",
				Name:      "active_runs",
				Help:      "Runs currently being driven",
			},
		),
		StepsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Subsystem: "engine",
				Name:      "steps_total",
				Help:      "Executed steps by tool",
			},
			[]string{"tool"},
		),
		StepFailuresTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Subsystem: "engine",
				Name:      "step_failures_total",
				Help:      "Failed steps by error kind",
			},
			[]string{"kind"},
		),
		StepDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: metricsNamespace,
				Subsystem: "engine",
				Name:      "step_duration_seconds",
				Help:      "Tool invocation time in seconds",
				Buckets:   []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5},
			},
			[]string{"tool"},
		),
		RoutesTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Subsystem: "engine",
				Name:      "routes_total",
				Help:      "Routing decisions by how the successor was chosen",
			},
			[]string{"via"},
		),
	}
}

func (m *Metrics) OnEvent(_ context.Context, event Event) {
	switch event.Type {
	case EventRunStart:
		m.ActiveRuns.Inc()
	case EventRunComplete:
		m.ActiveRuns.Dec()
		m.RunsTotal.WithLabelValues(event.StringAttr(KeyGraphID), event.StringAttr(KeyStatus)).Inc()
	case EventStepComplete:
		tool := event.StringAttr(KeyTool)
		m.StepsTotal.WithLabelValues(tool).Inc()
		if d, ok := event.Duration(); ok {
			m.StepDuration.WithLabelValues(tool).Observe(d.Seconds())
		}
	case EventStepFailed:
		m.StepFailuresTotal.WithLabelValues(event.StringAttr(KeyErrorKind)).Inc()
	case EventRouteSelect:
		m.RoutesTotal.WithLabelValues(event.StringAttr(KeyVia)).Inc()
	}
}

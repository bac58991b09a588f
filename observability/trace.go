package observability

import (
	"context"
	"fmt"
	"maps"
	"slices"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// SpanObserver records events on the span carried by the event context.
// Events outside a recording span are dropped.
type SpanObserver struct{}

func (SpanObserver) OnEvent(ctx context.Context, event Event) {
	span := trace.SpanFromContext(ctx)
	if !span.IsRecording() {
		return
	}

	span.AddEvent(string(event.Type), trace.WithAttributes(Attributes(event)...))

	if event.Type == EventStepFailed {
		span.SetStatus(codes.Error, event.StringAttr(KeyError))
	}
}

// Attributes converts event data to OpenTelemetry attributes in sorted key
// order. The source becomes "source"; durations are reported in
// milliseconds under "<key>_ms".
func Attributes(event Event) []attribute.KeyValue {
	attrs := make([]attribute.KeyValue, 0, len(event.Data)+1)
	if event.Source != "" {
		attrs = append(attrs, attribute.String("source", event.Source))
	}

	for _, k := range slices.Sorted(maps.Keys(event.Data)) {
		switch v := event.Data[k].(type) {
		case string:
			attrs = append(attrs, attribute.String(k, v))
		case bool:
			attrs = append(attrs, attribute.Bool(k, v))
		case int:
			attrs = append(attrs, attribute.Int(k, v))
		case int64:
			attrs = append(attrs, attribute.Int64(k, v))
		case float64:
			attrs = append(attrs, attribute.Float64(k, v))
		case time.Duration:
			attrs = append(attrs, attribute.Float64(k+"_ms", float64(v)/float64(time.Millisecond)))
		case []string:
			attrs = append(attrs, attribute.StringSlice(k, v))
		case error:
			attrs = append(attrs, attribute.String(k, v.Error()))
		default:
			attrs = append(attrs, attribute.String(k, fmt.Sprint(v)))
		}
	}
	return attrs
}

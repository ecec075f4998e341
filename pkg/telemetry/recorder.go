package telemetry

import (
	"context"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"
)

// Event describes one completed service operation.
type Event struct {
	Operation string
	Key       string
	Duration  time.Duration
	Err       error
	Fallback  bool
}

// Recorder emits one structured telemetry event per service call,
// success or failure. Fallback-served results are tagged so a masked
// failure is distinguishable from a real success.
type Recorder struct {
	log      *zap.Logger
	calls    metric.Int64Counter
	duration metric.Float64Histogram
}

// NewRecorder configures the service-call instruments.
func NewRecorder(provider metric.MeterProvider, log *zap.Logger) (*Recorder, error) {
	meter := provider.Meter("tilldesk")

	calls, err := meter.Int64Counter("tilldesk_service_calls_total")
	if err != nil {
		return nil, err
	}
	duration, err := meter.Float64Histogram("tilldesk_service_call_duration_ms")
	if err != nil {
		return nil, err
	}

	return &Recorder{
		log:      log.Named("telemetry"),
		calls:    calls,
		duration: duration,
	}, nil
}

// Record is fire-and-forget; it never returns an error to the caller.
func (r *Recorder) Record(ctx context.Context, event Event) {
	if r == nil {
		return
	}

	outcome := "success"
	if event.Err != nil {
		outcome = "error"
	} else if event.Fallback {
		outcome = "fallback"
	}

	attrs := []attribute.KeyValue{
		attribute.String("operation", event.Operation),
		attribute.String("outcome", outcome),
	}
	r.calls.Add(ctx, 1, metric.WithAttributes(attrs...))
	r.duration.Record(ctx, float64(event.Duration.Milliseconds()), metric.WithAttributes(attrs...))

	fields := []zap.Field{
		zap.String("operation", event.Operation),
		zap.Int64("duration_ms", event.Duration.Milliseconds()),
		zap.Bool("fallback", event.Fallback),
	}
	if key := strings.TrimSpace(event.Key); key != "" {
		fields = append(fields, zap.String("key", key))
	}
	if event.Err != nil {
		fields = append(fields, zap.String("error", event.Err.Error()))
		r.log.Warn("service call failed", fields...)
		return
	}
	r.log.Debug("service call", fields...)
}

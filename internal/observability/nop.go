package observability

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

type nopLogger struct{}

func (nopLogger) With(_ ...Field) Logger { return nopLogger{} }
func (nopLogger) Debug(string, ...Field) {}
func (nopLogger) Info(string, ...Field)  {}
func (nopLogger) Warn(string, ...Field)  {}
func (nopLogger) Error(string, ...Field) {}

// NopLogger returns a logger that discards all logs. Useful as a safe fallback.
func NopLogger() Logger { return nopLogger{} }

type nopTracer struct{}

func (nopTracer) Start(ctx context.Context, _ string, _ ...attribute.KeyValue) (context.Context, trace.Span) {
	return ctx, trace.SpanFromContext(ctx)
}

// NopTracer returns a tracer that simply propagates the existing span from the context.
func NopTracer() Tracer { return nopTracer{} }

type nopCounter struct{}

func (nopCounter) Add(float64, ...Label) {}

func NopCounter() Counter { return nopCounter{} }

type nopHistogram struct{}

func (nopHistogram) Observe(float64, ...Label) {}

func NopHistogram() Histogram { return nopHistogram{} }

type nopTelemetry struct{}

func (nopTelemetry) Tracer() Tracer                { return NopTracer() }
func (nopTelemetry) Logger() Logger                { return NopLogger() }
func (nopTelemetry) Counter(MetricKey) Counter     { return NopCounter() }
func (nopTelemetry) Histogram(MetricKey) Histogram { return NopHistogram() }

// NopTelemetry returns a Telemetry that records nothing. Used in tests and as
// a fallback when wiring is incomplete.
func NopTelemetry() Telemetry { return nopTelemetry{} }

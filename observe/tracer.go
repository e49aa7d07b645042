package observe

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	tracenoop "go.opentelemetry.io/otel/trace/noop"
)

// ServiceMeta identifies a platform service for telemetry purposes.
type ServiceMeta struct {
	Name     string // registered service name (required), e.g. "okx_trading"
	Platform string // external platform identity, e.g. "okx", "discord" (optional)
	Version  string // service version (optional)
}

// SpanName returns the deterministic span name for a call made by this
// service. Format: platform.call.<name>.<operation>
func (m ServiceMeta) SpanName(operation string) string {
	return "platform.call." + m.Name + "." + operation
}

// Validate checks that the metadata carries enough identity to label
// telemetry with.
func (m ServiceMeta) Validate() error {
	if m.Name == "" {
		return ErrMissingMetaName
	}
	return nil
}

// ID returns the fully qualified service identifier.
func (m ServiceMeta) ID() string {
	if m.Platform != "" {
		return m.Platform + "." + m.Name
	}
	return m.Name
}

// Tracer wraps OpenTelemetry tracing with call-specific span management.
//
// Contract:
// - Concurrency: implementations must be safe for concurrent use.
// - Context: StartSpan must honor cancellation/deadlines.
// - Errors: EndSpan must be best-effort and must not panic.
type Tracer interface {
	// StartSpan starts a new span for an outbound platform call.
	StartSpan(ctx context.Context, meta ServiceMeta, operation string) (context.Context, trace.Span)

	// EndSpan ends the span, recording any error.
	EndSpan(span trace.Span, err error)
}

// tracerImpl is the concrete implementation of Tracer.
type tracerImpl struct {
	tracer trace.Tracer
}

// newTracer creates a new Tracer wrapping the given OpenTelemetry tracer.
func newTracer(t trace.Tracer) Tracer {
	return &tracerImpl{tracer: t}
}

// StartSpan starts a new span with service metadata as attributes.
// Outbound platform calls are client spans.
func (t *tracerImpl) StartSpan(ctx context.Context, meta ServiceMeta, operation string) (context.Context, trace.Span) {
	attrs := []attribute.KeyValue{
		attribute.String("service.id", meta.ID()),
		attribute.String("service.name", meta.Name),
		attribute.String("call.operation", operation),
		attribute.Bool("call.error", false), // Will be updated in EndSpan if error
	}

	if meta.Platform != "" {
		attrs = append(attrs, attribute.String("service.platform", meta.Platform))
	}
	if meta.Version != "" {
		attrs = append(attrs, attribute.String("service.version", meta.Version))
	}

	ctx, span := t.tracer.Start(ctx, meta.SpanName(operation),
		trace.WithAttributes(attrs...),
		trace.WithSpanKind(trace.SpanKindClient),
	)

	return ctx, span
}

// EndSpan ends the span and records the error status if present.
func (t *tracerImpl) EndSpan(span trace.Span, err error) {
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		span.SetAttributes(attribute.Bool("call.error", true))
		span.RecordError(err)
	} else {
		span.SetStatus(codes.Ok, "")
	}
	span.End()
}

// noopTracer is a tracer that does nothing.
type noopTracer struct {
	noop trace.Tracer
}

// newNoopTracer creates a no-op tracer.
func newNoopTracer() Tracer {
	return &noopTracer{
		noop: tracenoop.NewTracerProvider().Tracer("noop"),
	}
}

func (t *noopTracer) StartSpan(ctx context.Context, meta ServiceMeta, operation string) (context.Context, trace.Span) {
	return t.noop.Start(ctx, meta.SpanName(operation))
}

func (t *noopTracer) EndSpan(span trace.Span, err error) {
	span.End()
}

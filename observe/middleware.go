package observe

import (
	"context"
	"time"
)

// CallFunc is the signature for outbound platform call functions.
// This is the standard function signature that Middleware wraps.
type CallFunc func(ctx context.Context) error

// Middleware wraps outbound platform calls with observability
// (tracing, metrics, logging).
//
// Contract:
//   - Concurrency: Wrap() returns a thread-safe CallFunc.
//   - Context: Propagates context through tracing spans.
//   - Errors: Errors from the wrapped function are recorded and propagated unchanged.
type Middleware struct {
	tracer  Tracer
	metrics Metrics
	logger  Logger
}

// NewMiddleware creates a new Middleware with the given observability components.
func NewMiddleware(tracer Tracer, metrics Metrics, logger Logger) *Middleware {
	return &Middleware{
		tracer:  tracer,
		metrics: metrics,
		logger:  logger,
	}
}

// Wrap wraps a platform call with tracing, metrics, and logging.
func (m *Middleware) Wrap(meta ServiceMeta, operation string, fn CallFunc) CallFunc {
	return func(ctx context.Context) error {
		// Start span
		ctx, span := m.tracer.StartSpan(ctx, meta, operation)

		start := time.Now()
		err := fn(ctx)
		duration := time.Since(start)

		// End span (records error status if err != nil)
		m.tracer.EndSpan(span, err)

		// Record metrics
		m.metrics.RecordCall(ctx, meta, operation, duration, err)

		// Log the call
		svcLogger := m.logger.WithService(meta)
		fields := []Field{
			{Key: "operation", Value: operation},
			{Key: "duration_ms", Value: float64(duration.Milliseconds())},
		}

		if err != nil {
			fields = append(fields, Field{Key: "error", Value: err.Error()})
			svcLogger.Error(ctx, "platform call failed", fields...)
		} else {
			svcLogger.Debug(ctx, "platform call completed", fields...)
		}

		return err
	}
}

// MiddlewareFromObserver creates a Middleware from an Observer.
// This is a convenience function for common use cases.
func MiddlewareFromObserver(obs Observer) (*Middleware, error) {
	if obs == nil {
		return nil, ErrNilObserver
	}

	tracer := newTracer(obs.Tracer())

	metrics, err := NewMetrics(obs.Meter())
	if err != nil {
		return nil, err
	}

	return NewMiddleware(tracer, metrics, obs.Logger()), nil
}

// NewTracerFromObserver creates a Tracer from an Observer.
func NewTracerFromObserver(obs Observer) (Tracer, error) {
	if obs == nil {
		return nil, ErrNilObserver
	}
	return newTracer(obs.Tracer()), nil
}

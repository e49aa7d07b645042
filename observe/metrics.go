package observe

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/jonwraymond/tradeops/traderr"
)

// Metrics records telemetry for outbound platform calls and health checks.
//
// Contract:
// - Concurrency: implementations must be safe for concurrent use.
// - Context: must honor cancellation/deadlines and return quickly.
// - Errors: implementations must not panic.
type Metrics interface {
	// RecordCall records one outbound platform call with duration and
	// error status. Failed calls are labeled with their classified kind.
	RecordCall(ctx context.Context, meta ServiceMeta, operation string, duration time.Duration, err error)

	// RecordRetry records one retry of an outbound platform call.
	RecordRetry(ctx context.Context, meta ServiceMeta, operation string, attempt int)

	// RecordCheck records one health check run for a component.
	RecordCheck(ctx context.Context, component string, duration time.Duration, status string)
}

// metricsImpl is the concrete implementation of Metrics.
type metricsImpl struct {
	meter        metric.Meter
	callCount    metric.Int64Counter
	errorCount   metric.Int64Counter
	retryCount   metric.Int64Counter
	durationHist metric.Float64Histogram
	checkHist    metric.Float64Histogram
}

// NewMetrics creates a Metrics instance recording through the given meter.
func NewMetrics(meter metric.Meter) (Metrics, error) {
	callCount, err := meter.Int64Counter(
		"platform.call.total",
		metric.WithDescription("Total number of outbound platform calls"),
		metric.WithUnit("{call}"),
	)
	if err != nil {
		return nil, err
	}

	errorCount, err := meter.Int64Counter(
		"platform.call.errors",
		metric.WithDescription("Total number of failed platform calls by classified kind"),
		metric.WithUnit("{error}"),
	)
	if err != nil {
		return nil, err
	}

	retryCount, err := meter.Int64Counter(
		"platform.call.retries",
		metric.WithDescription("Total number of platform call retries"),
		metric.WithUnit("{retry}"),
	)
	if err != nil {
		return nil, err
	}

	durationHist, err := meter.Float64Histogram(
		"platform.call.duration_ms",
		metric.WithDescription("Platform call duration in milliseconds"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return nil, err
	}

	checkHist, err := meter.Float64Histogram(
		"health.check.duration_ms",
		metric.WithDescription("Health check duration in milliseconds"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return nil, err
	}

	return &metricsImpl{
		meter:        meter,
		callCount:    callCount,
		errorCount:   errorCount,
		retryCount:   retryCount,
		durationHist: durationHist,
		checkHist:    checkHist,
	}, nil
}

func (m *metricsImpl) callAttrs(meta ServiceMeta, operation string) []attribute.KeyValue {
	attrs := []attribute.KeyValue{
		attribute.String("service.name", meta.Name),
		attribute.String("call.operation", operation),
	}
	if meta.Platform != "" {
		attrs = append(attrs, attribute.String("service.platform", meta.Platform))
	}
	return attrs
}

// RecordCall records metrics for one outbound platform call.
func (m *metricsImpl) RecordCall(ctx context.Context, meta ServiceMeta, operation string, duration time.Duration, err error) {
	attrs := m.callAttrs(meta, operation)
	opt := metric.WithAttributes(attrs...)

	m.callCount.Add(ctx, 1, opt)

	if err != nil {
		errAttrs := append(attrs, attribute.String("error.kind", traderr.KindOf(err).String()))
		m.errorCount.Add(ctx, 1, metric.WithAttributes(errAttrs...))
	}

	m.durationHist.Record(ctx, float64(duration.Milliseconds()), opt)
}

// RecordRetry records one retry attempt.
func (m *metricsImpl) RecordRetry(ctx context.Context, meta ServiceMeta, operation string, attempt int) {
	attrs := append(m.callAttrs(meta, operation), attribute.Int("call.attempt", attempt))
	m.retryCount.Add(ctx, 1, metric.WithAttributes(attrs...))
}

// RecordCheck records one health check run.
func (m *metricsImpl) RecordCheck(ctx context.Context, component string, duration time.Duration, status string) {
	m.checkHist.Record(ctx, float64(duration.Milliseconds()), metric.WithAttributes(
		attribute.String("health.component", component),
		attribute.String("health.status", status),
	))
}

// NoopMetrics returns a Metrics implementation that does nothing.
func NoopMetrics() Metrics {
	return &noopMetrics{}
}

// noopMetrics is a metrics implementation that does nothing.
type noopMetrics struct{}

func (m *noopMetrics) RecordCall(ctx context.Context, meta ServiceMeta, operation string, duration time.Duration, err error) {
}

func (m *noopMetrics) RecordRetry(ctx context.Context, meta ServiceMeta, operation string, attempt int) {
}

func (m *noopMetrics) RecordCheck(ctx context.Context, component string, duration time.Duration, status string) {
}

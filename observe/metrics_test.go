package observe

import (
	"context"
	"errors"
	"testing"
	"time"

	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"

	"github.com/jonwraymond/tradeops/traderr"
)

func newTestMeter(t *testing.T) (*sdkmetric.ManualReader, Metrics) {
	t.Helper()

	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	t.Cleanup(func() { _ = mp.Shutdown(context.Background()) })

	m, err := NewMetrics(mp.Meter("test"))
	if err != nil {
		t.Fatalf("NewMetrics() error = %v", err)
	}
	return reader, m
}

func collect(t *testing.T, reader *sdkmetric.ManualReader) map[string]metricdata.Metrics {
	t.Helper()

	var rm metricdata.ResourceMetrics
	if err := reader.Collect(context.Background(), &rm); err != nil {
		t.Fatalf("Collect() error = %v", err)
	}

	out := make(map[string]metricdata.Metrics)
	for _, scope := range rm.ScopeMetrics {
		for _, m := range scope.Metrics {
			out[m.Name] = m
		}
	}
	return out
}

func TestMetrics_RecordCall_Success(t *testing.T) {
	reader, m := newTestMeter(t)

	meta := ServiceMeta{Name: "okx_trading", Platform: "okx"}
	m.RecordCall(context.Background(), meta, "place_order", 25*time.Millisecond, nil)

	metrics := collect(t, reader)

	total, ok := metrics["platform.call.total"]
	if !ok {
		t.Fatalf("platform.call.total not recorded")
	}
	sum, ok := total.Data.(metricdata.Sum[int64])
	if !ok || len(sum.DataPoints) != 1 || sum.DataPoints[0].Value != 1 {
		t.Errorf("platform.call.total = %+v, want one data point of 1", total.Data)
	}

	if _, ok := metrics["platform.call.errors"]; ok {
		t.Errorf("platform.call.errors recorded for a successful call")
	}
	if _, ok := metrics["platform.call.duration_ms"]; !ok {
		t.Errorf("platform.call.duration_ms not recorded")
	}
}

func TestMetrics_RecordCall_ErrorLabeledWithKind(t *testing.T) {
	reader, m := newTestMeter(t)

	meta := ServiceMeta{Name: "okx_trading", Platform: "okx"}
	callErr := traderr.New(traderr.KindRateLimited, "slow down")
	m.RecordCall(context.Background(), meta, "place_order", 5*time.Millisecond, callErr)

	metrics := collect(t, reader)

	errMetric, ok := metrics["platform.call.errors"]
	if !ok {
		t.Fatalf("platform.call.errors not recorded")
	}
	sum, ok := errMetric.Data.(metricdata.Sum[int64])
	if !ok || len(sum.DataPoints) != 1 {
		t.Fatalf("platform.call.errors = %+v", errMetric.Data)
	}

	found := false
	for _, attr := range sum.DataPoints[0].Attributes.ToSlice() {
		if string(attr.Key) == "error.kind" && attr.Value.AsString() == "rate_limited" {
			found = true
		}
	}
	if !found {
		t.Errorf("error.kind=rate_limited attribute missing: %v", sum.DataPoints[0].Attributes.ToSlice())
	}
}

func TestMetrics_RecordCall_UnclassifiedError(t *testing.T) {
	reader, m := newTestMeter(t)

	m.RecordCall(context.Background(), ServiceMeta{Name: "svc"}, "op", time.Millisecond, errors.New("plain"))

	metrics := collect(t, reader)
	errMetric, ok := metrics["platform.call.errors"]
	if !ok {
		t.Fatalf("platform.call.errors not recorded")
	}
	sum := errMetric.Data.(metricdata.Sum[int64])
	found := false
	for _, attr := range sum.DataPoints[0].Attributes.ToSlice() {
		if string(attr.Key) == "error.kind" && attr.Value.AsString() == "internal" {
			found = true
		}
	}
	if !found {
		t.Errorf("unclassified errors must be labeled internal")
	}
}

func TestMetrics_RecordRetry(t *testing.T) {
	reader, m := newTestMeter(t)

	meta := ServiceMeta{Name: "okx_trading"}
	m.RecordRetry(context.Background(), meta, "place_order", 1)
	m.RecordRetry(context.Background(), meta, "place_order", 2)

	metrics := collect(t, reader)
	retry, ok := metrics["platform.call.retries"]
	if !ok {
		t.Fatalf("platform.call.retries not recorded")
	}
	sum := retry.Data.(metricdata.Sum[int64])
	var total int64
	for _, dp := range sum.DataPoints {
		total += dp.Value
	}
	if total != 2 {
		t.Errorf("retries total = %d, want 2", total)
	}
}

func TestMetrics_RecordCheck(t *testing.T) {
	reader, m := newTestMeter(t)

	m.RecordCheck(context.Background(), "database", 12*time.Millisecond, "healthy")

	metrics := collect(t, reader)
	hist, ok := metrics["health.check.duration_ms"]
	if !ok {
		t.Fatalf("health.check.duration_ms not recorded")
	}
	data, ok := hist.Data.(metricdata.Histogram[float64])
	if !ok || len(data.DataPoints) != 1 {
		t.Fatalf("health.check.duration_ms = %+v", hist.Data)
	}
}

func TestNoopMetrics(t *testing.T) {
	m := NoopMetrics()

	// Must not panic.
	m.RecordCall(context.Background(), ServiceMeta{}, "op", time.Second, errors.New("x"))
	m.RecordRetry(context.Background(), ServiceMeta{}, "op", 1)
	m.RecordCheck(context.Background(), "c", time.Second, "healthy")
}

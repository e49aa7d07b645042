package observe

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func newTestMiddleware(t *testing.T) (*tracetest.SpanRecorder, *bytes.Buffer, *Middleware) {
	t.Helper()

	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	t.Cleanup(func() { _ = tp.Shutdown(context.Background()) })

	var buf bytes.Buffer
	logger := NewLoggerWithWriter("debug", &buf)

	return recorder, &buf, NewMiddleware(newTracer(tp.Tracer("test")), NoopMetrics(), logger)
}

// TestMiddleware_WrapSuccess verifies span creation and debug logging on success.
func TestMiddleware_WrapSuccess(t *testing.T) {
	recorder, buf, mw := newTestMiddleware(t)

	meta := ServiceMeta{Name: "okx_market", Platform: "okx"}
	called := false
	fn := mw.Wrap(meta, "get_ticker", func(ctx context.Context) error {
		called = true
		return nil
	})

	if err := fn(context.Background()); err != nil {
		t.Fatalf("wrapped call error = %v", err)
	}
	if !called {
		t.Fatal("wrapped function was not invoked")
	}

	spans := recorder.Ended()
	if len(spans) != 1 {
		t.Fatalf("expected 1 span, got %d", len(spans))
	}
	if spans[0].Name() != "platform.call.okx_market.get_ticker" {
		t.Errorf("span name = %q", spans[0].Name())
	}

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("log output not JSON: %s", buf.String())
	}
	if entry["msg"] != "platform call completed" {
		t.Errorf("msg = %v", entry["msg"])
	}
	if entry["service.name"] != "okx_market" {
		t.Errorf("service.name = %v", entry["service.name"])
	}
}

// TestMiddleware_WrapError verifies the error is propagated unchanged and logged.
func TestMiddleware_WrapError(t *testing.T) {
	recorder, buf, mw := newTestMiddleware(t)

	callErr := errors.New("connection refused")
	fn := mw.Wrap(ServiceMeta{Name: "svc"}, "op", func(ctx context.Context) error {
		return callErr
	})

	err := fn(context.Background())
	if !errors.Is(err, callErr) {
		t.Fatalf("error = %v, want %v", err, callErr)
	}

	spans := recorder.Ended()
	if len(spans) != 1 {
		t.Fatalf("expected 1 span, got %d", len(spans))
	}

	if !strings.Contains(buf.String(), "platform call failed") {
		t.Errorf("failure log missing: %s", buf.String())
	}
	if !strings.Contains(buf.String(), "connection refused") {
		t.Errorf("error detail missing: %s", buf.String())
	}
}

// TestMiddleware_ContextPropagation verifies the span context reaches the call.
func TestMiddleware_ContextPropagation(t *testing.T) {
	_, _, mw := newTestMiddleware(t)

	type key struct{}
	parent := context.WithValue(context.Background(), key{}, "value")

	fn := mw.Wrap(ServiceMeta{Name: "svc"}, "op", func(ctx context.Context) error {
		if ctx.Value(key{}) != "value" {
			t.Error("parent context values lost")
		}
		return nil
	})

	_ = fn(parent)
}

// TestMiddlewareFromObserver verifies convenience construction.
func TestMiddlewareFromObserver(t *testing.T) {
	obs, err := NewObserver(context.Background(), Config{
		ServiceName: "test",
		Tracing:     TracingConfig{Enabled: true, Exporter: "none", SamplePct: 1.0},
		Metrics:     MetricsConfig{Enabled: true, Exporter: "none"},
		Logging:     LoggingConfig{Enabled: false},
	})
	if err != nil {
		t.Fatalf("NewObserver() error = %v", err)
	}
	t.Cleanup(func() { _ = obs.Shutdown(context.Background()) })

	mw, err := MiddlewareFromObserver(obs)
	if err != nil {
		t.Fatalf("MiddlewareFromObserver() error = %v", err)
	}

	fn := mw.Wrap(ServiceMeta{Name: "svc"}, "op", func(ctx context.Context) error { return nil })
	if err := fn(context.Background()); err != nil {
		t.Errorf("wrapped call error = %v", err)
	}
}

// TestMiddlewareFromObserver_Nil verifies nil observer rejection.
func TestMiddlewareFromObserver_Nil(t *testing.T) {
	if _, err := MiddlewareFromObserver(nil); !errors.Is(err, ErrNilObserver) {
		t.Errorf("error = %v, want ErrNilObserver", err)
	}
}

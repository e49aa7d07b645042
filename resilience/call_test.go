package resilience

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/jonwraymond/tradeops/observe"
	"github.com/jonwraymond/tradeops/traderr"
)

// retryRecorder records retry metrics for assertions.
type retryRecorder struct {
	mu       sync.Mutex
	attempts []int
}

func (r *retryRecorder) RecordCall(ctx context.Context, meta observe.ServiceMeta, operation string, duration time.Duration, err error) {
}

func (r *retryRecorder) RecordRetry(ctx context.Context, meta observe.ServiceMeta, operation string, attempt int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.attempts = append(r.attempts, attempt)
}

func (r *retryRecorder) RecordCheck(ctx context.Context, component string, duration time.Duration, status string) {
}

func testMeta() observe.ServiceMeta {
	return observe.ServiceMeta{Name: "okx_trading", Platform: "okx"}
}

func TestCaller_SuccessFirstAttempt(t *testing.T) {
	c := NewCaller(CallerConfig{})

	attempts := 0
	err := c.Run(context.Background(), testMeta(), "get_balance", StandardPolicy(), func(ctx context.Context) error {
		attempts++
		return nil
	})

	if err != nil {
		t.Errorf("Run() error = %v", err)
	}
	if attempts != 1 {
		t.Errorf("attempts = %d, want 1", attempts)
	}
}

func TestCaller_RetriesConnectionThenSucceeds(t *testing.T) {
	rec := &retryRecorder{}
	c := NewCaller(CallerConfig{Metrics: rec})

	policy := Policy{
		MaxAttempts:    3,
		BaseDelay:      20 * time.Millisecond,
		Exponential:    true,
		MaxDelay:       time.Second,
		RetryableKinds: []traderr.Kind{traderr.KindConnection},
	}

	attempts := 0
	start := time.Now()
	err := c.Run(context.Background(), testMeta(), "place_order", policy, func(ctx context.Context) error {
		attempts++
		if attempts <= 2 {
			return errors.New("connection refused")
		}
		return nil
	})
	elapsed := time.Since(start)

	if err != nil {
		t.Errorf("Run() error = %v", err)
	}
	if attempts != 3 {
		t.Errorf("attempts = %d, want 3", attempts)
	}
	// First retry waits BaseDelay, second waits 2*BaseDelay.
	if elapsed < 60*time.Millisecond {
		t.Errorf("elapsed = %v, want >= 60ms of backoff", elapsed)
	}
	if len(rec.attempts) != 2 {
		t.Errorf("recorded retries = %v, want 2 entries", rec.attempts)
	}
}

func TestCaller_ValidationNotRetried(t *testing.T) {
	c := NewCaller(CallerConfig{})

	attempts := 0
	err := c.Run(context.Background(), testMeta(), "place_order", StandardPolicy(), func(ctx context.Context) error {
		attempts++
		return errors.New("validation failed: size must be positive")
	})

	if attempts != 1 {
		t.Errorf("attempts = %d, want 1", attempts)
	}
	if !traderr.IsKind(err, traderr.KindValidation) {
		t.Errorf("Run() error = %v, want KindValidation", err)
	}
}

func TestCaller_FinalErrorClassifiedWithContext(t *testing.T) {
	c := NewCaller(CallerConfig{})

	policy := Policy{
		MaxAttempts:    2,
		BaseDelay:      time.Millisecond,
		RetryableKinds: []traderr.Kind{traderr.KindConnection},
	}

	raw := errors.New("connection reset by peer")
	err := c.Run(context.Background(), testMeta(), "get_positions", policy, func(ctx context.Context) error {
		return raw
	})

	var te *traderr.Error
	if !errors.As(err, &te) {
		t.Fatalf("Run() error = %v, want *traderr.Error", err)
	}
	if te.Kind != traderr.KindConnection {
		t.Errorf("Kind = %v, want KindConnection", te.Kind)
	}
	if te.Context.Service != "okx_trading" || te.Context.Operation != "get_positions" {
		t.Errorf("Context = %+v, want service and operation set", te.Context)
	}
	if !errors.Is(err, raw) {
		t.Error("classified error does not wrap the raw cause")
	}
}

func TestCaller_EmptyRetryableSetTriesOnce(t *testing.T) {
	c := NewCaller(CallerConfig{})

	attempts := 0
	err := c.Run(context.Background(), testMeta(), "op", Policy{MaxAttempts: 5}, func(ctx context.Context) error {
		attempts++
		return errors.New("connection refused")
	})

	if attempts != 1 {
		t.Errorf("attempts = %d, want 1", attempts)
	}
	if err == nil {
		t.Error("Run() error = nil, want classified error")
	}
}

func TestCaller_AlreadyClassifiedPassesThrough(t *testing.T) {
	c := NewCaller(CallerConfig{})

	classified := traderr.New(traderr.KindInsufficientFunds, "not enough USDT")
	err := c.Run(context.Background(), testMeta(), "place_order", StandardPolicy(), func(ctx context.Context) error {
		return classified
	})

	if !traderr.IsKind(err, traderr.KindInsufficientFunds) {
		t.Errorf("Run() error = %v, want KindInsufficientFunds", err)
	}
}

func TestCaller_ContextCancellationDuringBackoff(t *testing.T) {
	c := NewCaller(CallerConfig{})

	policy := Policy{
		MaxAttempts:    10,
		BaseDelay:      100 * time.Millisecond,
		RetryableKinds: []traderr.Kind{traderr.KindConnection},
	}

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(20 * time.Millisecond)
		cancel()
	}()

	err := c.Run(ctx, testMeta(), "op", policy, func(ctx context.Context) error {
		return errors.New("connection refused")
	})

	if !errors.Is(err, context.Canceled) {
		t.Errorf("Run() error = %v, want context.Canceled", err)
	}
}

func TestCaller_LogsRetryAndFinalFailure(t *testing.T) {
	var buf bytes.Buffer
	logger := observe.NewLoggerWithWriter("debug", &buf)
	c := NewCaller(CallerConfig{Logger: logger})

	policy := Policy{
		MaxAttempts:    2,
		BaseDelay:      time.Millisecond,
		RetryableKinds: []traderr.Kind{traderr.KindConnection},
	}

	_ = c.Run(context.Background(), testMeta(), "place_order", policy, func(ctx context.Context) error {
		return errors.New("network unreachable")
	})

	out := buf.String()
	if !strings.Contains(out, "platform call failed, retrying") {
		t.Error("missing retry warning in log output")
	}
	if !strings.Contains(out, `"level":"error"`) {
		t.Error("missing final error log entry")
	}
	if !strings.Contains(out, "okx_trading") {
		t.Error("log output missing service context")
	}
}

func TestCall_TypedResult(t *testing.T) {
	c := NewCaller(CallerConfig{})

	policy := Policy{
		MaxAttempts:    3,
		BaseDelay:      time.Millisecond,
		RetryableKinds: traderr.Transient(),
	}

	attempts := 0
	got, err := Call(context.Background(), c, testMeta(), "get_balance", policy, func(ctx context.Context) (float64, error) {
		attempts++
		if attempts == 1 {
			return 0, errors.New("connection refused")
		}
		return 1234.5, nil
	})

	if err != nil {
		t.Fatalf("Call() error = %v", err)
	}
	if got != 1234.5 {
		t.Errorf("Call() = %v, want 1234.5", got)
	}
}

func TestCall_TypedResult_ZeroOnFailure(t *testing.T) {
	c := NewCaller(CallerConfig{})

	got, err := Call(context.Background(), c, testMeta(), "get_balance", Policy{MaxAttempts: 1}, func(ctx context.Context) (string, error) {
		return "partial", errors.New("rate limit exceeded")
	})

	if err == nil {
		t.Fatal("Call() error = nil, want classified error")
	}
	if got != "" {
		t.Errorf("Call() = %q, want zero value on failure", got)
	}
	if !traderr.IsKind(err, traderr.KindRateLimited) {
		t.Errorf("Call() error = %v, want KindRateLimited", err)
	}
}

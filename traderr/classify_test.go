package traderr

import (
	"errors"
	"fmt"
	"testing"
)

func TestPlatformClassifier_Patterns(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want Kind
	}{
		{"connection refused", errors.New("dial tcp: connection refused"), KindConnection},
		{"network unreachable", errors.New("Network is unreachable"), KindConnection},
		{"timeout", errors.New("request timeout after 30s"), KindConnection},
		{"rate limit", errors.New("Rate limit exceeded, retry later"), KindRateLimited},
		{"too many requests", errors.New("HTTP 429 Too Many Requests"), KindRateLimited},
		{"auth", errors.New("authentication failed"), KindAuthentication},
		{"unauthorized", errors.New("401 Unauthorized"), KindAuthentication},
		{"invalid api key", errors.New("Invalid API key provided"), KindAuthentication},
		{"insufficient funds", errors.New("insufficient margin for order"), KindInsufficientFunds},
		{"balance", errors.New("account balance too low"), KindInsufficientFunds},
		{"order not found", errors.New("order 1234 not found"), KindOrderNotFound},
		{"position not found", errors.New("position for BTC-USDT not found"), KindPositionNotFound},
		{"symbol", errors.New("unknown symbol XYZ-ABC"), KindSymbolNotFound},
		{"instrument", errors.New("instrument suspended"), KindSymbolNotFound},
		{"validation", errors.New("validation error: size must be positive"), KindValidation},
		{"rejected", errors.New("order rejected by venue"), KindExecutionFailed},
		{"not initialized", errors.New("service not initialized"), KindNotInitialized},
		{"unmapped", errors.New("kaboom"), KindUnknownAPI},
	}

	c := NewPlatformClassifier()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := c.Classify(tt.err, Context{})
			if got.Kind != tt.want {
				t.Errorf("Classify(%q).Kind = %v, want %v", tt.err, got.Kind, tt.want)
			}
		})
	}
}

func TestPlatformClassifier_Total(t *testing.T) {
	c := NewPlatformClassifier()

	// Anything non-nil must come back classified, never nil.
	for i := 0; i < 50; i++ {
		err := fmt.Errorf("opaque failure %d", i)
		got := c.Classify(err, Context{})
		if got == nil {
			t.Fatalf("Classify returned nil for non-nil error")
		}
		if got.Kind != KindUnknownAPI {
			t.Errorf("Classify(%q).Kind = %v, want KindUnknownAPI", err, got.Kind)
		}
		if !errors.Is(got, err) {
			t.Errorf("classified error must wrap the original")
		}
	}
}

func TestPlatformClassifier_NilError(t *testing.T) {
	c := NewPlatformClassifier()
	if got := c.Classify(nil, Context{}); got != nil {
		t.Errorf("Classify(nil) = %v, want nil", got)
	}
}

func TestPlatformClassifier_PassThrough(t *testing.T) {
	c := NewPlatformClassifier()

	orig := New(KindValidation, "size must be positive")
	got := c.Classify(orig, Context{})
	if got.Kind != KindValidation {
		t.Errorf("Kind = %v, want KindValidation", got.Kind)
	}

	// Classified errors wrapped by fmt.Errorf keep their kind too.
	wrapped := fmt.Errorf("placing order: %w", orig)
	got = c.Classify(wrapped, Context{})
	if got.Kind != KindValidation {
		t.Errorf("wrapped Kind = %v, want KindValidation", got.Kind)
	}
}

func TestPlatformClassifier_AttachesContext(t *testing.T) {
	c := NewPlatformClassifier()
	ctx := Context{Service: "okx", Operation: "place_order", Symbol: "BTC-USDT"}

	got := c.Classify(errors.New("connection reset by peer"), ctx)
	if got.Context.Service != "okx" || got.Context.Symbol != "BTC-USDT" {
		t.Errorf("Context = %+v, want %+v", got.Context, ctx)
	}
}

func TestClassifierFunc(t *testing.T) {
	f := ClassifierFunc(func(err error, ctx Context) *Error {
		return Wrap(KindConnection, err, "forced").WithContext(ctx)
	})

	got := f.Classify(errors.New("x"), Context{Service: "svc"})
	if got.Kind != KindConnection || got.Context.Service != "svc" {
		t.Errorf("ClassifierFunc result = %+v", got)
	}
}

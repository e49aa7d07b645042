package config

import (
	"strings"
	"testing"
)

func TestExpandEnvStrict_Expands(t *testing.T) {
	t.Setenv("OKX_API_KEY", "key-123")

	out, err := ExpandEnvStrict("apikey=${OKX_API_KEY}")
	if err != nil {
		t.Fatalf("ExpandEnvStrict() error = %v", err)
	}
	if out != "apikey=key-123" {
		t.Fatalf("ExpandEnvStrict() = %q, want %q", out, "apikey=key-123")
	}
}

func TestExpandEnvStrict_MissingVarErrors(t *testing.T) {
	t.Setenv("PRESENT", "ok")

	_, err := ExpandEnvStrict("a=${PRESENT} b=${MISSING} c=${ALSO_MISSING}")
	if err == nil {
		t.Fatalf("expected error")
	}
	// Every missing variable is named, sorted.
	if !strings.Contains(err.Error(), "ALSO_MISSING, MISSING") {
		t.Fatalf("expected both missing var names in error, got: %v", err)
	}
}

func TestExpandEnvStrict_DefaultValue(t *testing.T) {
	out, err := ExpandEnvStrict("endpoint=${OKX_ENDPOINT:-wss://ws.okx.com}")
	if err != nil {
		t.Fatalf("ExpandEnvStrict() error = %v", err)
	}
	if out != "endpoint=wss://ws.okx.com" {
		t.Fatalf("ExpandEnvStrict() = %q, want default applied", out)
	}
}

func TestExpandEnvStrict_DefaultIgnoredWhenSet(t *testing.T) {
	t.Setenv("OKX_ENDPOINT", "wss://wspap.okx.com")

	out, err := ExpandEnvStrict("endpoint=${OKX_ENDPOINT:-wss://ws.okx.com}")
	if err != nil {
		t.Fatalf("ExpandEnvStrict() error = %v", err)
	}
	if out != "endpoint=wss://wspap.okx.com" {
		t.Fatalf("ExpandEnvStrict() = %q, want env value over default", out)
	}
}

func TestExpandEnvStrict_EmptyDefault(t *testing.T) {
	out, err := ExpandEnvStrict("passphrase=${OKX_PASSPHRASE:-}")
	if err != nil {
		t.Fatalf("ExpandEnvStrict() error = %v", err)
	}
	if out != "passphrase=" {
		t.Fatalf("ExpandEnvStrict() = %q, want empty default", out)
	}
}

func TestExpandEnvStrict_DollarEscape(t *testing.T) {
	t.Setenv("X", "y")

	out, err := ExpandEnvStrict("$$${X}")
	if err != nil {
		t.Fatalf("ExpandEnvStrict() error = %v", err)
	}
	if out != "$y" {
		t.Fatalf("ExpandEnvStrict() = %q, want %q", out, "$y")
	}
}

func TestExpandEnvStrict_BareDollarPassesThrough(t *testing.T) {
	out, err := ExpandEnvStrict("price is $100, $UNBRACED stays put")
	if err != nil {
		t.Fatalf("ExpandEnvStrict() error = %v", err)
	}
	if out != "price is $100, $UNBRACED stays put" {
		t.Fatalf("ExpandEnvStrict() = %q, want input unchanged", out)
	}
}

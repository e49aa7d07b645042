package config

import (
	"context"
	"testing"
)

type stubProvider struct {
	name    string
	values  map[string]string
	resolve func(ref string) (string, error)
}

func (s *stubProvider) Name() string { return s.name }

func (s *stubProvider) Resolve(_ context.Context, ref string) (string, error) {
	if s.resolve != nil {
		return s.resolve(ref)
	}
	if s.values == nil {
		return "", nil
	}
	return s.values[ref], nil
}

func (s *stubProvider) Close() error { return nil }

func TestParseSecretRef(t *testing.T) {
	provider, ref, ok := ParseSecretRef("secretref:env:OKX_API_SECRET")
	if !ok {
		t.Fatalf("expected secretref to parse")
	}
	if provider != "env" || ref != "OKX_API_SECRET" {
		t.Fatalf("unexpected values: %q %q", provider, ref)
	}

	_, _, ok = ParseSecretRef("not-a-secretref")
	if ok {
		t.Fatalf("expected non-secretref to fail")
	}
}

func TestResolver_ResolvesFullSecretRef(t *testing.T) {
	r := NewResolver(true, &stubProvider{name: "stub", values: map[string]string{"alpha": "one"}})

	got, err := r.ResolveValue(context.Background(), "secretref:stub:alpha")
	if err != nil {
		t.Fatalf("ResolveValue() error = %v", err)
	}
	if got != "one" {
		t.Fatalf("ResolveValue() = %q, want %q", got, "one")
	}
}

func TestResolver_ResolvesInlineSecretRef(t *testing.T) {
	r := NewResolver(true, &stubProvider{name: "stub", values: map[string]string{"beta": "two"}})

	got, err := r.ResolveValue(context.Background(), "Bearer secretref:stub:beta")
	if err != nil {
		t.Fatalf("ResolveValue() error = %v", err)
	}
	if got != "Bearer two" {
		t.Fatalf("ResolveValue() = %q, want %q", got, "Bearer two")
	}
}

func TestResolver_ExpandsEnvBeforeResolving(t *testing.T) {
	t.Setenv("CRED_NAME", "alpha")
	r := NewResolver(true, &stubProvider{name: "stub", values: map[string]string{"alpha": "one"}})

	got, err := r.ResolveValue(context.Background(), "secretref:stub:${CRED_NAME}")
	if err != nil {
		t.Fatalf("ResolveValue() error = %v", err)
	}
	if got != "one" {
		t.Fatalf("ResolveValue() = %q, want %q", got, "one")
	}
}

func TestResolver_StrictEmptyProviderValueErrors(t *testing.T) {
	r := NewResolver(true, &stubProvider{name: "stub", values: map[string]string{"empty": ""}})

	_, err := r.ResolveValue(context.Background(), "secretref:stub:empty")
	if err == nil {
		t.Fatalf("expected error")
	}
}

func TestResolver_UnknownProviderErrors(t *testing.T) {
	r := NewResolver(true)

	_, err := r.ResolveValue(context.Background(), "secretref:vault:some/path")
	if err == nil {
		t.Fatalf("expected error for unregistered provider")
	}
}

func TestResolver_ResolveMapAndSlice(t *testing.T) {
	r := NewResolver(true, &stubProvider{name: "stub", values: map[string]string{"alpha": "one"}})

	slice, err := r.ResolveSlice(context.Background(), []string{"a", "secretref:stub:alpha"})
	if err != nil {
		t.Fatalf("ResolveSlice() error = %v", err)
	}
	if slice[0] != "a" || slice[1] != "one" {
		t.Fatalf("ResolveSlice() = %v", slice)
	}

	m, err := r.ResolveMap(context.Background(), map[string]string{
		"plain": "value",
		"cred":  "secretref:stub:alpha",
	})
	if err != nil {
		t.Fatalf("ResolveMap() error = %v", err)
	}
	if m["plain"] != "value" || m["cred"] != "one" {
		t.Fatalf("ResolveMap() = %v", m)
	}
}

func TestResolver_EnvProviderEndToEnd(t *testing.T) {
	t.Setenv("TELEGRAM_BOT_TOKEN", "tok-42")
	r := NewResolver(true, NewEnvProvider())

	got, err := r.ResolveValue(context.Background(), "secretref:env:TELEGRAM_BOT_TOKEN")
	if err != nil {
		t.Fatalf("ResolveValue() error = %v", err)
	}
	if got != "tok-42" {
		t.Fatalf("ResolveValue() = %q, want tok-42", got)
	}
}

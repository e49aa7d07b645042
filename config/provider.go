package config

import (
	"context"
	"fmt"
	"os"
)

// Provider resolves credentials by reference string.
//
// Implementations must be safe for concurrent use and must not log
// credential values.
type Provider interface {
	Name() string
	Resolve(ctx context.Context, ref string) (string, error)
	Close() error
}

// EnvProvider resolves credential references against the process
// environment. The ref is the environment variable name.
type EnvProvider struct{}

// NewEnvProvider creates an environment-backed credential provider.
func NewEnvProvider() *EnvProvider {
	return &EnvProvider{}
}

// Name returns "env".
func (p *EnvProvider) Name() string { return "env" }

// Resolve looks up ref in the environment.
func (p *EnvProvider) Resolve(ctx context.Context, ref string) (string, error) {
	value, ok := os.LookupEnv(ref)
	if !ok {
		return "", fmt.Errorf("environment variable %q is not set", ref)
	}
	return value, nil
}

// Close is a no-op.
func (p *EnvProvider) Close() error { return nil }

// StaticProvider resolves credentials from a fixed in-memory map.
// Intended for tests and local development.
type StaticProvider struct {
	values map[string]string
}

// NewStaticProvider creates a provider over a copy of values.
func NewStaticProvider(values map[string]string) *StaticProvider {
	copied := make(map[string]string, len(values))
	for k, v := range values {
		copied[k] = v
	}
	return &StaticProvider{values: copied}
}

// Name returns "static".
func (p *StaticProvider) Name() string { return "static" }

// Resolve looks up ref in the static map.
func (p *StaticProvider) Resolve(ctx context.Context, ref string) (string, error) {
	value, ok := p.values[ref]
	if !ok {
		return "", fmt.Errorf("credential %q is not defined", ref)
	}
	return value, nil
}

// Close is a no-op.
func (p *StaticProvider) Close() error { return nil }

package traderr

import (
	"errors"
	"strings"
)

// Classifier maps raw failures from external calls into the closed
// taxonomy.
//
// Contract:
// - Totality: Classify must map every non-nil error to exactly one Kind
//   and must never fail itself.
// - Idempotence: an already classified error passes through with its
//   Kind preserved (context is attached if missing).
// - Concurrency: implementations must be safe for concurrent use.
type Classifier interface {
	Classify(err error, ctx Context) *Error
}

// pattern maps a set of message substrings to a kind. Patterns are
// evaluated in order; the first full match wins.
type pattern struct {
	kind  Kind
	allOf []string // every substring must be present
	anyOf []string // at least one substring must be present
}

// PlatformClassifier classifies failures from trading-platform SDKs by
// inspecting the error message, mirroring the error surface the
// platforms actually expose (free-form strings, no stable codes).
type PlatformClassifier struct {
	patterns []pattern
}

// NewPlatformClassifier creates a classifier with the standard
// trading-platform patterns.
func NewPlatformClassifier() *PlatformClassifier {
	return &PlatformClassifier{
		patterns: []pattern{
			{kind: KindConnection, anyOf: []string{"connection", "network", "timeout", "timed out", "refused", "reset by peer", "broken pipe", "no such host"}},
			{kind: KindRateLimited, anyOf: []string{"rate limit", "too many requests", "429"}},
			{kind: KindAuthentication, anyOf: []string{"authentication", "unauthorized", "invalid api", "signature", "forbidden"}},
			{kind: KindInsufficientFunds, anyOf: []string{"insufficient", "balance"}},
			{kind: KindOrderNotFound, allOf: []string{"order", "not found"}},
			{kind: KindPositionNotFound, allOf: []string{"position", "not found"}},
			{kind: KindSymbolNotFound, anyOf: []string{"symbol", "instrument"}},
			{kind: KindValidation, anyOf: []string{"invalid parameter", "validation", "malformed"}},
			{kind: KindExecutionFailed, anyOf: []string{"execution", "rejected"}},
			{kind: KindNotInitialized, anyOf: []string{"not initialized", "not connected"}},
		},
	}
}

// Classify maps err into the taxonomy. Errors that are already
// classified keep their kind; err's context is filled in when empty.
func (c *PlatformClassifier) Classify(err error, ctx Context) *Error {
	if err == nil {
		return nil
	}

	var te *Error
	if errors.As(err, &te) {
		if te.Context.isZero() && !ctx.isZero() {
			return te.WithContext(ctx)
		}
		return te
	}

	msg := strings.ToLower(err.Error())
	for _, p := range c.patterns {
		if p.matches(msg) {
			return Wrap(p.kind, err, "").WithContext(ctx)
		}
	}

	// Unmapped SDK-origin failures fall back to the platform API kind.
	return Wrap(KindUnknownAPI, err, "").WithContext(ctx)
}

func (p pattern) matches(msg string) bool {
	for _, s := range p.allOf {
		if !strings.Contains(msg, s) {
			return false
		}
	}
	if len(p.anyOf) == 0 {
		return len(p.allOf) > 0
	}
	for _, s := range p.anyOf {
		if strings.Contains(msg, s) {
			return true
		}
	}
	return false
}

// ClassifierFunc adapts a function to the Classifier interface.
type ClassifierFunc func(err error, ctx Context) *Error

// Classify calls f.
func (f ClassifierFunc) Classify(err error, ctx Context) *Error {
	return f(err, ctx)
}

package traderr

import (
	"errors"
	"fmt"
	"strings"
)

// Context carries call-site information attached to classified errors.
// Zero values are omitted from logs and error strings.
type Context struct {
	// Service is the name of the service making the call.
	Service string

	// Operation is the name of the operation being performed.
	Operation string

	// Symbol is the instrument involved, if any.
	Symbol string

	// OrderID is the order involved, if any.
	OrderID string

	// Extra holds additional free-form context.
	Extra map[string]any
}

func (c Context) isZero() bool {
	return c.Service == "" && c.Operation == "" && c.Symbol == "" && c.OrderID == "" && len(c.Extra) == 0
}

// String renders the non-empty context fields as "service.operation [k=v ...]".
func (c Context) String() string {
	var b strings.Builder
	if c.Service != "" {
		b.WriteString(c.Service)
	}
	if c.Operation != "" {
		if b.Len() > 0 {
			b.WriteByte('.')
		}
		b.WriteString(c.Operation)
	}
	if c.Symbol != "" {
		fmt.Fprintf(&b, " symbol=%s", c.Symbol)
	}
	if c.OrderID != "" {
		fmt.Fprintf(&b, " order=%s", c.OrderID)
	}
	return b.String()
}

// Error is a classified platform failure. It carries exactly one Kind
// from the closed taxonomy, the original cause, and the call Context.
type Error struct {
	Kind    Kind
	Message string
	Context Context
	cause   error
}

// New creates a classified error with the given kind and message.
func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Wrap creates a classified error wrapping cause.
func Wrap(kind Kind, cause error, message string) *Error {
	return &Error{Kind: kind, Message: message, cause: cause}
}

// WithContext returns a copy of the error carrying ctx.
func (e *Error) WithContext(ctx Context) *Error {
	clone := *e
	clone.Context = ctx
	return &clone
}

// Error implements the error interface.
func (e *Error) Error() string {
	var b strings.Builder
	b.WriteString(e.Kind.String())
	if loc := e.Context.String(); loc != "" {
		b.WriteString(" in ")
		b.WriteString(loc)
	}
	if e.Message != "" {
		b.WriteString(": ")
		b.WriteString(e.Message)
	}
	if e.cause != nil {
		b.WriteString(": ")
		b.WriteString(e.cause.Error())
	}
	return b.String()
}

// Unwrap returns the original cause, if any.
func (e *Error) Unwrap() error {
	return e.cause
}

// KindOf returns the Kind of err. Unclassified errors report KindInternal;
// a nil error also reports KindInternal (callers should not classify nil).
func KindOf(err error) Kind {
	var te *Error
	if errors.As(err, &te) {
		return te.Kind
	}
	return KindInternal
}

// IsKind reports whether err is classified with kind.
func IsKind(err error, kind Kind) bool {
	var te *Error
	if errors.As(err, &te) {
		return te.Kind == kind
	}
	return false
}

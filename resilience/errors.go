package resilience

import "errors"

// Sentinel errors for resilience operations.
var (
	// ErrCircuitOpen is returned when a breaker rejects a call. It is
	// wrapped in a classified connection-kind error keyed to the
	// guarded service.
	ErrCircuitOpen = errors.New("resilience: circuit breaker is open")

	// ErrRateLimitExceeded is returned when the local rate limit is
	// exceeded. It is wrapped in a classified rate-limited error
	// keyed to the throttled service.
	ErrRateLimitExceeded = errors.New("resilience: rate limit exceeded")

	// ErrTimeout is returned when an attempt dies at its deadline. It
	// is wrapped in a classified connection-kind error.
	ErrTimeout = errors.New("resilience: operation timed out")
)

package resilience

import (
	"context"
	"time"

	"github.com/jonwraymond/tradeops/traderr"
)

// AttemptTimeout bounds each platform-call attempt with its own
// deadline. The deadline travels through the attempt's context, so
// the operation observes cancellation and releases its connection
// instead of being abandoned mid-flight. An attempt that dies at its
// deadline surfaces as a classified connection-kind error wrapping
// ErrTimeout, which the standard retry policies treat as transient.
type AttemptTimeout struct {
	limit time.Duration
}

// NewAttemptTimeout creates an AttemptTimeout with the given
// per-attempt limit. A non-positive limit defaults to 30 seconds.
func NewAttemptTimeout(limit time.Duration) *AttemptTimeout {
	if limit <= 0 {
		limit = 30 * time.Second
	}
	return &AttemptTimeout{limit: limit}
}

// Limit returns the per-attempt deadline.
func (t *AttemptTimeout) Limit() time.Duration {
	return t.limit
}

// Execute runs op under a fresh deadline. A failure caused by the
// attempt deadline is classified as a connection-kind timeout; a
// failure caused by the parent context passes through untouched, as
// the caller gave up rather than the attempt running long.
func (t *AttemptTimeout) Execute(ctx context.Context, op func(context.Context) error) error {
	attemptCtx, cancel := context.WithTimeout(ctx, t.limit)
	defer cancel()

	err := op(attemptCtx)
	if err != nil && attemptCtx.Err() == context.DeadlineExceeded && ctx.Err() == nil {
		return traderr.Wrap(traderr.KindConnection, ErrTimeout, "attempt deadline exceeded")
	}
	return err
}

package resilience

import (
	"context"
	"time"

	"github.com/jonwraymond/tradeops/observe"
)

// Executor composes the resilience patterns into one platform-call
// pipeline.
type Executor struct {
	caller   *Caller
	policy   Policy
	hasRetry bool
	breaker  *Breaker
	limiter  *Limiter
	timeout  *AttemptTimeout
}

// ExecutorOption configures an Executor.
type ExecutorOption func(*Executor)

// NewExecutor creates a new resilience executor.
func NewExecutor(opts ...ExecutorOption) *Executor {
	e := &Executor{}
	for _, opt := range opts {
		opt(e)
	}
	if e.caller == nil {
		e.caller = NewCaller(CallerConfig{})
	}
	return e
}

// WithCaller sets the caller used for classification and retry.
func WithCaller(c *Caller) ExecutorOption {
	return func(e *Executor) {
		e.caller = c
	}
}

// WithRetry enables retry under the given policy.
func WithRetry(policy Policy) ExecutorOption {
	return func(e *Executor) {
		e.policy = policy
		e.hasRetry = true
	}
}

// WithBreaker guards the pipeline with a circuit breaker.
func WithBreaker(b *Breaker) ExecutorOption {
	return func(e *Executor) {
		e.breaker = b
	}
}

// WithLimiter throttles the pipeline with a rate limiter.
func WithLimiter(l *Limiter) ExecutorOption {
	return func(e *Executor) {
		e.limiter = l
	}
}

// WithAttemptTimeout bounds each attempt with the given deadline.
func WithAttemptTimeout(limit time.Duration) ExecutorOption {
	return func(e *Executor) {
		e.timeout = NewAttemptTimeout(limit)
	}
}

// Execute runs the operation through all configured resilience patterns.
//
// The layering, outermost first:
// 1. Limiter (if configured) - throttles the request rate
// 2. Breaker (if configured) - prevents hammering a down platform
// 3. Retry (if configured) - classifies and retries transient failures
// 4. Attempt timeout (if configured) - bounds each individual attempt
//
// Retry sits inside the breaker so a burst of retries counts as one
// request against the breaker, and outside the attempt timeout so
// each attempt gets a fresh deadline.
func (e *Executor) Execute(ctx context.Context, meta observe.ServiceMeta, operation string, op func(context.Context) error) error {
	execute := op

	// Wrap with the attempt timeout (innermost)
	if e.timeout != nil {
		inner := execute
		execute = func(ctx context.Context) error {
			return e.timeout.Execute(ctx, inner)
		}
	}

	// Wrap with classification and retry
	if e.hasRetry {
		inner := execute
		execute = func(ctx context.Context) error {
			return e.caller.Run(ctx, meta, operation, e.policy, inner)
		}
	}

	// Wrap with the breaker
	if e.breaker != nil {
		inner := execute
		execute = func(ctx context.Context) error {
			return e.breaker.Execute(ctx, inner)
		}
	}

	// Wrap with the limiter (outermost)
	if e.limiter != nil {
		inner := execute
		execute = func(ctx context.Context) error {
			return e.limiter.Execute(ctx, inner)
		}
	}

	return execute(ctx)
}

package resilience

import (
	"context"
	"time"

	"github.com/jonwraymond/tradeops/observe"
	"github.com/jonwraymond/tradeops/traderr"
)

// CallerConfig configures a Caller.
type CallerConfig struct {
	// Classifier maps raw failures into the error taxonomy.
	// Default: traderr.NewPlatformClassifier()
	Classifier traderr.Classifier

	// Logger receives a warning per retry and an error on final failure.
	// Default: discard
	Logger observe.Logger

	// Metrics counts retries per service and operation.
	// Default: noop
	Metrics observe.Metrics
}

// Caller executes platform operations with classification and retry.
// Every failure surfaces as a *traderr.Error carrying the call context;
// transient kinds are retried per policy before surfacing.
type Caller struct {
	classifier traderr.Classifier
	logger     observe.Logger
	metrics    observe.Metrics
}

// NewCaller creates a Caller, applying defaults for unset config fields.
func NewCaller(config CallerConfig) *Caller {
	if config.Classifier == nil {
		config.Classifier = traderr.NewPlatformClassifier()
	}
	if config.Logger == nil {
		config.Logger = observe.NopLogger()
	}
	if config.Metrics == nil {
		config.Metrics = observe.NoopMetrics()
	}

	return &Caller{
		classifier: config.Classifier,
		logger:     config.Logger,
		metrics:    config.Metrics,
	}
}

// Run executes op under policy. On success the result passes through
// untouched. On failure the error is classified; retryable kinds are
// retried with backoff, and the final failure is returned as the
// classified error, never the raw one.
//
// The backoff wait honors ctx cancellation and holds no locks.
func (c *Caller) Run(ctx context.Context, meta observe.ServiceMeta, operation string, policy Policy, op func(context.Context) error) error {
	policy = policy.normalized()
	callCtx := traderr.Context{Service: meta.Name, Operation: operation}
	logger := c.logger.WithService(meta)

	var classified *traderr.Error
	for attempt := 1; attempt <= policy.MaxAttempts; attempt++ {
		err := op(ctx)
		if err == nil {
			return nil
		}

		classified = c.classifier.Classify(err, callCtx)

		if !policy.Retryable(classified.Kind) || attempt == policy.MaxAttempts {
			break
		}

		delay := policy.Delay(attempt - 1)
		c.metrics.RecordRetry(ctx, meta, operation, attempt)
		logger.Warn(ctx, "platform call failed, retrying",
			observe.Field{Key: "operation", Value: operation},
			observe.Field{Key: "attempt", Value: attempt},
			observe.Field{Key: "max_attempts", Value: policy.MaxAttempts},
			observe.Field{Key: "delay_ms", Value: float64(delay.Milliseconds())},
			observe.Field{Key: "error.kind", Value: classified.Kind.String()},
			observe.Field{Key: "error", Value: classified.Error()},
		)

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
		}
	}

	logger.Error(ctx, "platform call failed",
		observe.Field{Key: "operation", Value: operation},
		observe.Field{Key: "max_attempts", Value: policy.MaxAttempts},
		observe.Field{Key: "error.kind", Value: classified.Kind.String()},
		observe.Field{Key: "error", Value: classified.Error()},
	)
	return classified
}

// Call runs op through c and returns its typed result. On failure the
// zero value is returned along with the classified error.
func Call[T any](ctx context.Context, c *Caller, meta observe.ServiceMeta, operation string, policy Policy, op func(context.Context) (T, error)) (T, error) {
	var result T
	err := c.Run(ctx, meta, operation, policy, func(ctx context.Context) error {
		v, err := op(ctx)
		if err != nil {
			return err
		}
		result = v
		return nil
	})
	if err != nil {
		var zero T
		return zero, err
	}
	return result, nil
}

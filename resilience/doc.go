// Package resilience wraps outbound platform calls with retry,
// classification, and protective patterns.
//
// The central type is Caller, which executes an operation under a retry
// Policy: failures are classified into the traderr taxonomy, transient
// kinds are retried with exponential backoff, and the final failure
// surfaces as a classified error carrying the service and operation
// context. Supporting patterns (Breaker, Limiter, AttemptTimeout), each
// keyed to the platform service it guards, can be composed around a
// Caller via Executor.
//
// # Usage
//
// Retry a platform call under the standard policy:
//
//	caller := resilience.NewCaller(resilience.CallerConfig{
//	    Logger:  logger,
//	    Metrics: metrics,
//	})
//
//	meta := observe.ServiceMeta{Name: "okx_trading", Platform: "okx"}
//	err := caller.Run(ctx, meta, "place_order", resilience.StandardPolicy(),
//	    func(ctx context.Context) error {
//	        return client.PlaceOrder(ctx, order)
//	    })
//
// Typed results go through Call:
//
//	balance, err := resilience.Call(ctx, caller, meta, "get_balance",
//	    resilience.FastPolicy(),
//	    func(ctx context.Context) (Balance, error) {
//	        return client.GetBalance(ctx)
//	    })
//
// Compose the full pipeline:
//
//	executor := resilience.NewExecutor(
//	    resilience.WithCaller(caller),
//	    resilience.WithRetry(resilience.StandardPolicy()),
//	    resilience.WithBreaker(resilience.NewBreaker(meta, resilience.BreakerConfig{
//	        MaxFailures: 5,
//	        Cooldown:    time.Minute,
//	    })),
//	    resilience.WithLimiter(resilience.NewLimiter(meta, resilience.LimiterConfig{
//	        Rate:  20, // requests per second
//	        Burst: 5,
//	    })),
//	    resilience.WithAttemptTimeout(5*time.Second),
//	)
//
//	err := executor.Execute(ctx, meta, "place_order", func(ctx context.Context) error {
//	    return client.PlaceOrder(ctx, order)
//	})
package resilience

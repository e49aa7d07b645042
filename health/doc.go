// Package health provides health checking for trading platform services.
//
// This package implements the health model behind the platform's probe
// endpoints: components report their status through Checkers, an
// Aggregator runs them in parallel and caches the resulting Snapshot,
// and Monitors track long-lived connections with a consecutive-failure
// threshold.
//
// # Core Concepts
//
// A Checker is any component that can report its health status. The
// Status type represents the health state, ordered by severity:
// Unknown, Healthy, Degraded, Unhealthy. Aggregation takes the worst
// status across components.
//
// # Aggregating Health Checks
//
// Use Aggregator to combine multiple health checks into cached
// snapshots. Checks run in parallel with a per-check timeout, a
// panicking check maps to an unhealthy result, and concurrent
// snapshot requests share one run:
//
//	agg := health.NewAggregator(health.AggregatorConfig{
//	    Version: "1.4.2",
//	})
//	agg.Register("okx_trading", okxChecker)
//	agg.Register("telegram", telegramChecker)
//	agg.Register("process", health.NewProcessChecker(health.ProcessCheckerConfig{}))
//	agg.SetCritical("okx_trading")
//
//	snap := agg.Snapshot(ctx, true)
//	if snap.Status == health.StatusUnhealthy {
//	    log.Printf("system unhealthy: %v", snap.Counts)
//	}
//
// # Background Monitoring
//
// A Monitor probes one component on an interval. The component stays
// healthy until the failure threshold is crossed, and a single
// successful probe restores it:
//
//	mon := health.NewMonitor("okx_trading", client.Ping, health.MonitorConfig{
//	    Interval:         30 * time.Second,
//	    FailureThreshold: 3,
//	})
//	mon.Start()
//	defer mon.Stop()
//	agg.Register("okx_trading", mon.Checker())
//
// # HTTP Endpoints
//
// RegisterHandlers mounts the standard probe endpoints:
//
//	mux := http.NewServeMux()
//	health.RegisterHandlers(mux, agg)
//	// /health/live, /health/ready, /health/startup, /health/status
//
// Healthy and Degraded answer 200; Unhealthy answers 503. The startup
// probe requires every critical component to be Healthy.
package health

package health

import (
	"context"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/jonwraymond/tradeops/observe"
)

// AggregatorConfig configures the health aggregator.
type AggregatorConfig struct {
	// CheckTimeout is the maximum time allotted to each individual check.
	// Default: 5 seconds
	CheckTimeout time.Duration

	// CacheTTL is how long a snapshot is served from cache before a new
	// run is performed. Default: 10 seconds
	CacheTTL time.Duration

	// Version is reported in snapshots and HTTP responses.
	Version string

	// Logger receives check failures. Defaults to a no-op logger.
	Logger observe.Logger

	// Metrics records check outcomes. Defaults to no-op metrics.
	Metrics observe.Metrics
}

// Snapshot is an immutable view of system health at one point in time.
type Snapshot struct {
	// Status is the worst status across all checks.
	Status Status

	// Checks holds the per-component results keyed by component name.
	Checks map[string]Result

	// Counts holds the number of components per status string.
	Counts map[string]int

	// Elapsed is the wall time of the whole run.
	Elapsed time.Duration

	// Timestamp is when the run started.
	Timestamp time.Time

	// Version is the application version at snapshot time.
	Version string
}

// Aggregator combines multiple health checkers into cached snapshots.
// Concurrent snapshot requests share a single run; components are
// checked in parallel with a per-check timeout and panics contained.
type Aggregator struct {
	config AggregatorConfig

	mu       sync.RWMutex
	checkers map[string]Checker
	order    []string // registration order
	critical map[string]bool

	cacheMu sync.RWMutex
	cached  *Snapshot

	group singleflight.Group
}

// NewAggregator creates a new health aggregator.
func NewAggregator(config ...AggregatorConfig) *Aggregator {
	cfg := AggregatorConfig{}
	if len(config) > 0 {
		cfg = config[0]
	}
	if cfg.CheckTimeout <= 0 {
		cfg.CheckTimeout = 5 * time.Second
	}
	if cfg.CacheTTL <= 0 {
		cfg.CacheTTL = 10 * time.Second
	}
	if cfg.Logger == nil {
		cfg.Logger = observe.NopLogger()
	}
	if cfg.Metrics == nil {
		cfg.Metrics = observe.NoopMetrics()
	}

	return &Aggregator{
		config:   cfg,
		checkers: make(map[string]Checker),
		order:    make([]string, 0),
		critical: make(map[string]bool),
	}
}

// Register adds a health checker under the given component name.
// Registering an existing name replaces its checker.
func (a *Aggregator) Register(name string, checker Checker) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if _, exists := a.checkers[name]; !exists {
		a.order = append(a.order, name)
	}
	a.checkers[name] = checker
}

// Unregister removes a health checker from the aggregator.
func (a *Aggregator) Unregister(name string) {
	a.mu.Lock()
	defer a.mu.Unlock()

	delete(a.checkers, name)
	delete(a.critical, name)

	for i, n := range a.order {
		if n == name {
			a.order = append(a.order[:i], a.order[i+1:]...)
			break
		}
	}
}

// SetCritical marks components whose health gates the startup probe.
// Unknown names are ignored at probe time rather than rejected here,
// so critical components may be declared before registration.
func (a *Aggregator) SetCritical(names ...string) {
	a.mu.Lock()
	defer a.mu.Unlock()

	for _, name := range names {
		a.critical[name] = true
	}
}

// CheckerNames returns the names of all registered checkers.
func (a *Aggregator) CheckerNames() []string {
	a.mu.RLock()
	defer a.mu.RUnlock()

	names := make([]string, len(a.order))
	copy(names, a.order)
	return names
}

// Check runs a single named health check, bypassing the cache.
func (a *Aggregator) Check(ctx context.Context, name string) (Result, error) {
	a.mu.RLock()
	checker, ok := a.checkers[name]
	a.mu.RUnlock()

	if !ok {
		return Result{}, ErrCheckerNotFound
	}

	result := a.runCheck(ctx, name, checker)
	return result, nil
}

// Snapshot returns the current health snapshot. When useCache is true
// and a snapshot newer than CacheTTL exists, it is returned without
// running any checks. Otherwise a fresh run is performed; concurrent
// callers share that run.
func (a *Aggregator) Snapshot(ctx context.Context, useCache bool) Snapshot {
	if useCache {
		a.cacheMu.RLock()
		cached := a.cached
		a.cacheMu.RUnlock()

		if cached != nil && time.Since(cached.Timestamp) < a.config.CacheTTL {
			return *cached
		}
	}

	snap, _, _ := a.group.Do("snapshot", func() (any, error) {
		s := a.run(ctx)

		a.cacheMu.Lock()
		a.cached = &s
		a.cacheMu.Unlock()

		return s, nil
	})

	return snap.(Snapshot)
}

func (a *Aggregator) run(ctx context.Context) Snapshot {
	a.mu.RLock()
	checkers := make(map[string]Checker, len(a.checkers))
	for name, checker := range a.checkers {
		checkers[name] = checker
	}
	a.mu.RUnlock()

	start := time.Now()
	results := make(map[string]Result, len(checkers))

	var wg sync.WaitGroup
	var mu sync.Mutex

	for name, checker := range checkers {
		wg.Add(1)
		go func(name string, checker Checker) {
			defer wg.Done()
			result := a.runCheck(ctx, name, checker)
			mu.Lock()
			results[name] = result
			mu.Unlock()
		}(name, checker)
	}

	wg.Wait()

	status := OverallStatus(results)
	counts := make(map[string]int, 4)
	for _, result := range results {
		counts[result.Status.String()]++
	}

	return Snapshot{
		Status:    status,
		Checks:    results,
		Counts:    counts,
		Elapsed:   time.Since(start),
		Timestamp: start,
		Version:   a.config.Version,
	}
}

// Liveness reports whether the process event loop is responsive. It
// never runs component checks; a process that can answer is live.
func (a *Aggregator) Liveness() bool {
	return true
}

// Readiness reports whether the system can serve traffic. It uses the
// cached snapshot when fresh. Degraded still counts as ready.
func (a *Aggregator) Readiness(ctx context.Context) (bool, Snapshot) {
	snap := a.Snapshot(ctx, true)
	return snap.Status != StatusUnhealthy, snap
}

// Startup reports whether all critical components are healthy. It
// always performs a fresh run. Components marked critical that are
// not registered are ignored.
func (a *Aggregator) Startup(ctx context.Context) (bool, Snapshot) {
	snap := a.Snapshot(ctx, false)

	a.mu.RLock()
	critical := make([]string, 0, len(a.critical))
	for name := range a.critical {
		critical = append(critical, name)
	}
	a.mu.RUnlock()

	for _, name := range critical {
		result, ok := snap.Checks[name]
		if !ok {
			continue
		}
		if result.Status != StatusHealthy {
			return false, snap
		}
	}
	return true, snap
}

// OverallStatus computes the overall health status from a set of results:
// the worst status across all checks, or Unknown when there are none.
func OverallStatus(results map[string]Result) Status {
	status := StatusUnknown
	for _, result := range results {
		status = status.Worse(result.Status)
	}
	return status
}

// runCheck executes one checker with the per-check timeout, containing
// panics so a throwing check maps to an unhealthy result instead of
// taking down the run.
func (a *Aggregator) runCheck(ctx context.Context, name string, checker Checker) Result {
	start := time.Now()

	ctx, cancel := context.WithTimeout(ctx, a.config.CheckTimeout)
	defer cancel()

	resultCh := make(chan Result, 1)

	go func() {
		defer func() {
			if r := recover(); r != nil {
				resultCh <- Result{
					Status:    StatusUnhealthy,
					Message:   fmt.Sprintf("check panicked: %v", r),
					Error:     ErrCheckPanicked,
					Timestamp: start,
				}
			}
		}()
		result := checker.Check(ctx)
		if result.Timestamp.IsZero() {
			result.Timestamp = start
		}
		resultCh <- result
	}()

	var result Result
	select {
	case result = <-resultCh:
	case <-ctx.Done():
		result = Result{
			Status:    StatusUnhealthy,
			Message:   "check timed out",
			Error:     ErrCheckTimeout,
			Timestamp: start,
		}
	}
	result.Duration = time.Since(start)

	if result.Status == StatusUnhealthy {
		a.config.Logger.Warn(ctx, "health check failed",
			observe.Field{Key: "component", Value: name},
			observe.Field{Key: "message", Value: result.Message},
			observe.Field{Key: "duration_ms", Value: result.Duration.Milliseconds()},
		)
	}
	a.config.Metrics.RecordCheck(ctx, name, result.Duration, result.Status.String())

	return result
}

// Checker returns a single Checker backed by the aggregator, so a
// composite system can register inside another aggregator.
func (a *Aggregator) Checker() Checker {
	return &aggregatorChecker{agg: a}
}

type aggregatorChecker struct {
	agg *Aggregator
}

func (c *aggregatorChecker) Name() string {
	return "aggregate"
}

func (c *aggregatorChecker) Check(ctx context.Context) Result {
	snap := c.agg.Snapshot(ctx, true)

	details := make(map[string]any, len(snap.Checks))
	for name, result := range snap.Checks {
		details[name] = map[string]any{
			"status":   result.Status.String(),
			"message":  result.Message,
			"duration": result.Duration.String(),
		}
	}

	var message string
	switch snap.Status {
	case StatusHealthy:
		message = "all checks passed"
	case StatusDegraded:
		message = "some checks degraded"
	case StatusUnhealthy:
		message = "some checks failed"
	default:
		message = "no checks registered"
	}

	return Result{
		Status:    snap.Status,
		Message:   message,
		Details:   details,
		Timestamp: snap.Timestamp,
	}
}

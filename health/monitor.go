package health

import (
	"context"
	"sync"
	"time"

	"github.com/jonwraymond/tradeops/observe"
)

// ProbeFunc checks one component and returns an error when it is down.
type ProbeFunc func(ctx context.Context) error

// MonitorConfig configures a background health monitor.
type MonitorConfig struct {
	// Interval is the time between probes. Default: 30 seconds
	Interval time.Duration

	// FailureThreshold is the number of consecutive probe failures
	// before the component is marked unhealthy. Default: 3
	FailureThreshold int

	// Timeout bounds each probe. Default: 5 seconds
	Timeout time.Duration

	// Logger receives state transitions. Defaults to a no-op logger.
	Logger observe.Logger
}

// Monitor probes a single component on an interval and tracks its
// health with a consecutive-failure threshold: the component stays
// healthy until FailureThreshold probes fail in a row, and a single
// success restores it.
type Monitor struct {
	name   string
	probe  ProbeFunc
	config MonitorConfig

	mu        sync.Mutex
	running   bool
	cancel    context.CancelFunc
	done      chan struct{}
	healthy   bool
	failures  int
	lastErr   error
	lastCheck time.Time
}

// NewMonitor creates a monitor for the named component.
func NewMonitor(name string, probe ProbeFunc, config ...MonitorConfig) *Monitor {
	cfg := MonitorConfig{}
	if len(config) > 0 {
		cfg = config[0]
	}
	if cfg.Interval <= 0 {
		cfg.Interval = 30 * time.Second
	}
	if cfg.FailureThreshold <= 0 {
		cfg.FailureThreshold = 3
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 5 * time.Second
	}
	if cfg.Logger == nil {
		cfg.Logger = observe.NopLogger()
	}

	return &Monitor{
		name:    name,
		probe:   probe,
		config:  cfg,
		healthy: true,
	}
}

// Start begins probing in the background. Starting a running monitor
// returns ErrMonitorRunning.
func (m *Monitor) Start() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.running {
		return ErrMonitorRunning
	}

	ctx, cancel := context.WithCancel(context.Background())
	m.cancel = cancel
	m.done = make(chan struct{})
	m.running = true

	go m.loop(ctx)
	return nil
}

// Stop halts probing and waits for the background loop to exit.
// Stopping a stopped monitor is a no-op.
func (m *Monitor) Stop() {
	m.mu.Lock()
	if !m.running {
		m.mu.Unlock()
		return
	}
	cancel := m.cancel
	done := m.done
	m.running = false
	m.mu.Unlock()

	cancel()
	<-done
}

// Running reports whether the background loop is active.
func (m *Monitor) Running() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.running
}

// Healthy reports the monitored component's current health.
func (m *Monitor) Healthy() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.healthy
}

// ConsecutiveFailures returns the current failure streak.
func (m *Monitor) ConsecutiveFailures() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.failures
}

// CheckNow probes the component immediately and updates the tracked
// state. It returns the probe error, if any.
func (m *Monitor) CheckNow(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, m.config.Timeout)
	defer cancel()

	err := m.probe(ctx)
	m.record(ctx, err)
	return err
}

func (m *Monitor) loop(ctx context.Context) {
	defer close(m.done)

	ticker := time.NewTicker(m.config.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			probeCtx, cancel := context.WithTimeout(ctx, m.config.Timeout)
			err := m.probe(probeCtx)
			cancel()

			if ctx.Err() != nil {
				return
			}
			m.record(ctx, err)
		}
	}
}

func (m *Monitor) record(ctx context.Context, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.lastCheck = time.Now()
	m.lastErr = err

	if err == nil {
		if !m.healthy {
			m.config.Logger.Info(ctx, "component recovered",
				observe.Field{Key: "component", Value: m.name},
			)
		}
		m.failures = 0
		m.healthy = true
		return
	}

	m.failures++
	if m.failures >= m.config.FailureThreshold && m.healthy {
		m.healthy = false
		m.config.Logger.Warn(ctx, "component marked unhealthy",
			observe.Field{Key: "component", Value: m.name},
			observe.Field{Key: "consecutive_failures", Value: m.failures},
			observe.Field{Key: "error", Value: err.Error()},
		)
	}
}

// Checker returns a Checker view of the monitor for registration in
// an Aggregator. It reflects tracked state and never probes.
func (m *Monitor) Checker() Checker {
	return &monitorChecker{mon: m}
}

type monitorChecker struct {
	mon *Monitor
}

func (c *monitorChecker) Name() string {
	return c.mon.name
}

func (c *monitorChecker) Check(ctx context.Context) Result {
	c.mon.mu.Lock()
	healthy := c.mon.healthy
	failures := c.mon.failures
	lastErr := c.mon.lastErr
	lastCheck := c.mon.lastCheck
	c.mon.mu.Unlock()

	details := map[string]any{
		"consecutive_failures": failures,
	}
	if !lastCheck.IsZero() {
		details["last_check"] = lastCheck.Format(time.RFC3339)
	}

	if !healthy {
		return Unhealthy("monitor threshold exceeded", lastErr).WithDetails(details)
	}
	if failures > 0 {
		return Degraded("recent probe failures").WithDetails(details)
	}
	return Healthy("monitor passing").WithDetails(details)
}

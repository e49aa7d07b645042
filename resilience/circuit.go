package resilience

import (
	"context"
	"sync"
	"time"

	"github.com/jonwraymond/tradeops/observe"
	"github.com/jonwraymond/tradeops/traderr"
)

// BreakerState is the admission state of a Breaker.
type BreakerState int

const (
	// BreakerClosed admits every call.
	BreakerClosed BreakerState = iota
	// BreakerOpen rejects every call until the cooldown elapses.
	BreakerOpen
	// BreakerHalfOpen admits a limited number of probe calls.
	BreakerHalfOpen
)

// String returns the state name used in logs and stats.
func (s BreakerState) String() string {
	switch s {
	case BreakerClosed:
		return "closed"
	case BreakerOpen:
		return "open"
	case BreakerHalfOpen:
		return "half_open"
	default:
		return "unknown"
	}
}

// BreakerConfig configures a Breaker.
type BreakerConfig struct {
	// MaxFailures is the number of consecutive tripping failures
	// before the breaker opens.
	// Default: 5
	MaxFailures int

	// Cooldown is how long an open breaker rejects calls before
	// letting probes through.
	// Default: 30 seconds
	Cooldown time.Duration

	// ProbeLimit is the number of calls admitted while half-open.
	// Default: 1
	ProbeLimit int

	// Logger receives state transition logs tagged with the guarded
	// service. Default: discard
	Logger observe.Logger

	// OnStateChange is invoked after each state transition.
	OnStateChange func(meta observe.ServiceMeta, from, to BreakerState)

	// Trips reports whether err counts toward opening the breaker.
	// Default: connection and internal kinds trip; domain outcomes
	// such as validation, insufficient funds, or a missing order say
	// nothing about platform health and never trip. Throttling is
	// the limiter's concern, so rate-limited errors do not trip
	// either.
	Trips func(err error) bool
}

// Breaker guards one trading platform connection. After MaxFailures
// consecutive platform failures it opens and rejects calls outright,
// sparing a struggling platform the load; after Cooldown it admits up
// to ProbeLimit probes, and a single successful probe closes it again.
//
// Rejections surface as classified connection-kind errors wrapping
// ErrCircuitOpen, keyed to the guarded service, so callers handle
// them uniformly with genuine connection failures.
type Breaker struct {
	meta   observe.ServiceMeta
	config BreakerConfig
	logger observe.Logger

	mu       sync.Mutex
	state    BreakerState
	failures int
	probes   int
	lastTrip time.Time
}

// NewBreaker creates a Breaker guarding the service described by meta.
func NewBreaker(meta observe.ServiceMeta, config BreakerConfig) *Breaker {
	if config.MaxFailures <= 0 {
		config.MaxFailures = 5
	}
	if config.Cooldown <= 0 {
		config.Cooldown = 30 * time.Second
	}
	if config.ProbeLimit <= 0 {
		config.ProbeLimit = 1
	}
	if config.Logger == nil {
		config.Logger = observe.NopLogger()
	}
	if config.Trips == nil {
		config.Trips = DefaultTrips
	}

	return &Breaker{
		meta:   meta,
		config: config,
		logger: config.Logger.WithService(meta),
		state:  BreakerClosed,
	}
}

// DefaultTrips reports whether err indicates platform trouble worth
// counting toward the breaker threshold.
func DefaultTrips(err error) bool {
	if err == nil {
		return false
	}
	switch traderr.KindOf(err) {
	case traderr.KindConnection, traderr.KindInternal:
		return true
	}
	return false
}

// Execute runs op if the breaker admits it and settles the outcome
// against the breaker state.
func (b *Breaker) Execute(ctx context.Context, op func(context.Context) error) error {
	if err := b.admit(ctx); err != nil {
		return err
	}

	err := op(ctx)
	b.settle(ctx, err)
	return err
}

// State returns the current breaker state, accounting for an elapsed
// cooldown.
func (b *Breaker) State() BreakerState {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.stateLocked(context.Background(), time.Now())
}

// Reset force-closes the breaker and clears its counters.
func (b *Breaker) Reset() {
	b.mu.Lock()
	defer b.mu.Unlock()

	from := b.state
	b.state = BreakerClosed
	b.failures = 0
	b.probes = 0

	if from != BreakerClosed {
		b.announceLocked(context.Background(), from, BreakerClosed)
	}
}

// BreakerStats is a point-in-time view of a breaker.
type BreakerStats struct {
	Service  string
	State    BreakerState
	Failures int
	LastTrip time.Time
}

// Stats returns the breaker's current counters.
func (b *Breaker) Stats() BreakerStats {
	b.mu.Lock()
	defer b.mu.Unlock()

	return BreakerStats{
		Service:  b.meta.Name,
		State:    b.stateLocked(context.Background(), time.Now()),
		Failures: b.failures,
		LastTrip: b.lastTrip,
	}
}

func (b *Breaker) admit(ctx context.Context) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	switch b.stateLocked(ctx, time.Now()) {
	case BreakerOpen:
		return b.rejection()
	case BreakerHalfOpen:
		if b.probes >= b.config.ProbeLimit {
			return b.rejection()
		}
		b.probes++
	}

	return nil
}

func (b *Breaker) settle(ctx context.Context, err error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	tripped := b.config.Trips(err)

	switch b.state {
	case BreakerClosed:
		if !tripped {
			b.failures = 0
			return
		}
		b.failures++
		b.lastTrip = time.Now()
		if b.failures >= b.config.MaxFailures {
			b.moveLocked(ctx, BreakerOpen)
		}

	case BreakerHalfOpen:
		if tripped {
			// Probe failed; restart the cooldown.
			b.lastTrip = time.Now()
			b.moveLocked(ctx, BreakerOpen)
			return
		}
		b.failures = 0
		b.moveLocked(ctx, BreakerClosed)
	}
}

// stateLocked returns the effective state at now, promoting an open
// breaker to half-open once the cooldown has elapsed.
func (b *Breaker) stateLocked(ctx context.Context, now time.Time) BreakerState {
	if b.state == BreakerOpen && now.Sub(b.lastTrip) >= b.config.Cooldown {
		b.moveLocked(ctx, BreakerHalfOpen)
	}
	return b.state
}

func (b *Breaker) moveLocked(ctx context.Context, to BreakerState) {
	from := b.state
	if from == to {
		return
	}
	b.state = to
	if to == BreakerHalfOpen {
		b.probes = 0
	}
	b.announceLocked(ctx, from, to)
}

func (b *Breaker) announceLocked(ctx context.Context, from, to BreakerState) {
	fields := []observe.Field{
		{Key: "breaker.from", Value: from.String()},
		{Key: "breaker.to", Value: to.String()},
		{Key: "breaker.failures", Value: b.failures},
	}
	if to == BreakerOpen {
		b.logger.Warn(ctx, "circuit opened, rejecting platform calls", fields...)
	} else {
		b.logger.Info(ctx, "circuit state changed", fields...)
	}

	if b.config.OnStateChange != nil {
		b.config.OnStateChange(b.meta, from, to)
	}
}

func (b *Breaker) rejection() error {
	return traderr.Wrap(traderr.KindConnection, ErrCircuitOpen, b.meta.Name+" suspended after repeated failures").
		WithContext(traderr.Context{Service: b.meta.Name})
}

package resilience

import (
	"context"
	"sync"
	"time"

	"github.com/jonwraymond/tradeops/observe"
	"github.com/jonwraymond/tradeops/traderr"
)

// LimiterConfig configures a Limiter.
type LimiterConfig struct {
	// Rate is the sustained number of calls per second the platform
	// tolerates.
	// Default: 100
	Rate float64

	// Burst is the bucket capacity, the number of calls that may go
	// out back to back after an idle period.
	// Default: 10
	Burst int

	// WaitOnLimit makes Execute wait for capacity instead of
	// rejecting immediately.
	// Default: false
	WaitOnLimit bool

	// MaxWait bounds how long a waiting call may be held. A call
	// whose reservation cannot be honored within MaxWait is rejected
	// up front rather than held and then refused.
	// Default: 1 second
	MaxWait time.Duration
}

// Limiter throttles outbound calls to one trading platform with a
// token bucket, so the platform's own rate limits are respected
// before a request ever leaves the process.
//
// Rejections surface as classified rate-limited errors wrapping
// ErrRateLimitExceeded, keyed to the throttled service, so retry
// policies treat them uniformly with platform-side 429s.
type Limiter struct {
	meta   observe.ServiceMeta
	config LimiterConfig

	mu sync.Mutex
	// level is the token balance. Reservations made by WaitN drive
	// it negative until refill pays them back.
	level float64
	at    time.Time
}

// NewLimiter creates a Limiter throttling calls to the service
// described by meta.
func NewLimiter(meta observe.ServiceMeta, config LimiterConfig) *Limiter {
	if config.Rate <= 0 {
		config.Rate = 100
	}
	if config.Burst <= 0 {
		config.Burst = 10
	}
	if config.MaxWait <= 0 {
		config.MaxWait = time.Second
	}

	return &Limiter{
		meta:   meta,
		config: config,
		level:  float64(config.Burst),
		at:     time.Now(),
	}
}

// Allow reports whether one call may proceed now, consuming a token
// if so.
func (l *Limiter) Allow() bool {
	return l.AllowN(1)
}

// AllowN reports whether n calls may proceed now, consuming n tokens
// if so.
func (l *Limiter) AllowN(n int) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.advanceLocked(time.Now())
	if l.level < float64(n) {
		return false
	}
	l.level -= float64(n)
	return true
}

// Wait reserves one token, holding the caller until the reservation
// matures or ctx is done.
func (l *Limiter) Wait(ctx context.Context) error {
	return l.WaitN(ctx, 1)
}

// WaitN reserves n tokens. If the bucket cannot cover them within
// MaxWait the call is rejected immediately; otherwise the tokens are
// debited up front and the caller sleeps until refill has paid the
// reservation back. Cancelling ctx returns the reserved tokens.
func (l *Limiter) WaitN(ctx context.Context, n int) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if n > l.config.Burst {
		// Can never be satisfied.
		return l.rejection()
	}

	l.mu.Lock()
	l.advanceLocked(time.Now())
	if l.level >= float64(n) {
		l.level -= float64(n)
		l.mu.Unlock()
		return nil
	}

	shortfall := float64(n) - l.level
	hold := time.Duration(shortfall / l.config.Rate * float64(time.Second))
	if hold > l.config.MaxWait {
		l.mu.Unlock()
		return l.rejection()
	}
	l.level -= float64(n)
	l.mu.Unlock()

	timer := time.NewTimer(hold)
	defer timer.Stop()

	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		l.mu.Lock()
		l.advanceLocked(time.Now())
		l.level += float64(n)
		if l.level > float64(l.config.Burst) {
			l.level = float64(l.config.Burst)
		}
		l.mu.Unlock()
		return ctx.Err()
	}
}

// Execute runs op once the limiter admits it, waiting for capacity
// when WaitOnLimit is set and rejecting otherwise.
func (l *Limiter) Execute(ctx context.Context, op func(context.Context) error) error {
	if l.config.WaitOnLimit {
		if err := l.Wait(ctx); err != nil {
			return err
		}
	} else if !l.Allow() {
		return l.rejection()
	}

	return op(ctx)
}

// Tokens returns the current token balance. Outstanding reservations
// make it negative.
func (l *Limiter) Tokens() float64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.advanceLocked(time.Now())
	return l.level
}

// Reset refills the bucket to capacity and forgets reservations.
func (l *Limiter) Reset() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.level = float64(l.config.Burst)
	l.at = time.Now()
}

// advanceLocked credits tokens accrued since the last advance,
// capped at the burst capacity.
func (l *Limiter) advanceLocked(now time.Time) {
	elapsed := now.Sub(l.at)
	l.at = now

	l.level += elapsed.Seconds() * l.config.Rate
	if l.level > float64(l.config.Burst) {
		l.level = float64(l.config.Burst)
	}
}

func (l *Limiter) rejection() error {
	return traderr.Wrap(traderr.KindRateLimited, ErrRateLimitExceeded, l.meta.Name+" client-side throttle").
		WithContext(traderr.Context{Service: l.meta.Name})
}

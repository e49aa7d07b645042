package resilience

import (
	"math/rand"
	"time"

	"github.com/jonwraymond/tradeops/traderr"
)

// Policy describes retry behavior for outbound platform calls. It is an
// immutable configuration value; the zero value gets sensible defaults
// applied when used.
type Policy struct {
	// MaxAttempts is the total number of attempts, including the first.
	// Default: 3
	MaxAttempts int

	// BaseDelay is the delay before the first retry.
	// Default: 1s
	BaseDelay time.Duration

	// Exponential doubles the delay for each subsequent retry.
	// Default: true via the presets; the zero value retries at BaseDelay.
	Exponential bool

	// MaxDelay caps the delay between retries.
	// Default: 30s
	MaxDelay time.Duration

	// RetryableKinds is the set of error kinds worth retrying. An empty
	// set degrades to a single attempt regardless of MaxAttempts.
	RetryableKinds []traderr.Kind

	// Jitter adds up to 25% randomness to delays to prevent thundering
	// herd against a recovering platform.
	Jitter bool
}

// StandardPolicy is the default policy for platform calls: three
// attempts with exponential backoff on transient failures.
func StandardPolicy() Policy {
	return Policy{
		MaxAttempts:    3,
		BaseDelay:      time.Second,
		Exponential:    true,
		MaxDelay:       10 * time.Second,
		RetryableKinds: traderr.Transient(),
	}
}

// FastPolicy suits latency-sensitive paths such as price quotes: one
// quick retry, then give up.
func FastPolicy() Policy {
	return Policy{
		MaxAttempts:    2,
		BaseDelay:      500 * time.Millisecond,
		Exponential:    true,
		MaxDelay:       2 * time.Second,
		RetryableKinds: traderr.Transient(),
	}
}

// ConnectionPolicy suits connection establishment, where sustained
// retrying is worth the wait.
func ConnectionPolicy() Policy {
	return Policy{
		MaxAttempts:    5,
		BaseDelay:      2 * time.Second,
		Exponential:    true,
		MaxDelay:       30 * time.Second,
		RetryableKinds: []traderr.Kind{traderr.KindConnection},
	}
}

// normalized returns a copy of p with defaults applied and invalid
// values clamped. Attempt count is always at least one; delays are
// never negative.
func (p Policy) normalized() Policy {
	if p.MaxAttempts <= 0 {
		p.MaxAttempts = 3
	}
	if p.BaseDelay < 0 {
		p.BaseDelay = 0
	}
	if p.MaxDelay <= 0 {
		p.MaxDelay = 30 * time.Second
	}
	return p
}

// Retryable reports whether kind is in the policy's retryable set.
func (p Policy) Retryable(kind traderr.Kind) bool {
	for _, k := range p.RetryableKinds {
		if k == kind {
			return true
		}
	}
	return false
}

// Delay returns the wait before the retry with the given zero-based
// index: BaseDelay * 2^retry when exponential, BaseDelay otherwise,
// capped at MaxDelay.
func (p Policy) Delay(retry int) time.Duration {
	delay := p.BaseDelay
	if p.Exponential {
		for i := 0; i < retry; i++ {
			delay *= 2
			if p.MaxDelay > 0 && delay >= p.MaxDelay {
				break
			}
		}
	}
	if p.MaxDelay > 0 && delay > p.MaxDelay {
		delay = p.MaxDelay
	}
	if n := int64(delay / 4); p.Jitter && n > 0 {
		// #nosec G404 -- jitter is non-cryptographic timing variance.
		delay += time.Duration(rand.Int63n(n))
	}
	return delay
}

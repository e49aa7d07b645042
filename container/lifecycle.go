package container

import (
	"context"
	"sync"

	"golang.org/x/sync/singleflight"
)

// Service is the lifecycle contract implemented by connection-backed
// services (exchange clients, database managers, message gateways).
//
// Contract:
// - Initialize must be safe to call on an already initialized service;
//   the actual connection work happens at most once per lifecycle cycle.
// - Shutdown must be safe to call even if Initialize never ran.
// - Ready reports whether the underlying connection is usable.
type Service interface {
	Initialize(ctx context.Context) error
	Shutdown(ctx context.Context) error
	Ready() bool
}

// State is the lifecycle state of a managed service.
type State int

const (
	// StateUninitialized means Initialize has not been attempted.
	StateUninitialized State = iota
	// StateInitializing means an Initialize attempt is in flight.
	StateInitializing
	// StateReady means Initialize succeeded.
	StateReady
	// StateFailed means the last Initialize attempt failed. A fresh
	// EnsureInitialized call may retry.
	StateFailed
	// StateShuttingDown means Shutdown is in flight.
	StateShuttingDown
	// StateShutdown means Shutdown completed.
	StateShutdown
)

// String returns the string representation of the state.
func (s State) String() string {
	switch s {
	case StateUninitialized:
		return "uninitialized"
	case StateInitializing:
		return "initializing"
	case StateReady:
		return "ready"
	case StateFailed:
		return "failed"
	case StateShuttingDown:
		return "shutting_down"
	case StateShutdown:
		return "shutdown"
	default:
		return "unknown"
	}
}

// Runner wraps a Service with guarded, idempotent initialization and
// lifecycle state tracking. Concurrent EnsureInitialized callers await
// one shared attempt rather than racing the underlying connect logic.
type Runner struct {
	svc Service

	mu    sync.Mutex
	state State
	group singleflight.Group
}

// NewRunner wraps svc in a Runner.
func NewRunner(svc Service) *Runner {
	return &Runner{svc: svc}
}

// Service returns the wrapped service.
func (r *Runner) Service() Service {
	return r.svc
}

// State returns the current lifecycle state.
func (r *Runner) State() State {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state
}

func (r *Runner) setState(s State) {
	r.mu.Lock()
	r.state = s
	r.mu.Unlock()
}

// EnsureInitialized initializes the service exactly once. Concurrent
// and duplicate calls share a single in-flight attempt; calls against
// an already Ready service return immediately. A Failed service may be
// retried by calling again.
func (r *Runner) EnsureInitialized(ctx context.Context) error {
	r.mu.Lock()
	if r.state == StateReady {
		r.mu.Unlock()
		return nil
	}
	r.mu.Unlock()

	_, err, _ := r.group.Do("initialize", func() (any, error) {
		r.mu.Lock()
		if r.state == StateReady {
			r.mu.Unlock()
			return nil, nil
		}
		r.state = StateInitializing
		r.mu.Unlock()

		if err := r.svc.Initialize(ctx); err != nil {
			r.setState(StateFailed)
			return nil, err
		}
		r.setState(StateReady)
		return nil, nil
	})
	return err
}

// Shutdown shuts the service down. Safe to call regardless of whether
// initialization ever ran or succeeded.
func (r *Runner) Shutdown(ctx context.Context) error {
	r.setState(StateShuttingDown)
	err := r.svc.Shutdown(ctx)
	r.setState(StateShutdown)
	return err
}

// Ready reports whether the service is Ready and its connection usable.
func (r *Runner) Ready() bool {
	return r.State() == StateReady && r.svc.Ready()
}

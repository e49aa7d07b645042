package container

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"golang.org/x/sync/singleflight"

	"github.com/jonwraymond/tradeops/observe"
)

// Factory constructs a service instance. The resolved dependencies are
// passed in the order they were declared at registration.
type Factory func(ctx context.Context, deps []any) (any, error)

// Config configures a Container.
type Config struct {
	// Logger receives registration, construction, init, and shutdown
	// events. Default: discard
	Logger observe.Logger
}

// Container holds named services, resolves dependency graphs, and
// drives ordered initialization and shutdown. Each name is constructed
// at most once; instances are owned exclusively by the container.
type Container struct {
	logger observe.Logger

	mu       sync.Mutex
	entries  map[string]*entry
	regOrder []string // registration order, for deterministic InitializeAll
	built    []string // construction order, reversed for ShutdownAll
	group    singleflight.Group
}

type entry struct {
	name     string
	factory  Factory
	deps     []string
	instance any
	runner   *Runner // non-nil when the instance implements Service
	done     bool
}

// New creates an empty container.
func New(cfg Config) *Container {
	if cfg.Logger == nil {
		cfg.Logger = observe.NopLogger()
	}
	return &Container{
		logger:  cfg.Logger,
		entries: make(map[string]*entry),
	}
}

// RegisterSingleton stores a pre-built instance under name. The
// instance counts as constructed immediately, so it participates in
// shutdown ordering ahead of factory-built services that depend on it.
func (c *Container) RegisterSingleton(name string, instance any) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.entries[name]; exists {
		return fmt.Errorf("%w: %s", ErrAlreadyRegistered, name)
	}

	e := &entry{name: name, instance: instance, done: true}
	if svc, ok := instance.(Service); ok {
		e.runner = NewRunner(svc)
	}
	c.entries[name] = e
	c.regOrder = append(c.regOrder, name)
	c.built = append(c.built, name)

	c.logger.Debug(context.Background(), "service registered",
		observe.Field{Key: "service", Value: name},
		observe.Field{Key: "mode", Value: "singleton"},
	)
	return nil
}

// RegisterFactory stores a lazy constructor plus its ordered dependency
// name list. Dependencies are resolved recursively on first Get.
func (c *Container) RegisterFactory(name string, factory Factory, deps ...string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.entries[name]; exists {
		return fmt.Errorf("%w: %s", ErrAlreadyRegistered, name)
	}

	c.entries[name] = &entry{name: name, factory: factory, deps: deps}
	c.regOrder = append(c.regOrder, name)

	c.logger.Debug(context.Background(), "service registered",
		observe.Field{Key: "service", Value: name},
		observe.Field{Key: "mode", Value: "factory"},
		observe.Field{Key: "dependencies", Value: deps},
	)
	return nil
}

// Has reports whether name is registered.
func (c *Container) Has(name string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.entries[name]
	return ok
}

// Names returns all registered names in registration order.
func (c *Container) Names() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	names := make([]string, len(c.regOrder))
	copy(names, c.regOrder)
	return names
}

// Get returns the instance registered under name, constructing it (and
// its dependency chain) on first resolution. Concurrent Gets on the
// same unconstructed name share a single construction.
func (c *Container) Get(ctx context.Context, name string) (any, error) {
	return c.resolve(ctx, name, nil)
}

// Get resolves name from c and asserts its type.
func Get[T any](ctx context.Context, c *Container, name string) (T, error) {
	var zero T
	v, err := c.resolve(ctx, name, nil)
	if err != nil {
		return zero, err
	}
	typed, ok := v.(T)
	if !ok {
		return zero, fmt.Errorf("%w: %s is %T", ErrWrongType, name, v)
	}
	return typed, nil
}

// resolve walks the dependency graph depth-first. The stack carries the
// names currently under construction on this resolution path; hitting
// one again is a cycle.
func (c *Container) resolve(ctx context.Context, name string, stack []string) (any, error) {
	c.mu.Lock()
	e, ok := c.entries[name]
	if ok && e.done {
		instance := e.instance
		c.mu.Unlock()
		return instance, nil
	}
	c.mu.Unlock()

	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotRegistered, name)
	}

	for _, s := range stack {
		if s == name {
			return nil, fmt.Errorf("%w: %s", ErrCycle, strings.Join(append(stack, name), " -> "))
		}
	}

	// Check the declared graph before joining a flight. The stack only
	// covers this goroutine's own path; a cycle resolved concurrently
	// from both ends would otherwise leave each goroutine waiting inside
	// the other's flight.
	if len(stack) == 0 {
		if cycle := c.findCycle(name); cycle != nil {
			return nil, fmt.Errorf("%w: %s", ErrCycle, strings.Join(cycle, " -> "))
		}
	}

	// Single-flight per name: concurrent resolutions of the same
	// unconstructed service serialize, while independent services
	// construct in parallel.
	v, err, _ := c.group.Do(name, func() (any, error) {
		c.mu.Lock()
		if e.done {
			instance := e.instance
			c.mu.Unlock()
			return instance, nil
		}
		c.mu.Unlock()

		deps := make([]any, len(e.deps))
		for i, depName := range e.deps {
			dep, err := c.resolve(ctx, depName, append(stack, name))
			if err != nil {
				return nil, err
			}
			deps[i] = dep
		}

		instance, err := e.factory(ctx, deps)
		if err != nil {
			return nil, fmt.Errorf("container: constructing %s: %w", name, err)
		}

		c.mu.Lock()
		e.instance = instance
		if svc, ok := instance.(Service); ok {
			e.runner = NewRunner(svc)
		}
		e.done = true
		c.built = append(c.built, name)
		c.mu.Unlock()

		c.logger.Info(ctx, "service constructed",
			observe.Field{Key: "service", Value: name},
		)
		return instance, nil
	})
	if err != nil {
		return nil, err
	}
	return v, nil
}

// findCycle walks the declared dependency graph from name and returns
// the first cycle found as a name chain, or nil. Constructed entries
// terminate their branch: their dependencies are never re-resolved.
func (c *Container) findCycle(name string) []string {
	c.mu.Lock()
	deps := make(map[string][]string, len(c.entries))
	for n, e := range c.entries {
		if !e.done {
			deps[n] = e.deps
		}
	}
	c.mu.Unlock()

	var walk func(n string, path []string) []string
	walk = func(n string, path []string) []string {
		for i, p := range path {
			if p == n {
				return append(path[i:], n)
			}
		}
		path = append(path, n)
		for _, d := range deps[n] {
			if cycle := walk(d, path); cycle != nil {
				return cycle
			}
		}
		return nil
	}
	return walk(name, nil)
}

// EnsureInitialized resolves name and, if it carries a lifecycle,
// initializes it (idempotently). Services without a lifecycle contract
// are considered trivially initialized.
func (c *Container) EnsureInitialized(ctx context.Context, name string) error {
	if _, err := c.resolve(ctx, name, nil); err != nil {
		return err
	}

	c.mu.Lock()
	runner := c.entries[name].runner
	c.mu.Unlock()

	if runner == nil {
		return nil
	}
	return runner.EnsureInitialized(ctx)
}

// State returns the lifecycle state of name, or StateUninitialized for
// services without a lifecycle contract or not yet constructed.
func (c *Container) State(name string) State {
	c.mu.Lock()
	defer c.mu.Unlock()
	if e, ok := c.entries[name]; ok && e.runner != nil {
		return e.runner.State()
	}
	return StateUninitialized
}

// InitializeAll constructs and initializes every registered service in
// registration order. A single failure does not abort the rest; the
// returned map carries the per-service outcome (nil on success) so the
// caller decides whether to abort or run degraded.
func (c *Container) InitializeAll(ctx context.Context) map[string]error {
	results := make(map[string]error, len(c.entries))

	for _, name := range c.Names() {
		err := c.EnsureInitialized(ctx, name)
		results[name] = err

		if err != nil {
			c.logger.Error(ctx, "service initialization failed",
				observe.Field{Key: "service", Value: name},
				observe.Field{Key: "error", Value: err.Error()},
			)
		} else {
			c.logger.Info(ctx, "service initialized",
				observe.Field{Key: "service", Value: name},
			)
		}
	}

	return results
}

// ShutdownAll shuts down every constructed (not merely registered)
// service with a lifecycle contract, in reverse construction order.
// Per-service shutdown errors are logged and swallowed so one failure
// cannot block shutdown of the rest.
func (c *Container) ShutdownAll(ctx context.Context) {
	c.mu.Lock()
	order := make([]string, len(c.built))
	copy(order, c.built)
	c.mu.Unlock()

	for i := len(order) - 1; i >= 0; i-- {
		name := order[i]

		c.mu.Lock()
		runner := c.entries[name].runner
		c.mu.Unlock()

		if runner == nil {
			continue
		}

		if err := runner.Shutdown(ctx); err != nil {
			c.logger.Error(ctx, "service shutdown failed",
				observe.Field{Key: "service", Value: name},
				observe.Field{Key: "error", Value: err.Error()},
			)
			continue
		}
		c.logger.Info(ctx, "service shut down",
			observe.Field{Key: "service", Value: name},
		)
	}
}

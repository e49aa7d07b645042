// Package container provides named service registration, dependency
// resolution, and ordered lifecycle management for the platform
// services that make up the trading backend.
//
// Services register either as pre-built singletons or as lazy factories
// with an ordered dependency name list. Get resolves a name by
// recursively constructing its dependency chain; each name is
// constructed at most once, with concurrent resolutions of the same
// service collapsing into a single construction. Unknown names and
// cyclic dependency chains are configuration errors surfaced at
// resolution time.
//
// Instances implementing the Service lifecycle contract get guarded,
// idempotent initialization via EnsureInitialized and participate in
// InitializeAll / ShutdownAll: initialization attempts every service
// and reports per-service outcomes, shutdown walks strict reverse
// construction order and never lets one failure block the rest.
//
// # Usage
//
//	c := container.New(container.Config{Logger: logger})
//
//	_ = c.RegisterSingleton("config", cfg)
//	_ = c.RegisterFactory("okx_client", func(ctx context.Context, deps []any) (any, error) {
//	    return okx.NewClient(deps[0].(*config.Settings))
//	}, "config")
//	_ = c.RegisterFactory("trading", func(ctx context.Context, deps []any) (any, error) {
//	    return trading.NewService(deps[0].(*okx.Client)), nil
//	}, "okx_client")
//
//	results := c.InitializeAll(ctx)
//	for name, err := range results {
//	    if err != nil {
//	        log.Printf("%s failed to initialize: %v", name, err)
//	    }
//	}
//	defer c.ShutdownAll(ctx)
//
//	svc, err := container.Get[*trading.Service](ctx, c, "trading")
package container

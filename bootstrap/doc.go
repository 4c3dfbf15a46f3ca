// Package bootstrap runs the ingest daemon's lifecycle: components start in
// registration order, configure callbacks wire the business layer, hooks run
// around readiness and shutdown, and components stop in reverse order on
// SIGINT/SIGTERM or context cancellation.
//
//	app, err := bootstrap.NewApp(&cfg)
//	app.RegisterComponent(pool)
//	app.OnConfigure(func(ctx context.Context, a *bootstrap.App[*Config]) error { ... })
//	err = app.Run(ctx)
package bootstrap

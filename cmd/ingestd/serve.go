package main

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/kbukum/ingest/bootstrap"
	"github.com/kbukum/ingest/observability"
	"github.com/kbukum/ingest/server"
	"github.com/kbukum/ingest/server/endpoint"
)

func newServeCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the ingest node",
		Long: `Run the ingest node: load pipeline definitions, start the worker pool and
serve the HTTP API. SIGHUP reloads the pipelines file; SIGINT/SIGTERM
shut down gracefully.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(*configPath)
			if err != nil {
				return err
			}
			return serve(cmd.Context(), cfg)
		},
	}
}

func serve(ctx context.Context, cfg *Config) error {
	app, err := bootstrap.NewApp(cfg)
	if err != nil {
		return err
	}

	var metrics *observability.IngestMetrics
	if cfg.Observability.Tracing.Enabled {
		tp, err := observability.InitTracer(ctx, &cfg.Observability.Tracing)
		if err != nil {
			return err
		}
		app.OnStop(func(ctx context.Context) error { return tp.Shutdown(ctx) })
	}
	if cfg.Observability.Metrics.Enabled {
		mp, err := observability.InitMeter(ctx, &cfg.Observability.Metrics)
		if err != nil {
			return err
		}
		app.OnStop(func(ctx context.Context) error { return mp.Shutdown(ctx) })
		if metrics, err = observability.NewIngestMetrics(observability.Meter(serviceName)); err != nil {
			return err
		}
	}

	rt, err := startRuntime(cfg, app.Logger, metrics)
	if err != nil {
		return err
	}
	srv := server.New(cfg.Server, app.Logger)
	endpoint.Mount(srv.Engine(), endpoint.Handlers{
		ServiceName: app.Name,
		Health:      app.Components.HealthAll,
		Store:       rt.store,
		Registry:    rt.registry,
		Simulator:   rt.simulator,
		Ingest:      rt.service,
	})

	// Pipelines are loaded before any component starts. The pool is
	// registered ahead of the server so the server only accepts requests once
	// the queues run.
	if err := app.RegisterComponent(rt.pool); err != nil {
		return err
	}
	if err := app.RegisterComponent(server.NewComponent(srv)); err != nil {
		return err
	}

	reloadCtx, stopReload := context.WithCancel(ctx)
	defer stopReload()
	app.OnReady(func(context.Context) error {
		rt.reloadOnHangup(reloadCtx, cfg.Pipelines.File)
		return nil
	})
	app.OnStop(func(context.Context) error {
		stopReload()
		return nil
	})

	return app.Run(ctx)
}

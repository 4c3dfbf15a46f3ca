package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/kbukum/ingest/ingest"
	"github.com/kbukum/ingest/logger"
	"github.com/kbukum/ingest/observability"
	"github.com/kbukum/ingest/pipeline"
	"github.com/kbukum/ingest/processor/builtin"
	"github.com/kbukum/ingest/resilience"
	"github.com/kbukum/ingest/simulate"
	"github.com/kbukum/ingest/worker"
)

// runtime is the wired ingest node: pipelines, executor and services.
type runtime struct {
	log       *logger.Logger
	store     *pipeline.MemoryStore
	registry  *pipeline.Registry
	pool      *worker.Pool
	service   *ingest.Service
	simulator *simulate.Simulator
}

func newRuntime(cfg *Config, log *logger.Logger, metrics *observability.IngestMetrics) *runtime {
	rt := &runtime{
		log:      log,
		store:    pipeline.NewMemoryStore(),
		registry: pipeline.NewRegistry(builtin.Factories()),
		pool:     worker.NewPool(cfg.Queues, log),
	}
	opts := []ingest.Option{ingest.WithLogger(log), ingest.WithQueue(worker.QueueBulk)}
	if metrics != nil {
		opts = append(opts, ingest.WithMetrics(metrics))
	}
	rt.service = ingest.NewService(rt.store, rt.pool, opts...)
	rt.simulator = simulate.New(rt.store, rt.registry, log)

	// Stats follow the configured pipeline set.
	rt.store.Subscribe(rt.service.UpdatePipelineStats)
	return rt
}

// startRuntime wires the node and loads the configured pipelines, so every
// definition is in the store before the HTTP server can accept a request.
func startRuntime(cfg *Config, log *logger.Logger, metrics *observability.IngestMetrics) (*runtime, error) {
	rt := newRuntime(cfg, log, metrics)
	if err := rt.loadPipelines(cfg.Pipelines.File); err != nil {
		return nil, err
	}
	return rt, nil
}

// loadPipelines replaces the stored pipelines with the definitions in path.
// Nothing changes when any definition fails to build.
func (rt *runtime) loadPipelines(path string) error {
	if path == "" {
		return nil
	}
	defs, err := pipeline.LoadFile(path)
	if err != nil {
		return err
	}
	pipelines, err := rt.registry.BuildAll(defs)
	if err != nil {
		return err
	}
	rt.store.Replace(pipelines...)
	rt.log.Info("Pipelines loaded", logger.Fields("file", path, logger.FieldItems, len(pipelines)))
	return nil
}

// reloadPipelines loads path, retrying while the file cannot be read.
// Editors that save by rename leave it briefly missing.
func (rt *runtime) reloadPipelines(ctx context.Context, path string) error {
	cfg := resilience.DefaultConfig()
	cfg.RetryIf = resilience.IsPathError
	cfg.OnRetry = func(attempt int, err error, wait time.Duration) {
		rt.log.Warn("Pipelines file unreadable, retrying", logger.Fields(
			"file", path, "attempt", attempt, "wait", wait.String(), logger.FieldError, err.Error()))
	}
	return resilience.Retry(ctx, cfg, func(context.Context) error { return rt.loadPipelines(path) })
}

// reloadOnHangup reloads path on the management queue for every SIGHUP
// until ctx is done.
func (rt *runtime) reloadOnHangup(ctx context.Context, path string) {
	if path == "" {
		return
	}
	hup := make(chan os.Signal, 1)
	signal.Notify(hup, syscall.SIGHUP)
	go func() {
		defer signal.Stop(hup)
		for {
			select {
			case <-ctx.Done():
				return
			case <-hup:
				rt.pool.Submit(worker.QueueManagement, worker.Task{
					Run: func(ctx context.Context) error { return rt.reloadPipelines(ctx, path) },
					OnFailure: func(err error) {
						rt.log.Error("Pipeline reload failed", logger.ErrorFields("reload", err))
					},
				})
			}
		}
	}()
}

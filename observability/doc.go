// Package observability wires OpenTelemetry tracing and metrics for the
// ingest service.
//
// Tracing:
//
//	tp, err := observability.InitTracer(ctx, &cfg.Tracing)
//	defer tp.Shutdown(ctx)
//
//	ctx, span := observability.StartSpan(ctx, observability.SpanPipeline)
//	defer span.End()
//
// Metrics:
//
//	mp, err := observability.InitMeter(ctx, &cfg.Metrics)
//	defer mp.Shutdown(ctx)
//
//	metrics, err := observability.NewIngestMetrics(observability.Meter("ingest"))
//	metrics.RecordStart(ctx, "my-pipeline")
//	metrics.RecordEnd(ctx, "my-pipeline", elapsed, err)
//
// Health:
//
//	health := observability.NewServiceHealth("ingestd", version.GetVersionInfo().Version)
//	health.AddComponent(observability.FromComponent(pool.Health(ctx)))
package observability

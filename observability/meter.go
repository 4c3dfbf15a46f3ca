package observability

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"

	"github.com/kbukum/ingest/logger"
)

// MeterConfig configures the OpenTelemetry meter provider.
type MeterConfig struct {
	// Enabled turns on metric export.
	Enabled bool `yaml:"enabled" mapstructure:"enabled"`
	// ServiceName is the name of the service.
	ServiceName string `yaml:"service_name" mapstructure:"service_name"`
	// ServiceVersion is the version of the service.
	ServiceVersion string `yaml:"service_version" mapstructure:"service_version"`
	// Environment is the deployment environment (dev, staging, prod).
	Environment string `yaml:"environment" mapstructure:"environment"`
	// Endpoint is the OTLP HTTP endpoint host:port (e.g., "localhost:4318").
	Endpoint string `yaml:"endpoint" mapstructure:"endpoint"`
	// Insecure allows insecure connections (for development).
	Insecure bool `yaml:"insecure" mapstructure:"insecure"`
	// Interval is the metric export interval.
	Interval time.Duration `yaml:"interval" mapstructure:"interval"`
}

// DefaultMeterConfig returns sensible defaults for development.
func DefaultMeterConfig(serviceName string) MeterConfig {
	return MeterConfig{
		ServiceName:    serviceName,
		ServiceVersion: "1.0.0",
		Environment:    "development",
		Endpoint:       "localhost:4318",
		Insecure:       true,
		Interval:       15 * time.Second,
	}
}

// InitMeter initializes the OpenTelemetry meter provider.
// Returns a MeterProvider that should be shut down on application exit.
func InitMeter(ctx context.Context, config *MeterConfig) (*sdkmetric.MeterProvider, error) {
	opts := []otlpmetrichttp.Option{
		otlpmetrichttp.WithEndpoint(config.Endpoint),
	}
	if config.Insecure {
		opts = append(opts, otlpmetrichttp.WithInsecure())
	}

	exporter, err := otlpmetrichttp.New(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("creating metric exporter: %w", err)
	}

	res, err := newResource(config.ServiceName, config.ServiceVersion, config.Environment)
	if err != nil {
		return nil, fmt.Errorf("creating resource: %w", err)
	}

	readerOpts := []sdkmetric.PeriodicReaderOption{}
	if config.Interval > 0 {
		readerOpts = append(readerOpts, sdkmetric.WithInterval(config.Interval))
	}

	mp := sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(sdkmetric.NewPeriodicReader(exporter, readerOpts...)),
		sdkmetric.WithResource(res),
	)

	otel.SetMeterProvider(mp)

	logger.Info("meter initialized", logger.Fields(
		"service", config.ServiceName,
		"endpoint", config.Endpoint,
		"interval", config.Interval.String(),
	))

	return mp, nil
}

// Meter returns a named meter from the global provider.
func Meter(name string) metric.Meter {
	return otel.Meter(name)
}

// IngestMetrics mirrors the pipeline statistics on OpenTelemetry
// instruments, keyed by pipeline id.
type IngestMetrics struct {
	documentsTotal   metric.Int64Counter
	documentsFailed  metric.Int64Counter
	documentsCurrent metric.Int64UpDownCounter
	duration         metric.Float64Histogram
	batchesFailed  metric.Int64Counter
}

// NewIngestMetrics creates the instruments on the given meter.
func NewIngestMetrics(meter metric.Meter) (*IngestMetrics, error) {
	documentsTotal, err := meter.Int64Counter("ingest.documents.total",
		metric.WithDescription("Documents run through a pipeline"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating ingest.documents.total counter: %w", err)
	}

	documentsFailed, err := meter.Int64Counter("ingest.documents.failed",
		metric.WithDescription("Documents whose pipeline run failed"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating ingest.documents.failed counter: %w", err)
	}

	documentsCurrent, err := meter.Int64UpDownCounter("ingest.documents.current",
		metric.WithDescription("Documents currently inside a pipeline"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating ingest.documents.current gauge: %w", err)
	}

	duration, err := meter.Float64Histogram("ingest.duration",
		metric.WithDescription("Pipeline run duration per document"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating ingest.duration histogram: %w", err)
	}

	batchesFailed, err := meter.Int64Counter("ingest.batches.failed",
		metric.WithDescription("Batches that ended through the task failure channel"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating ingest.batches.failed counter: %w", err)
	}

	return &IngestMetrics{
		documentsTotal:   documentsTotal,
		documentsFailed:  documentsFailed,
		documentsCurrent: documentsCurrent,
		duration:         duration,
		batchesFailed:  batchesFailed,
	}, nil
}

// RecordStart marks a document entering a pipeline.
func (m *IngestMetrics) RecordStart(ctx context.Context, pipelineID string) {
	m.documentsCurrent.Add(ctx, 1, metric.WithAttributes(attribute.String(AttrPipelineID, pipelineID)))
}

// RecordEnd marks a document leaving a pipeline.
func (m *IngestMetrics) RecordEnd(ctx context.Context, pipelineID string, elapsed time.Duration, err error) {
	attrs := metric.WithAttributes(attribute.String(AttrPipelineID, pipelineID))
	m.documentsCurrent.Add(ctx, -1, attrs)
	m.documentsTotal.Add(ctx, 1, attrs)
	m.duration.Record(ctx, float64(elapsed.Microseconds())/1000, attrs)
	if err != nil {
		m.documentsFailed.Add(ctx, 1, attrs)
	}
}

// RecordBatchFailure counts a batch that failed as a whole.
func (m *IngestMetrics) RecordBatchFailure(ctx context.Context, reason string) {
	m.batchesFailed.Add(ctx, 1, metric.WithAttributes(attribute.String(AttrStatus, reason)))
}

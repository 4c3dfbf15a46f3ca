package main

import (
	"fmt"

	"github.com/kbukum/ingest/config"
	"github.com/kbukum/ingest/observability"
	"github.com/kbukum/ingest/server"
	"github.com/kbukum/ingest/validation"
	"github.com/kbukum/ingest/worker"
)

const serviceName = "ingestd"

// Config is the daemon configuration.
type Config struct {
	config.ServiceConfig `yaml:",inline" mapstructure:",squash"`

	Pipelines     PipelinesConfig               `yaml:"pipelines" mapstructure:"pipelines"`
	Queues        map[string]worker.QueueConfig `yaml:"queues" mapstructure:"queues" validate:"dive"`
	Server        server.Config                 `yaml:"server" mapstructure:"server"`
	Observability ObservabilityConfig           `yaml:"observability" mapstructure:"observability"`
}

// PipelinesConfig points at the pipeline definitions loaded at startup.
type PipelinesConfig struct {
	// File is a YAML definitions file. Empty starts with no pipelines.
	File string `yaml:"file" mapstructure:"file"`
}

// ObservabilityConfig groups the OpenTelemetry exporters.
type ObservabilityConfig struct {
	Tracing observability.TracerConfig `yaml:"tracing" mapstructure:"tracing"`
	Metrics observability.MeterConfig  `yaml:"metrics" mapstructure:"metrics"`
}

// ApplyDefaults fills unset fields.
func (c *Config) ApplyDefaults() {
	if c.Name == "" {
		c.Name = serviceName
	}
	c.ServiceConfig.ApplyDefaults()
	c.Server.ApplyDefaults()

	if c.Queues == nil {
		c.Queues = make(map[string]worker.QueueConfig)
	}
	for _, name := range []string{worker.QueueBulk, worker.QueueManagement} {
		q := c.Queues[name]
		q.ApplyDefaults()
		c.Queues[name] = q
	}

	c.Observability.Tracing = tracerDefaults(c.Observability.Tracing, c.ServiceConfig)
	c.Observability.Metrics = meterDefaults(c.Observability.Metrics, c.ServiceConfig)
}

func tracerDefaults(t observability.TracerConfig, svc config.ServiceConfig) observability.TracerConfig {
	d := observability.DefaultTracerConfig(svc.Name)
	if t.ServiceName == "" {
		t.ServiceName = d.ServiceName
	}
	if t.ServiceVersion == "" {
		t.ServiceVersion = svc.Version
	}
	if t.Environment == "" {
		t.Environment = svc.Environment
	}
	if t.Endpoint == "" {
		t.Endpoint, t.Insecure = d.Endpoint, d.Insecure
	}
	if t.SampleRate == 0 {
		t.SampleRate = d.SampleRate
	}
	return t
}

func meterDefaults(m observability.MeterConfig, svc config.ServiceConfig) observability.MeterConfig {
	d := observability.DefaultMeterConfig(svc.Name)
	if m.ServiceName == "" {
		m.ServiceName = d.ServiceName
	}
	if m.ServiceVersion == "" {
		m.ServiceVersion = svc.Version
	}
	if m.Environment == "" {
		m.Environment = svc.Environment
	}
	if m.Endpoint == "" {
		m.Endpoint, m.Insecure = d.Endpoint, d.Insecure
	}
	if m.Interval == 0 {
		m.Interval = d.Interval
	}
	return m
}

// Validate checks the configuration.
func (c *Config) Validate() error {
	if err := c.ServiceConfig.Validate(); err != nil {
		return err
	}
	if err := c.Server.Validate(); err != nil {
		return err
	}
	if err := validation.Validate(c); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	return nil
}

// loadConfig reads the configuration for the daemon. path may be empty.
func loadConfig(path string) (*Config, error) {
	var opts []config.LoaderOption
	if path != "" {
		opts = append(opts, config.WithConfigFile(path))
	}
	cfg := &Config{}
	if err := config.LoadConfig(serviceName, cfg, opts...); err != nil {
		return nil, err
	}
	return cfg, nil
}

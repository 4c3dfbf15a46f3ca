package main

import (
	"bytes"
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/kbukum/ingest/ingest"
	"github.com/kbukum/ingest/logger"
	"github.com/kbukum/ingest/worker"
)

const pipelinesYAML = `
pipelines:
  - id: users
    processors:
      - lowercase: {field: email}
  - id: tagged
    processors:
      - set: {field: source, value: api}
`

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestConfig_Defaults(t *testing.T) {
	cfg := &Config{}
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Name != serviceName || cfg.Server.Port != 9200 {
		t.Errorf("unexpected defaults %+v", cfg.ServiceConfig)
	}
	for _, q := range []string{worker.QueueBulk, worker.QueueManagement} {
		if c := cfg.Queues[q]; c.Workers != 1 || c.Size != 100 {
			t.Errorf("queue %s: unexpected config %+v", q, c)
		}
	}
	if cfg.Observability.Tracing.ServiceName != serviceName || cfg.Observability.Metrics.Interval == 0 {
		t.Errorf("unexpected observability defaults %+v", cfg.Observability)
	}
}

func TestConfig_Invalid(t *testing.T) {
	cfg := &Config{}
	cfg.ApplyDefaults()
	cfg.Observability.Tracing.SampleRate = 2
	if err := cfg.Validate(); err == nil {
		t.Error("expected error for sample rate above 1")
	}
}

func TestLoadConfig(t *testing.T) {
	path := writeFile(t, "config.yml", `
name: ingestd
environment: production
pipelines:
  file: /etc/ingestd/pipelines.yml
queues:
  bulk:
    workers: 4
    size: 500
server:
  port: 9300
`)
	cfg, err := loadConfig(path)
	if err != nil {
		t.Fatal(err)
	}
	cfg.ApplyDefaults()
	if cfg.Environment != "production" || cfg.Pipelines.File != "/etc/ingestd/pipelines.yml" {
		t.Errorf("unexpected config %+v", cfg)
	}
	if cfg.Queues[worker.QueueBulk].Workers != 4 || cfg.Queues[worker.QueueManagement].Size != 100 {
		t.Errorf("unexpected queues %+v", cfg.Queues)
	}
	if cfg.Server.Port != 9300 {
		t.Errorf("expected port 9300, got %d", cfg.Server.Port)
	}
}

func TestRuntime_LoadAndIngest(t *testing.T) {
	cfg := &Config{}
	cfg.ApplyDefaults()
	rt := newRuntime(cfg, logger.Nop(), nil)

	if err := rt.loadPipelines(writeFile(t, "pipelines.yml", pipelinesYAML)); err != nil {
		t.Fatal(err)
	}
	if got := rt.service.TrackedPipelines(); strings.Join(got, ",") != "tagged,users" {
		t.Fatalf("stats should follow the store, got %v", got)
	}

	ctx := context.Background()
	if err := rt.pool.Start(ctx); err != nil {
		t.Fatal(err)
	}
	defer rt.pool.Stop(ctx)

	req := &ingest.IndexRequest{Index: "people", ID: "1", Pipeline: "users", Source: map[string]any{"email": "A@B.C"}}
	result := <-rt.service.Execute([]*ingest.IndexRequest{req})
	if result.Err != nil || req.Source["email"] != "a@b.c" {
		t.Errorf("unexpected result %+v, source %v", result, req.Source)
	}

	// a broken file leaves the loaded pipelines in place
	if err := rt.loadPipelines(writeFile(t, "bad.yml", "pipelines:\n  - id: x\n    processors:\n      - nope: {}\n")); err == nil {
		t.Fatal("expected build error")
	}
	if len(rt.store.IDs()) != 2 {
		t.Errorf("expected pipelines to survive a failed reload, got %v", rt.store.IDs())
	}
}

func TestStartRuntime_LoadsPipelinesFirst(t *testing.T) {
	cfg := &Config{}
	cfg.ApplyDefaults()
	cfg.Pipelines.File = writeFile(t, "pipelines.yml", pipelinesYAML)

	rt, err := startRuntime(cfg, logger.Nop(), nil)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := rt.store.Get("users"); err != nil {
		t.Errorf("pipelines should be stored before any component starts: %v", err)
	}
	if got := rt.service.TrackedPipelines(); len(got) != 2 {
		t.Errorf("expected stats for 2 pipelines, got %v", got)
	}

	cfg.Pipelines.File = writeFile(t, "bad.yml", "pipelines:\n  - id: x\n    processors:\n      - nope: {}\n")
	if _, err := startRuntime(cfg, logger.Nop(), nil); err == nil {
		t.Error("expected a broken definitions file to stop startup")
	}
}

func TestRuntime_ReloadPipelines(t *testing.T) {
	cfg := &Config{}
	cfg.ApplyDefaults()
	rt := newRuntime(cfg, logger.Nop(), nil)
	ctx := context.Background()

	missing := filepath.Join(t.TempDir(), "missing.yml")
	err := rt.reloadPipelines(ctx, missing)
	var pe *fs.PathError
	if !errors.As(err, &pe) {
		t.Fatalf("expected path error after retries, got %v", err)
	}

	if err := rt.reloadPipelines(ctx, writeFile(t, "pipelines.yml", pipelinesYAML)); err != nil {
		t.Fatal(err)
	}
	if len(rt.store.IDs()) != 2 {
		t.Errorf("expected 2 pipelines, got %v", rt.store.IDs())
	}
}

func TestCommands(t *testing.T) {
	pipelines := writeFile(t, "pipelines.yml", pipelinesYAML)
	docs := writeFile(t, "docs.json", `[{"_id": "1", "_source": {"email": "X@Y.Z"}}]`)

	tests := []struct {
		name string
		args []string
		want string
	}{
		{"validate", []string{"validate", pipelines}, "ok  users"},
		{"simulate", []string{"simulate", "--pipelines", pipelines, "--id", "users", "--docs", docs}, `"email": "x@y.z"`},
		{"version", []string{"version"}, "dev"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out bytes.Buffer
			cmd := newRootCmd()
			cmd.SetOut(&out)
			cmd.SetErr(&out)
			cmd.SetArgs(tt.args)
			if err := cmd.ExecuteContext(context.Background()); err != nil {
				t.Fatalf("unexpected error: %v (%s)", err, out.String())
			}
			if !strings.Contains(out.String(), tt.want) {
				t.Errorf("expected output to contain %q, got %s", tt.want, out.String())
			}
		})
	}
}

func TestSimulateCommand_UnknownPipeline(t *testing.T) {
	cmd := newRootCmd()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{
		"simulate",
		"--pipelines", writeFile(t, "pipelines.yml", pipelinesYAML),
		"--id", "nope",
		"--docs", writeFile(t, "docs.json", `[{"_source": {}}]`),
	})
	if err := cmd.ExecuteContext(context.Background()); err == nil {
		t.Error("expected error for unknown pipeline")
	}
}

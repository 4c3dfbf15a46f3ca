package bootstrap

import (
	"context"
	"errors"
	"reflect"
	"testing"
	"time"

	"github.com/kbukum/ingest/component"
	"github.com/kbukum/ingest/config"
	"github.com/kbukum/ingest/logger"
)

type testConfig struct {
	config.ServiceConfig
}

type fakeComponent struct {
	name     string
	startErr error
	status   component.HealthStatus
	events   *[]string
}

func (f *fakeComponent) Name() string { return f.name }
func (f *fakeComponent) Start(context.Context) error {
	*f.events = append(*f.events, "start "+f.name)
	return f.startErr
}
func (f *fakeComponent) Stop(context.Context) error {
	*f.events = append(*f.events, "stop "+f.name)
	return nil
}
func (f *fakeComponent) Health(context.Context) component.Health {
	return component.Health{Name: f.name, Status: f.status}
}

func newTestApp(t *testing.T) *App[*testConfig] {
	t.Helper()
	app, err := NewApp(&testConfig{config.ServiceConfig{Name: "ingestd", Version: "1.2.3"}},
		WithLogger(logger.Nop()), WithGracefulTimeout(time.Second))
	if err != nil {
		t.Fatalf("NewApp failed: %v", err)
	}
	return app
}

func TestNewApp(t *testing.T) {
	app := newTestApp(t)
	if app.Name != "ingestd" || app.Version != "1.2.3" {
		t.Errorf("unexpected app %s/%s", app.Name, app.Version)
	}
	if app.Cfg.Environment != "development" {
		t.Errorf("defaults not applied: %q", app.Cfg.Environment)
	}
	if app.gracefulTimeout != time.Second {
		t.Errorf("expected 1s timeout, got %v", app.gracefulTimeout)
	}

	if _, err := NewApp(&testConfig{}); err == nil {
		t.Error("expected validation error for missing name")
	}
}

func TestApp_RunTaskLifecycle(t *testing.T) {
	app := newTestApp(t)
	var events []string
	record := func(name string) Hook {
		return func(context.Context) error {
			events = append(events, name)
			return nil
		}
	}
	_ = app.RegisterComponent(&fakeComponent{name: "worker-pool", status: component.StatusHealthy, events: &events})
	_ = app.RegisterComponent(&fakeComponent{name: "http-server", status: component.StatusHealthy, events: &events})
	app.OnStart(record("onStart"))
	app.OnConfigure(func(_ context.Context, a *App[*testConfig]) error {
		events = append(events, "configure "+a.Cfg.Name)
		return nil
	})
	app.OnReady(record("onReady"))
	app.OnStop(record("onStop"))

	err := app.RunTask(context.Background(), func(context.Context) error {
		events = append(events, "task")
		return nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []string{
		"start worker-pool", "start http-server", "onStart", "configure ingestd", "onReady",
		"task", "onStop", "stop http-server", "stop worker-pool",
	}
	if !reflect.DeepEqual(events, want) {
		t.Errorf("expected %v, got %v", want, events)
	}
}

func TestApp_RunTaskError(t *testing.T) {
	app := newTestApp(t)
	boom := errors.New("boom")
	if err := app.RunTask(context.Background(), func(context.Context) error { return boom }); !errors.Is(err, boom) {
		t.Errorf("expected task error, got %v", err)
	}
}

func TestApp_StartupFailureStopsStarted(t *testing.T) {
	app := newTestApp(t)
	var events []string
	_ = app.RegisterComponent(&fakeComponent{name: "a", events: &events})
	_ = app.RegisterComponent(&fakeComponent{name: "b", startErr: errors.New("port in use"), events: &events})

	if err := app.Run(context.Background()); err == nil {
		t.Fatal("expected startup error")
	}
	want := []string{"start a", "start b", "stop a"}
	if !reflect.DeepEqual(events, want) {
		t.Errorf("expected %v, got %v", want, events)
	}
}

func TestApp_ConfigureError(t *testing.T) {
	app := newTestApp(t)
	app.OnConfigure(func(context.Context, *App[*testConfig]) error { return errors.New("bad pipelines") })
	if err := app.RunTask(context.Background(), func(context.Context) error { return nil }); err == nil {
		t.Error("expected configure error")
	}
}

func TestApp_RunStopsOnContextCancel(t *testing.T) {
	app := newTestApp(t)
	var events []string
	_ = app.RegisterComponent(&fakeComponent{name: "a", status: component.StatusHealthy, events: &events})

	ctx, cancel := context.WithCancel(context.Background())
	app.OnReady(func(context.Context) error {
		cancel()
		return nil
	})
	if err := app.Run(ctx); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !reflect.DeepEqual(events, []string{"start a", "stop a"}) {
		t.Errorf("unexpected events %v", events)
	}
}

func TestApp_ReadyCheck(t *testing.T) {
	app := newTestApp(t)
	var events []string
	_ = app.RegisterComponent(&fakeComponent{name: "ok", status: component.StatusHealthy, events: &events})
	if err := app.ReadyCheck(context.Background()); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	_ = app.RegisterComponent(&fakeComponent{name: "pool", status: component.StatusDegraded, events: &events})
	if err := app.ReadyCheck(context.Background()); err == nil || err.Error() != "unhealthy components: pool=degraded" {
		t.Errorf("unexpected ready check result %v", err)
	}
}

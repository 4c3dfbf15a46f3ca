package worker

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/kbukum/ingest/component"
	apperrors "github.com/kbukum/ingest/errors"
)

func newStartedPool(t *testing.T, cfg map[string]QueueConfig) *Pool {
	t.Helper()
	p := NewPool(cfg, nil)
	if err := p.Start(context.Background()); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	t.Cleanup(func() { _ = p.Stop(context.Background()) })
	return p
}

func isRejected(err error) bool {
	var appErr *apperrors.AppError
	return errors.As(err, &appErr) && appErr.Code == apperrors.ErrCodeRejectedExecution
}

func TestPool_RunsTasks(t *testing.T) {
	p := newStartedPool(t, map[string]QueueConfig{QueueBulk: {Workers: 2, Size: 10}})

	var wg sync.WaitGroup
	var mu sync.Mutex
	count := 0
	for i := 0; i < 5; i++ {
		wg.Add(1)
		p.Submit(QueueBulk, Task{
			Run: func(context.Context) error {
				defer wg.Done()
				mu.Lock()
				count++
				mu.Unlock()
				return nil
			},
			OnFailure: func(err error) { t.Errorf("unexpected failure: %v", err) },
		})
	}
	wg.Wait()
	if count != 5 {
		t.Errorf("expected 5 runs, got %d", count)
	}
}

func TestPool_ErrorAndPanicGoToOnFailure(t *testing.T) {
	p := newStartedPool(t, map[string]QueueConfig{QueueBulk: {Workers: 1, Size: 10}})
	boom := errors.New("boom")

	failures := make(chan error, 2)
	p.Submit(QueueBulk, Task{
		Run:       func(context.Context) error { return boom },
		OnFailure: func(err error) { failures <- err },
	})
	p.Submit(QueueBulk, Task{
		Run:       func(context.Context) error { panic("kaboom") },
		OnFailure: func(err error) { failures <- err },
	})

	if err := <-failures; err != boom {
		t.Errorf("expected boom, got %v", err)
	}
	err := <-failures
	var appErr *apperrors.AppError
	if !errors.As(err, &appErr) || appErr.Code != apperrors.ErrCodeInternal {
		t.Errorf("expected internal error for panic, got %v", err)
	}
}

func TestPool_RejectsWhenFull(t *testing.T) {
	p := newStartedPool(t, map[string]QueueConfig{QueueBulk: {Workers: 1, Size: 1}})

	release := make(chan struct{})
	running := make(chan struct{})
	p.Submit(QueueBulk, Task{Run: func(context.Context) error {
		close(running)
		<-release
		return nil
	}})
	<-running
	p.Submit(QueueBulk, Task{Run: func(context.Context) error { return nil }})

	var rejected error
	p.Submit(QueueBulk, Task{
		Run:       func(context.Context) error { t.Error("rejected task must not run"); return nil },
		OnFailure: func(err error) { rejected = err },
	})
	close(release)

	if !isRejected(rejected) {
		t.Fatalf("expected rejection, got %v", rejected)
	}
	if p.Stats()[QueueBulk].Rejected != 1 {
		t.Errorf("expected 1 rejection, got %d", p.Stats()[QueueBulk].Rejected)
	}
}

func TestPool_RejectsUnknownQueueAndAfterStop(t *testing.T) {
	p := NewPool(map[string]QueueConfig{QueueBulk: {}}, nil)
	if err := p.Start(context.Background()); err != nil {
		t.Fatal(err)
	}

	var err error
	p.Submit("nope", Task{OnFailure: func(e error) { err = e }})
	if !isRejected(err) {
		t.Errorf("expected rejection for unknown queue, got %v", err)
	}

	if stopErr := p.Stop(context.Background()); stopErr != nil {
		t.Fatal(stopErr)
	}
	err = nil
	p.Submit(QueueBulk, Task{OnFailure: func(e error) { err = e }})
	if !isRejected(err) {
		t.Errorf("expected rejection after stop, got %v", err)
	}
}

func TestPool_StopDrainsQueuedTasks(t *testing.T) {
	p := NewPool(map[string]QueueConfig{QueueBulk: {Workers: 1, Size: 10}}, nil)
	if err := p.Start(context.Background()); err != nil {
		t.Fatal(err)
	}
	var mu sync.Mutex
	ran := 0
	for i := 0; i < 3; i++ {
		p.Submit(QueueBulk, Task{Run: func(context.Context) error {
			time.Sleep(time.Millisecond)
			mu.Lock()
			ran++
			mu.Unlock()
			return nil
		}})
	}
	if err := p.Stop(context.Background()); err != nil {
		t.Fatal(err)
	}
	if ran != 3 {
		t.Errorf("expected queued tasks to drain, ran %d", ran)
	}
}

func TestPool_StopWithoutStartRejectsQueued(t *testing.T) {
	p := NewPool(map[string]QueueConfig{QueueBulk: {Workers: 1, Size: 10}}, nil)
	var err error
	p.Submit(QueueBulk, Task{OnFailure: func(e error) { err = e }})
	if stopErr := p.Stop(context.Background()); stopErr != nil {
		t.Fatal(stopErr)
	}
	if !isRejected(err) {
		t.Errorf("expected queued task to be rejected, got %v", err)
	}
}

func TestPool_Lifecycle(t *testing.T) {
	p := NewPool(map[string]QueueConfig{QueueBulk: {Workers: 2, Size: 5}, QueueManagement: {}}, nil)
	if h := p.Health(context.Background()); h.Status != component.StatusUnhealthy {
		t.Errorf("expected unhealthy before start, got %s", h.Status)
	}
	if err := p.Start(context.Background()); err != nil {
		t.Fatal(err)
	}
	if err := p.Start(context.Background()); err == nil {
		t.Error("expected error on second start")
	}
	if h := p.Health(context.Background()); h.Status != component.StatusHealthy {
		t.Errorf("expected healthy, got %s", h.Status)
	}
	if d := p.Describe(); d.Details != "bulk=2/5 management=1/100" {
		t.Errorf("unexpected description %q", d.Details)
	}
	if err := p.Stop(context.Background()); err != nil {
		t.Fatal(err)
	}
	if err := p.Stop(context.Background()); err != nil {
		t.Errorf("second stop should be a no-op, got %v", err)
	}
}

func TestCallerRuns(t *testing.T) {
	ran := false
	CallerRuns{}.Submit(QueueBulk, Task{Run: func(context.Context) error { ran = true; return nil }})
	if !ran {
		t.Error("expected synchronous run")
	}

	var err error
	CallerRuns{}.Submit(QueueBulk, Task{
		Run:       func(context.Context) error { panic("x") },
		OnFailure: func(e error) { err = e },
	})
	if err == nil {
		t.Error("expected panic to reach OnFailure")
	}
}

package worker

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"sync/atomic"

	"github.com/kbukum/ingest/component"
	apperrors "github.com/kbukum/ingest/errors"
	"github.com/kbukum/ingest/logger"
)

// Well-known queue names.
const (
	QueueBulk       = "bulk"
	QueueManagement = "management"
)

// Task is one unit of work. OnFailure receives the error returned by Run,
// a recovered panic, or a rejection.
type Task struct {
	Run       func(ctx context.Context) error
	OnFailure func(err error)
}

func (t Task) fail(err error) {
	if t.OnFailure != nil {
		t.OnFailure(err)
	}
}

// Executor accepts tasks on named queues.
type Executor interface {
	Submit(queue string, task Task)
}

// QueueConfig sizes one queue.
type QueueConfig struct {
	// Workers is the number of goroutines serving the queue.
	Workers int `yaml:"workers" mapstructure:"workers" validate:"min=0"`
	// Size is the buffer capacity. Submissions beyond it are rejected.
	Size int `yaml:"size" mapstructure:"size" validate:"min=0"`
}

// ApplyDefaults fills unset fields.
func (c *QueueConfig) ApplyDefaults() {
	if c.Workers <= 0 {
		c.Workers = 1
	}
	if c.Size <= 0 {
		c.Size = 100
	}
}

// QueueStats is a point-in-time view of a queue.
type QueueStats struct {
	Workers   int   `json:"workers"`
	Size      int   `json:"size"`
	Queued    int   `json:"queued"`
	Active    int64 `json:"active"`
	Completed int64 `json:"completed"`
	Rejected  int64 `json:"rejected"`
}

type queue struct {
	name      string
	cfg       QueueConfig
	tasks     chan Task
	active    atomic.Int64
	completed atomic.Int64
	rejected  atomic.Int64
}

// Pool is a set of named queues. It implements component.Component.
type Pool struct {
	queues map[string]*queue
	log    *logger.Logger

	mu      sync.RWMutex
	started bool
	stopped bool
	cancel  context.CancelFunc
	wg      sync.WaitGroup
}

var _ component.Component = (*Pool)(nil)

// NewPool creates a pool. Queues start accepting tasks once Start is called.
func NewPool(queues map[string]QueueConfig, log *logger.Logger) *Pool {
	if log == nil {
		log = logger.Nop()
	}
	p := &Pool{
		queues: make(map[string]*queue, len(queues)),
		log:    log.WithComponent("worker"),
	}
	for name, cfg := range queues {
		cfg.ApplyDefaults()
		p.queues[name] = &queue{name: name, cfg: cfg, tasks: make(chan Task, cfg.Size)}
	}
	return p
}

// Name implements component.Component.
func (p *Pool) Name() string { return "worker-pool" }

// Start launches the workers of every queue.
func (p *Pool) Start(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.started {
		return fmt.Errorf("worker pool already started")
	}
	if p.stopped {
		return fmt.Errorf("worker pool already stopped")
	}
	runCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	p.cancel = cancel
	p.started = true

	for _, q := range p.queues {
		for i := 0; i < q.cfg.Workers; i++ {
			p.wg.Add(1)
			go p.work(runCtx, q)
		}
		p.log.Debug("queue started", logger.Fields(logger.FieldQueue, q.name, "workers", q.cfg.Workers, "size", q.cfg.Size))
	}
	return nil
}

// Stop stops accepting tasks, lets the workers drain what is queued and
// waits for them, or for ctx.
func (p *Pool) Stop(ctx context.Context) error {
	p.mu.Lock()
	if p.stopped {
		p.mu.Unlock()
		return nil
	}
	p.stopped = true
	for _, q := range p.queues {
		close(q.tasks)
	}
	started := p.started
	p.mu.Unlock()

	if !started {
		for _, q := range p.queues {
			for t := range q.tasks {
				q.rejected.Add(1)
				t.fail(apperrors.RejectedExecution(q.name, "executor shut down"))
			}
		}
		return nil
	}

	done := make(chan struct{})
	go func() {
		p.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		p.cancel()
		p.log.Debug("worker pool stopped")
		return nil
	case <-ctx.Done():
		p.cancel()
		return ctx.Err()
	}
}

// Health implements component.Component.
func (p *Pool) Health(_ context.Context) component.Health {
	p.mu.RLock()
	defer p.mu.RUnlock()
	h := component.Health{Name: p.Name(), Status: component.StatusHealthy}
	switch {
	case p.stopped:
		h.Status = component.StatusUnhealthy
		h.Message = "stopped"
	case !p.started:
		h.Status = component.StatusUnhealthy
		h.Message = "not started"
	default:
		for _, q := range p.queues {
			if len(q.tasks) == cap(q.tasks) {
				h.Status = component.StatusDegraded
				h.Message = fmt.Sprintf("queue %s is full", q.name)
				break
			}
		}
	}
	return h
}

// Describe implements component.Describable.
func (p *Pool) Describe() component.Description {
	details := ""
	for _, name := range p.queueNames() {
		q := p.queues[name]
		if details != "" {
			details += " "
		}
		details += fmt.Sprintf("%s=%d/%d", name, q.cfg.Workers, q.cfg.Size)
	}
	return component.Description{Name: "Worker Pool", Type: "executor", Details: details}
}

// Submit enqueues task on the named queue without blocking. Rejections are
// reported through task.OnFailure on the caller's goroutine.
func (p *Pool) Submit(name string, task Task) {
	q, ok := p.queues[name]
	if !ok {
		task.fail(apperrors.RejectedExecution(name, "no such queue"))
		return
	}

	p.mu.RLock()
	if p.stopped {
		p.mu.RUnlock()
		p.reject(q, task, "executor shut down")
		return
	}
	select {
	case q.tasks <- task:
		p.mu.RUnlock()
	default:
		p.mu.RUnlock()
		p.reject(q, task, fmt.Sprintf("queue capacity [%d] reached", q.cfg.Size))
	}
}

// Stats returns a snapshot of every queue.
func (p *Pool) Stats() map[string]QueueStats {
	out := make(map[string]QueueStats, len(p.queues))
	for name, q := range p.queues {
		out[name] = QueueStats{
			Workers:   q.cfg.Workers,
			Size:      q.cfg.Size,
			Queued:    len(q.tasks),
			Active:    q.active.Load(),
			Completed: q.completed.Load(),
			Rejected:  q.rejected.Load(),
		}
	}
	return out
}

func (p *Pool) reject(q *queue, task Task, reason string) {
	q.rejected.Add(1)
	p.log.Warn("task rejected", logger.Fields(logger.FieldQueue, q.name, "reason", reason))
	task.fail(apperrors.RejectedExecution(q.name, reason))
}

func (p *Pool) work(ctx context.Context, q *queue) {
	defer p.wg.Done()
	for task := range q.tasks {
		q.active.Add(1)
		run(ctx, task, p.log.WithFields(logger.Fields(logger.FieldQueue, q.name)))
		q.active.Add(-1)
		q.completed.Add(1)
	}
}

func (p *Pool) queueNames() []string {
	names := make([]string, 0, len(p.queues))
	for name := range p.queues {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// run executes one task, turning a panic into a failure.
func run(ctx context.Context, task Task, log *logger.Logger) {
	defer func() {
		if r := recover(); r != nil {
			log.Error("task panicked", logger.Fields("panic", fmt.Sprint(r)))
			task.fail(apperrors.Internal(fmt.Errorf("task panicked: %v", r)))
		}
	}()
	if task.Run == nil {
		return
	}
	if err := task.Run(ctx); err != nil {
		task.fail(err)
	}
}

// CallerRuns executes every task synchronously on the submitting goroutine.
// Used by the simulate surface and by tests.
type CallerRuns struct{}

// Submit implements Executor.
func (CallerRuns) Submit(_ string, task Task) {
	run(context.Background(), task, logger.Nop())
}

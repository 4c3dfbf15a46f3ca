package ingest

import (
	"context"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/kbukum/ingest/logger"
	"github.com/kbukum/ingest/observability"
	"github.com/kbukum/ingest/pipeline"
	"github.com/kbukum/ingest/processor"
	"github.com/kbukum/ingest/worker"
)

// Service executes write requests through their pipelines and keeps the
// ingest statistics.
type Service struct {
	store    pipeline.Store
	executor worker.Executor
	queue    string
	log      *logger.Logger
	metrics  *observability.IngestMetrics

	total     Holder
	pipelines atomic.Pointer[holders]
	// statsMu serializes UpdatePipelineStats. Readers never take it.
	statsMu sync.Mutex
}

// Option configures a Service.
type Option func(*Service)

// WithLogger sets the logger.
func WithLogger(l *logger.Logger) Option {
	return func(s *Service) { s.log = l }
}

// WithMetrics mirrors the statistics on OpenTelemetry instruments.
func WithMetrics(m *observability.IngestMetrics) Option {
	return func(s *Service) { s.metrics = m }
}

// WithQueue sets the queue batches are submitted to. Defaults to "bulk".
func WithQueue(name string) Option {
	return func(s *Service) { s.queue = name }
}

// NewService creates a service resolving pipelines from store and running
// batches on executor.
func NewService(store pipeline.Store, executor worker.Executor, opts ...Option) *Service {
	s := &Service{
		store:    store,
		executor: executor,
		queue:    worker.QueueBulk,
		log:      logger.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.log = s.log.WithComponent("ingest")
	empty := holders{}
	s.pipelines.Store(&empty)
	return s
}

// Stats returns the process-wide stats and those of every tracked pipeline.
func (s *Service) Stats() StatsSnapshot {
	current := *s.pipelines.Load()
	out := StatsSnapshot{
		Total:     s.total.Stats(),
		Pipelines: make(map[string]Stats, len(current)),
	}
	for id, h := range current {
		out.Pipelines[id] = h.Stats()
	}
	return out
}

// TrackedPipelines returns the sorted ids that currently have a Holder.
func (s *Service) TrackedPipelines() []string {
	current := *s.pipelines.Load()
	ids := make([]string, 0, len(current))
	for id := range current {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// UpdatePipelineStats reconciles the tracked holders with the configured
// pipeline ids. Holders of ids that stay keep their counters, removed ids
// are dropped and new ids start at zero. The new mapping is published in a
// single swap, and only when something changed.
func (s *Service) UpdatePipelineStats(ids []string) {
	s.statsMu.Lock()
	defer s.statsMu.Unlock()

	current := *s.pipelines.Load()
	next := make(holders, len(ids))
	changed := false
	for _, id := range ids {
		if _, dup := next[id]; dup {
			continue
		}
		if h, ok := current[id]; ok {
			next[id] = h
			continue
		}
		next[id] = &Holder{}
		changed = true
	}
	if len(next) != len(current) {
		changed = true
	}
	if !changed {
		return
	}
	s.pipelines.Store(&next)
	s.log.Debug("pipeline stats updated", logger.Fields(logger.FieldItems, len(next)))
}

// holder returns the Holder of id, or nil when the id is not tracked.
func (s *Service) holder(id string) *Holder {
	return (*s.pipelines.Load())[id]
}

// run executes p against one request and records the statistics.
func run[R any](ctx context.Context, s *Service, p *pipeline.Pipeline, req R, a Adapter[R]) (err error) {
	if p.Empty() {
		return nil
	}

	start := time.Now()
	h := s.holder(p.ID())
	s.total.preIngest()
	if h != nil {
		h.preIngest()
	}
	if s.metrics != nil {
		s.metrics.RecordStart(ctx, p.ID())
	}
	ctx, span := observability.StartSpan(ctx, observability.SpanPipeline,
		trace.WithAttributes(attribute.String(observability.AttrPipelineID, p.ID())))

	defer func() {
		elapsed := time.Since(start)
		s.total.postIngest(elapsed)
		if h != nil {
			h.postIngest(elapsed)
		}
		if s.metrics != nil {
			s.metrics.RecordEnd(ctx, p.ID(), elapsed, err)
		}
		span.End()
	}()

	if err = execute(ctx, p, req, a); err != nil {
		s.total.ingestFailed()
		if h != nil {
			h.ingestFailed()
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	return err
}

// execute converts, runs and applies one request. A panic in the adapter
// or the pipeline fails this request only.
func execute[R any](ctx context.Context, p *pipeline.Pipeline, req R, a Adapter[R]) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = processor.Recovered(r)
		}
	}()
	doc, err := a.ToDocument(req)
	if err != nil {
		return err
	}
	if err := p.Execute(ctx, doc); err != nil {
		return err
	}
	return a.Apply(req, doc)
}

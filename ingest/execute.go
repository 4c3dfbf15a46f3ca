package ingest

import (
	"context"
	"sync/atomic"

	"github.com/google/uuid"

	apperrors "github.com/kbukum/ingest/errors"
	"github.com/kbukum/ingest/logger"
	"github.com/kbukum/ingest/worker"
)

// hooks are the callbacks of one batch. complete is called exactly once.
type hooks[R any] struct {
	success  func(index int, req R)
	failure  func(index int, req R, err error)
	complete func(err error)
}

type item[R any] struct {
	index int
	req   R
	id    string
}

// ExecuteRequests runs every request that names a pipeline as one task on
// the service's queue. onItemFailure is called, in request order, for each
// request whose pipeline run failed. onComplete is called once at the end:
// with nil when all requests were handled, or with the error that aborted
// the task (unknown pipeline, rejection by the queue, panic).
func ExecuteRequests[R any](s *Service, requests []R, a Adapter[R], onItemFailure func(R, error), onComplete func(error)) {
	submit(s, requests, a, hooks[R]{
		failure: func(_ int, req R, err error) {
			if onItemFailure != nil {
				onItemFailure(req, err)
			}
		},
		complete: func(err error) {
			if onComplete != nil {
				onComplete(err)
			}
		},
	})
}

// ExecuteBulk is ExecuteRequests for index requests.
func (s *Service) ExecuteBulk(requests []*IndexRequest, onItemFailure func(*IndexRequest, error), onComplete func(error)) {
	ExecuteRequests(s, requests, IndexRequestAdapter, onItemFailure, onComplete)
}

// ItemResult is the outcome of one request in a batch.
type ItemResult struct {
	// Index is the request's position in the submitted slice.
	Index   int
	Request *IndexRequest
	Err     error
}

// BatchResult is the terminal outcome of a batch. Items holds the handled
// requests in order. Err is set when the task itself failed, in which case
// Items stops at the request that aborted it.
type BatchResult struct {
	Items []ItemResult
	Err   error
}

// Execute runs index requests and delivers one BatchResult on the returned
// channel.
func (s *Service) Execute(requests []*IndexRequest) <-chan BatchResult {
	out := make(chan BatchResult, 1)
	var items []ItemResult
	submit(s, requests, IndexRequestAdapter, hooks[*IndexRequest]{
		success: func(i int, req *IndexRequest) {
			items = append(items, ItemResult{Index: i, Request: req})
		},
		failure: func(i int, req *IndexRequest, err error) {
			items = append(items, ItemResult{Index: i, Request: req, Err: err})
		},
		complete: func(err error) {
			out <- BatchResult{Items: items, Err: err}
			close(out)
		},
	})
	return out
}

func submit[R any](s *Service, requests []R, a Adapter[R], h hooks[R]) {
	batch := make([]item[R], 0, len(requests))
	for i, req := range requests {
		if id := a.PipelineID(req); id != "" {
			batch = append(batch, item[R]{index: i, req: req, id: id})
		}
	}

	batchID := uuid.NewString()
	log := s.log.WithFields(logger.Fields(logger.FieldBatchID, batchID, logger.FieldQueue, s.queue))

	var done atomic.Bool
	complete := func(err error) {
		if done.CompareAndSwap(false, true) {
			h.complete(err)
		}
	}

	s.executor.Submit(s.queue, worker.Task{
		Run: func(ctx context.Context) error {
			log.Debug("batch started", logger.Fields(logger.FieldItems, len(batch)))
			for _, it := range batch {
				p, err := s.store.Get(it.id)
				if err != nil {
					return err
				}
				if err := run(ctx, s, p, it.req, a); err != nil {
					log.WithPipeline(it.id).Debug("item failed", logger.Fields(logger.FieldError, err.Error()))
					if h.failure != nil {
						h.failure(it.index, it.req, err)
					}
					continue
				}
				if h.success != nil {
					h.success(it.index, it.req)
				}
			}
			log.Debug("batch completed", logger.Fields(logger.FieldItems, len(batch)))
			complete(nil)
			return nil
		},
		OnFailure: func(err error) {
			s.total.ingestFailed()
			if s.metrics != nil {
				s.metrics.RecordBatchFailure(context.Background(), string(apperrors.Describe(err).Code))
			}
			log.Warn("batch failed", logger.Fields(logger.FieldError, err.Error()))
			complete(err)
		},
	})
}

// Package ingest is the execution service that runs write requests through
// their pipelines.
//
// A batch of requests is submitted as one task on a named worker queue. The
// task handles its requests in order: an unresolvable pipeline id aborts the
// whole batch through the completion handler, while a failing pipeline run
// fails only its own request. Every run is counted in lock-free statistics,
// process-wide and per configured pipeline id.
//
//	svc := ingest.NewService(store, pool, ingest.WithLogger(log))
//	store.Subscribe(svc.UpdatePipelineStats)
//
//	svc.ExecuteBulk(requests,
//	    func(req *ingest.IndexRequest, err error) { /* item failed */ },
//	    func(err error) { /* batch done, err != nil if the task failed */ },
//	)
package ingest

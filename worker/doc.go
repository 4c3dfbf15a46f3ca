// Package worker runs tasks on named, fixed-size queues.
//
// Each queue owns a bounded buffer and a fixed number of goroutines. A task
// that cannot be accepted (queue full, unknown, or the pool stopped) is never
// dropped: its OnFailure is called with a REJECTED_EXECUTION error. A task
// that returns an error or panics also ends in OnFailure, so every submitted
// task reaches exactly one terminal outcome.
//
//	pool := worker.NewPool(map[string]worker.QueueConfig{
//	    "bulk": {Workers: 4, Size: 200},
//	}, log)
//	_ = pool.Start(ctx)
//	pool.Submit("bulk", worker.Task{Run: run, OnFailure: fail})
package worker

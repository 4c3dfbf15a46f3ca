package ingest

import (
	"sync/atomic"
	"time"
)

// Holder accumulates the counters of one pipeline, or of the whole process.
// Every method is safe for concurrent use.
type Holder struct {
	count   atomic.Int64
	nanos   atomic.Int64
	current atomic.Int64
	failed  atomic.Int64
}

func (h *Holder) preIngest() {
	h.current.Add(1)
}

func (h *Holder) postIngest(elapsed time.Duration) {
	h.current.Add(-1)
	h.count.Add(1)
	h.nanos.Add(int64(elapsed))
}

func (h *Holder) ingestFailed() {
	h.failed.Add(1)
}

// Stats reads the counters. The fields are read independently, so the
// result is a point-in-time view rather than a transaction.
func (h *Holder) Stats() Stats {
	return Stats{
		Count:        h.count.Load(),
		TimeInMillis: time.Duration(h.nanos.Load()).Milliseconds(),
		Current:      h.current.Load(),
		Failed:       h.failed.Load(),
	}
}

// Stats is the derived view of a Holder.
type Stats struct {
	// Count is the number of completed runs, failed ones included.
	Count int64 `json:"count"`
	// TimeInMillis is the total time spent in runs.
	TimeInMillis int64 `json:"time_in_millis"`
	// Current is the number of runs in flight.
	Current int64 `json:"current"`
	// Failed is the number of failed runs.
	Failed int64 `json:"failed"`
}

// StatsSnapshot combines process-wide and per-pipeline stats.
type StatsSnapshot struct {
	Total     Stats            `json:"total"`
	Pipelines map[string]Stats `json:"pipelines"`
}

// holders is the published id -> Holder mapping. A published map is never
// modified; changes publish a new one.
type holders map[string]*Holder

package pipeline

import (
	"sort"
	"sync"

	apperrors "github.com/kbukum/ingest/errors"
)

// Store resolves pipeline ids.
type Store interface {
	// Get returns the pipeline or a PIPELINE_NOT_FOUND *errors.AppError.
	Get(id string) (*Pipeline, error)
}

// Listener receives the complete set of configured pipeline ids after every
// change.
type Listener func(ids []string)

// MemoryStore is a concurrency-safe in-process Store. Notifications are
// delivered synchronously, in change order.
type MemoryStore struct {
	// writeMu serializes changes together with their notification.
	writeMu   sync.Mutex
	mu        sync.RWMutex
	pipelines map[string]*Pipeline
	listeners []Listener
}

// NewMemoryStore creates an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{pipelines: make(map[string]*Pipeline)}
}

// Get implements Store.
func (s *MemoryStore) Get(id string) (*Pipeline, error) {
	s.mu.RLock()
	p, ok := s.pipelines[id]
	s.mu.RUnlock()
	if !ok {
		return nil, apperrors.PipelineNotFound(id)
	}
	return p, nil
}

// Put adds or replaces pipelines.
func (s *MemoryStore) Put(pipelines ...*Pipeline) {
	s.update(func(m map[string]*Pipeline) {
		for _, p := range pipelines {
			m[p.ID()] = p
		}
	})
}

// Replace swaps the whole content of the store.
func (s *MemoryStore) Replace(pipelines ...*Pipeline) {
	s.update(func(m map[string]*Pipeline) {
		clear(m)
		for _, p := range pipelines {
			m[p.ID()] = p
		}
	})
}

// Delete removes a pipeline. It reports whether the id was present.
func (s *MemoryStore) Delete(id string) bool {
	var found bool
	s.update(func(m map[string]*Pipeline) {
		_, found = m[id]
		delete(m, id)
	})
	return found
}

// IDs returns the sorted ids of all stored pipelines.
func (s *MemoryStore) IDs() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.idsLocked()
}

// List returns all stored pipelines sorted by id.
func (s *MemoryStore) List() []*Pipeline {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*Pipeline, 0, len(s.pipelines))
	for _, id := range s.idsLocked() {
		out = append(out, s.pipelines[id])
	}
	return out
}

// Subscribe registers l and immediately delivers the current id set to it.
func (s *MemoryStore) Subscribe(l Listener) {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	s.mu.Lock()
	s.listeners = append(s.listeners, l)
	ids := s.idsLocked()
	s.mu.Unlock()
	l(ids)
}

func (s *MemoryStore) update(fn func(map[string]*Pipeline)) {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	s.mu.Lock()
	fn(s.pipelines)
	ids := s.idsLocked()
	listeners := append([]Listener(nil), s.listeners...)
	s.mu.Unlock()

	for _, l := range listeners {
		l(ids)
	}
}

func (s *MemoryStore) idsLocked() []string {
	ids := make([]string, 0, len(s.pipelines))
	for id := range s.pipelines {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

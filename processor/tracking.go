package processor

import (
	"context"
	"sync"

	"github.com/kbukum/ingest/document"
)

// Result is one leaf invocation recorded by a tracked tree. Exactly one of
// Document and Err is set.
type Result struct {
	Type     string
	Tag      string
	Document *document.Document
	Err      error
}

// Failed reports whether the invocation returned an error.
func (r Result) Failed() bool { return r.Err != nil }

// Trace is an append-only log of leaf invocations, in call order.
type Trace struct {
	mu      sync.Mutex
	results []Result
}

// NewTrace returns an empty trace.
func NewTrace() *Trace {
	return &Trace{}
}

func (t *Trace) append(r Result) {
	t.mu.Lock()
	t.results = append(t.results, r)
	t.mu.Unlock()
}

// Results returns a copy of the recorded entries.
func (t *Trace) Results() []Result {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]Result(nil), t.results...)
}

// Len returns the number of recorded entries.
func (t *Trace) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.results)
}

// Decorate returns a tree with the same shape as p where every leaf appends
// its outcome to trace. Composites are rebuilt as composites, so their
// failure handling is unchanged. A leaf that is already tracked is rebound
// to trace instead of being wrapped twice.
func Decorate(p Processor, trace *Trace) Processor {
	switch v := p.(type) {
	case *Composite:
		return DecorateComposite(v, trace)
	case *tracked:
		return &tracked{inner: v.inner, trace: trace}
	default:
		return &tracked{inner: p, trace: trace}
	}
}

// DecorateComposite is Decorate for a composite root.
func DecorateComposite(c *Composite, trace *Trace) *Composite {
	return &Composite{
		processors: decorateAll(c.processors, trace),
		onFailure:  decorateAll(c.onFailure, trace),
	}
}

func decorateAll(ps []Processor, trace *Trace) []Processor {
	out := make([]Processor, len(ps))
	for i, p := range ps {
		out[i] = Decorate(p, trace)
	}
	return out
}

type tracked struct {
	inner Processor
	trace *Trace
}

func (t *tracked) Type() string { return t.inner.Type() }
func (t *tracked) Tag() string  { return t.inner.Tag() }

func (t *tracked) Execute(ctx context.Context, doc *document.Document) error {
	if err := invoke(ctx, t.inner, doc); err != nil {
		t.trace.append(Result{Type: t.inner.Type(), Tag: t.inner.Tag(), Err: err})
		return err
	}
	t.trace.append(Result{Type: t.inner.Type(), Tag: t.inner.Tag(), Document: doc.Clone()})
	return nil
}

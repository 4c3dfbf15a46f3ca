package pipeline

import (
	"context"

	"github.com/kbukum/ingest/document"
	"github.com/kbukum/ingest/processor"
)

// Pipeline is an identified root composite. It is never mutated after
// construction; a definition change produces a new Pipeline.
type Pipeline struct {
	id          string
	description string
	root        *processor.Composite
	definition  *Definition
}

// New creates a pipeline. A nil root is treated as an empty composite.
func New(id, description string, root *processor.Composite) *Pipeline {
	if root == nil {
		root = processor.NewComposite(nil, nil)
	}
	return &Pipeline{id: id, description: description, root: root}
}

// ID returns the pipeline identifier.
func (p *Pipeline) ID() string { return p.id }

// Description returns the free-form description.
func (p *Pipeline) Description() string { return p.description }

// Root returns the root composite.
func (p *Pipeline) Root() *processor.Composite { return p.root }

// Processors returns the root's main chain.
func (p *Pipeline) Processors() []processor.Processor { return p.root.Processors() }

// Empty reports whether the pipeline has no main-chain processors.
func (p *Pipeline) Empty() bool { return p.root.Len() == 0 }

// Execute runs the root composite against doc.
func (p *Pipeline) Execute(ctx context.Context, doc *document.Document) error {
	return p.root.Execute(ctx, doc)
}

// Definition returns the definition the pipeline was built from, if any.
func (p *Pipeline) Definition() (Definition, bool) {
	if p.definition == nil {
		return Definition{}, false
	}
	return *p.definition, true
}

// Decorate returns a copy of the pipeline whose leaves record into trace.
func (p *Pipeline) Decorate(trace *processor.Trace) *Pipeline {
	return &Pipeline{
		id:          p.id,
		description: p.description,
		root:        processor.DecorateComposite(p.root, trace),
		definition:  p.definition,
	}
}

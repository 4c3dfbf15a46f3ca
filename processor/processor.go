package processor

import (
	"context"
	"fmt"

	"github.com/kbukum/ingest/document"
	apperrors "github.com/kbukum/ingest/errors"
)

// CompositeType is the type name reported by composite processors.
const CompositeType = "compound"

// Processor is one step of a pipeline. Execute mutates doc in place.
type Processor interface {
	// Type names the class of transformation, e.g. "set" or "rename".
	Type() string
	// Tag identifies this instance in diagnostics. May be empty.
	Tag() string
	Execute(ctx context.Context, doc *document.Document) error
}

// Func is the signature of a leaf transformation.
type Func func(ctx context.Context, doc *document.Document) error

type leaf struct {
	typ string
	tag string
	fn  Func
}

// New returns a leaf processor that runs fn.
func New(typ, tag string, fn Func) Processor {
	return &leaf{typ: typ, tag: tag, fn: fn}
}

func (l *leaf) Type() string { return l.typ }
func (l *leaf) Tag() string  { return l.tag }

func (l *leaf) Execute(ctx context.Context, doc *document.Document) error {
	return l.fn(ctx, doc)
}

// Composite runs a main chain of processors in order. When a main step
// fails, the failure triple is written to the document and the on-failure
// chain runs instead of the rest of the main chain. Without an on-failure
// chain the original error is returned unchanged.
//
// Both chains are fixed at construction.
type Composite struct {
	processors []Processor
	onFailure  []Processor
}

// NewComposite builds a composite. The slices are copied.
func NewComposite(processors, onFailure []Processor) *Composite {
	return &Composite{
		processors: append([]Processor(nil), processors...),
		onFailure:  append([]Processor(nil), onFailure...),
	}
}

func (c *Composite) Type() string { return CompositeType }
func (c *Composite) Tag() string  { return "" }

// Processors returns a copy of the main chain.
func (c *Composite) Processors() []Processor {
	return append([]Processor(nil), c.processors...)
}

// OnFailure returns a copy of the on-failure chain.
func (c *Composite) OnFailure() []Processor {
	return append([]Processor(nil), c.onFailure...)
}

// Len returns the number of main-chain processors.
func (c *Composite) Len() int { return len(c.processors) }

// Execute runs the chain against doc.
func (c *Composite) Execute(ctx context.Context, doc *document.Document) error {
	for _, p := range c.processors {
		if err := invoke(ctx, p, doc); err != nil {
			if len(c.onFailure) == 0 {
				return err
			}
			doc.SetFailure(err.Error(), p.Type(), p.Tag())
			return c.executeOnFailure(ctx, doc)
		}
	}
	return nil
}

// Errors from the on-failure chain are not caught at this level.
func (c *Composite) executeOnFailure(ctx context.Context, doc *document.Document) error {
	for _, p := range c.onFailure {
		if err := invoke(ctx, p, doc); err != nil {
			return err
		}
	}
	return nil
}

// invoke runs p and reports a panic as an INTERNAL error, so a crashing step
// fails like any other step.
func invoke(ctx context.Context, p Processor, doc *document.Document) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = Recovered(r)
		}
	}()
	return p.Execute(ctx, doc)
}

// Recovered converts a recovered panic value into an INTERNAL error.
func Recovered(r any) error {
	return apperrors.Internal(fmt.Errorf("processor panicked: %v", r))
}

// Factory builds a leaf processor from a definition's config block.
// Keys it consumes are removed from config so the caller can reject the rest.
type Factory func(tag string, config map[string]any) (Processor, error)

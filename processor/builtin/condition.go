package builtin

import (
	"context"
	"fmt"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"

	"github.com/kbukum/ingest/document"
	apperrors "github.com/kbukum/ingest/errors"
	"github.com/kbukum/ingest/processor"
)

// conditional runs inner only when the compiled condition holds.
type conditional struct {
	inner      processor.Processor
	expression string
	program    *vm.Program
}

func (c *conditional) Type() string { return c.inner.Type() }
func (c *conditional) Tag() string  { return c.inner.Tag() }

func (c *conditional) Execute(ctx context.Context, doc *document.Document) error {
	out, err := expr.Run(c.program, env(doc))
	if err != nil {
		return apperrors.ProcessorFailed(c.inner.Type(), fmt.Sprintf("condition [%s] failed: %v", c.expression, err))
	}
	ok, isBool := out.(bool)
	if !isBool {
		return apperrors.ProcessorFailed(c.inner.Type(), fmt.Sprintf("condition [%s] returned [%T], expected a boolean", c.expression, out))
	}
	if !ok {
		return nil
	}
	return c.inner.Execute(ctx, doc)
}

// compile builds an expr program that tolerates missing fields.
func compile(processorType, expression string) (*vm.Program, error) {
	program, err := expr.Compile(expression, expr.AllowUndefinedVariables())
	if err != nil {
		return nil, fmt.Errorf("[%s] invalid expression [%s]: %w", processorType, expression, err)
	}
	return program, nil
}

// env exposes the document to expressions. The top level is copied, so an
// expression cannot add fields.
func env(doc *document.Document) map[string]any {
	src := doc.SourceAndMetadata()
	out := make(map[string]any, len(src)+1)
	for k, v := range src {
		out[k] = v
	}
	out[document.IngestKey] = doc.IngestMetadata()
	return out
}

// withCondition pops the "if" option and wraps the built processor.
func withCondition(processorType string, build processor.Factory) processor.Factory {
	return func(tag string, config map[string]any) (processor.Processor, error) {
		expression, err := readString(processorType, config, "if", false)
		if err != nil {
			return nil, err
		}
		p, err := build(tag, config)
		if err != nil || expression == "" {
			return p, err
		}
		program, err := compile(processorType, expression)
		if err != nil {
			return nil, err
		}
		return &conditional{inner: p, expression: expression, program: program}, nil
	}
}

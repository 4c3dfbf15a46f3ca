package builtin

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"

	"github.com/kbukum/ingest/document"
	apperrors "github.com/kbukum/ingest/errors"
	"github.com/kbukum/ingest/processor"
)

// Processor type names.
const (
	TypeSet       = "set"
	TypeRemove    = "remove"
	TypeRename    = "rename"
	TypeLowercase = "lowercase"
	TypeUppercase = "uppercase"
	TypeFail      = "fail"
	TypeScript    = "script"
)

// Factories returns the factory of every built-in processor keyed by type.
func Factories() map[string]processor.Factory {
	return map[string]processor.Factory{
		TypeSet:       withCondition(TypeSet, newSet),
		TypeRemove:    withCondition(TypeRemove, newRemove),
		TypeRename:    withCondition(TypeRename, newRename),
		TypeLowercase: withCondition(TypeLowercase, newCase(TypeLowercase, strings.ToLower)),
		TypeUppercase: withCondition(TypeUppercase, newCase(TypeUppercase, strings.ToUpper)),
		TypeFail:      withCondition(TypeFail, newFail),
		TypeScript:    withCondition(TypeScript, newScript),
	}
}

// --- set ---

func newSet(tag string, config map[string]any) (processor.Processor, error) {
	field, err := readString(TypeSet, config, "field", true)
	if err != nil {
		return nil, err
	}
	value, err := readObject(TypeSet, config, "value")
	if err != nil {
		return nil, err
	}
	override, err := readBool(TypeSet, config, "override", true)
	if err != nil {
		return nil, err
	}
	return processor.New(TypeSet, tag, func(_ context.Context, doc *document.Document) error {
		if !override && doc.HasField(field) {
			return nil
		}
		return doc.SetField(field, value)
	}), nil
}

// --- remove ---

func newRemove(tag string, config map[string]any) (processor.Processor, error) {
	field, err := readString(TypeRemove, config, "field", true)
	if err != nil {
		return nil, err
	}
	ignoreMissing, err := readBool(TypeRemove, config, "ignore_missing", false)
	if err != nil {
		return nil, err
	}
	return processor.New(TypeRemove, tag, func(_ context.Context, doc *document.Document) error {
		err := doc.RemoveField(field)
		if err != nil && ignoreMissing && errors.Is(err, document.ErrFieldNotFound) {
			return nil
		}
		return err
	}), nil
}

// --- rename ---

func newRename(tag string, config map[string]any) (processor.Processor, error) {
	field, err := readString(TypeRename, config, "field", true)
	if err != nil {
		return nil, err
	}
	target, err := readString(TypeRename, config, "target_field", true)
	if err != nil {
		return nil, err
	}
	ignoreMissing, err := readBool(TypeRename, config, "ignore_missing", false)
	if err != nil {
		return nil, err
	}
	return processor.New(TypeRename, tag, func(_ context.Context, doc *document.Document) error {
		value, err := doc.GetField(field)
		if err != nil {
			if ignoreMissing && errors.Is(err, document.ErrFieldNotFound) {
				return nil
			}
			return apperrors.ProcessorFailed(TypeRename, fmt.Sprintf("field [%s] doesn't exist", field))
		}
		if doc.HasField(target) {
			return apperrors.ProcessorFailed(TypeRename, fmt.Sprintf("field [%s] already exists", target))
		}
		if err := doc.SetField(target, value); err != nil {
			return err
		}
		return doc.RemoveField(field)
	}), nil
}

// --- lowercase / uppercase ---

func newCase(processorType string, convert func(string) string) processor.Factory {
	return func(tag string, config map[string]any) (processor.Processor, error) {
		field, err := readString(processorType, config, "field", true)
		if err != nil {
			return nil, err
		}
		ignoreMissing, err := readBool(processorType, config, "ignore_missing", false)
		if err != nil {
			return nil, err
		}
		return processor.New(processorType, tag, func(_ context.Context, doc *document.Document) error {
			value, err := doc.GetField(field)
			if err != nil {
				if ignoreMissing && errors.Is(err, document.ErrFieldNotFound) {
					return nil
				}
				return err
			}
			s, ok := value.(string)
			if !ok {
				return apperrors.ProcessorFailed(processorType,
					fmt.Sprintf("field [%s] of type [%T] cannot be cast to [string]", field, value))
			}
			return doc.SetField(field, convert(s))
		}), nil
	}
}

// --- fail ---

func newFail(tag string, config map[string]any) (processor.Processor, error) {
	message, err := readString(TypeFail, config, "message", true)
	if err != nil {
		return nil, err
	}
	return processor.New(TypeFail, tag, func(_ context.Context, _ *document.Document) error {
		return apperrors.ProcessorFailed(TypeFail, message)
	}), nil
}

// --- script ---

func newScript(tag string, config map[string]any) (processor.Processor, error) {
	field, err := readString(TypeScript, config, "field", true)
	if err != nil {
		return nil, err
	}
	expression, err := readString(TypeScript, config, "expression", true)
	if err != nil {
		return nil, err
	}
	program, err := compile(TypeScript, expression)
	if err != nil {
		return nil, err
	}
	return processor.New(TypeScript, tag, scriptFunc(field, expression, program)), nil
}

func scriptFunc(field, expression string, program *vm.Program) processor.Func {
	return func(_ context.Context, doc *document.Document) error {
		out, err := expr.Run(program, env(doc))
		if err != nil {
			return apperrors.ProcessorFailed(TypeScript, fmt.Sprintf("expression [%s] failed: %v", expression, err))
		}
		return doc.SetField(field, out)
	}
}

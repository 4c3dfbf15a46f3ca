package pipeline

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	apperrors "github.com/kbukum/ingest/errors"
	"github.com/kbukum/ingest/processor"
	"github.com/kbukum/ingest/validation"
)

// Options every processor definition accepts.
const (
	tagKey       = "tag"
	onFailureKey = "on_failure"
)

// Registry maps processor type names to factories and builds pipelines from
// definitions.
type Registry struct {
	mu        sync.RWMutex
	factories map[string]processor.Factory
}

// NewRegistry creates a registry holding the given factories.
func NewRegistry(factories map[string]processor.Factory) *Registry {
	r := &Registry{factories: make(map[string]processor.Factory, len(factories))}
	for typ, f := range factories {
		r.factories[typ] = f
	}
	return r
}

// Register adds or replaces a factory.
func (r *Registry) Register(typ string, f processor.Factory) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.factories[typ] = f
}

// Get retrieves a factory by type.
func (r *Registry) Get(typ string) (processor.Factory, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	f, ok := r.factories[typ]
	return f, ok
}

// List returns sorted type names of all registered factories.
func (r *Registry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.factories))
	for name := range r.factories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Build turns a definition into a pipeline. Errors are INVALID_PIPELINE.
func (r *Registry) Build(def Definition) (*Pipeline, error) {
	if err := validation.Validate(def); err != nil {
		return nil, apperrors.InvalidPipeline(def.ID, err.Error())
	}
	main, err := r.buildAll(def.Processors)
	if err != nil {
		return nil, apperrors.InvalidPipeline(def.ID, err.Error())
	}
	onFailure, err := r.buildAll(def.OnFailure)
	if err != nil {
		return nil, apperrors.InvalidPipeline(def.ID, err.Error())
	}
	p := New(def.ID, def.Description, processor.NewComposite(main, onFailure))
	p.definition = &def
	return p, nil
}

// BuildAll builds every definition, stopping at the first error.
func (r *Registry) BuildAll(defs []Definition) ([]*Pipeline, error) {
	out := make([]*Pipeline, 0, len(defs))
	for _, def := range defs {
		p, err := r.Build(def)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, nil
}

func (r *Registry) buildAll(defs []ProcessorDefinition) ([]processor.Processor, error) {
	out := make([]processor.Processor, 0, len(defs))
	for _, def := range defs {
		p, err := r.buildOne(def)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, nil
}

// buildOne builds a single processor. A processor with its own on_failure
// list becomes a composite wrapping just that processor.
func (r *Registry) buildOne(def ProcessorDefinition) (processor.Processor, error) {
	if len(def) != 1 {
		return nil, fmt.Errorf("processor definition must have exactly one type, got %d", len(def))
	}
	var (
		typ    string
		config map[string]any
	)
	for k, v := range def {
		typ = k
		config = make(map[string]any, len(v))
		for ck, cv := range v {
			config[ck] = cv
		}
	}

	factory, ok := r.Get(typ)
	if !ok {
		return nil, fmt.Errorf("no processor type exists with name [%s]", typ)
	}

	var tag string
	if raw, ok := config[tagKey]; ok && raw != nil {
		if tag, ok = raw.(string); !ok {
			return nil, fmt.Errorf("[%s] property [%s] isn't a string, but of type [%T]", typ, tagKey, raw)
		}
	}
	delete(config, tagKey)
	onFailureDefs, err := processorDefinitions(config[onFailureKey])
	if err != nil {
		return nil, fmt.Errorf("[%s] %w", typ, err)
	}
	delete(config, onFailureKey)

	p, err := factory(tag, config)
	if err != nil {
		return nil, err
	}
	if len(config) > 0 {
		return nil, fmt.Errorf("processor [%s] doesn't support one or more provided configuration parameters [%s]", typ, joinKeys(config))
	}
	if len(onFailureDefs) == 0 {
		return p, nil
	}
	onFailure, err := r.buildAll(onFailureDefs)
	if err != nil {
		return nil, err
	}
	return processor.NewComposite([]processor.Processor{p}, onFailure), nil
}

func joinKeys(m map[string]any) string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return strings.Join(keys, ", ")
}

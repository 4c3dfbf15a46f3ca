package pipeline

import (
	"fmt"
	"os"

	"go.yaml.in/yaml/v3"

	"github.com/kbukum/ingest/validation"
)

// Definition is the stored form of a pipeline.
type Definition struct {
	ID          string                `yaml:"id" json:"id" validate:"required"`
	Description string                `yaml:"description,omitempty" json:"description,omitempty"`
	Processors  []ProcessorDefinition `yaml:"processors" json:"processors"`
	OnFailure   []ProcessorDefinition `yaml:"on_failure,omitempty" json:"on_failure,omitempty"`
}

// ProcessorDefinition maps a single processor type to its options.
type ProcessorDefinition map[string]map[string]any

// File is the layout of a definitions file.
type File struct {
	Pipelines []Definition `yaml:"pipelines" json:"pipelines" validate:"dive"`
}

// LoadFile reads and validates pipeline definitions from a YAML file.
func LoadFile(path string) ([]Definition, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("pipeline: reading %s: %w", path, err)
	}
	defs, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("pipeline: parsing %s: %w", path, err)
	}
	return defs, nil
}

// Parse decodes and validates YAML definitions.
func Parse(data []byte) ([]Definition, error) {
	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, err
	}
	if err := validation.Validate(f); err != nil {
		return nil, err
	}
	seen := make(map[string]bool, len(f.Pipelines))
	for _, d := range f.Pipelines {
		if seen[d.ID] {
			return nil, fmt.Errorf("duplicate pipeline id [%s]", d.ID)
		}
		seen[d.ID] = true
	}
	return f.Pipelines, nil
}

// processorDefinitions converts a decoded on_failure value. Both YAML and
// JSON decode nested lists as []any of map[string]any.
func processorDefinitions(v any) ([]ProcessorDefinition, error) {
	if v == nil {
		return nil, nil
	}
	list, ok := v.([]any)
	if !ok {
		return nil, fmt.Errorf("on_failure must be a list, got [%T]", v)
	}
	out := make([]ProcessorDefinition, 0, len(list))
	for i, item := range list {
		m, ok := item.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("on_failure[%d] must be an object, got [%T]", i, item)
		}
		def := make(ProcessorDefinition, len(m))
		for typ, raw := range m {
			if raw == nil {
				def[typ] = map[string]any{}
				continue
			}
			config, ok := raw.(map[string]any)
			if !ok {
				return nil, fmt.Errorf("on_failure[%d].%s must be an object, got [%T]", i, typ, raw)
			}
			def[typ] = config
		}
		out = append(out, def)
	}
	return out, nil
}

// Package document holds the mutable envelope a pipeline transforms: the
// write request's fields (payload plus addressing metadata) and a reserved
// ingest-metadata side channel used only for failure bookkeeping.
//
// A Document is owned by exactly one executing task at a time and is not
// safe for concurrent use. Clone produces an independent deep copy.
package document

import (
	"encoding/json"
	"fmt"
)

// Metadata names an addressing field carried next to the payload.
type Metadata string

const (
	Index   Metadata = "_index"
	Type    Metadata = "_type"
	ID      Metadata = "_id"
	Routing Metadata = "_routing"
	Parent  Metadata = "_parent"
)

// MetadataFields lists every addressing field in extraction order.
var MetadataFields = []Metadata{Index, Type, ID, Routing, Parent}

// FieldName returns the key the field is stored under.
func (m Metadata) FieldName() string { return string(m) }

// IngestKey prefixes paths that read the ingest-metadata side channel.
const IngestKey = "_ingest"

// Keys of the failure triple written by a composite processor.
const (
	OnFailureMessageField       = "on_failure_message"
	OnFailureProcessorTypeField = "on_failure_processor_type"
	OnFailureProcessorTagField  = "on_failure_processor_tag"
)

// Failure is the triple recorded when a main-chain processor fails.
type Failure struct {
	Message       string `json:"on_failure_message"`
	ProcessorType string `json:"on_failure_processor_type"`
	ProcessorTag  string `json:"on_failure_processor_tag"`
}

// Document is the per-request payload plus its ingest metadata.
type Document struct {
	sourceAndMetadata map[string]any
	failure           *Failure
}

// New builds a document from a write request's addressing fields and
// payload. The top level of source is copied so the metadata keys never
// leak into the caller's map. Empty routing and parent are left unset.
func New(index, typ, id, routing, parent string, source map[string]any) *Document {
	m := make(map[string]any, len(source)+5)
	for k, v := range source {
		m[k] = v
	}
	m[Index.FieldName()] = index
	m[Type.FieldName()] = typ
	m[ID.FieldName()] = id
	if routing != "" {
		m[Routing.FieldName()] = routing
	}
	if parent != "" {
		m[Parent.FieldName()] = parent
	}
	return &Document{sourceAndMetadata: m}
}

// FromMap wraps an existing source-and-metadata map. The document takes
// ownership of m.
func FromMap(m map[string]any) *Document {
	if m == nil {
		m = make(map[string]any)
	}
	return &Document{sourceAndMetadata: m}
}

// SourceAndMetadata returns the live payload map, metadata keys included.
// Mutations are visible to every later step.
func (d *Document) SourceAndMetadata() map[string]any {
	return d.sourceAndMetadata
}

// Metadata returns the string value of an addressing field, or "".
func (d *Document) Metadata(field Metadata) string {
	return stringValue(d.sourceAndMetadata[field.FieldName()])
}

// ExtractMetadata removes every addressing field from the payload and
// returns their values. Non-string values set by processors are formatted.
func (d *Document) ExtractMetadata() map[Metadata]string {
	out := make(map[Metadata]string, len(MetadataFields))
	for _, f := range MetadataFields {
		out[f] = stringValue(d.sourceAndMetadata[f.FieldName()])
		delete(d.sourceAndMetadata, f.FieldName())
	}
	return out
}

// SetFailure records the failure triple, replacing any previous one.
func (d *Document) SetFailure(message, processorType, processorTag string) {
	d.failure = &Failure{
		Message:       message,
		ProcessorType: processorType,
		ProcessorTag:  processorTag,
	}
}

// Failure returns the recorded failure triple, if any.
func (d *Document) Failure() (Failure, bool) {
	if d.failure == nil {
		return Failure{}, false
	}
	return *d.failure, true
}

// IngestMetadata returns a copy of the ingest-metadata mapping. It holds
// either nothing or exactly the three failure keys.
func (d *Document) IngestMetadata() map[string]string {
	if d.failure == nil {
		return map[string]string{}
	}
	return map[string]string{
		OnFailureMessageField:       d.failure.Message,
		OnFailureProcessorTypeField: d.failure.ProcessorType,
		OnFailureProcessorTagField:  d.failure.ProcessorTag,
	}
}

// Clone returns an independent deep copy of the document.
func (d *Document) Clone() *Document {
	c := &Document{sourceAndMetadata: deepCopyMap(d.sourceAndMetadata)}
	if d.failure != nil {
		f := *d.failure
		c.failure = &f
	}
	return c
}

// MarshalJSON renders the document the way the simulate surface reports it:
// addressing fields at the top level, the payload under _source and the
// ingest metadata under _ingest.
func (d *Document) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, len(MetadataFields)+2)
	source := make(map[string]any, len(d.sourceAndMetadata))
	for k, v := range d.sourceAndMetadata {
		source[k] = v
	}
	for _, f := range MetadataFields {
		if v, ok := source[f.FieldName()]; ok {
			if s := stringValue(v); s != "" {
				out[f.FieldName()] = s
			}
			delete(source, f.FieldName())
		}
	}
	out["_source"] = source
	out[IngestKey] = d.IngestMetadata()
	return json.Marshal(out)
}

func stringValue(v any) string {
	switch s := v.(type) {
	case nil:
		return ""
	case string:
		return s
	default:
		return fmt.Sprint(s)
	}
}

package ingest

import (
	"github.com/kbukum/ingest/document"
)

// IndexRequest is a single document write. Pipeline names the pipeline the
// source is run through before it is stored.
type IndexRequest struct {
	Index    string         `json:"_index"`
	Type     string         `json:"_type,omitempty"`
	ID       string         `json:"_id,omitempty"`
	Routing  string         `json:"_routing,omitempty"`
	Parent   string         `json:"_parent,omitempty"`
	Pipeline string         `json:"pipeline,omitempty"`
	Source   map[string]any `json:"_source"`
}

// Adapter converts a request type to a document and back.
type Adapter[R any] struct {
	// PipelineID returns the pipeline a request names, or "".
	PipelineID func(R) string
	// ToDocument builds the document a pipeline runs against.
	ToDocument func(R) (*document.Document, error)
	// Apply writes the document's addressing fields and payload back onto
	// the request.
	Apply func(R, *document.Document) error
}

// IndexRequestAdapter is the Adapter for *IndexRequest.
var IndexRequestAdapter = Adapter[*IndexRequest]{
	PipelineID: func(r *IndexRequest) string { return r.Pipeline },
	ToDocument: func(r *IndexRequest) (*document.Document, error) {
		return document.New(r.Index, r.Type, r.ID, r.Routing, r.Parent, r.Source), nil
	},
	Apply: func(r *IndexRequest, doc *document.Document) error {
		meta := doc.ExtractMetadata()
		r.Index = meta[document.Index]
		r.Type = meta[document.Type]
		r.ID = meta[document.ID]
		r.Routing = meta[document.Routing]
		r.Parent = meta[document.Parent]
		r.Source = doc.SourceAndMetadata()
		return nil
	},
}

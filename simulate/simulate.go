// Package simulate dry-runs a pipeline over sample documents. Nothing is
// stored and no ingest statistics are recorded. In verbose mode the pipeline
// is decorated so that every leaf processor's outcome is reported.
package simulate

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/kbukum/ingest/document"
	apperrors "github.com/kbukum/ingest/errors"
	"github.com/kbukum/ingest/logger"
	"github.com/kbukum/ingest/observability"
	"github.com/kbukum/ingest/pipeline"
	"github.com/kbukum/ingest/processor"
)

// Defaults for addressing fields a sample document leaves out.
const (
	defaultIndex = "_index"
	defaultType  = "_type"
	defaultID    = "_id"
)

// Request is a simulate call. Exactly one of PipelineID and Pipeline is set.
type Request struct {
	PipelineID string               `json:"-"`
	Pipeline   *pipeline.Definition `json:"pipeline,omitempty"`
	Docs       []map[string]any     `json:"docs" validate:"required,min=1"`
	Verbose    bool                 `json:"verbose,omitempty"`
}

// ProcessorResult is the outcome of one leaf processor in verbose mode.
type ProcessorResult struct {
	Type     string               `json:"type,omitempty"`
	Tag      string               `json:"tag,omitempty"`
	Document *document.Document   `json:"doc,omitempty"`
	Error    *apperrors.ErrorBody `json:"error,omitempty"`
}

// DocumentResult is the outcome for one sample document. Non-verbose results
// carry Document or Error; verbose results carry ProcessorResults.
type DocumentResult struct {
	Document         *document.Document   `json:"doc,omitempty"`
	Error            *apperrors.ErrorBody `json:"error,omitempty"`
	ProcessorResults []ProcessorResult    `json:"processor_results,omitempty"`
}

// Response lists one result per sample document, in order.
type Response struct {
	Docs []DocumentResult `json:"docs"`
}

// Simulator resolves or builds the pipeline of a Request and runs it.
type Simulator struct {
	store    pipeline.Store
	registry *pipeline.Registry
	log      *logger.Logger
}

// New creates a simulator. store resolves PipelineID, registry builds inline
// definitions.
func New(store pipeline.Store, registry *pipeline.Registry, log *logger.Logger) *Simulator {
	if log == nil {
		log = logger.Nop()
	}
	return &Simulator{store: store, registry: registry, log: log.WithComponent("simulate")}
}

// Simulate runs req. Errors are about the request itself; document-level
// failures are reported inside the response.
func (s *Simulator) Simulate(ctx context.Context, req *Request) (*Response, error) {
	p, err := s.resolve(req)
	if err != nil {
		return nil, err
	}
	docs, err := ParseDocs(req.Docs)
	if err != nil {
		return nil, err
	}

	ctx, span := observability.StartSpan(ctx, observability.SpanSimulate, trace.WithAttributes(
		attribute.String(observability.AttrPipelineID, p.ID()),
		attribute.Int(observability.AttrItems, len(docs)),
	))
	defer span.End()

	s.log.Debug("simulating pipeline", logger.Fields(logger.FieldPipelineID, p.ID(), logger.FieldItems, len(docs), "verbose", req.Verbose))
	return &Response{Docs: Execute(ctx, p, docs, req.Verbose)}, nil
}

func (s *Simulator) resolve(req *Request) (*pipeline.Pipeline, error) {
	switch {
	case req.Pipeline != nil && req.PipelineID != "":
		return nil, apperrors.InvalidInput("pipeline", "specify either a pipeline id or an inline pipeline, not both")
	case req.Pipeline != nil:
		def := *req.Pipeline
		if def.ID == "" {
			def.ID = "_simulate_pipeline"
		}
		return s.registry.Build(def)
	case req.PipelineID != "":
		return s.store.Get(req.PipelineID)
	default:
		return nil, apperrors.InvalidInput("pipeline", "a pipeline id or an inline pipeline is required")
	}
}

// Execute runs p over docs. Each document runs independently; a failure on
// one does not affect the others.
func Execute(ctx context.Context, p *pipeline.Pipeline, docs []*document.Document, verbose bool) []DocumentResult {
	out := make([]DocumentResult, 0, len(docs))
	for _, doc := range docs {
		if verbose {
			out = append(out, executeVerbose(ctx, p, doc))
			continue
		}
		if err := p.Execute(ctx, doc); err != nil {
			out = append(out, DocumentResult{Error: describe(err)})
			continue
		}
		out = append(out, DocumentResult{Document: doc})
	}
	return out
}

func executeVerbose(ctx context.Context, p *pipeline.Pipeline, doc *document.Document) DocumentResult {
	steps := processor.NewTrace()
	// The trace already holds the failing step, so the pipeline error is
	// not reported separately.
	_ = p.Decorate(steps).Execute(ctx, doc)

	results := steps.Results()
	out := DocumentResult{ProcessorResults: make([]ProcessorResult, 0, len(results))}
	for _, r := range results {
		pr := ProcessorResult{Type: r.Type, Tag: r.Tag, Document: r.Document}
		if r.Err != nil {
			pr.Error = describe(r.Err)
		}
		out.ProcessorResults = append(out.ProcessorResults, pr)
	}
	return out
}

func describe(err error) *apperrors.ErrorBody {
	body := apperrors.Describe(err)
	return &body
}

// ParseDocs converts sample documents. Each entry carries its payload under
// _source and optional addressing fields next to it.
func ParseDocs(raw []map[string]any) ([]*document.Document, error) {
	if len(raw) == 0 {
		return nil, apperrors.InvalidInput("docs", "must specify at least one document in [docs]")
	}
	docs := make([]*document.Document, 0, len(raw))
	for i, entry := range raw {
		source, ok := entry["_source"].(map[string]any)
		if !ok {
			return nil, apperrors.InvalidInput("docs", fmt.Sprintf("docs[%d] requires an object under [_source]", i))
		}
		docs = append(docs, document.New(
			stringOr(entry, document.Index, defaultIndex),
			stringOr(entry, document.Type, defaultType),
			stringOr(entry, document.ID, defaultID),
			stringOr(entry, document.Routing, ""),
			stringOr(entry, document.Parent, ""),
			document.FromMap(source).Clone().SourceAndMetadata(),
		))
	}
	return docs, nil
}

func stringOr(entry map[string]any, field document.Metadata, def string) string {
	v, ok := entry[field.FieldName()]
	if !ok || v == nil {
		return def
	}
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprint(v)
}

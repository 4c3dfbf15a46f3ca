package endpoint

import (
	"github.com/gin-gonic/gin"

	apperrors "github.com/kbukum/ingest/errors"
	"github.com/kbukum/ingest/pipeline"
	"github.com/kbukum/ingest/server"
	"github.com/kbukum/ingest/validation"
)

// PipelineStore is the store the pipeline endpoints manage.
type PipelineStore interface {
	pipeline.Store
	Put(pipelines ...*pipeline.Pipeline)
	Delete(id string) bool
	List() []*pipeline.Pipeline
}

// PipelineSummary describes a stored pipeline.
type PipelineSummary struct {
	ID          string               `json:"id"`
	Description string               `json:"description,omitempty"`
	Processors  int                  `json:"processors"`
	Definition  *pipeline.Definition `json:"definition,omitempty"`
}

func summarize(p *pipeline.Pipeline) PipelineSummary {
	s := PipelineSummary{ID: p.ID(), Description: p.Description(), Processors: len(p.Processors())}
	if def, ok := p.Definition(); ok {
		s.Definition = &def
	}
	return s
}

// ListPipelines returns every stored pipeline sorted by id.
func ListPipelines(store PipelineStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		pipelines := store.List()
		out := make([]PipelineSummary, 0, len(pipelines))
		for _, p := range pipelines {
			out = append(out, summarize(p))
		}
		server.RespondOK(c, out)
	}
}

// GetPipeline returns one pipeline or 404 PIPELINE_NOT_FOUND.
func GetPipeline(store PipelineStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		p, err := store.Get(c.Param("id"))
		if err != nil {
			server.RespondWithError(c, err)
			return
		}
		server.RespondOK(c, summarize(p))
	}
}

// PutPipeline builds the definition in the body and stores it under the
// path id, replacing any previous pipeline. The path id wins over an id in
// the body.
func PutPipeline(store PipelineStore, registry *pipeline.Registry) gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.Param("id")
		if err := validation.New().Pattern("id", id, validation.IDPattern).Validate(); err != nil {
			server.RespondWithError(c, err)
			return
		}
		var def pipeline.Definition
		if err := c.ShouldBindJSON(&def); err != nil {
			server.RespondWithError(c, apperrors.InvalidInput("body", err.Error()))
			return
		}
		def.ID = id
		p, err := registry.Build(def)
		if err != nil {
			server.RespondWithError(c, err)
			return
		}
		store.Put(p)
		server.RespondOK(c, gin.H{"acknowledged": true, "id": id})
	}
}

// DeletePipeline removes a pipeline or answers 404 PIPELINE_NOT_FOUND.
func DeletePipeline(store PipelineStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.Param("id")
		if !store.Delete(id) {
			server.RespondWithError(c, apperrors.PipelineNotFound(id))
			return
		}
		server.RespondOK(c, gin.H{"acknowledged": true, "id": id})
	}
}

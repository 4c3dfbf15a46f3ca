package endpoint

import (
	"github.com/gin-gonic/gin"

	"github.com/kbukum/ingest/pipeline"
	"github.com/kbukum/ingest/simulate"
)

// IngestService is what the bulk and stats endpoints need.
type IngestService interface {
	BulkExecutor
	StatsSource
}

// Handlers bundles the dependencies of the API routes.
type Handlers struct {
	ServiceName string
	Health      HealthChecker
	Store       PipelineStore
	Registry    *pipeline.Registry
	Simulator   *simulate.Simulator
	Ingest      IngestService
}

// Mount registers every API route on r.
func Mount(r gin.IRouter, h Handlers) {
	r.GET("/health", Health(h.ServiceName, h.Health))
	r.GET("/alive", Liveness())
	r.GET("/version", Version())

	ing := r.Group("/_ingest")
	ing.GET("/stats", Stats(h.Ingest))
	ing.GET("/pipeline", ListPipelines(h.Store))
	ing.GET("/pipeline/:id", GetPipeline(h.Store))
	ing.PUT("/pipeline/:id", PutPipeline(h.Store, h.Registry))
	ing.DELETE("/pipeline/:id", DeletePipeline(h.Store))
	ing.POST("/pipeline/_simulate", Simulate(h.Simulator))
	ing.POST("/pipeline/:id/_simulate", Simulate(h.Simulator))

	r.POST("/_bulk", Bulk(h.Ingest))
}

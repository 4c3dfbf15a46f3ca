package endpoint

import (
	"github.com/gin-gonic/gin"

	"github.com/kbukum/ingest/ingest"
	"github.com/kbukum/ingest/server"
)

// StatsSource supplies ingest statistics.
type StatsSource interface {
	Stats() ingest.StatsSnapshot
}

// Stats returns the total and per-pipeline ingest counters.
func Stats(src StatsSource) gin.HandlerFunc {
	return func(c *gin.Context) {
		server.RespondOK(c, src.Stats())
	}
}

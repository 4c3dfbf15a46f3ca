package endpoint

import (
	"strconv"

	"github.com/gin-gonic/gin"

	apperrors "github.com/kbukum/ingest/errors"
	"github.com/kbukum/ingest/server"
	"github.com/kbukum/ingest/simulate"
)

// Simulate dry-runs a stored pipeline (path id) or an inline one (body
// "pipeline") over the body's docs. ?verbose=true reports every processor.
func Simulate(sim *simulate.Simulator) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req simulate.Request
		if err := c.ShouldBindJSON(&req); err != nil {
			server.RespondWithError(c, apperrors.InvalidInput("body", err.Error()))
			return
		}
		req.PipelineID = c.Param("id")
		if v := c.Query("verbose"); v != "" {
			verbose, err := strconv.ParseBool(v)
			if err != nil {
				server.RespondWithError(c, apperrors.InvalidInput("verbose", "must be a boolean"))
				return
			}
			req.Verbose = verbose
		}

		resp, err := sim.Simulate(c.Request.Context(), &req)
		if err != nil {
			server.RespondWithError(c, err)
			return
		}
		server.RespondOK(c, resp)
	}
}

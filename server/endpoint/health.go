package endpoint

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/kbukum/ingest/component"
	"github.com/kbukum/ingest/observability"
	"github.com/kbukum/ingest/version"
)

// HealthChecker returns health status for registered components.
type HealthChecker func(ctx context.Context) []component.Health

// Health reports service health with component statuses. A down component
// answers 503.
func Health(serviceName string, checker HealthChecker) gin.HandlerFunc {
	return func(c *gin.Context) {
		sh := observability.NewServiceHealth(serviceName, version.Get().Short())
		if checker != nil {
			for _, h := range checker(c.Request.Context()) {
				sh.AddComponent(observability.FromComponent(h))
			}
		}
		status := http.StatusOK
		if sh.Status == observability.HealthStatusDown {
			status = http.StatusServiceUnavailable
		}
		c.JSON(status, sh)
	}
}

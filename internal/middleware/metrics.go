package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/se-evidence-api/internal/service"
)

const unmatchedRoute = "unmatched"

// Metrics observes every routed request under its route template. Requests
// that match no route share one label so probing cannot grow the series set.
func Metrics(metricsSvc *service.MetricsService) gin.HandlerFunc {
	return func(c *gin.Context) {
		if metricsSvc == nil {
			c.Next()
			return
		}
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = unmatchedRoute
		}
		metricsSvc.ObserveHTTPRequest(c.Request.Method, route, c.Writer.Status(), time.Since(start))
	}
}

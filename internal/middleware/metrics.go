package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/quilldesk/brokerage-api/internal/service"
)

// Metrics times every request and records it against the route template, so
// /assignments/:id aggregates as one series instead of one per ledger entry.
// Unroutable requests fall back to the raw path.
func Metrics(metrics *service.MetricsService) gin.HandlerFunc {
	return func(c *gin.Context) {
		if metrics == nil {
			c.Next()
			return
		}

		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = c.Request.URL.Path
		}
		metrics.ObserveHTTPRequest(c.Request.Method, route, c.Writer.Status(), time.Since(start))
	}
}

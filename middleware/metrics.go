package middleware

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"safebill-backend/internal/telemetry"
)

// RequestMetrics records a request counter and latency histogram. The path
// attribute uses the route template so cardinality stays bounded.
func RequestMetrics(metrics *telemetry.Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		if metrics == nil {
			c.Next()
			return
		}

		start := time.Now()
		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		metrics.RecordRequest(
			c.Request.Method,
			path,
			strconv.Itoa(c.Writer.Status()),
			time.Since(start).Seconds(),
		)
	}
}

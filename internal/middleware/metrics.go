package middleware

import (
	"strconv"
	"time"

	"github.com/SscSPs/recon_workbench/internal/platform/metrics"
	"github.com/gin-gonic/gin"
)

// pathsToSkip contains paths that are not recorded in request metrics.
var pathsToSkip = map[string]bool{
	"/health":  true,
	"/metrics": true,
}

// MetricsMiddleware records request counts and latency per route template.
func MetricsMiddleware(m *metrics.Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		if m == nil || pathsToSkip[c.Request.URL.Path] {
			c.Next()
			return
		}

		start := time.Now()
		c.Next()

		// Unmatched routes share one label to keep cardinality bounded.
		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		m.ObserveHTTP(route, c.Request.Method, strconv.Itoa(c.Writer.Status()), time.Since(start))
	}
}

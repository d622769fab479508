package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/archetype/archetype/internal/observability/metrics"
)

// Metrics records request counts and latency by route template, so
// /api/users/:id is one series regardless of the id.
func Metrics(m *metrics.Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}

		done := m.RequestStarted(c.Request.Method, path)
		c.Next()
		done(c.Writer.Status())
	}
}

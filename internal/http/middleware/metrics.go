package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/lecture-feedback-backend/internal/observability"
)

// Metrics instruments HTTP request counts/latency when metrics are enabled.
// Routes are labelled by their pattern, never the raw path.
func Metrics(m *observability.Metrics) gin.HandlerFunc {
	if m == nil {
		return func(c *gin.Context) { c.Next() }
	}
	return func(c *gin.Context) {
		start := time.Now()
		m.ApiInflightInc()
		defer m.ApiInflightDec()

		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unknown"
		}
		m.ObserveAPI(c.Request.Method, route, observability.StatusLabel(c.Writer.Status()), time.Since(start))
	}
}

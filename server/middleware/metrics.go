package middleware

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/kbukum/huddle/observability"
)

// Metrics records request count, latency and in-flight gauge labelled by the
// Gin route template. Unmatched requests are labelled "unmatched".
func Metrics(m *observability.Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.URL.Path == "/metrics" {
			c.Next()
			return
		}
		start := time.Now()
		m.RecordRequestStart()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		m.RecordRequestEnd(c.Request.Method, route, strconv.Itoa(c.Writer.Status()), time.Since(start))
	}
}

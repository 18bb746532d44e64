package middleware

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/coscheck/coscheck/internal/infrastructure/monitoring/prometheus"
)

// Metrics records request counts and latency per route.
func Metrics(m *prometheus.Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		m.HTTPRequestsTotal.WithLabelValues(
			c.Request.Method, path, strconv.Itoa(c.Writer.Status()),
		).Inc()
		m.HTTPRequestDuration.WithLabelValues(
			c.Request.Method, path,
		).Observe(time.Since(start).Seconds())
	}
}

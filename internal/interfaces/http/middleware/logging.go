package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/coscheck/coscheck/internal/infrastructure/monitoring/logging"
)

// Logging writes one structured access log line per request.
func Logging(logger logging.Logger) gin.HandlerFunc {
	access := logger.Named("http")
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		access.Info("request",
			logging.String("request_id", GetRequestID(c)),
			logging.String("method", c.Request.Method),
			logging.String("path", c.FullPath()),
			logging.Int("status", c.Writer.Status()),
			logging.Duration("elapsed", time.Since(start)),
		)
	}
}

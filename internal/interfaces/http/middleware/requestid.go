// Package middleware carries the cross-cutting request plumbing of the HTTP
// surface.
package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// RequestIDHeader carries the request correlation id.
const RequestIDHeader = "X-Request-ID"

// requestIDKey is the gin context key the id is stored under.
const requestIDKey = "request_id"

// RequestID assigns every request a correlation id, honoring one supplied by
// the caller.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(RequestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		c.Set(requestIDKey, id)
		c.Header(RequestIDHeader, id)
		c.Next()
	}
}

// GetRequestID returns the correlation id of the request, or "".
func GetRequestID(c *gin.Context) string {
	return c.GetString(requestIDKey)
}

package api

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/penwyp/go-callflow/internal/util"
)

// RequestIDHeader carries the request id in both directions
const RequestIDHeader = "X-Request-ID"

// RequestID tags each request with an id, taken from the client when supplied,
// and makes it available to loggers through the request context
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(RequestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		c.Header(RequestIDHeader, id)
		c.Request = c.Request.WithContext(util.ContextWithRequestID(c.Request.Context(), id))
		c.Next()
	}
}

// AccessLog writes one debug line per request
func AccessLog(logger util.LoggerInterface) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		logger.WithContext(c.Request.Context()).Debug("request",
			util.F("method", c.Request.Method),
			util.F("path", c.FullPath()),
			util.F("status", c.Writer.Status()),
			util.F("duration_ms", time.Since(start).Milliseconds()))
	}
}

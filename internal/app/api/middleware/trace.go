package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/fatflowers/sitecraft/pkg/logctx"
)

const HeaderRequestID = "X-Request-ID"

// TraceMiddleware reads X-Request-ID if provided by the client, otherwise generates a UUID.
// The trace ID is stored in both gin.Context and the request's context.Context.
func TraceMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		traceID := c.GetHeader(HeaderRequestID)
		if traceID == "" || len(traceID) > 128 {
			traceID = uuid.New().String()
		}

		c.Set(logctx.KeyTraceID, traceID)
		c.Request = c.Request.WithContext(logctx.WithValue(c.Request.Context(), logctx.KeyTraceID, traceID))
		c.Next()
	}
}

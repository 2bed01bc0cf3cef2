package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/vendahub/billing/pkg/logctx"
)

// TraceMiddleware assigns every request a trace id: the client-supplied
// X-Request-ID when present, a fresh UUID otherwise. The id is stored on
// the gin context and the request context.
func TraceMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		traceID := c.GetHeader("X-Request-ID")
		if traceID == "" {
			traceID = uuid.New().String()
		}

		c.Set("traceID", traceID)
		c.Request = c.Request.WithContext(logctx.WithTraceID(c.Request.Context(), traceID))

		c.Next()
	}
}

package middleware

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/vendahub/billing/pkg/logctx"
)

// RequestLoggerMiddleware derives a request-scoped logger carrying the
// trace id (and user id once auth has run) and attaches it to both the
// gin context and the request context.
func RequestLoggerMiddleware(base *zap.SugaredLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		fields := []interface{}{}
		if traceID := c.GetString("traceID"); traceID != "" {
			fields = append(fields, "trace_id", traceID)
			c.Writer.Header().Set("X-Request-ID", traceID)
		}
		if userID := c.GetString("user_id"); userID != "" {
			fields = append(fields, "user_id", userID)
		}

		reqLogger := base.With(fields...)
		c.Set("logger", reqLogger)
		c.Request = c.Request.WithContext(logctx.WithLogger(c.Request.Context(), reqLogger))

		c.Next()
	}
}

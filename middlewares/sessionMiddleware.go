package middlewares

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/mmdatafocus/tpq_backend/utils"
)

const CorrelationIdHeader = "X-Correlation-ID"

// CorrelationMiddleware tags each request with a correlation id, reusing the
// caller's header when present, and echoes it back on the response.
func CorrelationMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		correlationId := strings.TrimSpace(c.Request.Header.Get(CorrelationIdHeader))
		if correlationId == "" || len(correlationId) > 64 {
			correlationId = uuid.NewString()
		}
		ctx := utils.SetCorrelationIdInContext(c.Request.Context(), correlationId)
		c.Request = c.Request.WithContext(ctx)
		c.Header(CorrelationIdHeader, correlationId)
		c.Next()
	}
}

package response

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// ContextKeyRequestID is the Gin context key under which the request ID is
// stored for the response metadata.
const ContextKeyRequestID = "request_id"

// RequestIDMiddleware tags every gateway request with an ID that ends up in
// the response metadata and the X-Request-ID header. The presentation layer
// may supply its own via X-Request-ID to correlate a candidate action across
// the shell, the gateway, and the platform; otherwise one is generated.
func RequestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader("X-Request-ID")
		if id == "" {
			id = uuid.New().String()
		}
		c.Set(ContextKeyRequestID, id)
		c.Header("X-Request-ID", id)
		c.Next()
	}
}

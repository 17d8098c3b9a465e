package middleware

import (
	"crypto/subtle"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/hireside/proctor-gateway/internal/response"
)

// HeaderGatewayToken is the shared-secret header between the presentation
// layer and the gateway.
const HeaderGatewayToken = "X-Gateway-Token"

// RequireGatewayToken enforces the configured shared secret on every
// request. A blank configured token disables the check (local dev).
// WebSocket upgrades may pass the token as ?token= instead, since browsers
// cannot set headers on upgrade requests.
func RequireGatewayToken(token string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if token == "" {
			c.Next()
			return
		}

		presented := c.GetHeader(HeaderGatewayToken)
		if presented == "" {
			presented = c.Query("token")
		}
		if presented == "" {
			response.AbortFail(c, http.StatusUnauthorized, response.ErrTokenRequired)
			return
		}
		if subtle.ConstantTimeCompare([]byte(presented), []byte(token)) != 1 {
			response.AbortFail(c, http.StatusUnauthorized, response.ErrTokenInvalid)
			return
		}
		c.Next()
	}
}

// internal/interfaces/http/middleware/identity.go
package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/your-org/storefront-bff/internal/pkg/session"
)

// Identity resolves the request identity eagerly so every handler and
// downstream middleware sees the same actor, authenticated or
// anonymous.
func Identity(resolver *session.Resolver) gin.HandlerFunc {
	return func(c *gin.Context) {
		resolver.Current(c)
		c.Next()
	}
}

// RequireAuth aborts requests that do not carry a valid credential.
func RequireAuth(resolver *session.Resolver) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !resolver.IsAuthenticated(c) {
			c.JSON(http.StatusUnauthorized, gin.H{
				"success": false,
				"message": "Authentication required",
			})
			c.Abort()
			return
		}

		c.Next()
	}
}

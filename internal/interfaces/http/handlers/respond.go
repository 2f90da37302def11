// internal/interfaces/http/handlers/respond.go
package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/your-org/storefront-bff/internal/infrastructure/commerce"
	"github.com/your-org/storefront-bff/internal/pkg/session"
)

// respond writes the storefront response envelope.
func respond(c *gin.Context, status int, data interface{}, count int, message string) {
	c.JSON(status, gin.H{
		"success": status >= 200 && status < 300,
		"data":    data,
		"count":   count,
		"message": message,
	})
}

// respondError writes a failure envelope with the enclosing status.
func respondError(c *gin.Context, status int, message string) {
	c.JSON(status, gin.H{
		"success": false,
		"message": message,
	})
}

// respondUpstreamError maps a remote synchronization failure onto the
// storefront surface: upstream rejections keep their status and
// message, anything else is a generic bad-gateway failure.
func respondUpstreamError(c *gin.Context, err error) {
	var apiErr *commerce.APIError
	if errors.As(err, &apiErr) {
		respondError(c, apiErr.StatusCode, apiErr.Message)
		return
	}

	respondError(c, http.StatusBadGateway, "Commerce service unavailable")
}

// callerFor builds the upstream caller identity for a request.
func callerFor(c *gin.Context, identity session.Identity) commerce.Caller {
	caller := commerce.Caller{}
	if identity.User != nil {
		caller.UserID = identity.User.ID
	}
	if cookie, err := c.Request.Cookie(session.CookieName); err == nil {
		caller.SessionCookie = cookie
	}
	return caller
}

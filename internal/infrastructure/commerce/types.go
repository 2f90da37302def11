// internal/infrastructure/commerce/types.go
package commerce

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/your-org/storefront-bff/internal/domain/catalog"
)

// envelope is the upstream response wrapper. Failure responses carry
// success=false and a message alongside the HTTP status.
type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Count   int             `json:"count"`
	Message string          `json:"message"`
}

// Caller identifies who a request is issued for. Authenticated callers
// carry a user id (sent as the x-user-id header); anonymous callers
// carry the forwarded session cookie.
type Caller struct {
	UserID        string
	SessionCookie *http.Cookie
}

// ownerKey scopes cache entries per caller.
func (c Caller) ownerKey() string {
	if c.UserID != "" {
		return "user:" + c.UserID
	}
	if c.SessionCookie != nil {
		return "session:" + c.SessionCookie.Value
	}
	return "anonymous"
}

// CartEntry is a cart line item as served by the upstream commerce API.
type CartEntry struct {
	ID        string                  `json:"id"`
	ProductID string                  `json:"productId"`
	Quantity  int                     `json:"quantity"`
	AddedAt   time.Time               `json:"addedAt"`
	Product   catalog.ProductSnapshot `json:"product"`
}

// WishlistEntry is a wishlist entry as served by the upstream API.
type WishlistEntry struct {
	ID        string                  `json:"id"`
	ProductID string                  `json:"productId"`
	AddedAt   time.Time               `json:"addedAt"`
	Product   catalog.ProductSnapshot `json:"product"`
}

// APIError is a non-success upstream response. The status code mirrors
// the enclosing HTTP status.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("commerce api: %s (status %d)", e.Message, e.StatusCode)
}

// IsClientError reports whether the upstream rejected the request as
// invalid rather than failing to serve it.
func (e *APIError) IsClientError() bool {
	return e.StatusCode >= 400 && e.StatusCode < 500
}

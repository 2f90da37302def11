// internal/interfaces/http/handlers/order.go
package handlers

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/your-org/storefront-bff/internal/domain/cart"
	"github.com/your-org/storefront-bff/internal/infrastructure/commerce"
	"github.com/your-org/storefront-bff/internal/pkg/session"
)

// OrderHandler proxies order history and checkout to the upstream
// commerce API. Completing checkout clears the cart collection.
type OrderHandler struct {
	carts    *cart.Service
	commerce *commerce.Client
	resolver *session.Resolver
	logger   *logrus.Logger
}

// NewOrderHandler creates a new order handler
func NewOrderHandler(carts *cart.Service, client *commerce.Client, resolver *session.Resolver, logger *logrus.Logger) *OrderHandler {
	return &OrderHandler{
		carts:    carts,
		commerce: client,
		resolver: resolver,
		logger:   logger,
	}
}

// GetOrders handles GET /order
func (h *OrderHandler) GetOrders(c *gin.Context) {
	identity := h.resolver.Current(c)

	orders, err := h.commerce.ListOrders(c.Request.Context(), callerFor(c, identity))
	if err != nil {
		respondUpstreamError(c, err)
		return
	}

	respond(c, http.StatusOK, orders, 0, "Orders retrieved successfully")
}

// CreateOrder handles POST /order - forwards the order payload and
// clears the cart on success.
func (h *OrderHandler) CreateOrder(c *gin.Context) {
	identity := h.resolver.Current(c)
	caller := callerFor(c, identity)
	ctx := c.Request.Context()

	body, err := io.ReadAll(c.Request.Body)
	if err != nil || len(body) == 0 {
		respondError(c, http.StatusBadRequest, "Order payload required")
		return
	}
	if !json.Valid(body) {
		respondError(c, http.StatusBadRequest, "Invalid order payload")
		return
	}

	created, err := h.commerce.CreateOrder(ctx, caller, json.RawMessage(body))
	if err != nil {
		respondUpstreamError(c, err)
		return
	}

	// Checkout completion clears the cart collection
	if err := h.carts.Clear(ctx, identity.OwnerKey()); err != nil {
		h.logger.WithError(err).WithField("owner", identity.OwnerKey()).Warn("Failed to clear cart after checkout")
	}
	h.commerce.InvalidateCart(ctx, caller)

	respond(c, http.StatusCreated, created, 0, "Order created successfully")
}

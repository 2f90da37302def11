// internal/interfaces/http/handlers/cart.go
package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/your-org/storefront-bff/internal/domain/cart"
	"github.com/your-org/storefront-bff/internal/infrastructure/commerce"
	"github.com/your-org/storefront-bff/internal/pkg/session"
)

// CartHandler handles cart endpoints. Anonymous carts live in the
// persisted local collection; authenticated carts are mirrored to the
// upstream commerce API and read back from its cached view.
type CartHandler struct {
	carts    *cart.Service
	commerce *commerce.Client
	resolver *session.Resolver
	logger   *logrus.Logger
}

// NewCartHandler creates a new cart handler
func NewCartHandler(carts *cart.Service, client *commerce.Client, resolver *session.Resolver, logger *logrus.Logger) *CartHandler {
	return &CartHandler{
		carts:    carts,
		commerce: client,
		resolver: resolver,
		logger:   logger,
	}
}

// AddToCartRequest represents add to cart request
type AddToCartRequest struct {
	ProductID string `json:"productId" binding:"required"`
	Quantity  int    `json:"quantity" binding:"required,min=1"`
}

// UpdateCartItemRequest represents update cart item request
type UpdateCartItemRequest struct {
	Quantity int `json:"quantity"`
}

// RemoveFromCartRequest represents remove from cart request
type RemoveFromCartRequest struct {
	CartID string `json:"cartId"`
}

// GetCart handles GET /cart
func (h *CartHandler) GetCart(c *gin.Context) {
	identity := h.resolver.Current(c)

	if identity.IsAuthenticated() {
		entries, err := h.commerce.ListCart(c.Request.Context(), callerFor(c, identity))
		if err != nil {
			respondUpstreamError(c, err)
			return
		}
		respond(c, http.StatusOK, entries, len(entries), "Cart retrieved successfully")
		return
	}

	collection, err := h.carts.Get(c.Request.Context(), identity.OwnerKey())
	if err != nil {
		respondError(c, http.StatusInternalServerError, "Failed to retrieve cart")
		return
	}

	respond(c, http.StatusOK, collection.Items, len(collection.Items), "Cart retrieved successfully")
}

// AddToCart handles POST /cart
func (h *CartHandler) AddToCart(c *gin.Context) {
	identity := h.resolver.Current(c)
	caller := callerFor(c, identity)

	var req AddToCartRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "Invalid request data: "+err.Error())
		return
	}

	// The server is authoritative for product existence
	product, err := h.commerce.GetProduct(c.Request.Context(), caller, req.ProductID)
	if err != nil {
		respondUpstreamError(c, err)
		return
	}

	// Optimistic local mutation; not rolled back if the mirror fails
	collection, err := h.carts.Add(c.Request.Context(), identity.OwnerKey(), *product, req.Quantity)
	if err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}

	if identity.IsAuthenticated() {
		if err := h.commerce.AddCartItem(c.Request.Context(), caller, req.ProductID, req.Quantity); err != nil {
			respondUpstreamError(c, err)
			return
		}

		entries, err := h.commerce.ListCart(c.Request.Context(), caller)
		if err != nil {
			respondUpstreamError(c, err)
			return
		}
		respond(c, http.StatusOK, entries, len(entries), "Item added to cart successfully")
		return
	}

	respond(c, http.StatusOK, collection.Items, len(collection.Items), "Item added to cart successfully")
}

// UpdateCartItem handles PUT /cart/items/:id
func (h *CartHandler) UpdateCartItem(c *gin.Context) {
	identity := h.resolver.Current(c)
	lineItemID := c.Param("id")

	var req UpdateCartItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "Invalid request data: "+err.Error())
		return
	}

	if identity.IsAuthenticated() {
		h.updateRemoteItem(c, identity, lineItemID, req.Quantity)
		return
	}

	collection, err := h.carts.UpdateQuantity(c.Request.Context(), identity.OwnerKey(), lineItemID, req.Quantity)
	if err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}

	respond(c, http.StatusOK, collection.Items, len(collection.Items), "Cart item updated successfully")
}

// updateRemoteItem reconciles a quantity change against the upstream:
// remove first, then re-add with the new quantity.
func (h *CartHandler) updateRemoteItem(c *gin.Context, identity session.Identity, entryID string, quantity int) {
	caller := callerFor(c, identity)
	ctx := c.Request.Context()

	entries, err := h.commerce.ListCart(ctx, caller)
	if err != nil {
		respondUpstreamError(c, err)
		return
	}

	var productID string
	for _, entry := range entries {
		if entry.ID == entryID {
			productID = entry.ProductID
			break
		}
	}
	if productID == "" {
		respondError(c, http.StatusNotFound, "Cart item not found")
		return
	}

	if err := h.commerce.RemoveCartItem(ctx, caller, entryID); err != nil {
		respondUpstreamError(c, err)
		return
	}
	if quantity > 0 {
		if err := h.commerce.AddCartItem(ctx, caller, productID, quantity); err != nil {
			respondUpstreamError(c, err)
			return
		}
	}

	refreshed, err := h.commerce.ListCart(ctx, caller)
	if err != nil {
		respondUpstreamError(c, err)
		return
	}
	respond(c, http.StatusOK, refreshed, len(refreshed), "Cart item updated successfully")
}

// RemoveFromCart handles DELETE /cart. A body naming a cart entry
// removes that entry; an empty body clears the whole cart.
func (h *CartHandler) RemoveFromCart(c *gin.Context) {
	identity := h.resolver.Current(c)
	caller := callerFor(c, identity)
	ctx := c.Request.Context()

	var req RemoveFromCartRequest
	_ = c.ShouldBindJSON(&req) // empty body means clear

	if req.CartID == "" {
		h.clearCart(c, identity)
		return
	}

	// Removing a missing local line is a silent no-op
	collection, err := h.carts.Remove(ctx, identity.OwnerKey(), req.CartID)
	if err != nil {
		respondError(c, http.StatusInternalServerError, "Failed to remove cart item")
		return
	}

	if identity.IsAuthenticated() {
		if err := h.commerce.RemoveCartItem(ctx, caller, req.CartID); err != nil {
			respondUpstreamError(c, err)
			return
		}

		entries, err := h.commerce.ListCart(ctx, caller)
		if err != nil {
			respondUpstreamError(c, err)
			return
		}
		respond(c, http.StatusOK, entries, len(entries), "Item removed from cart successfully")
		return
	}

	respond(c, http.StatusOK, collection.Items, len(collection.Items), "Item removed from cart successfully")
}

func (h *CartHandler) clearCart(c *gin.Context, identity session.Identity) {
	caller := callerFor(c, identity)
	ctx := c.Request.Context()

	if err := h.carts.Clear(ctx, identity.OwnerKey()); err != nil {
		respondError(c, http.StatusInternalServerError, "Failed to clear cart")
		return
	}

	if identity.IsAuthenticated() {
		// The upstream has no clear operation; remove entries one by one
		entries, err := h.commerce.ListCart(ctx, caller)
		if err != nil {
			respondUpstreamError(c, err)
			return
		}
		for _, entry := range entries {
			if err := h.commerce.RemoveCartItem(ctx, caller, entry.ID); err != nil {
				respondUpstreamError(c, err)
				return
			}
		}
	}

	respond(c, http.StatusOK, nil, 0, "Cart cleared successfully")
}

// GetCartCount handles GET /cart/count
func (h *CartHandler) GetCartCount(c *gin.Context) {
	identity := h.resolver.Current(c)

	if identity.IsAuthenticated() {
		entries, err := h.commerce.ListCart(c.Request.Context(), callerFor(c, identity))
		if err != nil {
			respondUpstreamError(c, err)
			return
		}

		totalItems := 0
		var totalPrice int64
		for _, entry := range entries {
			totalItems += entry.Quantity
			totalPrice += entry.Product.Price * int64(entry.Quantity)
		}
		respond(c, http.StatusOK, gin.H{"count": totalItems, "total_price": totalPrice}, totalItems, "Cart count retrieved successfully")
		return
	}

	collection, err := h.carts.Get(c.Request.Context(), identity.OwnerKey())
	if err != nil {
		respondError(c, http.StatusInternalServerError, "Failed to get cart count")
		return
	}

	respond(c, http.StatusOK, gin.H{
		"count":       collection.TotalItems(),
		"total_price": collection.TotalPrice(),
	}, collection.TotalItems(), "Cart count retrieved successfully")
}

// MergeCart handles POST /cart/merge - folds the anonymous session
// cart into the authenticated user's cart.
func (h *CartHandler) MergeCart(c *gin.Context) {
	identity := h.resolver.Current(c)
	if !identity.IsAuthenticated() {
		respondError(c, http.StatusUnauthorized, "Authentication required")
		return
	}

	sessionID, err := c.Cookie(session.CookieName)
	if err != nil || sessionID == "" {
		respond(c, http.StatusOK, nil, 0, "No anonymous cart to merge")
		return
	}

	caller := callerFor(c, identity)
	if err := mergeAnonymousCart(c.Request.Context(), h.carts, h.commerce, h.logger, caller, "session:"+sessionID, identity.OwnerKey()); err != nil {
		respondError(c, http.StatusInternalServerError, "Failed to merge cart")
		return
	}

	entries, err := h.commerce.ListCart(c.Request.Context(), caller)
	if err != nil {
		respondUpstreamError(c, err)
		return
	}
	respond(c, http.StatusOK, entries, len(entries), "Cart merged successfully")
}

// mergeAnonymousCart mirrors the anonymous collection's lines to the
// upstream, merges them into the user-scoped local collection, and
// discards the anonymous collection. Mirror failures are logged and
// skipped so a single bad line does not lose the rest.
func mergeAnonymousCart(ctx context.Context, carts *cart.Service, client *commerce.Client, logger *logrus.Logger, caller commerce.Caller, fromOwner, toOwner string) error {
	source, err := carts.Get(ctx, fromOwner)
	if err != nil {
		return err
	}

	for _, item := range source.Items {
		if err := client.AddCartItem(ctx, caller, item.ProductID, item.Quantity); err != nil {
			logger.WithError(err).WithField("product_id", item.ProductID).Warn("Failed to mirror merged cart line")
		}
	}

	if _, err := carts.Merge(ctx, fromOwner, toOwner); err != nil {
		return err
	}

	client.InvalidateCart(ctx, caller)
	return nil
}

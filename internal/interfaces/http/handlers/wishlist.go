// internal/interfaces/http/handlers/wishlist.go
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/your-org/storefront-bff/internal/domain/wishlist"
	"github.com/your-org/storefront-bff/internal/infrastructure/commerce"
	"github.com/your-org/storefront-bff/internal/pkg/session"
)

// WishlistHandler handles wishlist endpoints
type WishlistHandler struct {
	wishlists *wishlist.Service
	commerce  *commerce.Client
	resolver  *session.Resolver
	logger    *logrus.Logger
}

// NewWishlistHandler creates a new wishlist handler
func NewWishlistHandler(wishlists *wishlist.Service, client *commerce.Client, resolver *session.Resolver, logger *logrus.Logger) *WishlistHandler {
	return &WishlistHandler{
		wishlists: wishlists,
		commerce:  client,
		resolver:  resolver,
		logger:    logger,
	}
}

// ToggleWishlistRequest represents a wishlist toggle request
type ToggleWishlistRequest struct {
	ProductID string `json:"productId" binding:"required"`
}

// GetWishlist handles GET /wishlist
func (h *WishlistHandler) GetWishlist(c *gin.Context) {
	identity := h.resolver.Current(c)

	if identity.IsAuthenticated() {
		entries, err := h.commerce.ListWishlist(c.Request.Context(), callerFor(c, identity))
		if err != nil {
			respondUpstreamError(c, err)
			return
		}
		respond(c, http.StatusOK, entries, len(entries), "Wishlist retrieved successfully")
		return
	}

	collection, err := h.wishlists.Get(c.Request.Context(), identity.OwnerKey())
	if err != nil {
		respondError(c, http.StatusInternalServerError, "Failed to retrieve wishlist")
		return
	}

	respond(c, http.StatusOK, collection.Entries, len(collection.Entries), "Wishlist retrieved successfully")
}

// ToggleWishlist handles POST /wishlist - adds the product when absent,
// removes it when present.
func (h *WishlistHandler) ToggleWishlist(c *gin.Context) {
	identity := h.resolver.Current(c)
	caller := callerFor(c, identity)
	ctx := c.Request.Context()

	var req ToggleWishlistRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "Invalid request data: "+err.Error())
		return
	}

	product, err := h.commerce.GetProduct(ctx, caller, req.ProductID)
	if err != nil {
		respondUpstreamError(c, err)
		return
	}

	// Optimistic local toggle; not rolled back if the mirror fails
	added, collection, err := h.wishlists.Toggle(ctx, identity.OwnerKey(), *product)
	if err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}

	message := "Item removed from wishlist"
	if added {
		message = "Item added to wishlist"
	}

	if identity.IsAuthenticated() {
		if err := h.mirrorToggle(c, caller, req.ProductID, added); err != nil {
			respondUpstreamError(c, err)
			return
		}

		entries, err := h.commerce.ListWishlist(ctx, caller)
		if err != nil {
			respondUpstreamError(c, err)
			return
		}
		respond(c, http.StatusOK, entries, len(entries), message)
		return
	}

	respond(c, http.StatusOK, collection.Entries, len(collection.Entries), message)
}

// mirrorToggle replays a local toggle against the upstream wishlist.
func (h *WishlistHandler) mirrorToggle(c *gin.Context, caller commerce.Caller, productID string, added bool) error {
	ctx := c.Request.Context()

	if added {
		return h.commerce.AddWishlistItem(ctx, caller, productID)
	}

	entries, err := h.commerce.ListWishlist(ctx, caller)
	if err != nil {
		return err
	}
	for _, entry := range entries {
		if entry.ProductID == productID {
			return h.commerce.RemoveWishlistItem(ctx, caller, entry.ID)
		}
	}
	// Already absent upstream
	return nil
}

// RemoveFromWishlist handles DELETE /wishlist/:id
func (h *WishlistHandler) RemoveFromWishlist(c *gin.Context) {
	identity := h.resolver.Current(c)
	entryID := c.Param("id")
	ctx := c.Request.Context()

	collection, err := h.wishlists.Remove(ctx, identity.OwnerKey(), entryID)
	if err != nil {
		respondError(c, http.StatusInternalServerError, "Failed to remove wishlist entry")
		return
	}

	if identity.IsAuthenticated() {
		caller := callerFor(c, identity)
		if err := h.commerce.RemoveWishlistItem(ctx, caller, entryID); err != nil {
			respondUpstreamError(c, err)
			return
		}

		entries, err := h.commerce.ListWishlist(ctx, caller)
		if err != nil {
			respondUpstreamError(c, err)
			return
		}
		respond(c, http.StatusOK, entries, len(entries), "Item removed from wishlist")
		return
	}

	respond(c, http.StatusOK, collection.Entries, len(collection.Entries), "Item removed from wishlist")
}

// ClearWishlist handles DELETE /wishlist
func (h *WishlistHandler) ClearWishlist(c *gin.Context) {
	identity := h.resolver.Current(c)
	caller := callerFor(c, identity)
	ctx := c.Request.Context()

	if err := h.wishlists.Clear(ctx, identity.OwnerKey()); err != nil {
		respondError(c, http.StatusInternalServerError, "Failed to clear wishlist")
		return
	}

	if identity.IsAuthenticated() {
		entries, err := h.commerce.ListWishlist(ctx, caller)
		if err != nil {
			respondUpstreamError(c, err)
			return
		}
		for _, entry := range entries {
			if err := h.commerce.RemoveWishlistItem(ctx, caller, entry.ID); err != nil {
				respondUpstreamError(c, err)
				return
			}
		}
	}

	respond(c, http.StatusOK, nil, 0, "Wishlist cleared successfully")
}

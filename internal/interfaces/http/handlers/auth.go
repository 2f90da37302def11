// internal/interfaces/http/handlers/auth.go
package handlers

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/your-org/storefront-bff/internal/domain/cart"
	"github.com/your-org/storefront-bff/internal/domain/wishlist"
	"github.com/your-org/storefront-bff/internal/infrastructure/commerce"
	"github.com/your-org/storefront-bff/internal/pkg/session"
)

// AuthHandler forwards authentication to the upstream commerce API and
// drives the identity resolver. Logging in merges the anonymous cart
// into the user's cart; logging out clears the user's collections.
type AuthHandler struct {
	carts     *cart.Service
	wishlists *wishlist.Service
	commerce  *commerce.Client
	resolver  *session.Resolver
	logger    *logrus.Logger
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(carts *cart.Service, wishlists *wishlist.Service, client *commerce.Client, resolver *session.Resolver, logger *logrus.Logger) *AuthHandler {
	return &AuthHandler{
		carts:     carts,
		wishlists: wishlists,
		commerce:  client,
		resolver:  resolver,
		logger:    logger,
	}
}

// loginData is the part of the upstream login response the storefront
// needs; the full payload is forwarded to the caller untouched.
type loginData struct {
	Token string `json:"token"`
}

// Register handles POST /auth/register
func (h *AuthHandler) Register(c *gin.Context) {
	body, err := io.ReadAll(c.Request.Body)
	if err != nil || len(body) == 0 {
		respondError(c, http.StatusBadRequest, "Registration payload required")
		return
	}
	if !json.Valid(body) {
		respondError(c, http.StatusBadRequest, "Invalid registration payload")
		return
	}

	identity := h.resolver.Current(c)
	data, err := h.commerce.Register(c.Request.Context(), callerFor(c, identity), json.RawMessage(body))
	if err != nil {
		respondUpstreamError(c, err)
		return
	}

	respond(c, http.StatusCreated, data, 0, "Registration successful")
}

// Login handles POST /auth/login - forwards credentials upstream and,
// on success, switches the session to the authenticated user and merges
// the anonymous cart and wishlist.
func (h *AuthHandler) Login(c *gin.Context) {
	body, err := io.ReadAll(c.Request.Body)
	if err != nil || len(body) == 0 {
		respondError(c, http.StatusBadRequest, "Login payload required")
		return
	}
	if !json.Valid(body) {
		respondError(c, http.StatusBadRequest, "Invalid login payload")
		return
	}

	// Remember the anonymous session before it is discarded
	anonymousID, _ := c.Cookie(session.CookieName)

	identity := h.resolver.Current(c)
	data, err := h.commerce.Login(c.Request.Context(), callerFor(c, identity), json.RawMessage(body))
	if err != nil {
		respondUpstreamError(c, err)
		return
	}

	var login loginData
	if err := json.Unmarshal(data, &login); err != nil || login.Token == "" {
		respondError(c, http.StatusBadGateway, "Upstream login response missing credential token")
		return
	}

	authenticated, err := h.resolver.Authenticate(c, login.Token)
	if err != nil {
		respondError(c, http.StatusBadGateway, "Upstream issued an invalid credential token")
		return
	}

	if anonymousID != "" {
		caller := callerFor(c, authenticated)
		if err := mergeAnonymousCart(c.Request.Context(), h.carts, h.commerce, h.logger, caller, "session:"+anonymousID, authenticated.OwnerKey()); err != nil {
			h.logger.WithError(err).Warn("Failed to merge anonymous cart on login")
		}
		if err := h.mergeAnonymousWishlist(c, caller, "session:"+anonymousID, authenticated.OwnerKey()); err != nil {
			h.logger.WithError(err).Warn("Failed to merge anonymous wishlist on login")
		}
	}

	respond(c, http.StatusOK, data, 0, "Login successful")
}

// mergeAnonymousWishlist folds the anonymous wishlist into the user's
// wishlist, mirroring each entry upstream, and discards the anonymous
// collection. Mirror failures are logged and skipped.
func (h *AuthHandler) mergeAnonymousWishlist(c *gin.Context, caller commerce.Caller, fromOwner, toOwner string) error {
	ctx := c.Request.Context()

	source, err := h.wishlists.Get(ctx, fromOwner)
	if err != nil {
		return err
	}

	for _, entry := range source.Entries {
		if err := h.commerce.AddWishlistItem(ctx, caller, entry.ProductID); err != nil {
			h.logger.WithError(err).WithField("product_id", entry.ProductID).Warn("Failed to mirror merged wishlist entry")
		}
		if _, err := h.wishlists.Add(ctx, toOwner, entry.Product); err != nil {
			return err
		}
	}

	if err := h.wishlists.Clear(ctx, fromOwner); err != nil {
		return err
	}

	h.commerce.InvalidateWishlist(ctx, caller)
	return nil
}

// Logout handles POST /auth/logout - drops the credential and clears
// the user's collections.
func (h *AuthHandler) Logout(c *gin.Context) {
	previous := h.resolver.ClearCredential(c)
	ctx := c.Request.Context()

	if err := h.carts.Clear(ctx, previous.OwnerKey()); err != nil {
		h.logger.WithError(err).Warn("Failed to clear cart on logout")
	}
	if err := h.wishlists.Clear(ctx, previous.OwnerKey()); err != nil {
		h.logger.WithError(err).Warn("Failed to clear wishlist on logout")
	}

	if previous.IsAuthenticated() {
		caller := commerce.Caller{UserID: previous.User.ID}
		h.commerce.InvalidateCart(ctx, caller)
		h.commerce.InvalidateWishlist(ctx, caller)
	}

	respond(c, http.StatusOK, nil, 0, "Logout successful")
}

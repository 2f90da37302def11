// internal/interfaces/http/handlers/auth_test.go
package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/your-org/storefront-bff/internal/domain/catalog"
	"github.com/your-org/storefront-bff/internal/pkg/session"
)

func TestLogin_MergesAnonymousCollections(t *testing.T) {
	var (
		token            string
		mirroredProducts []string
		mirroredWishes   []string
	)
	env := newAPITestEnv(t, map[string]http.HandlerFunc{
		"/products": func(w http.ResponseWriter, r *http.Request) {
			upstreamEnvelope(w, []catalog.ProductSnapshot{
				{ID: "p1", Name: "Coffee Mug", Price: 1000, Stock: 10},
				{ID: "p2", Name: "Tea Pot", Price: 2500, Stock: 5},
			}, 2)
		},
		"/auth/login": func(w http.ResponseWriter, r *http.Request) {
			upstreamEnvelope(w, gin.H{"token": token, "user": gin.H{"id": "u1"}}, 0)
		},
		"/cart": func(w http.ResponseWriter, r *http.Request) {
			if r.Method == http.MethodPost {
				var body struct {
					ProductID string `json:"productId"`
				}
				json.NewDecoder(r.Body).Decode(&body)
				mirroredProducts = append(mirroredProducts, body.ProductID)
			}
			upstreamEnvelope(w, nil, 0)
		},
		"/wishlist": func(w http.ResponseWriter, r *http.Request) {
			if r.Method == http.MethodPost {
				var body struct {
					ProductID string `json:"productId"`
				}
				json.NewDecoder(r.Body).Decode(&body)
				mirroredWishes = append(mirroredWishes, body.ProductID)
			}
			upstreamEnvelope(w, nil, 0)
		},
	})

	var err error
	token, err = env.jwtManager.Generate("u1", "u@example.com", "U")
	require.NoError(t, err)

	cookie := &http.Cookie{Name: session.CookieName, Value: "anon-7"}

	// Build up anonymous state first
	w := env.do(http.MethodPost, "/cart", gin.H{"productId": "p1", "quantity": 2}, cookie, "")
	require.Equal(t, http.StatusOK, w.Code)
	w = env.do(http.MethodPost, "/wishlist", gin.H{"productId": "p2"}, cookie, "")
	require.Equal(t, http.StatusOK, w.Code)

	w = env.do(http.MethodPost, "/auth/login", gin.H{"email": "u@example.com", "password": "pw"}, cookie, "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.True(t, decodeEnvelope(t, w).Success)

	ctx := context.Background()

	// The anonymous cart folded into the user's cart and was discarded
	userCart, err := env.carts.Get(ctx, "user:u1")
	require.NoError(t, err)
	require.Len(t, userCart.Items, 1)
	assert.Equal(t, "p1", userCart.Items[0].ProductID)
	assert.Equal(t, 2, userCart.Items[0].Quantity)

	anonCart, err := env.carts.Get(ctx, "session:anon-7")
	require.NoError(t, err)
	assert.Empty(t, anonCart.Items)

	// Same for the wishlist
	userWishlist, err := env.wishlists.Get(ctx, "user:u1")
	require.NoError(t, err)
	require.Len(t, userWishlist.Entries, 1)
	assert.Equal(t, "p2", userWishlist.Entries[0].ProductID)

	anonWishlist, err := env.wishlists.Get(ctx, "session:anon-7")
	require.NoError(t, err)
	assert.Empty(t, anonWishlist.Entries)

	// Both collections were mirrored upstream during the merge
	assert.Equal(t, []string{"p1"}, mirroredProducts)
	assert.Equal(t, []string{"p2"}, mirroredWishes)
}

func TestLogin_InvalidPayloadRejectedBeforeUpstream(t *testing.T) {
	upstreamHit := false
	env := newAPITestEnv(t, map[string]http.HandlerFunc{
		"/auth/login": func(w http.ResponseWriter, r *http.Request) {
			upstreamHit = true
			upstreamEnvelope(w, nil, 0)
		},
	})

	req := httptest.NewRequest(http.MethodPost, "/auth/login", bytes.NewBufferString(`{"email":`))
	req.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()
	env.router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.False(t, upstreamHit)
}

func TestLogin_UpstreamRejectionPassedThrough(t *testing.T) {
	env := newAPITestEnv(t, map[string]http.HandlerFunc{
		"/auth/login": func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusUnauthorized)
			json.NewEncoder(w).Encode(gin.H{"success": false, "message": "Invalid credentials"})
		},
	})

	w := env.do(http.MethodPost, "/auth/login", gin.H{"email": "u@example.com", "password": "bad"}, nil, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	resp := decodeEnvelope(t, w)
	assert.False(t, resp.Success)
	assert.Equal(t, "Invalid credentials", resp.Message)
}

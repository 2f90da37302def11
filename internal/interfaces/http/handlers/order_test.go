// internal/interfaces/http/handlers/order_test.go
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
)

func product(id string, price int64) catalog.ProductSnapshot {
	return catalog.ProductSnapshot{
		ID:       id,
		Name:     "Product " + id,
		Price:    price,
		Category: "widgets",
		Stock:    100,
	}
}

func TestCreateOrder_ClearsCartOnCheckout(t *testing.T) {
	env := newAPITestEnv(t, map[string]http.HandlerFunc{
		"/order": func(w http.ResponseWriter, r *http.Request) {
			upstreamEnvelope(w, gin.H{"id": "ord-1", "status": "pending"}, 0)
		},
	})
	ctx := context.Background()

	_, err := env.carts.Add(ctx, "user:buyer-1", product("p1", 1000), 2)
	require.NoError(t, err)

	token, err := env.jwtManager.Generate("buyer-1", "b@example.com", "B")
	require.NoError(t, err)

	w := env.do(http.MethodPost, "/order", gin.H{"shipping": gin.H{"name": "B"}}, nil, token)
	assert.Equal(t, http.StatusCreated, w.Code)
	assert.True(t, decodeEnvelope(t, w).Success)

	// Checkout completion empties the buyer's cart collection
	collection, err := env.carts.Get(ctx, "user:buyer-1")
	require.NoError(t, err)
	assert.Empty(t, collection.Items)
}

func TestCreateOrder_InvalidPayloadRejectedBeforeUpstream(t *testing.T) {
	upstreamHit := false
	env := newAPITestEnv(t, map[string]http.HandlerFunc{
		"/order": func(w http.ResponseWriter, r *http.Request) {
			upstreamHit = true
			upstreamEnvelope(w, nil, 0)
		},
	})

	token, err := env.jwtManager.Generate("buyer-1", "b@example.com", "B")
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/order", bytes.NewBufferString(`{"items":`))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)

	w := httptest.NewRecorder()
	env.router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.False(t, upstreamHit)

	var resp struct {
		Success bool `json:"success"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.False(t, resp.Success)
}

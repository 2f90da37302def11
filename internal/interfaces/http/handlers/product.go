// internal/interfaces/http/handlers/product.go
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/your-org/storefront-bff/internal/infrastructure/commerce"
	"github.com/your-org/storefront-bff/internal/pkg/session"
)

// ProductHandler proxies catalog reads to the upstream commerce API
type ProductHandler struct {
	commerce *commerce.Client
	resolver *session.Resolver
}

// NewProductHandler creates a new product handler
func NewProductHandler(client *commerce.Client, resolver *session.Resolver) *ProductHandler {
	return &ProductHandler{
		commerce: client,
		resolver: resolver,
	}
}

// GetProducts handles GET /products
func (h *ProductHandler) GetProducts(c *gin.Context) {
	identity := h.resolver.Current(c)

	products, err := h.commerce.ListProducts(c.Request.Context(), callerFor(c, identity))
	if err != nil {
		respondUpstreamError(c, err)
		return
	}

	respond(c, http.StatusOK, products, len(products), "Products retrieved successfully")
}

// GetProduct handles GET /products/:id
func (h *ProductHandler) GetProduct(c *gin.Context) {
	identity := h.resolver.Current(c)

	product, err := h.commerce.GetProduct(c.Request.Context(), callerFor(c, identity), c.Param("id"))
	if err != nil {
		respondUpstreamError(c, err)
		return
	}

	respond(c, http.StatusOK, product, 1, "Product retrieved successfully")
}

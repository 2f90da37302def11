// internal/domain/catalog/entity.go
package catalog

// ProductSnapshot is a denormalized, read-only copy of a catalog product
// as served by the upstream commerce API. Prices are in minor currency
// units (cents). The cart and wishlist keep a snapshot per entry; the
// catalog itself is owned by the upstream.
type ProductSnapshot struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Price       int64  `json:"price"`
	Image       string `json:"image,omitempty"`
	Category    string `json:"category"`
	Stock       int    `json:"stock"`
}

// internal/domain/cart/entity.go
package cart

import (
	"time"

	"github.com/your-org/storefront-bff/internal/domain/catalog"
)

// LineItem represents a single cart line. A collection holds at most
// one line item per product; quantity is always >= 1 while the item
// exists.
type LineItem struct {
	ID        string                  `json:"id"`
	ProductID string                  `json:"product_id"`
	Quantity  int                     `json:"quantity"`
	AddedAt   time.Time               `json:"added_at"`
	Product   catalog.ProductSnapshot `json:"product"`
}

// Collection is an ordered cart collection. Insertion order is
// preserved for deterministic display.
type Collection struct {
	Items     []LineItem `json:"items"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// TotalPrice returns the sum of price*quantity over all line items,
// in minor currency units.
func (c *Collection) TotalPrice() int64 {
	var total int64
	for _, item := range c.Items {
		total += item.Product.Price * int64(item.Quantity)
	}
	return total
}

// TotalItems returns the sum of quantities, not the count of lines.
func (c *Collection) TotalItems() int {
	total := 0
	for _, item := range c.Items {
		total += item.Quantity
	}
	return total
}

// Find returns the line item with the given id, or nil.
func (c *Collection) Find(lineItemID string) *LineItem {
	for i := range c.Items {
		if c.Items[i].ID == lineItemID {
			return &c.Items[i]
		}
	}
	return nil
}

// findByProduct returns the index of the line for productID, or -1.
func (c *Collection) findByProduct(productID string) int {
	for i := range c.Items {
		if c.Items[i].ProductID == productID {
			return i
		}
	}
	return -1
}

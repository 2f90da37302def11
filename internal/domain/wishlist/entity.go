// internal/domain/wishlist/entity.go
package wishlist

import (
	"time"

	"github.com/your-org/storefront-bff/internal/domain/catalog"
)

// Entry represents a wishlist entry. A collection holds at most one
// entry per product.
type Entry struct {
	ID        string                  `json:"id"`
	ProductID string                  `json:"product_id"`
	AddedAt   time.Time               `json:"added_at"`
	Product   catalog.ProductSnapshot `json:"product"`
}

// Collection is an ordered wishlist collection
type Collection struct {
	Entries   []Entry   `json:"entries"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Contains reports whether the collection has an entry for productID.
func (c *Collection) Contains(productID string) bool {
	return c.indexOf(productID) >= 0
}

// Find returns the entry with the given id, or nil.
func (c *Collection) Find(entryID string) *Entry {
	for i := range c.Entries {
		if c.Entries[i].ID == entryID {
			return &c.Entries[i]
		}
	}
	return nil
}

func (c *Collection) indexOf(productID string) int {
	for i := range c.Entries {
		if c.Entries[i].ProductID == productID {
			return i
		}
	}
	return -1
}

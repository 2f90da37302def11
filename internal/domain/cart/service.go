// internal/domain/cart/service.go
package cart

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/your-org/storefront-bff/internal/domain/catalog"
	"github.com/your-org/storefront-bff/internal/infrastructure/store"
)

// Service manages persisted cart collections, one per owner key.
// Mutations are applied in memory and then written back as a whole;
// a failed write is logged and swallowed so the caller still sees the
// mutated collection for the current session.
type Service struct {
	store  *store.Store
	logger *logrus.Logger
}

// NewService creates a new cart service
func NewService(st *store.Store, logger *logrus.Logger) *Service {
	return &Service{
		store:  st,
		logger: logger,
	}
}

func cartKey(owner string) string {
	return fmt.Sprintf("cart:%s", owner)
}

// Get retrieves the cart collection for an owner, empty if none exists.
func (s *Service) Get(ctx context.Context, owner string) (*Collection, error) {
	if owner == "" {
		return nil, fmt.Errorf("owner key required for cart")
	}

	var collection Collection
	found, err := s.store.Load(ctx, cartKey(owner), &collection)
	if err != nil {
		return nil, err
	}
	if !found {
		return &Collection{Items: []LineItem{}, UpdatedAt: time.Now().UTC()}, nil
	}
	if collection.Items == nil {
		collection.Items = []LineItem{}
	}

	return &collection, nil
}

// Add puts quantity units of a product into the owner's cart. If a line
// for the product already exists its quantity is incremented; otherwise
// a new line is appended with a fresh id.
func (s *Service) Add(ctx context.Context, owner string, product catalog.ProductSnapshot, quantity int) (*Collection, error) {
	if product.ID == "" {
		return nil, fmt.Errorf("product id is required")
	}
	if quantity < 1 {
		return nil, fmt.Errorf("quantity must be at least 1")
	}

	collection, err := s.Get(ctx, owner)
	if err != nil {
		return nil, err
	}

	if idx := collection.findByProduct(product.ID); idx >= 0 {
		collection.Items[idx].Quantity += quantity
	} else {
		collection.Items = append(collection.Items, LineItem{
			ID:        uuid.New().String(),
			ProductID: product.ID,
			Quantity:  quantity,
			AddedAt:   time.Now().UTC(),
			Product:   product,
		})
	}

	s.persist(ctx, owner, collection)
	return collection, nil
}

// Remove deletes a line item by id. Removing a missing line is a
// silent no-op, not an error.
func (s *Service) Remove(ctx context.Context, owner, lineItemID string) (*Collection, error) {
	collection, err := s.Get(ctx, owner)
	if err != nil {
		return nil, err
	}

	for i := range collection.Items {
		if collection.Items[i].ID == lineItemID {
			collection.Items = append(collection.Items[:i], collection.Items[i+1:]...)
			s.persist(ctx, owner, collection)
			break
		}
	}

	return collection, nil
}

// UpdateQuantity replaces a line item's quantity in place, preserving
// its position. A quantity of zero or less removes the line.
func (s *Service) UpdateQuantity(ctx context.Context, owner, lineItemID string, quantity int) (*Collection, error) {
	if quantity <= 0 {
		return s.Remove(ctx, owner, lineItemID)
	}

	collection, err := s.Get(ctx, owner)
	if err != nil {
		return nil, err
	}

	item := collection.Find(lineItemID)
	if item == nil {
		return nil, fmt.Errorf("item not found in cart")
	}
	item.Quantity = quantity

	s.persist(ctx, owner, collection)
	return collection, nil
}

// Clear empties the owner's cart.
func (s *Service) Clear(ctx context.Context, owner string) error {
	if owner == "" {
		return fmt.Errorf("owner key required for cart")
	}
	return s.store.Delete(ctx, cartKey(owner))
}

// Merge folds the cart collection of fromOwner into toOwner, summing
// quantities per product id, then discards the source collection.
// Used when an anonymous session signs in.
func (s *Service) Merge(ctx context.Context, fromOwner, toOwner string) (*Collection, error) {
	source, err := s.Get(ctx, fromOwner)
	if err != nil {
		return nil, err
	}

	target, err := s.Get(ctx, toOwner)
	if err != nil {
		return nil, err
	}

	if len(source.Items) == 0 {
		return target, nil
	}

	for _, item := range source.Items {
		if idx := target.findByProduct(item.ProductID); idx >= 0 {
			target.Items[idx].Quantity += item.Quantity
		} else {
			target.Items = append(target.Items, item)
		}
	}

	s.persist(ctx, toOwner, target)

	if err := s.Clear(ctx, fromOwner); err != nil {
		s.logger.WithError(err).WithField("owner", fromOwner).Warn("Failed to discard merged cart")
	}

	return target, nil
}

// persist writes the collection back. Persistence failures leave the
// in-memory collection authoritative for this request.
func (s *Service) persist(ctx context.Context, owner string, collection *Collection) {
	collection.UpdatedAt = time.Now().UTC()
	if err := s.store.Save(ctx, cartKey(owner), collection); err != nil {
		s.logger.WithError(err).WithField("owner", owner).Warn("Failed to persist cart collection")
	}
}

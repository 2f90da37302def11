// internal/domain/wishlist/service.go
package wishlist

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/your-org/storefront-bff/internal/domain/catalog"
	"github.com/your-org/storefront-bff/internal/infrastructure/store"
)

// Service manages persisted wishlist collections, one per owner key.
// Toggle is the primary mutation; Add and Remove exist for parity with
// the upstream wishlist API.
type Service struct {
	store  *store.Store
	logger *logrus.Logger
}

// NewService creates a new wishlist service
func NewService(st *store.Store, logger *logrus.Logger) *Service {
	return &Service{
		store:  st,
		logger: logger,
	}
}

func wishlistKey(owner string) string {
	return fmt.Sprintf("wishlist:%s", owner)
}

// Get retrieves the wishlist for an owner, empty if none exists.
func (s *Service) Get(ctx context.Context, owner string) (*Collection, error) {
	if owner == "" {
		return nil, fmt.Errorf("owner key required for wishlist")
	}

	var collection Collection
	found, err := s.store.Load(ctx, wishlistKey(owner), &collection)
	if err != nil {
		return nil, err
	}
	if !found {
		return &Collection{Entries: []Entry{}, UpdatedAt: time.Now().UTC()}, nil
	}
	if collection.Entries == nil {
		collection.Entries = []Entry{}
	}

	return &collection, nil
}

// Toggle adds the product when absent and removes it when present.
// Returns true when the product ended up in the wishlist.
func (s *Service) Toggle(ctx context.Context, owner string, product catalog.ProductSnapshot) (bool, *Collection, error) {
	if product.ID == "" {
		return false, nil, fmt.Errorf("product id is required")
	}

	collection, err := s.Get(ctx, owner)
	if err != nil {
		return false, nil, err
	}

	if idx := collection.indexOf(product.ID); idx >= 0 {
		collection.Entries = append(collection.Entries[:idx], collection.Entries[idx+1:]...)
		s.persist(ctx, owner, collection)
		return false, collection, nil
	}

	collection.Entries = append(collection.Entries, Entry{
		ID:        uuid.New().String(),
		ProductID: product.ID,
		AddedAt:   time.Now().UTC(),
		Product:   product,
	})
	s.persist(ctx, owner, collection)
	return true, collection, nil
}

// Add puts the product in the wishlist. Already present is a no-op.
func (s *Service) Add(ctx context.Context, owner string, product catalog.ProductSnapshot) (*Collection, error) {
	if product.ID == "" {
		return nil, fmt.Errorf("product id is required")
	}

	collection, err := s.Get(ctx, owner)
	if err != nil {
		return nil, err
	}
	if collection.Contains(product.ID) {
		return collection, nil
	}

	collection.Entries = append(collection.Entries, Entry{
		ID:        uuid.New().String(),
		ProductID: product.ID,
		AddedAt:   time.Now().UTC(),
		Product:   product,
	})
	s.persist(ctx, owner, collection)
	return collection, nil
}

// Remove deletes an entry by id. Removing a missing entry is a silent
// no-op.
func (s *Service) Remove(ctx context.Context, owner, entryID string) (*Collection, error) {
	collection, err := s.Get(ctx, owner)
	if err != nil {
		return nil, err
	}

	for i := range collection.Entries {
		if collection.Entries[i].ID == entryID {
			collection.Entries = append(collection.Entries[:i], collection.Entries[i+1:]...)
			s.persist(ctx, owner, collection)
			break
		}
	}

	return collection, nil
}

// Contains reports whether the owner's wishlist has the product.
func (s *Service) Contains(ctx context.Context, owner, productID string) (bool, error) {
	collection, err := s.Get(ctx, owner)
	if err != nil {
		return false, err
	}
	return collection.Contains(productID), nil
}

// Clear empties the owner's wishlist.
func (s *Service) Clear(ctx context.Context, owner string) error {
	if owner == "" {
		return fmt.Errorf("owner key required for wishlist")
	}
	return s.store.Delete(ctx, wishlistKey(owner))
}

func (s *Service) persist(ctx context.Context, owner string, collection *Collection) {
	collection.UpdatedAt = time.Now().UTC()
	if err := s.store.Save(ctx, wishlistKey(owner), collection); err != nil {
		s.logger.WithError(err).WithField("owner", owner).Warn("Failed to persist wishlist collection")
	}
}

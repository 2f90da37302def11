package cart

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/your-org/storefront-bff/internal/domain/catalog"
	"github.com/your-org/storefront-bff/internal/infrastructure/store"
)

func setupTestService(t *testing.T) *Service {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)

	return NewService(store.New(client, 24*time.Hour, logger), logger)
}

func product(id string, price int64) catalog.ProductSnapshot {
	return catalog.ProductSnapshot{
		ID:       id,
		Name:     "Product " + id,
		Price:    price,
		Category: "widgets",
		Stock:    100,
	}
}

func TestAdd_NewItem(t *testing.T) {
	svc := setupTestService(t)
	ctx := context.Background()

	collection, err := svc.Add(ctx, "session:abc", product("p1", 1000), 2)
	require.NoError(t, err)
	require.Len(t, collection.Items, 1)
	assert.NotEmpty(t, collection.Items[0].ID)
	assert.Equal(t, "p1", collection.Items[0].ProductID)
	assert.Equal(t, 2, collection.Items[0].Quantity)
	assert.False(t, collection.Items[0].AddedAt.IsZero())
}

func TestAdd_MergesQuantitiesByProduct(t *testing.T) {
	svc := setupTestService(t)
	ctx := context.Background()

	_, err := svc.Add(ctx, "session:abc", product("p1", 1000), 2)
	require.NoError(t, err)
	collection, err := svc.Add(ctx, "session:abc", product("p1", 1000), 3)
	require.NoError(t, err)

	// Exactly one line per product, quantity q1+q2
	require.Len(t, collection.Items, 1)
	assert.Equal(t, 5, collection.Items[0].Quantity)
}

func TestAdd_RejectsNonPositiveQuantity(t *testing.T) {
	svc := setupTestService(t)

	_, err := svc.Add(context.Background(), "session:abc", product("p1", 1000), 0)
	assert.Error(t, err)

	_, err = svc.Add(context.Background(), "session:abc", product("p1", 1000), -1)
	assert.Error(t, err)
}

func TestAdd_PreservesInsertionOrder(t *testing.T) {
	svc := setupTestService(t)
	ctx := context.Background()

	for _, id := range []string{"p1", "p2", "p3"} {
		_, err := svc.Add(ctx, "session:abc", product(id, 500), 1)
		require.NoError(t, err)
	}
	_, err := svc.Add(ctx, "session:abc", product("p2", 500), 1)
	require.NoError(t, err)

	collection, err := svc.Get(ctx, "session:abc")
	require.NoError(t, err)
	require.Len(t, collection.Items, 3)
	assert.Equal(t, "p1", collection.Items[0].ProductID)
	assert.Equal(t, "p2", collection.Items[1].ProductID)
	assert.Equal(t, "p3", collection.Items[2].ProductID)
}

func TestRemove_MissingItemIsNoOp(t *testing.T) {
	svc := setupTestService(t)
	ctx := context.Background()

	_, err := svc.Add(ctx, "session:abc", product("p1", 1000), 1)
	require.NoError(t, err)

	collection, err := svc.Remove(ctx, "session:abc", "does-not-exist")
	require.NoError(t, err)
	assert.Len(t, collection.Items, 1)
}

func TestRemove_DeletesLine(t *testing.T) {
	svc := setupTestService(t)
	ctx := context.Background()

	collection, err := svc.Add(ctx, "session:abc", product("p1", 1000), 1)
	require.NoError(t, err)
	lineID := collection.Items[0].ID

	collection, err = svc.Remove(ctx, "session:abc", lineID)
	require.NoError(t, err)
	assert.Empty(t, collection.Items)
}

func TestUpdateQuantity_ZeroOrNegativeRemoves(t *testing.T) {
	svc := setupTestService(t)
	ctx := context.Background()

	collection, err := svc.Add(ctx, "session:abc", product("p1", 1000), 3)
	require.NoError(t, err)
	lineID := collection.Items[0].ID

	collection, err = svc.UpdateQuantity(ctx, "session:abc", lineID, -1)
	require.NoError(t, err)
	assert.Empty(t, collection.Items)
	assert.Equal(t, 0, collection.TotalItems())
}

func TestUpdateQuantity_InPlacePreservesPosition(t *testing.T) {
	svc := setupTestService(t)
	ctx := context.Background()

	_, err := svc.Add(ctx, "session:abc", product("p1", 1000), 1)
	require.NoError(t, err)
	collection, err := svc.Add(ctx, "session:abc", product("p2", 2000), 1)
	require.NoError(t, err)
	lineID := collection.Items[0].ID

	collection, err = svc.UpdateQuantity(ctx, "session:abc", lineID, 7)
	require.NoError(t, err)
	require.Len(t, collection.Items, 2)
	assert.Equal(t, "p1", collection.Items[0].ProductID)
	assert.Equal(t, 7, collection.Items[0].Quantity)
}

func TestUpdateQuantity_MissingItem(t *testing.T) {
	svc := setupTestService(t)

	_, err := svc.UpdateQuantity(context.Background(), "session:abc", "missing", 2)
	assert.Error(t, err)
}

func TestTotals(t *testing.T) {
	svc := setupTestService(t)
	ctx := context.Background()

	// Empty cart → add p1 at 10.00 x2 → 2 items, 20.00 total
	_, err := svc.Add(ctx, "session:abc", product("p1", 1000), 2)
	require.NoError(t, err)
	collection, err := svc.Get(ctx, "session:abc")
	require.NoError(t, err)
	assert.Equal(t, 2, collection.TotalItems())
	assert.Equal(t, int64(2000), collection.TotalPrice())

	_, err = svc.Add(ctx, "session:abc", product("p2", 350), 3)
	require.NoError(t, err)
	collection, err = svc.Get(ctx, "session:abc")
	require.NoError(t, err)
	assert.Equal(t, 5, collection.TotalItems())
	assert.Equal(t, int64(3050), collection.TotalPrice())
}

func TestTotalPrice_InvariantUnderOperationOrder(t *testing.T) {
	svc := setupTestService(t)
	ctx := context.Background()

	// Two different operation orders producing the same final set
	_, err := svc.Add(ctx, "session:a", product("p1", 1000), 2)
	require.NoError(t, err)
	_, err = svc.Add(ctx, "session:a", product("p2", 500), 1)
	require.NoError(t, err)

	_, err = svc.Add(ctx, "session:b", product("p2", 500), 1)
	require.NoError(t, err)
	collection, err := svc.Add(ctx, "session:b", product("p3", 99), 1)
	require.NoError(t, err)
	_, err = svc.Remove(ctx, "session:b", collection.Items[1].ID)
	require.NoError(t, err)
	_, err = svc.Add(ctx, "session:b", product("p1", 1000), 2)
	require.NoError(t, err)

	a, err := svc.Get(ctx, "session:a")
	require.NoError(t, err)
	b, err := svc.Get(ctx, "session:b")
	require.NoError(t, err)
	assert.Equal(t, a.TotalPrice(), b.TotalPrice())
}

func TestClear(t *testing.T) {
	svc := setupTestService(t)
	ctx := context.Background()

	_, err := svc.Add(ctx, "session:abc", product("p1", 1000), 2)
	require.NoError(t, err)
	require.NoError(t, svc.Clear(ctx, "session:abc"))

	collection, err := svc.Get(ctx, "session:abc")
	require.NoError(t, err)
	assert.Empty(t, collection.Items)
}

func TestGet_PersistsAcrossServiceInstances(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)
	st := store.New(client, 24*time.Hour, logger)

	svc := NewService(st, logger)
	_, err := svc.Add(context.Background(), "session:abc", product("p1", 1000), 2)
	require.NoError(t, err)

	// A fresh service over the same store sees the collection
	other := NewService(st, logger)
	collection, err := other.Get(context.Background(), "session:abc")
	require.NoError(t, err)
	require.Len(t, collection.Items, 1)
	assert.Equal(t, 2, collection.Items[0].Quantity)
}

func TestMerge_SumsQuantitiesAndDiscardsSource(t *testing.T) {
	svc := setupTestService(t)
	ctx := context.Background()

	_, err := svc.Add(ctx, "session:abc", product("p1", 1000), 2)
	require.NoError(t, err)
	_, err = svc.Add(ctx, "session:abc", product("p2", 500), 1)
	require.NoError(t, err)
	_, err = svc.Add(ctx, "user:42", product("p1", 1000), 1)
	require.NoError(t, err)

	merged, err := svc.Merge(ctx, "session:abc", "user:42")
	require.NoError(t, err)
	require.Len(t, merged.Items, 2)
	assert.Equal(t, 3, merged.Items[0].Quantity)
	assert.Equal(t, "p2", merged.Items[1].ProductID)

	source, err := svc.Get(ctx, "session:abc")
	require.NoError(t, err)
	assert.Empty(t, source.Items)
}

package service_test

import (
	"context"
	"sync"
	"testing"

	"github.com/strizshop/storefront/internal/core/domain"
	"github.com/strizshop/storefront/internal/core/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeFavoritesStore struct {
	mu       sync.Mutex
	products map[string][]domain.Product
	saveErr  error
	saves    int
}

func newFakeFavoritesStore() *fakeFavoritesStore {
	return &fakeFavoritesStore{products: make(map[string][]domain.Product)}
}

func (s *fakeFavoritesStore) Load(
	_ context.Context, key string,
) ([]domain.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]domain.Product(nil), s.products[key]...), nil
}

func (s *fakeFavoritesStore) Save(
	_ context.Context, key string, products []domain.Product,
) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.saveErr != nil {
		return s.saveErr
	}
	s.products[key] = append([]domain.Product(nil), products...)
	s.saves++
	return nil
}

func favProduct(id, title string) domain.Product {
	return domain.Product{ID: id, Title: title, Price: domain.ZeroMoney()}
}

func TestFavoritesRegistry(t *testing.T) {

	t.Run("AddAndContains", func(t *testing.T) {
		reg := service.NewFavoritesRegistry("local", newFakeFavoritesStore())

		require.NoError(t, reg.Add(t.Context(), favProduct("p-1", "one")))

		ok, err := reg.Contains(t.Context(), "p-1")
		require.NoError(t, err)
		assert.True(t, ok)

		ok, err = reg.Contains(t.Context(), "p-2")
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("AddIsIdempotent", func(t *testing.T) {
		store := newFakeFavoritesStore()
		reg := service.NewFavoritesRegistry("local", store)

		require.NoError(t, reg.Add(t.Context(), favProduct("p-1", "one")))
		require.NoError(t, reg.Add(t.Context(), favProduct("p-1", "one")))

		list, err := reg.List(t.Context())
		require.NoError(t, err)
		assert.Len(t, list, 1)
		assert.Equal(t, 1, store.saves)
	})

	t.Run("ListPreservesInsertionOrder", func(t *testing.T) {
		reg := service.NewFavoritesRegistry("local", newFakeFavoritesStore())

		require.NoError(t, reg.Add(t.Context(), favProduct("p-2", "two")))
		require.NoError(t, reg.Add(t.Context(), favProduct("p-1", "one")))
		require.NoError(t, reg.Add(t.Context(), favProduct("p-3", "three")))

		list, err := reg.List(t.Context())
		require.NoError(t, err)
		require.Len(t, list, 3)
		assert.Equal(t, "p-2", list[0].ID)
		assert.Equal(t, "p-1", list[1].ID)
		assert.Equal(t, "p-3", list[2].ID)
	})

	t.Run("RemoveIsIdempotent", func(t *testing.T) {
		reg := service.NewFavoritesRegistry("local", newFakeFavoritesStore())

		require.NoError(t, reg.Add(t.Context(), favProduct("p-1", "one")))
		require.NoError(t, reg.Remove(t.Context(), "p-1"))
		require.NoError(t, reg.Remove(t.Context(), "p-1"))

		ok, err := reg.Contains(t.Context(), "p-1")
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("RemoveKeepsOrder", func(t *testing.T) {
		reg := service.NewFavoritesRegistry("local", newFakeFavoritesStore())

		require.NoError(t, reg.Add(t.Context(), favProduct("p-1", "one")))
		require.NoError(t, reg.Add(t.Context(), favProduct("p-2", "two")))
		require.NoError(t, reg.Add(t.Context(), favProduct("p-3", "three")))
		require.NoError(t, reg.Remove(t.Context(), "p-2"))

		list, err := reg.List(t.Context())
		require.NoError(t, err)
		require.Len(t, list, 2)
		assert.Equal(t, "p-1", list[0].ID)
		assert.Equal(t, "p-3", list[1].ID)

		ok, err := reg.Contains(t.Context(), "p-3")
		require.NoError(t, err)
		assert.True(t, ok)
	})

	t.Run("LoadsPersistedSet", func(t *testing.T) {
		store := newFakeFavoritesStore()
		store.products["local"] = []domain.Product{favProduct("p-7", "seven")}

		reg := service.NewFavoritesRegistry("local", store)

		ok, err := reg.Contains(t.Context(), "p-7")
		require.NoError(t, err)
		assert.True(t, ok)
	})

	t.Run("PersistFailureSurfaces", func(t *testing.T) {
		store := newFakeFavoritesStore()
		store.saveErr = domain.ErrPersistenceUnavailable

		reg := service.NewFavoritesRegistry("local", store)

		err := reg.Add(t.Context(), favProduct("p-1", "one"))
		require.Error(t, err)
		assert.ErrorIs(t, err, domain.ErrPersistenceUnavailable)
	})

	t.Run("NilStoreKeepsInMemorySet", func(t *testing.T) {
		reg := service.NewFavoritesRegistry("local", nil)

		require.NoError(t, reg.Add(t.Context(), favProduct("p-1", "one")))

		ok, err := reg.Contains(t.Context(), "p-1")
		require.NoError(t, err)
		assert.True(t, ok)
	})
}

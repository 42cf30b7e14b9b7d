package service

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"sync"

	"github.com/strizshop/storefront/internal/core/domain"
	"github.com/strizshop/storefront/internal/core/port"
)

var _ port.FavoritesKeeper = (*FavoritesRegistry)(nil)

// A FavoritesRegistry is a set-membership store over canonical
// products, insertion order preserved for display. Add and Remove are
// idempotent. Persistence is optional: with a store wired, the set is
// lazily loaded once and written back after every mutation.
type FavoritesRegistry struct {
	mu     sync.Mutex
	key    string
	loaded bool
	order  []domain.Product
	index  map[string]int
	store  port.FavoritesStore
}

// NewFavoritesRegistry builds a registry persisted under key.
// A nil store keeps the set process-lifetime only.
func NewFavoritesRegistry(key string, store port.FavoritesStore) *FavoritesRegistry {
	return &FavoritesRegistry{
		key:   key,
		index: make(map[string]int),
		store: store,
	}
}

func (r *FavoritesRegistry) Add(ctx context.Context, p domain.Product) error {
	const op = "FavoritesRegistry.Add"

	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.ensureLoaded(ctx); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if _, ok := r.index[p.ID]; ok {
		return nil
	}
	r.index[p.ID] = len(r.order)
	r.order = append(r.order, p)

	if err := r.persist(ctx); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

func (r *FavoritesRegistry) Remove(ctx context.Context, productID string) error {
	const op = "FavoritesRegistry.Remove"

	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.ensureLoaded(ctx); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	i, ok := r.index[productID]
	if !ok {
		return nil
	}
	r.order = append(r.order[:i], r.order[i+1:]...)
	delete(r.index, productID)
	for j := i; j < len(r.order); j++ {
		r.index[r.order[j].ID] = j
	}

	if err := r.persist(ctx); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

func (r *FavoritesRegistry) Contains(
	ctx context.Context, productID string,
) (bool, error) {
	const op = "FavoritesRegistry.Contains"

	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.ensureLoaded(ctx); err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}

	_, ok := r.index[productID]
	return ok, nil
}

func (r *FavoritesRegistry) List(ctx context.Context) ([]domain.Product, error) {
	const op = "FavoritesRegistry.List"

	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.ensureLoaded(ctx); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return slices.Clone(r.order), nil
}

func (r *FavoritesRegistry) ensureLoaded(ctx context.Context) error {
	if r.loaded || r.store == nil {
		r.loaded = true
		return nil
	}

	products, err := r.store.Load(ctx, r.key)
	if err != nil {
		return err
	}
	for _, p := range products {
		if _, ok := r.index[p.ID]; ok {
			continue
		}
		r.index[p.ID] = len(r.order)
		r.order = append(r.order, p)
	}
	r.loaded = true
	return nil
}

func (r *FavoritesRegistry) persist(ctx context.Context) error {
	const op = "FavoritesRegistry.persist"

	if r.store == nil {
		return nil
	}
	if err := r.store.Save(ctx, r.key, r.order); err != nil {
		slog.With("op", op).Warn("favorites not persisted", "err", err)
		return err
	}
	return nil
}

package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/strizshop/storefront/internal/core/domain"
	"github.com/strizshop/storefront/internal/core/port"
)

var _ port.FavoritesStore = (*FavoritesRepository)(nil)

type (
	favoriteRecord struct {
		ID          string      `json:"id"`
		Title       string      `json:"title"`
		Description string      `json:"description"`
		Image       string      `json:"image"`
		Price       moneyRecord `json:"price"`
		Categories  []string    `json:"categories"`
	}

	favoritesRecord struct {
		Products []favoriteRecord `json:"products"`
	}
)

// A FavoritesRepository persists the favorites set in the same
// kv_store table the carts use, one row per registry key.
type FavoritesRepository struct {
	sqldb sqldb
}

func NewFavoritesRepository(sqldb sqldb) FavoritesRepository {
	return FavoritesRepository{sqldb}
}

// Load fails open the same way the cart store does: absent or corrupt
// payloads yield an empty set.
func (r FavoritesRepository) Load(
	ctx context.Context, key string,
) ([]domain.Product, error) {
	const op = "FavoritesRepository.Load"
	log := slog.With("op", op)

	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	query := `SELECT payload FROM kv_store WHERE key = $1;`

	var payload []byte
	err := r.sqldb.QueryRowContext(ctx, query, key).Scan(&payload)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	products, ok := decodeFavorites(payload)
	if !ok {
		log.Warn("corrupt favorites payload, resetting to empty", "key", key)
		return nil, nil
	}
	return products, nil
}

func (r FavoritesRepository) Save(
	ctx context.Context, key string, products []domain.Product,
) error {
	const op = "FavoritesRepository.Save"

	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	rec := favoritesRecord{}
	for _, p := range products {
		rec.Products = append(rec.Products, favoriteRecord{
			ID:          p.ID,
			Title:       p.Title,
			Description: p.Description,
			Image:       p.Image,
			Price:       encodeMoney(p.Price),
			Categories:  p.Categories,
		})
	}

	payload, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	query := `
		INSERT INTO kv_store (key, payload, updated_at)
		VALUES ($1, $2, now())
		ON CONFLICT (key) DO UPDATE SET
			payload = EXCLUDED.payload,
			updated_at = EXCLUDED.updated_at;
	`

	_, err = r.sqldb.ExecContext(ctx, query, key, payload)
	if err != nil {
		return fmt.Errorf(
			"%s: %w: %w", op, domain.ErrPersistenceUnavailable, err,
		)
	}
	return nil
}

func decodeFavorites(payload []byte) ([]domain.Product, bool) {
	var rec favoritesRecord
	if err := json.Unmarshal(payload, &rec); err != nil {
		return nil, false
	}

	var products []domain.Product
	for _, fr := range rec.Products {
		if fr.ID == "" {
			return nil, false
		}
		price, err := domain.NewMoney(fr.Price.Raw)
		if err != nil {
			return nil, false
		}
		products = append(products, domain.Product{
			ID:          fr.ID,
			Title:       fr.Title,
			Description: fr.Description,
			Image:       fr.Image,
			Price:       price,
			Categories:  fr.Categories,
		})
	}
	return products, true
}

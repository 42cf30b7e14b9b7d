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

var _ port.CartStore = (*CartsRepository)(nil)

// Persisted cart wire shape. Kept versionless on purpose: anything
// that does not decode and validate is treated as absent.
type (
	cartRecord struct {
		ID         string           `json:"id"`
		TotalItems int              `json:"total_items"`
		Subtotal   moneyRecord      `json:"subtotal"`
		LineItems  []lineItemRecord `json:"line_items"`
	}

	moneyRecord struct {
		Raw       float64 `json:"raw"`
		Formatted string  `json:"formatted_with_symbol"`
	}

	lineItemRecord struct {
		ID        string      `json:"id"`
		ProductID string      `json:"product_id"`
		Quantity  int         `json:"quantity"`
		Price     moneyRecord `json:"price"`
		Meta      metaRecord  `json:"product_meta"`
	}

	metaRecord struct {
		Title    string  `json:"title"`
		Image    string  `json:"image"`
		Price    float64 `json:"price"`
		Category string  `json:"category"`
	}
)

// A CartsRepository keeps one kv_store row per cart key, the value
// being the JSON cart record.
type CartsRepository struct {
	sqldb sqldb
}

func NewCartsRepository(sqldb sqldb) CartsRepository {
	return CartsRepository{sqldb}
}

// Load reads the cart persisted under key. A corrupt persisted cart
// must never crash the ledger: a missing row, unparseable payload or
// payload violating cart invariants yields a fresh empty cart.
func (r CartsRepository) Load(
	ctx context.Context, key string,
) (domain.Cart, error) {
	const op = "CartsRepository.Load"
	log := slog.With("op", op)

	if err := ctx.Err(); err != nil {
		return domain.Cart{}, fmt.Errorf("%s: %w", op, err)
	}

	query := `SELECT payload FROM kv_store WHERE key = $1;`

	var payload []byte
	err := r.sqldb.QueryRowContext(ctx, query, key).Scan(&payload)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.NewCart(), nil
		}
		return domain.Cart{}, fmt.Errorf("%s: %w", op, err)
	}

	cart, ok := decodeCart(payload)
	if !ok {
		log.Warn("corrupt cart payload, resetting to empty", "key", key)
		return domain.NewCart(), nil
	}
	return cart, nil
}

// Save serializes and upserts the cart. A rejected write is reported
// as [domain.ErrPersistenceUnavailable], never swallowed: the
// in-memory cart and the persisted cart would otherwise silently
// diverge.
func (r CartsRepository) Save(
	ctx context.Context, key string, cart domain.Cart,
) error {
	const op = "CartsRepository.Save"

	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	payload, err := json.Marshal(encodeCart(cart))
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

// decodeCart parses and validates a persisted payload. The totals are
// re-derived from the line items, so a stale stored total never leaks
// into the ledger.
func decodeCart(payload []byte) (domain.Cart, bool) {
	var rec cartRecord
	if err := json.Unmarshal(payload, &rec); err != nil {
		return domain.Cart{}, false
	}
	if rec.ID == "" {
		return domain.Cart{}, false
	}

	cart := domain.Cart{ID: rec.ID}
	for _, li := range rec.LineItems {
		if li.ID == "" || li.ProductID == "" {
			return domain.Cart{}, false
		}
		price, err := domain.NewMoney(li.Price.Raw)
		if err != nil {
			return domain.Cart{}, false
		}
		cart.Items = append(cart.Items, domain.LineItem{
			ID:        li.ID,
			ProductID: li.ProductID,
			Quantity:  li.Quantity,
			UnitPrice: price,
			Meta: domain.ProductMeta{
				Title:    li.Meta.Title,
				Image:    li.Meta.Image,
				Price:    li.Meta.Price,
				Category: li.Meta.Category,
			},
		})
	}

	if !cart.WellFormed() {
		return domain.Cart{}, false
	}
	cart.Recalculate()
	return cart, true
}

func encodeCart(cart domain.Cart) cartRecord {
	rec := cartRecord{
		ID:         cart.ID,
		TotalItems: cart.TotalItemCount,
		Subtotal:   encodeMoney(cart.Subtotal),
	}
	for _, it := range cart.Items {
		rec.LineItems = append(rec.LineItems, lineItemRecord{
			ID:        it.ID,
			ProductID: it.ProductID,
			Quantity:  it.Quantity,
			Price:     encodeMoney(it.UnitPrice),
			Meta: metaRecord{
				Title:    it.Meta.Title,
				Image:    it.Meta.Image,
				Price:    it.Meta.Price,
				Category: it.Meta.Category,
			},
		})
	}
	return rec
}

func encodeMoney(m domain.Money) moneyRecord {
	return moneyRecord{Raw: m.Raw.InexactFloat64(), Formatted: m.Formatted}
}

package port

import (
	"context"

	"github.com/strizshop/storefront/internal/core/domain"
)

// A CartStore is the durable key-value boundary for serialized carts.
//
// Load fails open: a missing or corrupt payload yields a fresh empty
// cart, never a parse error. Save maps a rejected write to
// [domain.ErrPersistenceUnavailable].
type CartStore interface {
	Load(ctx context.Context, key string) (domain.Cart, error)
	Save(ctx context.Context, key string, cart domain.Cart) error
}

// A FavoritesStore persists the favorites set through the same
// key-value contract the cart uses.
type FavoritesStore interface {
	Load(ctx context.Context, key string) ([]domain.Product, error)
	Save(ctx context.Context, key string, products []domain.Product) error
}

// A CartEventsProducer publishes cart activity for downstream
// aggregation.
type CartEventsProducer interface {
	ProduceCartEvent(ctx context.Context, evt domain.CartEvent) error
}

// A CatalogQuery narrows a catalog listing.
type CatalogQuery struct {
	Search   string
	Category string
	Page     int
	Limit    int
}

// A CatalogSource fetches upstream product records and feeds them
// through the canonical product adapters.
type CatalogSource interface {
	List(ctx context.Context, q CatalogQuery) ([]domain.Product, error)
	Product(ctx context.Context, id string) (domain.Product, error)
	Categories(ctx context.Context) ([]string, error)
}

// A CartOperator is the whole cart surface the UI layer may call.
// Every mutation returns the resulting cart snapshot.
type CartOperator interface {
	Current(ctx context.Context, cartKey string) (domain.Cart, error)
	Add(ctx context.Context, cartKey, productID string, quantity int, meta domain.ProductMeta) (domain.Cart, error)
	UpdateQuantity(ctx context.Context, cartKey, lineItemID string, quantity int) (domain.Cart, error)
	Remove(ctx context.Context, cartKey, lineItemID string) (domain.Cart, error)
	Empty(ctx context.Context, cartKey string) (domain.Cart, error)
}

// A FavoritesKeeper is the favorites surface the UI layer may call.
type FavoritesKeeper interface {
	Add(ctx context.Context, p domain.Product) error
	Remove(ctx context.Context, productID string) error
	Contains(ctx context.Context, productID string) (bool, error)
	List(ctx context.Context) ([]domain.Product, error)
}

// A BestSeller is a product with its accumulated add-to-cart count.
type BestSeller struct {
	ProductID string
	AddCount  int64
}

// A BestSellersProvider serves the aggregated add-to-cart counters.
type BestSellersProvider interface {
	Count(productID string) (int64, error)
	Top(n int) ([]BestSeller, error)
}

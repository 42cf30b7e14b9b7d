package httphandler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/strizshop/storefront/internal/core/domain"
	"github.com/strizshop/storefront/internal/core/port"
)

const (
	cartSessionHeader = "X-Cart-Session"
	defaultCartKey    = "local"

	persistWarning = "cart not persisted, it may not survive a reload"
)

// A CartHandler exposes the cart ledger surface.
//
// GET    /v1/cart
// POST   /v1/cart/items
// PUT    /v1/cart/items/{lineItemID}
// DELETE /v1/cart/items/{lineItemID}
// DELETE /v1/cart
type CartHandler struct {
	carts port.CartOperator
}

func RegisterCart(mux *http.ServeMux, carts port.CartOperator) {
	h := CartHandler{carts}
	mux.HandleFunc("GET /v1/cart", h.GetCart)
	mux.HandleFunc("POST /v1/cart/items", h.AddItem)
	mux.HandleFunc("PUT /v1/cart/items/{lineItemID}", h.UpdateItem)
	mux.HandleFunc("DELETE /v1/cart/items/{lineItemID}", h.RemoveItem)
	mux.HandleFunc("DELETE /v1/cart", h.EmptyCart)
}

func (h CartHandler) GetCart(w http.ResponseWriter, r *http.Request) {
	const op = "CartHandler.GetCart"

	cart, err := h.carts.Current(r.Context(), cartKey(r))
	if err != nil {
		writeCartError(w, op, err, domain.Cart{})
		return
	}
	writeJSON(w, op, http.StatusOK, CartResponse{Cart: toCart(cart)})
}

func (h CartHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	const op = "CartHandler.AddItem"
	log := slog.With("op", op)

	var req AddItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid JSON data", http.StatusBadRequest)
		log.Warn("failed to parse JSON", "err", err)
		return
	}
	if req.ProductID == "" {
		http.Error(w, "product_id is required", http.StatusBadRequest)
		return
	}

	cart, err := h.carts.Add(
		r.Context(), cartKey(r), req.ProductID, req.Quantity,
		domain.ProductMeta{
			Title:    req.Meta.Title,
			Image:    req.Meta.Image,
			Price:    req.Meta.Price,
			Category: req.Meta.Category,
		},
	)
	if err != nil {
		writeCartError(w, op, err, cart)
		return
	}
	writeJSON(w, op, http.StatusOK, CartResponse{Cart: toCart(cart)})
}

func (h CartHandler) UpdateItem(w http.ResponseWriter, r *http.Request) {
	const op = "CartHandler.UpdateItem"
	log := slog.With("op", op)

	var req UpdateItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid JSON data", http.StatusBadRequest)
		log.Warn("failed to parse JSON", "err", err)
		return
	}

	cart, err := h.carts.UpdateQuantity(
		r.Context(), cartKey(r), r.PathValue("lineItemID"), req.Quantity,
	)
	if err != nil {
		writeCartError(w, op, err, cart)
		return
	}
	writeJSON(w, op, http.StatusOK, CartResponse{Cart: toCart(cart)})
}

func (h CartHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	const op = "CartHandler.RemoveItem"

	cart, err := h.carts.Remove(
		r.Context(), cartKey(r), r.PathValue("lineItemID"),
	)
	if err != nil {
		writeCartError(w, op, err, cart)
		return
	}
	writeJSON(w, op, http.StatusOK, CartResponse{Cart: toCart(cart)})
}

func (h CartHandler) EmptyCart(w http.ResponseWriter, r *http.Request) {
	const op = "CartHandler.EmptyCart"

	cart, err := h.carts.Empty(r.Context(), cartKey(r))
	if err != nil {
		writeCartError(w, op, err, cart)
		return
	}
	writeJSON(w, op, http.StatusOK, CartResponse{Cart: toCart(cart)})
}

// A FavoritesHandler exposes the favorites registry surface.
type FavoritesHandler struct {
	favorites port.FavoritesKeeper
}

func RegisterFavorites(mux *http.ServeMux, favorites port.FavoritesKeeper) {
	h := FavoritesHandler{favorites}
	mux.HandleFunc("GET /v1/favorites", h.List)
	mux.HandleFunc("POST /v1/favorites", h.Add)
	mux.HandleFunc("GET /v1/favorites/{productID}", h.Contains)
	mux.HandleFunc("DELETE /v1/favorites/{productID}", h.Remove)
}

func (h FavoritesHandler) List(w http.ResponseWriter, r *http.Request) {
	const op = "FavoritesHandler.List"

	products, err := h.favorites.List(r.Context())
	if err != nil {
		writeServiceError(w, op, err)
		return
	}
	writeJSON(w, op, http.StatusOK, toProducts(products))
}

func (h FavoritesHandler) Add(w http.ResponseWriter, r *http.Request) {
	const op = "FavoritesHandler.Add"
	log := slog.With("op", op)

	var req Product
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid JSON data", http.StatusBadRequest)
		log.Warn("failed to parse JSON", "err", err)
		return
	}
	if req.ID == "" {
		http.Error(w, "id is required", http.StatusBadRequest)
		return
	}

	product, err := req.toDomain()
	if err != nil {
		http.Error(w, "invalid product price", http.StatusBadRequest)
		return
	}

	if err := h.favorites.Add(r.Context(), product); err != nil {
		writeServiceError(w, op, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h FavoritesHandler) Contains(w http.ResponseWriter, r *http.Request) {
	const op = "FavoritesHandler.Contains"

	productID := r.PathValue("productID")
	ok, err := h.favorites.Contains(r.Context(), productID)
	if err != nil {
		writeServiceError(w, op, err)
		return
	}
	writeJSON(w, op, http.StatusOK, ContainsResponse{
		ProductID: productID,
		Favorite:  ok,
	})
}

func (h FavoritesHandler) Remove(w http.ResponseWriter, r *http.Request) {
	const op = "FavoritesHandler.Remove"

	err := h.favorites.Remove(r.Context(), r.PathValue("productID"))
	if err != nil {
		writeServiceError(w, op, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// A ProductsHandler exposes the normalized catalog and the best
// sellers counters. The best sellers provider is optional.
type ProductsHandler struct {
	catalog port.CatalogSource
	best    port.BestSellersProvider
}

func RegisterProducts(
	mux *http.ServeMux,
	catalog port.CatalogSource,
	best port.BestSellersProvider,
) {
	h := ProductsHandler{catalog, best}
	mux.HandleFunc("GET /v1/products", h.List)
	mux.HandleFunc("GET /v1/products/{productID}", h.Get)
	mux.HandleFunc("GET /v1/categories", h.Categories)
	mux.HandleFunc("GET /v1/bestsellers", h.BestSellers)
}

func (h ProductsHandler) List(w http.ResponseWriter, r *http.Request) {
	const op = "ProductsHandler.List"

	q := port.CatalogQuery{
		Search:   r.URL.Query().Get("query"),
		Category: r.URL.Query().Get("category"),
		Page:     intQueryParam(r, "page"),
		Limit:    intQueryParam(r, "limit"),
	}

	products, err := h.catalog.List(r.Context(), q)
	if err != nil {
		writeServiceError(w, op, err)
		return
	}
	writeJSON(w, op, http.StatusOK, toProducts(products))
}

func (h ProductsHandler) Get(w http.ResponseWriter, r *http.Request) {
	const op = "ProductsHandler.Get"

	product, err := h.catalog.Product(r.Context(), r.PathValue("productID"))
	if err != nil {
		if errors.Is(err, domain.ErrMalformedSource) {
			http.Error(w, "product not found", http.StatusNotFound)
			return
		}
		writeServiceError(w, op, err)
		return
	}
	writeJSON(w, op, http.StatusOK, toProduct(product))
}

func (h ProductsHandler) Categories(w http.ResponseWriter, r *http.Request) {
	const op = "ProductsHandler.Categories"

	categories, err := h.catalog.Categories(r.Context())
	if err != nil {
		writeServiceError(w, op, err)
		return
	}
	if categories == nil {
		categories = []string{}
	}
	writeJSON(w, op, http.StatusOK, categories)
}

func (h ProductsHandler) BestSellers(w http.ResponseWriter, r *http.Request) {
	const op = "ProductsHandler.BestSellers"

	if h.best == nil {
		w.WriteHeader(http.StatusNoContent)
		return
	}

	limit := intQueryParam(r, "limit")
	if limit <= 0 {
		limit = 8
	}

	sellers, err := h.best.Top(limit)
	if err != nil {
		writeServiceError(w, op, err)
		return
	}

	res := []BestSeller{}
	for _, s := range sellers {
		res = append(res, BestSeller{
			ProductID: s.ProductID,
			AddCount:  s.AddCount,
		})
	}
	writeJSON(w, op, http.StatusOK, res)
}

func cartKey(r *http.Request) string {
	if key := r.Header.Get(cartSessionHeader); key != "" {
		return key
	}
	return defaultCartKey
}

func intQueryParam(r *http.Request, name string) int {
	n, err := strconv.Atoi(r.URL.Query().Get(name))
	if err != nil {
		return 0
	}
	return n
}

// writeCartError maps ledger errors onto the HTTP surface. A rejected
// mutation and a failed persist are kept distinct: the latter still
// returns the mutated cart, flagged so the UI can warn the shopper.
func writeCartError(
	w http.ResponseWriter, op string, err error, cart domain.Cart,
) {
	log := slog.With("op", op)

	switch {
	case errors.Is(err, domain.ErrPersistenceUnavailable):
		log.Error("cart mutated but not persisted", "err", err)
		writeJSON(w, op, http.StatusAccepted, CartResponse{
			Cart:    toCart(cart),
			Warning: persistWarning,
		})
	case errors.Is(err, domain.ErrInvalidQuantity),
		errors.Is(err, domain.ErrInvalidAmount):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, domain.ErrLineItemNotFound):
		http.Error(w, err.Error(), http.StatusNotFound)
	default:
		log.Error("cart operation failed", "err", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}

func writeServiceError(w http.ResponseWriter, op string, err error) {
	slog.With("op", op).Error("request failed", "err", err)
	http.Error(w, "service unavailable", http.StatusServiceUnavailable)
}

func writeJSON(w http.ResponseWriter, op string, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.With("op", op).Error("failed to write response body", "err", err)
	}
}

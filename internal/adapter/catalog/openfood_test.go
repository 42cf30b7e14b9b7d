package catalog_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/strizshop/storefront/internal/adapter/catalog"
	"github.com/strizshop/storefront/internal/core/domain"
	"github.com/strizshop/storefront/internal/core/port"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newOpenFoodServer(t *testing.T) (*httptest.Server, *http.Request) {
	t.Helper()

	var captured http.Request

	mux := http.NewServeMux()
	mux.HandleFunc("/cgi/search.pl", func(w http.ResponseWriter, r *http.Request) {
		captured = *r
		w.Write([]byte(`{"products": [
			{
				"code": "3017620422003",
				"product_name": "Nutella",
				"image_front_small_url": "https://img.example/nutella.jpg",
				"categories_tags": ["en:sweet-spreads"]
			},
			{
				"product_name": "no code, dropped"
			}
		]}`))
	})
	mux.HandleFunc("/api/v0/product/3017620422003.json",
		func(w http.ResponseWriter, _ *http.Request) {
			w.Write([]byte(`{
				"status": 1,
				"product": {"code": "3017620422003", "product_name": "Nutella"}
			}`))
		})
	mux.HandleFunc("/api/v0/product/0000.json",
		func(w http.ResponseWriter, _ *http.Request) {
			w.Write([]byte(`{"status": 0}`))
		})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv, &captured
}

func TestOpenFoodClientList(t *testing.T) {

	t.Run("NormalizesAndSkipsMalformed", func(t *testing.T) {
		srv, _ := newOpenFoodServer(t)
		client := catalog.NewOpenFoodClient(srv.URL)

		products, err := client.List(t.Context(), port.CatalogQuery{})
		require.NoError(t, err)

		require.Len(t, products, 1)
		assert.Equal(t, "3017620422003", products[0].ID)
		assert.Equal(t, "Nutella", products[0].Title)
		assert.Equal(t, []string{"sweet spreads"}, products[0].Categories)
		assert.True(t, products[0].Price.Equal(
			domain.PseudoPrice("3017620422003"),
		))
	})

	t.Run("SearchTermsForwarded", func(t *testing.T) {
		srv, captured := newOpenFoodServer(t)
		client := catalog.NewOpenFoodClient(srv.URL)

		_, err := client.List(t.Context(), port.CatalogQuery{
			Search: "nutella", Page: 2, Limit: 5,
		})
		require.NoError(t, err)

		q := captured.URL.Query()
		assert.Equal(t, "nutella", q.Get("search_terms"))
		assert.Equal(t, "2", q.Get("page"))
		assert.Equal(t, "5", q.Get("page_size"))
		assert.Equal(t, "1", q.Get("json"))
	})

	t.Run("CategoryMapsToSearchTerms", func(t *testing.T) {
		srv, captured := newOpenFoodServer(t)
		client := catalog.NewOpenFoodClient(srv.URL)

		_, err := client.List(t.Context(), port.CatalogQuery{
			Category: "breakfasts",
		})
		require.NoError(t, err)
		assert.Equal(t, "breakfasts", captured.URL.Query().Get("search_terms"))
	})
}

func TestOpenFoodClientProduct(t *testing.T) {

	t.Run("KnownBarcode", func(t *testing.T) {
		srv, _ := newOpenFoodServer(t)
		client := catalog.NewOpenFoodClient(srv.URL)

		p, err := client.Product(t.Context(), "3017620422003")
		require.NoError(t, err)
		assert.Equal(t, "3017620422003", p.ID)
		assert.Equal(t, "Nutella", p.Title)
	})

	t.Run("LookupMissYieldsDeterministicPlaceholder", func(t *testing.T) {
		srv, _ := newOpenFoodServer(t)
		client := catalog.NewOpenFoodClient(srv.URL)

		p, err := client.Product(t.Context(), "0000")
		require.NoError(t, err)

		assert.Equal(t, "0000", p.ID)
		assert.Equal(t, "Unknown Product", p.Title)
		assert.Equal(t, domain.PlaceholderImage, p.Image)
		assert.True(t, p.Price.Equal(domain.PseudoPrice("0000")))
	})
}

func TestOpenFoodClientCategories(t *testing.T) {
	srv, _ := newOpenFoodServer(t)
	client := catalog.NewOpenFoodClient(srv.URL)

	categories, err := client.Categories(t.Context())
	require.NoError(t, err)
	assert.Empty(t, categories)
}

package catalog_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/strizshop/storefront/internal/adapter/catalog"
	"github.com/strizshop/storefront/internal/core/port"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const fakeStoreProducts = `[
	{
		"id": 1, "title": "Backpack", "price": 109.95,
		"description": "fits 15in laptops",
		"category": "men's clothing",
		"image": "https://img.example/1.jpg",
		"rating": {"rate": 3.9, "count": 120}
	},
	{
		"id": 2, "title": "T-Shirt", "price": 22.3,
		"category": "men's clothing",
		"image": "https://img.example/2.jpg"
	},
	{
		"id": 0, "title": "broken record"
	}
]`

func newFakeStoreServer(t *testing.T) *httptest.Server {
	t.Helper()

	mux := http.NewServeMux()
	mux.HandleFunc("/products", func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(fakeStoreProducts))
	})
	mux.HandleFunc("/products/categories",
		func(w http.ResponseWriter, _ *http.Request) {
			w.Write([]byte(`["electronics", "men's clothing"]`))
		})
	mux.HandleFunc("/products/category/electronics",
		func(w http.ResponseWriter, _ *http.Request) {
			w.Write([]byte(`[]`))
		})
	mux.HandleFunc("/products/1", func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(`{
			"id": 1, "title": "Backpack", "price": 109.95,
			"category": "men's clothing",
			"image": "https://img.example/1.jpg"
		}`))
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestFakeStoreClientList(t *testing.T) {

	t.Run("NormalizesAndSkipsMalformed", func(t *testing.T) {
		srv := newFakeStoreServer(t)
		client := catalog.NewFakeStoreClient(srv.URL)

		products, err := client.List(t.Context(), port.CatalogQuery{})
		require.NoError(t, err)

		// the record with no id is dropped, not surfaced as an error
		require.Len(t, products, 2)
		assert.Equal(t, "1", products[0].ID)
		assert.Equal(t, "Backpack", products[0].Title)
		assert.Equal(t, "$109.95", products[0].Price.Formatted)
		assert.Equal(t, []string{"men's clothing"}, products[0].Categories)
	})

	t.Run("SearchFiltersByTitle", func(t *testing.T) {
		srv := newFakeStoreServer(t)
		client := catalog.NewFakeStoreClient(srv.URL)

		products, err := client.List(t.Context(), port.CatalogQuery{
			Search: "backpack",
		})
		require.NoError(t, err)
		require.Len(t, products, 1)
		assert.Equal(t, "Backpack", products[0].Title)
	})

	t.Run("SearchMatchesCategory", func(t *testing.T) {
		srv := newFakeStoreServer(t)
		client := catalog.NewFakeStoreClient(srv.URL)

		products, err := client.List(t.Context(), port.CatalogQuery{
			Search: "clothing",
		})
		require.NoError(t, err)
		assert.Len(t, products, 2)
	})

	t.Run("Paginates", func(t *testing.T) {
		srv := newFakeStoreServer(t)
		client := catalog.NewFakeStoreClient(srv.URL)

		products, err := client.List(t.Context(), port.CatalogQuery{
			Page: 2, Limit: 1,
		})
		require.NoError(t, err)
		require.Len(t, products, 1)
		assert.Equal(t, "T-Shirt", products[0].Title)

		products, err = client.List(t.Context(), port.CatalogQuery{
			Page: 5, Limit: 10,
		})
		require.NoError(t, err)
		assert.Empty(t, products)
	})

	t.Run("CategoryUsesCategoryEndpoint", func(t *testing.T) {
		srv := newFakeStoreServer(t)
		client := catalog.NewFakeStoreClient(srv.URL)

		products, err := client.List(t.Context(), port.CatalogQuery{
			Category: "electronics",
		})
		require.NoError(t, err)
		assert.Empty(t, products)
	})
}

func TestFakeStoreClientProduct(t *testing.T) {
	srv := newFakeStoreServer(t)
	client := catalog.NewFakeStoreClient(srv.URL)

	p, err := client.Product(t.Context(), "1")
	require.NoError(t, err)
	assert.Equal(t, "1", p.ID)
	assert.Equal(t, "Backpack", p.Title)
}

func TestFakeStoreClientCategories(t *testing.T) {
	srv := newFakeStoreServer(t)
	client := catalog.NewFakeStoreClient(srv.URL)

	categories, err := client.Categories(t.Context())
	require.NoError(t, err)
	assert.Equal(t, []string{"electronics", "men's clothing"}, categories)
}

func TestFakeStoreClientUpstreamFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(
		func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusBadGateway)
		}))
	t.Cleanup(srv.Close)

	client := catalog.NewFakeStoreClient(srv.URL)

	_, err := client.List(t.Context(), port.CatalogQuery{})
	assert.Error(t, err)

	_, err = client.Product(t.Context(), "1")
	assert.Error(t, err)
}

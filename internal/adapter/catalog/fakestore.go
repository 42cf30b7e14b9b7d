package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/strizshop/storefront/internal/core/domain"
	"github.com/strizshop/storefront/internal/core/port"
)

var _ port.CatalogSource = (*FakeStoreClient)(nil)

const (
	defaultPageSize  = 20
	requestTimeout   = 10 * time.Second
	fakeStoreBaseURL = "https://fakestoreapi.com"
)

type fakeStoreProduct struct {
	ID          int     `json:"id"`
	Title       string  `json:"title"`
	Price       float64 `json:"price"`
	Description string  `json:"description"`
	Category    string  `json:"category"`
	Image       string  `json:"image"`
	Rating      struct {
		Rate  float64 `json:"rate"`
		Count int     `json:"count"`
	} `json:"rating"`
}

// A FakeStoreClient fetches records from the simple REST catalog and
// feeds them through the canonical product adapter.
type FakeStoreClient struct {
	baseURL string
	httpc   *http.Client
}

func NewFakeStoreClient(baseURL string) FakeStoreClient {
	if baseURL == "" {
		baseURL = fakeStoreBaseURL
	}
	return FakeStoreClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpc:   &http.Client{Timeout: requestTimeout},
	}
}

func (c FakeStoreClient) List(
	ctx context.Context, q port.CatalogQuery,
) ([]domain.Product, error) {
	const op = "FakeStoreClient.List"

	path := "/products"
	if q.Category != "" {
		path = "/products/category/" + url.PathEscape(q.Category)
	}

	var records []fakeStoreProduct
	if err := c.getJSON(ctx, path, &records); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	products := c.normalize(records)
	products = filterProducts(products, q.Search)
	return paginate(products, q.Page, q.Limit), nil
}

func (c FakeStoreClient) Product(
	ctx context.Context, id string,
) (domain.Product, error) {
	const op = "FakeStoreClient.Product"

	var record fakeStoreProduct
	err := c.getJSON(ctx, "/products/"+url.PathEscape(id), &record)
	if err != nil {
		return domain.Product{}, fmt.Errorf("%s: %w", op, err)
	}

	p, err := domain.ProductFromCatalogRecord(toCatalogRecord(record))
	if err != nil {
		return domain.Product{}, fmt.Errorf("%s: %w", op, err)
	}
	return p, nil
}

func (c FakeStoreClient) Categories(ctx context.Context) ([]string, error) {
	const op = "FakeStoreClient.Categories"

	var categories []string
	if err := c.getJSON(ctx, "/products/categories", &categories); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return categories, nil
}

func (c FakeStoreClient) normalize(
	records []fakeStoreProduct,
) []domain.Product {
	const op = "FakeStoreClient.normalize"
	log := slog.With("op", op)

	var products []domain.Product
	for _, record := range records {
		p, err := domain.ProductFromCatalogRecord(toCatalogRecord(record))
		if err != nil {
			log.Warn("skipping malformed record", "err", err)
			continue
		}
		products = append(products, p)
	}
	return products
}

func (c FakeStoreClient) getJSON(
	ctx context.Context, path string, v any,
) error {
	req, err := http.NewRequestWithContext(
		ctx, http.MethodGet, c.baseURL+path, nil,
	)
	if err != nil {
		return err
	}

	res, err := c.httpc.Do(req)
	if err != nil {
		return err
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status %d", res.StatusCode)
	}
	return json.NewDecoder(res.Body).Decode(v)
}

func toCatalogRecord(p fakeStoreProduct) domain.CatalogRecord {
	var id string
	if p.ID != 0 {
		id = strconv.Itoa(p.ID)
	}
	return domain.CatalogRecord{
		ID:          id,
		Title:       p.Title,
		Price:       p.Price,
		Description: p.Description,
		Image:       p.Image,
		Category:    p.Category,
		RatingRate:  p.Rating.Rate,
		RatingCount: p.Rating.Count,
	}
}

func filterProducts(products []domain.Product, search string) []domain.Product {
	if search == "" {
		return products
	}
	search = strings.ToLower(search)

	var matched []domain.Product
	for _, p := range products {
		if strings.Contains(strings.ToLower(p.Title), search) {
			matched = append(matched, p)
			continue
		}
		for _, cat := range p.Categories {
			if strings.Contains(strings.ToLower(cat), search) {
				matched = append(matched, p)
				break
			}
		}
	}
	return matched
}

func paginate(products []domain.Product, page, limit int) []domain.Product {
	if limit <= 0 {
		limit = defaultPageSize
	}
	if page <= 0 {
		page = 1
	}

	from := (page - 1) * limit
	if from >= len(products) {
		return nil
	}
	to := min(from+limit, len(products))
	return products[from:to]
}

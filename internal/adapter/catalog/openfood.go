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

	"github.com/strizshop/storefront/internal/core/domain"
	"github.com/strizshop/storefront/internal/core/port"
)

var _ port.CatalogSource = (*OpenFoodClient)(nil)

const openFoodBaseURL = "https://world.openfoodfacts.org"

type openFoodProduct struct {
	Code     string `json:"code"`
	ID       string `json:"id"`
	LegacyID string `json:"_id"`
	Barcode  string `json:"barcode"`

	ProductName string `json:"product_name"`
	Name        string `json:"name"`
	GenericName string `json:"generic_name"`
	Brands      string `json:"brands"`

	IngredientsText string   `json:"ingredients_text"`
	CategoriesTags  []string `json:"categories_tags"`

	ImageFrontSmallURL string `json:"image_front_small_url"`
	ImageSmallURL      string `json:"image_small_url"`
	ImageURL           string `json:"image_url"`
	ImageFrontURL      string `json:"image_front_url"`
}

type openFoodSearchResponse struct {
	Products []openFoodProduct `json:"products"`
}

type openFoodProductResponse struct {
	Status  int             `json:"status"`
	Product openFoodProduct `json:"product"`
}

// An OpenFoodClient fetches records from the public open-data food
// database. The source carries no prices, so every product comes back
// with the deterministic pseudo-price the adapter synthesizes.
type OpenFoodClient struct {
	baseURL string
	httpc   *http.Client
}

func NewOpenFoodClient(baseURL string) OpenFoodClient {
	if baseURL == "" {
		baseURL = openFoodBaseURL
	}
	return OpenFoodClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpc:   &http.Client{Timeout: requestTimeout},
	}
}

func (c OpenFoodClient) List(
	ctx context.Context, q port.CatalogQuery,
) ([]domain.Product, error) {
	const op = "OpenFoodClient.List"

	limit := q.Limit
	if limit <= 0 {
		limit = defaultPageSize
	}
	page := q.Page
	if page <= 0 {
		page = 1
	}

	params := url.Values{}
	params.Set("search_simple", "1")
	params.Set("action", "process")
	params.Set("json", "1")
	params.Set("page_size", strconv.Itoa(limit))
	params.Set("page", strconv.Itoa(page))
	// the open-data source has no category endpoint, category browsing
	// goes through the same full-text search
	if terms := firstOf(q.Search, q.Category); terms != "" {
		params.Set("search_terms", terms)
	}

	var res openFoodSearchResponse
	err := c.getJSON(ctx, "/cgi/search.pl?"+params.Encode(), &res)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return c.normalize(res.Products), nil
}

// Product resolves a barcode. A lookup miss (status 0) is not an
// error: the shopper still gets a deterministic unknown-product
// placeholder whose price matches any cart line created from it.
func (c OpenFoodClient) Product(
	ctx context.Context, id string,
) (domain.Product, error) {
	const op = "OpenFoodClient.Product"

	path := "/api/v0/product/" + url.PathEscape(id) + ".json"

	var res openFoodProductResponse
	if err := c.getJSON(ctx, path, &res); err != nil {
		return domain.Product{}, fmt.Errorf("%s: %w", op, err)
	}

	record := res.Product
	if res.Status == 0 {
		record = openFoodProduct{Code: id}
	}

	p, err := domain.ProductFromOpenFoodRecord(toOpenFoodRecord(record))
	if err != nil {
		return domain.Product{}, fmt.Errorf("%s: %w", op, err)
	}
	return p, nil
}

// Categories is empty for the open-data source: its taxonomy is not
// served as a browsable list, category browsing maps onto search.
func (c OpenFoodClient) Categories(context.Context) ([]string, error) {
	return nil, nil
}

func (c OpenFoodClient) normalize(
	records []openFoodProduct,
) []domain.Product {
	const op = "OpenFoodClient.normalize"
	log := slog.With("op", op)

	var products []domain.Product
	for _, record := range records {
		p, err := domain.ProductFromOpenFoodRecord(toOpenFoodRecord(record))
		if err != nil {
			log.Warn("skipping malformed record", "err", err)
			continue
		}
		products = append(products, p)
	}
	return products
}

func (c OpenFoodClient) getJSON(
	ctx context.Context, pathAndQuery string, v any,
) error {
	req, err := http.NewRequestWithContext(
		ctx, http.MethodGet, c.baseURL+pathAndQuery, nil,
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

func toOpenFoodRecord(p openFoodProduct) domain.OpenFoodRecord {
	return domain.OpenFoodRecord{
		Code:               p.Code,
		ID:                 p.ID,
		LegacyID:           p.LegacyID,
		Barcode:            p.Barcode,
		ProductName:        p.ProductName,
		Name:               p.Name,
		GenericName:        p.GenericName,
		Brands:             p.Brands,
		IngredientsText:    p.IngredientsText,
		CategoriesTags:     p.CategoriesTags,
		ImageFrontSmallURL: p.ImageFrontSmallURL,
		ImageSmallURL:      p.ImageSmallURL,
		ImageURL:           p.ImageURL,
		ImageFrontURL:      p.ImageFrontURL,
	}
}

func firstOf(vs ...string) string {
	for _, v := range vs {
		if v != "" {
			return v
		}
	}
	return ""
}

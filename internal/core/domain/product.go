package domain

import (
	"strings"

	"github.com/shopspring/decimal"
)

// PlaceholderImage is the asset served when a source record carries no
// usable image reference.
const PlaceholderImage = "/assets/placeholder.svg"

// A Product is the canonical shape every catalog source is normalized
// into. UI-facing code never builds one by hand, it always goes through
// one of the ProductFrom* adapters.
type Product struct {
	ID          string
	Title       string
	Description string
	Image       string
	Price       Money
	Categories  []string
}

// A CatalogRecord is the raw shape of a simple REST catalog product.
type CatalogRecord struct {
	ID          string
	Title       string
	Price       float64
	Description string
	Image       string
	Category    string
	RatingRate  float64
	RatingCount int
}

// An OpenFoodRecord is the raw shape of an open-data food product.
// Upstream payloads are uncontrolled and partial, so every field except
// the identifying code has known alternates.
type OpenFoodRecord struct {
	Code     string
	ID       string
	LegacyID string
	Barcode  string

	ProductName string
	Name        string
	GenericName string
	Brands      string

	IngredientsText string
	CategoriesTags  []string

	ImageFrontSmallURL string
	ImageSmallURL      string
	ImageURL           string
	ImageFrontURL      string
}

// ProductFromCatalogRecord maps a REST catalog record onto the
// canonical product. The price is taken as given; only a missing id is
// a hard failure.
func ProductFromCatalogRecord(r CatalogRecord) (Product, error) {
	if strings.TrimSpace(r.ID) == "" {
		return Product{}, ErrMalformedSource
	}

	price, err := NewMoney(r.Price)
	if err != nil {
		price = ZeroMoney()
	}

	image := r.Image
	if image == "" {
		image = PlaceholderImage
	}

	var categories []string
	if r.Category != "" {
		categories = []string{r.Category}
	}

	return Product{
		ID:          r.ID,
		Title:       r.Title,
		Description: r.Description,
		Image:       image,
		Price:       price,
		Categories:  categories,
	}, nil
}

// ProductFromOpenFoodRecord normalizes an open-data record, filling
// gaps deterministically instead of failing. The source has no price
// field, so the price is synthesized from the product code and is
// stable for the whole session: the same code always yields the same
// price, keeping carts and totals stable.
func ProductFromOpenFoodRecord(r OpenFoodRecord) (Product, error) {
	code := firstNonEmpty(r.Code, r.ID, r.LegacyID, r.Barcode)
	if code == "" {
		return Product{}, ErrMalformedSource
	}

	title := firstNonEmpty(r.ProductName, r.Name, r.GenericName, r.Brands)
	if title == "" {
		title = "Unknown Product"
	}

	image := firstNonEmpty(
		r.ImageFrontSmallURL, r.ImageSmallURL, r.ImageURL, r.ImageFrontURL,
	)
	if image == "" {
		image = PlaceholderImage
	}

	return Product{
		ID:          code,
		Title:       title,
		Description: firstNonEmpty(r.GenericName, r.IngredientsText, r.Brands),
		Image:       image,
		Price:       PseudoPrice(code),
		Categories:  cleanCategoryTags(r.CategoriesTags),
	}, nil
}

// PseudoPrice derives a deterministic price from a product code: the
// character-code sum seeds a dollar base in the $10-$100 band plus a
// sub-unit amount. Same code, same price, every call.
func PseudoPrice(code string) Money {
	var seed int
	for _, c := range code {
		seed += int(c)
	}
	dollars := 10 + seed%90
	cents := seed * 7919 % 100
	return moneyFromDecimal(decimal.New(int64(dollars*100+cents), -2))
}

func firstNonEmpty(vs ...string) string {
	for _, v := range vs {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}

// cleanCategoryTags turns taxonomy tags like "en:plant-based-foods"
// into display names, dropping the language prefix and dashes.
func cleanCategoryTags(tags []string) []string {
	var categories []string
	for _, tag := range tags {
		if tag == "" {
			continue
		}
		if i := strings.Index(tag, ":"); i == 2 {
			tag = tag[i+1:]
		}
		categories = append(categories, strings.ReplaceAll(tag, "-", " "))
	}
	return categories
}

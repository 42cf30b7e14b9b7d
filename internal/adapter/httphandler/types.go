package httphandler

import "github.com/strizshop/storefront/internal/core/domain"

type (
	Money struct {
		Raw       float64 `json:"raw"`
		Formatted string  `json:"formatted_with_symbol"`
	}

	ProductMeta struct {
		Title    string  `json:"title"`
		Image    string  `json:"image"`
		Price    float64 `json:"price"`
		Category string  `json:"category"`
	}

	LineItem struct {
		ID        string      `json:"id"`
		ProductID string      `json:"product_id"`
		Quantity  int         `json:"quantity"`
		Price     Money       `json:"price"`
		Meta      ProductMeta `json:"product_meta"`
	}

	Cart struct {
		ID         string     `json:"id"`
		TotalItems int        `json:"total_items"`
		Subtotal   Money      `json:"subtotal"`
		LineItems  []LineItem `json:"line_items"`
	}

	CartResponse struct {
		Cart    Cart   `json:"cart"`
		Warning string `json:"warning,omitempty"`
	}

	AddItemRequest struct {
		ProductID string      `json:"product_id"`
		Quantity  int         `json:"quantity"`
		Meta      ProductMeta `json:"product_meta"`
	}

	UpdateItemRequest struct {
		Quantity int `json:"quantity"`
	}

	Product struct {
		ID          string   `json:"id"`
		Title       string   `json:"title"`
		Description string   `json:"description"`
		Image       string   `json:"image"`
		Price       Money    `json:"price"`
		Categories  []string `json:"categories"`
	}

	ContainsResponse struct {
		ProductID string `json:"product_id"`
		Favorite  bool   `json:"favorite"`
	}

	BestSeller struct {
		ProductID string `json:"product_id"`
		AddCount  int64  `json:"add_count"`
	}
)

func toMoney(m domain.Money) Money {
	return Money{Raw: m.Raw.InexactFloat64(), Formatted: m.Formatted}
}

func toCart(c domain.Cart) Cart {
	cart := Cart{
		ID:         c.ID,
		TotalItems: c.TotalItemCount,
		Subtotal:   toMoney(c.Subtotal),
		LineItems:  []LineItem{},
	}
	for _, it := range c.Items {
		cart.LineItems = append(cart.LineItems, LineItem{
			ID:        it.ID,
			ProductID: it.ProductID,
			Quantity:  it.Quantity,
			Price:     toMoney(it.UnitPrice),
			Meta: ProductMeta{
				Title:    it.Meta.Title,
				Image:    it.Meta.Image,
				Price:    it.Meta.Price,
				Category: it.Meta.Category,
			},
		})
	}
	return cart
}

func toProduct(p domain.Product) Product {
	return Product{
		ID:          p.ID,
		Title:       p.Title,
		Description: p.Description,
		Image:       p.Image,
		Price:       toMoney(p.Price),
		Categories:  p.Categories,
	}
}

func toProducts(ps []domain.Product) []Product {
	products := []Product{}
	for _, p := range ps {
		products = append(products, toProduct(p))
	}
	return products
}

func (p Product) toDomain() (domain.Product, error) {
	price, err := domain.NewMoney(p.Price.Raw)
	if err != nil {
		return domain.Product{}, err
	}
	return domain.Product{
		ID:          p.ID,
		Title:       p.Title,
		Description: p.Description,
		Image:       p.Image,
		Price:       price,
		Categories:  p.Categories,
	}, nil
}

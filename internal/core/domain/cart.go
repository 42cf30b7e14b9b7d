package domain

import (
	"slices"
	"time"

	"github.com/google/uuid"
)

const (
	MinLineQuantity = 1
	MaxLineQuantity = 10
)

// A ProductMeta is the denormalized product snapshot taken at the moment
// the product enters the cart. The cart shows what the shopper saw when
// adding, not live catalog drift.
type ProductMeta struct {
	Title    string
	Image    string
	Price    float64
	Category string
}

type LineItem struct {
	ID        string
	ProductID string
	Quantity  int
	UnitPrice Money
	Meta      ProductMeta
}

// A Cart holds insertion-ordered line items plus the totals derived from
// them. TotalItemCount and Subtotal are recomputed from the items after
// every mutation, never maintained incrementally.
type Cart struct {
	ID             string
	Items          []LineItem
	TotalItemCount int
	Subtotal       Money
}

func NewCart() Cart {
	return Cart{
		ID:       uuid.NewString(),
		Subtotal: ZeroMoney(),
	}
}

func NewLineItemID() string {
	return uuid.NewString()
}

// Recalculate rebuilds the derived totals with a full pass over the
// line items. Carts are small, so the O(n) pass is preferred over
// incremental bookkeeping that could drift.
func (c *Cart) Recalculate() {
	total := 0
	subtotal := ZeroMoney()
	for _, it := range c.Items {
		total += it.Quantity
		subtotal = subtotal.Add(it.UnitPrice.Scale(it.Quantity))
	}
	c.TotalItemCount = total
	c.Subtotal = subtotal
}

func (c Cart) Clone() Cart {
	c.Items = slices.Clone(c.Items)
	return c
}

// WellFormed reports whether the cart satisfies its structural
// invariants: quantities in range, no duplicated product and
// non-negative unit prices. Persisted payloads failing this check are
// treated as corrupt.
func (c Cart) WellFormed() bool {
	seen := make(map[string]struct{}, len(c.Items))
	for _, it := range c.Items {
		if it.Quantity < MinLineQuantity || it.Quantity > MaxLineQuantity {
			return false
		}
		if it.UnitPrice.Raw.IsNegative() {
			return false
		}
		if _, ok := seen[it.ProductID]; ok {
			return false
		}
		seen[it.ProductID] = struct{}{}
	}
	return true
}

// Cart event actions produced after successful ledger mutations.
const (
	CartEventAdd    = "add"
	CartEventUpdate = "update"
	CartEventRemove = "remove"
	CartEventEmpty  = "empty"
)

type CartEvent struct {
	CartKey     string
	Action      string
	ProductID   string
	LineItemID  string
	Quantity    int
	SubtotalRaw float64
	OccurredAt  time.Time
}

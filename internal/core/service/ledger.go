package service

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/strizshop/storefront/internal/core/domain"
	"github.com/strizshop/storefront/internal/core/port"
)

var _ port.CartOperator = (*CartLedgers)(nil)

// A CartLedger owns one persisted cart and enforces its arithmetic
// invariants. The first operation loads the cart from the store,
// every mutation runs validate, mutate, recompute, persist as one
// serialized step. Rapid repeated calls queue on the mutex instead of
// interleaving saves.
type CartLedger struct {
	mu     sync.Mutex
	key    string
	loaded bool
	cart   domain.Cart
	store  port.CartStore
	events port.CartEventsProducer
}

// NewCartLedger builds a ledger for one cart key. The events producer
// is optional.
func NewCartLedger(
	key string, store port.CartStore, events port.CartEventsProducer,
) *CartLedger {
	return &CartLedger{key: key, store: store, events: events}
}

// Current returns the in-memory snapshot without touching storage,
// except for the one-time lazy load.
func (l *CartLedger) Current(ctx context.Context) (domain.Cart, error) {
	const op = "CartLedger.Current"

	l.mu.Lock()
	defer l.mu.Unlock()

	if err := l.ensureLoaded(ctx); err != nil {
		return domain.Cart{}, fmt.Errorf("%s: %w", op, err)
	}
	return l.cart.Clone(), nil
}

// Add puts quantity units of a product into the cart. An existing line
// for the same product is incremented, saturating at the per-line
// maximum instead of failing: this is a convenience cart, not an
// inventory system. A new line gets a fresh id and a unit price
// snapshot taken from the meta.
func (l *CartLedger) Add(
	ctx context.Context, productID string, quantity int, meta domain.ProductMeta,
) (domain.Cart, error) {
	const op = "CartLedger.Add"

	unitPrice, err := domain.NewMoney(meta.Price)
	if err != nil {
		return domain.Cart{}, fmt.Errorf("%s: %w", op, err)
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if err := l.ensureLoaded(ctx); err != nil {
		return domain.Cart{}, fmt.Errorf("%s: %w", op, err)
	}

	var lineItemID string
	if i := l.findByProduct(productID); i >= 0 {
		it := &l.cart.Items[i]
		it.Quantity = clampQuantity(it.Quantity + quantity)
		lineItemID = it.ID
	} else {
		item := domain.LineItem{
			ID:        domain.NewLineItemID(),
			ProductID: productID,
			Quantity:  clampQuantity(quantity),
			UnitPrice: unitPrice,
			Meta:      meta,
		}
		l.cart.Items = append(l.cart.Items, item)
		lineItemID = item.ID
	}

	evt := domain.CartEvent{
		Action:     domain.CartEventAdd,
		ProductID:  productID,
		LineItemID: lineItemID,
		Quantity:   quantity,
	}
	return l.commit(ctx, op, evt)
}

// UpdateQuantity sets a line item quantity. Out-of-range values are
// rejected with no mutation and no persistence; removing is an
// explicit Remove, never an update to zero.
func (l *CartLedger) UpdateQuantity(
	ctx context.Context, lineItemID string, quantity int,
) (domain.Cart, error) {
	const op = "CartLedger.UpdateQuantity"

	if quantity < domain.MinLineQuantity || quantity > domain.MaxLineQuantity {
		return domain.Cart{}, fmt.Errorf("%s: %w", op, domain.ErrInvalidQuantity)
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if err := l.ensureLoaded(ctx); err != nil {
		return domain.Cart{}, fmt.Errorf("%s: %w", op, err)
	}

	i := l.findByLineItem(lineItemID)
	if i < 0 {
		return domain.Cart{}, fmt.Errorf("%s: %w", op, domain.ErrLineItemNotFound)
	}
	l.cart.Items[i].Quantity = quantity

	evt := domain.CartEvent{
		Action:     domain.CartEventUpdate,
		ProductID:  l.cart.Items[i].ProductID,
		LineItemID: lineItemID,
		Quantity:   quantity,
	}
	return l.commit(ctx, op, evt)
}

// Remove drops a line item. Removing an absent item is a no-op, not an
// error, so UI double-clicks are harmless.
func (l *CartLedger) Remove(
	ctx context.Context, lineItemID string,
) (domain.Cart, error) {
	const op = "CartLedger.Remove"

	l.mu.Lock()
	defer l.mu.Unlock()

	if err := l.ensureLoaded(ctx); err != nil {
		return domain.Cart{}, fmt.Errorf("%s: %w", op, err)
	}

	var evt domain.CartEvent
	if i := l.findByLineItem(lineItemID); i >= 0 {
		evt = domain.CartEvent{
			Action:     domain.CartEventRemove,
			ProductID:  l.cart.Items[i].ProductID,
			LineItemID: lineItemID,
		}
		l.cart.Items = append(l.cart.Items[:i], l.cart.Items[i+1:]...)
	}
	return l.commit(ctx, op, evt)
}

// Empty resets to the canonical empty cart with a fresh id.
func (l *CartLedger) Empty(ctx context.Context) (domain.Cart, error) {
	const op = "CartLedger.Empty"

	l.mu.Lock()
	defer l.mu.Unlock()

	l.cart = domain.NewCart()
	l.loaded = true

	return l.commit(ctx, op, domain.CartEvent{Action: domain.CartEventEmpty})
}

func (l *CartLedger) ensureLoaded(ctx context.Context) error {
	if l.loaded {
		return nil
	}
	cart, err := l.store.Load(ctx, l.key)
	if err != nil {
		return err
	}
	if cart.ID == "" {
		cart = domain.NewCart()
	}
	cart.Recalculate()
	l.cart = cart
	l.loaded = true
	return nil
}

// commit recomputes the derived totals, persists and publishes the
// event. A rejected write surfaces distinctly: the mutated snapshot is
// still returned so the session keeps a usable, unsynced cart.
func (l *CartLedger) commit(
	ctx context.Context, op string, evt domain.CartEvent,
) (domain.Cart, error) {
	l.cart.Recalculate()
	snapshot := l.cart.Clone()

	if err := l.store.Save(ctx, l.key, l.cart); err != nil {
		return snapshot, fmt.Errorf("%s: %w", op, err)
	}

	l.produceEvent(ctx, evt, snapshot)
	return snapshot, nil
}

func (l *CartLedger) produceEvent(
	ctx context.Context, evt domain.CartEvent, snapshot domain.Cart,
) {
	const op = "CartLedger.produceEvent"

	if l.events == nil || evt.Action == "" {
		return
	}

	evt.CartKey = l.key
	evt.SubtotalRaw = snapshot.Subtotal.Raw.InexactFloat64()
	evt.OccurredAt = time.Now()

	if err := l.events.ProduceCartEvent(ctx, evt); err != nil {
		slog.With("op", op).Warn("failed to produce cart event", "err", err)
	}
}

func (l *CartLedger) findByProduct(productID string) int {
	for i, it := range l.cart.Items {
		if it.ProductID == productID {
			return i
		}
	}
	return -1
}

func (l *CartLedger) findByLineItem(lineItemID string) int {
	for i, it := range l.cart.Items {
		if it.ID == lineItemID {
			return i
		}
	}
	return -1
}

func clampQuantity(q int) int {
	if q < domain.MinLineQuantity {
		return domain.MinLineQuantity
	}
	if q > domain.MaxLineQuantity {
		return domain.MaxLineQuantity
	}
	return q
}

// A CartLedgers lazily builds one ledger per cart key, preserving
// single-ledger-per-session semantics over an explicitly injected
// store.
type CartLedgers struct {
	mu      sync.Mutex
	store   port.CartStore
	events  port.CartEventsProducer
	ledgers map[string]*CartLedger
}

func NewCartLedgers(
	store port.CartStore, events port.CartEventsProducer,
) *CartLedgers {
	return &CartLedgers{
		store:   store,
		events:  events,
		ledgers: make(map[string]*CartLedger),
	}
}

func (s *CartLedgers) Current(
	ctx context.Context, cartKey string,
) (domain.Cart, error) {
	return s.ledger(cartKey).Current(ctx)
}

func (s *CartLedgers) Add(
	ctx context.Context, cartKey, productID string,
	quantity int, meta domain.ProductMeta,
) (domain.Cart, error) {
	return s.ledger(cartKey).Add(ctx, productID, quantity, meta)
}

func (s *CartLedgers) UpdateQuantity(
	ctx context.Context, cartKey, lineItemID string, quantity int,
) (domain.Cart, error) {
	return s.ledger(cartKey).UpdateQuantity(ctx, lineItemID, quantity)
}

func (s *CartLedgers) Remove(
	ctx context.Context, cartKey, lineItemID string,
) (domain.Cart, error) {
	return s.ledger(cartKey).Remove(ctx, lineItemID)
}

func (s *CartLedgers) Empty(
	ctx context.Context, cartKey string,
) (domain.Cart, error) {
	return s.ledger(cartKey).Empty(ctx)
}

func (s *CartLedgers) ledger(cartKey string) *CartLedger {
	s.mu.Lock()
	defer s.mu.Unlock()

	l, ok := s.ledgers[cartKey]
	if !ok {
		l = NewCartLedger(cartKey, s.store, s.events)
		s.ledgers[cartKey] = l
	}
	return l
}

package domain

import (
	"context"
	"log/slog"
	"sync"
)

// Pricing rules for the minimarket storefront.
const (
	// TaxRate is the flat tax applied to the subtotal.
	TaxRate = 0.05
	// DiscountRate is the discount applied when the subtotal exceeds the threshold.
	DiscountRate = 0.10
	// DiscountThreshold is the subtotal above which the discount kicks in.
	// Strictly greater than: a subtotal of exactly 50 earns no discount.
	DiscountThreshold = 50.0
)

// LineItem is one product's presence in the cart. Price, name, and image are
// fixed at the moment the item is first added and are not refreshed from the
// catalog on later updates.
type LineItem struct {
	ID       int64   `json:"id"`
	Name     string  `json:"name"`
	Price    float64 `json:"price"`
	Image    string  `json:"image"`
	Quantity int     `json:"quantity"`
}

// Snapshot is a derived, point-in-time projection of the cart for
// serialization and display. It is recomputed on demand, never cached.
type Snapshot struct {
	Items    []LineItem `json:"items"`
	Subtotal float64    `json:"subtotal"`
	Tax      float64    `json:"tax"`
	Discount float64    `json:"discount"`
	Total    float64    `json:"total"`
}

// ItemStore persists the cart's line items under a fixed per-session key.
// Implementations must treat absent or corrupt stored data as an empty item
// list, not an error.
type ItemStore interface {
	// Save serializes the items to the store, overwriting any prior value.
	Save(ctx context.Context, items []LineItem) error

	// Load reads the stored items. Absent keys and shape mismatches resolve
	// to an empty slice with a nil error.
	Load(ctx context.Context) ([]LineItem, error)

	// Clear removes the stored value entirely.
	Clear(ctx context.Context) error
}

// Listener is a callback invoked synchronously on every cart state change,
// receiving the cart itself.
type Listener func(*Cart)

type subscriber struct {
	id int
	fn Listener
}

// Subscription is the handle returned by Subscribe. Unsubscribe removes the
// listener so torn-down views do not leak registrations.
type Subscription struct {
	cart *Cart
	id   int
}

// Unsubscribe removes the listener from the cart. Safe to call more than once.
func (s *Subscription) Unsubscribe() {
	s.cart.unsubscribe(s.id)
}

// Cart is the aggregate owning all line items for one shopper session. Every
// mutator persists the current items and then synchronously invokes every
// subscriber in registration order. Storage failures never fail a mutation:
// the in-memory state stays authoritative for the session and the error is
// only logged.
type Cart struct {
	mu     sync.Mutex
	items  []LineItem
	subs   []subscriber
	nextID int

	store  ItemStore
	logger *slog.Logger
}

// NewCart constructs a cart hydrated from the item store. A load failure
// resolves to an empty cart.
func NewCart(ctx context.Context, store ItemStore, logger *slog.Logger) *Cart {
	items, err := store.Load(ctx)
	if err != nil {
		logger.WarnContext(ctx, "failed to load cart from store, starting empty",
			slog.String("error", err.Error()),
		)
		items = nil
	}
	return &Cart{
		items:  items,
		store:  store,
		logger: logger,
	}
}

// Subscribe registers a listener invoked on every notification. Listeners run
// synchronously in registration order.
func (c *Cart) Subscribe(fn Listener) *Subscription {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.nextID++
	c.subs = append(c.subs, subscriber{id: c.nextID, fn: fn})
	return &Subscription{cart: c, id: c.nextID}
}

func (c *Cart) unsubscribe(id int) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for i := range c.subs {
		if c.subs[i].id == id {
			c.subs = append(c.subs[:i], c.subs[i+1:]...)
			return
		}
	}
}

// AddItem adds a product to the cart. If a line item with the same product ID
// already exists, the quantity is added to it; the existing entry's price,
// name, and image are kept (first-added values win). Quantity is taken as
// given; callers are expected to validate it.
func (c *Cart) AddItem(ctx context.Context, p Product, quantity int) {
	c.mu.Lock()
	idx := c.findIndexLocked(p.ID)
	if idx == -1 {
		c.items = append(c.items, LineItem{
			ID:       p.ID,
			Name:     p.Name,
			Price:    p.Price,
			Image:    p.Image,
			Quantity: quantity,
		})
	} else {
		c.items[idx].Quantity += quantity
	}
	c.mu.Unlock()

	c.notify(ctx)
}

// RemoveItem removes the line item matching the given product ID. Removing an
// absent ID is a benign no-op that still notifies subscribers.
func (c *Cart) RemoveItem(ctx context.Context, id int64) {
	c.mu.Lock()
	kept := c.items[:0]
	for _, item := range c.items {
		if item.ID != id {
			kept = append(kept, item)
		}
	}
	c.items = kept
	c.mu.Unlock()

	c.notify(ctx)
}

// UpdateQuantity sets the quantity of the matching line item to the given
// value exactly. A quantity of zero or less removes the item. An unknown ID
// returns without notifying subscribers.
func (c *Cart) UpdateQuantity(ctx context.Context, id int64, quantity int) {
	c.mu.Lock()
	idx := c.findIndexLocked(id)
	if idx == -1 {
		c.mu.Unlock()
		return
	}
	if quantity <= 0 {
		c.mu.Unlock()
		c.RemoveItem(ctx, id)
		return
	}
	c.items[idx].Quantity = quantity
	c.mu.Unlock()

	c.notify(ctx)
}

// Clear empties the cart and removes the persisted value, then notifies.
// The storage-level clear is folded in here so "clear the cart" is a single
// call; the store's own Clear stays available for callers that need to drop
// storage without touching an in-memory cart.
func (c *Cart) Clear(ctx context.Context) {
	c.mu.Lock()
	c.items = nil
	c.mu.Unlock()

	if err := c.store.Clear(ctx); err != nil {
		c.logger.WarnContext(ctx, "failed to clear cart store",
			slog.String("error", err.Error()),
		)
	}

	c.notify(ctx)
}

// Items returns a copy of the line items in insertion order.
func (c *Cart) Items() []LineItem {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.itemsCopyLocked()
}

// ItemCount returns the sum of all line item quantities.
func (c *Cart) ItemCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	var count int
	for _, item := range c.items {
		count += item.Quantity
	}
	return count
}

// Subtotal returns the sum over items of price times quantity.
func (c *Cart) Subtotal() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.subtotalLocked()
}

// Tax returns the tax owed on the current subtotal.
func (c *Cart) Tax() float64 {
	return c.Subtotal() * TaxRate
}

// Discount returns the discount earned by the current subtotal. Zero unless
// the subtotal is strictly greater than the threshold.
func (c *Cart) Discount() float64 {
	return discountFor(c.Subtotal())
}

// Total returns subtotal plus tax minus discount.
func (c *Cart) Total() float64 {
	sub := c.Subtotal()
	return sub + sub*TaxRate - discountFor(sub)
}

// Snapshot returns a consistent read of the cart: items and all derived
// pricing fields computed from the same item state.
func (c *Cart) Snapshot() Snapshot {
	c.mu.Lock()
	items := c.itemsCopyLocked()
	sub := c.subtotalLocked()
	c.mu.Unlock()

	return Snapshot{
		Items:    items,
		Subtotal: sub,
		Tax:      sub * TaxRate,
		Discount: discountFor(sub),
		Total:    sub + sub*TaxRate - discountFor(sub),
	}
}

// notify persists the current items and then invokes every subscriber in
// registration order, passing the cart.
func (c *Cart) notify(ctx context.Context) {
	c.mu.Lock()
	items := c.itemsCopyLocked()
	subs := make([]subscriber, len(c.subs))
	copy(subs, c.subs)
	c.mu.Unlock()

	if err := c.store.Save(ctx, items); err != nil {
		c.logger.WarnContext(ctx, "failed to persist cart",
			slog.String("error", err.Error()),
			slog.Int("items", len(items)),
		)
	}

	for _, s := range subs {
		s.fn(c)
	}
}

func (c *Cart) findIndexLocked(id int64) int {
	for i := range c.items {
		if c.items[i].ID == id {
			return i
		}
	}
	return -1
}

func (c *Cart) itemsCopyLocked() []LineItem {
	items := make([]LineItem, len(c.items))
	copy(items, c.items)
	return items
}

func (c *Cart) subtotalLocked() float64 {
	var sum float64
	for _, item := range c.items {
		sum += item.Price * float64(item.Quantity)
	}
	return sum
}

func discountFor(subtotal float64) float64 {
	if subtotal > DiscountThreshold {
		return subtotal * DiscountRate
	}
	return 0
}

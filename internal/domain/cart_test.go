package domain

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// memStore is an in-memory ItemStore for exercising the cart's persistence
// side effects.
type memStore struct {
	items     []LineItem
	saveCalls int
	clears    int
	saveErr   error
	loadErr   error
	clearErr  error
}

func (m *memStore) Save(_ context.Context, items []LineItem) error {
	m.saveCalls++
	if m.saveErr != nil {
		return m.saveErr
	}
	m.items = append([]LineItem(nil), items...)
	return nil
}

func (m *memStore) Load(_ context.Context) ([]LineItem, error) {
	if m.loadErr != nil {
		return nil, m.loadErr
	}
	return append([]LineItem(nil), m.items...), nil
}

func (m *memStore) Clear(_ context.Context) error {
	m.clears++
	if m.clearErr != nil {
		return m.clearErr
	}
	m.items = nil
	return nil
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
}

func newTestCart(t *testing.T) (*Cart, *memStore) {
	t.Helper()
	store := &memStore{}
	return NewCart(context.Background(), store, testLogger()), store
}

var (
	rice = Product{ID: 1, Name: "Rice", Category: "food", Price: 20}
	oil  = Product{ID: 2, Name: "Oil", Category: "food", Price: 15}
)

// ============================================================================
// Construction / hydration
// ============================================================================

func TestNewCart_HydratesFromStore(t *testing.T) {
	store := &memStore{items: []LineItem{
		{ID: 1, Name: "Rice", Price: 20, Quantity: 2},
	}}

	c := NewCart(context.Background(), store, testLogger())

	require.Len(t, c.Items(), 1)
	assert.Equal(t, 2, c.ItemCount())
}

func TestNewCart_LoadFailureStartsEmpty(t *testing.T) {
	store := &memStore{loadErr: errors.New("redis: connection refused")}

	c := NewCart(context.Background(), store, testLogger())

	assert.Empty(t, c.Items())
	assert.Zero(t, c.ItemCount())
}

// ============================================================================
// AddItem
// ============================================================================

func TestAddItem_DistinctIDs(t *testing.T) {
	c, _ := newTestCart(t)
	ctx := context.Background()

	c.AddItem(ctx, rice, 2)
	c.AddItem(ctx, oil, 3)

	items := c.Items()
	require.Len(t, items, 2)
	assert.Equal(t, 5, c.ItemCount())
	// Insertion order is preserved.
	assert.Equal(t, int64(1), items[0].ID)
	assert.Equal(t, int64(2), items[1].ID)
}

func TestAddItem_MergesSameID(t *testing.T) {
	c, _ := newTestCart(t)
	ctx := context.Background()

	c.AddItem(ctx, rice, 2)
	c.AddItem(ctx, Product{ID: 1, Name: "Renamed Rice", Price: 99, Image: "new.jpg"}, 3)

	items := c.Items()
	require.Len(t, items, 1)
	assert.Equal(t, 5, items[0].Quantity)
	// First-added values win; later adds do not overwrite them.
	assert.Equal(t, "Rice", items[0].Name)
	assert.Equal(t, 20.0, items[0].Price)
	assert.Equal(t, "", items[0].Image)
}

func TestAddItem_PersistsAndNotifies(t *testing.T) {
	c, store := newTestCart(t)

	notified := 0
	c.Subscribe(func(got *Cart) {
		notified++
		assert.Same(t, c, got)
	})

	c.AddItem(context.Background(), rice, 1)

	assert.Equal(t, 1, notified)
	require.Len(t, store.items, 1)
	assert.Equal(t, int64(1), store.items[0].ID)
}

func TestAddItem_PersistsBeforeListenersRun(t *testing.T) {
	c, store := newTestCart(t)

	c.Subscribe(func(*Cart) {
		// By the time a listener runs the store already holds the new state.
		assert.Len(t, store.items, 1)
	})

	c.AddItem(context.Background(), rice, 1)
}

func TestAddItem_SaveFailureKeepsInMemoryState(t *testing.T) {
	store := &memStore{saveErr: errors.New("redis: broken pipe")}
	c := NewCart(context.Background(), store, testLogger())

	notified := false
	c.Subscribe(func(*Cart) { notified = true })

	c.AddItem(context.Background(), rice, 2)

	// The mutation and notification still happen; durability is best effort.
	assert.Equal(t, 2, c.ItemCount())
	assert.True(t, notified)
}

// ============================================================================
// RemoveItem
// ============================================================================

func TestRemoveItem(t *testing.T) {
	c, _ := newTestCart(t)
	ctx := context.Background()

	c.AddItem(ctx, rice, 2)
	c.AddItem(ctx, oil, 1)
	c.RemoveItem(ctx, 1)

	items := c.Items()
	require.Len(t, items, 1)
	assert.Equal(t, int64(2), items[0].ID)
}

func TestRemoveItem_UnknownIDStillNotifies(t *testing.T) {
	c, store := newTestCart(t)

	notified := 0
	c.Subscribe(func(*Cart) { notified++ })

	c.RemoveItem(context.Background(), 999)

	assert.Equal(t, 1, notified)
	assert.Equal(t, 1, store.saveCalls)
	assert.Empty(t, c.Items())
}

func TestRemoveItem_PreservesOrderOfRemaining(t *testing.T) {
	c, _ := newTestCart(t)
	ctx := context.Background()

	c.AddItem(ctx, rice, 1)
	c.AddItem(ctx, oil, 1)
	c.AddItem(ctx, Product{ID: 3, Name: "Sugar", Price: 5}, 1)
	c.RemoveItem(ctx, 2)

	items := c.Items()
	require.Len(t, items, 2)
	assert.Equal(t, int64(1), items[0].ID)
	assert.Equal(t, int64(3), items[1].ID)
}

// ============================================================================
// UpdateQuantity
// ============================================================================

func TestUpdateQuantity_SetsAbsoluteValue(t *testing.T) {
	c, _ := newTestCart(t)
	ctx := context.Background()

	c.AddItem(ctx, rice, 2)
	c.UpdateQuantity(ctx, 1, 7)

	items := c.Items()
	require.Len(t, items, 1)
	assert.Equal(t, 7, items[0].Quantity)
}

func TestUpdateQuantity_ZeroRemovesItem(t *testing.T) {
	c, _ := newTestCart(t)
	ctx := context.Background()

	c.AddItem(ctx, rice, 2)
	c.UpdateQuantity(ctx, 1, 0)

	assert.Empty(t, c.Items())
}

func TestUpdateQuantity_NegativeRemovesItem(t *testing.T) {
	c, _ := newTestCart(t)
	ctx := context.Background()

	c.AddItem(ctx, rice, 2)
	c.UpdateQuantity(ctx, 1, -1)

	assert.Empty(t, c.Items())
}

func TestUpdateQuantity_UnknownIDDoesNotNotify(t *testing.T) {
	c, store := newTestCart(t)
	ctx := context.Background()

	c.AddItem(ctx, rice, 2)
	savesBefore := store.saveCalls

	notified := 0
	c.Subscribe(func(*Cart) { notified++ })

	c.UpdateQuantity(ctx, 999, 5)

	assert.Zero(t, notified)
	assert.Equal(t, savesBefore, store.saveCalls)
	assert.Equal(t, 2, c.ItemCount())
}

// ============================================================================
// Clear
// ============================================================================

func TestClear_EmptiesCartAndStore(t *testing.T) {
	c, store := newTestCart(t)
	ctx := context.Background()

	c.AddItem(ctx, rice, 2)

	notified := 0
	c.Subscribe(func(*Cart) { notified++ })

	c.Clear(ctx)

	assert.Empty(t, c.Items())
	assert.Zero(t, c.ItemCount())
	assert.Equal(t, 1, notified)
	assert.Equal(t, 1, store.clears)
	// The notification persists the now-empty item list.
	assert.Empty(t, store.items)
}

// ============================================================================
// Pricing
// ============================================================================

func TestPricing_EmptyCartIsAllZero(t *testing.T) {
	c, _ := newTestCart(t)

	assert.Zero(t, c.Subtotal())
	assert.Zero(t, c.Tax())
	assert.Zero(t, c.Discount())
	assert.Zero(t, c.Total())
}

func TestPricing_BelowDiscountThreshold(t *testing.T) {
	c, _ := newTestCart(t)

	c.AddItem(context.Background(), rice, 2)

	assert.InDelta(t, 40.0, c.Subtotal(), 1e-9)
	assert.InDelta(t, 2.0, c.Tax(), 1e-9)
	assert.Zero(t, c.Discount())
	assert.InDelta(t, 42.0, c.Total(), 1e-9)
}

func TestPricing_AboveDiscountThreshold(t *testing.T) {
	c, _ := newTestCart(t)
	ctx := context.Background()

	c.AddItem(ctx, rice, 2)
	c.AddItem(ctx, oil, 1)

	// 55 > 50, so the 10% discount applies.
	assert.InDelta(t, 55.0, c.Subtotal(), 1e-9)
	assert.InDelta(t, 2.75, c.Tax(), 1e-9)
	assert.InDelta(t, 5.5, c.Discount(), 1e-9)
	assert.InDelta(t, 52.25, c.Total(), 1e-9)
}

func TestDiscount_ThresholdIsStrictlyGreaterThan(t *testing.T) {
	c, _ := newTestCart(t)
	c.AddItem(context.Background(), Product{ID: 10, Name: "Exact", Price: 50}, 1)

	assert.Zero(t, c.Discount())
}

func TestDiscount_JustAboveThreshold(t *testing.T) {
	c, _ := newTestCart(t)
	c.AddItem(context.Background(), Product{ID: 10, Name: "JustOver", Price: 50.01}, 1)

	assert.InDelta(t, 5.001, c.Discount(), 1e-9)
}

func TestTotal_EqualsSubtotalPlusTaxMinusDiscount(t *testing.T) {
	c, _ := newTestCart(t)
	ctx := context.Background()

	c.AddItem(ctx, rice, 3)
	c.AddItem(ctx, oil, 2)
	c.AddItem(ctx, Product{ID: 3, Name: "Sugar", Price: 4.99}, 7)

	assert.Equal(t, c.Subtotal()+c.Tax()-c.Discount(), c.Total())
}

// ============================================================================
// Snapshot
// ============================================================================

func TestSnapshot_ConsistentProjection(t *testing.T) {
	c, _ := newTestCart(t)
	ctx := context.Background()

	c.AddItem(ctx, rice, 2)
	c.AddItem(ctx, oil, 1)

	snap := c.Snapshot()

	require.Len(t, snap.Items, 2)
	assert.InDelta(t, 55.0, snap.Subtotal, 1e-9)
	assert.InDelta(t, 2.75, snap.Tax, 1e-9)
	assert.InDelta(t, 5.5, snap.Discount, 1e-9)
	assert.Equal(t, snap.Subtotal+snap.Tax-snap.Discount, snap.Total)
}

func TestSnapshot_EmptyCart(t *testing.T) {
	c, _ := newTestCart(t)

	snap := c.Snapshot()

	assert.Empty(t, snap.Items)
	assert.Zero(t, snap.Subtotal)
	assert.Zero(t, snap.Total)
}

func TestItems_ReturnsCopy(t *testing.T) {
	c, _ := newTestCart(t)
	c.AddItem(context.Background(), rice, 2)

	items := c.Items()
	items[0].Quantity = 99

	assert.Equal(t, 2, c.Items()[0].Quantity)
}

// ============================================================================
// Subscriptions
// ============================================================================

func TestSubscribe_ListenersRunInRegistrationOrder(t *testing.T) {
	c, _ := newTestCart(t)

	var order []string
	c.Subscribe(func(*Cart) { order = append(order, "header") })
	c.Subscribe(func(*Cart) { order = append(order, "order") })

	c.AddItem(context.Background(), rice, 1)

	assert.Equal(t, []string{"header", "order"}, order)
}

func TestUnsubscribe_StopsNotifications(t *testing.T) {
	c, _ := newTestCart(t)
	ctx := context.Background()

	calls := 0
	sub := c.Subscribe(func(*Cart) { calls++ })

	c.AddItem(ctx, rice, 1)
	sub.Unsubscribe()
	c.AddItem(ctx, oil, 1)

	assert.Equal(t, 1, calls)
}

func TestUnsubscribe_Idempotent(t *testing.T) {
	c, _ := newTestCart(t)

	sub := c.Subscribe(func(*Cart) {})
	sub.Unsubscribe()
	sub.Unsubscribe()

	remaining := c.Subscribe(func(*Cart) {})
	assert.NotNil(t, remaining)
}

func TestUnsubscribe_KeepsOtherListeners(t *testing.T) {
	c, _ := newTestCart(t)

	var order []string
	first := c.Subscribe(func(*Cart) { order = append(order, "first") })
	c.Subscribe(func(*Cart) { order = append(order, "second") })
	first.Unsubscribe()

	c.AddItem(context.Background(), rice, 1)

	assert.Equal(t, []string{"second"}, order)
}

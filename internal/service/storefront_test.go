package service

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"testing"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/Deko-Hussein/Hami-mini-market-week-3/internal/catalog"
	"github.com/Deko-Hussein/Hami-mini-market-week-3/internal/domain"
	"github.com/Deko-Hussein/Hami-mini-market-week-3/internal/session"
	apperrors "github.com/Deko-Hussein/Hami-mini-market-week-3/pkg/errors"
)

type mockPublisher struct {
	mock.Mock
}

func (m *mockPublisher) PublishOrderConfirmed(ctx context.Context, sessionID string, snap domain.Snapshot) error {
	args := m.Called(ctx, sessionID, snap)
	return args.Error(0)
}

type stubCatalogRepo struct {
	products []domain.Product
}

func (r *stubCatalogRepo) ListProducts(context.Context) ([]domain.Product, error) {
	return r.products, nil
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
}

func newTestSession(t *testing.T) (*session.Session, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	m := session.NewManager(client, session.DefaultConfig(), nil, testLogger())
	return m.Get(context.Background(), "sess-001"), mr
}

func newTestService(t *testing.T, pub OrderPublisher) *StorefrontService {
	t.Helper()
	repo := &stubCatalogRepo{products: []domain.Product{
		{ID: 1, Name: "Basmati Rice", Category: "food", Price: 20},
		{ID: 2, Name: "Dish Soap", Category: "household", Price: 4.5},
	}}
	cat := catalog.New(repo, testLogger())
	require.NoError(t, cat.EnsureLoaded(context.Background()))
	return NewStorefrontService(cat, pub, testLogger())
}

// ---------------------------------------------------------------------------
// Checkout
// ---------------------------------------------------------------------------

func TestStorefrontService_Checkout(t *testing.T) {
	sess, mr := newTestSession(t)
	ctx := context.Background()
	sess.Cart.AddItem(ctx, domain.Product{ID: 1, Name: "Rice", Price: 20}, 2)

	pub := new(mockPublisher)
	pub.On("PublishOrderConfirmed", mock.Anything, "sess-001", mock.Anything).Return(nil)

	svc := newTestService(t, pub)

	snap, err := svc.Checkout(ctx, sess)
	require.NoError(t, err)

	// The snapshot captures the cart as ordered.
	assert.Len(t, snap.Items, 1)
	assert.Equal(t, 42.0, snap.Total)

	// The cart and its persisted copy are both cleared.
	assert.Equal(t, 0, sess.Cart.ItemCount())
	assert.False(t, mr.Exists("cart:sess-001"))

	pub.AssertExpectations(t)
}

func TestStorefrontService_Checkout_PublishedSnapshotMatchesOrder(t *testing.T) {
	sess, _ := newTestSession(t)
	ctx := context.Background()
	sess.Cart.AddItem(ctx, domain.Product{ID: 1, Name: "Rice", Price: 55}, 1)

	pub := new(mockPublisher)
	pub.On("PublishOrderConfirmed", mock.Anything, "sess-001", mock.MatchedBy(func(snap domain.Snapshot) bool {
		return len(snap.Items) == 1 && snap.Discount > 0
	})).Return(nil)

	svc := newTestService(t, pub)

	_, err := svc.Checkout(ctx, sess)
	require.NoError(t, err)
	pub.AssertExpectations(t)
}

func TestStorefrontService_Checkout_EmptyCart(t *testing.T) {
	sess, _ := newTestSession(t)

	pub := new(mockPublisher)
	svc := newTestService(t, pub)

	_, err := svc.Checkout(context.Background(), sess)
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrEmptyCart)
	pub.AssertNotCalled(t, "PublishOrderConfirmed", mock.Anything, mock.Anything, mock.Anything)
}

func TestStorefrontService_Checkout_PublishFailureKeepsCart(t *testing.T) {
	sess, mr := newTestSession(t)
	ctx := context.Background()
	sess.Cart.AddItem(ctx, domain.Product{ID: 1, Name: "Rice", Price: 20}, 1)

	pub := new(mockPublisher)
	pub.On("PublishOrderConfirmed", mock.Anything, "sess-001", mock.Anything).
		Return(errors.New("broker unavailable"))

	svc := newTestService(t, pub)

	_, err := svc.Checkout(ctx, sess)
	require.Error(t, err)

	assert.Equal(t, 1, sess.Cart.ItemCount())
	assert.True(t, mr.Exists("cart:sess-001"))
}

func TestStorefrontService_Checkout_NilPublisher(t *testing.T) {
	sess, _ := newTestSession(t)
	ctx := context.Background()
	sess.Cart.AddItem(ctx, domain.Product{ID: 1, Name: "Rice", Price: 20}, 1)

	svc := newTestService(t, nil)

	_, err := svc.Checkout(ctx, sess)
	require.NoError(t, err)
	assert.Equal(t, 0, sess.Cart.ItemCount())
}

// ---------------------------------------------------------------------------
// Catalog access
// ---------------------------------------------------------------------------

func TestStorefrontService_FilterCatalog(t *testing.T) {
	svc := newTestService(t, nil)

	got := svc.FilterCatalog("", "food", 0)
	require.Len(t, got, 1)
	assert.Equal(t, "Basmati Rice", got[0].Name)
}

func TestStorefrontService_Categories(t *testing.T) {
	svc := newTestService(t, nil)

	assert.Equal(t, []string{"food", "household"}, svc.Categories())
}

package catalog

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/Deko-Hussein/Hami-mini-market-week-3/internal/domain"
)

type mockRepository struct {
	mock.Mock
}

func (m *mockRepository) ListProducts(ctx context.Context) ([]domain.Product, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Product), args.Error(1)
}

func testProducts() []domain.Product {
	return []domain.Product{
		{ID: 1, Name: "Basmati Rice", Category: "food", Price: 20, Image: "rice.jpg"},
		{ID: 2, Name: "Olive Oil", Category: "food", Price: 15, Image: "oil.jpg"},
		{ID: 3, Name: "Dish Soap", Category: "household", Price: 4.5, Image: "soap.jpg"},
	}
}

func newTestCatalog(t *testing.T, repo Repository) *Catalog {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
	return New(repo, logger)
}

// ---------------------------------------------------------------------------
// EnsureLoaded / Refresh
// ---------------------------------------------------------------------------

func TestCatalog_EnsureLoaded(t *testing.T) {
	repo := new(mockRepository)
	repo.On("ListProducts", mock.Anything).Return(testProducts(), nil).Once()

	c := newTestCatalog(t, repo)

	require.NoError(t, c.EnsureLoaded(context.Background()))
	assert.Len(t, c.Products(), 3)
	repo.AssertExpectations(t)
}

func TestCatalog_EnsureLoaded_SecondCallDoesNotRefetch(t *testing.T) {
	repo := new(mockRepository)
	repo.On("ListProducts", mock.Anything).Return(testProducts(), nil).Once()

	c := newTestCatalog(t, repo)

	require.NoError(t, c.EnsureLoaded(context.Background()))
	require.NoError(t, c.EnsureLoaded(context.Background()))

	repo.AssertNumberOfCalls(t, "ListProducts", 1)
}

func TestCatalog_EnsureLoaded_RepositoryError(t *testing.T) {
	repo := new(mockRepository)
	repo.On("ListProducts", mock.Anything).Return(nil, errors.New("connection refused"))

	c := newTestCatalog(t, repo)

	err := c.EnsureLoaded(context.Background())
	require.Error(t, err)
	assert.Empty(t, c.Products())
}

func TestCatalog_Refresh_ReplacesContents(t *testing.T) {
	repo := new(mockRepository)
	repo.On("ListProducts", mock.Anything).Return(testProducts(), nil).Once()
	repo.On("ListProducts", mock.Anything).Return(testProducts()[:1], nil).Once()

	c := newTestCatalog(t, repo)
	ctx := context.Background()

	require.NoError(t, c.EnsureLoaded(ctx))
	require.NoError(t, c.Refresh(ctx))

	assert.Len(t, c.Products(), 1)
}

func TestCatalog_Refresh_FailureKeepsPreviousContents(t *testing.T) {
	repo := new(mockRepository)
	repo.On("ListProducts", mock.Anything).Return(testProducts(), nil).Once()
	repo.On("ListProducts", mock.Anything).Return(nil, errors.New("connection refused")).Once()

	c := newTestCatalog(t, repo)
	ctx := context.Background()

	require.NoError(t, c.EnsureLoaded(ctx))
	require.Error(t, c.Refresh(ctx))

	assert.Len(t, c.Products(), 3)
}

// ---------------------------------------------------------------------------
// Lookup and filtering
// ---------------------------------------------------------------------------

func loadedCatalog(t *testing.T) *Catalog {
	t.Helper()
	repo := new(mockRepository)
	repo.On("ListProducts", mock.Anything).Return(testProducts(), nil)
	c := newTestCatalog(t, repo)
	require.NoError(t, c.EnsureLoaded(context.Background()))
	return c
}

func TestCatalog_Get(t *testing.T) {
	c := loadedCatalog(t)

	p, ok := c.Get(2)
	require.True(t, ok)
	assert.Equal(t, "Olive Oil", p.Name)

	_, ok = c.Get(99)
	assert.False(t, ok)
}

func TestCatalog_Filter(t *testing.T) {
	c := loadedCatalog(t)

	tests := []struct {
		name     string
		search   string
		category string
		maxPrice float64
		wantIDs  []int64
	}{
		{"no filters", "", "", 0, []int64{1, 2, 3}},
		{"category all", "", domain.CategoryAll, 0, []int64{1, 2, 3}},
		{"category food", "", "food", 0, []int64{1, 2}},
		{"search", "oil", "", 0, []int64{2}},
		{"max price", "", "", 10, []int64{3}},
		{"combined", "s", "food", 25, []int64{1}},
		{"no match", "tea", "", 0, []int64{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := c.Filter(tt.search, tt.category, tt.maxPrice)
			ids := make([]int64, 0, len(got))
			for _, p := range got {
				ids = append(ids, p.ID)
			}
			assert.Equal(t, tt.wantIDs, ids)
		})
	}
}

func TestCatalog_Categories(t *testing.T) {
	c := loadedCatalog(t)

	assert.Equal(t, []string{"food", "household"}, c.Categories())
}

func TestCatalog_Products_ReturnsCopy(t *testing.T) {
	c := loadedCatalog(t)

	products := c.Products()
	products[0].Name = "mutated"

	fresh := c.Products()
	assert.Equal(t, "Basmati Rice", fresh[0].Name)
}

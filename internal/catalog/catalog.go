package catalog

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"sync"

	"github.com/Deko-Hussein/Hami-mini-market-week-3/internal/domain"
)

// Repository is the source of catalog products.
type Repository interface {
	ListProducts(ctx context.Context) ([]domain.Product, error)
}

// Catalog holds the product list served to the storefront. It is explicitly
// constructed and loaded once at startup via EnsureLoaded; filtering never
// re-reads the source behind the caller's back.
type Catalog struct {
	mu       sync.RWMutex
	products []domain.Product
	loaded   bool

	repo   Repository
	logger *slog.Logger
}

// New creates a catalog backed by the given repository. Call EnsureLoaded
// before serving requests.
func New(repo Repository, logger *slog.Logger) *Catalog {
	return &Catalog{
		repo:   repo,
		logger: logger,
	}
}

// EnsureLoaded populates the catalog from the repository if it has not been
// loaded yet. Subsequent calls are no-ops; use Refresh to force a reload.
func (c *Catalog) EnsureLoaded(ctx context.Context) error {
	c.mu.RLock()
	loaded := c.loaded
	c.mu.RUnlock()
	if loaded {
		return nil
	}
	return c.Refresh(ctx)
}

// Refresh reloads the product list from the repository, replacing the current
// contents. On failure the previous contents are kept.
func (c *Catalog) Refresh(ctx context.Context) error {
	products, err := c.repo.ListProducts(ctx)
	if err != nil {
		return fmt.Errorf("refresh catalog: %w", err)
	}

	c.mu.Lock()
	c.products = products
	c.loaded = true
	c.mu.Unlock()

	c.logger.InfoContext(ctx, "catalog loaded",
		slog.Int("products", len(products)),
	)
	return nil
}

// Products returns a copy of all products in catalog order.
func (c *Catalog) Products() []domain.Product {
	c.mu.RLock()
	defer c.mu.RUnlock()

	products := make([]domain.Product, len(c.products))
	copy(products, c.products)
	return products
}

// Get returns the product with the given ID.
func (c *Catalog) Get(id int64) (domain.Product, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	for _, p := range c.products {
		if p.ID == id {
			return p, true
		}
	}
	return domain.Product{}, false
}

// Filter returns the products matching the search term, category, and price
// ceiling, preserving catalog order.
func (c *Catalog) Filter(search, category string, maxPrice float64) []domain.Product {
	c.mu.RLock()
	defer c.mu.RUnlock()

	matched := make([]domain.Product, 0, len(c.products))
	for _, p := range c.products {
		if p.Matches(search, category, maxPrice) {
			matched = append(matched, p)
		}
	}
	return matched
}

// Categories returns the distinct product categories, sorted.
func (c *Catalog) Categories() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()

	seen := make(map[string]struct{}, len(c.products))
	var categories []string
	for _, p := range c.products {
		if _, ok := seen[p.Category]; ok {
			continue
		}
		seen[p.Category] = struct{}{}
		categories = append(categories, p.Category)
	}
	sort.Strings(categories)
	return categories
}

package service

import (
	"context"
	"log/slog"

	"github.com/Deko-Hussein/Hami-mini-market-week-3/internal/catalog"
	"github.com/Deko-Hussein/Hami-mini-market-week-3/internal/domain"
	"github.com/Deko-Hussein/Hami-mini-market-week-3/internal/session"
	apperrors "github.com/Deko-Hussein/Hami-mini-market-week-3/pkg/errors"
)

// OrderPublisher publishes order confirmation events. Implemented by
// event.Producer.
type OrderPublisher interface {
	PublishOrderConfirmed(ctx context.Context, sessionID string, snap domain.Snapshot) error
}

// StorefrontService orchestrates cart and catalog operations for the HTTP
// layer. Cart mutations go straight to the session's cart; this layer adds
// what the domain does not own, checkout and catalog access.
type StorefrontService struct {
	catalog   *catalog.Catalog
	publisher OrderPublisher
	logger    *slog.Logger
}

// NewStorefrontService creates the storefront service. The publisher may be
// nil, in which case confirmed orders are not published.
func NewStorefrontService(cat *catalog.Catalog, publisher OrderPublisher, logger *slog.Logger) *StorefrontService {
	return &StorefrontService{
		catalog:   cat,
		publisher: publisher,
		logger:    logger,
	}
}

// Checkout confirms the order held in the session's cart. An empty cart is
// rejected. The order.confirmed event is published before the cart is
// cleared; a publish failure aborts the checkout and keeps the cart intact.
func (s *StorefrontService) Checkout(ctx context.Context, sess *session.Session) (domain.Snapshot, error) {
	snap := sess.Cart.Snapshot()
	if len(snap.Items) == 0 {
		return domain.Snapshot{}, apperrors.EmptyCart()
	}

	if s.publisher != nil {
		if err := s.publisher.PublishOrderConfirmed(ctx, sess.ID, snap); err != nil {
			return domain.Snapshot{}, apperrors.Wrap(err, "confirm order")
		}
	}

	sess.Cart.Clear(ctx)

	s.logger.InfoContext(ctx, "order confirmed",
		slog.String("session_id", sess.ID),
		slog.Int("items", len(snap.Items)),
		slog.Float64("total", snap.Total),
	)

	return snap, nil
}

// FilterCatalog returns catalog products matching the given filters.
func (s *StorefrontService) FilterCatalog(search, category string, maxPrice float64) []domain.Product {
	return s.catalog.Filter(search, category, maxPrice)
}

// Categories returns the distinct catalog categories for the filter dropdown.
func (s *StorefrontService) Categories() []string {
	return s.catalog.Categories()
}

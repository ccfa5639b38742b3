package event

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/Deko-Hussein/Hami-mini-market-week-3/internal/domain"
	pkgkafka "github.com/Deko-Hussein/Hami-mini-market-week-3/pkg/kafka"
)

// Kafka topic constants for storefront domain events.
const (
	TopicCartUpdated    = "minimarket.cart.updated"
	TopicOrderConfirmed = "minimarket.order.confirmed"
)

// Aggregate type constant.
const AggregateTypeCart = "cart"

// Source identifier for events originating from the storefront service.
const SourceStorefront = "storefront"

// LineItemData is the item payload within cart events.
type LineItemData struct {
	ProductID int64   `json:"product_id"`
	Name      string  `json:"name"`
	Price     float64 `json:"price"`
	Quantity  int     `json:"quantity"`
}

// CartUpdatedData is the payload for a cart.updated event.
type CartUpdatedData struct {
	SessionID string         `json:"session_id"`
	Items     []LineItemData `json:"items"`
	ItemCount int            `json:"item_count"`
	Subtotal  float64        `json:"subtotal"`
	Tax       float64        `json:"tax"`
	Discount  float64        `json:"discount"`
	Total     float64        `json:"total"`
}

// OrderConfirmedData is the payload for an order.confirmed event. It captures
// the cart contents at the moment of checkout, before the cart is cleared.
type OrderConfirmedData struct {
	SessionID string         `json:"session_id"`
	Items     []LineItemData `json:"items"`
	ItemCount int            `json:"item_count"`
	Subtotal  float64        `json:"subtotal"`
	Tax       float64        `json:"tax"`
	Discount  float64        `json:"discount"`
	Total     float64        `json:"total"`
}

// Producer publishes storefront domain events to Kafka.
type Producer struct {
	kafka  *pkgkafka.Producer
	logger *slog.Logger
}

// NewProducer creates a new event producer for the storefront.
func NewProducer(kafka *pkgkafka.Producer, logger *slog.Logger) *Producer {
	return &Producer{
		kafka:  kafka,
		logger: logger,
	}
}

func itemData(items []domain.LineItem) []LineItemData {
	data := make([]LineItemData, len(items))
	for i, item := range items {
		data[i] = LineItemData{
			ProductID: item.ID,
			Name:      item.Name,
			Price:     item.Price,
			Quantity:  item.Quantity,
		}
	}
	return data
}

// PublishCartUpdated publishes a cart.updated event from a cart snapshot.
func (p *Producer) PublishCartUpdated(ctx context.Context, sessionID string, snap domain.Snapshot) error {
	data := CartUpdatedData{
		SessionID: sessionID,
		Items:     itemData(snap.Items),
		ItemCount: len(snap.Items),
		Subtotal:  snap.Subtotal,
		Tax:       snap.Tax,
		Discount:  snap.Discount,
		Total:     snap.Total,
	}

	event, err := pkgkafka.NewEvent(TopicCartUpdated, sessionID, AggregateTypeCart, SourceStorefront, data)
	if err != nil {
		return fmt.Errorf("create cart.updated event: %w", err)
	}

	if err := p.kafka.Publish(ctx, TopicCartUpdated, event); err != nil {
		return fmt.Errorf("publish cart.updated event: %w", err)
	}

	p.logger.DebugContext(ctx, "published cart.updated event",
		slog.String("session_id", sessionID),
		slog.Int("item_count", data.ItemCount),
	)

	return nil
}

// PublishOrderConfirmed publishes an order.confirmed event from the cart
// snapshot taken at checkout.
func (p *Producer) PublishOrderConfirmed(ctx context.Context, sessionID string, snap domain.Snapshot) error {
	data := OrderConfirmedData{
		SessionID: sessionID,
		Items:     itemData(snap.Items),
		ItemCount: len(snap.Items),
		Subtotal:  snap.Subtotal,
		Tax:       snap.Tax,
		Discount:  snap.Discount,
		Total:     snap.Total,
	}

	event, err := pkgkafka.NewEvent(TopicOrderConfirmed, sessionID, AggregateTypeCart, SourceStorefront, data)
	if err != nil {
		return fmt.Errorf("create order.confirmed event: %w", err)
	}

	if err := p.kafka.Publish(ctx, TopicOrderConfirmed, event); err != nil {
		return fmt.Errorf("publish order.confirmed event: %w", err)
	}

	p.logger.InfoContext(ctx, "published order.confirmed event",
		slog.String("session_id", sessionID),
		slog.Float64("total", snap.Total),
	)

	return nil
}

package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/Deko-Hussein/Hami-mini-market-week-3/internal/domain"
)

const keyPrefix = "cart:"

// ItemStore implements domain.ItemStore using Redis. Each store is bound to
// one shopper session and keeps the session's line items as a single
// JSON-encoded array under a fixed key.
type ItemStore struct {
	client    *redis.Client
	sessionID string
	ttl       time.Duration
	logger    *slog.Logger
}

// NewItemStore creates a Redis-backed item store for the given session.
func NewItemStore(client *redis.Client, sessionID string, ttl time.Duration, logger *slog.Logger) *ItemStore {
	return &ItemStore{
		client:    client,
		sessionID: sessionID,
		ttl:       ttl,
		logger:    logger,
	}
}

func (s *ItemStore) key() string {
	return keyPrefix + s.sessionID
}

// Save serializes the items to the session's key with the configured TTL,
// overwriting any prior value.
func (s *ItemStore) Save(ctx context.Context, items []domain.LineItem) error {
	if items == nil {
		items = []domain.LineItem{}
	}

	data, err := json.Marshal(items)
	if err != nil {
		return fmt.Errorf("marshal cart items: %w", err)
	}

	if err := s.client.Set(ctx, s.key(), data, s.ttl).Err(); err != nil {
		return fmt.Errorf("redis set cart: %w", err)
	}

	return nil
}

// Load reads the session's items. An absent key or a stored value that does
// not parse as a line-item array resolves to an empty slice with a nil error:
// corrupt data means "no cart", not a failure.
func (s *ItemStore) Load(ctx context.Context) ([]domain.LineItem, error) {
	data, err := s.client.Get(ctx, s.key()).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, nil
		}
		return nil, fmt.Errorf("redis get cart: %w", err)
	}

	var items []domain.LineItem
	if err := json.Unmarshal(data, &items); err != nil {
		s.logger.WarnContext(ctx, "discarding unparseable cart data",
			slog.String("key", s.key()),
			slog.String("error", err.Error()),
		)
		return nil, nil
	}

	return items, nil
}

// Clear removes the session's key entirely. Distinct from saving an empty
// array, though both leave the next Load empty.
func (s *ItemStore) Clear(ctx context.Context) error {
	if err := s.client.Del(ctx, s.key()).Err(); err != nil {
		return fmt.Errorf("redis del cart: %w", err)
	}
	return nil
}

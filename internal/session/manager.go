// Package session maintains one cart per shopper session. Sessions are
// created lazily on first access, hydrated from Redis, and evicted from
// memory after sitting idle; the persisted cart outlives eviction, so a
// returning shopper gets their items back.
package session

import (
	"context"
	"log/slog"
	"sync"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/Deko-Hussein/Hami-mini-market-week-3/internal/domain"
	redisstore "github.com/Deko-Hussein/Hami-mini-market-week-3/internal/storage/redis"
	"github.com/Deko-Hussein/Hami-mini-market-week-3/internal/view"
)

// CartPublisher publishes cart change events. Implemented by event.Producer.
type CartPublisher interface {
	PublishCartUpdated(ctx context.Context, sessionID string, snap domain.Snapshot) error
}

// Session is the per-shopper unit: a cart plus the views rendered from it.
type Session struct {
	ID     string
	Cart   *domain.Cart
	Header *view.HeaderView
	Order  *view.OrderView

	lastSeen time.Time
	subs     []*domain.Subscription
}

func (s *Session) release() {
	for _, sub := range s.subs {
		sub.Unsubscribe()
	}
	s.subs = nil
}

// Config holds session manager settings.
type Config struct {
	// CartTTL is the Redis expiry for persisted carts.
	CartTTL time.Duration
	// IdleTTL is how long a session may go unaccessed before its in-memory
	// state is evicted.
	IdleTTL time.Duration
	// SweepInterval is how often idle sessions are collected.
	SweepInterval time.Duration
}

// DefaultConfig returns sensible defaults for session management.
func DefaultConfig() Config {
	return Config{
		CartTTL:       7 * 24 * time.Hour,
		IdleTTL:       30 * time.Minute,
		SweepInterval: 5 * time.Minute,
	}
}

// Manager owns the live sessions.
type Manager struct {
	mu       sync.Mutex
	sessions map[string]*Session

	client    *goredis.Client
	cfg       Config
	publisher CartPublisher
	logger    *slog.Logger
}

// NewManager creates a session manager. The publisher may be nil, in which
// case cart changes are not published.
func NewManager(client *goredis.Client, cfg Config, publisher CartPublisher, logger *slog.Logger) *Manager {
	return &Manager{
		sessions:  make(map[string]*Session),
		client:    client,
		cfg:       cfg,
		publisher: publisher,
		logger:    logger,
	}
}

// Get returns the session for the given ID, creating and hydrating it on
// first access.
func (m *Manager) Get(ctx context.Context, sessionID string) *Session {
	m.mu.Lock()
	defer m.mu.Unlock()

	if s, ok := m.sessions[sessionID]; ok {
		s.lastSeen = time.Now()
		return s
	}

	s := m.buildSession(ctx, sessionID)
	m.sessions[sessionID] = s
	return s
}

func (m *Manager) buildSession(ctx context.Context, sessionID string) *Session {
	logger := m.logger.With(slog.String("session_id", sessionID))

	store := redisstore.NewItemStore(m.client, sessionID, m.cfg.CartTTL, logger)
	cart := domain.NewCart(ctx, store, logger)

	s := &Session{
		ID:       sessionID,
		Cart:     cart,
		Header:   view.NewHeaderView(logger),
		Order:    view.NewOrderView(logger),
		lastSeen: time.Now(),
	}

	// Initial render from the hydrated state, then keep the views current.
	s.Header.Render(cart)
	s.Order.Render(cart)
	s.subs = append(s.subs,
		cart.Subscribe(s.Header.Render),
		cart.Subscribe(s.Order.Render),
	)

	if m.publisher != nil {
		s.subs = append(s.subs, cart.Subscribe(func(c *domain.Cart) {
			// Listeners carry no request context; the publish must not be
			// tied to the lifetime of whichever request triggered it.
			if err := m.publisher.PublishCartUpdated(context.Background(), sessionID, c.Snapshot()); err != nil {
				logger.Warn("failed to publish cart update",
					slog.String("error", err.Error()),
				)
			}
		}))
	}

	m.logger.DebugContext(ctx, "session created", slog.String("session_id", sessionID))
	return s
}

// Len returns the number of live in-memory sessions.
func (m *Manager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}

// Sweep evicts sessions idle longer than IdleTTL and returns how many were
// removed. Persisted carts are untouched.
func (m *Manager) Sweep() int {
	cutoff := time.Now().Add(-m.cfg.IdleTTL)

	m.mu.Lock()
	defer m.mu.Unlock()

	var evicted int
	for id, s := range m.sessions {
		if s.lastSeen.Before(cutoff) {
			s.release()
			delete(m.sessions, id)
			evicted++
		}
	}

	if evicted > 0 {
		m.logger.Debug("evicted idle sessions", slog.Int("count", evicted))
	}
	return evicted
}

// Run sweeps idle sessions on an interval until the context is canceled.
func (m *Manager) Run(ctx context.Context) {
	ticker := time.NewTicker(m.cfg.SweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.Sweep()
		}
	}
}

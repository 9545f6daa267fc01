// Package storefront keeps the live per-profile state of the shop: the cart,
// the favorites and the checkout session, cached with an idle TTL.
package storefront

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"cafe.GO/core/cache"
	"cafe.GO/core/notify"
	"cafe.GO/core/storage"
	"cafe.GO/service/cart"
	"cafe.GO/service/checkout"
	"cafe.GO/service/favorites"
)

const cachePrefix = "storefront"

// Session is one profile's live state.
type Session struct {
	Profile   string
	Cart      *cart.Cart
	Favorites *favorites.Favorites
	Checkout  *checkout.Sequencer
}

// Close detaches the session from update notifications. It is called when
// the cache evicts the entry.
func (s *Session) Close() error {
	s.Cart.Close()
	s.Favorites.Close()
	return nil
}

// Hub creates and caches Sessions.
type Hub struct {
	cache    *cache.Cache
	bridge   *storage.Bridge
	notifier notify.Notifier
	deps     checkout.Deps
	cfg      checkout.Config
	ttl      time.Duration
	logger   *zap.Logger

	mu sync.Mutex
}

type Option func(*Hub)

// WithCache overrides the shared cache instance.
func WithCache(c *cache.Cache) Option {
	return func(h *Hub) { h.cache = c }
}

// WithTTL sets how long an idle session stays cached.
func WithTTL(ttl time.Duration) Option {
	return func(h *Hub) { h.ttl = ttl }
}

func NewHub(bridge *storage.Bridge, notifier notify.Notifier, deps checkout.Deps, cfg checkout.Config, logger *zap.Logger, opts ...Option) *Hub {
	if logger == nil {
		logger = zap.NewNop()
	}
	if deps.Logger == nil {
		deps.Logger = logger
	}
	h := &Hub{
		cache:    cache.GetInstance(),
		bridge:   bridge,
		notifier: notifier,
		deps:     deps,
		cfg:      cfg,
		ttl:      30 * time.Minute,
		logger:   logger,
	}
	for _, o := range opts {
		o(h)
	}
	return h
}

func (h *Hub) Notifier() notify.Notifier { return h.notifier }

// Session returns the live session for profile, rehydrating it from storage
// on first use, and extends its TTL.
func (h *Hub) Session(ctx context.Context, profile string) (*Session, error) {
	if v, ok := h.cache.GetN(cachePrefix, profile); ok {
		h.cache.Touch(key(profile), h.ttl)
		return v.(*Session), nil
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	if v, ok := h.cache.GetN(cachePrefix, profile); ok {
		return v.(*Session), nil
	}

	c, err := cart.New(ctx, h.bridge, h.notifier, profile, h.logger)
	if err != nil {
		return nil, err
	}
	f, err := favorites.New(ctx, h.bridge, h.notifier, profile, h.logger)
	if err != nil {
		c.Close()
		return nil, err
	}
	s := &Session{
		Profile:   profile,
		Cart:      c,
		Favorites: f,
		Checkout:  checkout.NewSequencer(profile, c, h.deps, h.cfg),
	}
	h.cache.SetN([]interface{}{cachePrefix, profile}, s, h.ttl, []string{cachePrefix})
	h.logger.Debug("storefront session opened", zap.String("profile", profile))
	return s, nil
}

// Evict drops the cached session for profile.
func (h *Hub) Evict(profile string) {
	if v, ok := h.cache.GetN(cachePrefix, profile); ok {
		_ = v.(*Session).Close()
	}
	h.cache.DeleteN(cachePrefix, profile)
}

// Watch streams change signals for one of the profile's topics.
func (h *Hub) Watch(profile, topic string) (<-chan struct{}, func()) {
	return notify.Watch(h.notifier, notify.Topic{Name: topic, Profile: profile}, 1)
}

func key(profile string) string {
	return cachePrefix + "|" + profile
}

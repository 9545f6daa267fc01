package storefront

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"cafe.GO/core/cache"
	"cafe.GO/core/notify"
	"cafe.GO/core/storage"
	"cafe.GO/model/catalog"
	"cafe.GO/service/checkout"
)

func newHub(c *cache.Cache) (*Hub, *notify.Router) {
	router := notify.NewRouter()
	bridge := storage.NewBridge(storage.NewMemory(), nil)
	return NewHub(bridge, router, checkout.Deps{}, checkout.Config{}, nil, WithCache(c), WithTTL(time.Minute)), router
}

func TestSession_ReusedPerProfile(t *testing.T) {
	h, _ := newHub(cache.NewCache())
	ctx := context.Background()

	a, err := h.Session(ctx, "p1")
	if err != nil {
		t.Fatalf("Session: %v", err)
	}
	b, _ := h.Session(ctx, "p1")
	if a != b {
		t.Error("same profile should reuse the session")
	}
	other, _ := h.Session(ctx, "p2")
	if other == a {
		t.Error("profiles must not share sessions")
	}
}

func TestSession_StateSurvivesEviction(t *testing.T) {
	h, router := newHub(cache.NewCache())
	ctx := context.Background()

	s, _ := h.Session(ctx, "p1")
	p := catalog.Product{ID: "muffin", Name: "Muffin", Price: decimal.NewFromInt(3)}
	if err := s.Cart.AddToCart(ctx, p, 1); err != nil {
		t.Fatalf("AddToCart: %v", err)
	}
	if _, err := s.Favorites.Toggle(ctx, p); err != nil {
		t.Fatalf("Toggle: %v", err)
	}

	h.Evict("p1")
	if n := router.Subscribers(notify.Topic{Name: notify.CartUpdated, Profile: "p1"}); n != 0 {
		t.Errorf("evicted session still subscribed: %d", n)
	}

	s2, _ := h.Session(ctx, "p1")
	if s2 == s {
		t.Fatal("expected a fresh session after Evict")
	}
	if s2.Cart.TotalItems() != 1 || !s2.Favorites.IsFavorite("muffin") {
		t.Error("state should rehydrate from storage")
	}
}

func TestWatch_SignalsOnCartChange(t *testing.T) {
	h, _ := newHub(cache.NewCache())
	ctx := context.Background()
	s, _ := h.Session(ctx, "p1")

	ch, stop := h.Watch("p1", notify.CartUpdated)
	defer stop()
	if err := s.Cart.AddToCart(ctx, catalog.Product{ID: "tea", Price: decimal.NewFromInt(2)}, 1); err != nil {
		t.Fatalf("AddToCart: %v", err)
	}
	select {
	case <-ch:
	case <-time.After(time.Second):
		t.Fatal("no cart change signal")
	}
}

func TestSession_ExpiryReleasesSubscriptions(t *testing.T) {
	router := notify.NewRouter()
	bridge := storage.NewBridge(storage.NewMemory(), nil)
	h := NewHub(bridge, router, checkout.Deps{}, checkout.Config{}, nil, WithCache(cache.NewCache()), WithTTL(20*time.Millisecond))
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		if _, err := h.Session(ctx, "p1"); err != nil {
			t.Fatalf("Session: %v", err)
		}
		time.Sleep(30 * time.Millisecond)
	}
	if _, err := h.Session(ctx, "p1"); err != nil {
		t.Fatalf("Session: %v", err)
	}
	for _, name := range []string{notify.CartUpdated, notify.FavoritesUpdated} {
		if n := router.Subscribers(notify.Topic{Name: name, Profile: "p1"}); n != 1 {
			t.Errorf("%s subscribers = %d, want 1", name, n)
		}
	}
}

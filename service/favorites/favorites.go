// Package favorites keeps the profile's saved products.
package favorites

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"cafe.GO/core/notify"
	"cafe.GO/core/storage"
	"cafe.GO/model/catalog"
)

const reloadTimeout = 5 * time.Second

// Favorites is a set of products with unique ids, kept in insertion order.
type Favorites struct {
	mu       sync.RWMutex
	bridge   *storage.Bridge
	notifier notify.Notifier
	profile  string
	logger   *zap.Logger
	items    []catalog.Product

	unsubscribe func()
}

// New rehydrates the set for profile and subscribes to favoritesUpdated.
func New(ctx context.Context, bridge *storage.Bridge, notifier notify.Notifier, profile string, logger *zap.Logger) (*Favorites, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	f := &Favorites{
		bridge:   bridge,
		notifier: notifier,
		profile:  profile,
		logger:   logger.With(zap.String("profile", profile)),
	}
	if err := f.Reload(ctx); err != nil {
		return nil, err
	}
	f.unsubscribe = notifier.Subscribe(f.topic(), func() {
		ctx, cancel := context.WithTimeout(context.Background(), reloadTimeout)
		defer cancel()
		if err := f.Reload(ctx); err != nil {
			f.logger.Warn("favorites reload failed", zap.Error(err))
		}
	})
	return f, nil
}

func (f *Favorites) topic() notify.Topic {
	return notify.Topic{Name: notify.FavoritesUpdated, Profile: f.profile}
}

// Reload replaces in-memory state with the persisted list. It holds the lock
// across the load so a reload never lands on top of a newer commit.
func (f *Favorites) Reload(ctx context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	var items []catalog.Product
	if err := f.bridge.Load(ctx, f.profile, storage.KeyFavorites, &items); err != nil {
		return err
	}
	seen := make(map[string]bool, len(items))
	out := items[:0]
	for _, p := range items {
		if p.ID == "" || seen[p.ID] {
			continue
		}
		seen[p.ID] = true
		out = append(out, p)
	}
	f.items = out
	return nil
}

func (f *Favorites) Close() {
	if f.unsubscribe != nil {
		f.unsubscribe()
	}
}

// Add appends p unless already present. Re-adding writes nothing.
func (f *Favorites) Add(ctx context.Context, p catalog.Product) error {
	f.mu.Lock()
	if f.indexOf(p.ID) >= 0 {
		f.mu.Unlock()
		return nil
	}
	items := append(f.clone(), p.Normalize())
	return f.commit(ctx, items)
}

// Remove drops the product. Absent ids are a no-op that still persists.
func (f *Favorites) Remove(ctx context.Context, productID string) error {
	f.mu.Lock()
	return f.commit(ctx, f.without(productID))
}

// Toggle removes p if present, otherwise adds it. It returns the new
// membership. The check and the write happen under one lock.
func (f *Favorites) Toggle(ctx context.Context, p catalog.Product) (bool, error) {
	f.mu.Lock()
	if f.indexOf(p.ID) >= 0 {
		return false, f.commit(ctx, f.without(p.ID))
	}
	return true, f.commit(ctx, append(f.clone(), p.Normalize()))
}

// Clear empties the set and deletes the persisted entry.
func (f *Favorites) Clear(ctx context.Context) error {
	f.mu.Lock()
	f.items = nil
	err := f.bridge.Remove(ctx, f.profile, storage.KeyFavorites)
	f.mu.Unlock()
	if err != nil {
		return err
	}
	f.notifier.Notify(ctx, f.topic())
	return nil
}

// commit must be called with mu held; it releases it.
func (f *Favorites) commit(ctx context.Context, items []catalog.Product) error {
	f.items = items
	err := f.bridge.Save(ctx, f.profile, storage.KeyFavorites, items)
	f.mu.Unlock()
	if err != nil {
		return err
	}
	f.notifier.Notify(ctx, f.topic())
	return nil
}

func (f *Favorites) IsFavorite(productID string) bool {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.indexOf(productID) >= 0
}

// List returns the favorites in insertion order.
func (f *Favorites) List() []catalog.Product {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.clone()
}

func (f *Favorites) Len() int {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return len(f.items)
}

func (f *Favorites) indexOf(id string) int {
	for i, p := range f.items {
		if p.ID == id {
			return i
		}
	}
	return -1
}

func (f *Favorites) without(id string) []catalog.Product {
	items := make([]catalog.Product, 0, len(f.items))
	for _, p := range f.items {
		if p.ID != id {
			items = append(items, p)
		}
	}
	return items
}

func (f *Favorites) clone() []catalog.Product {
	out := make([]catalog.Product, len(f.items))
	copy(out, f.items)
	return out
}

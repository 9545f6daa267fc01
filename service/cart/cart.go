// Package cart is the storefront cart: an ordered list of line items kept in
// sync with the profile's persisted state and with other live instances.
package cart

import (
	"context"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"cafe.GO/core/notify"
	"cafe.GO/core/storage"
	"cafe.GO/model/catalog"
)

// LineItem is a product plus the quantity in the cart.
type LineItem struct {
	catalog.Product
	Quantity int `json:"quantity"`
}

// Subtotal is price times quantity.
func (l LineItem) Subtotal() decimal.Decimal {
	return l.Price.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// Summary is a point-in-time view of the cart.
type Summary struct {
	Items      []LineItem      `json:"items"`
	TotalItems int             `json:"total_items"`
	TotalPrice decimal.Decimal `json:"total_price"`
}

const reloadTimeout = 5 * time.Second

// Cart is safe for concurrent use. Mutations persist and broadcast
// cartUpdated; errors returned are persistence failures only.
type Cart struct {
	mu         sync.RWMutex
	bridge     *storage.Bridge
	notifier   notify.Notifier
	profile    string
	logger     *zap.Logger
	items      []LineItem
	totalItems int
	totalPrice decimal.Decimal

	unsubscribe func()
}

// New rehydrates the cart for profile and subscribes to cartUpdated.
func New(ctx context.Context, bridge *storage.Bridge, notifier notify.Notifier, profile string, logger *zap.Logger) (*Cart, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	c := &Cart{
		bridge:   bridge,
		notifier: notifier,
		profile:  profile,
		logger:   logger.With(zap.String("profile", profile)),
	}
	if err := c.Reload(ctx); err != nil {
		return nil, err
	}
	c.unsubscribe = notifier.Subscribe(c.topic(), c.onUpdated)
	return c, nil
}

func (c *Cart) topic() notify.Topic {
	return notify.Topic{Name: notify.CartUpdated, Profile: c.profile}
}

func (c *Cart) onUpdated() {
	ctx, cancel := context.WithTimeout(context.Background(), reloadTimeout)
	defer cancel()
	if err := c.Reload(ctx); err != nil {
		c.logger.Warn("cart reload failed", zap.Error(err))
	}
}

// Reload replaces in-memory state with the persisted list. The lock is held
// across the load so a reload never lands on top of a newer mutation.
func (c *Cart) Reload(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	var items []LineItem
	if err := c.bridge.Load(ctx, c.profile, storage.KeyCart, &items); err != nil {
		return err
	}
	c.items = sanitize(items)
	c.recompute()
	return nil
}

// Close stops listening for updates.
func (c *Cart) Close() {
	if c.unsubscribe != nil {
		c.unsubscribe()
	}
}

func (c *Cart) Profile() string { return c.profile }

// AddToCart increases the quantity of an existing line or appends a new one.
// A non-positive quantity removes the product.
func (c *Cart) AddToCart(ctx context.Context, p catalog.Product, quantity int) error {
	if quantity <= 0 {
		return c.RemoveFromCart(ctx, p.ID)
	}
	return c.mutate(ctx, func(items []LineItem) []LineItem {
		for i := range items {
			if items[i].ID == p.ID {
				items[i].Quantity += quantity
				return items
			}
		}
		return append(items, LineItem{Product: p.Normalize(), Quantity: quantity})
	})
}

// UpdateQuantity sets the quantity of a line. Non-positive values remove it;
// unknown ids leave the list unchanged.
func (c *Cart) UpdateQuantity(ctx context.Context, productID string, quantity int) error {
	if quantity <= 0 {
		return c.RemoveFromCart(ctx, productID)
	}
	return c.mutate(ctx, func(items []LineItem) []LineItem {
		for i := range items {
			if items[i].ID == productID {
				items[i].Quantity = quantity
			}
		}
		return items
	})
}

func (c *Cart) RemoveFromCart(ctx context.Context, productID string) error {
	return c.mutate(ctx, func(items []LineItem) []LineItem {
		out := items[:0]
		for _, it := range items {
			if it.ID != productID {
				out = append(out, it)
			}
		}
		return out
	})
}

// ClearCart empties the cart and deletes the persisted entry.
func (c *Cart) ClearCart(ctx context.Context) error {
	c.mu.Lock()
	c.items = nil
	c.recompute()
	err := c.bridge.Remove(ctx, c.profile, storage.KeyCart)
	c.mu.Unlock()
	if err != nil {
		return err
	}
	c.notifier.Notify(ctx, c.topic())
	return nil
}

func (c *Cart) mutate(ctx context.Context, fn func([]LineItem) []LineItem) error {
	c.mu.Lock()
	c.items = fn(c.cloneItems())
	c.recompute()
	err := c.bridge.Save(ctx, c.profile, storage.KeyCart, c.items)
	c.mu.Unlock()
	if err != nil {
		return err
	}
	c.notifier.Notify(ctx, c.topic())
	return nil
}

// recompute must be called with mu held.
func (c *Cart) recompute() {
	count := 0
	total := decimal.Zero
	for _, it := range c.items {
		count += it.Quantity
		total = total.Add(it.Subtotal())
	}
	c.totalItems = count
	c.totalPrice = total
}

func (c *Cart) cloneItems() []LineItem {
	out := make([]LineItem, len(c.items))
	copy(out, c.items)
	return out
}

// Items returns the lines in insertion order.
func (c *Cart) Items() []LineItem {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.cloneItems()
}

func (c *Cart) TotalItems() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.totalItems
}

func (c *Cart) TotalPrice() decimal.Decimal {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.totalPrice
}

func (c *Cart) IsEmpty() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.items) == 0
}

func (c *Cart) Snapshot() Summary {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return Summary{Items: c.cloneItems(), TotalItems: c.totalItems, TotalPrice: c.totalPrice}
}

// sanitize drops lines without an id or with a non-positive quantity and
// merges duplicate ids, keeping first-seen order.
func sanitize(items []LineItem) []LineItem {
	out := make([]LineItem, 0, len(items))
	index := make(map[string]int, len(items))
	for _, it := range items {
		if it.ID == "" || it.Quantity <= 0 {
			continue
		}
		if i, ok := index[it.ID]; ok {
			out[i].Quantity += it.Quantity
			continue
		}
		index[it.ID] = len(out)
		out = append(out, it)
	}
	return out
}

package cart

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"cafe.GO/core/notify"
	"cafe.GO/core/storage"
	"cafe.GO/model/catalog"
)

func product(id string, price float64) catalog.Product {
	return catalog.Product{ID: id, Name: "Item " + id, Price: decimal.NewFromFloat(price), Category: "Coffee"}
}

func newCart(t *testing.T, backend storage.Backend, router notify.Notifier) *Cart {
	t.Helper()
	c, err := New(context.Background(), storage.NewBridge(backend, zap.NewNop()), router, "profile-1", zap.NewNop())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	t.Cleanup(c.Close)
	return c
}

func TestAddToCart_IncrementsExistingLine(t *testing.T) {
	ctx := context.Background()
	c := newCart(t, storage.NewMemory(), notify.NewRouter())
	p := product("latte", 4.5)

	if err := c.AddToCart(ctx, p, 1); err != nil {
		t.Fatalf("AddToCart: %v", err)
	}
	if err := c.AddToCart(ctx, p, 1); err != nil {
		t.Fatalf("AddToCart: %v", err)
	}
	items := c.Items()
	if len(items) != 1 {
		t.Fatalf("Items = %d lines, want 1", len(items))
	}
	if items[0].Quantity != 2 {
		t.Errorf("Quantity = %d, want 2", items[0].Quantity)
	}
	if c.TotalItems() != 2 {
		t.Errorf("TotalItems = %d, want 2", c.TotalItems())
	}
	if !c.TotalPrice().Equal(decimal.NewFromInt(9)) {
		t.Errorf("TotalPrice = %s, want 9", c.TotalPrice())
	}
}

func TestAddToCart_AppendsInOrderAndNormalizes(t *testing.T) {
	ctx := context.Background()
	c := newCart(t, storage.NewMemory(), notify.NewRouter())
	_ = c.AddToCart(ctx, product("a", 1), 1)
	_ = c.AddToCart(ctx, product("b", 2), 3)

	items := c.Items()
	if len(items) != 2 || items[0].ID != "a" || items[1].ID != "b" {
		t.Fatalf("Items order = %+v", items)
	}
	if items[1].Image() != catalog.PlaceholderImage || items[1].Currency != "USD" {
		t.Errorf("line not normalized: %+v", items[1])
	}
	if !c.TotalPrice().Equal(decimal.NewFromInt(7)) {
		t.Errorf("TotalPrice = %s, want 7", c.TotalPrice())
	}
}

func TestAddToCart_NonPositiveQuantityRemoves(t *testing.T) {
	ctx := context.Background()
	c := newCart(t, storage.NewMemory(), notify.NewRouter())
	p := product("a", 1)
	_ = c.AddToCart(ctx, p, 2)
	if err := c.AddToCart(ctx, p, 0); err != nil {
		t.Fatalf("AddToCart(0): %v", err)
	}
	if !c.IsEmpty() {
		t.Errorf("cart not empty after AddToCart with 0: %+v", c.Items())
	}
}

func TestUpdateQuantity(t *testing.T) {
	ctx := context.Background()
	c := newCart(t, storage.NewMemory(), notify.NewRouter())
	_ = c.AddToCart(ctx, product("a", 2.5), 1)
	_ = c.AddToCart(ctx, product("b", 1), 1)

	if err := c.UpdateQuantity(ctx, "a", 4); err != nil {
		t.Fatalf("UpdateQuantity: %v", err)
	}
	if c.TotalItems() != 5 || !c.TotalPrice().Equal(decimal.NewFromInt(11)) {
		t.Errorf("totals = %d / %s, want 5 / 11", c.TotalItems(), c.TotalPrice())
	}

	if err := c.UpdateQuantity(ctx, "a", 0); err != nil {
		t.Fatalf("UpdateQuantity(0): %v", err)
	}
	items := c.Items()
	if len(items) != 1 || items[0].ID != "b" {
		t.Errorf("Items after zero quantity = %+v", items)
	}

	if err := c.UpdateQuantity(ctx, "missing", 3); err != nil {
		t.Fatalf("UpdateQuantity unknown: %v", err)
	}
	if c.TotalItems() != 1 {
		t.Errorf("unknown id changed the cart")
	}
}

func TestRemoveFromCart_AbsentIsNoop(t *testing.T) {
	ctx := context.Background()
	c := newCart(t, storage.NewMemory(), notify.NewRouter())
	_ = c.AddToCart(ctx, product("a", 1), 1)
	if err := c.RemoveFromCart(ctx, "zzz"); err != nil {
		t.Fatalf("RemoveFromCart: %v", err)
	}
	if c.TotalItems() != 1 {
		t.Errorf("TotalItems = %d, want 1", c.TotalItems())
	}
}

func TestClearCart_DeletesPersistedEntry(t *testing.T) {
	ctx := context.Background()
	mem := storage.NewMemory()
	c := newCart(t, mem, notify.NewRouter())
	_ = c.AddToCart(ctx, product("a", 1), 2)

	if err := c.ClearCart(ctx); err != nil {
		t.Fatalf("ClearCart: %v", err)
	}
	if !c.IsEmpty() || c.TotalItems() != 0 || !c.TotalPrice().IsZero() {
		t.Errorf("cart not reset: %+v", c.Snapshot())
	}
	if _, err := mem.Get(ctx, "profile-1:cartItems"); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("persisted entry still present, err = %v", err)
	}
}

func TestMutationsPersist(t *testing.T) {
	ctx := context.Background()
	mem := storage.NewMemory()
	c := newCart(t, mem, notify.NewRouter())
	_ = c.AddToCart(ctx, product("a", 3), 2)

	fresh := newCart(t, mem, notify.NewRouter())
	if fresh.TotalItems() != 2 || !fresh.TotalPrice().Equal(decimal.NewFromInt(6)) {
		t.Errorf("rehydrated cart = %+v", fresh.Snapshot())
	}
}

func TestInstancesConverge(t *testing.T) {
	ctx := context.Background()
	mem := storage.NewMemory()
	router := notify.NewRouter()
	tabA := newCart(t, mem, router)
	tabB := newCart(t, mem, router)

	_ = tabA.AddToCart(ctx, product("a", 2), 1)
	if tabB.TotalItems() != 1 {
		t.Fatalf("second instance did not reload: %+v", tabB.Snapshot())
	}
	_ = tabB.UpdateQuantity(ctx, "a", 5)
	if tabA.TotalItems() != 5 {
		t.Errorf("first instance did not reload: %+v", tabA.Snapshot())
	}
	_ = tabA.ClearCart(ctx)
	if !tabB.IsEmpty() {
		t.Error("clear did not propagate")
	}
}

func TestNotifiesOnEveryMutation(t *testing.T) {
	ctx := context.Background()
	router := notify.NewRouter()
	c := newCart(t, storage.NewMemory(), router)
	count := 0
	router.Subscribe(notify.Topic{Name: notify.CartUpdated, Profile: "profile-1"}, func() { count++ })

	_ = c.AddToCart(ctx, product("a", 1), 1)
	_ = c.UpdateQuantity(ctx, "a", 3)
	_ = c.RemoveFromCart(ctx, "a")
	_ = c.ClearCart(ctx)
	if count != 4 {
		t.Errorf("notifications = %d, want 4", count)
	}
}

func TestCorruptStateStartsEmpty(t *testing.T) {
	ctx := context.Background()
	mem := storage.NewMemory()
	_ = mem.Set(ctx, "profile-1:cartItems", []byte("{not json"))
	c := newCart(t, mem, notify.NewRouter())
	if !c.IsEmpty() {
		t.Errorf("cart = %+v, want empty", c.Items())
	}
	if _, err := mem.Get(ctx, "profile-1:cartItems"); !errors.Is(err, storage.ErrNotFound) {
		t.Error("corrupt entry not cleared")
	}
}

func TestLegacyStateMigrated(t *testing.T) {
	ctx := context.Background()
	mem := storage.NewMemory()
	legacy := `[{"id":"a","name":"Latte","price":4.5,"image":"/img/latte.jpg","category":"Coffee","quantity":2},` +
		`{"id":"a","name":"Latte","price":4.5,"quantity":1},{"id":"b","name":"Cake","price":3,"quantity":0}]`
	_ = mem.Set(ctx, "profile-1:cartItems", []byte(legacy))

	c := newCart(t, mem, notify.NewRouter())
	items := c.Items()
	if len(items) != 1 {
		t.Fatalf("Items = %+v, want one merged line", items)
	}
	if items[0].Quantity != 3 || items[0].Image() != "/img/latte.jpg" {
		t.Errorf("migrated line = %+v", items[0])
	}
	if !c.TotalPrice().Equal(decimal.NewFromFloat(13.5)) {
		t.Errorf("TotalPrice = %s, want 13.5", c.TotalPrice())
	}
	raw, _ := mem.Get(ctx, "profile-1:cartItems")
	if len(raw) == 0 || raw[0] != '{' {
		t.Errorf("legacy document not rewritten: %s", raw)
	}
}

type brokenBackend struct{ *storage.Memory }

func (b brokenBackend) Set(context.Context, string, []byte) error {
	return errors.New("quota exceeded")
}

func TestSaveFailureReturnsError(t *testing.T) {
	c := newCart(t, brokenBackend{storage.NewMemory()}, notify.NewRouter())
	if err := c.AddToCart(context.Background(), product("a", 1), 1); err == nil {
		t.Error("AddToCart with failing storage: want error")
	}
}

func TestTotalsMatchLinesAfterEveryMutation(t *testing.T) {
	ctx := context.Background()
	mem := storage.NewMemory()
	router := notify.NewRouter()
	c := newCart(t, mem, router)
	mirror := newCart(t, mem, router)

	prices := map[string]float64{"latte": 4.5, "bagel": 3, "scone": 2.25}
	want := map[string]int{}
	steps := []struct {
		name string
		run  func() error
		next func()
	}{
		{"add latte x2", func() error { return c.AddToCart(ctx, product("latte", 4.5), 2) }, func() { want["latte"] += 2 }},
		{"add bagel", func() error { return c.AddToCart(ctx, product("bagel", 3), 1) }, func() { want["bagel"]++ }},
		{"add latte again", func() error { return c.AddToCart(ctx, product("latte", 4.5), 1) }, func() { want["latte"]++ }},
		{"add scone x4", func() error { return c.AddToCart(ctx, product("scone", 2.25), 4) }, func() { want["scone"] += 4 }},
		{"set bagel to 5", func() error { return c.UpdateQuantity(ctx, "bagel", 5) }, func() { want["bagel"] = 5 }},
		{"set unknown", func() error { return c.UpdateQuantity(ctx, "muffin", 3) }, func() {}},
		{"remove latte", func() error { return c.RemoveFromCart(ctx, "latte") }, func() { delete(want, "latte") }},
		{"set scone to 0", func() error { return c.UpdateQuantity(ctx, "scone", 0) }, func() { delete(want, "scone") }},
		{"add latte x-1", func() error { return c.AddToCart(ctx, product("latte", 4.5), -1) }, func() {}},
		{"add scone", func() error { return c.AddToCart(ctx, product("scone", 2.25), 1) }, func() { want["scone"]++ }},
		{"clear", func() error { return c.ClearCart(ctx) }, func() { want = map[string]int{} }},
		{"add bagel after clear", func() error { return c.AddToCart(ctx, product("bagel", 3), 2) }, func() { want["bagel"] += 2 }},
	}

	for _, step := range steps {
		if err := step.run(); err != nil {
			t.Fatalf("%s: %v", step.name, err)
		}
		step.next()

		wantCount, wantTotal := 0, decimal.Zero
		for id, qty := range want {
			wantCount += qty
			wantTotal = wantTotal.Add(decimal.NewFromFloat(prices[id]).Mul(decimal.NewFromInt(int64(qty))))
		}
		for label, cart := range map[string]*Cart{"cart": c, "mirror": mirror} {
			snap := cart.Snapshot()
			lineCount, lineTotal := 0, decimal.Zero
			got := map[string]int{}
			for _, it := range snap.Items {
				lineCount += it.Quantity
				lineTotal = lineTotal.Add(it.Price.Mul(decimal.NewFromInt(int64(it.Quantity))))
				got[it.ID] = it.Quantity
			}
			if snap.TotalItems != lineCount || !snap.TotalPrice.Equal(lineTotal) {
				t.Errorf("%s after %q: totals %d/%s disagree with lines %d/%s", label, step.name, snap.TotalItems, snap.TotalPrice, lineCount, lineTotal)
			}
			if snap.TotalItems != wantCount || !snap.TotalPrice.Equal(wantTotal) {
				t.Errorf("%s after %q: totals %d/%s, want %d/%s", label, step.name, snap.TotalItems, snap.TotalPrice, wantCount, wantTotal)
			}
			if len(got) != len(want) {
				t.Errorf("%s after %q: lines %v, want %v", label, step.name, got, want)
			}
			for id, qty := range want {
				if got[id] != qty {
					t.Errorf("%s after %q: %s qty = %d, want %d", label, step.name, id, got[id], qty)
				}
			}
			if cart.IsEmpty() != (len(want) == 0) {
				t.Errorf("%s after %q: IsEmpty = %v", label, step.name, cart.IsEmpty())
			}
		}
	}
}

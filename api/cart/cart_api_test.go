package cart_test

import (
	"bufio"
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"cafe.GO/api/apitest"
	"cafe.GO/core/profile"
	"cafe.GO/service/cart"
)

func summary(t *testing.T, rec *httptest.ResponseRecorder) cart.Summary {
	t.Helper()
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d body=%s", rec.Code, rec.Body.String())
	}
	var s cart.Summary
	apitest.Decode(t, rec, &s)
	return s
}

func TestCart_AddUpdateRemove(t *testing.T) {
	s := apitest.New(t)
	s.Seed(t, "latte", "Latte", "Coffee", "4.50")
	s.Seed(t, "bagel", "Bagel", "Breakfast", "3.00")
	c := s.NewClient()

	got := summary(t, c.Do(t, http.MethodPost, "/cart/items", map[string]interface{}{"product_id": "latte", "quantity": 2}))
	if got.TotalItems != 2 || !got.TotalPrice.Equal(decimal.RequireFromString("9")) {
		t.Fatalf("after add: %+v", got)
	}
	got = summary(t, c.Do(t, http.MethodPost, "/cart/items", map[string]interface{}{"product_id": "bagel"}))
	if got.TotalItems != 3 || len(got.Items) != 2 {
		t.Fatalf("default quantity: %+v", got)
	}

	got = summary(t, c.Do(t, http.MethodPut, "/cart/items/latte", map[string]int{"quantity": 5}))
	if got.TotalItems != 6 {
		t.Errorf("after update total items = %d, want 6", got.TotalItems)
	}
	got = summary(t, c.Do(t, http.MethodPut, "/cart/items/latte", map[string]int{"quantity": 0}))
	if len(got.Items) != 1 || got.Items[0].ID != "bagel" {
		t.Errorf("zero quantity should remove the line: %+v", got.Items)
	}

	got = summary(t, c.Do(t, http.MethodDelete, "/cart/items/bagel", nil))
	if len(got.Items) != 0 || !got.TotalPrice.IsZero() {
		t.Errorf("after remove: %+v", got)
	}
}

func TestCart_Clear(t *testing.T) {
	s := apitest.New(t)
	s.Seed(t, "latte", "Latte", "Coffee", "4.50")
	c := s.NewClient()
	summary(t, c.Do(t, http.MethodPost, "/cart/items", map[string]interface{}{"product_id": "latte"}))

	got := summary(t, c.Do(t, http.MethodDelete, "/cart", nil))
	if len(got.Items) != 0 {
		t.Errorf("clear left %d items", len(got.Items))
	}
}

func TestCart_ProfilesIsolated(t *testing.T) {
	s := apitest.New(t)
	s.Seed(t, "latte", "Latte", "Coffee", "4.50")
	a, b := s.NewClient(), s.NewClient()
	summary(t, a.Do(t, http.MethodPost, "/cart/items", map[string]interface{}{"product_id": "latte"}))

	if got := summary(t, b.Do(t, http.MethodGet, "/cart", nil)); len(got.Items) != 0 {
		t.Errorf("other profile sees %d items", len(got.Items))
	}
	if got := summary(t, a.Do(t, http.MethodGet, "/cart", nil)); len(got.Items) != 1 {
		t.Errorf("own profile sees %d items, want 1", len(got.Items))
	}
}

func TestCart_AddValidation(t *testing.T) {
	s := apitest.New(t)
	c := s.NewClient()
	if rec := c.Do(t, http.MethodPost, "/cart/items", map[string]string{}); rec.Code != http.StatusBadRequest {
		t.Errorf("missing product_id status = %d, want 400", rec.Code)
	}
	if rec := c.Do(t, http.MethodPost, "/cart/items", map[string]string{"product_id": "ghost"}); rec.Code != http.StatusNotFound {
		t.Errorf("unknown product status = %d, want 404", rec.Code)
	}
}

func TestCart_EventsSendsSnapshot(t *testing.T) {
	s := apitest.New(t)
	s.Seed(t, "latte", "Latte", "Coffee", "4.50")
	c := s.NewClient()
	summary(t, c.Do(t, http.MethodPost, "/cart/items", map[string]interface{}{"product_id": "latte"}))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	req := httptest.NewRequest(http.MethodGet, "/cart/events", nil).WithContext(ctx)
	rec := c.Send(req)

	if ct := rec.Header().Get("Content-Type"); ct != "text/event-stream" {
		t.Errorf("content type = %q", ct)
	}
	body := rec.Body.String()
	if !strings.HasPrefix(body, "event: cartUpdated\ndata: ") || !strings.Contains(body, `"latte"`) {
		t.Errorf("body = %q", body)
	}
}

func TestCart_EventsFollowSessionAfterEviction(t *testing.T) {
	s := apitest.New(t)
	s.Seed(t, "latte", "Latte", "Coffee", "4.50")
	s.Seed(t, "bagel", "Bagel", "Breakfast", "3.00")
	c := s.NewClient()
	summary(t, c.Do(t, http.MethodPost, "/cart/items", map[string]interface{}{"product_id": "latte"}))

	srv := httptest.NewServer(s.Echo)
	t.Cleanup(srv.Close)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, srv.URL+"/cart/events", nil)
	if err != nil {
		t.Fatal(err)
	}
	req.Header.Set(profile.HeaderName, c.Profile)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("open stream: %v", err)
	}
	defer resp.Body.Close()
	lines := bufio.NewScanner(resp.Body)

	nextData := func() string {
		t.Helper()
		for lines.Scan() {
			if line := lines.Text(); strings.HasPrefix(line, "data: ") {
				return line
			}
		}
		t.Fatalf("stream ended: %v", lines.Err())
		return ""
	}
	if first := nextData(); !strings.Contains(first, `"latte"`) {
		t.Fatalf("first event = %q", first)
	}

	s.Deps.Hub.Evict(c.Profile)
	summary(t, c.Do(t, http.MethodPost, "/cart/items", map[string]interface{}{"product_id": "bagel"}))

	if next := nextData(); !strings.Contains(next, `"bagel"`) || !strings.Contains(next, `"latte"`) {
		t.Errorf("event after eviction = %q", next)
	}
}

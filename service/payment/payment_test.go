package payment

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/shopspring/decimal"

	"cafe.GO/core/functions"
)

func validRequest() Request {
	return Request{
		Items:         []Item{{ID: "latte", Name: "Latte", Price: decimal.RequireFromString("4.50"), Quantity: 2, Currency: "usd"}},
		CustomerEmail: "ada@example.com",
		SuccessURL:    "https://cafe.test/checkout?success=true",
		CancelURL:     "https://cafe.test/checkout?canceled=true",
	}
}

func TestItemMarshal_PriceIsNumber(t *testing.T) {
	b, err := json.Marshal(Item{ID: "a", Name: "A", Price: decimal.RequireFromString("4.50"), Quantity: 1})
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	var m map[string]interface{}
	_ = json.Unmarshal(b, &m)
	if m["price"] != 4.5 {
		t.Errorf("price = %#v in %s, want number 4.5", m["price"], b)
	}
}

func TestRequestValidate(t *testing.T) {
	r := validRequest()
	r.Items = nil
	if err := r.Validate(); !errors.Is(err, ErrNoItems) {
		t.Errorf("no items err = %v", err)
	}
	r = validRequest()
	r.CancelURL = ""
	if err := r.Validate(); !errors.Is(err, ErrMissingURLs) {
		t.Errorf("missing url err = %v", err)
	}
}

func TestCreateSession(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/create-checkout-session" {
			t.Errorf("path = %s", r.URL.Path)
		}
		var body struct {
			Items         []map[string]interface{} `json:"items"`
			CustomerEmail string                   `json:"customerEmail"`
			SuccessURL    string                   `json:"successUrl"`
		}
		_ = json.NewDecoder(r.Body).Decode(&body)
		if len(body.Items) != 1 || body.CustomerEmail != "ada@example.com" || body.SuccessURL == "" {
			t.Errorf("request body = %+v", body)
		}
		w.Write([]byte(`{"id":"cs_test_123","url":"https://pay.test/cs_test_123"}`))
	}))
	defer srv.Close()

	c := NewClient(functions.NewClient(srv.URL, "", nil, nil))
	s, err := c.CreateSession(context.Background(), validRequest())
	if err != nil {
		t.Fatalf("CreateSession: %v", err)
	}
	if s.ID != "cs_test_123" || s.URL != "https://pay.test/cs_test_123" {
		t.Errorf("session = %+v", s)
	}
}

func TestCreateSession_AlternateFieldNames(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"sessionId":"cs_2","redirectUrl":"https://pay.test/2"}`))
	}))
	defer srv.Close()

	s, err := NewClient(functions.NewClient(srv.URL, "", nil, nil)).CreateSession(context.Background(), validRequest())
	if err != nil || s.ID != "cs_2" || s.URL != "https://pay.test/2" {
		t.Errorf("CreateSession = %+v, %v", s, err)
	}
}

func TestCreateSession_ProviderError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"success":false,"error":"Invalid API key","code":"api_key_invalid"}`))
	}))
	defer srv.Close()

	_, err := NewClient(functions.NewClient(srv.URL, "", nil, nil)).CreateSession(context.Background(), validRequest())
	var re *functions.RemoteError
	if !errors.As(err, &re) || re.Code != "api_key_invalid" {
		t.Errorf("err = %v", err)
	}
}

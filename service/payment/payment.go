// Package payment creates hosted checkout sessions for card payments.
package payment

import (
	"context"
	"encoding/json"
	"errors"
	"strings"

	"github.com/shopspring/decimal"

	"cafe.GO/core/functions"
)

// FunctionName is the hosted function that creates checkout sessions.
const FunctionName = "create-checkout-session"

var (
	ErrNoItems     = errors.New("no items provided")
	ErrMissingURLs = errors.New("success and cancel URLs are required")
)

// Item is one cart line sent to the payment provider.
type Item struct {
	ID       string          `json:"id"`
	Name     string          `json:"name"`
	Price    decimal.Decimal `json:"-"`
	Quantity int             `json:"quantity"`
	Image    string          `json:"image,omitempty"`
	Currency string          `json:"currency,omitempty"`
}

// MarshalJSON writes price as a JSON number.
func (i Item) MarshalJSON() ([]byte, error) {
	type plain Item
	return json.Marshal(struct {
		plain
		Price json.Number `json:"price"`
	}{plain: plain(i), Price: json.Number(i.Price.String())})
}

type Request struct {
	Items         []Item `json:"items"`
	CustomerEmail string `json:"customerEmail,omitempty"`
	SuccessURL    string `json:"successUrl"`
	CancelURL     string `json:"cancelUrl"`
}

// Validate mirrors the checks the hosted function performs.
func (r Request) Validate() error {
	if len(r.Items) == 0 {
		return ErrNoItems
	}
	if strings.TrimSpace(r.SuccessURL) == "" || strings.TrimSpace(r.CancelURL) == "" {
		return ErrMissingURLs
	}
	return nil
}

// Session is a created hosted payment page.
type Session struct {
	ID  string `json:"id"`
	URL string `json:"url"`
}

type Client struct {
	fn *functions.Client
}

func NewClient(fn *functions.Client) *Client {
	return &Client{fn: fn}
}

// CreateSession requests a hosted payment page. Provider failures come back
// as *functions.RemoteError.
func (c *Client) CreateSession(ctx context.Context, req Request) (*Session, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	var resp struct {
		ID          string `json:"id"`
		SessionID   string `json:"sessionId"`
		URL         string `json:"url"`
		RedirectURL string `json:"redirectUrl"`
	}
	if err := c.fn.Invoke(ctx, FunctionName, req, &resp); err != nil {
		return nil, err
	}
	s := &Session{ID: resp.ID, URL: resp.URL}
	if s.ID == "" {
		s.ID = resp.SessionID
	}
	if s.URL == "" {
		s.URL = resp.RedirectURL
	}
	if s.URL == "" {
		return nil, &functions.RemoteError{Message: "payment session has no redirect URL"}
	}
	return s, nil
}

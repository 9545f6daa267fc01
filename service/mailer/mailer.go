// Package mailer sends order confirmation emails through the hosted
// send-order-confirmation function.
package mailer

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/shopspring/decimal"

	"cafe.GO/core/functions"
)

const FunctionName = "send-order-confirmation"

var ErrNoRecipient = errors.New("recipient email is required")

// Customer holds the delivery details collected at checkout.
type Customer struct {
	FullName     string `json:"fullName"`
	Address      string `json:"address,omitempty"`
	City         string `json:"city,omitempty"`
	ZipCode      string `json:"zipCode,omitempty"`
	Phone        string `json:"phone"`
	Notes        string `json:"notes,omitempty"`
	District     string `json:"district,omitempty"`
	DeliveryTime string `json:"deliveryTime,omitempty"`
}

type Item struct {
	ID       string          `json:"id"`
	Name     string          `json:"name"`
	Price    decimal.Decimal `json:"-"`
	Quantity int             `json:"quantity"`
}

func (i Item) MarshalJSON() ([]byte, error) {
	type plain Item
	return json.Marshal(struct {
		plain
		Price json.Number `json:"price"`
	}{plain: plain(i), Price: json.Number(i.Price.String())})
}

// Confirmation is what the customer is emailed after placing an order.
type Confirmation struct {
	RecipientEmail string
	Customer       Customer
	Items          []Item
	TotalPrice     decimal.Decimal
}

// payload is the flat body the function expects.
type payload struct {
	Email string `json:"email"`
	Customer
	Items      []Item      `json:"items"`
	TotalPrice json.Number `json:"totalPrice"`
}

// Result is the function's success response.
type Result struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data,omitempty"`
}

type Client struct {
	fn *functions.Client
}

func NewClient(fn *functions.Client) *Client {
	return &Client{fn: fn}
}

// SendOrderConfirmation emails the order summary. Failures come back as
// *functions.RemoteError or transport errors.
func (c *Client) SendOrderConfirmation(ctx context.Context, conf Confirmation) (*Result, error) {
	if conf.RecipientEmail == "" {
		return nil, ErrNoRecipient
	}
	body := payload{
		Email:      conf.RecipientEmail,
		Customer:   conf.Customer,
		Items:      conf.Items,
		TotalPrice: json.Number(conf.TotalPrice.StringFixed(2)),
	}
	var res Result
	if err := c.fn.Invoke(ctx, FunctionName, body, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

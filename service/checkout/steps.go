package checkout

import (
	"errors"

	"github.com/shopspring/decimal"

	"cafe.GO/service/cart"
)

// Step is a checkout screen.
type Step string

const (
	StepSelectMethod        Step = "SELECT_METHOD"
	StepDeliveryPreferences Step = "DELIVERY_PREFERENCES"
	StepShippingInfo        Step = "SHIPPING_INFO"
	StepPaymentProcessing   Step = "PAYMENT_PROCESSING"
	StepConfirmation        Step = "CONFIRMATION"
)

// Method is how the customer pays.
type Method string

const (
	MethodOnDelivery Method = "ON_DELIVERY"
	MethodCard       Method = "CARD"
)

func (m Method) Valid() bool {
	return m == MethodOnDelivery || m == MethodCard
}

var (
	ErrSignInRequired = errors.New("sign in required to continue checkout")
	ErrEmptyCart      = errors.New("cart is empty")
	ErrInvalidStep    = errors.New("action not allowed at this checkout step")
	ErrUnknownMethod  = errors.New("unknown payment method")
	ErrNothingPending = errors.New("no checkout step is waiting for sign in")
	ErrPaymentFailed  = errors.New("could not start card payment")
)

// Delivery time slots.
var DeliveryTimes = []string{"Morning", "Afternoon", "Evening", "Any"}

// Districts offered by the delivery preferences form.
var Districts = []string{
	"Kampala Central", "Kawempe", "Makindye", "Nakawa", "Rubaga",
	"Entebbe", "Wakiso", "Mukono", "Other",
}

// DeliveryPreferences is collected for pay-on-delivery orders.
type DeliveryPreferences struct {
	Phone        string `json:"phone" validate:"required,mindigits=10"`
	District     string `json:"district" validate:"required,min=2"`
	Email        string `json:"email,omitempty" validate:"omitempty,email"`
	City         string `json:"city,omitempty"`
	DeliveryTime string `json:"deliveryTime" validate:"omitempty,oneof=Morning Afternoon Evening Any"`
}

// ShippingInfo is the final address form.
type ShippingInfo struct {
	FullName string `json:"fullName" validate:"required,min=3"`
	Email    string `json:"email" validate:"required,email"`
	Address  string `json:"address" validate:"required,min=5"`
	City     string `json:"city" validate:"required,min=2"`
	ZipCode  string `json:"zipCode" validate:"required,min=4"`
	Phone    string `json:"phone" validate:"required,mindigits=10"`
	Notes    string `json:"notes,omitempty"`
}

// Notice levels.
const (
	NoticeInfo    = "info"
	NoticeSuccess = "success"
	NoticeWarning = "warning"
	NoticeError   = "error"
)

// Notice is a transient message for the customer.
type Notice struct {
	Level   string `json:"level"`
	Message string `json:"message"`
}

// OrderSummary prices the cart. Delivery is free.
type OrderSummary struct {
	Items    []cart.LineItem `json:"items"`
	Subtotal decimal.Decimal `json:"subtotal"`
	Shipping decimal.Decimal `json:"shipping"`
	Total    decimal.Decimal `json:"total"`
}

// State is a snapshot of a checkout session.
type State struct {
	Step                Step                 `json:"step"`
	Method              Method               `json:"method,omitempty"`
	PendingMethod       Method               `json:"pending_method,omitempty"`
	DeliveryPreferences *DeliveryPreferences `json:"delivery_preferences,omitempty"`
	Shipping            *ShippingInfo        `json:"shipping,omitempty"`
	RedirectURL         string               `json:"redirect_url,omitempty"`
	PaymentSessionID    string               `json:"payment_session_id,omitempty"`
	OrderID             string               `json:"order_id,omitempty"`
	Summary             OrderSummary         `json:"summary"`
}

// Package checkout drives a customer from payment method selection to order
// confirmation, for both pay-on-delivery and hosted card payments.
package checkout

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"cafe.GO/core/validate"
	entity "cafe.GO/model/entity"
	"cafe.GO/service/auth"
	"cafe.GO/service/cart"
	"cafe.GO/service/mailer"
	"cafe.GO/service/payment"
)

// CartState is the part of the cart checkout reads and clears.
type CartState interface {
	Items() []cart.LineItem
	TotalPrice() decimal.Decimal
	IsEmpty() bool
	ClearCart(ctx context.Context) error
}

// SessionSource reports the signed-in customer for a request.
type SessionSource interface {
	Session(ctx context.Context) (*auth.Session, bool)
}

// ContextSessions reads the session attached by the auth middleware.
type ContextSessions struct{}

func (ContextSessions) Session(ctx context.Context) (*auth.Session, bool) {
	return auth.SessionFromContext(ctx)
}

type PaymentCreator interface {
	CreateSession(ctx context.Context, req payment.Request) (*payment.Session, error)
}

type Emailer interface {
	SendOrderConfirmation(ctx context.Context, conf mailer.Confirmation) (*mailer.Result, error)
}

// OrderRecorder stores placed orders. OrderRepository satisfies it.
type OrderRecorder interface {
	Create(ctx context.Context, o *entity.Order) error
	FindByPaymentSession(ctx context.Context, sessionID string) (*entity.Order, error)
	UpdateStatus(ctx context.Context, id, status string) error
}

// Config holds per-deployment checkout settings.
type Config struct {
	SuccessURL      string
	CancelURL       string
	SkipPreferences bool
	RemoteTimeout   time.Duration
}

// ReturnURLs builds the redirect-back URLs for the hosted payment page.
func ReturnURLs(publicURL string) (success, cancel string) {
	base := strings.TrimRight(publicURL, "/") + "/checkout"
	return base + "?success=true&session_id={CHECKOUT_SESSION_ID}", base + "?canceled=true"
}

// Deps are the collaborators of a Sequencer. Orders may be nil.
type Deps struct {
	Sessions SessionSource
	Payments PaymentCreator
	Emailer  Emailer
	Orders   OrderRecorder
	Logger   *zap.Logger
}

// Sequencer is one profile's checkout session. It is safe for concurrent use.
type Sequencer struct {
	mu      sync.Mutex
	profile string
	cart    CartState
	deps    Deps
	cfg     Config

	step             Step
	method           Method
	pending          Method
	prefs            *DeliveryPreferences
	shipping         *ShippingInfo
	redirectURL      string
	paymentSessionID string
	orderID          string
	notices          []Notice

	background sync.WaitGroup
}

func NewSequencer(profile string, c CartState, deps Deps, cfg Config) *Sequencer {
	if deps.Sessions == nil {
		deps.Sessions = ContextSessions{}
	}
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}
	if cfg.RemoteTimeout <= 0 {
		cfg.RemoteTimeout = 20 * time.Second
	}
	deps.Logger = deps.Logger.With(zap.String("profile", profile))
	return &Sequencer{
		profile: profile,
		cart:    c,
		deps:    deps,
		cfg:     cfg,
		step:    StepSelectMethod,
	}
}

// Guard rejects checkout with an empty cart unless the order is already
// confirmed.
func (s *Sequencer) Guard() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.guardLocked()
}

func (s *Sequencer) guardLocked() error {
	if s.step != StepConfirmation && s.cart.IsEmpty() {
		return ErrEmptyCart
	}
	return nil
}

// SelectMethod picks a payment method. Without a session the choice is kept
// pending and ErrSignInRequired is returned; Resume continues it. Card
// payments create a hosted payment session; on failure nothing changes.
func (s *Sequencer) SelectMethod(ctx context.Context, m Method) error {
	if !m.Valid() {
		return ErrUnknownMethod
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.selectLocked(ctx, m)
}

// Resume re-applies the method chosen before sign-in.
func (s *Sequencer) Resume(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.pending == "" {
		return ErrNothingPending
	}
	return s.selectLocked(ctx, s.pending)
}

func (s *Sequencer) selectLocked(ctx context.Context, m Method) error {
	if s.step != StepSelectMethod {
		return ErrInvalidStep
	}
	if err := s.guardLocked(); err != nil {
		return err
	}
	sess, ok := s.deps.Sessions.Session(ctx)
	if !ok {
		s.pending = m
		s.noticeLocked(NoticeInfo, "Please sign in to continue with checkout.")
		return ErrSignInRequired
	}

	switch m {
	case MethodOnDelivery:
		s.pending = ""
		s.method = m
		if s.cfg.SkipPreferences {
			s.step = StepShippingInfo
		} else {
			s.step = StepDeliveryPreferences
		}
		return nil
	default:
		return s.startCardPaymentLocked(ctx, sess)
	}
}

func (s *Sequencer) startCardPaymentLocked(ctx context.Context, sess *auth.Session) error {
	lines := s.cart.Items()
	req := payment.Request{
		Items:         make([]payment.Item, 0, len(lines)),
		CustomerEmail: sess.Email,
		SuccessURL:    s.cfg.SuccessURL,
		CancelURL:     s.cfg.CancelURL,
	}
	for _, l := range lines {
		req.Items = append(req.Items, payment.Item{
			ID:       l.ID,
			Name:     l.Name,
			Price:    l.Price,
			Quantity: l.Quantity,
			Image:    l.Image(),
			Currency: strings.ToLower(l.Currency),
		})
	}

	rctx, cancel := context.WithTimeout(ctx, s.cfg.RemoteTimeout)
	defer cancel()
	ps, err := s.deps.Payments.CreateSession(rctx, req)
	if err != nil {
		s.deps.Logger.Warn("payment session failed", zap.Error(err))
		s.noticeLocked(NoticeError, "Payment failed: "+err.Error())
		return fmt.Errorf("%w: %w", ErrPaymentFailed, err)
	}

	s.pending = ""
	s.method = MethodCard
	s.step = StepPaymentProcessing
	s.redirectURL = ps.URL
	s.paymentSessionID = ps.ID
	s.orderID = s.recordOrderLocked(ctx, sess, entity.OrderStatusAwaitingPayment, ps.ID, nil)
	return nil
}

// SubmitDeliveryPreferences stores the delivery form and moves on to the
// shipping form.
func (s *Sequencer) SubmitDeliveryPreferences(ctx context.Context, p DeliveryPreferences) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.step != StepDeliveryPreferences {
		return ErrInvalidStep
	}
	if _, ok := s.deps.Sessions.Session(ctx); !ok {
		s.noticeLocked(NoticeInfo, "Please sign in to continue with checkout.")
		return ErrSignInRequired
	}
	if err := s.guardLocked(); err != nil {
		return err
	}
	p.Phone = strings.TrimSpace(p.Phone)
	p.District = strings.TrimSpace(p.District)
	if p.DeliveryTime == "" {
		p.DeliveryTime = "Any"
	}
	if err := validate.Struct(p); err != nil {
		return err
	}
	s.prefs = &p
	s.step = StepShippingInfo
	return nil
}

// SubmitShipping places a pay-on-delivery order: it records the order, sends
// the confirmation email in the background, confirms and clears the cart.
func (s *Sequencer) SubmitShipping(ctx context.Context, info ShippingInfo) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.step != StepShippingInfo {
		return ErrInvalidStep
	}
	sess, ok := s.deps.Sessions.Session(ctx)
	if !ok {
		s.noticeLocked(NoticeInfo, "Please sign in to continue with checkout.")
		return ErrSignInRequired
	}
	if err := s.guardLocked(); err != nil {
		return err
	}
	info.Email = strings.TrimSpace(info.Email)
	if err := validate.Struct(info); err != nil {
		return err
	}
	s.shipping = &info

	lines := s.cart.Items()
	total := s.cart.TotalPrice()
	s.orderID = s.recordOrderLocked(ctx, sess, entity.OrderStatusPending, "", lines)
	s.sendConfirmation(s.confirmationLocked(sess, lines, total))

	s.step = StepConfirmation
	s.noticeLocked(NoticeSuccess, "Your order has been placed successfully!")
	if err := s.cart.ClearCart(ctx); err != nil {
		s.deps.Logger.Warn("clear cart after order failed", zap.Error(err))
	}
	return nil
}

func (s *Sequencer) confirmationLocked(sess *auth.Session, lines []cart.LineItem, total decimal.Decimal) mailer.Confirmation {
	info := s.shipping
	recipient := info.Email
	if recipient == "" {
		recipient = sess.Email
	}
	conf := mailer.Confirmation{
		RecipientEmail: recipient,
		Customer: mailer.Customer{
			FullName: info.FullName,
			Address:  info.Address,
			City:     info.City,
			ZipCode:  info.ZipCode,
			Phone:    info.Phone,
			Notes:    info.Notes,
		},
		TotalPrice: total,
	}
	if s.prefs != nil {
		conf.Customer.District = s.prefs.District
		conf.Customer.DeliveryTime = s.prefs.DeliveryTime
	}
	for _, l := range lines {
		conf.Items = append(conf.Items, mailer.Item{ID: l.ID, Name: l.Name, Price: l.Price, Quantity: l.Quantity})
	}
	return conf
}

// sendConfirmation emails in the background. A failure only adds a warning
// notice; the order stands.
func (s *Sequencer) sendConfirmation(conf mailer.Confirmation) {
	if s.deps.Emailer == nil {
		return
	}
	s.background.Add(1)
	go func() {
		defer s.background.Done()
		ctx, cancel := context.WithTimeout(context.Background(), s.cfg.RemoteTimeout)
		defer cancel()
		if _, err := s.deps.Emailer.SendOrderConfirmation(ctx, conf); err != nil {
			s.deps.Logger.Warn("order confirmation email failed", zap.Error(err))
			s.mu.Lock()
			s.noticeLocked(NoticeWarning, "Your order was placed, but we could not send the confirmation email.")
			s.mu.Unlock()
			return
		}
		s.deps.Logger.Info("order confirmation email sent", zap.String("recipient", conf.RecipientEmail))
	}()
}

// HandleReturn processes a visit to the checkout page. success=true confirms
// the order and clears the cart; canceled=true returns to method selection.
// A plain visit after confirmation starts a new checkout.
func (s *Sequencer) HandleReturn(ctx context.Context, q url.Values) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sessionID := s.returnSessionLocked(q.Get("session_id"))
	switch {
	case q.Get("success") == "true":
		s.step = StepConfirmation
		s.method = MethodCard
		s.redirectURL = ""
		s.updateOrderLocked(ctx, sessionID, entity.OrderStatusPaid)
		s.noticeLocked(NoticeSuccess, "Payment successful! Your order has been placed.")
		if err := s.cart.ClearCart(ctx); err != nil {
			s.deps.Logger.Warn("clear cart after payment failed", zap.Error(err))
		}
	case q.Get("canceled") == "true":
		s.step = StepSelectMethod
		s.method = ""
		s.redirectURL = ""
		s.updateOrderLocked(ctx, sessionID, entity.OrderStatusCanceled)
		s.paymentSessionID = ""
		s.orderID = ""
		s.noticeLocked(NoticeInfo, "Payment was canceled. You can choose another payment method.")
	case s.step == StepConfirmation:
		s.resetLocked()
	}
	return nil
}

// returnSessionLocked picks the payment session a return refers to. The
// session this sequencer started wins over the query; the query is only used
// when none is known, and updateOrderLocked checks its owner.
func (s *Sequencer) returnSessionLocked(fromQuery string) string {
	if fromQuery == "" || strings.HasPrefix(fromQuery, "{") {
		return s.paymentSessionID
	}
	if s.paymentSessionID != "" && fromQuery != s.paymentSessionID {
		s.deps.Logger.Warn("ignoring foreign payment session on return",
			zap.String("session_id", fromQuery), zap.String("own_session_id", s.paymentSessionID))
		return s.paymentSessionID
	}
	return fromQuery
}

// Back returns to the previous form step.
func (s *Sequencer) Back() {
	s.mu.Lock()
	defer s.mu.Unlock()
	switch s.step {
	case StepDeliveryPreferences:
		s.step = StepSelectMethod
		s.method = ""
	case StepShippingInfo:
		if s.cfg.SkipPreferences || s.method != MethodOnDelivery {
			s.step = StepSelectMethod
			s.method = ""
		} else {
			s.step = StepDeliveryPreferences
		}
	}
}

// Reset starts a new checkout.
func (s *Sequencer) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.resetLocked()
}

func (s *Sequencer) resetLocked() {
	s.step = StepSelectMethod
	s.method = ""
	s.pending = ""
	s.prefs = nil
	s.shipping = nil
	s.redirectURL = ""
	s.paymentSessionID = ""
	s.orderID = ""
}

// State returns a snapshot including the priced cart.
func (s *Sequencer) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	subtotal := s.cart.TotalPrice()
	st := State{
		Step:             s.step,
		Method:           s.method,
		PendingMethod:    s.pending,
		RedirectURL:      s.redirectURL,
		PaymentSessionID: s.paymentSessionID,
		OrderID:          s.orderID,
		Summary: OrderSummary{
			Items:    s.cart.Items(),
			Subtotal: subtotal,
			Shipping: decimal.Zero,
			Total:    subtotal,
		},
	}
	if s.prefs != nil {
		p := *s.prefs
		st.DeliveryPreferences = &p
	}
	if s.shipping != nil {
		sh := *s.shipping
		st.Shipping = &sh
	}
	return st
}

func (s *Sequencer) Step() Step {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.step
}

// Notices returns and clears queued notices.
func (s *Sequencer) Notices() []Notice {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := s.notices
	s.notices = nil
	return out
}

// Wait blocks until background email sends finish.
func (s *Sequencer) Wait() {
	s.background.Wait()
}

func (s *Sequencer) noticeLocked(level, msg string) {
	s.notices = append(s.notices, Notice{Level: level, Message: msg})
}

func (s *Sequencer) recordOrderLocked(ctx context.Context, sess *auth.Session, status, paymentSessionID string, lines []cart.LineItem) string {
	if s.deps.Orders == nil {
		return ""
	}
	if lines == nil {
		lines = s.cart.Items()
	}
	o := &entity.Order{
		CustomerID:       sess.CustomerID,
		ProfileID:        s.profile,
		Email:            sess.Email,
		Status:           status,
		PaymentMethod:    string(s.method),
		PaymentSessionID: paymentSessionID,
		TotalAmount:      s.cart.TotalPrice(),
		Details:          s.detailsLocked(),
	}
	for _, l := range lines {
		if o.Currency == "" {
			o.Currency = l.Currency
		}
		o.Items = append(o.Items, entity.OrderItem{
			ProductID:    l.ID,
			Name:         l.Name,
			Quantity:     l.Quantity,
			PricePerUnit: l.Price,
		})
	}
	if err := s.deps.Orders.Create(ctx, o); err != nil {
		s.deps.Logger.Error("record order failed", zap.String("status", status), zap.Error(err))
		return ""
	}
	return o.ID
}

func (s *Sequencer) detailsLocked() map[string]interface{} {
	d := map[string]interface{}{}
	if s.prefs != nil {
		d["phone"] = s.prefs.Phone
		d["district"] = s.prefs.District
		d["deliveryTime"] = s.prefs.DeliveryTime
		if s.prefs.City != "" {
			d["city"] = s.prefs.City
		}
	}
	if s.shipping != nil {
		d["fullName"] = s.shipping.FullName
		d["address"] = s.shipping.Address
		d["city"] = s.shipping.City
		d["zipCode"] = s.shipping.ZipCode
		d["phone"] = s.shipping.Phone
		if s.shipping.Notes != "" {
			d["notes"] = s.shipping.Notes
		}
	}
	return d
}

func (s *Sequencer) updateOrderLocked(ctx context.Context, paymentSessionID, status string) {
	if s.deps.Orders == nil || paymentSessionID == "" {
		return
	}
	o, err := s.deps.Orders.FindByPaymentSession(ctx, paymentSessionID)
	if err != nil {
		s.deps.Logger.Warn("order for payment session not found", zap.String("session_id", paymentSessionID), zap.Error(err))
		return
	}
	if !s.ownsLocked(ctx, o) {
		s.deps.Logger.Warn("payment session belongs to another customer", zap.String("session_id", paymentSessionID))
		return
	}
	if o.Status == status {
		return
	}
	if err := s.deps.Orders.UpdateStatus(ctx, o.ID, status); err != nil && !errors.Is(err, context.Canceled) {
		s.deps.Logger.Warn("update order status failed", zap.String("order_id", o.ID), zap.Error(err))
	}
}

// ownsLocked reports whether o was placed from this profile or by the
// signed-in customer.
func (s *Sequencer) ownsLocked(ctx context.Context, o *entity.Order) bool {
	if o.ProfileID != "" && o.ProfileID == s.profile {
		return true
	}
	sess, ok := s.deps.Sessions.Session(ctx)
	return ok && o.CustomerID != 0 && o.CustomerID == sess.CustomerID
}

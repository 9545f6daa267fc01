package checkout

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"cafe.GO/api"
	"cafe.GO/core/validate"
	"cafe.GO/service/checkout"
	"cafe.GO/service/storefront"
)

func init() {
	api.RegisterRoute(RegisterCheckoutRoutes)
}

type methodRequest struct {
	Method checkout.Method `json:"method"`
}

// response is the checkout view returned by every endpoint.
func response(c echo.Context, status int, seq *checkout.Sequencer, err error) error {
	body := echo.Map{
		"state":          seq.State(),
		"notices":        seq.Notices(),
		"delivery_times": checkout.DeliveryTimes,
		"districts":      checkout.Districts,
	}
	if err != nil {
		body["error"] = err.Error()
		if errors.Is(err, checkout.ErrSignInRequired) {
			body["redirect"] = "/auth"
		}
		if errors.Is(err, checkout.ErrEmptyCart) {
			body["redirect"] = "/"
		}
	}
	return c.JSON(status, body)
}

// statusFor maps sequencer errors to HTTP statuses.
func statusFor(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, checkout.ErrSignInRequired):
		return http.StatusUnauthorized
	case errors.Is(err, checkout.ErrEmptyCart), errors.Is(err, checkout.ErrInvalidStep), errors.Is(err, checkout.ErrNothingPending):
		return http.StatusConflict
	case errors.Is(err, checkout.ErrUnknownMethod):
		return http.StatusBadRequest
	case errors.Is(err, checkout.ErrPaymentFailed):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// submitError reports form validation errors per field and sequencer errors
// with the checkout view.
func submitError(c echo.Context, seq *checkout.Sequencer, err error) error {
	var verrs validate.Errors
	if errors.As(err, &verrs) {
		return api.Error(c, http.StatusUnprocessableEntity, err)
	}
	return response(c, statusFor(err), seq, err)
}

func RegisterCheckoutRoutes(e *echo.Echo, d *api.Deps) {
	g := e.Group("/checkout")

	withSession := func(fn func(echo.Context, *storefront.Session) error) echo.HandlerFunc {
		return func(c echo.Context) error {
			s, err := d.Session(c)
			if err != nil {
				return api.Error(c, http.StatusInternalServerError, err)
			}
			return fn(c, s)
		}
	}

	// GET /checkout[?success=true&session_id=…|?canceled=true]
	g.GET("", withSession(func(c echo.Context, s *storefront.Session) error {
		seq := s.Checkout
		if err := seq.HandleReturn(c.Request().Context(), c.QueryParams()); err != nil {
			return response(c, statusFor(err), seq, err)
		}
		if err := seq.Guard(); err != nil {
			return response(c, statusFor(err), seq, err)
		}
		return response(c, http.StatusOK, seq, nil)
	}))

	g.POST("/method", withSession(func(c echo.Context, s *storefront.Session) error {
		var body methodRequest
		if err := c.Bind(&body); err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
		}
		err := s.Checkout.SelectMethod(c.Request().Context(), body.Method)
		return response(c, statusFor(err), s.Checkout, err)
	}))

	g.POST("/resume", withSession(func(c echo.Context, s *storefront.Session) error {
		err := s.Checkout.Resume(c.Request().Context())
		return response(c, statusFor(err), s.Checkout, err)
	}))

	g.POST("/delivery", withSession(func(c echo.Context, s *storefront.Session) error {
		var body checkout.DeliveryPreferences
		if err := c.Bind(&body); err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
		}
		if err := s.Checkout.SubmitDeliveryPreferences(c.Request().Context(), body); err != nil {
			return submitError(c, s.Checkout, err)
		}
		return response(c, http.StatusOK, s.Checkout, nil)
	}))

	g.POST("/shipping", withSession(func(c echo.Context, s *storefront.Session) error {
		var body checkout.ShippingInfo
		if err := c.Bind(&body); err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
		}
		if err := s.Checkout.SubmitShipping(c.Request().Context(), body); err != nil {
			return submitError(c, s.Checkout, err)
		}
		return response(c, http.StatusOK, s.Checkout, nil)
	}))

	g.POST("/back", withSession(func(c echo.Context, s *storefront.Session) error {
		s.Checkout.Back()
		return response(c, http.StatusOK, s.Checkout, nil)
	}))
}

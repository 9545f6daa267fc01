package cart

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"cafe.GO/api"
	"cafe.GO/core/notify"
	"cafe.GO/core/profile"
	productService "cafe.GO/service/product"
)

func init() {
	api.RegisterRoute(RegisterCartRoutes)
}

type addItemRequest struct {
	ProductID string `json:"product_id"`
	Quantity  *int   `json:"quantity"`
}

type quantityRequest struct {
	Quantity int `json:"quantity"`
}

func RegisterCartRoutes(e *echo.Echo, d *api.Deps) {
	g := e.Group("/cart")

	g.GET("", func(c echo.Context) error {
		s, err := d.Session(c)
		if err != nil {
			return api.Error(c, http.StatusInternalServerError, err)
		}
		return c.JSON(http.StatusOK, s.Cart.Snapshot())
	})

	// POST /cart/items {product_id, quantity}
	g.POST("/items", func(c echo.Context) error {
		var body addItemRequest
		if err := c.Bind(&body); err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
		}
		if body.ProductID == "" {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "product_id is required"})
		}
		qty := 1
		if body.Quantity != nil {
			qty = *body.Quantity
		}
		ctx := c.Request().Context()
		p, err := d.Catalog.Get(ctx, body.ProductID)
		if errors.Is(err, productService.ErrNotFound) {
			return api.Error(c, http.StatusNotFound, err)
		}
		if err != nil {
			return api.Error(c, http.StatusInternalServerError, err)
		}
		s, err := d.Session(c)
		if err != nil {
			return api.Error(c, http.StatusInternalServerError, err)
		}
		if err := s.Cart.AddToCart(ctx, *p, qty); err != nil {
			return api.Error(c, http.StatusInternalServerError, err)
		}
		return c.JSON(http.StatusOK, s.Cart.Snapshot())
	})

	// PUT /cart/items/:id {quantity} – zero or less removes the line
	g.PUT("/items/:id", func(c echo.Context) error {
		var body quantityRequest
		if err := c.Bind(&body); err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
		}
		s, err := d.Session(c)
		if err != nil {
			return api.Error(c, http.StatusInternalServerError, err)
		}
		if err := s.Cart.UpdateQuantity(c.Request().Context(), c.Param("id"), body.Quantity); err != nil {
			return api.Error(c, http.StatusInternalServerError, err)
		}
		return c.JSON(http.StatusOK, s.Cart.Snapshot())
	})

	g.DELETE("/items/:id", func(c echo.Context) error {
		s, err := d.Session(c)
		if err != nil {
			return api.Error(c, http.StatusInternalServerError, err)
		}
		if err := s.Cart.RemoveFromCart(c.Request().Context(), c.Param("id")); err != nil {
			return api.Error(c, http.StatusInternalServerError, err)
		}
		return c.JSON(http.StatusOK, s.Cart.Snapshot())
	})

	g.DELETE("", func(c echo.Context) error {
		s, err := d.Session(c)
		if err != nil {
			return api.Error(c, http.StatusInternalServerError, err)
		}
		if err := s.Cart.ClearCart(c.Request().Context()); err != nil {
			return api.Error(c, http.StatusInternalServerError, err)
		}
		return c.JSON(http.StatusOK, s.Cart.Snapshot())
	})

	// GET /cart/events – server-sent events with the cart after every change
	g.GET("/events", func(c echo.Context) error {
		if _, err := d.Session(c); err != nil {
			return api.Error(c, http.StatusInternalServerError, err)
		}
		updates, stop := d.Hub.Watch(profile.ID(c), notify.CartUpdated)
		defer stop()

		w := c.Response()
		w.Header().Set(echo.HeaderContentType, "text/event-stream")
		w.Header().Set(echo.HeaderCacheControl, "no-cache")
		w.Header().Set(echo.HeaderConnection, "keep-alive")
		w.WriteHeader(http.StatusOK)

		// The cached session can be evicted while the stream is open, so each
		// event resolves it again.
		send := func() error {
			s, err := d.Session(c)
			if err != nil {
				return err
			}
			data, err := json.Marshal(s.Cart.Snapshot())
			if err != nil {
				return err
			}
			if _, err := fmt.Fprintf(w, "event: %s\ndata: %s\n\n", notify.CartUpdated, data); err != nil {
				return err
			}
			w.Flush()
			return nil
		}
		if err := send(); err != nil {
			return nil
		}
		ctx := c.Request().Context()
		for {
			select {
			case <-ctx.Done():
				return nil
			case <-updates:
				if err := send(); err != nil {
					d.Logger.Debug("cart event stream closed", zap.Error(err))
					return nil
				}
			}
		}
	})
}

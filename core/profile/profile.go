// Package profile identifies the visitor's browser profile. Cart, favorites
// and checkout state are keyed by it.
package profile

import (
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

const (
	CookieName = "cafe_profile"
	HeaderName = "X-Profile-ID"
	contextKey = "profile_id"
	cookieAge  = 365 * 24 * time.Hour
)

// Middleware resolves the profile id from the X-Profile-ID header or the
// profile cookie. A missing or malformed id is replaced by a new one, which
// is set as a cookie and echoed in the response header.
func Middleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			id := c.Request().Header.Get(HeaderName)
			if !valid(id) {
				id = ""
				if ck, err := c.Cookie(CookieName); err == nil && valid(ck.Value) {
					id = ck.Value
				}
			}
			if id == "" {
				id = uuid.NewString()
				c.SetCookie(&http.Cookie{
					Name:     CookieName,
					Value:    id,
					Path:     "/",
					HttpOnly: true,
					SameSite: http.SameSiteLaxMode,
					Expires:  time.Now().Add(cookieAge),
				})
			}
			c.Set(contextKey, id)
			c.Response().Header().Set(HeaderName, id)
			return next(c)
		}
	}
}

func valid(id string) bool {
	if id == "" {
		return false
	}
	_, err := uuid.Parse(id)
	return err == nil
}

// ID returns the profile id resolved by Middleware.
func ID(c echo.Context) string {
	id, _ := c.Get(contextKey).(string)
	return id
}

package auth

import (
	"crypto/subtle"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"cafe.GO/config"
	authService "cafe.GO/service/auth"
)

// SessionCookie carries the customer session token for browser clients.
const SessionCookie = "cafe_session"

// ContextKeySession is the echo context key for the *authService.Session.
const ContextKeySession = "customer_session"

// Middleware returns the admin auth middleware based on AUTH_TYPE.
func Middleware() echo.MiddlewareFunc {
	skipper := buildSkipper()
	user, pass, key := config.AdminCredentials()
	switch config.AuthType() {
	case "key":
		return keyAuth(key, skipper)
	default:
		return basicAuth(user, pass, skipper)
	}
}

func buildSkipper() middleware.Skipper {
	skipPaths := config.GetAuthSkipperPaths()
	return func(c echo.Context) bool {
		path := c.Path()
		for _, skip := range skipPaths {
			if path == skip {
				return true
			}
		}
		return false
	}
}

func equal(a, b string) bool {
	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}

func basicAuth(user, pass string, skipper middleware.Skipper) echo.MiddlewareFunc {
	return middleware.BasicAuthWithConfig(middleware.BasicAuthConfig{
		Validator: func(username, password string, c echo.Context) (bool, error) {
			if user == "" {
				return false, nil
			}
			return equal(username, user) && equal(password, pass), nil
		},
		Skipper: skipper,
	})
}

func keyAuth(apiKey string, skipper middleware.Skipper) echo.MiddlewareFunc {
	return middleware.KeyAuthWithConfig(middleware.KeyAuthConfig{
		Validator: func(key string, c echo.Context) (bool, error) {
			return apiKey != "" && equal(key, apiKey), nil
		},
		Skipper: skipper,
	})
}

// Token extracts the customer session token from the Authorization bearer
// header or the session cookie.
func Token(c echo.Context) string {
	if h := c.Request().Header.Get(echo.HeaderAuthorization); strings.HasPrefix(h, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(h, "Bearer "))
	}
	if ck, err := c.Cookie(SessionCookie); err == nil {
		return ck.Value
	}
	return ""
}

// CustomerSession resolves the customer session, if any, and attaches it to
// the request context. Anonymous requests pass through.
func CustomerSession(svc *authService.Service) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			token := Token(c)
			if token == "" {
				return next(c)
			}
			s, err := svc.Current(c.Request().Context(), token)
			if err != nil {
				return next(c)
			}
			c.Set(ContextKeySession, s)
			c.SetRequest(c.Request().WithContext(authService.WithSession(c.Request().Context(), s)))
			return next(c)
		}
	}
}

// RequireCustomer rejects requests without a customer session.
func RequireCustomer(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		if _, ok := authService.SessionFromContext(c.Request().Context()); !ok {
			return c.JSON(http.StatusUnauthorized, echo.Map{"error": "sign in required"})
		}
		return next(c)
	}
}

package account

import (
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"cafe.GO/api"
	coreAuth "cafe.GO/core/auth"
	"cafe.GO/core/validate"
	"cafe.GO/service/auth"
)

func init() {
	api.RegisterRoute(RegisterAuthRoutes)
}

type signUpRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
	Name     string `json:"name"`
}

type signInRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

func setSessionCookie(c echo.Context, s *auth.Session) {
	c.SetCookie(&http.Cookie{
		Name:     coreAuth.SessionCookie,
		Value:    s.Token,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		Expires:  s.ExpiresAt,
	})
}

func clearSessionCookie(c echo.Context) {
	c.SetCookie(&http.Cookie{
		Name:     coreAuth.SessionCookie,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		MaxAge:   -1,
		Expires:  time.Unix(0, 0),
	})
}

func RegisterAuthRoutes(e *echo.Echo, d *api.Deps) {
	g := e.Group("/auth")

	g.POST("/signup", func(c echo.Context) error {
		var body signUpRequest
		if err := c.Bind(&body); err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
		}
		if err := validate.Struct(body); err != nil {
			return api.Error(c, http.StatusUnprocessableEntity, err)
		}
		s, err := d.Auth.SignUp(c.Request().Context(), body.Email, body.Password, body.Name)
		switch {
		case errors.Is(err, auth.ErrEmailTaken):
			return api.Error(c, http.StatusConflict, err)
		case errors.Is(err, auth.ErrWeakPassword):
			return api.Error(c, http.StatusUnprocessableEntity, err)
		case err != nil:
			return api.Error(c, http.StatusInternalServerError, err)
		}
		setSessionCookie(c, s)
		return c.JSON(http.StatusCreated, s)
	})

	g.POST("/signin", func(c echo.Context) error {
		var body signInRequest
		if err := c.Bind(&body); err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
		}
		if err := validate.Struct(body); err != nil {
			return api.Error(c, http.StatusUnprocessableEntity, err)
		}
		s, err := d.Auth.SignIn(c.Request().Context(), body.Email, body.Password)
		if errors.Is(err, auth.ErrInvalidCredentials) {
			return api.Error(c, http.StatusUnauthorized, err)
		}
		if err != nil {
			return api.Error(c, http.StatusInternalServerError, err)
		}
		setSessionCookie(c, s)
		return c.JSON(http.StatusOK, s)
	})

	g.POST("/signout", func(c echo.Context) error {
		if token := coreAuth.Token(c); token != "" {
			if err := d.Auth.SignOut(c.Request().Context(), token); err != nil {
				return api.Error(c, http.StatusInternalServerError, err)
			}
		}
		clearSessionCookie(c)
		return c.NoContent(http.StatusNoContent)
	})

	g.GET("/session", func(c echo.Context) error {
		s, ok := auth.SessionFromContext(c.Request().Context())
		if !ok {
			return c.JSON(http.StatusOK, echo.Map{"authenticated": false})
		}
		return c.JSON(http.StatusOK, echo.Map{"authenticated": true, "session": s})
	})
}

package api

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"

	"cafe.GO/config"
	"cafe.GO/core/validate"
)

func TestRegistry_Register_Apply(t *testing.T) {
	RegisterGET("/test/registry/check", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})
	RegisterPOST("/test/registry/echo", func(c echo.Context) error {
		return c.NoContent(http.StatusAccepted)
	})
	var seen *Deps
	RegisterModule(func(g *echo.Group, d *Deps) {
		seen = d
		g.GET("/app", func(c echo.Context) error {
			return c.String(http.StatusOK, d.Config.AppName)
		})
	})

	d := &Deps{Config: &config.Config{AppName: "cafe"}}
	e := echo.New()
	ApplyRoutes(e, d)
	ApplyModules(e.Group("/api"), d)

	if seen != d {
		t.Fatal("module did not receive deps")
	}
	cases := []struct {
		method, path string
		want         int
	}{
		{http.MethodGet, "/test/registry/check", http.StatusOK},
		{http.MethodPost, "/test/registry/echo", http.StatusAccepted},
		{http.MethodGet, "/api/app", http.StatusOK},
	}
	for _, tc := range cases {
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, httptest.NewRequest(tc.method, tc.path, nil))
		if rec.Code != tc.want {
			t.Fatalf("%s %s = %d, want %d", tc.method, tc.path, rec.Code, tc.want)
		}
	}

	defer func() {
		if recover() == nil {
			t.Fatal("expected panic registering after apply")
		}
	}()
	RegisterRoute(func(*echo.Echo, *Deps) {})
}

func TestError(t *testing.T) {
	e := echo.New()

	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), rec)
	if err := Error(c, http.StatusConflict, errors.New("taken")); err != nil {
		t.Fatal(err)
	}
	if rec.Code != http.StatusConflict || !strings.Contains(rec.Body.String(), "taken") {
		t.Fatalf("got %d %s", rec.Code, rec.Body.String())
	}

	rec = httptest.NewRecorder()
	c = e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), rec)
	if err := Error(c, http.StatusBadRequest, validate.Errors{"email": "is required"}); err != nil {
		t.Fatal(err)
	}
	if rec.Code != http.StatusUnprocessableEntity || !strings.Contains(rec.Body.String(), `"email"`) {
		t.Fatalf("got %d %s", rec.Code, rec.Body.String())
	}
}

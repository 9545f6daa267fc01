package favorites

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"cafe.GO/api"
	"cafe.GO/model/catalog"
	"cafe.GO/service/favorites"
	productService "cafe.GO/service/product"
	"cafe.GO/service/storefront"
)

func init() {
	api.RegisterRoute(RegisterFavoritesRoutes)
}

func list(c echo.Context, f *favorites.Favorites) error {
	items := f.List()
	return c.JSON(http.StatusOK, echo.Map{"items": items, "count": len(items)})
}

func RegisterFavoritesRoutes(e *echo.Echo, d *api.Deps) {
	g := e.Group("/favorites")

	// withSession resolves the profile's session for the wrapped handler.
	withSession := func(fn func(echo.Context, *storefront.Session) error) echo.HandlerFunc {
		return func(c echo.Context) error {
			s, err := d.Session(c)
			if err != nil {
				return api.Error(c, http.StatusInternalServerError, err)
			}
			return fn(c, s)
		}
	}

	// product looks the :id product up in the catalog.
	product := func(c echo.Context) (*catalog.Product, int, error) {
		p, err := d.Catalog.Get(c.Request().Context(), c.Param("id"))
		if errors.Is(err, productService.ErrNotFound) {
			return nil, http.StatusNotFound, err
		}
		if err != nil {
			return nil, http.StatusInternalServerError, err
		}
		return p, 0, nil
	}

	g.GET("", withSession(func(c echo.Context, s *storefront.Session) error {
		return list(c, s.Favorites)
	}))

	g.GET("/:id", withSession(func(c echo.Context, s *storefront.Session) error {
		return c.JSON(http.StatusOK, echo.Map{"id": c.Param("id"), "favorite": s.Favorites.IsFavorite(c.Param("id"))})
	}))

	g.POST("/:id/toggle", withSession(func(c echo.Context, s *storefront.Session) error {
		p, status, err := product(c)
		if err != nil {
			return api.Error(c, status, err)
		}
		added, err := s.Favorites.Toggle(c.Request().Context(), *p)
		if err != nil {
			return api.Error(c, http.StatusInternalServerError, err)
		}
		return c.JSON(http.StatusOK, echo.Map{"id": p.ID, "favorite": added, "count": s.Favorites.Len()})
	}))

	g.PUT("/:id", withSession(func(c echo.Context, s *storefront.Session) error {
		p, status, err := product(c)
		if err != nil {
			return api.Error(c, status, err)
		}
		if err := s.Favorites.Add(c.Request().Context(), *p); err != nil {
			return api.Error(c, http.StatusInternalServerError, err)
		}
		return list(c, s.Favorites)
	}))

	g.DELETE("/:id", withSession(func(c echo.Context, s *storefront.Session) error {
		if err := s.Favorites.Remove(c.Request().Context(), c.Param("id")); err != nil {
			return api.Error(c, http.StatusInternalServerError, err)
		}
		return list(c, s.Favorites)
	}))

	g.DELETE("", withSession(func(c echo.Context, s *storefront.Session) error {
		if err := s.Favorites.Clear(c.Request().Context()); err != nil {
			return api.Error(c, http.StatusInternalServerError, err)
		}
		return list(c, s.Favorites)
	}))
}

package catalog

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"cafe.GO/api"
	productRepo "cafe.GO/model/repository/product"
	productService "cafe.GO/service/product"
)

func init() {
	api.RegisterRoute(RegisterCatalogRoutes)
}

func RegisterCatalogRoutes(e *echo.Echo, d *api.Deps) {
	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, echo.Map{"status": "ok"})
	})

	g := e.Group("/products")

	// GET /products?category=&featured=&q=&page=&page_size=
	g.GET("", func(c echo.Context) error {
		start := time.Now()
		f := productRepo.Filter{
			Category: c.QueryParam("category"),
			Search:   c.QueryParam("q"),
		}
		if v := c.QueryParam("featured"); v != "" {
			b, err := strconv.ParseBool(v)
			if err != nil {
				return c.JSON(http.StatusBadRequest, echo.Map{"error": "featured must be true or false"})
			}
			f.Featured = &b
		}
		f.Page, _ = strconv.Atoi(c.QueryParam("page"))
		f.PageSize, _ = strconv.Atoi(c.QueryParam("page_size"))

		page, err := d.Catalog.List(c.Request().Context(), f)
		if err != nil {
			return api.Error(c, http.StatusInternalServerError, err)
		}
		api.Timed(c, start)
		return c.JSON(http.StatusOK, page)
	})

	// GET /products/search?q=
	g.GET("/search", func(c echo.Context) error {
		start := time.Now()
		q := c.QueryParam("q")
		if q == "" {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "q is required"})
		}
		limit, _ := strconv.Atoi(c.QueryParam("limit"))
		items, err := d.Catalog.Search(c.Request().Context(), q, limit)
		if err != nil {
			return api.Error(c, http.StatusInternalServerError, err)
		}
		api.Timed(c, start)
		return c.JSON(http.StatusOK, echo.Map{"query": q, "items": items, "count": len(items)})
	})

	// GET /products/:id – product plus related items
	g.GET("/:id", func(c echo.Context) error {
		start := time.Now()
		detail, err := d.Catalog.Detail(c.Request().Context(), c.Param("id"), c.QueryParam("category"))
		if errors.Is(err, productService.ErrNotFound) {
			return api.Error(c, http.StatusNotFound, err)
		}
		if err != nil {
			return api.Error(c, http.StatusInternalServerError, err)
		}
		api.Timed(c, start)
		return c.JSON(http.StatusOK, detail)
	})

	e.GET("/categories", func(c echo.Context) error {
		cats, err := d.Catalog.Categories(c.Request().Context())
		if err != nil {
			return api.Error(c, http.StatusInternalServerError, err)
		}
		return c.JSON(http.StatusOK, echo.Map{"categories": cats})
	})
}

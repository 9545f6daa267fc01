package admin

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"cafe.GO/api"
	"cafe.GO/core/validate"
	"cafe.GO/model/catalog"
	"cafe.GO/service/media"
)

func init() {
	api.RegisterModule(RegisterAdminRoutes)
}

const maxUploadBytes = 10 << 20

// productForm is the admin product entry form.
type productForm struct {
	Name        string          `json:"name" validate:"required,min=2"`
	Description string          `json:"description" validate:"required,min=10"`
	Price       decimal.Decimal `json:"price"`
	Currency    string          `json:"currency" validate:"omitempty,oneof=USD UGX EUR GBP CAD AUD"`
	Category    string          `json:"category" validate:"required,oneof=Breakfast Coffee Lunch Desserts"`
	Image       string          `json:"image" validate:"required,url"`
	Featured    bool            `json:"featured"`
}

func (f *productForm) validate(c echo.Context) error {
	f.Name = strings.TrimSpace(f.Name)
	f.Description = strings.TrimSpace(f.Description)
	f.Currency = strings.ToUpper(strings.TrimSpace(f.Currency))
	errs := validate.Errors{}
	if err := c.Validate(f); err != nil {
		var verrs validate.Errors
		if !errors.As(err, &verrs) {
			return err
		}
		errs = verrs
	}
	if !f.Price.IsPositive() {
		errs["price"] = "must be greater than 0"
	}
	if len(errs) > 0 {
		return errs
	}
	return nil
}

func RegisterAdminRoutes(apiGroup *echo.Group, d *api.Deps) {
	g := apiGroup.Group("/admin")

	// POST /api/admin/products – create a product (auth required via /api middleware)
	g.POST("/products", func(c echo.Context) error {
		start := time.Now()
		var form productForm
		if err := c.Bind(&form); err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
		}
		if err := form.validate(c); err != nil {
			return api.Error(c, http.StatusBadRequest, err)
		}
		created, err := d.Catalog.Create(c.Request().Context(), catalog.Product{
			Name:        form.Name,
			Description: form.Description,
			Price:       form.Price.Round(2),
			Currency:    form.Currency,
			Images:      []string{form.Image},
			Category:    form.Category,
			Featured:    form.Featured,
		})
		if err != nil {
			return api.Error(c, http.StatusInternalServerError, err)
		}
		duration := api.Timed(c, start)
		return c.JSON(http.StatusCreated, echo.Map{"product": created, "request_duration_ms": duration})
	})

	// POST /api/admin/uploads – multipart "file", stored as WebP
	g.POST("/uploads", func(c echo.Context) error {
		start := time.Now()
		fh, err := c.FormFile("file")
		if err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "file is required"})
		}
		if fh.Size > maxUploadBytes {
			return c.JSON(http.StatusRequestEntityTooLarge, echo.Map{"error": "file too large"})
		}
		src, err := fh.Open()
		if err != nil {
			return api.Error(c, http.StatusBadRequest, err)
		}
		defer src.Close()

		url, err := d.Uploader.Upload(c.Request().Context(), fh.Filename, src)
		if errors.Is(err, media.ErrNotImage) {
			return api.Error(c, http.StatusUnsupportedMediaType, err)
		}
		if err != nil {
			d.Logger.Error("upload failed", zap.String("filename", fh.Filename), zap.Error(err))
			return api.Error(c, http.StatusInternalServerError, err)
		}
		duration := api.Timed(c, start)
		return c.JSON(http.StatusCreated, echo.Map{"url": url, "request_duration_ms": duration})
	})
}

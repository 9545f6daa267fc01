package api

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"cafe.GO/config"
	"cafe.GO/core/cache"
	"cafe.GO/core/profile"
	"cafe.GO/core/validate"
	"cafe.GO/service/auth"
	"cafe.GO/service/chat"
	"cafe.GO/service/media"
	productService "cafe.GO/service/product"
	"cafe.GO/service/storefront"
)

// Deps are the shared services handed to route modules.
type Deps struct {
	DB       *gorm.DB
	Config   *config.Config
	Logger   *zap.Logger
	Cache    *cache.Cache
	Catalog  *productService.Catalog
	Hub      *storefront.Hub
	Auth     *auth.Service
	Chat     *chat.Assistant
	Uploader *media.Uploader
}

// Session returns the storefront session of the requesting profile.
func (d *Deps) Session(c echo.Context) (*storefront.Session, error) {
	return d.Hub.Session(c.Request().Context(), profile.ID(c))
}

// Timed sets the X-Request-Duration-ms header from start.
func Timed(c echo.Context, start time.Time) int64 {
	duration := time.Since(start).Milliseconds()
	c.Response().Header().Set("X-Request-Duration-ms", strconv.FormatInt(duration, 10))
	return duration
}

// Error writes an error body. Validation errors become 422 with field details.
func Error(c echo.Context, status int, err error) error {
	var verrs validate.Errors
	if errors.As(err, &verrs) {
		return c.JSON(http.StatusUnprocessableEntity, echo.Map{"error": "validation failed", "fields": verrs})
	}
	return c.JSON(status, echo.Map{"error": err.Error()})
}

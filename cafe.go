//go:build !cli
// +build !cli

package main

import (
	"context"
	"errors"
	"log"
	"math/rand"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/common-nighthawk/go-figure"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"

	"cafe.GO/api"
	_ "cafe.GO/api/account"
	_ "cafe.GO/api/admin"
	_ "cafe.GO/api/cart"
	_ "cafe.GO/api/catalog"
	_ "cafe.GO/api/chat"
	_ "cafe.GO/api/checkout"
	_ "cafe.GO/api/favorites"
	_ "cafe.GO/api/graphql"
	"cafe.GO/bootstrap"
	"cafe.GO/config"
	"cafe.GO/core/auth"
	"cafe.GO/core/profile"
	"cafe.GO/core/validate"
	"cafe.GO/cron"
	"cafe.GO/cron/jobs"
	_ "cafe.GO/custom"
)

func requestLogger(logger *zap.Logger) echo.MiddlewareFunc {
	return middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogMethod:   true,
		LogURI:      true,
		LogStatus:   true,
		LogLatency:  true,
		LogRemoteIP: true,
		LogError:    true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			fields := []zap.Field{
				zap.String("method", v.Method),
				zap.String("uri", v.URI),
				zap.Int("status", v.Status),
				zap.Duration("latency", v.Latency),
				zap.String("remote_ip", v.RemoteIP),
			}
			if v.Error != nil {
				logger.Error("request", append(fields, zap.Error(v.Error))...)
				return nil
			}
			logger.Info("request", fields...)
			return nil
		},
	})
}

func main() {
	config.LoadEnv()
	cfg := config.LoadAppConfig()
	logger, err := config.NewLogger(cfg)
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	d, cleanup, err := bootstrap.New(ctx, cfg, logger)
	if err != nil {
		logger.Fatal("startup failed", zap.Error(err))
	}
	defer cleanup()
	logger.Info("database connection successful")

	e := echo.New()
	e.HideBanner = true
	e.Debug = cfg.Debug
	e.Validator = validate.New()
	e.Use(requestLogger(logger))
	e.Use(middleware.Recover())
	e.Use(middleware.Gzip())
	e.Use(middleware.Decompress())
	e.Use(profile.Middleware())
	e.Use(auth.CustomerSession(d.Auth))

	e.Static(cfg.MediaUrl, cfg.MediaDir)
	api.ApplyRoutes(e, d)

	apiGroup := e.Group("/api")
	apiGroup.Use(auth.Middleware())
	apiGroup.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, echo.Map{"status": "ok"})
	})
	api.ApplyModules(apiGroup, d)

	jobs.Register(d)
	scheduler, err := cron.StartCron(logger)
	if err != nil {
		logger.Fatal("cron", zap.Error(err))
	}

	fonts := []string{"banner", "big", "block", "slant", "standard", "small", "doom", "larry3d", "puffy"}
	figure.NewFigure(cfg.AppName, fonts[rand.Intn(len(fonts))], true).Print()

	go func() {
		logger.Info("server running", zap.String("port", cfg.Port), zap.String("public_url", cfg.PublicURL))
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("server", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")
	<-scheduler.Stop().Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown", zap.Error(err))
	}
}

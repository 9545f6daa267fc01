// Standalone catalog GraphQL server: go run ./cmd/graphql
package main

import (
	"context"
	"fmt"
	"log"
	"math/rand"
	"os/signal"
	"syscall"
	"time"

	"github.com/common-nighthawk/go-figure"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"

	graphqlApi "cafe.GO/api/graphql"
	"cafe.GO/bootstrap"
	"cafe.GO/config"
	"cafe.GO/core/profile"
	"cafe.GO/graphqlserver"
)

func main() {
	config.LoadEnv()
	cfg := config.LoadAppConfig()
	logger, err := config.NewLogger(cfg)
	if err != nil {
		log.Fatal("logger:", err)
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	d, cleanup, err := bootstrap.New(ctx, cfg, logger)
	if err != nil {
		logger.Fatal("bootstrap", zap.Error(err))
	}
	defer cleanup()

	schema, err := graphqlserver.NewSchema(d.Catalog, d.Hub)
	if err != nil {
		logger.Fatal("graphql schema", zap.Error(err))
	}

	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.Recover())
	e.Use(profile.Middleware())
	graphqlApi.RegisterGraphQLRoutesWithSchema(e, schema)

	gqlFonts := []string{"banner", "big", "block", "slant", "standard", "small", "shadow", "speed", "thick", "doom", "larry3d", "puffy"}
	figure.NewFigure("Cafe GQL ->", gqlFonts[rand.Intn(len(gqlFonts))], true).Print()
	fmt.Println("Standalone GraphQL server")
	logger.Info("graphql listening",
		zap.String("graphql", "http://localhost:"+cfg.Port+"/graphql"),
		zap.String("playground", "http://localhost:"+cfg.Port+"/playground"))

	go func() {
		if err := e.Start(":" + cfg.Port); err != nil && ctx.Err() == nil {
			logger.Fatal("server", zap.Error(err))
		}
	}()
	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = e.Shutdown(shutdownCtx)
}

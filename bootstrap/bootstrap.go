// Package bootstrap wires the storefront services from configuration. The
// server, the CLI and the standalone GraphQL server share it.
package bootstrap

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"cafe.GO/api"
	"cafe.GO/config"
	"cafe.GO/core/cache"
	"cafe.GO/core/functions"
	"cafe.GO/core/notify"
	"cafe.GO/core/storage"
	entity "cafe.GO/model/entity"
	orderRepo "cafe.GO/model/repository/order"
	authService "cafe.GO/service/auth"
	"cafe.GO/service/chat"
	"cafe.GO/service/checkout"
	"cafe.GO/service/mailer"
	"cafe.GO/service/media"
	"cafe.GO/service/payment"
	productService "cafe.GO/service/product"
	"cafe.GO/service/storefront"
)

const (
	storagePrefix = "cafe:"
	chatTTL       = 2 * time.Hour
)

// New opens the database and builds every service. The returned cleanup
// closes what New opened; the Redis relay stops with ctx.
func New(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*api.Deps, func(), error) {
	db, err := config.NewDB()
	if err != nil {
		return nil, nil, err
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, nil, fmt.Errorf("db handle: %w", err)
	}
	if err := sqlDB.PingContext(ctx); err != nil {
		return nil, nil, fmt.Errorf("database connection failed: %w", err)
	}
	if config.GetEnv("DB_DRIVER", "mysql") == "sqlite" {
		if err := db.AutoMigrate(entity.All()...); err != nil {
			return nil, nil, fmt.Errorf("automigrate: %w", err)
		}
	}

	cleanup := func() { _ = sqlDB.Close() }
	bridge, notifier := stateBackends(ctx, logger)
	if config.RedisClient != nil {
		closeDB := cleanup
		cleanup = func() {
			closeDB()
			_ = config.RedisClient.Close()
		}
	}

	return Wire(db, cfg, bridge, notifier, logger), cleanup, nil
}

// stateBackends selects Redis for the Bridge and Notifier when REDIS_ADDR is
// set and reachable, the in-process implementations otherwise.
func stateBackends(ctx context.Context, logger *zap.Logger) (*storage.Bridge, notify.Notifier) {
	config.InitRedis()
	if config.RedisClient != nil {
		if err := config.RedisClient.Ping(ctx).Err(); err != nil {
			logger.Warn("redis configured but not reachable, using in-memory state", zap.Error(err))
			_ = config.RedisClient.Close()
			config.RedisClient = nil
		}
	}
	if config.RedisClient == nil {
		logger.Info("storefront state kept in memory")
		return storage.NewBridge(storage.NewMemory(), logger), notify.NewRouter()
	}

	relay := notify.NewRedisRelay(config.RedisClient, notify.DefaultChannel, logger)
	go func() {
		if err := relay.Run(ctx); err != nil && ctx.Err() == nil {
			logger.Error("notifier relay stopped", zap.Error(err))
		}
	}()
	logger.Info("storefront state kept in redis")
	return storage.NewBridge(storage.NewRedis(config.RedisClient, storagePrefix), logger), relay
}

// Wire builds the services over an open database and state backends.
func Wire(db *gorm.DB, cfg *config.Config, bridge *storage.Bridge, notifier notify.Notifier, logger *zap.Logger) *api.Deps {
	c := cache.NewCache()

	searcher := productService.NewSearcher(cfg.ElasticsearchHost, cfg.ElasticsearchIndex, logger)
	catalog := productService.NewCatalog(db, logger,
		productService.WithCatalogCache(c),
		productService.WithSearcher(searcher),
	)

	fn := functions.NewClient(cfg.FunctionsURL, cfg.FunctionsKey, &http.Client{Timeout: cfg.RemoteTimeout}, logger)
	success, cancel := checkout.ReturnURLs(cfg.PublicURL)
	hub := storefront.NewHub(bridge, notifier,
		checkout.Deps{
			Sessions: checkout.ContextSessions{},
			Payments: payment.NewClient(fn),
			Emailer:  mailer.NewClient(fn),
			Orders:   orderRepo.NewOrderRepository(db),
			Logger:   logger,
		},
		checkout.Config{
			SuccessURL:      success,
			CancelURL:       cancel,
			SkipPreferences: cfg.CheckoutSkipPreferences,
			RemoteTimeout:   cfg.RemoteTimeout,
		},
		logger,
		storefront.WithCache(c),
		storefront.WithTTL(cfg.CheckoutTTL),
	)

	return &api.Deps{
		DB:       db,
		Config:   cfg,
		Logger:   logger,
		Cache:    c,
		Catalog:  catalog,
		Hub:      hub,
		Auth:     authService.NewService(db, cfg.SessionTTL, logger),
		Chat:     chat.NewAssistant(catalog, logger, chat.WithCache(c, chatTTL), chat.WithDelay(chat.RandomDelay(cfg.ChatReplyDelay, cfg.ChatReplyDelay/2))),
		Uploader: media.NewUploader(cfg.MediaDir, cfg.MediaUrl, logger),
	}
}

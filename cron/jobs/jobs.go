// Package jobs holds the storefront's scheduled maintenance jobs.
package jobs

import (
	"context"
	"io"
	"path/filepath"
	"time"

	"go.uber.org/zap"

	"cafe.GO/api"
	"cafe.GO/config"
	"cafe.GO/cron"
)

const (
	CatalogJSON    = "catalogjson"
	SessionCleanup = "sessioncleanup"
	CacheSweep     = "cachesweep"

	jobTimeout = 5 * time.Minute
)

// Register adds the jobs to the cron registry. Schedules can be overridden
// with CRON_<NAME>.
func Register(d *api.Deps) {
	cron.Register(CatalogJSON, config.CronSchedule(CatalogJSON, "0 * * * *"), run(d, CatalogJSON, func(ctx context.Context) error {
		_, err := ExportCatalog(ctx, d)
		return err
	}))
	cron.Register(SessionCleanup, config.CronSchedule(SessionCleanup, "@every 1h"), run(d, SessionCleanup, func(ctx context.Context) error {
		_, err := CleanupSessions(ctx, d)
		return err
	}))
	cron.Register(CacheSweep, config.CronSchedule(CacheSweep, "@every 5m"), run(d, CacheSweep, func(context.Context) error {
		SweepCache(d)
		return nil
	}))
}

func run(d *api.Deps, name string, fn func(context.Context) error) func(...string) {
	return func(...string) {
		ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
		defer cancel()
		start := time.Now()
		if err := fn(ctx); err != nil {
			d.Logger.Error("cron job failed", zap.String("job", name), zap.Error(err))
			return
		}
		d.Logger.Info("cron job done", zap.String("job", name), zap.Duration("duration", time.Since(start)))
	}
}

// CatalogPath is where ExportCatalog writes.
func CatalogPath(d *api.Deps) string {
	return filepath.Join(d.Config.MediaDir, "catalog.json")
}

// ExportCatalog writes the catalog JSON under the media directory.
func ExportCatalog(ctx context.Context, d *api.Deps) (int, error) {
	n, err := d.Catalog.ExportFile(ctx, CatalogPath(d))
	if err != nil {
		return 0, err
	}
	d.Logger.Info("catalog exported", zap.Int("products", n), zap.String("path", CatalogPath(d)))
	return n, nil
}

// CleanupSessions deletes expired customer sessions.
func CleanupSessions(ctx context.Context, d *api.Deps) (int64, error) {
	n, err := d.Auth.CleanupExpired(ctx)
	if err != nil {
		return 0, err
	}
	if n > 0 {
		d.Logger.Info("expired sessions removed", zap.Int64("count", n))
	}
	return n, nil
}

// SweepCache evicts expired cache entries, closing storefront sessions and
// anything else that holds resources.
func SweepCache(d *api.Deps) int {
	return d.Cache.DeleteExpired(func(key, value interface{}) {
		if c, ok := value.(io.Closer); ok {
			if err := c.Close(); err != nil {
				d.Logger.Warn("close evicted entry", zap.Any("key", key), zap.Error(err))
			}
		}
	})
}

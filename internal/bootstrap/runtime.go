// Package bootstrap wires the process-wide runtime shared by the commands.
package bootstrap

import (
	"fmt"

	"recipebox/internal/cache"
	"recipebox/internal/config"
	"recipebox/internal/database"
	"recipebox/internal/middleware"
	"recipebox/internal/observability"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Options control runtime initialization behavior.
type Options struct {
	// SkipSchema opens the database without applying migrations.
	SkipSchema bool
}

// InitRuntime configures logging, connects to the database and, when caching
// is enabled, to Redis. The Redis client is nil when caching is off or Redis
// is unreachable.
func InitRuntime(cfg *config.Config, opts Options) (*gorm.DB, *redis.Client, error) {
	middleware.SetLogLevel(cfg.LogLevel)
	observability.SetLogger(middleware.Logger)

	db, err := database.ConnectWithOptions(cfg, database.ConnectOptions{ApplySchema: !opts.SkipSchema})
	if err != nil {
		return nil, nil, fmt.Errorf("database connection failed: %w", err)
	}

	if !cfg.CacheEnabled {
		cache.SetClient(nil)
		middleware.Logger.Info("Cache disabled by configuration")
		return db, nil, nil
	}
	cache.InitRedis(cfg.RedisURL)
	return db, cache.GetClient(), nil
}

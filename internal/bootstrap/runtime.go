// Package bootstrap connects the runtime dependencies shared by the server
// and the command line tools.
package bootstrap

import (
	"context"
	"fmt"
	"log"

	"linkshelf/internal/cache"
	"linkshelf/internal/config"
	"linkshelf/internal/database"
	"linkshelf/internal/models"
	"linkshelf/internal/seed"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Options control runtime initialization behavior.
type Options struct {
	// SeedDemo fills an empty development database with demo data.
	SeedDemo bool
	Seed     seed.Options
}

// InitRuntime connects to DB and Redis and optionally seeds demo data.
// A nil Redis client means caching and realtime fan-out are disabled.
func InitRuntime(ctx context.Context, cfg *config.Config, opts Options) (*gorm.DB, *redis.Client, error) {
	db, err := database.Connect(cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("database connection failed: %w", err)
	}

	// Init Redis (may result in nil client if unreachable)
	cache.InitRedis(cfg.RedisURL)
	r := cache.GetClient()

	if opts.SeedDemo {
		if err := seedDemo(ctx, cfg, db, opts.Seed); err != nil {
			return nil, nil, fmt.Errorf("failed to seed demo data: %w", err)
		}
	}

	return db, r, nil
}

func seedDemo(ctx context.Context, cfg *config.Config, db *gorm.DB, opts seed.Options) error {
	if cfg.IsProduction() {
		log.Println("demo seeding skipped in production")
		return nil
	}

	var users int64
	if err := db.WithContext(ctx).Model(&models.User{}).Count(&users).Error; err != nil {
		return err
	}
	if users > 0 {
		return nil
	}

	_, err := seed.Seed(ctx, db, opts)
	return err
}

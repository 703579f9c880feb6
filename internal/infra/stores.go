package infra

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/onramp-pay/onramp/internal/config"
)

// Stores holds the optional external backends. A nil field means the
// in-memory fallback is used, which config only allows in dev.
type Stores struct {
	DB    *pgxpool.Pool
	Cache *redis.Client
}

// Connect opens the configured backends and applies migrations when
// AUTO_MIGRATE is set.
func Connect(ctx context.Context, cfg config.Config, logger *slog.Logger) (*Stores, error) {
	s := &Stores{}
	if cfg.DatabaseURL != "" {
		db, err := NewPostgresPool(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, err
		}
		s.DB = db
		if cfg.AutoMigrate {
			if err := Migrate(ctx, db); err != nil {
				s.Close(logger)
				return nil, fmt.Errorf("migrate: %w", err)
			}
			logger.Info("schema migrated")
		}
	} else {
		logger.Warn("DATABASE_URL not set, using in-memory stores")
	}

	if cfg.RedisURL != "" {
		cache, err := NewRedisClient(ctx, cfg.RedisURL)
		if err != nil {
			s.Close(logger)
			return nil, err
		}
		s.Cache = cache
	} else {
		logger.Warn("REDIS_URL not set, idempotency and login rate limiting are disabled")
	}
	return s, nil
}

// Close releases whatever Connect opened.
func (s *Stores) Close(logger *slog.Logger) {
	if s.Cache != nil {
		if err := s.Cache.Close(); err != nil {
			logger.Warn("close redis", "error", err)
		}
	}
	if s.DB != nil {
		s.DB.Close()
	}
}

package db

import (
	"context"
	"fmt"

	"accessgate/internal/config"
	"accessgate/internal/repository"
)

// OpenStore connects the credential store selected by cfg.StoreDriver. The
// MySQL schema is migrated on open. A memory store starts empty.
func OpenStore(ctx context.Context, cfg *config.Config) (*repository.Store, error) {
	switch cfg.StoreDriver {
	case config.StoreMySQL:
		gormDB, err := NewMySQL(cfg.MySQLDSN)
		if err != nil {
			return nil, err
		}
		if err := repository.AutoMigrate(gormDB); err != nil {
			return nil, fmt.Errorf("auto-migrate: %w", err)
		}
		return repository.NewGormStore(gormDB), nil
	case config.StoreRedis:
		client, err := NewRedis(ctx, cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)
		if err != nil {
			return nil, err
		}
		return repository.NewRedisStore(client), nil
	case config.StoreMemory:
		return repository.NewMemoryStore(), nil
	default:
		return nil, fmt.Errorf("unsupported store driver %q", cfg.StoreDriver)
	}
}

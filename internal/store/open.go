//go:build !js

package store

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/festmap/festmap/backend-go/internal/config"
	"github.com/festmap/festmap/backend-go/internal/db"
)

// Open connects the store selected by STORE_DRIVER.
func Open(ctx context.Context, cfg *config.Config) (Store, error) {
	switch cfg.StoreDriver {
	case "memory":
		return NewMemory(), nil
	case "postgres":
		pool, err := db.NewPool(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, err
		}
		s, err := NewPostgres(ctx, pool)
		if err != nil {
			pool.Close()
			return nil, err
		}
		return s, nil
	case "sqlite":
		conn, err := db.OpenSQLite(cfg.SQLitePath)
		if err != nil {
			return nil, fmt.Errorf("open sqlite: %w", err)
		}
		s, err := NewSQLite(ctx, conn)
		if err != nil {
			conn.Close()
			return nil, err
		}
		return s, nil
	case "redis":
		client, err := db.NewRedisClient(ctx, cfg.RedisURL)
		if err != nil {
			return nil, err
		}
		return NewRedis(client, cfg.RedisPrefix), nil
	}
	slog.Error("unknown store driver", "driver", cfg.StoreDriver)
	return nil, fmt.Errorf("unknown store driver %q", cfg.StoreDriver)
}

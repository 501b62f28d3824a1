// Package backend opens the document store selected by configuration.
package backend

import (
	"context"
	"fmt"
	"log"

	"aminashop/backend/internal/config"
	"aminashop/backend/internal/store"
	"aminashop/backend/internal/store/memory"
	pgstore "aminashop/backend/internal/store/postgres"
	redisstore "aminashop/backend/internal/store/redis"
	"aminashop/backend/internal/store/remote"
	sqlitestore "aminashop/backend/internal/store/sqlite"
)

// Opened is a document store with its close function.
type Opened struct {
	Store store.DocumentStore
	Name  string
	Close func() error
}

// Open connects to the configured backend. A configured backend that cannot
// be reached is an error; there is no silent fallback to memory.
func Open(ctx context.Context, cfg config.Config) (Opened, error) {
	switch cfg.DataBackend {
	case config.BackendMemory:
		s := memory.New(cfg.DocumentKey)
		return Opened{Store: s, Name: config.BackendMemory, Close: s.Close}, nil

	case config.BackendPostgres:
		if cfg.DatabaseURL == "" {
			return Opened{}, fmt.Errorf("DATABASE_URL is required for the postgres backend")
		}
		s, err := pgstore.New(ctx, cfg.DatabaseURL, cfg.DocumentKey)
		if err != nil {
			return Opened{}, fmt.Errorf("postgres unavailable: %w", err)
		}
		return Opened{Store: s, Name: config.BackendPostgres, Close: s.Close}, nil

	case config.BackendRedis:
		if cfg.RedisAddr == "" {
			return Opened{}, fmt.Errorf("REDIS_ADDR is required for the redis backend")
		}
		s := redisstore.New(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB, cfg.DocumentKey)
		if err := s.Ping(ctx); err != nil {
			_ = s.Close()
			return Opened{}, fmt.Errorf("redis unavailable: %w", err)
		}
		return Opened{Store: s, Name: config.BackendRedis, Close: s.Close}, nil

	case config.BackendSQLite:
		s, err := sqlitestore.New(cfg.SQLitePath, cfg.DocumentKey)
		if err != nil {
			return Opened{}, fmt.Errorf("sqlite unavailable: %w", err)
		}
		return Opened{Store: s, Name: config.BackendSQLite, Close: s.Close}, nil

	case config.BackendRemote:
		if cfg.RemoteDataURL == "" {
			return Opened{}, fmt.Errorf("REMOTE_DATA_URL is required for the remote backend")
		}
		s := remote.New(cfg.RemoteDataURL, cfg.DataAPIKey)
		return Opened{Store: s, Name: config.BackendRemote, Close: s.Close}, nil
	}

	log.Printf("[backend] WARN: unknown DATA_BACKEND %q", cfg.DataBackend)
	return Opened{}, fmt.Errorf("unknown DATA_BACKEND %q", cfg.DataBackend)
}

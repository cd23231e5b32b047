package storage

import (
	"fmt"
	"log/slog"

	"github.com/jwebster45206/parley/internal/config"
	pstorage "github.com/jwebster45206/parley/pkg/storage"
)

// Open builds the storage backend named by cfg.StorageBackend. The memory
// backend is SQLite held in process memory.
func Open(cfg *config.Config, logger *slog.Logger) (pstorage.Storage, error) {
	switch cfg.StorageBackend {
	case config.BackendRedis:
		store, err := NewRedisStorage(cfg.RedisURL, logger)
		if err != nil {
			return nil, err
		}
		return store, nil
	case config.BackendSQLite, config.BackendMemory:
		store, err := NewSQLiteStorage(cfg.StorageDSN(), logger)
		if err != nil {
			return nil, err
		}
		return store, nil
	default:
		return nil, fmt.Errorf("unsupported storage backend: %s", cfg.StorageBackend)
	}
}

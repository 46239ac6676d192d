package repository

import (
	"context"
	"fmt"
	"log/slog"

	"parts-catalog/internal/config"
	"parts-catalog/internal/database"
	"parts-catalog/internal/logger"
	"parts-catalog/internal/repository/memory"
	"parts-catalog/internal/service"
)

// Store is a catalog backend that can also report its own health.
type Store interface {
	service.CatalogStore
	service.Pinger
}

// Open builds the backend selected by STORE_DRIVER. The returned close func releases it.
func Open(ctx context.Context, cfg *config.Config) (Store, func(context.Context) error, error) {
	switch cfg.StoreDriver {
	case config.StoreMemory:
		logger.Warn(ctx, "Using in-memory catalog store, data is lost on exit")
		return memory.New(), func(context.Context) error { return nil }, nil

	case config.StoreMongo:
		db, err := database.Instance(ctx, cfg.MongoURI, cfg.MongoDBName)
		if err != nil {
			return nil, nil, err
		}
		repo := NewProductRepository(db.Database, cfg.MongoCollection)
		if err := repo.EnsureIndexes(ctx); err != nil {
			_ = db.Disconnect(ctx)
			return nil, nil, fmt.Errorf("ensure indexes: %w", err)
		}
		logger.Info(ctx, "Catalog store ready",
			slog.String("driver", cfg.StoreDriver),
			slog.String("database", cfg.MongoDBName),
			slog.String("collection", cfg.MongoCollection),
		)
		return repo, db.Disconnect, nil

	default:
		return nil, nil, fmt.Errorf("unknown store driver %q", cfg.StoreDriver)
	}
}

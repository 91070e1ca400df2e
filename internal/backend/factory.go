package backend

import (
	"context"
	"fmt"
	"log/slog"

	"spendlog/internal/core"
	"spendlog/internal/storage"
	"spendlog/internal/storage/memory"
)

// DefaultFactory implements the Factory interface
type DefaultFactory struct {
	logger *slog.Logger
}

// NewFactory creates a new backend factory
func NewFactory(logger *slog.Logger) Factory {
	if logger == nil {
		logger = slog.Default()
	}
	return &DefaultFactory{
		logger: logger,
	}
}

// CreateBackend implements Factory.CreateBackend
func (f *DefaultFactory) CreateBackend(ctx context.Context, config Config) (*BackendResult, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	var result *BackendResult
	switch config.Type {
	case SQLiteBackend:
		repo, err := storage.NewSQLiteRepository(config.SQLiteDBPath)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize SQLite repository: %w", err)
		}
		f.logger.InfoContext(ctx, "Initialized SQLite backend", "db_path", config.SQLiteDBPath)
		result = &BackendResult{Repository: repo, Cleanup: repo.Close}
	case MemoryBackend:
		store := memory.New()
		f.logger.InfoContext(ctx, "Initialized memory backend")
		result = &BackendResult{Repository: store, Cleanup: store.Close}
	default:
		return nil, fmt.Errorf("unsupported backend type: %s", config.Type)
	}

	result.Seed = f.seedCategories(ctx, config.CategoriesFile)
	return result, nil
}

func (f *DefaultFactory) seedCategories(ctx context.Context, path string) []core.NewCategory {
	if path != "" {
		if seed := memory.ReadSeedCategories(path); len(seed) > 0 {
			f.logger.InfoContext(ctx, "Loaded seed categories", "file", path, "count", len(seed))
			return seed
		}
		f.logger.WarnContext(ctx, "No usable categories in file, using defaults", "file", path)
	}
	return core.DefaultCategories()
}

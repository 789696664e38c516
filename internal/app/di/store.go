package di

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"index_backend/internal/feature/indicators/adapters"
	"index_backend/internal/feature/indicators/adapters/csvload"
	"index_backend/internal/feature/indicators/domain/entity"
	"index_backend/internal/feature/indicators/usecase"
	"index_backend/internal/platform/cache"
	"index_backend/internal/platform/config"
)

// SeriesReader serves both the indicators and the index list features.
type SeriesReader interface {
	Lookup(ctx context.Context, name string) (entity.Series, error)
	ListNames(ctx context.Context) ([]string, error)
}

// Stores groups the read and write sides of the series storage.
// Writer is nil for the memory driver.
type Stores struct {
	Reader SeriesReader
	Writer usecase.SeriesWriter
}

// NewStores builds the series storage for cfg.Store.Driver.
// db must be non-nil for a persistent driver. rdb and observer are optional.
func NewStores(cfg *config.Config, db *gorm.DB, rdb *redis.Client, observer cache.Observer) (*Stores, error) {
	if !cfg.Persistent() {
		series, err := csvload.LoadFile(cfg.Store.CSVPath)
		if err != nil {
			return nil, fmt.Errorf("load csv store: %w", err)
		}
		return &Stores{Reader: adapters.NewMemoryStore(series)}, nil
	}

	if db == nil {
		return nil, fmt.Errorf("store driver %q needs a database", cfg.Store.Driver)
	}
	repo := adapters.NewSeriesRepository(db)
	if rdb == nil {
		return &Stores{Reader: repo, Writer: repo}, nil
	}

	cached := cache.NewCachingSeriesStore(rdb, cfg.Redis.TTL, repo, "indices")
	if observer != nil {
		cached = cached.WithObserver(observer)
	}
	return &Stores{Reader: cached, Writer: cached}, nil
}

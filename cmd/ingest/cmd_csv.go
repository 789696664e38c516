package main

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/spf13/cobra"

	"index_backend/internal/feature/indicators/adapters"
	"index_backend/internal/feature/indicators/adapters/csvload"
	"index_backend/internal/feature/indicators/usecase"
	"index_backend/internal/platform/cache"
	"index_backend/internal/platform/config"
	infradb "index_backend/internal/platform/db"
	infraredis "index_backend/internal/platform/redis"
)

func newCSVCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "csv <file>",
		Short: "Import a dump.csv export into the configured database",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := opts.cfg
			if !cfg.Persistent() {
				return errors.New("csv import needs store.driver sqlite or postgres")
			}

			series, err := csvload.LoadFile(args[0])
			if err != nil {
				return err
			}

			dbCfg := infradb.FromConfig(cfg)
			dbCfg.RunMigrations = true
			db, err := infradb.Open(dbCfg)
			if err != nil {
				return err
			}
			if sqlDB, err := db.DB(); err == nil {
				defer func() { _ = sqlDB.Close() }()
			}

			uc := usecase.NewIngestUsecase(nil, adapters.NewSeriesRepository(db), nil)
			if err := uc.ImportSeries(cmd.Context(), series); err != nil {
				return err
			}
			flushCache(cmd.Context(), cfg)

			fmt.Fprintf(cmd.OutOrStdout(), "imported %d series from %s\n", len(series), args[0])
			return nil
		},
	}
}

// flushCache はサーバーのキャッシュを破棄します。Redisに接続できなくても失敗にはしません。
func flushCache(ctx context.Context, cfg *config.Config) {
	if !cfg.Redis.Enabled {
		return
	}
	rdb, err := infraredis.NewRedisClient(ctx, cfg.Redis)
	if err != nil {
		log.Println("[WARN] Redis unavailable. Cache not flushed.")
		return
	}
	defer func() { _ = rdb.Close() }()

	if err := cache.NewCachingSeriesStore(rdb, cfg.Redis.TTL, nil, "indices").Flush(ctx); err != nil {
		log.Println("[WARN] failed to flush cache:", err)
	}
}

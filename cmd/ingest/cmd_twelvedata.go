package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"index_backend/internal/app/di"
	"index_backend/internal/feature/indicators/adapters"
	"index_backend/internal/platform/config"
	infradb "index_backend/internal/platform/db"
)

func newTwelveDataCmd(opts *rootOptions) *cobra.Command {
	var (
		symbols string
		timeout time.Duration
	)

	cmd := &cobra.Command{
		Use:   "twelvedata",
		Short: "Fetch daily history from Twelve Data for the configured symbols",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := opts.cfg
			if !cfg.Persistent() {
				return errors.New("twelvedata ingest needs store.driver sqlite or postgres")
			}
			if cfg.TwelveData.APIKey == "" {
				return errors.New("missing api key: set twelvedata.api_key or env TWELVE_DATA_API_KEY")
			}

			targets := cfg.Ingest.Symbols
			if symbols != "" {
				parsed, err := config.ParseSymbols(symbols)
				if err != nil {
					return err
				}
				targets = parsed
			}
			if len(targets) == 0 {
				return errors.New("no symbols: set ingest.symbols or --symbols")
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

			ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
			defer cancel()

			uc := di.NewIngestUsecase(cfg.TwelveData, adapters.NewSeriesRepository(db))
			if err := uc.IngestAll(ctx, di.IngestTargets(targets)); err != nil {
				return err
			}
			flushCache(ctx, cfg)

			fmt.Fprintf(cmd.OutOrStdout(), "ingest ok (%d symbols)\n", len(targets))
			return nil
		},
	}

	cmd.Flags().StringVar(&symbols, "symbols", "", `override ingest.symbols, e.g. "NSEI=NIFTY 50;BSESN=SENSEX"`)
	cmd.Flags().DurationVar(&timeout, "timeout", 5*time.Minute, "overall deadline")
	return cmd
}

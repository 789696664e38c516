// Package di provides dependency injection factories for creating application components.
package di

import (
	"time"

	"index_backend/internal/feature/indicators/usecase"
	"index_backend/internal/platform/config"
	"index_backend/internal/platform/externalapi/twelvedata"
	infrahttp "index_backend/internal/platform/http"
	"index_backend/internal/shared/ratelimiter"
)

// NewMarket creates a TwelveDataMarket with its own HTTP client.
func NewMarket(cfg config.TwelveDataConfig) *twelvedata.TwelveDataMarket {
	tdCfg := twelvedata.ConfigFrom(cfg)
	httpClient := infrahttp.NewHTTPClient(tdCfg.Timeout)
	return twelvedata.NewTwelveDataMarket(tdCfg, httpClient)
}

// NewIngestUsecase wires the market client and a per-minute rate limiter around writer.
func NewIngestUsecase(cfg config.TwelveDataConfig, writer usecase.SeriesWriter) *usecase.IngestUsecase {
	limiter := ratelimiter.NewRateLimiter(cfg.RateLimit, time.Minute)
	return usecase.NewIngestUsecase(NewMarket(cfg), writer, limiter)
}

// IngestTargets converts configured symbols into ingest targets.
func IngestTargets(symbols []config.IngestSymbol) []usecase.IngestTarget {
	out := make([]usecase.IngestTarget, 0, len(symbols))
	for _, s := range symbols {
		out = append(out, usecase.IngestTarget{Symbol: s.Symbol, Name: s.Name})
	}
	return out
}

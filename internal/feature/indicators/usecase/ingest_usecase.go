package usecase

import (
	"context"
	"log/slog"

	"index_backend/internal/feature/indicators/domain/entity"
	"index_backend/internal/shared/ratelimiter"
)

const (
	ingestOutputSize = 500 // 1回のリクエストで取得する日足の件数
)

// MarketRepository は外部APIから日次の観測値を取得するインターフェイスです。
// Following Go convention: interfaces are defined by the consumer (usecase), not the provider (adapters).
type MarketRepository interface {
	GetDailySeries(ctx context.Context, symbol string, outputsize int) ([]entity.Observation, error)
}

// SeriesWriter は観測値を永続化する書き込みレイヤーです。
type SeriesWriter interface {
	UpsertBatch(ctx context.Context, name string, obs []entity.Observation) error
}

// IngestTarget は外部APIのシンボルと保存先のインデックス名の対応です。
type IngestTarget struct {
	Symbol string
	Name   string
}

// IngestUsecase は外部APIやCSVから取得した系列をデータベースに保存します。
type IngestUsecase struct {
	market      MarketRepository
	writer      SeriesWriter
	rateLimiter ratelimiter.Limiter
}

// NewIngestUsecase は新しい IngestUsecase を作成します。
// market は CSV 取り込みのみで使う場合 nil でも構いません。
func NewIngestUsecase(market MarketRepository, writer SeriesWriter, rateLimiter ratelimiter.Limiter) *IngestUsecase {
	return &IngestUsecase{market: market, writer: writer, rateLimiter: rateLimiter}
}

func (iu *IngestUsecase) ingestOne(ctx context.Context, target IngestTarget) error {
	obs, err := iu.market.GetDailySeries(ctx, target.Symbol, ingestOutputSize)
	if err != nil {
		return err
	}
	return iu.writer.UpsertBatch(ctx, target.Name, obs)
}

// IngestAll は全ターゲットの日足を取得して保存します。
// 1件の失敗では止めずにログを出して次へ進みます。コンテキストのキャンセルのみ中断します。
func (iu *IngestUsecase) IngestAll(ctx context.Context, targets []IngestTarget) error {
	for _, t := range targets {
		if err := iu.rateLimiter.Wait(ctx); err != nil {
			return err
		}
		if err := iu.ingestOne(ctx, t); err != nil {
			slog.Error("failed to ingest series", "symbol", t.Symbol, "name", t.Name, "error", err)
			continue
		}
		slog.Info("series ingested", "symbol", t.Symbol, "name", t.Name)
	}
	return nil
}

// ImportSeries は読み込み済みの系列（CSV など）をそのまま保存します。
func (iu *IngestUsecase) ImportSeries(ctx context.Context, series []entity.Series) error {
	for _, s := range series {
		if err := iu.writer.UpsertBatch(ctx, s.Name, s.Observations); err != nil {
			return err
		}
	}
	return nil
}

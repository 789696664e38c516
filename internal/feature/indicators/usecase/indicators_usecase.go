// Package usecase はインデックス指標の算出と2系列比較のビジネスロジックを実装します。
package usecase

import (
	"context"
	"fmt"

	"index_backend/internal/feature/indicators/domain"
	"index_backend/internal/feature/indicators/domain/entity"
	"index_backend/internal/feature/indicators/engine"
)

// SeriesStore は名前付き時系列の読み取りレイヤーを抽象化します。
// Goの慣例に従い、インターフェースは利用者（usecase）側で定義します。
type SeriesStore interface {
	// Lookup は名前（大文字小文字・前後空白を無視）で系列を返します。
	// 該当がない場合は domain.ErrNotFound を返します。
	Lookup(ctx context.Context, name string) (entity.Series, error)
}

// IndicatorsUsecase は単一系列の指標と2系列比較を提供します。
type IndicatorsUsecase struct {
	store       SeriesStore
	params      engine.Params
	trendWindow int
}

// NewIndicatorsUsecase はデフォルトの期間設定で IndicatorsUsecase を生成します。
func NewIndicatorsUsecase(store SeriesStore) *IndicatorsUsecase {
	return &IndicatorsUsecase{
		store:       store,
		params:      engine.DefaultParams(),
		trendWindow: engine.DefaultTrendWindow,
	}
}

// GetIndicators は系列全体のSMA/RSI/SMIと直近ウィンドウのトレンドを返します。
func (u *IndicatorsUsecase) GetIndicators(ctx context.Context, name string) (entity.Analysis, error) {
	s, err := u.lookup(ctx, name)
	if err != nil {
		return entity.Analysis{}, err
	}

	frame, err := engine.ComputeFrame(s, u.params)
	if err != nil {
		return entity.Analysis{}, err
	}
	return entity.Analysis{
		Series: s,
		Frame:  frame,
		Trend:  engine.Classify(s, u.trendWindow),
	}, nil
}

// GetComparison は2系列を共通期間に揃え、正規化値・指標・トレンドを返します。
// トレンドと指標はクリップ後の期間で算出します。
func (u *IndicatorsUsecase) GetComparison(ctx context.Context, mainName, otherName string) (entity.Comparison, error) {
	a, err := u.lookup(ctx, mainName)
	if err != nil {
		return entity.Comparison{}, err
	}
	b, err := u.lookup(ctx, otherName)
	if err != nil {
		return entity.Comparison{}, err
	}

	al, err := engine.Align(a, b)
	if err != nil {
		return entity.Comparison{}, fmt.Errorf("compare %q with %q: %w", a.Name, b.Name, err)
	}

	mainSide, err := u.side(al.A)
	if err != nil {
		return entity.Comparison{}, err
	}
	otherSide, err := u.side(al.B)
	if err != nil {
		return entity.Comparison{}, err
	}

	return entity.Comparison{
		Start: al.Start,
		End:   al.End,
		Main:  mainSide,
		Other: otherSide,
	}, nil
}

func (u *IndicatorsUsecase) side(s entity.Series) (entity.AlignedSeries, error) {
	frame, err := engine.ComputeFrame(s, u.params)
	if err != nil {
		return entity.AlignedSeries{}, err
	}
	return entity.AlignedSeries{
		Series:     s,
		Normalized: engine.Normalize(s),
		Frame:      frame,
		Trend:      engine.Classify(s, u.trendWindow),
	}, nil
}

// lookup は空の系列も未検出として扱います。
func (u *IndicatorsUsecase) lookup(ctx context.Context, name string) (entity.Series, error) {
	s, err := u.store.Lookup(ctx, name)
	if err != nil {
		return entity.Series{}, fmt.Errorf("lookup %q: %w", name, err)
	}
	if s.Len() == 0 {
		return entity.Series{}, fmt.Errorf("lookup %q: %w", name, domain.ErrNotFound)
	}
	return s, nil
}

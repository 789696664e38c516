// Package dto defines data transfer objects for the indicators HTTP API.
// Undefined indicator readings are encoded as null.
package dto

// ErrorResponse はエラー時のレスポンスDTOです。
type ErrorResponse struct {
	Error string `json:"error"`
}

// TrendResponse はトレンド判定結果です。
type TrendResponse struct {
	Label         string  `json:"label"`
	Description   string  `json:"description"`
	PercentChange float64 `json:"percent_change"`
}

// SeriesColumns は日付ごとの値と指標を列形式で保持します。
// RSI/SMI は表示オフのとき省略されます。
type SeriesColumns struct {
	Dates         []string   `json:"dates"`
	Values        []float64  `json:"values"`
	MovingAverage []*float64 `json:"sma"`
	RSI           []*float64 `json:"rsi,omitempty"`
	SMI           []*float64 `json:"smi,omitempty"`
}

// Band はチャートに描く上下の基準線です。
type Band struct {
	Upper float64 `json:"upper"`
	Lower float64 `json:"lower"`
}

// Bands は表示中のオシレーターの基準線です。
type Bands struct {
	RSI *Band `json:"rsi,omitempty"`
	SMI *Band `json:"smi,omitempty"`
}

// IndicatorsResponse は単一インデックスのレスポンスDTOです。
type IndicatorsResponse struct {
	Name   string        `json:"name"`
	Title  string        `json:"title"`
	Trend  TrendResponse `json:"trend"`
	Series SeriesColumns `json:"series"`
	Bands  Bands         `json:"bands"`
}

// ComparedSeries は比較の片側です。Normalized は期間初日を0%とした変化率です。
type ComparedSeries struct {
	Name       string        `json:"name"`
	Label      string        `json:"label"`
	Trend      TrendResponse `json:"trend"`
	Normalized []*float64    `json:"normalized"`
	SeriesColumns
}

// ComparisonResponse は2インデックス比較のレスポンスDTOです。
type ComparisonResponse struct {
	Title string         `json:"title"`
	Start string         `json:"start"`
	End   string         `json:"end"`
	Main  ComparedSeries `json:"main"`
	Other ComparedSeries `json:"other"`
	Bands Bands          `json:"bands"`
}

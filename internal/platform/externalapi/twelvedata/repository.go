package twelvedata

import (
	"cmp"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"math"
	"net/http"
	"net/url"
	"slices"
	"strconv"
	"strings"
	"time"

	"index_backend/internal/feature/indicators/domain/entity"
	"index_backend/internal/feature/indicators/usecase"
	"index_backend/internal/platform/externalapi/twelvedata/dto"
)

const dailyInterval = "1day"

// TwelveDataMarket はTwelve Data外部APIから日次の指数データを取得するMarketRepository実装です。
type TwelveDataMarket struct {
	cfg    Config
	client *http.Client
}

// TwelveDataMarketがMarketRepositoryを実装していることをコンパイル時に検証します。
var _ usecase.MarketRepository = (*TwelveDataMarket)(nil)

func NewTwelveDataMarket(cfg Config, client *http.Client) *TwelveDataMarket {
	return &TwelveDataMarket{cfg: cfg, client: client}
}

// GetDailySeries は日足の始値を観測値として日付昇順で返します。
func (t *TwelveDataMarket) GetDailySeries(ctx context.Context, symbol string, outputsize int) ([]entity.Observation, error) {
	q := url.Values{}
	q.Set("symbol", symbol)
	q.Set("interval", dailyInterval)
	q.Set("outputsize", strconv.Itoa(outputsize))
	q.Set("apikey", t.cfg.APIKey)

	u := fmt.Sprintf("%s/time_series?%s", strings.TrimRight(t.cfg.BaseURL, "/"), q.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}

	res, err := t.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := res.Body.Close(); err != nil {
			slog.Warn("failed to close response body", "error", err)
		}
	}()

	if res.StatusCode >= 400 {
		return nil, fmt.Errorf("twelvedata http %d", res.StatusCode)
	}

	var body dto.TimeSeriesResponse
	if err := json.NewDecoder(res.Body).Decode(&body); err != nil {
		return nil, err
	}
	// エラー時もHTTP 200で返ってくる
	if body.Status == "error" {
		return nil, fmt.Errorf("twelvedata %d: %s", body.Code, body.Message)
	}

	obs := make([]entity.Observation, 0, len(body.Values))
	for _, v := range body.Values {
		tm, err := parseDatetime(v.Datetime)
		if err != nil {
			return nil, err
		}
		o, err := strconv.ParseFloat(v.Open, 64)
		if err != nil {
			return nil, fmt.Errorf("parse open %q: %w", v.Open, err)
		}
		if math.IsNaN(o) || math.IsInf(o, 0) {
			slog.Warn("skipping non-finite open", "symbol", symbol, "datetime", v.Datetime, "open", v.Open)
			continue
		}
		obs = append(obs, entity.Observation{Date: tm, Value: o})
	}

	// APIは新しい順に返す
	slices.SortStableFunc(obs, func(a, b entity.Observation) int {
		return cmp.Compare(a.Date.Unix(), b.Date.Unix())
	})
	return obs, nil
}

func parseDatetime(s string) (time.Time, error) {
	tm, err := time.Parse("2006-01-02 15:04:05", s)
	if err == nil {
		return tm, nil
	}
	tm, err = time.Parse("2006-01-02", s)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse time %q: %w", s, err)
	}
	return tm, nil
}

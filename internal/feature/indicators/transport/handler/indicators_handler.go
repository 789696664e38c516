// Package handler はindicatorsフィーチャーのHTTPハンドラーを提供します。
package handler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"index_backend/internal/feature/indicators/domain"
	"index_backend/internal/feature/indicators/domain/entity"
	"index_backend/internal/feature/indicators/engine"
	"index_backend/internal/feature/indicators/transport/http/dto"
	"index_backend/internal/platform/logger"
)

const dateLayout = "2006-01-02"

// IndicatorsUsecase は指標算出のユースケースインターフェースです。
// Goの慣例に従い、インターフェースは利用者（handler）側で定義します。
type IndicatorsUsecase interface {
	GetIndicators(ctx context.Context, name string) (entity.Analysis, error)
	GetComparison(ctx context.Context, mainName, otherName string) (entity.Comparison, error)
}

// IndicatorsHandler はインデックス指標のHTTPリクエストを処理します。
type IndicatorsHandler struct {
	uc IndicatorsUsecase
}

// NewIndicatorsHandler は指定されたusecaseでIndicatorsHandlerを生成します。
func NewIndicatorsHandler(uc IndicatorsUsecase) *IndicatorsHandler {
	return &IndicatorsHandler{uc: uc}
}

// toggles は表示する指標です。計算には影響しません。
type toggles struct {
	rsi bool
	smi bool
}

func readToggles(c *gin.Context) toggles {
	return toggles{
		rsi: c.DefaultQuery("rsi", "1") == "1",
		smi: c.DefaultQuery("smi", "1") == "1",
	}
}

// GetIndicators は1インデックスの値・SMA・RSI・SMIとトレンドを返します。
//
// エンドポイント例:
// GET /indices/:name?rsi=1&smi=0
func (h *IndicatorsHandler) GetIndicators(c *gin.Context) {
	name := c.Param("name")
	tg := readToggles(c)

	a, err := h.uc.GetIndicators(c.Request.Context(), name)
	if err != nil {
		h.writeError(c, err)
		return
	}

	display := strings.ToUpper(strings.TrimSpace(name))
	c.JSON(http.StatusOK, dto.IndicatorsResponse{
		Name:   a.Series.Name,
		Title:  fmt.Sprintf("%s - %s (%.2f%%)", display, a.Trend.Label.Description(), a.Trend.PercentChange),
		Trend:  toTrend(a.Trend),
		Series: toColumns(a.Frame, tg),
		Bands:  toBands(tg),
	})
}

// GetComparison は2インデックスを共通期間で比較します。
// 同じインデックス同士の場合は単一表示へリダイレクトします。
//
// エンドポイント例:
// GET /compare/:main/:other?rsi=1&smi=1
func (h *IndicatorsHandler) GetComparison(c *gin.Context) {
	mainName := c.Param("main")
	otherName := c.Param("other")
	tg := readToggles(c)

	if strings.EqualFold(strings.TrimSpace(mainName), strings.TrimSpace(otherName)) {
		target := "/indices/" + url.PathEscape(strings.ToLower(strings.TrimSpace(mainName)))
		if q := c.Request.URL.RawQuery; q != "" {
			target += "?" + q
		}
		c.Redirect(http.StatusFound, target)
		return
	}

	cmp, err := h.uc.GetComparison(c.Request.Context(), mainName, otherName)
	if err != nil {
		h.writeError(c, err)
		return
	}

	mainDisplay := strings.ToUpper(strings.TrimSpace(mainName))
	otherDisplay := strings.ToUpper(strings.TrimSpace(otherName))
	c.JSON(http.StatusOK, dto.ComparisonResponse{
		Title: fmt.Sprintf("%s vs %s", mainDisplay, otherDisplay),
		Start: formatDate(cmp.Start),
		End:   formatDate(cmp.End),
		Main:  toCompared(mainDisplay, cmp.Main, tg),
		Other: toCompared(otherDisplay, cmp.Other, tg),
		Bands: toBands(tg),
	})
}

func (h *IndicatorsHandler) writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		c.JSON(http.StatusNotFound, dto.ErrorResponse{Error: domain.ErrNotFound.Error()})
	case errors.Is(err, domain.ErrEmptyIntersection):
		c.JSON(http.StatusUnprocessableEntity, dto.ErrorResponse{Error: domain.ErrEmptyIntersection.Error()})
	default:
		slog.Error("indicator request failed",
			"request_id", logger.RequestID(c.Request.Context()),
			"path", c.Request.URL.Path,
			"error", err,
		)
		c.JSON(http.StatusInternalServerError, dto.ErrorResponse{Error: "internal server error"})
	}
}

func toTrend(t entity.TrendResult) dto.TrendResponse {
	return dto.TrendResponse{
		Label:         string(t.Label),
		Description:   t.Label.Description(),
		PercentChange: t.PercentChange,
	}
}

func toColumns(frame entity.Frame, tg toggles) dto.SeriesColumns {
	out := dto.SeriesColumns{
		Dates:         make([]string, len(frame)),
		Values:        make([]float64, len(frame)),
		MovingAverage: make([]*float64, len(frame)),
	}
	if tg.rsi {
		out.RSI = make([]*float64, len(frame))
	}
	if tg.smi {
		out.SMI = make([]*float64, len(frame))
	}
	for i, p := range frame {
		out.Dates[i] = formatDate(p.Date)
		out.Values[i] = p.Value
		out.MovingAverage[i] = p.MovingAverage.Ptr()
		if tg.rsi {
			out.RSI[i] = p.RSI.Ptr()
		}
		if tg.smi {
			out.SMI[i] = p.SMI.Ptr()
		}
	}
	return out
}

func toCompared(display string, s entity.AlignedSeries, tg toggles) dto.ComparedSeries {
	norm := make([]*float64, len(s.Normalized))
	for i, v := range s.Normalized {
		norm[i] = v.Ptr()
	}
	return dto.ComparedSeries{
		Name:          s.Series.Name,
		Label:         fmt.Sprintf("%s (%.2f%%)", display, s.Trend.PercentChange),
		Trend:         toTrend(s.Trend),
		Normalized:    norm,
		SeriesColumns: toColumns(s.Frame, tg),
	}
}

func toBands(tg toggles) dto.Bands {
	var b dto.Bands
	if tg.rsi {
		b.RSI = &dto.Band{Upper: engine.RSIOverbought, Lower: engine.RSIOversold}
	}
	if tg.smi {
		b.SMI = &dto.Band{Upper: engine.SMIUpperBand, Lower: engine.SMILowerBand}
	}
	return b
}

// formatDate は日付のみ、時刻を含む場合はRFC3339で返します。
func formatDate(t time.Time) string {
	t = t.UTC()
	if t.Hour() == 0 && t.Minute() == 0 && t.Second() == 0 && t.Nanosecond() == 0 {
		return t.Format(dateLayout)
	}
	return t.Format(time.RFC3339)
}

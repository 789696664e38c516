// Package engine computes rolling-window indicators, trend labels and
// date alignment for index series. Every function is pure: inputs are never
// modified and repeated calls return identical results.
package engine

import (
	"fmt"

	"index_backend/internal/feature/indicators/domain"
	"index_backend/internal/feature/indicators/domain/entity"
)

const (
	// DefaultPeriod is the window length of the moving average, RSI and the
	// SMI high/low range.
	DefaultPeriod = 14
	// DefaultSmooth is the SMI smoothing window.
	DefaultSmooth = 3
)

// Reference levels clients draw on the oscillator panels.
const (
	RSIOverbought = 70.0
	RSIOversold   = 30.0
	SMIUpperBand  = 40.0
	SMILowerBand  = -40.0
)

// Params configures ComputeFrame.
type Params struct {
	MAPeriod  int
	RSIPeriod int
	SMIPeriod int
	SMISmooth int
}

// DefaultParams returns the window lengths used by the HTTP API.
func DefaultParams() Params {
	return Params{
		MAPeriod:  DefaultPeriod,
		RSIPeriod: DefaultPeriod,
		SMIPeriod: DefaultPeriod,
		SMISmooth: DefaultSmooth,
	}
}

func checkPeriod(name string, period int) error {
	if period <= 0 {
		return fmt.Errorf("%s %d: %w", name, period, domain.ErrInvalidPeriod)
	}
	return nil
}

// MovingAverage returns the trailing simple moving average. Positions with
// fewer than period observations are undefined.
func MovingAverage(values []float64, period int) ([]entity.Value, error) {
	if err := checkPeriod("moving average period", period); err != nil {
		return nil, err
	}
	return rollingMean(values, period), nil
}

// RSI returns the relative strength index using simple trailing means of
// gains and losses (no Wilder smoothing). The first defined position is
// index period, since period differences need period+1 observations.
//
// A window with losses but no gains yields 0, gains but no losses yields 100,
// and a window with neither is undefined.
func RSI(values []float64, period int) ([]entity.Value, error) {
	if err := checkPeriod("rsi period", period); err != nil {
		return nil, err
	}
	out := make([]entity.Value, len(values))
	if len(values) < period+1 {
		return out, nil
	}

	gains := make([]float64, len(values)-1)
	losses := make([]float64, len(values)-1)
	for i := 1; i < len(values); i++ {
		d := values[i] - values[i-1]
		if d > 0 {
			gains[i-1] = d
		} else if d < 0 {
			losses[i-1] = -d
		}
	}

	avgGain := rollingMean(gains, period)
	avgLoss := rollingMean(losses, period)
	for j := range avgGain {
		if !avgGain[j].Valid || !avgLoss[j].Valid {
			continue
		}
		g, l := avgGain[j].Float, avgLoss[j].Float
		switch {
		case l == 0 && g == 0:
			// flat window, leave undefined
		case l == 0:
			out[j+1] = entity.Defined(100)
		default:
			rs := g / l
			out[j+1] = entity.Defined(100 - 100/(1+rs))
		}
	}
	return out, nil
}

// SMI returns the stochastic momentum index. The high/low range is taken over
// period observations, then the distance from the range midpoint and the range
// itself are both averaged over smooth positions:
//
//	smi = 100 * mean(diff) / (mean(high-low) / 2)
//
// Positions where either window is incomplete, or where the mean range is zero,
// are undefined.
func SMI(values []float64, period, smooth int) ([]entity.Value, error) {
	if err := checkPeriod("smi period", period); err != nil {
		return nil, err
	}
	if err := checkPeriod("smi smoothing", smooth); err != nil {
		return nil, err
	}
	out := make([]entity.Value, len(values))
	if len(values) < period+smooth-1 {
		return out, nil
	}

	high := rollingMax(values, period)
	low := rollingMin(values, period)

	// diff and rng start at the first full high/low window.
	start := period - 1
	diff := make([]float64, len(values)-start)
	rng := make([]float64, len(values)-start)
	for k := range diff {
		h, l := high[start+k].Float, low[start+k].Float
		diff[k] = values[start+k] - (h+l)/2
		rng[k] = h - l
	}

	meanDiff := rollingMean(diff, smooth)
	meanRange := rollingMean(rng, smooth)
	for k := range meanDiff {
		if !meanDiff[k].Valid || !meanRange[k].Valid || meanRange[k].Float == 0 {
			continue
		}
		out[start+k] = entity.Defined(100 * meanDiff[k].Float / (meanRange[k].Float / 2))
	}
	return out, nil
}

// ComputeFrame runs every indicator over the series and zips the results by
// position.
func ComputeFrame(s entity.Series, p Params) (entity.Frame, error) {
	values := s.Values()

	ma, err := MovingAverage(values, p.MAPeriod)
	if err != nil {
		return nil, err
	}
	rsi, err := RSI(values, p.RSIPeriod)
	if err != nil {
		return nil, err
	}
	smi, err := SMI(values, p.SMIPeriod, p.SMISmooth)
	if err != nil {
		return nil, err
	}

	frame := make(entity.Frame, len(values))
	for i, o := range s.Observations {
		frame[i] = entity.FramePoint{
			Date:          o.Date,
			Value:         o.Value,
			MovingAverage: ma[i],
			RSI:           rsi[i],
			SMI:           smi[i],
		}
	}
	return frame, nil
}

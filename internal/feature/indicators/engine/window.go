package engine

import (
	talib "github.com/markcheno/go-talib"

	"index_backend/internal/feature/indicators/domain/entity"
)

// The talib rolling functions write their result at the last index of each
// window and leave zeros before it. They also index past the input when it is
// shorter than the window, so every call goes through these guards and the
// leading positions are masked as undefined.

// rollingMean returns the trailing mean over period for each position.
func rollingMean(values []float64, period int) []entity.Value {
	out := make([]entity.Value, len(values))
	if len(values) < period {
		return out
	}
	raw := values
	if period > 1 {
		raw = talib.Sma(values, period)
	}
	for i := period - 1; i < len(values); i++ {
		out[i] = entity.Defined(raw[i])
	}
	return out
}

// rollingMax returns the trailing maximum over period for each position.
func rollingMax(values []float64, period int) []entity.Value {
	out := make([]entity.Value, len(values))
	if len(values) < period {
		return out
	}
	raw := values
	if period > 1 {
		raw = talib.Max(values, period)
	}
	for i := period - 1; i < len(values); i++ {
		out[i] = entity.Defined(raw[i])
	}
	return out
}

// rollingMin returns the trailing minimum over period for each position.
func rollingMin(values []float64, period int) []entity.Value {
	out := make([]entity.Value, len(values))
	if len(values) < period {
		return out
	}
	raw := values
	if period > 1 {
		raw = talib.Min(values, period)
	}
	for i := period - 1; i < len(values); i++ {
		out[i] = entity.Defined(raw[i])
	}
	return out
}

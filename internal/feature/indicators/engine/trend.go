package engine

import "index_backend/internal/feature/indicators/domain/entity"

const (
	// DefaultTrendWindow is the number of trailing observations classified.
	DefaultTrendWindow = 30
	// TrendThreshold is the percent move beyond which a window is directional.
	TrendThreshold = 5.0
)

// Classify labels the last window observations of s by their percent change
// from first to last. A move of exactly ±TrendThreshold is sideways.
// A zero starting value cannot produce a percentage and is reported as
// insufficient data.
func Classify(s entity.Series, window int) entity.TrendResult {
	if window <= 0 {
		window = DefaultTrendWindow
	}
	obs := s.Observations
	if len(obs) > window {
		obs = obs[len(obs)-window:]
	}
	if len(obs) < 2 {
		return entity.TrendResult{Label: entity.TrendInsufficientData}
	}

	first, last := obs[0].Value, obs[len(obs)-1].Value
	if first == 0 {
		return entity.TrendResult{Label: entity.TrendInsufficientData}
	}

	pct := (last - first) / first * 100
	switch {
	case pct > TrendThreshold:
		return entity.TrendResult{Label: entity.TrendUpward, PercentChange: pct}
	case pct < -TrendThreshold:
		return entity.TrendResult{Label: entity.TrendDownward, PercentChange: pct}
	default:
		return entity.TrendResult{Label: entity.TrendSideways, PercentChange: pct}
	}
}

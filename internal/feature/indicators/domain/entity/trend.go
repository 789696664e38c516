package entity

// TrendLabel is the coarse direction of a series over a recent window.
type TrendLabel string

const (
	TrendInsufficientData TrendLabel = "insufficient_data"
	TrendUpward           TrendLabel = "upward"
	TrendDownward         TrendLabel = "downward"
	TrendSideways         TrendLabel = "sideways"
)

// Description returns the human readable caption used in chart titles.
func (l TrendLabel) Description() string {
	switch l {
	case TrendUpward:
		return "Upwards trend"
	case TrendDownward:
		return "Downwards trend"
	case TrendSideways:
		return "Sideways trend"
	default:
		return "Not enough data"
	}
}

// TrendResult pairs a label with the percent change it was derived from.
// PercentChange is 0 when Label is TrendInsufficientData.
type TrendResult struct {
	Label         TrendLabel
	PercentChange float64
}

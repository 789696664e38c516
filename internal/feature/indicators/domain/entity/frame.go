package entity

import "time"

// FramePoint holds every indicator for one observation date.
type FramePoint struct {
	Date          time.Time
	Value         float64
	MovingAverage Value
	RSI           Value
	SMI           Value
}

// Frame is aligned index-for-index with the series it was computed from.
type Frame []FramePoint

// Analysis is the single-index result: the source series, its indicator
// frame and the trend of its recent tail.
type Analysis struct {
	Series Series
	Frame  Frame
	Trend  TrendResult
}

package entity

import "time"

// AlignedSeries is one side of a comparison, clipped to the shared window.
type AlignedSeries struct {
	Series Series
	// Normalized is the percent change of each value relative to the first
	// clipped value of the same series.
	Normalized []Value
	Frame      Frame
	Trend      TrendResult
}

// Comparison is the result of comparing two indices over their common
// date range. Start and End are both inclusive.
type Comparison struct {
	Start time.Time
	End   time.Time
	Main  AlignedSeries
	Other AlignedSeries
}

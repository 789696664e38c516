// Package entity defines the domain models for the indicators feature.
package entity

import "time"

// Observation is a single dated reading of an index value.
type Observation struct {
	Date  time.Time `json:"date"`
	Value float64   `json:"value"`
}

// Series is the ordered history of one named index.
// Observations are sorted by non-decreasing Date. Equal dates are kept as-is.
type Series struct {
	Name         string        `json:"name"`
	Observations []Observation `json:"observations"`
}

// Len returns the number of observations.
func (s Series) Len() int {
	return len(s.Observations)
}

// Values extracts the numeric values in chronological order.
func (s Series) Values() []float64 {
	out := make([]float64, len(s.Observations))
	for i, o := range s.Observations {
		out[i] = o.Value
	}
	return out
}

// First returns the earliest observation. ok is false for an empty series.
func (s Series) First() (Observation, bool) {
	if len(s.Observations) == 0 {
		return Observation{}, false
	}
	return s.Observations[0], true
}

// Last returns the latest observation. ok is false for an empty series.
func (s Series) Last() (Observation, bool) {
	if len(s.Observations) == 0 {
		return Observation{}, false
	}
	return s.Observations[len(s.Observations)-1], true
}

// Package domain holds the error values shared by the indicators feature.
package domain

import "errors"

var (
	// ErrNotFound is returned when no series matches the requested name.
	ErrNotFound = errors.New("index not found")
	// ErrEmptyIntersection is returned when two series share no date range.
	ErrEmptyIntersection = errors.New("no overlapping history")
	// ErrInvalidPeriod is returned for a non-positive window length.
	ErrInvalidPeriod = errors.New("period must be positive")
)

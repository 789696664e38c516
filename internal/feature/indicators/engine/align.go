package engine

import (
	"time"

	"index_backend/internal/feature/indicators/domain"
	"index_backend/internal/feature/indicators/domain/entity"
)

// Alignment is two series clipped to their shared inclusive date range.
type Alignment struct {
	Start time.Time
	End   time.Time
	A     entity.Series
	B     entity.Series
}

// Align clips a and b to [max(first dates), min(last dates)]. Order and
// duplicate dates are preserved and nothing is interpolated.
// domain.ErrEmptyIntersection is returned when either clipped side is empty.
func Align(a, b entity.Series) (Alignment, error) {
	aFirst, okA := a.First()
	bFirst, okB := b.First()
	if !okA || !okB {
		return Alignment{}, domain.ErrEmptyIntersection
	}
	aLast, _ := a.Last()
	bLast, _ := b.Last()

	start := aFirst.Date
	if bFirst.Date.After(start) {
		start = bFirst.Date
	}
	end := aLast.Date
	if bLast.Date.Before(end) {
		end = bLast.Date
	}
	if start.After(end) {
		return Alignment{}, domain.ErrEmptyIntersection
	}

	ca := clip(a, start, end)
	cb := clip(b, start, end)
	if ca.Len() == 0 || cb.Len() == 0 {
		return Alignment{}, domain.ErrEmptyIntersection
	}
	return Alignment{Start: start, End: end, A: ca, B: cb}, nil
}

func clip(s entity.Series, start, end time.Time) entity.Series {
	out := entity.Series{Name: s.Name}
	for _, o := range s.Observations {
		if o.Date.Before(start) || o.Date.After(end) {
			continue
		}
		out.Observations = append(out.Observations, o)
	}
	return out
}

// Normalize rebases s to the percent change from its first value:
// (v/first - 1) * 100. A zero first value leaves every position undefined.
func Normalize(s entity.Series) []entity.Value {
	out := make([]entity.Value, s.Len())
	first, ok := s.First()
	if !ok || first.Value == 0 {
		return out
	}
	for i, o := range s.Observations {
		out[i] = entity.Defined((o.Value/first.Value - 1) * 100)
	}
	return out
}

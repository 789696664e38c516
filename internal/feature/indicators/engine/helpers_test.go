package engine

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"index_backend/internal/feature/indicators/domain/entity"
)

// u marks an expected undefined position in want slices.
var u = (*float64)(nil)

func f(v float64) *float64 { return &v }

// assertValues compares computed readings against expectations where nil means undefined.
func assertValues(t *testing.T, want []*float64, got []entity.Value) {
	t.Helper()
	if !assert.Len(t, got, len(want)) {
		return
	}
	for i := range want {
		if want[i] == nil {
			assert.False(t, got[i].Valid, "position %d should be undefined, got %v", i, got[i].Float)
			continue
		}
		if assert.True(t, got[i].Valid, "position %d should be defined", i) {
			assert.InDelta(t, *want[i], got[i].Float, 1e-9, "position %d", i)
		}
	}
}

func day(d int) time.Time {
	return time.Date(2024, time.January, d, 0, 0, 0, 0, time.UTC)
}

// seriesOf builds a daily series starting at startDay.
func seriesOf(name string, startDay int, values ...float64) entity.Series {
	s := entity.Series{Name: name}
	for i, v := range values {
		s.Observations = append(s.Observations, entity.Observation{Date: day(startDay + i), Value: v})
	}
	return s
}

func ramp(n int, start, step float64) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = start + float64(i)*step
	}
	return out
}

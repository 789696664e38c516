package usecase_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"index_backend/internal/feature/indicators/domain"
	"index_backend/internal/feature/indicators/domain/entity"
	"index_backend/internal/feature/indicators/usecase"
)

// ErrDB はモックと期待値の間で共有されるセンチネルエラーです。
var ErrDB = errors.New("database error")

// mockSeriesStore はSeriesStoreインターフェースのモック実装です。
type mockSeriesStore struct {
	LookupFunc  func(ctx context.Context, name string) (entity.Series, error)
	LookupCalls []string
}

func (m *mockSeriesStore) Lookup(ctx context.Context, name string) (entity.Series, error) {
	m.LookupCalls = append(m.LookupCalls, name)
	if m.LookupFunc != nil {
		return m.LookupFunc(ctx, name)
	}
	return entity.Series{}, errors.New("LookupFunc is not implemented")
}

// storeOf は名前を正規化して引くインメモリのモックを返します。
func storeOf(series ...entity.Series) *mockSeriesStore {
	byKey := map[string]entity.Series{}
	for _, s := range series {
		byKey[strings.ToLower(s.Name)] = s
	}
	return &mockSeriesStore{
		LookupFunc: func(ctx context.Context, name string) (entity.Series, error) {
			s, ok := byKey[strings.ToLower(strings.TrimSpace(name))]
			if !ok {
				return entity.Series{}, domain.ErrNotFound
			}
			return s, nil
		},
	}
}

func day(d int) time.Time {
	return time.Date(2024, time.January, d, 0, 0, 0, 0, time.UTC)
}

func dailySeries(name string, startDay int, values ...float64) entity.Series {
	s := entity.Series{Name: name}
	for i, v := range values {
		s.Observations = append(s.Observations, entity.Observation{Date: day(startDay + i), Value: v})
	}
	return s
}

func rising(n int, start float64) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = start + float64(i)
	}
	return out
}

func TestIndicatorsUsecase_GetIndicators(t *testing.T) {
	ctx := context.Background()
	nifty := dailySeries("NIFTY 50", 1, rising(20, 100)...)

	testCases := []struct {
		name        string
		input       string
		store       *mockSeriesStore
		expectedErr error
		verify      func(t *testing.T, got entity.Analysis)
	}{
		{
			name:  "success: frame and trend for the whole series",
			input: "  nifty 50 ",
			store: storeOf(nifty),
			verify: func(t *testing.T, got entity.Analysis) {
				assert.Equal(t, "NIFTY 50", got.Series.Name)
				require.Len(t, got.Frame, 20)
				assert.False(t, got.Frame[12].MovingAverage.Valid)
				assert.True(t, got.Frame[13].MovingAverage.Valid)
				assert.Equal(t, entity.Defined(100), got.Frame[19].RSI)
				assert.Equal(t, entity.TrendUpward, got.Trend.Label)
				assert.InDelta(t, 19.0, got.Trend.PercentChange, 1e-9)
			},
		},
		{
			name:  "success: single observation is insufficient",
			input: "tiny",
			store: storeOf(dailySeries("TINY", 1, 42)),
			verify: func(t *testing.T, got entity.Analysis) {
				require.Len(t, got.Frame, 1)
				assert.False(t, got.Frame[0].MovingAverage.Valid)
				assert.False(t, got.Frame[0].RSI.Valid)
				assert.False(t, got.Frame[0].SMI.Valid)
				assert.Equal(t, entity.TrendResult{Label: entity.TrendInsufficientData}, got.Trend)
			},
		},
		{
			name:        "error: unknown name",
			input:       "missing",
			store:       storeOf(nifty),
			expectedErr: domain.ErrNotFound,
		},
		{
			name:        "error: empty series counts as not found",
			input:       "EMPTY",
			store:       storeOf(entity.Series{Name: "EMPTY"}),
			expectedErr: domain.ErrNotFound,
		},
		{
			name:  "error: store failure is propagated",
			input: "NIFTY 50",
			store: &mockSeriesStore{LookupFunc: func(ctx context.Context, name string) (entity.Series, error) {
				return entity.Series{}, ErrDB
			}},
			expectedErr: ErrDB,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			uc := usecase.NewIndicatorsUsecase(tc.store)

			got, err := uc.GetIndicators(ctx, tc.input)

			if tc.expectedErr != nil {
				if !errors.Is(err, tc.expectedErr) {
					t.Fatalf("expected %v, got %v", tc.expectedErr, err)
				}
				return
			}
			require.NoError(t, err)
			assert.Equal(t, []string{tc.input}, tc.store.LookupCalls)
			tc.verify(t, got)
		})
	}
}

func TestIndicatorsUsecase_GetIndicators_Idempotent(t *testing.T) {
	uc := usecase.NewIndicatorsUsecase(storeOf(dailySeries("BANK", 1, 100, 98, 103, 101, 107, 104, 110, 108, 111, 115, 113, 118, 116, 121, 119, 124)))

	first, err := uc.GetIndicators(context.Background(), "bank")
	require.NoError(t, err)
	second, err := uc.GetIndicators(context.Background(), "BANK")
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestIndicatorsUsecase_GetComparison(t *testing.T) {
	ctx := context.Background()

	// Jan 1..10 と Jan 5..15
	a := dailySeries("A", 1, 100, 100, 100, 100, 100, 101, 102, 103, 104, 105)
	b := dailySeries("B", 5, rising(11, 50)...)
	// Jan 20..25
	late := dailySeries("LATE", 20, 1, 2, 3, 4, 5, 6)

	t.Run("success: clipped, normalized and classified on the shared window", func(t *testing.T) {
		uc := usecase.NewIndicatorsUsecase(storeOf(a, b))

		got, err := uc.GetComparison(ctx, "a", "B ")
		require.NoError(t, err)

		assert.Equal(t, day(5), got.Start)
		assert.Equal(t, day(10), got.End)
		require.Equal(t, 6, got.Main.Series.Len())
		require.Equal(t, 6, got.Other.Series.Len())
		require.Len(t, got.Main.Normalized, 6)
		require.Len(t, got.Main.Frame, 6)

		assert.Equal(t, entity.Defined(0), got.Main.Normalized[0])
		assert.Equal(t, entity.Defined(0), got.Other.Normalized[0])
		assert.InDelta(t, 5.0, got.Main.Normalized[5].Float, 1e-9)
		assert.InDelta(t, 10.0, got.Other.Normalized[5].Float, 1e-9)

		// 100 -> 105 on the clipped window is exactly +5%, so sideways
		assert.Equal(t, entity.TrendSideways, got.Main.Trend.Label)
		assert.Equal(t, entity.TrendUpward, got.Other.Trend.Label)

		// indicators are computed on the clipped window, too short for a 14 period
		for _, p := range got.Main.Frame {
			assert.False(t, p.MovingAverage.Valid)
		}
	})

	t.Run("error: disjoint ranges", func(t *testing.T) {
		uc := usecase.NewIndicatorsUsecase(storeOf(a, late))

		_, err := uc.GetComparison(ctx, "A", "LATE")
		if !errors.Is(err, domain.ErrEmptyIntersection) {
			t.Fatalf("expected ErrEmptyIntersection, got %v", err)
		}
		assert.False(t, errors.Is(err, domain.ErrNotFound))
	})

	t.Run("error: main index not found", func(t *testing.T) {
		store := storeOf(b)
		uc := usecase.NewIndicatorsUsecase(store)

		_, err := uc.GetComparison(ctx, "A", "B")
		if !errors.Is(err, domain.ErrNotFound) {
			t.Fatalf("expected ErrNotFound, got %v", err)
		}
		// 2つ目の系列は引かない
		assert.Equal(t, []string{"A"}, store.LookupCalls)
	})

	t.Run("error: other index not found", func(t *testing.T) {
		uc := usecase.NewIndicatorsUsecase(storeOf(a))

		_, err := uc.GetComparison(ctx, "A", "B")
		if !errors.Is(err, domain.ErrNotFound) {
			t.Fatalf("expected ErrNotFound, got %v", err)
		}
	})
}

package cache

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/go-redis/redismock/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"index_backend/internal/feature/indicators/domain"
	"index_backend/internal/feature/indicators/domain/entity"
)

// mockSeriesRepository はテスト用のSeriesRepositoryモック実装です。
type mockSeriesRepository struct {
	lookupFn      func(ctx context.Context, name string) (entity.Series, error)
	listNamesFn   func(ctx context.Context) ([]string, error)
	upsertBatchFn func(ctx context.Context, name string, obs []entity.Observation) error
}

func (m *mockSeriesRepository) Lookup(ctx context.Context, name string) (entity.Series, error) {
	if m.lookupFn != nil {
		return m.lookupFn(ctx, name)
	}
	return entity.Series{}, nil
}

func (m *mockSeriesRepository) ListNames(ctx context.Context) ([]string, error) {
	if m.listNamesFn != nil {
		return m.listNamesFn(ctx)
	}
	return nil, nil
}

func (m *mockSeriesRepository) UpsertBatch(ctx context.Context, name string, obs []entity.Observation) error {
	if m.upsertBatchFn != nil {
		return m.upsertBatchFn(ctx, name, obs)
	}
	return nil
}

// recordingObserver は観測結果を順に記録します。
type recordingObserver struct {
	results []string
}

func (r *recordingObserver) ObserveCache(result string) {
	r.results = append(r.results, result)
}

func sampleSeries() entity.Series {
	return entity.Series{
		Name: "Nifty 50",
		Observations: []entity.Observation{
			{Date: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), Value: 100},
			{Date: time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC), Value: 101.5},
		},
	}
}

// TestNewCachingSeriesStore_Defaults はデフォルト値（TTLとnamespace）が正しく設定されることを検証します。
func TestNewCachingSeriesStore_Defaults(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name              string
		ttl               time.Duration
		namespace         string
		expectedTTL       time.Duration
		expectedNamespace string
	}{
		{"zero values", 0, "", 5 * time.Minute, "indices"},
		{"negative ttl uses default", -time.Minute, "", 5 * time.Minute, "indices"},
		{"custom values preserved", 10 * time.Minute, "custom", 10 * time.Minute, "custom"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			store := NewCachingSeriesStore(nil, tt.ttl, &mockSeriesRepository{}, tt.namespace)
			assert.Equal(t, tt.expectedTTL, store.ttl)
			assert.Equal(t, tt.expectedNamespace, store.namespace)
		})
	}
}

// TestCachingSeriesStore_Lookup_NilRedis はRedisがnilの場合に内部ストアを直接呼び出すことを検証します。
func TestCachingSeriesStore_Lookup_NilRedis(t *testing.T) {
	t.Parallel()

	inner := &mockSeriesRepository{
		lookupFn: func(ctx context.Context, name string) (entity.Series, error) {
			return sampleSeries(), nil
		},
	}
	store := NewCachingSeriesStore(nil, 0, inner, "")

	got, err := store.Lookup(context.Background(), "nifty 50")
	require.NoError(t, err)
	assert.Equal(t, sampleSeries(), got)
}

// TestCachingSeriesStore_Lookup_CacheHit はキャッシュヒット時に内部ストアを呼ばないことを検証します。
func TestCachingSeriesStore_Lookup_CacheHit(t *testing.T) {
	t.Parallel()

	rdb, mock := redismock.NewClientMock()
	defer func() { _ = rdb.Close() }()

	cached, _ := json.Marshal(sampleSeries())
	// 名前は正規化されたキーで参照される
	mock.ExpectGet("indices:series:nifty_50").SetVal(string(cached))

	innerCalled := false
	inner := &mockSeriesRepository{
		lookupFn: func(ctx context.Context, name string) (entity.Series, error) {
			innerCalled = true
			return entity.Series{}, nil
		},
	}
	obs := &recordingObserver{}
	store := NewCachingSeriesStore(rdb, 5*time.Minute, inner, "indices").WithObserver(obs)

	got, err := store.Lookup(context.Background(), "  NIFTY 50 ")
	require.NoError(t, err)
	assert.False(t, innerCalled, "inner store should not be called on cache hit")
	assert.Equal(t, sampleSeries(), got)
	assert.Equal(t, []string{resultHit}, obs.results)
	assert.NoError(t, mock.ExpectationsWereMet())
}

// TestCachingSeriesStore_Lookup_CacheMiss はキャッシュミス時に内部ストアから取得し保存することを検証します。
func TestCachingSeriesStore_Lookup_CacheMiss(t *testing.T) {
	t.Parallel()

	rdb, mock := redismock.NewClientMock()
	defer func() { _ = rdb.Close() }()

	expected, _ := json.Marshal(sampleSeries())
	mock.ExpectGet("indices:series:nifty_50").RedisNil()
	mock.ExpectSet("indices:series:nifty_50", expected, 5*time.Minute).SetVal("OK")

	inner := &mockSeriesRepository{
		lookupFn: func(ctx context.Context, name string) (entity.Series, error) {
			return sampleSeries(), nil
		},
	}
	obs := &recordingObserver{}
	store := NewCachingSeriesStore(rdb, 5*time.Minute, inner, "indices").WithObserver(obs)

	got, err := store.Lookup(context.Background(), "Nifty 50")
	require.NoError(t, err)
	assert.Equal(t, sampleSeries(), got)
	assert.Equal(t, []string{resultMiss}, obs.results)
	assert.NoError(t, mock.ExpectationsWereMet())
}

// TestCachingSeriesStore_Lookup_NotFoundIsNotCached は見つからない結果をキャッシュしないことを検証します。
func TestCachingSeriesStore_Lookup_NotFoundIsNotCached(t *testing.T) {
	t.Parallel()

	rdb, mock := redismock.NewClientMock()
	defer func() { _ = rdb.Close() }()

	mock.ExpectGet("indices:series:missing").RedisNil()

	inner := &mockSeriesRepository{
		lookupFn: func(ctx context.Context, name string) (entity.Series, error) {
			return entity.Series{}, domain.ErrNotFound
		},
	}
	store := NewCachingSeriesStore(rdb, 5*time.Minute, inner, "indices")

	_, err := store.Lookup(context.Background(), "missing")
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

// TestCachingSeriesStore_Lookup_CorruptedCache は破損したキャッシュを削除して内部ストアにフォールバックすることを検証します。
func TestCachingSeriesStore_Lookup_CorruptedCache(t *testing.T) {
	t.Parallel()

	rdb, mock := redismock.NewClientMock()
	defer func() { _ = rdb.Close() }()

	expected, _ := json.Marshal(sampleSeries())
	mock.ExpectGet("indices:series:nifty_50").SetVal("invalid json")
	mock.ExpectDel("indices:series:nifty_50").SetVal(1)
	mock.ExpectSet("indices:series:nifty_50", expected, 5*time.Minute).SetVal("OK")

	inner := &mockSeriesRepository{
		lookupFn: func(ctx context.Context, name string) (entity.Series, error) {
			return sampleSeries(), nil
		},
	}
	obs := &recordingObserver{}
	store := NewCachingSeriesStore(rdb, 5*time.Minute, inner, "indices").WithObserver(obs)

	got, err := store.Lookup(context.Background(), "Nifty 50")
	require.NoError(t, err)
	assert.Equal(t, sampleSeries(), got)
	assert.Equal(t, []string{resultError}, obs.results)
	assert.NoError(t, mock.ExpectationsWereMet())
}

// TestCachingSeriesStore_Lookup_RedisError はRedis障害時も内部ストアで応答することを検証します。
func TestCachingSeriesStore_Lookup_RedisError(t *testing.T) {
	t.Parallel()

	rdb, mock := redismock.NewClientMock()
	defer func() { _ = rdb.Close() }()

	expected, _ := json.Marshal(sampleSeries())
	mock.ExpectGet("indices:series:nifty_50").SetErr(errors.New("connection refused"))
	mock.ExpectSet("indices:series:nifty_50", expected, 5*time.Minute).SetErr(errors.New("connection refused"))

	inner := &mockSeriesRepository{
		lookupFn: func(ctx context.Context, name string) (entity.Series, error) {
			return sampleSeries(), nil
		},
	}
	store := NewCachingSeriesStore(rdb, 5*time.Minute, inner, "indices")

	got, err := store.Lookup(context.Background(), "Nifty 50")
	require.NoError(t, err)
	assert.Equal(t, sampleSeries(), got)
}

// TestCachingSeriesStore_ListNames はキャッシュミス後に一覧を保存し、次回はキャッシュから返すことを検証します。
func TestCachingSeriesStore_ListNames(t *testing.T) {
	t.Parallel()

	rdb, mock := redismock.NewClientMock()
	defer func() { _ = rdb.Close() }()

	names := []string{"Nifty 50", "Sensex"}
	encoded, _ := json.Marshal(names)
	mock.ExpectGet("indices:names").RedisNil()
	mock.ExpectSet("indices:names", encoded, 5*time.Minute).SetVal("OK")
	mock.ExpectGet("indices:names").SetVal(string(encoded))

	calls := 0
	inner := &mockSeriesRepository{
		listNamesFn: func(ctx context.Context) ([]string, error) {
			calls++
			return names, nil
		},
	}
	store := NewCachingSeriesStore(rdb, 5*time.Minute, inner, "indices")

	first, err := store.ListNames(context.Background())
	require.NoError(t, err)
	second, err := store.ListNames(context.Background())
	require.NoError(t, err)

	assert.Equal(t, names, first)
	assert.Equal(t, names, second)
	assert.Equal(t, 1, calls)
	assert.NoError(t, mock.ExpectationsWereMet())
}

// TestCachingSeriesStore_UpsertBatch はUpsert後にシリーズと一覧のキーを無効化することを検証します。
func TestCachingSeriesStore_UpsertBatch(t *testing.T) {
	t.Parallel()

	t.Run("invalidates series and names", func(t *testing.T) {
		t.Parallel()

		rdb, mock := redismock.NewClientMock()
		defer func() { _ = rdb.Close() }()

		mock.ExpectDel("indices:series:nifty_50", "indices:names").SetVal(2)

		var gotName string
		inner := &mockSeriesRepository{
			upsertBatchFn: func(ctx context.Context, name string, obs []entity.Observation) error {
				gotName = name
				return nil
			},
		}
		store := NewCachingSeriesStore(rdb, 5*time.Minute, inner, "indices")

		err := store.UpsertBatch(context.Background(), "Nifty 50", sampleSeries().Observations)
		require.NoError(t, err)
		assert.Equal(t, "Nifty 50", gotName)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("inner error skips invalidation", func(t *testing.T) {
		t.Parallel()

		rdb, mock := redismock.NewClientMock()
		defer func() { _ = rdb.Close() }()

		wantErr := errors.New("database error")
		inner := &mockSeriesRepository{
			upsertBatchFn: func(ctx context.Context, name string, obs []entity.Observation) error {
				return wantErr
			},
		}
		store := NewCachingSeriesStore(rdb, 5*time.Minute, inner, "indices")

		err := store.UpsertBatch(context.Background(), "Nifty 50", sampleSeries().Observations)
		assert.ErrorIs(t, err, wantErr)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("empty batch skips invalidation", func(t *testing.T) {
		t.Parallel()

		rdb, mock := redismock.NewClientMock()
		defer func() { _ = rdb.Close() }()

		store := NewCachingSeriesStore(rdb, 5*time.Minute, &mockSeriesRepository{}, "indices")

		require.NoError(t, store.UpsertBatch(context.Background(), "Nifty 50", nil))
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

// TestCachingSeriesStore_Flush はSCANで名前空間のキーをすべて削除することを検証します。
func TestCachingSeriesStore_Flush(t *testing.T) {
	t.Parallel()

	rdb, mock := redismock.NewClientMock()
	defer func() { _ = rdb.Close() }()

	mock.ExpectScan(0, "indices:*", 200).SetVal([]string{"indices:names", "indices:series:a"}, 7)
	mock.ExpectDel("indices:names", "indices:series:a").SetVal(2)
	mock.ExpectScan(7, "indices:*", 200).SetVal([]string{}, 0)

	store := NewCachingSeriesStore(rdb, 5*time.Minute, &mockSeriesRepository{}, "indices")

	require.NoError(t, store.Flush(context.Background()))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSafe(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "nifty_50", safe("nifty 50"))
	assert.Equal(t, "a_b_c", safe("a:b c"))
}

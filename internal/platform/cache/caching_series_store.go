// Package cache provides caching implementations for repository interfaces.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"index_backend/internal/feature/indicators/adapters"
	"index_backend/internal/feature/indicators/domain/entity"
)

const (
	resultHit   = "hit"
	resultMiss  = "miss"
	resultError = "error"
)

// SeriesRepository is the store being decorated.
type SeriesRepository interface {
	Lookup(ctx context.Context, name string) (entity.Series, error)
	ListNames(ctx context.Context) ([]string, error)
	UpsertBatch(ctx context.Context, name string, obs []entity.Observation) error
}

// Observer receives one call per cache lookup. metrics.Metrics satisfies it.
type Observer interface {
	ObserveCache(result string)
}

// CachingSeriesStore decorates a SeriesRepository with Redis caching.
// Lookup と ListNames を読み取りキャッシュし、UpsertBatch で該当キーを無効化します。
type CachingSeriesStore struct {
	inner     SeriesRepository
	rdb       *redis.Client
	ttl       time.Duration
	namespace string
	observer  Observer
}

// NewCachingSeriesStore decorates a SeriesRepository with Redis caching.
// If ttl is 0, it defaults to 5 minutes. If namespace is empty, it uses "indices".
func NewCachingSeriesStore(rdb *redis.Client, ttl time.Duration, inner SeriesRepository, namespace string) *CachingSeriesStore {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	if namespace == "" {
		namespace = "indices"
	}
	return &CachingSeriesStore{
		inner:     inner,
		rdb:       rdb,
		ttl:       ttl,
		namespace: namespace,
	}
}

// WithObserver attaches a lookup observer and returns the store.
func (c *CachingSeriesStore) WithObserver(o Observer) *CachingSeriesStore {
	c.observer = o
	return c
}

// Lookup returns the series for name, checking the cache first.
func (c *CachingSeriesStore) Lookup(ctx context.Context, name string) (entity.Series, error) {
	if c.rdb == nil {
		return c.inner.Lookup(ctx, name)
	}

	key := c.seriesKey(name)
	var cached entity.Series
	if c.get(ctx, key, &cached) {
		return cached, nil
	}

	out, err := c.inner.Lookup(ctx, name)
	if err != nil {
		return entity.Series{}, err
	}
	c.set(ctx, key, out)
	return out, nil
}

// ListNames returns the distinct index names, checking the cache first.
func (c *CachingSeriesStore) ListNames(ctx context.Context) ([]string, error) {
	if c.rdb == nil {
		return c.inner.ListNames(ctx)
	}

	key := c.namesKey()
	var cached []string
	if c.get(ctx, key, &cached) {
		return cached, nil
	}

	out, err := c.inner.ListNames(ctx)
	if err != nil {
		return nil, err
	}
	c.set(ctx, key, out)
	return out, nil
}

// UpsertBatch writes through to the inner store and invalidates related cache entries.
func (c *CachingSeriesStore) UpsertBatch(ctx context.Context, name string, obs []entity.Observation) error {
	if err := c.inner.UpsertBatch(ctx, name, obs); err != nil {
		return err
	}
	if c.rdb == nil || len(obs) == 0 {
		return nil
	}
	// Best effort: stale entries expire with the TTL anyway.
	_ = c.rdb.Del(ctx, c.seriesKey(name), c.namesKey()).Err()
	return nil
}

// Flush removes every key under the namespace.
func (c *CachingSeriesStore) Flush(ctx context.Context) error {
	if c.rdb == nil {
		return nil
	}
	return c.deleteByPattern(ctx, c.namespace+":*")
}

// get reports whether key held a decodable value. Corrupted entries are deleted.
func (c *CachingSeriesStore) get(ctx context.Context, key string, dst any) bool {
	b, err := c.rdb.Get(ctx, key).Bytes()
	switch {
	case err == redis.Nil:
		c.observe(resultMiss)
		return false
	case err != nil:
		c.observe(resultError)
		return false
	case len(b) == 0:
		c.observe(resultMiss)
		return false
	}
	if err := json.Unmarshal(b, dst); err != nil {
		_ = c.rdb.Del(ctx, key).Err()
		c.observe(resultError)
		return false
	}
	c.observe(resultHit)
	return true
}

func (c *CachingSeriesStore) set(ctx context.Context, key string, v any) {
	if b, err := json.Marshal(v); err == nil {
		_ = c.rdb.Set(ctx, key, b, c.ttl).Err()
	}
}

func (c *CachingSeriesStore) observe(result string) {
	if c.observer != nil {
		c.observer.ObserveCache(result)
	}
}

// seriesKey uses the normalized name so every spelling shares one entry.
func (c *CachingSeriesStore) seriesKey(name string) string {
	return fmt.Sprintf("%s:series:%s", c.namespace, safe(adapters.NameKey(name)))
}

func (c *CachingSeriesStore) namesKey() string {
	return c.namespace + ":names"
}

// deleteByPattern deletes all cache keys matching a given pattern using SCAN.
func (c *CachingSeriesStore) deleteByPattern(ctx context.Context, pattern string) error {
	var cursor uint64
	for {
		keys, cur, err := c.rdb.Scan(ctx, cursor, pattern, 200).Result()
		if err != nil {
			return err
		}
		if len(keys) > 0 {
			if err := c.rdb.Del(ctx, keys...).Err(); err != nil {
				return err
			}
		}
		cursor = cur
		if cursor == 0 {
			break
		}
	}
	return nil
}

// safe escapes characters that are problematic for Redis keys.
func safe(s string) string {
	s = strings.ReplaceAll(s, " ", "_")
	s = strings.ReplaceAll(s, ":", "_")
	return s
}

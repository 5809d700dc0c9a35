package cache

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"
	"warehouse-route-optimizer/internal/domain"
	"warehouse-route-optimizer/internal/platform/obs"

	"github.com/redis/go-redis/v9"
)

const (
	distanceKeyPrefix = "dist:"
	mgetChunk         = 500
)

// RedisDistanceStore keeps pair distances in Redis so that concurrent
// optimizer processes share computed values. Keys are canonical pairs.
type RedisDistanceStore struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewRedisClient parses a redis:// URL and verifies the connection.
func NewRedisClient(ctx context.Context, url string) (*redis.Client, error) {
	opt, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("redis: parse url: %w", err)
	}

	rdb := redis.NewClient(opt)
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis: ping: %w", err)
	}
	return rdb, nil
}

// NewRedisDistanceStore wraps rdb. A zero ttl keeps entries forever.
func NewRedisDistanceStore(rdb *redis.Client, ttl time.Duration) *RedisDistanceStore {
	return &RedisDistanceStore{rdb: rdb, ttl: ttl}
}

func distanceKey(p domain.Pair) string {
	return distanceKeyPrefix + p.Canonical().String()
}

// Fetch cached distances for many pairs. Result keys are canonical.
func (s *RedisDistanceStore) GetMany(
	ctx context.Context,
	pairs []domain.Pair,
) (_ map[domain.Pair]float64, err error) {
	defer obs.Time(ctx, "distance.redis.GetMany")(&err)

	if s.rdb == nil {
		return nil, errors.New("redis distance store: client is nil")
	}

	out := make(map[domain.Pair]float64, len(pairs))
	for start := 0; start < len(pairs); start += mgetChunk {
		chunk := pairs[start:min(start+mgetChunk, len(pairs))]

		keys := make([]string, 0, len(chunk))
		for _, p := range chunk {
			keys = append(keys, distanceKey(p))
		}

		vals, err := s.rdb.MGet(ctx, keys...).Result()
		if err != nil {
			return nil, fmt.Errorf("get redis distances: mget: %w", err)
		}

		for i, v := range vals {
			str, ok := v.(string)
			if !ok {
				continue
			}
			km, err := strconv.ParseFloat(str, 64)
			if err != nil {
				return nil, fmt.Errorf("get redis distances: parse %q=%q: %w", keys[i], str, err)
			}
			out[chunk[i].Canonical()] = km
		}
	}

	return out, nil
}

// Store many pair distances in one pipeline.
func (s *RedisDistanceStore) PutMany(ctx context.Context, distances map[domain.Pair]float64) error {
	if s.rdb == nil {
		return errors.New("redis distance store: client is nil")
	}

	if len(distances) == 0 {
		return nil
	}

	pipe := s.rdb.Pipeline()
	for p, km := range distances {
		pipe.Set(ctx, distanceKey(p), strconv.FormatFloat(km, 'g', -1, 64), s.ttl)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("put redis distances: pipeline exec: %w", err)
	}

	return nil
}

package cache

import (
	"context"
	"testing"
	"time"
	"warehouse-route-optimizer/internal/domain"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

func newTestRedisStore(t *testing.T, ttl time.Duration) (*RedisDistanceStore, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return NewRedisDistanceStore(rdb, ttl), mr
}

func TestRedisDistanceStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	store, _ := newTestRedisStore(t, 0)

	a := domain.Point{Lat: 50.0755, Lon: 14.4378}
	b := domain.Point{Lat: 50.0875, Lon: 14.4213}
	c := domain.Point{Lat: 49.1951, Lon: 16.6068}

	require.NoError(t, store.PutMany(ctx, map[domain.Pair]float64{
		{A: b, B: a}: 1.8234567891234,
	}))

	got, err := store.GetMany(ctx, []domain.Pair{{A: a, B: b}, {A: a, B: c}})
	require.NoError(t, err)
	require.Equal(t, map[domain.Pair]float64{
		domain.Pair{A: a, B: b}.Canonical(): 1.8234567891234,
	}, got)
}

func TestRedisDistanceStoreTTL(t *testing.T) {
	ctx := context.Background()
	store, mr := newTestRedisStore(t, time.Hour)

	p := domain.Pair{A: domain.Point{Lat: 1, Lon: 1}, B: domain.Point{Lat: 2, Lon: 2}}
	require.NoError(t, store.PutMany(ctx, map[domain.Pair]float64{p: 157.2}))
	require.Equal(t, time.Hour, mr.TTL(distanceKey(p)))

	mr.FastForward(2 * time.Hour)
	got, err := store.GetMany(ctx, []domain.Pair{p})
	require.NoError(t, err)
	require.Empty(t, got)
}

func TestRedisDistanceStoreChunks(t *testing.T) {
	ctx := context.Background()
	store, _ := newTestRedisStore(t, 0)

	in := make(map[domain.Pair]float64)
	pairs := make([]domain.Pair, 0, 1200)
	for i := 0; i < 1200; i++ {
		p := domain.Pair{A: domain.Point{Lat: float64(i)}, B: domain.Point{Lat: float64(i), Lon: 1}}
		in[p] = float64(i)
		pairs = append(pairs, p)
	}
	require.NoError(t, store.PutMany(ctx, in))

	got, err := store.GetMany(ctx, pairs)
	require.NoError(t, err)
	require.Len(t, got, 1200)
}

func TestRedisDistanceStoreCorruptValue(t *testing.T) {
	ctx := context.Background()
	store, mr := newTestRedisStore(t, 0)

	p := domain.Pair{A: domain.Point{Lat: 1}, B: domain.Point{Lat: 2}}
	require.NoError(t, mr.Set(distanceKey(p), "not-a-number"))

	_, err := store.GetMany(ctx, []domain.Pair{p})
	require.Error(t, err)
}

func TestSQLCachesRequireDB(t *testing.T) {
	ctx := context.Background()

	_, err := NewSQLGeocodeCache(nil).GetMany(ctx, []string{"a"})
	require.Error(t, err)
	require.Error(t, NewSQLGeocodeCache(nil).PutMany(ctx, map[string]domain.Point{"a": {}}))

	_, err = NewSQLDistanceCache(nil).GetMany(ctx, []domain.Pair{{}})
	require.Error(t, err)
	require.Error(t, NewSQLDistanceCache(nil).PutMany(ctx, map[domain.Pair]float64{{}: 1}))
}

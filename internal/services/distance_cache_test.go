package services

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"warehouse-route-optimizer/internal/domain"

	"github.com/stretchr/testify/require"
)

type memoryStore struct {
	mu sync.Mutex
	m  map[domain.Pair]float64
}

func (s *memoryStore) GetMany(_ context.Context, pairs []domain.Pair) (map[domain.Pair]float64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make(map[domain.Pair]float64)
	for _, p := range pairs {
		if d, ok := s.m[p.Canonical()]; ok {
			out[p.Canonical()] = d
		}
	}
	return out, nil
}

func (s *memoryStore) PutMany(_ context.Context, distances map[domain.Pair]float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for p, d := range distances {
		s.m[p.Canonical()] = d
	}
	return nil
}

func TestDistanceCacheSymmetricAndMemoized(t *testing.T) {
	var calls atomic.Int64
	c, err := NewDistanceCache(func(a, b domain.Point) float64 {
		calls.Add(1)
		return planar(a, b)
	}, nil)
	require.NoError(t, err)

	a := domain.Point{Lat: 50.08, Lon: 14.42}
	b := domain.Point{Lat: 50.10, Lon: 14.39}

	first := c.Distance(a, b)
	require.Equal(t, first, c.Distance(b, a))
	require.Equal(t, first, c.Distance(a, b))
	require.EqualValues(t, 1, calls.Load(), "distance computed once")
	require.Equal(t, 1, c.Len())
}

func TestDistanceCacheConcurrentMisses(t *testing.T) {
	var calls atomic.Int64
	c, err := NewDistanceCache(func(a, b domain.Point) float64 {
		calls.Add(1)
		return planar(a, b)
	}, nil)
	require.NoError(t, err)

	a := domain.Point{Lat: 1, Lon: 2}
	b := domain.Point{Lat: 3, Lon: 4}

	var wg sync.WaitGroup
	for i := 0; i < 64; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if i%2 == 0 {
				c.Distance(a, b)
			} else {
				c.Distance(b, a)
			}
		}()
	}
	wg.Wait()

	require.EqualValues(t, 1, calls.Load())
}

func TestDistanceCacheNilFunc(t *testing.T) {
	_, err := NewDistanceCache(nil, nil)
	require.Error(t, err)
}

func TestDistanceCacheWarmAndFlush(t *testing.T) {
	ctx := context.Background()
	store := &memoryStore{m: map[domain.Pair]float64{}}
	stops := []domain.Point{{Lat: 0, Lon: 0}, {Lat: 0, Lon: 1}, {Lat: 1, Lon: 1}}
	warehouse := domain.Point{Lat: 0.5, Lon: 0.5}

	c, err := NewDistanceCache(planar, store)
	require.NoError(t, err)
	c.Distance(stops[0], stops[1])
	c.Distance(stops[1], stops[2])
	c.Distance(warehouse, stops[0])

	require.NoError(t, c.Flush(ctx, stops))
	require.Len(t, store.m, 2, "warehouse pairs are not persisted")

	var calls atomic.Int64
	warm, err := NewDistanceCache(func(a, b domain.Point) float64 {
		calls.Add(1)
		return planar(a, b)
	}, store)
	require.NoError(t, err)
	require.NoError(t, warm.Warm(ctx, stops))
	require.Equal(t, 2, warm.Len())

	require.Equal(t, 1.0, warm.Distance(stops[1], stops[0]))
	require.EqualValues(t, 0, calls.Load(), "warmed pair served from memory")

	// Nothing new since the last flush.
	require.NoError(t, warm.Flush(ctx, stops))
}

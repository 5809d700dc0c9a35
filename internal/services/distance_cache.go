package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"warehouse-route-optimizer/internal/domain"
	"warehouse-route-optimizer/internal/platform/obs"
	"warehouse-route-optimizer/internal/ports"

	"golang.org/x/sync/singleflight"
)

// DistanceCache memoizes pairwise distances. A pair is computed at most
// once per process: lookups try (a, b) then (b, a), and a miss computes
// and stores the value under (a, b). Entries are never evicted.
//
// The cache is safe for concurrent use. Concurrent misses on the same
// unordered pair share a single computation.
type DistanceCache struct {
	fn    ports.DistanceFunc
	store ports.DistanceStore

	mu    sync.RWMutex
	m     map[domain.Pair]float64
	fresh map[domain.Pair]float64
	group singleflight.Group
}

// NewDistanceCache wraps fn. store may be nil.
func NewDistanceCache(fn ports.DistanceFunc, store ports.DistanceStore) (*DistanceCache, error) {
	if fn == nil {
		return nil, errors.New("distance cache: distance function is nil")
	}

	return &DistanceCache{
		fn:    fn,
		store: store,
		m:     make(map[domain.Pair]float64),
		fresh: make(map[domain.Pair]float64),
	}, nil
}

// Distance implements domain.Distancer.
func (c *DistanceCache) Distance(a, b domain.Point) float64 {
	if d, ok := c.lookup(a, b); ok {
		return d
	}

	key := domain.Pair{A: a, B: b}.Canonical().String()
	v, _, _ := c.group.Do(key, func() (any, error) {
		if d, ok := c.lookup(a, b); ok {
			return d, nil
		}

		d := c.fn(a, b)

		c.mu.Lock()
		c.m[domain.Pair{A: a, B: b}] = d
		if c.store != nil {
			c.fresh[domain.Pair{A: a, B: b}.Canonical()] = d
		}
		c.mu.Unlock()
		return d, nil
	})

	return v.(float64)
}

func (c *DistanceCache) lookup(a, b domain.Point) (float64, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if d, ok := c.m[domain.Pair{A: a, B: b}]; ok {
		return d, true
	}
	d, ok := c.m[domain.Pair{A: b, B: a}]
	return d, ok
}

// Len returns the number of cached pairs.
func (c *DistanceCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.m)
}

// Warm loads every stop-to-stop pair already present in the backing store.
// It is a no-op without a store.
func (c *DistanceCache) Warm(ctx context.Context, stops []domain.Point) (err error) {
	if c.store == nil || len(stops) < 2 {
		return nil
	}
	defer obs.Time(ctx, "distance.cache.Warm")(&err)

	pairs := make([]domain.Pair, 0, len(stops)*(len(stops)-1)/2)
	for i := range stops {
		for j := i + 1; j < len(stops); j++ {
			pairs = append(pairs, domain.Pair{A: stops[i], B: stops[j]}.Canonical())
		}
	}

	hits, err := c.store.GetMany(ctx, pairs)
	if err != nil {
		return fmt.Errorf("warm distance cache: %w", err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	for p, d := range hits {
		if _, ok := c.m[p]; ok {
			continue
		}
		if _, ok := c.m[domain.Pair{A: p.B, B: p.A}]; ok {
			continue
		}
		c.m[p] = d
	}

	log.Printf("op=distance.cache.Warm pairs=%d hits=%d", len(pairs), len(hits))
	return nil
}

// Flush writes pairs computed since the previous flush to the backing store.
// Warehouse pairs are skipped: warehouses are random and rarely repeat.
func (c *DistanceCache) Flush(ctx context.Context, stops []domain.Point) error {
	if c.store == nil {
		return nil
	}

	isStop := make(map[domain.Point]struct{}, len(stops))
	for _, s := range stops {
		isStop[s] = struct{}{}
	}

	c.mu.Lock()
	out := make(map[domain.Pair]float64)
	for p, d := range c.fresh {
		_, okA := isStop[p.A]
		_, okB := isStop[p.B]
		if okA && okB {
			out[p] = d
		}
	}
	c.fresh = make(map[domain.Pair]float64)
	c.mu.Unlock()

	if len(out) == 0 {
		return nil
	}

	if err := c.store.PutMany(ctx, out); err != nil {
		return fmt.Errorf("flush distance cache: %w", err)
	}
	return nil
}

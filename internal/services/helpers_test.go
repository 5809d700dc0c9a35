package services

import (
	"math"
	"math/rand/v2"
	"testing"
	"warehouse-route-optimizer/internal/domain"

	"github.com/stretchr/testify/require"
)

func planar(a, b domain.Point) float64 {
	return math.Hypot(a.Lat-b.Lat, a.Lon-b.Lon)
}

func newRNG(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, seed+1))
}

func newTestCache(t *testing.T) *DistanceCache {
	t.Helper()
	c, err := NewDistanceCache(planar, nil)
	require.NoError(t, err)
	return c
}

// requirePartition asserts every stop appears exactly once across routes.
func requirePartition(t *testing.T, s *domain.Solution, stops []domain.Point) {
	t.Helper()

	seen := make(map[domain.Point]int)
	for _, r := range s.Routes {
		for _, p := range r {
			seen[p]++
		}
	}

	require.Equal(t, len(stops), s.StopCount(), "stop count")
	for _, p := range stops {
		require.Equal(t, 1, seen[p], "stop %v placed %d times", p, seen[p])
	}
}

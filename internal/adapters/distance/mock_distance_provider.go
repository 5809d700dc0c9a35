package distance

import (
	"math"
	"warehouse-route-optimizer/internal/domain"
	"warehouse-route-optimizer/internal/ports"
)

type MockPair struct {
	From, To domain.Point
	Km       float64
}

// NewMockDistance returns a symmetric table lookup. Pairs missing from the
// table fall back to planar distance in degrees, which keeps random
// warehouse locations usable in tests.
func NewMockDistance(pairs []MockPair) ports.DistanceFunc {
	m := make(map[domain.Pair]float64, len(pairs))
	for _, p := range pairs {
		m[domain.Pair{A: p.From, B: p.To}.Canonical()] = p.Km
	}

	return func(a, b domain.Point) float64 {
		if km, ok := m[domain.Pair{A: a, B: b}.Canonical()]; ok {
			return km
		}
		return math.Hypot(a.Lat-b.Lat, a.Lon-b.Lon)
	}
}

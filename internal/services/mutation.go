package services

import (
	"fmt"
	"math/rand/v2"
	"warehouse-route-optimizer/internal/domain"
)

// Mutate swaps two distinct stop positions of s in place and invalidates
// its cost. Positions are drawn from non-empty routes only; the two stops
// may share a route. A solution with a single stop is left unchanged.
func Mutate(rng *rand.Rand, s *domain.Solution) error {
	nonEmpty := make([]int, 0, len(s.Routes))
	for i, r := range s.Routes {
		if len(r) > 0 {
			nonEmpty = append(nonEmpty, i)
		}
	}
	if len(nonEmpty) == 0 {
		return fmt.Errorf("mutate: %w", domain.ErrDegenerateRoutes)
	}
	if s.StopCount() < 2 {
		return nil
	}

	t1 := nonEmpty[rng.IntN(len(nonEmpty))]
	p1 := rng.IntN(len(s.Routes[t1]))

	var t2, p2 int
	for {
		t2 = nonEmpty[rng.IntN(len(nonEmpty))]
		p2 = rng.IntN(len(s.Routes[t2]))
		if t1 != t2 || p1 != p2 {
			break
		}
	}

	s.Routes[t1][p1], s.Routes[t2][p2] = s.Routes[t2][p2], s.Routes[t1][p1]
	s.Invalidate()
	return nil
}

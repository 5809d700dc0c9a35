package services

import (
	"math/rand/v2"
	"warehouse-route-optimizer/internal/domain"
)

// SelectParent picks a parent from a population ranked ascending by cost
// using stochastic acceptance anchored on the best cost: a uniformly drawn
// candidate i is accepted when best*r <= cost(i) for uniform r in [0,1).
//
// Since best is the population minimum the test passes for virtually every
// draw, so selection is close to uniform. ranked must be non-empty.
func SelectParent(rng *rand.Rand, ranked []*domain.Solution, d domain.Distancer) *domain.Solution {
	best := ranked[0].Cost(d)
	for {
		i := rng.IntN(len(ranked))
		if best*rng.Float64() <= ranked[i].Cost(d) {
			return ranked[i]
		}
	}
}

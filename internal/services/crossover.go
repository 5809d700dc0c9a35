package services

import (
	"math/rand/v2"
	"warehouse-route-optimizer/internal/domain"
)

// Crossover builds a single child from two parents.
//
// The warehouse is the midpoint of the parents' warehouses. Each route
// starts as the first half (rounded down) of parent1's route at the same
// index. Stops of each parent2 route not yet in the child are appended, in
// parent2 order, to one truck chosen uniformly at random. Stops that only
// appeared in the dropped halves of parent1 are then re-inserted the same
// way, so the child covers the union of the parents' stops exactly once.
func Crossover(rng *rand.Rand, parent1, parent2 *domain.Solution) *domain.Solution {
	trucks := len(parent1.Routes)
	routes := make([][]domain.Point, trucks)
	placed := make(map[domain.Point]struct{}, parent1.StopCount())

	for i, r := range parent1.Routes {
		half := r[:len(r)/2]
		routes[i] = append(make([]domain.Point, 0, len(r)), half...)
		for _, p := range half {
			placed[p] = struct{}{}
		}
	}

	appendMissing := func(route []domain.Point) {
		t := -1
		for _, p := range route {
			if _, ok := placed[p]; ok {
				continue
			}
			if t < 0 {
				t = rng.IntN(trucks)
			}
			routes[t] = append(routes[t], p)
			placed[p] = struct{}{}
		}
	}

	for _, r := range parent2.Routes {
		appendMissing(r)
	}
	for _, r := range parent1.Routes {
		appendMissing(r[len(r)/2:])
	}

	return domain.NewSolution(domain.Midpoint(parent1.Warehouse, parent2.Warehouse), routes)
}

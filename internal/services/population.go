package services

import (
	"fmt"
	"math/rand/v2"
	"warehouse-route-optimizer/internal/domain"
)

// PopulationFactory produces random solutions over a fixed stop set and
// truck count.
type PopulationFactory struct {
	Stops  []domain.Point
	Box    domain.BoundingBox
	Trucks int
}

// NewPopulationFactory validates the inputs and computes the bounding box.
// Stops sharing a coordinate collapse into a single stop.
func NewPopulationFactory(stops []domain.Point, trucks int) (*PopulationFactory, error) {
	if trucks < 1 {
		return nil, fmt.Errorf("population factory: %w", domain.ErrNoTrucks)
	}

	uniq := make([]domain.Point, 0, len(stops))
	seen := make(map[domain.Point]struct{}, len(stops))
	for _, s := range stops {
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		uniq = append(uniq, s)
	}

	box, err := domain.NewBoundingBox(uniq)
	if err != nil {
		return nil, fmt.Errorf("population factory: %w", err)
	}

	return &PopulationFactory{Stops: uniq, Box: box, Trucks: trucks}, nil
}

// RandomSolution places the warehouse uniformly inside the box and assigns
// every stop to a uniformly chosen truck, keeping input order per route.
func RandomSolution(rng *rand.Rand, box domain.BoundingBox, stops []domain.Point, trucks int) *domain.Solution {
	warehouse := box.At(rng.Float64(), rng.Float64())

	routes := make([][]domain.Point, trucks)
	for i := range routes {
		routes[i] = []domain.Point{}
	}
	for _, s := range stops {
		t := rng.IntN(trucks)
		routes[t] = append(routes[t], s)
	}

	return domain.NewSolution(warehouse, routes)
}

func (f *PopulationFactory) RandomSolution(rng *rand.Rand) *domain.Solution {
	return RandomSolution(rng, f.Box, f.Stops, f.Trucks)
}

// RandomPopulation returns size independent random solutions, unsorted.
func (f *PopulationFactory) RandomPopulation(rng *rand.Rand, size int) []*domain.Solution {
	pop := make([]*domain.Solution, 0, size)
	for i := 0; i < size; i++ {
		pop = append(pop, f.RandomSolution(rng))
	}
	return pop
}

package services

import (
	"testing"
	"warehouse-route-optimizer/internal/domain"

	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/stat"
)

// rankedByCost builds solutions whose single route is a round trip of the
// given lengths, so cost(i) = 2*lengths[i].
func rankedByCost(lengths ...float64) []*domain.Solution {
	pop := make([]*domain.Solution, 0, len(lengths))
	for _, l := range lengths {
		pop = append(pop, domain.NewSolution(domain.Point{}, [][]domain.Point{{{Lat: l}}}))
	}
	return pop
}

func TestSelectParentIsNearUniform(t *testing.T) {
	d := newTestCache(t)
	ranked := rankedByCost(1, 2, 3, 4, 5, 8, 13, 21)

	const draws = 80000
	counts := make([]float64, len(ranked))
	index := make(map[*domain.Solution]int, len(ranked))
	for i, s := range ranked {
		index[s] = i
	}

	rng := newRNG(42)
	for i := 0; i < draws; i++ {
		counts[index[SelectParent(rng, ranked, d)]]++
	}

	expected := make([]float64, len(ranked))
	for i := range expected {
		expected[i] = draws / float64(len(ranked))
	}

	// Critical value for 7 degrees of freedom at p = 0.001.
	chi2 := stat.ChiSquare(counts, expected)
	require.Less(t, chi2, 24.32, "selection deviates from uniform: counts=%v", counts)

	// The best solution gets no meaningful advantage over the worst.
	require.InDelta(t, 1.0, counts[0]/counts[len(counts)-1], 0.1)
}

func TestSelectParentSingleMember(t *testing.T) {
	ranked := rankedByCost(3)
	require.Same(t, ranked[0], SelectParent(newRNG(1), ranked, newTestCache(t)))
}

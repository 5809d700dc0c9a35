package services

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"
	"warehouse-route-optimizer/internal/domain"

	"github.com/stretchr/testify/require"
)

var pragueStops = []domain.Point{
	{Lat: 50.0755, Lon: 14.4378},
	{Lat: 50.0875, Lon: 14.4213},
	{Lat: 50.0611, Lon: 14.4032},
	{Lat: 50.1034, Lon: 14.4502},
	{Lat: 50.0498, Lon: 14.4611},
	{Lat: 50.0930, Lon: 14.3901},
	{Lat: 50.0702, Lon: 14.4855},
}

func TestRandomSolutionIsPartition(t *testing.T) {
	f, err := NewPopulationFactory(pragueStops, 3)
	require.NoError(t, err)

	rng := newRNG(7)
	for i := 0; i < 200; i++ {
		s := f.RandomSolution(rng)
		require.Equal(t, 3, s.TruckCount())
		requirePartition(t, s, pragueStops)

		require.GreaterOrEqual(t, s.Warehouse.Lat, f.Box.MinLat)
		require.LessOrEqual(t, s.Warehouse.Lat, f.Box.MinLat+f.Box.LatRange)
		require.GreaterOrEqual(t, s.Warehouse.Lon, f.Box.MinLon)
		require.LessOrEqual(t, s.Warehouse.Lon, f.Box.MinLon+f.Box.LonRange)
	}
}

func TestRandomSolutionKeepsInputOrderPerRoute(t *testing.T) {
	index := make(map[domain.Point]int)
	for i, p := range pragueStops {
		index[p] = i
	}

	f, err := NewPopulationFactory(pragueStops, 2)
	require.NoError(t, err)

	s := f.RandomSolution(newRNG(3))
	for _, r := range s.Routes {
		for i := 1; i < len(r); i++ {
			require.Less(t, index[r[i-1]], index[r[i]])
		}
	}
}

func TestRandomPopulationSize(t *testing.T) {
	f, err := NewPopulationFactory(pragueStops, 2)
	require.NoError(t, err)

	pop := f.RandomPopulation(newRNG(1), 25)
	require.Len(t, pop, 25)
	for _, s := range pop {
		require.False(t, s.Evaluated())
	}
}

func TestNewPopulationFactoryErrors(t *testing.T) {
	_, err := NewPopulationFactory(nil, 2)
	require.True(t, errors.Is(err, domain.ErrNoStops), "got %v", err)

	_, err = NewPopulationFactory(pragueStops, 0)
	require.True(t, errors.Is(err, domain.ErrNoTrucks), "got %v", err)
}

func TestNewPopulationFactoryRejectsNonFiniteStops(t *testing.T) {
	stops := []domain.Point{{Lat: math.NaN(), Lon: 14.4}, {Lat: 50.1, Lon: 14.2}}
	_, err := NewPopulationFactory(stops, 2)
	require.True(t, errors.Is(err, domain.ErrInvalidPoint), "got %v", err)

	_, err = NewPopulationFactory([]domain.Point{{Lat: 50.1, Lon: math.Inf(1)}}, 1)
	require.True(t, errors.Is(err, domain.ErrInvalidPoint), "got %v", err)
}

func TestPlanRoutesFailsFastOnNaNStop(t *testing.T) {
	cache := newTestCache(t)
	done := make(chan error, 1)
	go func() {
		_, err := PlanRoutes(context.Background(), PlanRoutesRequest{
			Stops:  []domain.Point{{Lat: math.NaN(), Lon: 14.4}, {Lat: 50.1, Lon: 14.2}},
			Trucks: 1,
			Seed:   1,
			Engine: EngineConfig{PopulationSize: 4, EliteCount: 1, Generations: 3, Workers: 1},
		}, cache)
		done <- err
	}()

	select {
	case err := <-done:
		require.True(t, errors.Is(err, domain.ErrInvalidPoint), "got %v", err)
	case <-time.After(5 * time.Second):
		t.Fatal("PlanRoutes did not return for a NaN stop")
	}
}

func TestNewPopulationFactoryCollapsesDuplicates(t *testing.T) {
	stops := []domain.Point{{Lat: 1, Lon: 1}, {Lat: 2, Lon: 2}, {Lat: 1, Lon: 1}}
	f, err := NewPopulationFactory(stops, 1)
	require.NoError(t, err)
	require.Equal(t, []domain.Point{{Lat: 1, Lon: 1}, {Lat: 2, Lon: 2}}, f.Stops)
}

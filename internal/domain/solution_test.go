package domain

import (
	"errors"
	"math"
	"testing"
)

type countingDistance struct{ calls int }

func (c *countingDistance) Distance(a, b Point) float64 {
	c.calls++
	return math.Hypot(a.Lat-b.Lat, a.Lon-b.Lon)
}

func TestSolutionCost(t *testing.T) {
	d := &countingDistance{}
	s := NewSolution(Point{0, 0}, [][]Point{
		{{0, 3}, {4, 3}},
		{},
	})

	// 3 + 4 + 5
	if got := s.Cost(d); got != 12 {
		t.Fatalf("cost = %v, want 12", got)
	}
	if d.calls != 3 {
		t.Fatalf("distance calls = %d, want 3", d.calls)
	}

	if got := s.Cost(d); got != 12 {
		t.Fatalf("second cost = %v, want 12", got)
	}
	if d.calls != 3 {
		t.Fatalf("cost recomputed: distance calls = %d, want 3", d.calls)
	}
}

func TestSolutionCostEmptyRoutes(t *testing.T) {
	s := NewSolution(Point{50, 14}, [][]Point{{}, {}, {}})
	if got := s.Cost(&countingDistance{}); got != 0 {
		t.Fatalf("cost = %v, want 0", got)
	}
	if s.TruckCount() != 3 {
		t.Fatalf("truck count = %d, want 3", s.TruckCount())
	}
}

func TestSolutionInvalidate(t *testing.T) {
	d := &countingDistance{}
	s := NewSolution(Point{0, 0}, [][]Point{{{0, 1}}})
	if got := s.Cost(d); got != 2 {
		t.Fatalf("cost = %v, want 2", got)
	}

	// Memoized value is kept until invalidated.
	s.Routes[0][0] = Point{0, 2}
	if got := s.Cost(d); got != 2 {
		t.Fatalf("stale cost = %v, want 2", got)
	}

	s.Invalidate()
	if s.Evaluated() {
		t.Fatal("solution still evaluated after Invalidate")
	}
	if got := s.Cost(d); got != 4 {
		t.Fatalf("cost after invalidate = %v, want 4", got)
	}
}

func TestSolutionClone(t *testing.T) {
	s := NewSolution(Point{1, 1}, [][]Point{{{0, 1}, {0, 2}}, {{3, 3}}})
	c := s.Clone()
	c.Routes[0][0] = Point{9, 9}

	if s.Routes[0][0] != (Point{0, 1}) {
		t.Fatalf("clone shares route storage: %v", s.Routes[0][0])
	}
	if c.StopCount() != 3 {
		t.Fatalf("stop count = %d, want 3", c.StopCount())
	}
}

func TestNewBoundingBox(t *testing.T) {
	box, err := NewBoundingBox([]Point{{50.1, 14.5}, {49.9, 14.2}, {50.0, 14.9}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if box.MinLat != 49.9 || box.MinLon != 14.2 {
		t.Fatalf("min = (%v, %v), want (49.9, 14.2)", box.MinLat, box.MinLon)
	}
	if math.Abs(box.LatRange-0.2) > 1e-9 || math.Abs(box.LonRange-0.7) > 1e-9 {
		t.Fatalf("range = (%v, %v), want (0.2, 0.7)", box.LatRange, box.LonRange)
	}

	if _, err := NewBoundingBox(nil); !errors.Is(err, ErrNoStops) {
		t.Fatalf("err = %v, want ErrNoStops", err)
	}
}

func TestNewBoundingBoxRejectsNonFinite(t *testing.T) {
	bad := []Point{
		{math.NaN(), 14.4},
		{50.1, math.NaN()},
		{math.Inf(1), 14.4},
		{50.1, math.Inf(-1)},
		{91, 14.4},
		{50.1, -181},
	}

	for _, p := range bad {
		if p.Valid() {
			t.Fatalf("Valid(%v) = true, want false", p)
		}
		if _, err := NewBoundingBox([]Point{{50.1, 14.2}, p}); !errors.Is(err, ErrInvalidPoint) {
			t.Fatalf("NewBoundingBox with %v: err = %v, want ErrInvalidPoint", p, err)
		}
	}

	if !(Point{-90, 180}).Valid() {
		t.Fatal("boundary point should be valid")
	}
}

func TestMidpoint(t *testing.T) {
	got := Midpoint(Point{50.0, 14.0}, Point{50.2, 14.4})
	if math.Abs(got.Lat-50.1) > 1e-9 || math.Abs(got.Lon-14.2) > 1e-9 {
		t.Fatalf("midpoint = %v, want 50.1,14.2", got)
	}
}

func TestNewRoutePlan(t *testing.T) {
	d := &countingDistance{}
	s := NewSolution(Point{0, 0}, [][]Point{{{0, 3}, {4, 3}}, {}})

	plan := NewRoutePlan(s, d)
	if len(plan.Routes) != 2 {
		t.Fatalf("routes = %d, want 2", len(plan.Routes))
	}
	if plan.Routes[0].TruckID != 1 || plan.Routes[1].TruckID != 2 {
		t.Fatalf("truck ids = %d,%d, want 1,2", plan.Routes[0].TruckID, plan.Routes[1].TruckID)
	}
	if plan.Routes[0].DistanceKm != 12 || plan.TotalKm != 12 {
		t.Fatalf("distance = %v total = %v, want 12", plan.Routes[0].DistanceKm, plan.TotalKm)
	}
	if plan.ActiveTrucks() != 1 {
		t.Fatalf("active trucks = %d, want 1", plan.ActiveTrucks())
	}
}

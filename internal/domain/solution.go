package domain

// Distancer returns the distance in kilometers between two points.
type Distancer interface {
	Distance(a, b Point) float64
}

// Solution is one candidate routing plan: a warehouse location and an
// ordered route per truck. A route may be empty.
//
// The cost is computed on first use and memoized. Code that changes
// Routes or Warehouse in place must call Invalidate afterwards.
// A Solution is not safe for concurrent use.
type Solution struct {
	Warehouse Point
	Routes    [][]Point

	cost   float64
	costed bool
}

func NewSolution(warehouse Point, routes [][]Point) *Solution {
	return &Solution{Warehouse: warehouse, Routes: routes}
}

// Cost returns the total kilometers driven by all trucks, each leaving
// the warehouse, visiting its stops in order and returning.
func (s *Solution) Cost(d Distancer) float64 {
	if s.costed {
		return s.cost
	}

	total := 0.0
	for i := range s.Routes {
		total += s.RouteCost(d, i)
	}

	s.cost = total
	s.costed = true
	return total
}

// RouteCost returns the round-trip length of a single truck route.
// Empty routes cost nothing.
func (s *Solution) RouteCost(d Distancer, truck int) float64 {
	route := s.Routes[truck]
	if len(route) == 0 {
		return 0
	}

	total := d.Distance(s.Warehouse, route[0])
	for i := 1; i < len(route); i++ {
		total += d.Distance(route[i-1], route[i])
	}
	total += d.Distance(route[len(route)-1], s.Warehouse)
	return total
}

// Evaluated reports whether the cost is memoized.
func (s *Solution) Evaluated() bool { return s.costed }

// Invalidate drops the memoized cost.
func (s *Solution) Invalidate() {
	s.cost = 0
	s.costed = false
}

func (s *Solution) TruckCount() int { return len(s.Routes) }

// StopCount returns the number of stops across all routes.
func (s *Solution) StopCount() int {
	n := 0
	for _, r := range s.Routes {
		n += len(r)
	}
	return n
}

// Clone returns a deep copy, including the memoized cost.
func (s *Solution) Clone() *Solution {
	routes := make([][]Point, len(s.Routes))
	for i, r := range s.Routes {
		routes[i] = append(make([]Point, 0, len(r)), r...)
	}

	return &Solution{
		Warehouse: s.Warehouse,
		Routes:    routes,
		cost:      s.cost,
		costed:    s.costed,
	}
}

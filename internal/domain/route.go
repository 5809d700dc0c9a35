package domain

import "time"

// Represents the best plan found by an optimization.
// A RoutePlan is the rendered output of a Solution: the warehouse placement,
// one TruckRoute per truck (idle trucks included) and the total distance.
// It is immutable planning data and contains no side effects.
type RoutePlan struct {
	ID          string
	Warehouse   Point
	Routes      []TruckRoute
	TotalKm     float64
	Generations int
	CreatedAt   time.Time
}

// NewRoutePlan renders a Solution. Truck ids are 1-based.
func NewRoutePlan(s *Solution, d Distancer) *RoutePlan {
	routes := make([]TruckRoute, 0, len(s.Routes))
	for i, r := range s.Routes {
		routes = append(routes, TruckRoute{
			TruckID:    i + 1,
			Stops:      append([]Point(nil), r...),
			DistanceKm: s.RouteCost(d, i),
		})
	}

	return &RoutePlan{
		Warehouse: s.Warehouse,
		Routes:    routes,
		TotalKm:   s.Cost(d),
	}
}

// Return the number of trucks that leave the warehouse.
func (p *RoutePlan) ActiveTrucks() int {
	n := 0
	for _, r := range p.Routes {
		if !r.Idle() {
			n++
		}
	}
	return n
}

package domain

// Ordered stops served by a single truck in a finished plan.
type TruckRoute struct {
	TruckID    int
	Stops      []Point
	DistanceKm float64
}

// Return the number of stops on the route.
func (t TruckRoute) Len() int { return len(t.Stops) }

// Whether the truck stays at the warehouse.
func (t TruckRoute) Idle() bool { return len(t.Stops) == 0 }

package dto

import "time"

type Point struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// Optional overrides of the server's optimizer defaults.
type EngineOptions struct {
	PopulationSize       *int     `json:"population_size,omitempty"`
	EliteCount           *int     `json:"elite_count,omitempty"`
	RandomCount          *int     `json:"random_count,omitempty"`
	MutationProbability  *float64 `json:"mutation_probability,omitempty"`
	CrossoverProbability *float64 `json:"crossover_probability,omitempty"`
	Generations          *int     `json:"generations,omitempty"`
	TimeBudgetMs         *int64   `json:"time_budget_ms,omitempty"`
}

// PlanRequest lists stops as coordinates, addresses, or both.
type PlanRequest struct {
	Stops     []Point        `json:"stops"`
	Addresses []string       `json:"addresses"`
	Trucks    int            `json:"trucks"`
	Runs      int            `json:"runs"`
	Seed      uint64         `json:"seed"`
	Engine    *EngineOptions `json:"engine,omitempty"`
}

type RouteResponse struct {
	TruckID    int     `json:"truck_id"`
	Stops      []Point `json:"stops"`
	DistanceKm float64 `json:"distance_km"`
}

type UnresolvedAddress struct {
	Address string `json:"address"`
	Error   string `json:"error"`
}

type PlanResponse struct {
	ID           string              `json:"id,omitempty"`
	Warehouse    Point               `json:"warehouse"`
	TotalKm      float64             `json:"total_km"`
	Generations  int                 `json:"generations"`
	ActiveTrucks int                 `json:"active_trucks"`
	CreatedAt    time.Time           `json:"created_at"`
	Routes       []RouteResponse     `json:"routes"`
	Unresolved   []UnresolvedAddress `json:"unresolved,omitempty"`
}

// StreamMessage is one frame sent on the progress websocket.
type StreamMessage struct {
	Type       string        `json:"type"`
	Run        int           `json:"run,omitempty"`
	Generation int           `json:"generation,omitempty"`
	Best       float64       `json:"best,omitempty"`
	Mean       float64       `json:"mean,omitempty"`
	StdDev     float64       `json:"std_dev,omitempty"`
	ElapsedMs  int64         `json:"elapsed_ms,omitempty"`
	Plan       *PlanResponse `json:"plan,omitempty"`
	Error      string        `json:"error,omitempty"`
}

package ports

import (
	"context"
	"warehouse-route-optimizer/internal/domain"
)

// Contract for resolving a free-text address to coordinates.
type Geocoder interface {
	Geocode(ctx context.Context, address string) (domain.Point, error)
}

// Persistent address -> coordinate cache placed in front of a Geocoder.
type GeocodeCache interface {
	GetMany(ctx context.Context, addresses []string) (map[string]domain.Point, error)
	PutMany(ctx context.Context, results map[string]domain.Point) error
}

package ports

import (
	"context"
	"warehouse-route-optimizer/internal/domain"
)

// Point-to-point distance in kilometers. Implementations must be pure:
// the same pair always yields the same value.
type DistanceFunc func(a, b domain.Point) float64

// Optional second-level store for computed distances, shared between
// optimizer runs and processes. Pairs are unordered.
type DistanceStore interface {
	// Fetch stored distances; absent pairs are omitted from the result.
	GetMany(ctx context.Context, pairs []domain.Pair) (map[domain.Pair]float64, error)
	// Store many distances at once.
	PutMany(ctx context.Context, distances map[domain.Pair]float64) error
}

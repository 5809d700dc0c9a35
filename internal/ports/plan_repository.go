package ports

import (
	"context"
	"errors"
	"warehouse-route-optimizer/internal/domain"
)

var ErrPlanNotFound = errors.New("plan not found")

// Port: storage for finished route plans.
type PlanRepository interface {
	// Persist the plan and return its assigned id.
	SavePlan(ctx context.Context, plan *domain.RoutePlan) (string, error)
	// Retrieve a plan by id. Returns ErrPlanNotFound when absent.
	GetPlan(ctx context.Context, id string) (*domain.RoutePlan, error)
}

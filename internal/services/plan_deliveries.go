package services

import (
	"context"
	"fmt"
	"log"
	"math/rand/v2"
	"time"
	"warehouse-route-optimizer/internal/domain"
	"warehouse-route-optimizer/internal/platform/obs"
)

type PlanRoutesRequest struct {
	Stops  []domain.Point
	Trucks int
	// Independent engine runs; the cheapest result wins. Zero means one.
	Runs int
	// Base seed; run i uses Seed+i. Zero picks a time-based seed.
	Seed   uint64
	Engine EngineConfig
	// Optional progress callback, invoked on the engine goroutine.
	OnReport func(run int, r Report)
}

// PlanRoutes searches for a low-cost warehouse placement and route partition.
//
// Each run evolves an independent population with its own seed; all runs
// share the distance cache, which is warmed from and flushed to its backing
// store around the search.
func PlanRoutes(
	ctx context.Context,
	req PlanRoutesRequest,
	distances *DistanceCache,
) (_ *domain.RoutePlan, err error) {
	defer obs.Time(ctx, "plan.PlanRoutes")(&err)

	factory, err := NewPopulationFactory(req.Stops, req.Trucks)
	if err != nil {
		return nil, fmt.Errorf("plan routes: %w", err)
	}
	if err := req.Engine.Validate(); err != nil {
		return nil, fmt.Errorf("plan routes: %w", err)
	}

	runs := req.Runs
	if runs <= 0 {
		runs = 1
	}
	seed := req.Seed
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}

	if err := distances.Warm(ctx, factory.Stops); err != nil {
		log.Printf("distance cache warm failed: %v", err)
	}

	var (
		best        *domain.Solution
		generations int
	)
	for run := 0; run < runs; run++ {
		rng := rand.New(rand.NewPCG(seed+uint64(run), seed^0x9e3779b97f4a7c15))

		engine, err := NewEngine(req.Engine, factory, distances, rng)
		if err != nil {
			return nil, fmt.Errorf("plan routes: %w", err)
		}
		engine.OnReport = func(r Report) {
			obs.Generations.Inc()
			obs.BestCost.Set(r.Best)
			if req.OnReport != nil {
				req.OnReport(run, r)
			}
		}

		res, err := engine.Run(ctx)
		if err != nil {
			if best != nil {
				break
			}
			return nil, fmt.Errorf("plan routes: run %d: %w", run+1, err)
		}
		obs.Runs.WithLabelValues(string(res.Stop)).Inc()

		cost := res.Best.Cost(distances)
		log.Printf(
			"op=plan.run run=%d seed=%d generations=%d stop=%s initial_best=%.3f best=%.3f",
			run+1, seed+uint64(run), res.Generations, res.Stop, res.InitialBest, cost,
		)

		if best == nil || cost < best.Cost(distances) {
			best = res.Best
			generations = res.Generations
		}
		if res.Stop == StopCancelled {
			break
		}
	}

	obs.CachedDistances.Set(float64(distances.Len()))
	// Persisting distances must not fail an otherwise complete plan.
	if err := distances.Flush(context.WithoutCancel(ctx), factory.Stops); err != nil {
		log.Printf("distance cache write failed: %v", err)
	}

	plan := domain.NewRoutePlan(best, distances)
	plan.Generations = generations
	plan.CreatedAt = time.Now().UTC()
	return plan, nil
}

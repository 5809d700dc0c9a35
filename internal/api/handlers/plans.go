package handlers

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"time"
	"warehouse-route-optimizer/internal/api/dto"
	"warehouse-route-optimizer/internal/config"
	"warehouse-route-optimizer/internal/domain"
	"warehouse-route-optimizer/internal/ports"
	"warehouse-route-optimizer/internal/services"
)

const (
	maxTrucks    = 100
	maxRuns      = 10
	maxStops     = 5000
	maxAddresses = 500
	// Bounds on the search size one request may ask for.
	maxPopulation  = 5000
	maxGenerations = 1_000_000
)

// PlanHandler exposes route planning over HTTP.
// Geocoder, GeocodeCache, Store and Repo are optional.
type PlanHandler struct {
	Defaults     config.Optimizer
	Distance     ports.DistanceFunc
	Store        ports.DistanceStore
	Geocoder     ports.Geocoder
	GeocodeCache ports.GeocodeCache
	Repo         ports.PlanRepository
	// Upper bound on a single request's search time.
	MaxTimeBudget time.Duration
}

// requestError is a client error reported with status 400.
type requestError struct{ msg string }

func (e *requestError) Error() string { return e.msg }

func badRequest(format string, args ...any) error {
	return &requestError{msg: fmt.Sprintf(format, args...)}
}

// Plan handles POST /plans.
func (h *PlanHandler) Plan(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		writeError(w, r, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var req dto.PlanRequest
	defer r.Body.Close()
	if err := decodeOne(r.Body, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	res, err := h.run(r.Context(), req, nil)
	if err != nil {
		h.writeRunError(w, r, err)
		return
	}

	writeJSON(w, r, http.StatusOK, res)
}

// Get handles GET /plans/{id}.
func (h *PlanHandler) Get(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", http.MethodGet)
		writeError(w, r, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	if h.Repo == nil {
		writeError(w, r, http.StatusNotImplemented, "plan storage is not configured")
		return
	}

	plan, err := h.Repo.GetPlan(r.Context(), r.PathValue("id"))
	if errors.Is(err, ports.ErrPlanNotFound) {
		writeError(w, r, http.StatusNotFound, "plan not found")
		return
	}
	if err != nil {
		log.Printf("get plan failed: %v", err)
		writeError(w, r, http.StatusInternalServerError, "internal server error")
		return
	}

	writeJSON(w, r, http.StatusOK, toPlanResponse(plan, nil))
}

func (h *PlanHandler) writeRunError(w http.ResponseWriter, r *http.Request, err error) {
	var reqErr *requestError
	switch {
	case errors.As(err, &reqErr):
		writeError(w, r, http.StatusBadRequest, reqErr.msg)
	case errors.Is(err, domain.ErrNoStops), errors.Is(err, domain.ErrNoTrucks), errors.Is(err, domain.ErrInvalidPoint):
		writeError(w, r, http.StatusBadRequest, err.Error())
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		writeError(w, r, http.StatusServiceUnavailable, "planning cancelled")
	default:
		log.Printf("plan routes failed: %v", err)
		writeError(w, r, http.StatusInternalServerError, "internal server error")
	}
}

// run validates req, resolves addresses, plans and optionally persists.
func (h *PlanHandler) run(
	ctx context.Context,
	req dto.PlanRequest,
	onReport func(run int, r services.Report),
) (*dto.PlanResponse, error) {
	cfg, err := h.options(req)
	if err != nil {
		return nil, err
	}

	stops := make([]domain.Point, 0, len(req.Stops)+len(req.Addresses))
	for i, p := range req.Stops {
		pt := domain.Point{Lat: p.Lat, Lon: p.Lon}
		if !pt.Valid() {
			return nil, badRequest("stops[%d]: coordinates out of range", i)
		}
		stops = append(stops, pt)
	}

	var unresolved []*services.UnresolvedAddressError
	if len(req.Addresses) > 0 {
		if h.Geocoder == nil {
			return nil, badRequest("addresses are not supported: geocoding is not configured")
		}

		resolved, failed, err := services.ResolveAddresses(ctx, h.Geocoder, h.GeocodeCache, req.Addresses)
		if err != nil {
			return nil, err
		}
		stops = append(stops, domain.Locations(resolved)...)
		unresolved = failed
	}

	distances, err := services.NewDistanceCache(h.Distance, h.Store)
	if err != nil {
		return nil, err
	}

	plan, err := services.PlanRoutes(ctx, services.PlanRoutesRequest{
		Stops:    stops,
		Trucks:   cfg.Trucks,
		Runs:     cfg.Runs,
		Seed:     cfg.Seed,
		Engine:   cfg.Engine(),
		OnReport: onReport,
	}, distances)
	if err != nil {
		return nil, err
	}

	if h.Repo != nil {
		if _, err := h.Repo.SavePlan(ctx, plan); err != nil {
			return nil, fmt.Errorf("save plan: %w", err)
		}
	}

	return toPlanResponse(plan, unresolved), nil
}

// options merges request overrides into the server defaults.
func (h *PlanHandler) options(req dto.PlanRequest) (config.Optimizer, error) {
	cfg := h.Defaults

	if len(req.Stops) > maxStops {
		return cfg, badRequest("at most %d stops are accepted", maxStops)
	}
	if len(req.Addresses) > maxAddresses {
		return cfg, badRequest("at most %d addresses are accepted", maxAddresses)
	}

	if req.Trucks != 0 {
		cfg.Trucks = req.Trucks
	}
	if cfg.Trucks < 1 || cfg.Trucks > maxTrucks {
		return cfg, badRequest("trucks must be between 1 and %d", maxTrucks)
	}

	if req.Runs != 0 {
		cfg.Runs = req.Runs
	}
	if cfg.Runs < 1 || cfg.Runs > maxRuns {
		return cfg, badRequest("runs must be between 1 and %d", maxRuns)
	}

	if req.Seed != 0 {
		cfg.Seed = req.Seed
	}

	if o := req.Engine; o != nil {
		if o.PopulationSize != nil {
			cfg.PopulationSize = *o.PopulationSize
		}
		if o.EliteCount != nil {
			cfg.EliteCount = *o.EliteCount
		}
		if o.RandomCount != nil {
			cfg.RandomCount = *o.RandomCount
		}
		if o.MutationProbability != nil {
			cfg.MutationProbability = *o.MutationProbability
		}
		if o.CrossoverProbability != nil {
			cfg.CrossoverProbability = *o.CrossoverProbability
		}
		if o.Generations != nil {
			cfg.Generations = *o.Generations
		}
		if o.TimeBudgetMs != nil {
			cfg.TimeBudget = time.Duration(*o.TimeBudgetMs) * time.Millisecond
		}
	}

	if cfg.PopulationSize > maxPopulation {
		return cfg, badRequest("population_size must be at most %d", maxPopulation)
	}
	if cfg.Generations > maxGenerations {
		return cfg, badRequest("generations must be at most %d", maxGenerations)
	}

	if h.MaxTimeBudget > 0 && (cfg.TimeBudget <= 0 || cfg.TimeBudget > h.MaxTimeBudget) {
		cfg.TimeBudget = h.MaxTimeBudget
	}

	if err := cfg.Validate(); err != nil {
		return cfg, badRequest("%v", err)
	}
	return cfg, nil
}

func toPoint(p domain.Point) dto.Point { return dto.Point{Lat: p.Lat, Lon: p.Lon} }

func toPlanResponse(p *domain.RoutePlan, unresolved []*services.UnresolvedAddressError) *dto.PlanResponse {
	res := &dto.PlanResponse{
		ID:           p.ID,
		Warehouse:    toPoint(p.Warehouse),
		TotalKm:      p.TotalKm,
		Generations:  p.Generations,
		ActiveTrucks: p.ActiveTrucks(),
		CreatedAt:    p.CreatedAt,
		Routes:       make([]dto.RouteResponse, 0, len(p.Routes)),
	}

	for _, r := range p.Routes {
		stops := make([]dto.Point, 0, len(r.Stops))
		for _, s := range r.Stops {
			stops = append(stops, toPoint(s))
		}
		res.Routes = append(res.Routes, dto.RouteResponse{
			TruckID:    r.TruckID,
			Stops:      stops,
			DistanceKm: r.DistanceKm,
		})
	}

	for _, u := range unresolved {
		res.Unresolved = append(res.Unresolved, dto.UnresolvedAddress{Address: u.Address, Error: u.Err.Error()})
	}
	return res
}

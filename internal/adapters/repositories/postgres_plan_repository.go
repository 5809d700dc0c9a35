package repositories

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"
	"warehouse-route-optimizer/internal/domain"
	"warehouse-route-optimizer/internal/ports"
	"warehouse-route-optimizer/internal/platform/obs"

	"github.com/google/uuid"
)

// Postgres-backed implementation of the PlanRepository port.
// Routes are stored as a single JSONB document per plan.
type PostgresPlanRepository struct{ DB *sql.DB }

func NewPostgresPlanRepository(db *sql.DB) *PostgresPlanRepository {
	return &PostgresPlanRepository{DB: db}
}

type routeRow struct {
	TruckID    int          `json:"truck_id"`
	Stops      [][2]float64 `json:"stops"`
	DistanceKm float64      `json:"distance_km"`
}

func encodeRoutes(routes []domain.TruckRoute) ([]byte, error) {
	rows := make([]routeRow, 0, len(routes))
	for _, r := range routes {
		stops := make([][2]float64, 0, len(r.Stops))
		for _, p := range r.Stops {
			stops = append(stops, [2]float64{p.Lat, p.Lon})
		}
		rows = append(rows, routeRow{TruckID: r.TruckID, Stops: stops, DistanceKm: r.DistanceKm})
	}
	return json.Marshal(rows)
}

func decodeRoutes(raw []byte) ([]domain.TruckRoute, error) {
	var rows []routeRow
	if err := json.Unmarshal(raw, &rows); err != nil {
		return nil, err
	}

	routes := make([]domain.TruckRoute, 0, len(rows))
	for _, r := range rows {
		stops := make([]domain.Point, 0, len(r.Stops))
		for _, s := range r.Stops {
			stops = append(stops, domain.Point{Lat: s[0], Lon: s[1]})
		}
		routes = append(routes, domain.TruckRoute{TruckID: r.TruckID, Stops: stops, DistanceKm: r.DistanceKm})
	}
	return routes, nil
}

// Persist the plan under a new random id. The id is written back to plan.
func (r *PostgresPlanRepository) SavePlan(ctx context.Context, plan *domain.RoutePlan) (_ string, err error) {
	defer obs.Time(ctx, "plans.SavePlan")(&err)

	if r.DB == nil {
		return "", errors.New("postgres plan repository: DB is nil")
	}
	if plan == nil {
		return "", errors.New("save plan: plan is nil")
	}

	routes, err := encodeRoutes(plan.Routes)
	if err != nil {
		return "", fmt.Errorf("save plan: encode routes: %w", err)
	}

	id := uuid.New()
	createdAt := plan.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}

	query := `
	INSERT INTO plans (
		id,
		warehouse_lat,
		warehouse_lon,
		total_km,
		generations,
		routes,
		created_at
	)
	VALUES ($1, $2, $3, $4, $5, $6, $7);
	`
	_, err = r.DB.ExecContext(ctx, query,
		id.String(),
		plan.Warehouse.Lat,
		plan.Warehouse.Lon,
		plan.TotalKm,
		plan.Generations,
		string(routes),
		createdAt,
	)
	if err != nil {
		return "", fmt.Errorf("save plan: insert id=%s: %w", id, err)
	}

	plan.ID = id.String()
	plan.CreatedAt = createdAt
	return plan.ID, nil
}

// Return the plan with the given id, or ports.ErrPlanNotFound.
func (r *PostgresPlanRepository) GetPlan(ctx context.Context, id string) (*domain.RoutePlan, error) {
	parsed, err := uuid.Parse(id)
	if err != nil {
		return nil, fmt.Errorf("get plan id=%q: %w", id, ports.ErrPlanNotFound)
	}

	if r.DB == nil {
		return nil, errors.New("postgres plan repository: DB is nil")
	}

	query := `
	SELECT
		warehouse_lat,
		warehouse_lon,
		total_km,
		generations,
		routes,
		created_at
	FROM plans
	WHERE id = $1;
	`

	plan := &domain.RoutePlan{ID: parsed.String()}
	var raw []byte
	err = r.DB.QueryRowContext(ctx, query, parsed.String()).Scan(
		&plan.Warehouse.Lat,
		&plan.Warehouse.Lon,
		&plan.TotalKm,
		&plan.Generations,
		&raw,
		&plan.CreatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get plan id=%s: %w", parsed, ports.ErrPlanNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get plan id=%s: query plans table: %w", parsed, err)
	}

	plan.Routes, err = decodeRoutes(raw)
	if err != nil {
		return nil, fmt.Errorf("get plan id=%s: decode routes: %w", parsed, err)
	}

	return plan, nil
}

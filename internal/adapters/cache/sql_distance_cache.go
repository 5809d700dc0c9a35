package cache

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"warehouse-route-optimizer/internal/domain"
	"warehouse-route-optimizer/internal/platform/obs"
)

// SQLDistanceCache is a Postgres-backed store for point-pair distances.
// Pairs are stored in canonical order.
type SQLDistanceCache struct {
	DB *sql.DB
}

func NewSQLDistanceCache(db *sql.DB) *SQLDistanceCache {
	return &SQLDistanceCache{DB: db}
}

// Fetch cached distances for many pairs. Result keys are canonical.
func (s *SQLDistanceCache) GetMany(
	ctx context.Context,
	pairs []domain.Pair,
) (_ map[domain.Pair]float64, err error) {
	defer obs.Time(ctx, "distance.cache.GetMany")(&err)

	if s.DB == nil {
		return nil, errors.New("distance cache: db is nil")
	}

	if len(pairs) == 0 {
		return map[domain.Pair]float64{}, nil
	}

	aLat := make([]float64, 0, len(pairs))
	aLon := make([]float64, 0, len(pairs))
	bLat := make([]float64, 0, len(pairs))
	bLon := make([]float64, 0, len(pairs))
	for _, p := range pairs {
		c := p.Canonical()
		aLat = append(aLat, c.A.Lat)
		aLon = append(aLon, c.A.Lon)
		bLat = append(bLat, c.B.Lat)
		bLon = append(bLon, c.B.Lon)
	}

	q := `
	SELECT d.a_lat, d.a_lon, d.b_lat, d.b_lon, d.km
    FROM distance_cache d
    JOIN unnest($1::float8[], $2::float8[], $3::float8[], $4::float8[])
        AS q(a_lat, a_lon, b_lat, b_lon)
        ON d.a_lat = q.a_lat AND d.a_lon = q.a_lon
        AND d.b_lat = q.b_lat AND d.b_lon = q.b_lon;
	`

	rows, err := s.DB.QueryContext(ctx, q, aLat, aLon, bLat, bLon)
	if err != nil {
		return nil, fmt.Errorf("get distance cache: query distance_cache table: %w", err)
	}
	defer rows.Close()

	out := make(map[domain.Pair]float64, len(pairs))
	for rows.Next() {
		var p domain.Pair
		var km float64
		if err := rows.Scan(&p.A.Lat, &p.A.Lon, &p.B.Lat, &p.B.Lon, &km); err != nil {
			return nil, fmt.Errorf("get distance cache: scan rows: %w", err)
		}
		out[p] = km
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("get distance cache: row iteration: %w", err)
	}

	return out, nil
}

// Store many pair distances.
func (s *SQLDistanceCache) PutMany(ctx context.Context, distances map[domain.Pair]float64) error {
	if s.DB == nil {
		return errors.New("distance cache: db is nil")
	}

	if len(distances) == 0 {
		return nil
	}

	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("insert distance cache: db begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, `
	INSERT INTO distance_cache (a_lat, a_lon, b_lat, b_lon, km)
    VALUES ($1, $2, $3, $4, $5)
	ON CONFLICT (a_lat, a_lon, b_lat, b_lon) DO UPDATE
	SET km = EXCLUDED.km;
	`)
	if err != nil {
		return fmt.Errorf("insert distance cache: db prepare: %w", err)
	}
	defer stmt.Close()

	for p, km := range distances {
		c := p.Canonical()
		if _, err := stmt.ExecContext(ctx, c.A.Lat, c.A.Lon, c.B.Lat, c.B.Lon, km); err != nil {
			return fmt.Errorf("insert distance cache pair=%s: %w", c, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("insert distance cache commit: %w", err)
	}

	return nil
}

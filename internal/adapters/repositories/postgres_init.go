package repositories

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"warehouse-route-optimizer/internal/domain"
)

// Initialize the Postgres database schema.
func InitSchema(ctx context.Context, db *sql.DB) error {
	if db == nil {
		return errors.New("init schema: DB is nil")
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("init schema: begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	createPlansQuery := `
	CREATE TABLE IF NOT EXISTS plans (
		id UUID PRIMARY KEY,
		warehouse_lat DOUBLE PRECISION NOT NULL,
		warehouse_lon DOUBLE PRECISION NOT NULL,
		total_km DOUBLE PRECISION NOT NULL,
		generations INTEGER NOT NULL,
		routes JSONB NOT NULL,
		created_at TIMESTAMPTZ NOT NULL
	);
	`

	createDistanceCacheQuery := `
	CREATE TABLE IF NOT EXISTS distance_cache (
        a_lat DOUBLE PRECISION NOT NULL,
        a_lon DOUBLE PRECISION NOT NULL,
        b_lat DOUBLE PRECISION NOT NULL,
        b_lon DOUBLE PRECISION NOT NULL,
        km DOUBLE PRECISION NOT NULL,
        PRIMARY KEY (a_lat, a_lon, b_lat, b_lon)
    );
	`

	createGeocodeCacheQuery := `
	CREATE TABLE IF NOT EXISTS geocode_cache (
        address TEXT PRIMARY KEY,
        lat DOUBLE PRECISION NOT NULL,
        lon DOUBLE PRECISION NOT NULL
    );
	`

	createIndexQuery := `
	CREATE INDEX IF NOT EXISTS idx_plans_created_at
    ON plans(created_at DESC);
	`

	statements := []string{
		createPlansQuery,
		createDistanceCacheQuery,
		createGeocodeCacheQuery,
		createIndexQuery,
	}

	for i, stmt := range statements {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("init schema: exec statement #%d: %w", i+1, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("init schema: commit tx: %w", err)
	}

	return nil
}

// GeocodeSeed is one known address with its coordinates.
type GeocodeSeed struct {
	Address string  `json:"address"`
	Lat     float64 `json:"lat"`
	Lon     float64 `json:"lon"`
}

// Populate the geocode cache from a JSON file so that known addresses
// resolve without calling the geocoding service.
func SeedGeocodesFromJSON(ctx context.Context, db *sql.DB, jsonPath string) (int, error) {
	bytes, err := os.ReadFile(jsonPath)
	if err != nil {
		return 0, fmt.Errorf("seed geocodes: read %q: %w", jsonPath, err)
	}

	var data []GeocodeSeed
	if err := json.Unmarshal(bytes, &data); err != nil {
		return 0, fmt.Errorf("seed geocodes: parse json: %w", err)
	}

	rows, err := validateSeeds(data)
	if err != nil {
		return 0, err
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("seed geocodes: begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	query := `
	INSERT INTO geocode_cache (address, lat, lon)
	VALUES ($1, $2, $3)
	ON CONFLICT (address) DO UPDATE
	SET lat = EXCLUDED.lat,
		lon = EXCLUDED.lon;
	`
	stmt, err := tx.PrepareContext(ctx, query)
	if err != nil {
		return 0, fmt.Errorf("seed geocodes: prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, g := range rows {
		if _, err := stmt.ExecContext(ctx, g.Address, g.Lat, g.Lon); err != nil {
			return 0, fmt.Errorf("seed geocodes: insert address=%q: %w", g.Address, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("seed geocodes: commit tx: %w", err)
	}

	return len(rows), nil
}

func validateSeeds(data []GeocodeSeed) ([]GeocodeSeed, error) {
	rows := make([]GeocodeSeed, 0, len(data))
	for i, item := range data {
		addr := domain.NormalizeAddress(item.Address)
		if addr == "" {
			return nil, fmt.Errorf("seed geocodes: item at index %d: address cannot be empty", i+1)
		}

		if !(domain.Point{Lat: item.Lat, Lon: item.Lon}).Valid() {
			return nil, fmt.Errorf("seed geocodes: item at index %d: coordinates out of range: %g,%g", i+1, item.Lat, item.Lon)
		}
		rows = append(rows, GeocodeSeed{Address: addr, Lat: item.Lat, Lon: item.Lon})
	}
	return rows, nil
}

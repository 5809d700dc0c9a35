package cache

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"warehouse-route-optimizer/internal/domain"
	"warehouse-route-optimizer/internal/platform/obs"
)

// SQLGeocodeCache stores resolved coordinates in Postgres, keyed by the
// normalized address (see domain.NormalizeAddress). Lookups and writes
// normalize their keys, so "Main  St 1" and " Main St 1" share an entry.
type SQLGeocodeCache struct {
	DB *sql.DB
}

func NewSQLGeocodeCache(db *sql.DB) *SQLGeocodeCache {
	return &SQLGeocodeCache{DB: db}
}

// lookupKeys normalizes addresses, dropping blanks and duplicates.
func lookupKeys(addresses []string) []string {
	seen := make(map[string]struct{}, len(addresses))
	keys := make([]string, 0, len(addresses))
	for _, a := range addresses {
		k := domain.NormalizeAddress(a)
		if k == "" {
			continue
		}
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		keys = append(keys, k)
	}
	return keys
}

// storeRows normalizes keys and validates coordinates before an upsert.
// Entries whose keys normalize to the same address must agree.
func storeRows(results map[string]domain.Point) (map[string]domain.Point, error) {
	rows := make(map[string]domain.Point, len(results))
	for addr, p := range results {
		k := domain.NormalizeAddress(addr)
		if k == "" {
			return nil, errors.New("empty address key")
		}
		if !p.Valid() {
			return nil, fmt.Errorf("address=%q: %w", k, domain.ErrInvalidPoint)
		}
		if prev, ok := rows[k]; ok && prev != p {
			return nil, fmt.Errorf("address=%q: conflicting coordinates %s and %s", k, prev, p)
		}
		rows[k] = p
	}
	return rows, nil
}

// GetMany returns cached points keyed by normalized address. Addresses
// without an entry are absent from the result.
func (s *SQLGeocodeCache) GetMany(
	ctx context.Context,
	addresses []string,
) (_ map[string]domain.Point, err error) {
	defer obs.Time(ctx, "geocode.cache.GetMany")(&err)

	keys := lookupKeys(addresses)
	if len(keys) == 0 {
		return map[string]domain.Point{}, nil
	}
	if s.DB == nil {
		return nil, errors.New("geocode cache: db is nil")
	}

	rows, err := s.DB.QueryContext(ctx, `
	SELECT address, lat, lon
	FROM geocode_cache
	WHERE address = ANY($1::text[]);
	`, keys)
	if err != nil {
		return nil, fmt.Errorf("get geocode cache: query: %w", err)
	}
	defer rows.Close()

	out := make(map[string]domain.Point, len(keys))
	for rows.Next() {
		var addr string
		var p domain.Point
		if err := rows.Scan(&addr, &p.Lat, &p.Lon); err != nil {
			return nil, fmt.Errorf("get geocode cache: scan: %w", err)
		}
		out[addr] = p
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("get geocode cache: rows: %w", err)
	}

	return out, nil
}

// PutMany upserts address -> point entries in one transaction.
func (s *SQLGeocodeCache) PutMany(ctx context.Context, results map[string]domain.Point) (err error) {
	defer obs.Time(ctx, "geocode.cache.PutMany")(&err)

	rows, err := storeRows(results)
	if err != nil {
		return fmt.Errorf("put geocode cache: %w", err)
	}
	if len(rows) == 0 {
		return nil
	}
	if s.DB == nil {
		return errors.New("geocode cache: db is nil")
	}

	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("put geocode cache: begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, `
	INSERT INTO geocode_cache (address, lat, lon)
	VALUES ($1, $2, $3)
	ON CONFLICT (address) DO UPDATE
	SET lat = EXCLUDED.lat, lon = EXCLUDED.lon;
	`)
	if err != nil {
		return fmt.Errorf("put geocode cache: prepare: %w", err)
	}
	defer stmt.Close()

	for addr, p := range rows {
		if _, err := stmt.ExecContext(ctx, addr, p.Lat, p.Lon); err != nil {
			return fmt.Errorf("put geocode cache address=%q: %w", addr, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("put geocode cache: commit: %w", err)
	}

	return nil
}

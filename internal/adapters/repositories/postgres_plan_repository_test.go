package repositories

import (
	"context"
	"errors"
	"testing"
	"warehouse-route-optimizer/internal/domain"
	"warehouse-route-optimizer/internal/ports"
)

func TestRouteJSONRoundTrip(t *testing.T) {
	in := []domain.TruckRoute{
		{TruckID: 1, Stops: []domain.Point{{Lat: 50.1, Lon: 14.4}, {Lat: 50.2, Lon: 14.5}}, DistanceKm: 12.5},
		{TruckID: 2, DistanceKm: 0},
	}

	raw, err := encodeRoutes(in)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}

	out, err := decodeRoutes(raw)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}

	if len(out) != 2 {
		t.Fatalf("expected 2 routes, got %d", len(out))
	}
	if out[0].TruckID != 1 || out[0].DistanceKm != 12.5 || len(out[0].Stops) != 2 {
		t.Fatalf("unexpected first route: %+v", out[0])
	}
	if out[0].Stops[1] != (domain.Point{Lat: 50.2, Lon: 14.5}) {
		t.Fatalf("stop order lost: %+v", out[0].Stops)
	}
	if !out[1].Idle() {
		t.Fatalf("expected idle second route, got %+v", out[1])
	}
}

func TestGetPlanRejectsMalformedID(t *testing.T) {
	// The id is validated before the database is touched.
	repo := &PostgresPlanRepository{DB: nil}
	_, err := repo.GetPlan(context.Background(), "not-a-uuid")
	if !errors.Is(err, ports.ErrPlanNotFound) {
		t.Fatalf("expected ErrPlanNotFound, got %v", err)
	}
}

func TestValidateSeeds(t *testing.T) {
	rows, err := validateSeeds([]GeocodeSeed{{Address: "  Main   St 1 ", Lat: 1, Lon: 2}})
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if rows[0].Address != "Main St 1" {
		t.Fatalf("address not normalized: %q", rows[0].Address)
	}

	if _, err := validateSeeds([]GeocodeSeed{{Address: "", Lat: 1}}); err == nil {
		t.Fatal("expected error for empty address")
	}
	if _, err := validateSeeds([]GeocodeSeed{{Address: "x", Lat: 91}}); err == nil {
		t.Fatal("expected error for out of range lat")
	}
}

var _ ports.PlanRepository = (*PostgresPlanRepository)(nil)

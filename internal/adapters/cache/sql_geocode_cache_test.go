package cache

import (
	"context"
	"errors"
	"math"
	"testing"
	"warehouse-route-optimizer/internal/domain"

	"github.com/stretchr/testify/require"
)

func TestLookupKeysNormalizesAndDedupes(t *testing.T) {
	got := lookupKeys([]string{"  Main   St 1 ", "Main St 1", "", "   ", "Side\tRd 2", "Main St 1"})
	require.Equal(t, []string{"Main St 1", "Side Rd 2"}, got)
}

func TestStoreRows(t *testing.T) {
	p := domain.Point{Lat: 50.08, Lon: 14.42}

	rows, err := storeRows(map[string]domain.Point{" Main  St 1": p, "Main St 1": p})
	require.NoError(t, err)
	require.Equal(t, map[string]domain.Point{"Main St 1": p}, rows)

	_, err = storeRows(map[string]domain.Point{"  ": p})
	require.ErrorContains(t, err, "empty address key")

	_, err = storeRows(map[string]domain.Point{"Main St 1": {Lat: math.NaN(), Lon: 14}})
	require.True(t, errors.Is(err, domain.ErrInvalidPoint), "got %v", err)

	_, err = storeRows(map[string]domain.Point{"Main St 1": p, "Main  St 1": {Lat: 1, Lon: 1}})
	require.ErrorContains(t, err, "conflicting coordinates")
}

func TestSQLGeocodeCacheSkipsDBForBlankInput(t *testing.T) {
	c := NewSQLGeocodeCache(nil)

	got, err := c.GetMany(context.Background(), []string{" ", ""})
	require.NoError(t, err)
	require.Empty(t, got)

	require.NoError(t, c.PutMany(context.Background(), nil))
}

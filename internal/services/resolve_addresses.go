package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"warehouse-route-optimizer/internal/domain"
	"warehouse-route-optimizer/internal/platform/obs"
	"warehouse-route-optimizer/internal/ports"
)

// UnresolvedAddressError reports an address the geocoder could not resolve.
type UnresolvedAddressError struct {
	Address string
	Err     error
}

func (e *UnresolvedAddressError) Error() string {
	return fmt.Sprintf("unresolved address %q: %v", e.Address, e.Err)
}

func (e *UnresolvedAddressError) Unwrap() error { return e.Err }

// ResolveAddresses turns addresses into stops, in input order.
//
// The cache (optional) is consulted first; misses go to the geocoder and
// fresh results are written back. Addresses that fail to resolve are
// returned as UnresolvedAddressErrors and excluded from the stops, so the
// caller can still plan on the resolved subset. A non-nil error means the
// whole resolution failed (cache read or cancelled context).
func ResolveAddresses(
	ctx context.Context,
	geocoder ports.Geocoder,
	cache ports.GeocodeCache,
	addresses []string,
) (_ []domain.Stop, _ []*UnresolvedAddressError, err error) {
	defer obs.Time(ctx, "geocode.ResolveAddresses")(&err)

	if geocoder == nil {
		return nil, nil, errors.New("resolve addresses: geocoder is nil")
	}

	norm := make([]string, 0, len(addresses))
	for _, a := range addresses {
		if n := domain.NormalizeAddress(a); n != "" {
			norm = append(norm, n)
		}
	}

	hits := make(map[string]domain.Point)
	if cache != nil && len(norm) > 0 {
		hits, err = cache.GetMany(ctx, norm)
		if err != nil {
			return nil, nil, fmt.Errorf("resolve addresses: get geocode cache: %w", err)
		}
	}

	fresh := make(map[string]domain.Point)
	failed := make(map[string]*UnresolvedAddressError)
	for _, a := range norm {
		if _, ok := hits[a]; ok {
			continue
		}
		if _, ok := fresh[a]; ok {
			continue
		}
		if _, ok := failed[a]; ok {
			continue
		}

		p, err := geocoder.Geocode(ctx, a)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return nil, nil, fmt.Errorf("resolve addresses: %w", ctxErr)
			}
			failed[a] = &UnresolvedAddressError{Address: a, Err: err}
			continue
		}
		fresh[a] = p
	}

	if cache != nil && len(fresh) > 0 {
		if err := cache.PutMany(ctx, fresh); err != nil {
			log.Printf("geocode cache write failed: %v", err)
		}
	}

	stops := make([]domain.Stop, 0, len(norm))
	unresolved := make([]*UnresolvedAddressError, 0, len(failed))
	for _, a := range norm {
		if p, ok := hits[a]; ok {
			stops = append(stops, domain.Stop{Address: a, Location: p})
			continue
		}
		if p, ok := fresh[a]; ok {
			stops = append(stops, domain.Stop{Address: a, Location: p})
			continue
		}
		if e, ok := failed[a]; ok {
			unresolved = append(unresolved, e)
			delete(failed, a)
		}
	}

	return stops, unresolved, nil
}

package domain

import "errors"

var (
	// ErrNoStops is returned when an operation needs at least one stop.
	ErrNoStops = errors.New("no stops supplied")
	// ErrNoTrucks is returned when the truck count is below one.
	ErrNoTrucks = errors.New("truck count must be at least 1")
	// ErrInvalidPoint is returned for NaN, infinite or out-of-range coordinates.
	ErrInvalidPoint = errors.New("invalid coordinates")
	// ErrDegenerateRoutes is returned when every route of a solution is empty.
	ErrDegenerateRoutes = errors.New("every truck route is empty")
)

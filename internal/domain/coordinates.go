package domain

import (
	"fmt"
	"math"
)

// Immutable geographic point (latitude, longitude) in decimal degrees.
// Points compare by value and are used directly as map keys.
type Point struct {
	Lat float64
	Lon float64
}

func (p Point) String() string { return fmt.Sprintf("%g,%g", p.Lat, p.Lon) }

// Valid reports whether p is a finite coordinate within [-90,90] x [-180,180].
func (p Point) Valid() bool {
	if math.IsNaN(p.Lat) || math.IsNaN(p.Lon) {
		return false
	}
	return p.Lat >= -90 && p.Lat <= 90 && p.Lon >= -180 && p.Lon <= 180
}

// Axis-aligned box spanning a set of stops. Random warehouse locations
// are drawn inside it.
type BoundingBox struct {
	MinLat   float64
	MinLon   float64
	LatRange float64
	LonRange float64
}

// NewBoundingBox returns the smallest box containing every point.
func NewBoundingBox(points []Point) (BoundingBox, error) {
	if len(points) == 0 {
		return BoundingBox{}, fmt.Errorf("bounding box: %w", ErrNoStops)
	}

	for i, p := range points {
		if !p.Valid() {
			return BoundingBox{}, fmt.Errorf("bounding box: point %d (%s): %w", i, p, ErrInvalidPoint)
		}
	}

	minLat, maxLat := points[0].Lat, points[0].Lat
	minLon, maxLon := points[0].Lon, points[0].Lon
	for _, p := range points[1:] {
		minLat = min(minLat, p.Lat)
		maxLat = max(maxLat, p.Lat)
		minLon = min(minLon, p.Lon)
		maxLon = max(maxLon, p.Lon)
	}

	return BoundingBox{
		MinLat:   minLat,
		MinLon:   minLon,
		LatRange: maxLat - minLat,
		LonRange: maxLon - minLon,
	}, nil
}

// At maps unit offsets u, v in [0,1) onto the box.
func (b BoundingBox) At(u, v float64) Point {
	return Point{
		Lat: b.MinLat + u*b.LatRange,
		Lon: b.MinLon + v*b.LonRange,
	}
}

// Midpoint returns the component-wise average of two points.
func Midpoint(a, b Point) Point {
	return Point{Lat: (a.Lat + b.Lat) / 2, Lon: (a.Lon + b.Lon) / 2}
}

// Unordered pair of points. Canonical orders the members so that
// Pair{a, b} and Pair{b, a} share one representation.
type Pair struct {
	A Point
	B Point
}

func (p Pair) Canonical() Pair {
	if p.B.Lat < p.A.Lat || (p.B.Lat == p.A.Lat && p.B.Lon < p.A.Lon) {
		return Pair{A: p.B, B: p.A}
	}
	return p
}

func (p Pair) String() string { return p.A.String() + "|" + p.B.String() }

package domain

import "strings"

// A delivery stop resolved from a free-text address.
type Stop struct {
	Address  string
	Location Point
}

// Locations returns the coordinates of the stops, in order.
func Locations(stops []Stop) []Point {
	out := make([]Point, 0, len(stops))
	for _, s := range stops {
		out = append(out, s.Location)
	}
	return out
}

// NormalizeAddress trims and collapses runs of whitespace. Normalized
// addresses are the keys of every geocode cache.
func NormalizeAddress(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

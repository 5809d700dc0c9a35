// Package coordfile reads address lists and reads/writes coordinate files.
//
// A coordinates file holds one "<lat>,<lon>" line per stop, in stop order.
package coordfile

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
	"warehouse-route-optimizer/internal/domain"
)

// ReadAddresses returns the non-blank lines of r, trimmed.
func ReadAddresses(r io.Reader) ([]string, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	out := make([]string, 0, 64)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}
		out = append(out, line)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read addresses: %w", err)
	}
	return out, nil
}

// Write writes one "<lat>,<lon>" line per point.
func Write(w io.Writer, points []domain.Point) error {
	bw := bufio.NewWriter(w)
	for _, p := range points {
		line := strconv.FormatFloat(p.Lat, 'f', -1, 64) + "," + strconv.FormatFloat(p.Lon, 'f', -1, 64) + "\n"
		if _, err := bw.WriteString(line); err != nil {
			return fmt.Errorf("write coordinates: %w", err)
		}
	}
	if err := bw.Flush(); err != nil {
		return fmt.Errorf("write coordinates: flush: %w", err)
	}
	return nil
}

// Read parses a file produced by Write. Blank lines are skipped.
func Read(r io.Reader) ([]domain.Point, error) {
	sc := bufio.NewScanner(r)

	out := make([]domain.Point, 0, 64)
	n := 0
	for sc.Scan() {
		n++
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}

		p, err := parsePoint(line)
		if err != nil {
			return nil, fmt.Errorf("read coordinates: line %d: %w", n, err)
		}
		out = append(out, p)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read coordinates: %w", err)
	}
	return out, nil
}

func parsePoint(line string) (domain.Point, error) {
	latS, lonS, ok := strings.Cut(line, ",")
	if !ok {
		return domain.Point{}, fmt.Errorf("expected \"<lat>,<lon>\", got %q", line)
	}

	lat, err := strconv.ParseFloat(strings.TrimSpace(latS), 64)
	if err != nil {
		return domain.Point{}, fmt.Errorf("parse lat %q: %w", latS, err)
	}
	lon, err := strconv.ParseFloat(strings.TrimSpace(lonS), 64)
	if err != nil {
		return domain.Point{}, fmt.Errorf("parse lon %q: %w", lonS, err)
	}

	p := domain.Point{Lat: lat, Lon: lon}
	if !p.Valid() {
		return domain.Point{}, fmt.Errorf("%q: %w", line, domain.ErrInvalidPoint)
	}
	return p, nil
}

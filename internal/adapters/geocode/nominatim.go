package geocode

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"
	"warehouse-route-optimizer/internal/domain"
	"warehouse-route-optimizer/internal/platform/obs"

	"golang.org/x/time/rate"
)

var ErrNoResults = errors.New("no geocode results")

// NominatimGeocoder implements ports.Geocoder against an OpenStreetMap
// Nominatim server (/search endpoint).
//
// Requests are throttled by a shared rate limiter (the public server allows
// one request per second) and transient failures are retried with backoff.
// The geocoder is safe for concurrent use.
type NominatimGeocoder struct {
	session   *http.Client
	baseURL   string
	userAgent string
	limiter   *rate.Limiter
	backoff   time.Duration
}

// NewNominatimGeocoder creates a geocoder. requestsPerSecond <= 0 disables
// throttling.
func NewNominatimGeocoder(baseURL, userAgent string, requestsPerSecond float64) (*NominatimGeocoder, error) {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		return nil, errors.New("nominatim: base url is empty")
	}
	if strings.TrimSpace(userAgent) == "" {
		return nil, errors.New("nominatim: user agent is empty")
	}

	limit := rate.Inf
	if requestsPerSecond > 0 {
		limit = rate.Limit(requestsPerSecond)
	}

	return &NominatimGeocoder{
		session:   &http.Client{Timeout: 10 * time.Second},
		baseURL:   baseURL,
		userAgent: userAgent,
		limiter:   rate.NewLimiter(limit, 1),
		backoff:   500 * time.Millisecond,
	}, nil
}

type searchResult struct {
	Lat         string `json:"lat"`
	Lon         string `json:"lon"`
	DisplayName string `json:"display_name"`
}

// Geocode resolves a single address to its best match.
func (n *NominatimGeocoder) Geocode(ctx context.Context, address string) (_ domain.Point, err error) {
	defer obs.Time(ctx, "nominatim.Geocode")(&err)

	address = strings.TrimSpace(address)
	if address == "" {
		return domain.Point{}, errors.New("geocode: address must be non-empty")
	}

	endpoint := n.baseURL + "/search"
	resp, err := n.doWithRetry(ctx, func() (*http.Request, error) {
		req, err := n.newRequest(ctx, http.MethodGet, endpoint, nil)
		if err != nil {
			return nil, err
		}
		q := req.URL.Query()
		q.Set("q", address)
		q.Set("format", "jsonv2")
		q.Set("limit", "1")
		req.URL.RawQuery = q.Encode()
		return req, nil
	})
	if err != nil {
		return domain.Point{}, fmt.Errorf("geocode %q: execute request: %w", address, err)
	}
	defer resp.Body.Close()

	var results []searchResult
	if err := json.NewDecoder(resp.Body).Decode(&results); err != nil {
		return domain.Point{}, fmt.Errorf("geocode %q: decode response: %w", address, err)
	}
	if len(results) == 0 {
		return domain.Point{}, fmt.Errorf("geocode %q: %w", address, ErrNoResults)
	}

	lat, err := strconv.ParseFloat(results[0].Lat, 64)
	if err != nil {
		return domain.Point{}, fmt.Errorf("geocode %q: parse latitude %q: %w", address, results[0].Lat, err)
	}
	lon, err := strconv.ParseFloat(results[0].Lon, 64)
	if err != nil {
		return domain.Point{}, fmt.Errorf("geocode %q: parse longitude %q: %w", address, results[0].Lon, err)
	}

	p := domain.Point{Lat: lat, Lon: lon}
	if !p.Valid() {
		return domain.Point{}, fmt.Errorf("geocode %q: result %s: %w", address, p, domain.ErrInvalidPoint)
	}
	return p, nil
}

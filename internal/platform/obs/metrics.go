package obs

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

var (
	// Registry is the dedicated Prometheus registry for the optimizer.
	Registry = prometheus.NewRegistry()

	// HTTPRequests counts requests by method, path and status.
	HTTPRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "http_requests_total", Help: "Total HTTP requests."},
		[]string{"method", "path", "status"},
	)
	// HTTPDuration records request durations in seconds.
	HTTPDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{Name: "http_request_duration_seconds", Help: "HTTP request duration in seconds.", Buckets: prometheus.DefBuckets},
		[]string{"method", "path"},
	)

	// Generations counts ranked generations across all runs.
	Generations = prometheus.NewCounter(
		prometheus.CounterOpts{Name: "optimizer_generations_total", Help: "Ranked generations."},
	)
	// BestCost is the best route cost (km) of the latest ranked generation.
	BestCost = prometheus.NewGauge(
		prometheus.GaugeOpts{Name: "optimizer_best_cost_km", Help: "Best cost of the latest generation in kilometers."},
	)
	// Runs counts finished optimizer runs by stop reason.
	Runs = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "optimizer_runs_total", Help: "Finished optimizer runs by stop reason."},
		[]string{"stop"},
	)
	// CachedDistances is the size of the in-process distance cache.
	CachedDistances = prometheus.NewGauge(
		prometheus.GaugeOpts{Name: "optimizer_cached_distances", Help: "Point pairs held by the distance cache."},
	)
	// OperationDuration records durations of timed operations.
	OperationDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{Name: "operation_duration_seconds", Help: "Duration of timed operations in seconds.", Buckets: prometheus.DefBuckets},
		[]string{"op"},
	)
)

var regOnce sync.Once

// RegisterDefault registers the collectors on Registry. Safe to call repeatedly.
func RegisterDefault() {
	regOnce.Do(func() {
		Registry.MustRegister(HTTPRequests)
		Registry.MustRegister(HTTPDuration)
		Registry.MustRegister(Generations)
		Registry.MustRegister(BestCost)
		Registry.MustRegister(Runs)
		Registry.MustRegister(CachedDistances)
		Registry.MustRegister(OperationDuration)
		Registry.MustRegister(collectors.NewGoCollector())
		Registry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	})
}

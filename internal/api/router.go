package api

import (
	"net/http"
	"warehouse-route-optimizer/internal/api/handlers"
	"warehouse-route-optimizer/internal/platform/obs"

	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// NewRouter wires HTTP handlers with their dependencies and returns an http.Handler.
// This is the API composition root (handlers stay unaware of concrete adapters).
func NewRouter(plans *handlers.PlanHandler, health *handlers.HealthHandler) http.Handler {
	obs.RegisterDefault()
	mux := http.NewServeMux()

	mux.HandleFunc("/health", health.Health)
	mux.HandleFunc("/plans", plans.Plan)
	mux.HandleFunc("/plans/stream", plans.Stream)
	mux.HandleFunc("/plans/{id}", plans.Get)
	mux.Handle("/metrics", promhttp.HandlerFor(obs.Registry, promhttp.HandlerOpts{}))

	return requestIDMiddleware(loggingMiddleware(mux))
}

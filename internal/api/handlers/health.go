package handlers

import (
	"context"
	"net/http"
	"sort"
	"time"
)

// HealthHandler reports liveness plus the state of optional dependencies.
type HealthHandler struct {
	// Checks maps a dependency name (e.g. "postgres") to its probe.
	Checks map[string]func(ctx context.Context) error
}

// Health responds 200 when every check passes and 503 otherwise.
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", http.MethodGet)
		writeError(w, r, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	names := make([]string, 0, len(h.Checks))
	for name := range h.Checks {
		names = append(names, name)
	}
	sort.Strings(names)

	status := http.StatusOK
	deps := make(map[string]string, len(names))
	for _, name := range names {
		if err := h.Checks[name](ctx); err != nil {
			deps[name] = err.Error()
			status = http.StatusServiceUnavailable
			continue
		}
		deps[name] = "ok"
	}

	res := map[string]any{"status": "ok"}
	if status != http.StatusOK {
		res["status"] = "degraded"
	}
	if len(deps) > 0 {
		res["dependencies"] = deps
	}
	writeJSON(w, r, status, res)
}

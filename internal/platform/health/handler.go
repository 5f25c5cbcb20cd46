// Package health provides the HTTP health endpoint, fanning out to every
// registered dependency check in parallel.
package health

import (
	"context"
	"net/http"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"scoutpay/pkg/platform/httputil"
)

// Check probes one dependency. Implementations must respect ctx cancellation.
type Check func(ctx context.Context) error

// Handler aggregates named dependency checks into one health endpoint.
type Handler struct {
	mu      sync.RWMutex
	checks  map[string]Check
	timeout time.Duration
}

func NewHandler(timeout time.Duration) *Handler {
	if timeout == 0 {
		timeout = 5 * time.Second
	}
	return &Handler{
		checks:  make(map[string]Check),
		timeout: timeout,
	}
}

// RegisterCheck adds a named dependency check. Later registrations with the
// same name replace earlier ones.
func (h *Handler) RegisterCheck(name string, check Check) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.checks[name] = check
}

// Response is the health endpoint payload.
type Response struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks,omitempty"`
}

// ServeHTTP runs every check in parallel and reports per-dependency outcomes.
// Any failing check degrades the overall status to 503.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	h.mu.RLock()
	names := make([]string, 0, len(h.checks))
	checks := make([]Check, 0, len(h.checks))
	for name, check := range h.checks {
		names = append(names, name)
		checks = append(checks, check)
	}
	h.mu.RUnlock()

	results := make([]string, len(checks))
	g, gctx := errgroup.WithContext(ctx)
	for i, check := range checks {
		i, check := i, check
		g.Go(func() error {
			if err := check(gctx); err != nil {
				results[i] = err.Error()
			} else {
				results[i] = "ok"
			}
			return nil
		})
	}
	_ = g.Wait()

	resp := Response{Status: "ok", Checks: make(map[string]string, len(names))}
	status := http.StatusOK
	for i, name := range names {
		resp.Checks[name] = results[i]
		if results[i] != "ok" {
			resp.Status = "degraded"
			status = http.StatusServiceUnavailable
		}
	}

	httputil.WriteJSON(w, status, resp)
}

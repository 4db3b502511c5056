package server

import (
	"context"
	"net/http"
	"sync"
	"time"

	"go.uber.org/zap"
)

const probeTimeout = 5 * time.Second

// Probe checks one backend the router depends on
type Probe struct {
	Name  string
	Check func(ctx context.Context) bool
}

// HandlerOption configures NewHandler
type HandlerOption func(*handler)

// WithReadiness adds GET /readyz, which reports 503 while any probe fails.
func WithReadiness(probes ...Probe) HandlerOption {
	return func(h *handler) { h.probes = probes }
}

// CheckBackends runs every probe concurrently and returns name -> available.
// Unavailable backends are logged as warnings.
func CheckBackends(ctx context.Context, probes []Probe, logger *zap.Logger) map[string]bool {
	ctx, cancel := context.WithTimeout(ctx, probeTimeout)
	defer cancel()

	var (
		mu  sync.Mutex
		wg  sync.WaitGroup
		out = make(map[string]bool, len(probes))
	)
	for _, p := range probes {
		wg.Add(1)
		go func(p Probe) {
			defer wg.Done()
			ok := p.Check(ctx)
			mu.Lock()
			out[p.Name] = ok
			mu.Unlock()
			if !ok {
				logger.Warn("backend unavailable", zap.String("backend", p.Name))
			}
		}(p)
	}
	wg.Wait()
	return out
}

func (h *handler) readyz(w http.ResponseWriter, r *http.Request) {
	backends := CheckBackends(r.Context(), h.probes, h.logger)

	status, code := "ready", http.StatusOK
	for _, ok := range backends {
		if !ok {
			status, code = "unavailable", http.StatusServiceUnavailable
			break
		}
	}
	writeJSON(w, code, map[string]any{"status": status, "backends": backends})
}

// Package server exposes the query router over HTTP and MCP.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/ppiankov/basir/internal/model"
)

// Runner answers one query
type Runner interface {
	Run(ctx context.Context, query string) *model.Response
}

// NewHandler returns the HTTP API:
//
//	GET /api/run_crew?query=<text>  aggregated response or {"error": "..."}
//	GET /healthz                    liveness
//	GET /readyz                     backend availability (WithReadiness)
func NewHandler(runner Runner, logger *zap.Logger, opts ...HandlerOption) http.Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	h := &handler{runner: runner, logger: logger}
	for _, opt := range opts {
		opt(h)
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/run_crew", h.runCrew)
	mux.HandleFunc("GET /healthz", h.healthz)
	if len(h.probes) > 0 {
		mux.HandleFunc("GET /readyz", h.readyz)
	}
	return mux
}

type handler struct {
	runner Runner
	logger *zap.Logger
	probes []Probe
}

func (h *handler) runCrew(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("query")
	if strings.TrimSpace(query) == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "query parameter is required"})
		return
	}

	start := time.Now()
	resp := h.runner.Run(r.Context(), query)

	h.logger.Info("run_crew",
		zap.String("request_id", resp.RequestID),
		zap.String("kind", string(resp.Kind)),
		zap.Duration("elapsed", time.Since(start)))

	if resp.RequestID != "" {
		w.Header().Set("X-Request-ID", resp.RequestID)
	}
	// Error outcomes are ordinary results of the query, not transport failures.
	writeJSON(w, http.StatusOK, resp)
}

func (h *handler) healthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		status = http.StatusInternalServerError
		data = []byte(`{"error":"` + model.ErrMsgInternal + `"}`)
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(data)
}

// ListenAndServe serves handler on addr until ctx is cancelled, then shuts
// down gracefully.
func ListenAndServe(ctx context.Context, addr string, handler http.Handler, logger *zap.Logger) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("http server listening", zap.String("addr", addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		logger.Info("http server shutting down")
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		<-errCh
		return nil
	}
}

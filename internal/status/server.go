package status

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"ddogreen/internal/logging"
)

const shutdownTimeout = 5 * time.Second

// Provider returns the current status document
type Provider func() Document

// HealthFunc reports an error while the controller is unhealthy
type HealthFunc func() error

// Server exposes /healthz, /status and /metrics
type Server struct {
	addr     string
	provider Provider
	health   HealthFunc
	metrics  http.Handler
	logger   *logging.Logger
}

// NewServer creates a status server. health and metrics may be nil; without a
// health check /healthz reports the document's running flag.
func NewServer(addr string, provider Provider, health HealthFunc, metrics http.Handler, logger *logging.Logger) *Server {
	return &Server{
		addr:     addr,
		provider: provider,
		health:   health,
		metrics:  metrics,
		logger:   logger,
	}
}

// Handler builds the HTTP routes
func (s *Server) Handler() http.Handler {
	mux := chi.NewRouter()
	mux.Use(middleware.Recoverer)

	mux.Get("/healthz", s.handleHealth)
	mux.Get("/status", s.handleStatus)
	if s.metrics != nil {
		mux.Handle("/metrics", s.metrics)
	}

	return mux
}

// Run serves until ctx is cancelled
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.addr)
	if err != nil {
		return err
	}
	return s.Serve(ctx, ln)
}

// Serve serves on ln until ctx is cancelled
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Serve(ln)
	}()

	s.logger.Info("status.server.started", "Status server listening", map[string]interface{}{
		"addr": ln.Addr().String(),
	})

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		s.logger.Info("status.server.stopped", "Status server stopped", nil)
		return nil
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	doc := s.provider()

	body := map[string]interface{}{
		"status": "ok",
		"run_id": doc.RunID,
	}
	code := http.StatusOK

	switch {
	case s.health != nil:
		if err := s.health(); err != nil {
			code = http.StatusServiceUnavailable
			body["status"] = "unhealthy"
			body["error"] = err.Error()
		}
	case !doc.Running:
		code = http.StatusServiceUnavailable
		body["status"] = "stopped"
	}

	writeJSON(w, code, body)
}

func (s *Server) handleStatus(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.provider())
}

func writeJSON(w http.ResponseWriter, code int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

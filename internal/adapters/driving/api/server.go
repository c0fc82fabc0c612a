package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/custodia-labs/sercha-ingest/internal/core/domain"
	"github.com/custodia-labs/sercha-ingest/internal/logger"
)

// RequestIDHeader carries the request identifier echoed on every response.
const RequestIDHeader = "X-Request-ID"

// Server is the HTTP ingestion server.
type Server struct {
	ports *Ports
	cfg   domain.ServerSettings
	mux   *http.ServeMux
}

// NewServer creates a new HTTP server with the given ports.
func NewServer(ports *Ports, cfg domain.ServerSettings) (*Server, error) {
	if err := ports.Validate(); err != nil {
		return nil, fmt.Errorf("validating ports: %w", err)
	}

	s := &Server{
		ports: ports,
		cfg:   cfg,
		mux:   http.NewServeMux(),
	}
	s.routes()
	return s, nil
}

func (s *Server) routes() {
	s.mux.HandleFunc("POST /ingest", s.handleIngest)
	if s.ports.Batch != nil {
		s.mux.HandleFunc("POST /ingest/batch", s.handleBatch)
	}
	s.mux.HandleFunc("GET /health", s.handleHealth)
}

// Handler returns the routed handler with request IDs and timeouts applied.
func (s *Server) Handler() http.Handler {
	return s.withRequestContext(s.mux)
}

// Run listens on the configured address until ctx is cancelled.
func (s *Server) Run(ctx context.Context) error {
	httpServer := &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		httpServer.Shutdown(shutdownCtx) //nolint:errcheck
	}()

	logger.Info("listening on %s", s.cfg.Addr)
	err := httpServer.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

// withRequestContext tags each request with an ID and bounds it by the
// configured request timeout.
func (s *Server) withRequestContext(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(RequestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set(RequestIDHeader, id)

		ctx := r.Context()
		if s.cfg.RequestTimeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, s.cfg.RequestTimeout)
			defer cancel()
		}

		start := time.Now()
		next.ServeHTTP(w, r.WithContext(ctx))
		logger.Debug("%s %s %s (%s)", id, r.Method, r.URL.Path, time.Since(start))
	})
}

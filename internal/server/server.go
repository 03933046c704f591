// Package server publishes archived schedb snapshots over HTTP.
package server

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"schedconv/internal/archive"
	"schedconv/internal/logger"
)

const shutdownTimeout = 10 * time.Second

// Server serves snapshots from an archive.
type Server struct {
	Store       archive.Store
	Log         *logger.Logger
	ReadTimeout time.Duration
}

// New creates a Server. A nil log discards output.
func New(store archive.Store, log *logger.Logger, readTimeout time.Duration) *Server {
	if log == nil {
		log = logger.Nop()
	}

	return &Server{
		Store:       store,
		Log:         log,
		ReadTimeout: readTimeout,
	}
}

// Handler returns the routed handler.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /course/{file}", s.handleCourse)
	mux.HandleFunc("GET /history/{semester}", s.handleHistory)
	mux.HandleFunc("GET /diff", s.handleDiff)
	mux.HandleFunc("GET /healthz", s.handleHealth)

	return s.logRequests(mux)
}

// Run listens on addr until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadTimeout:       s.ReadTimeout,
		ReadHeaderTimeout: s.ReadTimeout,
	}

	errCh := make(chan error, 1)

	go func() {
		s.Log.Info("Starting server", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}

		return err
	case <-ctx.Done():
	}

	s.Log.Info("Shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	return srv.Shutdown(shutdownCtx)
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(rec, r)

		level := slog.LevelDebug
		if rec.status >= http.StatusInternalServerError {
			level = slog.LevelWarn
		}

		s.Log.Log(r.Context(), level, "Request served",
			"method", r.Method,
			"path", r.URL.Path,
			"status", rec.status,
			"duration", time.Since(start),
		)
	})
}

package api

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"
)

// Server hosts the run-control endpoints over HTTP.
type Server struct {
	addr   string
	runner *Runner
	log    *slog.Logger
	http   *http.Server
}

// NewServer creates a server bound to addr, driving runs through runner.
func NewServer(addr string, runner *Runner, log *slog.Logger) *Server {
	s := &Server{addr: addr, runner: runner, log: log}

	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/backtest/start", s.handleStart)
	mux.HandleFunc("GET /api/backtest/status", s.handleStatus)
	mux.HandleFunc("GET /api/backtest/results", s.handleResults)
	mux.HandleFunc("POST /api/backtest/stop", s.handleStop)

	s.http = &http.Server{Addr: addr, Handler: mux}
	return s
}

// Handler exposes the route table, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.http.Handler
}

// ListenAndServe blocks until the context is cancelled or the listener
// fails, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		s.log.Info("run-control API listening", "addr", s.addr)
		errCh <- s.http.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return s.http.Shutdown(shutdownCtx)
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}

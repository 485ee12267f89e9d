// internal/server/server.go
//
// HTTP server handle.
//
// Context
// -------
// `New` takes an already-bound listener, so callers choose the address
// (tests bind 127.0.0.1:0 and read the port back).  It registers the routes
// and returns immediately; the accept loop runs only when the caller hands
// `Serve` to a goroutine.  Each connection is then served on its own
// goroutine by net/http, and handlers share the pool by reference.
//
// Timeouts
// --------
//   • ReadHeaderTimeout  – abort slow-loris headers (10 s)
//   • IdleTimeout        – close idle keep-alives (60 s)
//
// No read or write timeout is set; a request lasts as long as its
// database call does.

package server

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/jmoiron/sqlx"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// Server is a running-or-ready HTTP server bound to one listener.
type Server struct {
	http     *http.Server
	listener net.Listener
	log      *zap.SugaredLogger
}

// New wires the routes around db.  It does not start serving.
func New(ln net.Listener, db *sqlx.DB, log *zap.SugaredLogger) *Server {
	return newServer(ln, NewRouter(db, log), log)
}

// NewMetrics serves the Prometheus registry on its own listener, away from
// the public routes.
func NewMetrics(ln net.Listener, log *zap.SugaredLogger) *Server {
	mux := chi.NewRouter()
	mux.Handle("/metrics", promhttp.Handler())
	return newServer(ln, mux, log.With("listener", "metrics"))
}

func newServer(ln net.Listener, h http.Handler, log *zap.SugaredLogger) *Server {
	return &Server{
		http: &http.Server{
			Handler:           h,
			ReadHeaderTimeout: 10 * time.Second,
			IdleTimeout:       60 * time.Second,
			ErrorLog:          zap.NewStdLog(log.Desugar()),
		},
		listener: ln,
		log:      log,
	}
}

// Addr is the bound listener address.
func (s *Server) Addr() net.Addr { return s.listener.Addr() }

// Serve runs the accept loop until Shutdown or a listener failure.  A
// graceful shutdown returns nil.
func (s *Server) Serve() error {
	s.log.Infow("listening", "addr", s.Addr().String())
	if err := s.http.Serve(s.listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown stops accepting and waits for in-flight requests until ctx ends.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.http.Shutdown(ctx)
}

// Package server exposes the metric registry over HTTP in the
// Prometheus text exposition format.
package server

import (
	"context"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Server serves the exposition endpoint. Scrapes read a consistent
// registry snapshot and run concurrently with refresh cycles.
type Server struct {
	addr   string
	path   string
	server *http.Server
}

// New creates an HTTP server exposing registry at path.
func New(listenAddr string, port int, path string, registry *prometheus.Registry) *Server {
	mux := http.NewServeMux()
	mux.Handle(path, promhttp.HandlerFor(
		registry,
		promhttp.HandlerOpts{
			EnableOpenMetrics: true,
		},
	))

	addr := net.JoinHostPort(listenAddr, strconv.Itoa(port))

	return &Server{
		addr: addr,
		path: path,
		server: &http.Server{
			Addr:    addr,
			Handler: mux,
		},
	}
}

// Start begins serving and blocks until ctx is cancelled or the
// listener fails.
func (s *Server) Start(ctx context.Context) error {
	errChan := make(chan error, 1)

	go func() {
		slog.Info("listening", "addr", s.addr, "path", s.path)
		if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errChan <- err
		}
	}()

	select {
	case err := <-errChan:
		return err
	case <-ctx.Done():
		return s.shutdown()
	}
}

// shutdown gracefully stops the server.
func (s *Server) shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	slog.Info("shutting down server")
	return s.server.Shutdown(ctx)
}

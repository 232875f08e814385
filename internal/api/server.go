package api

import (
	"context"
	"net/http"
	"time"

	"github.com/guaraci/paylink/internal/config"
)

// Server owns the HTTP listener.
type Server struct {
	config  config.ServerConfig
	handler http.Handler
	server  *http.Server
}

func NewServer(cfg config.ServerConfig, handler http.Handler) *Server {
	return &Server{
		config:  cfg,
		handler: handler,
		server: &http.Server{
			Addr:    cfg.Addr(),
			Handler: handler,
			// Uploads carry two images; allow slow mobile links.
			ReadTimeout:       2 * time.Minute,
			ReadHeaderTimeout: 15 * time.Second,
			WriteTimeout:      2 * time.Minute,
			IdleTimeout:       120 * time.Second,
		},
	}
}

// ListenAndServe blocks until the server stops. It returns
// http.ErrServerClosed after Shutdown.
func (s *Server) ListenAndServe() error {
	return s.server.ListenAndServe()
}

// Shutdown stops accepting connections and waits for in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}

// Addr returns the configured listen address.
func (s *Server) Addr() string { return s.server.Addr }

// Handler returns the HTTP handler for testing
func (s *Server) Handler() http.Handler {
	return s.handler
}

package api

import (
	"context"
	"errors"
	"net/http"
	"time"
)

// ServerOptions carry the listener timeouts. Zero values fall back to
// the production defaults.
type ServerOptions struct {
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
}

// Server owns the public HTTP listener. Construction opens nothing;
// tests exercise handlers through NewRouter and httptest instead.
type Server struct {
	httpServer *http.Server
}

// NewServer wraps handler in an http.Server bound to addr.
func NewServer(addr string, handler http.Handler, opts ServerOptions) *Server {
	if opts.ReadTimeout == 0 {
		opts.ReadTimeout = 30 * time.Second
	}
	if opts.WriteTimeout == 0 {
		opts.WriteTimeout = 30 * time.Second
	}
	if opts.IdleTimeout == 0 {
		opts.IdleTimeout = 60 * time.Second
	}
	return &Server{
		httpServer: &http.Server{
			Addr:         addr,
			Handler:      handler,
			ReadTimeout:  opts.ReadTimeout,
			WriteTimeout: opts.WriteTimeout,
			IdleTimeout:  opts.IdleTimeout,
		},
	}
}

// Run serves until Shutdown is called or the listener fails. A graceful
// close reports nil.
func (s *Server) Run() error {
	err := s.httpServer.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

// Shutdown stops accepting connections and drains in-flight requests.
// Hijacked state feed connections are not drained here; the feed closes
// them itself.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

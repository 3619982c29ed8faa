// Package server exposes the prayer time engine over a small JSON HTTP API.
package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/smokyabdulrahman/salat/internal/prayer"
)

const (
	// DefaultRateLimit is the number of requests allowed per client IP per minute.
	DefaultRateLimit = 120
	shutdownTimeout  = 10 * time.Second
)

// Config configures the router and the HTTP server.
type Config struct {
	Addr    string
	Version string
	Logger  zerolog.Logger

	// Location is used when a request carries no tz parameter.
	Location *time.Location
	// Parameters are the calculation settings a request starts from.
	Parameters prayer.Parameters
	// RateLimit is requests per minute per client IP; zero uses DefaultRateLimit.
	RateLimit int

	Now func() time.Time
}

func (c *Config) setDefaults() {
	if c.Location == nil {
		c.Location = time.Local
	}
	if c.Parameters == (prayer.Parameters{}) {
		c.Parameters = prayer.DefaultParameters()
	}
	if c.RateLimit <= 0 {
		c.RateLimit = DefaultRateLimit
	}
	if c.Now == nil {
		c.Now = time.Now
	}
	if c.Version == "" {
		c.Version = "dev"
	}
}

// NewRouter builds the chi router with middleware and all routes.
func NewRouter(cfg Config) *chi.Mux {
	cfg.setDefaults()
	h := &handler{cfg: cfg}

	r := chi.NewRouter()
	r.Use(RequestID)
	r.Use(RequestLogger(cfg.Logger))
	r.Use(Recovery(cfg.Logger))
	r.NotFound(notFound)

	r.Get("/health", h.health)

	r.Route("/v1", func(r chi.Router) {
		r.Use(RateLimitByIP(cfg.RateLimit, time.Minute))
		r.Get("/methods", h.methods)
		r.Get("/schedule", h.schedule)
		r.Get("/status", h.status)
		r.Get("/hijri", h.hijri)
	})
	return r
}

// Server wraps an http.Server serving NewRouter.
type Server struct {
	http *http.Server
	log  zerolog.Logger
}

// New creates a server listening on cfg.Addr once Run is called.
func New(cfg Config) *Server {
	return &Server{
		http: &http.Server{
			Addr:              cfg.Addr,
			Handler:           NewRouter(cfg),
			ReadHeaderTimeout: 5 * time.Second,
			ReadTimeout:       15 * time.Second,
			WriteTimeout:      15 * time.Second,
			IdleTimeout:       60 * time.Second,
		},
		log: cfg.Logger,
	}
}

// Handler returns the root handler.
func (s *Server) Handler() http.Handler { return s.http.Handler }

// Run serves until ctx is cancelled, then shuts down gracefully. It returns
// nil after a clean shutdown.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		s.log.Info().Str("addr", s.http.Addr).Msg("server listening")
		if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	s.log.Info().Msg("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := s.http.Shutdown(shutdownCtx); err != nil {
		return err
	}
	s.log.Info().Msg("server stopped")
	return <-errCh
}

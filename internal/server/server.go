// Package server exposes the conversion pipeline over HTTP: clients upload a
// mesh, receive a measurement report and download the canonical STL.
package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/philipparndt/gomesh/internal/cache"
	"github.com/philipparndt/gomesh/internal/config"
	"github.com/philipparndt/gomesh/pkg/meshio"
	"github.com/philipparndt/gomesh/pkg/pipeline"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/hlog"
)

// Options holds the collaborators of a Server.
type Options struct {
	Config   config.ServerConfig
	Logger   zerolog.Logger
	Pipeline *pipeline.Pipeline
	Cache    cache.Client
	CacheTTL time.Duration
	// Formats restricts the accepted upload formats; empty accepts every
	// format the pipeline supports
	Formats []meshio.Format
}

// Server is the HTTP upload service.
type Server struct {
	cfg      config.ServerConfig
	logger   zerolog.Logger
	pipeline *pipeline.Pipeline
	cache    cache.Client
	cacheTTL time.Duration
	formats  map[meshio.Format]bool
}

// New creates a server. A nil pipeline uses the default pipeline
// configuration and a nil cache an in-memory one.
func New(opts Options) *Server {
	s := &Server{
		cfg:      opts.Config,
		logger:   opts.Logger,
		pipeline: opts.Pipeline,
		cache:    opts.Cache,
		cacheTTL: opts.CacheTTL,
		formats:  make(map[meshio.Format]bool),
	}
	if s.pipeline == nil {
		s.pipeline = pipeline.New()
	}
	if s.cache == nil {
		s.cache = cache.NewMemoryClient(0, 0)
	}
	if s.cacheTTL <= 0 {
		s.cacheTTL = 30 * time.Minute
	}
	if s.cfg.MaxUploadBytes <= 0 {
		s.cfg.MaxUploadBytes = 64 << 20
	}

	formats := opts.Formats
	if len(formats) == 0 {
		formats = s.pipeline.Formats()
	}
	for _, f := range formats {
		if s.pipeline.Supports(f) {
			s.formats[f] = true
		}
	}
	return s
}

// Handler returns the router with all routes configured.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(hlog.NewHandler(s.logger))
	r.Use(hlog.AccessHandler(accessLog))
	r.Use(chimiddleware.Recoverer)
	if s.cfg.RequestTimeout > 0 {
		r.Use(chimiddleware.Timeout(s.cfg.RequestTimeout))
	}

	r.Get("/health", s.health)

	r.Route("/api/v1/meshes", func(r chi.Router) {
		r.Post("/", s.upload)
		r.Get("/{id}/stl", s.download)
		r.Get("/{id}/preview.png", s.preview)
	})

	return r
}

func accessLog(r *http.Request, status, size int, duration time.Duration) {
	hlog.FromRequest(r).Info().
		Str("request_id", chimiddleware.GetReqID(r.Context())).
		Str("method", r.Method).
		Str("path", r.URL.Path).
		Int("status", status).
		Int("size", size).
		Dur("duration", duration).
		Msg("request")
}

// Run serves on the configured address until ctx is cancelled, then shuts
// down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:         s.cfg.Addr(),
		Handler:      s.Handler(),
		ReadTimeout:  s.cfg.ReadTimeout,
		WriteTimeout: s.cfg.WriteTimeout,
		IdleTimeout:  s.cfg.IdleTimeout,
	}

	serverErrors := make(chan error, 1)
	go func() {
		s.logger.Info().Str("addr", srv.Addr).Msg("HTTP server listening")
		serverErrors <- srv.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		s.logger.Info().Msg("Shutdown signal received")
	}

	timeout := s.cfg.GracefulShutdown
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		s.logger.Error().Err(err).Msg("Graceful shutdown failed")
		if err := srv.Close(); err != nil {
			s.logger.Error().Err(err).Msg("Forced shutdown failed")
		}
		return err
	}

	s.logger.Info().Msg("Server stopped")
	return nil
}

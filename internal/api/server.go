// Package api exposes the gateway over HTTP: job submission, the device
// info query surface, the administrative status endpoint, and the job
// history. Request decoding doubles as the parser-collaborator seam; the
// pipeline itself never sees wire bytes.
package api

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"golang.org/x/sync/errgroup"

	"github.com/qbridge-labs/qbridge/internal/pipeline"
	"github.com/qbridge-labs/qbridge/internal/state"
)

// Server is the HTTP serving surface.
type Server struct {
	pipeline *pipeline.Pipeline
	store    state.Store
	addr     string
	logger   *slog.Logger
}

// Config holds server construction parameters.
type Config struct {
	Pipeline *pipeline.Pipeline
	Store    state.Store // optional; enables the job history endpoints
	Addr     string
	Logger   *slog.Logger
}

// NewServer creates a server.
func NewServer(cfg Config) *Server {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Server{
		pipeline: cfg.Pipeline,
		store:    cfg.Store,
		addr:     cfg.Addr,
		logger:   logger,
	}
}

// Router builds the chi router. Exposed separately from Serve for tests.
func (s *Server) Router() chi.Router {
	r := chi.NewMux()
	r.Use(
		middleware.RequestID,
		middleware.Recoverer,
	)

	r.Route("/v1", func(r chi.Router) {
		r.Post("/jobs", s.handleSubmitJob)
		r.Get("/device", s.handleDeviceInfo)
		r.Get("/status", s.handleGetStatus)
		r.Put("/status", s.handleSetStatus)
		if s.store != nil {
			r.Get("/jobs", s.handleListJobs)
			r.Get("/jobs/{id}", s.handleGetJob)
		}
	})
	return r
}

// Serve starts the HTTP server and blocks until ctx is cancelled, then
// shuts down gracefully.
func (s *Server) Serve(ctx context.Context) error {
	s.logger.Info("starting gateway server", "addr", s.addr)

	eg, egctx := errgroup.WithContext(ctx)

	srv := &http.Server{
		Addr:    s.addr,
		Handler: s.Router(),
		BaseContext: func(_ net.Listener) context.Context {
			return egctx
		},
		ReadHeaderTimeout: 10 * time.Second,
	}

	eg.Go(func() error {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	eg.Go(func() error {
		<-egctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		s.logger.Info("shutting down gateway server")
		return srv.Shutdown(shutdownCtx)
	})

	if err := eg.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

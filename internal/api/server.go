package api

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"audioshare/internal/config"
	"audioshare/internal/logging"
	"audioshare/internal/share"
	"audioshare/internal/store"
)

const shutdownGrace = 10 * time.Second

// Server is the HTTP surface over the sharing service. Routing stays thin;
// all upload and lookup semantics live in internal/share.
type Server struct {
	cfg     *config.Config
	share   *share.Service
	store   *store.Store
	logger  *slog.Logger
	metrics *Metrics
}

// NewServer wires the HTTP surface.
func NewServer(cfg *config.Config, svc *share.Service, st *store.Store, logger *slog.Logger) *Server {
	return &Server{
		cfg:     cfg,
		share:   svc,
		store:   st,
		logger:  logging.NewComponentLogger(logger, "api"),
		metrics: NewMetrics(),
	}
}

// Router assembles the route tree.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(requestID)
	r.Use(s.requestLogger)
	r.Use(s.instrument)

	r.Route("/audio_share", func(r chi.Router) {
		r.Put("/audio", s.handleUploadAudio)
		r.Put("/project", s.handleUploadProject)
		r.Get("/download/{short_url}", s.handleDownload)
		r.Get("/project/{project_id}", s.handleProjectURL)
		r.Get("/{short_url}", s.handleLookup)
	})
	r.Get("/healthz", s.handleHealth)
	r.Method(http.MethodGet, "/metrics", s.metrics.Handler())
	return r
}

// Run serves until the context is canceled, then drains connections.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.Paths.APIBind,
		Handler:           s.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("listening", logging.String("bind", srv.Addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

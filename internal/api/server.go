package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"

	"github.com/seenlogapp/seenlog/internal/api/handlers"
	"github.com/seenlogapp/seenlog/internal/api/middleware"
	"github.com/seenlogapp/seenlog/internal/config"
	"github.com/seenlogapp/seenlog/internal/controllers"
	"github.com/seenlogapp/seenlog/internal/models"
)

// Server represents the HTTP server
type Server struct {
	server      *http.Server
	db          *models.Database
	statsCtrl   *controllers.StatsController
	catchUpCtrl *controllers.CatchUpController
	datesCtrl   *controllers.DatesController
	logger      *logrus.Logger
}

// NewServer creates a new HTTP server
func NewServer(cfg *config.Config, db *models.Database, statsCtrl *controllers.StatsController, catchUpCtrl *controllers.CatchUpController, datesCtrl *controllers.DatesController, logger *logrus.Logger) *Server {
	s := &Server{
		db:          db,
		statsCtrl:   statsCtrl,
		catchUpCtrl: catchUpCtrl,
		datesCtrl:   datesCtrl,
		logger:      logger,
	}

	mux := http.NewServeMux()
	s.setupRoutes(mux)

	s.server = &http.Server{
		Addr:         ":" + cfg.ServerPort,
		Handler:      middleware.Logging(mux, logger),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return s
}

// setupRoutes configures all HTTP routes
func (s *Server) setupRoutes(mux *http.ServeMux) {
	// Health check
	healthHandler := handlers.NewHealthHandler(s.logger)
	mux.HandleFunc("/health", healthHandler.ServeHTTP)

	// Status endpoint
	statusHandler := handlers.NewStatusHandler(s.db, s.logger)
	mux.HandleFunc("/status", statusHandler.ServeHTTP)

	// Prometheus metrics
	mux.Handle("/metrics", promhttp.Handler())

	// Stats report
	statsHandler := handlers.NewStatsHandler(s.statsCtrl, s.logger)
	mux.HandleFunc("/api/stats", statsHandler.ServeHTTP)
	mux.HandleFunc("/api/stats/refresh", statsHandler.Refresh)

	// Catch-up reconciliation
	catchUpHandler := handlers.NewCatchUpHandler(s.catchUpCtrl, s.logger)
	mux.HandleFunc("/api/catchup", catchUpHandler.ServeHTTP)
	mux.HandleFunc("/api/catchup/summary", catchUpHandler.Summary)

	// Watch state mutations
	episodesHandler := handlers.NewEpisodesHandler(s.datesCtrl, s.logger)
	mux.HandleFunc("/api/episodes/watch", episodesHandler.Watch)
	mux.HandleFunc("/api/episodes/unwatch", episodesHandler.Unwatch)
	mux.HandleFunc("/api/episodes/season", episodesHandler.Season)

	libraryHandler := handlers.NewLibraryHandler(s.db, s.datesCtrl, s.logger)
	mux.HandleFunc("/api/series/status", libraryHandler.SeriesStatus)
	mux.HandleFunc("/api/movies/status", libraryHandler.MovieStatus)
}

// Start starts the HTTP server
func (s *Server) Start(ctx context.Context) error {
	s.logger.WithField("port", s.server.Addr).Info("Starting HTTP server")

	errChan := make(chan error, 1)
	go func() {
		if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errChan <- err
		}
	}()

	select {
	case err := <-errChan:
		return fmt.Errorf("server error: %w", err)
	case <-ctx.Done():
		return s.Shutdown(context.Background())
	}
}

// Shutdown gracefully shuts down the HTTP server
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("Shutting down HTTP server")
	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	return s.server.Shutdown(shutdownCtx)
}

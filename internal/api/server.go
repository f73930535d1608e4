package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/amaumene/nextup/internal/api/handlers"
	"github.com/amaumene/nextup/internal/api/middleware"
	"github.com/amaumene/nextup/internal/config"
	"github.com/amaumene/nextup/internal/controllers"
	"github.com/amaumene/nextup/internal/models"
	"github.com/sirupsen/logrus"
)

// Server represents the HTTP server
type Server struct {
	server       *http.Server
	db           *models.Database
	libraryCtrl  *controllers.LibraryController
	episodeCtrl  *controllers.EpisodeController
	scheduleCtrl *controllers.ScheduleController
	peopleCtrl   *controllers.PeopleController
	logger       *logrus.Logger
}

// NewServer creates a new HTTP server
func NewServer(
	cfg *config.Config,
	db *models.Database,
	libraryCtrl *controllers.LibraryController,
	episodeCtrl *controllers.EpisodeController,
	scheduleCtrl *controllers.ScheduleController,
	peopleCtrl *controllers.PeopleController,
	logger *logrus.Logger,
) *Server {
	s := &Server{
		db:           db,
		libraryCtrl:  libraryCtrl,
		episodeCtrl:  episodeCtrl,
		scheduleCtrl: scheduleCtrl,
		peopleCtrl:   peopleCtrl,
		logger:       logger,
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
	healthHandler := handlers.NewHealthHandler(s.logger)
	mux.HandleFunc("GET /health", healthHandler.ServeHTTP)

	statusHandler := handlers.NewStatusHandler(s.db, s.logger)
	mux.HandleFunc("GET /status", statusHandler.ServeHTTP)

	showsHandler := handlers.NewShowsHandler(s.libraryCtrl, s.logger)
	mux.HandleFunc("POST /shows/search", showsHandler.Search)
	mux.HandleFunc("POST /shows/add", showsHandler.Add)
	mux.HandleFunc("GET /shows", showsHandler.List)
	mux.HandleFunc("POST /shows/{id}/status", showsHandler.SetStatus)
	mux.HandleFunc("POST /shows/{id}/pace", showsHandler.SetPace)

	episodesHandler := handlers.NewEpisodesHandler(s.libraryCtrl, s.episodeCtrl, s.logger)
	mux.HandleFunc("GET /shows/{id}/episodes", episodesHandler.List)
	mux.HandleFunc("GET /shows/{id}/progress", episodesHandler.Progress)
	mux.HandleFunc("GET /shows/{id}/history", episodesHandler.History)
	mux.HandleFunc("POST /episodes/watched", episodesHandler.MarkWatched)
	mux.HandleFunc("POST /episodes/watched/bulk", episodesHandler.BulkMarkWatched)
	mux.HandleFunc("DELETE /history/{id}", episodesHandler.DeleteHistory)

	scheduleHandler := handlers.NewScheduleHandler(s.scheduleCtrl, s.logger)
	mux.HandleFunc("GET /schedule/today", scheduleHandler.Today)

	peopleHandler := handlers.NewPeopleHandler(s.peopleCtrl, s.logger)
	mux.HandleFunc("GET /shows/{id}/cast", peopleHandler.Cast)
	mux.HandleFunc("GET /people/{id}/seen-in", peopleHandler.SeenIn)
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

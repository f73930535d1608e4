package handlers

import (
	"net/http"

	"github.com/amaumene/nextup/internal/models"
	"github.com/sirupsen/logrus"
)

// StatusHandler reports library statistics
type StatusHandler struct {
	db     *models.Database
	logger *logrus.Logger
}

// NewStatusHandler creates a new status handler
func NewStatusHandler(db *models.Database, logger *logrus.Logger) *StatusHandler {
	return &StatusHandler{db: db, logger: logger}
}

// StatusResponse represents the status response
type StatusResponse struct {
	TotalShows    int            `json:"total_shows"`
	Airing        int            `json:"airing"`
	Watching      int            `json:"watching"`
	Finished      int            `json:"finished"`
	Watchlist     int            `json:"watchlist"`
	Abandoned     int            `json:"abandoned"`
	ShowsByType   map[string]int `json:"shows_by_type"`
	ShowsByPace   map[string]int `json:"shows_by_pace"`
}

// ServeHTTP handles the status endpoint
func (h *StatusHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	shows, err := h.db.GetAllShows()
	if err != nil {
		h.logger.WithError(err).Error("Failed to get shows")
		writeError(w, http.StatusInternalServerError, "failed to get shows")
		return
	}

	response := StatusResponse{
		TotalShows:  len(shows),
		ShowsByType: make(map[string]int),
		ShowsByPace: make(map[string]int),
	}

	for _, show := range shows {
		switch show.Status {
		case models.StatusAiring:
			response.Airing++
		case models.StatusWatching:
			response.Watching++
		case models.StatusFinished:
			response.Finished++
		case models.StatusWatchlist:
			response.Watchlist++
		case models.StatusAbandoned:
			response.Abandoned++
		}

		response.ShowsByType[string(show.Type)]++
		response.ShowsByPace[string(show.Pace)]++
	}

	writeJSON(w, http.StatusOK, response)
}

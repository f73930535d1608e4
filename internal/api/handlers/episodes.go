package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/amaumene/nextup/internal/controllers"
	"github.com/amaumene/nextup/internal/models"
	"github.com/sirupsen/logrus"
)

// EpisodesHandler handles episode and watch-history endpoints
type EpisodesHandler struct {
	libraryCtrl *controllers.LibraryController
	episodeCtrl *controllers.EpisodeController
	logger      *logrus.Logger
}

// NewEpisodesHandler creates a new episodes handler
func NewEpisodesHandler(libraryCtrl *controllers.LibraryController, episodeCtrl *controllers.EpisodeController, logger *logrus.Logger) *EpisodesHandler {
	return &EpisodesHandler{
		libraryCtrl: libraryCtrl,
		episodeCtrl: episodeCtrl,
		logger:      logger,
	}
}

// List handles GET /shows/{id}/episodes
func (h *EpisodesHandler) List(w http.ResponseWriter, r *http.Request) {
	tmdbID, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	episodes, err := h.libraryCtrl.Episodes(r.Context(), tmdbID)
	if err != nil {
		if err == models.ErrNotFound {
			writeError(w, http.StatusNotFound, "show not tracked")
			return
		}
		h.logger.WithError(err).Error("Failed to load episodes")
		writeError(w, http.StatusBadGateway, "failed to load episodes")
		return
	}
	writeJSON(w, http.StatusOK, episodes)
}

// Progress handles GET /shows/{id}/progress
func (h *EpisodesHandler) Progress(w http.ResponseWriter, r *http.Request) {
	tmdbID, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	report, err := h.libraryCtrl.Progress(r.Context(), tmdbID, time.Now())
	if err != nil {
		if err == models.ErrNotFound {
			writeError(w, http.StatusNotFound, "show not tracked")
			return
		}
		h.logger.WithError(err).Error("Failed to compute progress")
		writeError(w, http.StatusInternalServerError, "failed to compute progress")
		return
	}
	writeJSON(w, http.StatusOK, report)
}

// WatchedRequest is the body of POST /episodes/watched
type WatchedRequest struct {
	TMDBShowID    int64  `json:"tmdb_show_id"`
	SeasonNumber  int    `json:"season_number"`
	EpisodeNumber int    `json:"episode_number"`
	Watched       bool   `json:"watched"`
	WatchedAt     string `json:"watched_at,omitempty"` // "today" (default) or YYYY-MM-DD
}

// MarkWatched handles POST /episodes/watched
func (h *EpisodesHandler) MarkWatched(w http.ResponseWriter, r *http.Request) {
	var req WatchedRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.TMDBShowID == 0 {
		writeError(w, http.StatusBadRequest, "tmdb_show_id is required")
		return
	}

	if !req.Watched {
		if err := h.episodeCtrl.MarkUnwatched(req.TMDBShowID, req.SeasonNumber, req.EpisodeNumber); err != nil {
			if err == models.ErrNotFound {
				writeError(w, http.StatusNotFound, "episode not found")
				return
			}
			h.logger.WithError(err).Error("Failed to mark episode unwatched")
			writeError(w, http.StatusInternalServerError, "failed to mark episode unwatched")
			return
		}
		writeJSON(w, http.StatusOK, map[string]bool{"watched": false})
		return
	}

	watchedAt, err := resolveWatchedAt(req.WatchedAt)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.episodeCtrl.MarkWatched(req.TMDBShowID, req.SeasonNumber, req.EpisodeNumber, watchedAt); err != nil {
		h.logger.WithError(err).Error("Failed to mark episode watched")
		writeError(w, http.StatusNotFound, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"watched": true})
}

// BulkWatchedRequest is the body of POST /episodes/watched/bulk
type BulkWatchedRequest struct {
	TMDBShowID   int64  `json:"tmdb_show_id"`
	SeasonNumber *int   `json:"season_number,omitempty"` // nil = entire show
	WatchedAt    string `json:"watched_at,omitempty"`
}

// BulkMarkWatched handles POST /episodes/watched/bulk
func (h *EpisodesHandler) BulkMarkWatched(w http.ResponseWriter, r *http.Request) {
	var req BulkWatchedRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.TMDBShowID == 0 {
		writeError(w, http.StatusBadRequest, "tmdb_show_id is required")
		return
	}

	watchedAt, err := resolveWatchedAt(req.WatchedAt)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	marked, err := h.episodeCtrl.BulkMarkWatched(req.TMDBShowID, req.SeasonNumber, watchedAt)
	if err != nil {
		h.logger.WithError(err).Error("Bulk mark failed")
		writeError(w, http.StatusInternalServerError, "bulk mark failed")
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"marked": marked})
}

// DeleteHistory handles DELETE /history/{id}
func (h *EpisodesHandler) DeleteHistory(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseUint(r.PathValue("id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}

	if err := h.episodeCtrl.DeleteHistoryEntry(id); err != nil {
		if err == models.ErrNotFound {
			writeError(w, http.StatusNotFound, "history entry not found")
			return
		}
		h.logger.WithError(err).Error("Failed to delete history entry")
		writeError(w, http.StatusInternalServerError, "failed to delete history entry")
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"deleted": true})
}

// History handles GET /shows/{id}/history
func (h *EpisodesHandler) History(w http.ResponseWriter, r *http.Request) {
	tmdbID, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	entries, err := h.episodeCtrl.History(tmdbID)
	if err != nil {
		h.logger.WithError(err).Error("Failed to load history")
		writeError(w, http.StatusInternalServerError, "failed to load history")
		return
	}
	writeJSON(w, http.StatusOK, entries)
}

// resolveWatchedAt resolves the watched_at field: empty or "today" means
// now, otherwise a YYYY-MM-DD date
func resolveWatchedAt(raw string) (*time.Time, error) {
	if raw == "" || raw == "today" {
		return nil, nil
	}
	t, err := time.ParseInLocation("2006-01-02", raw, time.UTC)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

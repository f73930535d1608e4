package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/amaumene/nextup/internal/controllers"
	"github.com/amaumene/nextup/internal/models"
	"github.com/sirupsen/logrus"
)

// ShowsHandler handles library endpoints
type ShowsHandler struct {
	libraryCtrl *controllers.LibraryController
	logger      *logrus.Logger
}

// NewShowsHandler creates a new shows handler
func NewShowsHandler(libraryCtrl *controllers.LibraryController, logger *logrus.Logger) *ShowsHandler {
	return &ShowsHandler{libraryCtrl: libraryCtrl, logger: logger}
}

// SearchRequest is the body of POST /shows/search
type SearchRequest struct {
	Query string `json:"query"`
}

// Search handles POST /shows/search
func (h *ShowsHandler) Search(w http.ResponseWriter, r *http.Request) {
	var req SearchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Query == "" {
		writeError(w, http.StatusBadRequest, "query is required")
		return
	}

	results, err := h.libraryCtrl.Search(r.Context(), req.Query)
	if err != nil {
		h.logger.WithError(err).Error("TMDB search failed")
		writeError(w, http.StatusBadGateway, "catalog search failed")
		return
	}
	writeJSON(w, http.StatusOK, results)
}

// AddRequest is the body of POST /shows/add
type AddRequest struct {
	TMDBID int64               `json:"tmdb_id"`
	Status models.StoredStatus `json:"status"`
	Pace   models.WatchPace    `json:"pace,omitempty"`
}

// Add handles POST /shows/add
func (h *ShowsHandler) Add(w http.ResponseWriter, r *http.Request) {
	var req AddRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.TMDBID == 0 {
		writeError(w, http.StatusBadRequest, "tmdb_id is required")
		return
	}

	show, err := h.libraryCtrl.AddShow(r.Context(), req.TMDBID, req.Status, req.Pace)
	if err != nil {
		if !req.Status.Valid() {
			writeError(w, http.StatusUnprocessableEntity, err.Error())
			return
		}
		h.logger.WithError(err).Error("Failed to add show")
		writeError(w, http.StatusBadGateway, "failed to add show")
		return
	}
	writeJSON(w, http.StatusOK, show)
}

// List handles GET /shows
func (h *ShowsHandler) List(w http.ResponseWriter, r *http.Request) {
	shows, err := h.libraryCtrl.ListShows()
	if err != nil {
		h.logger.WithError(err).Error("Failed to list shows")
		writeError(w, http.StatusInternalServerError, "failed to list shows")
		return
	}
	writeJSON(w, http.StatusOK, shows)
}

// StatusRequest is the body of POST /shows/{id}/status
type StatusRequest struct {
	Status models.StoredStatus `json:"status"`
}

// SetStatus handles POST /shows/{id}/status
func (h *ShowsHandler) SetStatus(w http.ResponseWriter, r *http.Request) {
	tmdbID, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	var req StatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid body")
		return
	}

	if err := h.libraryCtrl.SetStatus(tmdbID, req.Status); err != nil {
		if err == models.ErrNotFound {
			writeError(w, http.StatusNotFound, "show not tracked")
			return
		}
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"tmdb_id": tmdbID, "status": req.Status})
}

// PaceRequest is the body of POST /shows/{id}/pace
type PaceRequest struct {
	Pace models.WatchPace `json:"pace"`
}

// SetPace handles POST /shows/{id}/pace
func (h *ShowsHandler) SetPace(w http.ResponseWriter, r *http.Request) {
	tmdbID, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	var req PaceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid body")
		return
	}

	if err := h.libraryCtrl.SetPace(tmdbID, req.Pace); err != nil {
		if err == models.ErrNotFound {
			writeError(w, http.StatusNotFound, "show not tracked")
			return
		}
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"tmdb_id": tmdbID, "pace": req.Pace})
}

// pathID parses a numeric path value, writing a 400 on failure
func pathID(w http.ResponseWriter, r *http.Request, name string) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue(name), 10, 64)
	if err != nil || id <= 0 {
		writeError(w, http.StatusBadRequest, "invalid "+name)
		return 0, false
	}
	return id, true
}

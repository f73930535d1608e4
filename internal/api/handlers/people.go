package handlers

import (
	"net/http"

	"github.com/amaumene/nextup/internal/controllers"
	"github.com/sirupsen/logrus"
)

// PeopleHandler handles cast and "seen in" endpoints
type PeopleHandler struct {
	peopleCtrl *controllers.PeopleController
	logger     *logrus.Logger
}

// NewPeopleHandler creates a new people handler
func NewPeopleHandler(peopleCtrl *controllers.PeopleController, logger *logrus.Logger) *PeopleHandler {
	return &PeopleHandler{peopleCtrl: peopleCtrl, logger: logger}
}

// Cast handles GET /shows/{id}/cast
func (h *PeopleHandler) Cast(w http.ResponseWriter, r *http.Request) {
	tmdbID, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	cast, err := h.peopleCtrl.ShowCast(r.Context(), tmdbID)
	if err != nil {
		h.logger.WithError(err).Error("Failed to load cast")
		writeError(w, http.StatusBadGateway, "failed to load cast")
		return
	}
	writeJSON(w, http.StatusOK, cast)
}

// SeenIn handles GET /people/{id}/seen-in
func (h *PeopleHandler) SeenIn(w http.ResponseWriter, r *http.Request) {
	personID, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	seen, err := h.peopleCtrl.SeenIn(r.Context(), personID)
	if err != nil {
		h.logger.WithError(err).Error("Seen-in lookup failed")
		writeError(w, http.StatusBadGateway, "seen-in lookup failed")
		return
	}
	writeJSON(w, http.StatusOK, seen)
}

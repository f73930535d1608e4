package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/amaumene/nextup/internal/controllers"
	"github.com/amaumene/nextup/internal/engine"
	"github.com/sirupsen/logrus"
)

// ScheduleHandler handles the daily schedule endpoint
type ScheduleHandler struct {
	scheduleCtrl *controllers.ScheduleController
	logger       *logrus.Logger
}

// NewScheduleHandler creates a new schedule handler
func NewScheduleHandler(scheduleCtrl *controllers.ScheduleController, logger *logrus.Logger) *ScheduleHandler {
	return &ScheduleHandler{scheduleCtrl: scheduleCtrl, logger: logger}
}

// Today handles GET /schedule/today
func (h *ScheduleHandler) Today(w http.ResponseWriter, r *http.Request) {
	schedule, err := h.scheduleCtrl.BuildToday(time.Now())
	if err != nil {
		var dataErr *engine.DataError
		if errors.As(err, &dataErr) {
			h.logger.WithError(dataErr).Error("Schedule run hit malformed data")
			writeError(w, http.StatusInternalServerError, dataErr.Error())
			return
		}
		h.logger.WithError(err).Error("Failed to build schedule")
		writeError(w, http.StatusInternalServerError, "failed to build schedule")
		return
	}
	writeJSON(w, http.StatusOK, schedule)
}

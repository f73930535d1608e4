package engine

import (
	"time"

	"github.com/amaumene/nextup/internal/models"
)

// stalenessDecision is the outcome of the idle-time policy for one show
type stalenessDecision struct {
	// Schedulable is false when the show stays visible in the library but
	// is excluded from today's schedule
	Schedulable bool

	// Transition, when set, is a status change for the caller to persist.
	// The engine itself never writes.
	Transition *models.StoredStatus
}

// applyStaleness decides visibility and auto-transition from idle time.
// Idle means no watch event for the show in N days, at day resolution;
// a show that was never watched is not idle.
func applyStaleness(status models.StoredStatus, cat DisplayCategory, lastWatched *time.Time, today time.Time, opts Options) stalenessDecision {
	d := stalenessDecision{Schedulable: true}
	if lastWatched == nil {
		return d
	}

	idle := daysBetween(*lastWatched, today)

	switch cat {
	case CategoryAiringAvailable, CategoryAiringCaughtUp, CategoryWatching:
		if idle >= opts.IdleHideDays {
			d.Schedulable = false
		}
	}

	// Working through a completed title and idle for half a year: the
	// user has moved on. Returned as a command, applied by the caller.
	if status == models.StatusWatching && idle >= opts.AutoAbandonDays {
		abandoned := models.StatusAbandoned
		d.Transition = &abandoned
		d.Schedulable = false
	}

	return d
}

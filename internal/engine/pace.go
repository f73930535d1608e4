package engine

import (
	"time"

	"github.com/amaumene/nextup/internal/models"
)

// paceAllows decides whether a show's pace mode lets it contribute
// candidates today. It gates only the working-through flow; genuinely new
// airing episodes are never pace-gated.
//
// The last watch event is the conservative proxy for the show's last
// schedule appearance, since no last-suggested timestamp is stored.
func paceAllows(pace models.WatchPace, lastWatched *time.Time, today time.Time, opts Options) bool {
	switch pace {
	case models.PaceWeekly:
		if lastWatched == nil {
			return true
		}
		return daysBetween(*lastWatched, today) >= opts.WeeklyGapDays
	default:
		// binge and fast are eligible every day; fast limits its episode
		// count at candidate-generation time instead
		return true
	}
}

// paceEpisodeLimit returns the per-run episode cap a pace mode imposes,
// 0 meaning no cap
func paceEpisodeLimit(pace models.WatchPace, opts Options) int {
	if pace == models.PaceFast {
		return opts.FastEpisodeLimit
	}
	return 0
}

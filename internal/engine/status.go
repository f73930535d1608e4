package engine

import (
	"fmt"

	"github.com/amaumene/nextup/internal/models"
)

// DisplayCategory is the derived classification of a show, recomputed on
// every read from the stored status and live progress facts. It is never
// persisted, so it cannot drift from its inputs.
type DisplayCategory string

const (
	CategoryAbandoned        DisplayCategory = "abandoned"
	CategoryWatchlist        DisplayCategory = "watchlist"
	CategoryFinished         DisplayCategory = "finished"
	CategoryAiringAvailable  DisplayCategory = "airing-available"   // unwatched aired episodes waiting
	CategoryAiringCaughtUp   DisplayCategory = "airing-caught-up"   // up to date, next episode announced
	CategoryAiringNotStarted DisplayCategory = "airing-not-started" // backlog too deep to suggest
	CategoryReturning        DisplayCategory = "returning"          // between seasons, nothing announced
	CategoryWatching         DisplayCategory = "watching"           // completed title being worked through
)

// DisplayCategoryFor maps (stored status, summary, still-releasing) to a
// display category. Pure: identical inputs always yield identical output.
// Rules are evaluated in order, first match wins. A status outside the
// closed set is an error, never a guess.
//
// backlog is the unwatched-aired threshold above which an unstarted airing
// show is parked: a long backlog does not imply readiness to binge.
func DisplayCategoryFor(status models.StoredStatus, sum Summary, stillReleasing bool, backlog int) (DisplayCategory, error) {
	switch status {
	case models.StatusAbandoned:
		return CategoryAbandoned, nil
	case models.StatusWatchlist:
		return CategoryWatchlist, nil
	case models.StatusFinished:
		return CategoryFinished, nil
	case models.StatusAiring, models.StatusWatching:
		if stillReleasing {
			switch {
			case !sum.CaughtUp && sum.Started:
				return CategoryAiringAvailable, nil
			case sum.CaughtUp && sum.HasUpcoming:
				return CategoryAiringCaughtUp, nil
			case sum.CaughtUp && !sum.AnyUnwatchedAired:
				// nothing aired and unwatched anywhere, next season
				// unannounced
				return CategoryReturning, nil
			case sum.CaughtUp:
				return CategoryAiringCaughtUp, nil
			case !sum.Started && sum.UnwatchedAired >= backlog:
				return CategoryAiringNotStarted, nil
			}
		}
		return CategoryWatching, nil
	}
	return "", fmt.Errorf("invalid stored status %q", status)
}

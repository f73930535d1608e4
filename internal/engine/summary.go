package engine

import (
	"time"

	"github.com/amaumene/nextup/internal/models"
)

// Summary holds the per-show progress facts every other engine stage
// consumes. It is derived on every run and never persisted.
type Summary struct {
	// ActiveSeason is the highest season with at least one watched
	// episode, defaulting to 1. Earlier, never-started seasons are not
	// resurfaced once the user has moved forward.
	ActiveSeason int

	// Started reports whether the active season has any watched episode
	Started bool

	// UnwatchedAired counts unwatched episodes in the active season with
	// an air date on or before today
	UnwatchedAired int

	// CaughtUp is true when every aired episode in the active season is
	// watched (vacuously true with no episodes)
	CaughtUp bool

	// AnyUnwatchedAired reports unwatched aired episodes in any season
	AnyUnwatchedAired bool

	// HasUpcoming reports an unwatched episode with an announced air date
	// after today
	HasUpcoming bool

	// LastWatched is the latest watch timestamp across the show's history
	// and episode caches, nil if nothing was ever watched
	LastWatched *time.Time
}

// DateOf truncates a timestamp to its UTC calendar date. All threshold
// comparisons run at day resolution to avoid off-by-a-few-hours flapping.
func DateOf(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func daysBetween(from, to time.Time) int {
	return int(DateOf(to).Sub(DateOf(from)).Hours() / 24)
}

func aired(ep *models.Episode, today time.Time) bool {
	return ep.AirDate != nil && !DateOf(*ep.AirDate).After(today)
}

type episodeKey struct {
	season, episode int
}

// NormalizeEpisodes returns the episode list with watch state taken from
// the raw history log instead of the denormalized cache. Used in strict
// mode when the cache is not trusted.
func NormalizeEpisodes(episodes []models.Episode, history []models.WatchHistoryEntry) []models.Episode {
	latest := make(map[episodeKey]time.Time, len(history))
	for _, entry := range history {
		key := episodeKey{entry.SeasonNumber, entry.EpisodeNumber}
		if prev, ok := latest[key]; !ok || entry.WatchedAt.After(prev) {
			latest[key] = entry.WatchedAt
		}
	}

	out := make([]models.Episode, len(episodes))
	copy(out, episodes)
	for i := range out {
		if watchedAt, ok := latest[episodeKey{out[i].SeasonNumber, out[i].EpisodeNumber}]; ok {
			out[i].Watched = true
			t := watchedAt
			out[i].WatchedAt = &t
		} else {
			out[i].Watched = false
			out[i].WatchedAt = nil
		}
	}
	return out
}

// Summarize derives a show's progress facts from its episode list and
// watch history. A show with no episodes yields the empty summary
// (active season 1, caught up, zero counts), never an error.
func Summarize(episodes []models.Episode, history []models.WatchHistoryEntry, today time.Time) Summary {
	today = DateOf(today)
	sum := Summary{ActiveSeason: 1, CaughtUp: true}

	for i := range episodes {
		ep := &episodes[i]
		if ep.Watched && ep.SeasonNumber > sum.ActiveSeason {
			sum.ActiveSeason = ep.SeasonNumber
		}
	}

	for i := range episodes {
		ep := &episodes[i]
		isAired := aired(ep, today)

		if !ep.Watched {
			if isAired {
				sum.AnyUnwatchedAired = true
			} else if ep.AirDate != nil {
				sum.HasUpcoming = true
			}
		}

		if ep.SeasonNumber == sum.ActiveSeason {
			if ep.Watched {
				sum.Started = true
			} else if isAired {
				sum.UnwatchedAired++
				sum.CaughtUp = false
			}
		}

		if ep.WatchedAt != nil && (sum.LastWatched == nil || ep.WatchedAt.After(*sum.LastWatched)) {
			t := *ep.WatchedAt
			sum.LastWatched = &t
		}
	}

	// The history log is authoritative for the last watch event; episode
	// caches only fill in for imported flags without history entries.
	for _, entry := range history {
		if sum.LastWatched == nil || entry.WatchedAt.After(*sum.LastWatched) {
			t := entry.WatchedAt
			sum.LastWatched = &t
		}
	}

	return sum
}

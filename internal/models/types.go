package models

import "fmt"

// MediaType represents the type of tracked title (tv show or movie)
type MediaType string

const (
	MediaTypeTV    MediaType = "tv"
	MediaTypeMovie MediaType = "movie"
)

// StoredStatus is the persisted user-intent status of a show. The set is
// closed: anything else in the store is a data-integrity error, never
// silently reclassified.
type StoredStatus string

const (
	StatusAiring    StoredStatus = "airing"    // still releasing, user keeps up
	StatusWatching  StoredStatus = "watching"  // completed title being worked through
	StatusFinished  StoredStatus = "finished"  // user is done with it
	StatusWatchlist StoredStatus = "watchlist" // not started yet
	StatusAbandoned StoredStatus = "abandoned" // given up, manually or by idle timeout
)

// Valid reports whether s is a member of the closed status set.
func (s StoredStatus) Valid() bool {
	switch s {
	case StatusAiring, StatusWatching, StatusFinished, StatusWatchlist, StatusAbandoned:
		return true
	}
	return false
}

// StatusSchemaVersion is the current version of the status taxonomy.
//
// v1: watching | watchlist | finished (single status column)
// v2: airing | done (user_status split off)
// v3: airing | watching | finished | watchlist | abandoned
const StatusSchemaVersion = 3

// MigrateStatus converts a status value from an older taxonomy version to
// the current one. Unknown values are an error at every version; guessing
// would corrupt the user's taxonomy.
func MigrateStatus(fromVersion int, raw string) (StoredStatus, error) {
	switch fromVersion {
	case 1:
		switch raw {
		case "watching":
			return StatusAiring, nil
		case "watchlist":
			return StatusWatchlist, nil
		case "finished":
			return StatusFinished, nil
		}
		return "", fmt.Errorf("unknown v1 status %q", raw)
	case 2:
		switch raw {
		case "airing":
			return StatusAiring, nil
		case "done":
			return StatusFinished, nil
		}
		return "", fmt.Errorf("unknown v2 status %q", raw)
	case StatusSchemaVersion:
		s := StoredStatus(raw)
		if !s.Valid() {
			return "", fmt.Errorf("unknown status %q", raw)
		}
		return s, nil
	}
	return "", fmt.Errorf("unknown status schema version %d", fromVersion)
}

// WatchPace controls how often a show may contribute schedule candidates
type WatchPace string

const (
	PaceBinge  WatchPace = "binge"  // always eligible
	PaceFast   WatchPace = "fast"   // daily, limited episodes per run
	PaceWeekly WatchPace = "weekly" // one appearance per week
)

// Valid reports whether p is a recognized pace mode.
func (p WatchPace) Valid() bool {
	switch p {
	case PaceBinge, PaceFast, PaceWeekly:
		return true
	}
	return false
}

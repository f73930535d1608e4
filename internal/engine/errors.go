package engine

import "fmt"

// DataError is a data-integrity failure naming the offending show (and
// episode, when episode-scoped). A run that hits one fails as a whole;
// the engine never guesses around malformed stored state.
type DataError struct {
	ShowID        int64
	SeasonNumber  int
	EpisodeNumber int
	Reason        string
}

func (e *DataError) Error() string {
	if e.SeasonNumber > 0 || e.EpisodeNumber > 0 {
		return fmt.Sprintf("show %d episode %dx%d: %s", e.ShowID, e.SeasonNumber, e.EpisodeNumber, e.Reason)
	}
	return fmt.Sprintf("show %d: %s", e.ShowID, e.Reason)
}

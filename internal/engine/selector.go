package engine

import "sort"

// Bucket tags a schedule item with the flow it came from
type Bucket string

const (
	BucketAiringNow    Bucket = "airing-now"    // new aired episodes waiting
	BucketPickUpAgain  Bucket = "pick-up-again" // gentle nudge after a pause
	BucketKeepWatching Bucket = "keep-watching" // single remaining aired episode
	BucketUpNext       Bucket = "up-next"       // next episode of a working-set show
)

// bucket priority: new air dates are never starved by backlog
func bucketPriority(b Bucket) int {
	switch b {
	case BucketAiringNow:
		return 0
	case BucketPickUpAgain:
		return 1
	case BucketKeepWatching:
		return 2
	default: // up-next
		return 3
	}
}

// selectItems merges candidates across shows into the final ordered
// schedule and truncates to the daily cap. Dropped items are not deferred;
// the next run recomputes from scratch.
//
// airing-now (the only multi-item-per-show bucket) orders by air date so
// older releases surface first; the one-item-per-show buckets order by
// last-watched so staler shows surface first, never-watched shows last.
// Show id breaks every tie for deterministic output.
func selectItems(items []Item, dailyCap int) []Item {
	sort.SliceStable(items, func(i, j int) bool {
		a, b := &items[i], &items[j]

		pa, pb := bucketPriority(a.Bucket), bucketPriority(b.Bucket)
		if pa != pb {
			return pa < pb
		}

		if a.Bucket == BucketAiringNow {
			// both airing-now; aired episodes always carry a date
			if !a.AirDate.Equal(*b.AirDate) {
				return a.AirDate.Before(*b.AirDate)
			}
		} else {
			switch {
			case a.lastWatched == nil && b.lastWatched != nil:
				return false
			case a.lastWatched != nil && b.lastWatched == nil:
				return true
			case a.lastWatched != nil && !a.lastWatched.Equal(*b.lastWatched):
				return a.lastWatched.Before(*b.lastWatched)
			}
		}

		if a.ShowID != b.ShowID {
			return a.ShowID < b.ShowID
		}
		if a.SeasonNumber != b.SeasonNumber {
			return a.SeasonNumber < b.SeasonNumber
		}
		return a.EpisodeNumber < b.EpisodeNumber
	})

	if dailyCap >= 0 && len(items) > dailyCap {
		items = items[:dailyCap]
	}
	return items
}

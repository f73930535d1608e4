package engine

import (
	"sort"
	"time"

	"github.com/amaumene/nextup/internal/models"
)

// candidatesFor produces a show's schedule items for today. The display
// category alone picks the bucket, so a show never contributes to two
// buckets in the same run.
func candidatesFor(show *models.Show, episodes []models.Episode, sum Summary, cat DisplayCategory, today time.Time, opts Options) []Item {
	switch cat {
	case CategoryAiringAvailable:
		return airingCandidates(show, episodes, sum, today, opts)
	case CategoryWatching:
		return watchingCandidates(show, episodes, sum, today, opts)
	}
	// caught-up, returning, not-started, watchlist, finished, abandoned:
	// nothing to watch today
	return nil
}

// airingCandidates emits the unwatched aired episodes of the active
// season, oldest air date first. A single remaining episode is a
// keep-watching nudge; a backlog of them is airing-now. New episodes are
// never pace-gated, but fast pace still caps the count.
func airingCandidates(show *models.Show, episodes []models.Episode, sum Summary, today time.Time, opts Options) []Item {
	today = DateOf(today)

	var avail []models.Episode
	for i := range episodes {
		ep := &episodes[i]
		if ep.SeasonNumber == sum.ActiveSeason && !ep.Watched && aired(ep, today) {
			avail = append(avail, *ep)
		}
	}
	if len(avail) == 0 {
		return nil
	}

	sort.Slice(avail, func(i, j int) bool {
		di, dj := DateOf(*avail[i].AirDate), DateOf(*avail[j].AirDate)
		if !di.Equal(dj) {
			return di.Before(dj)
		}
		return avail[i].EpisodeNumber < avail[j].EpisodeNumber
	})

	if len(avail) == 1 {
		return []Item{makeItem(show, &avail[0], BucketKeepWatching, sum)}
	}

	limit := len(avail)
	if cap := paceEpisodeLimit(show.Pace, opts); cap > 0 && cap < limit {
		limit = cap
	}

	items := make([]Item, 0, limit)
	for i := 0; i < limit; i++ {
		items = append(items, makeItem(show, &avail[i], BucketAiringNow, sum))
	}
	return items
}

// watchingCandidates emits the next episodes in sequence for a completed
// title being worked through. An idle-but-not-hidden show becomes a
// single pick-up-again nudge instead.
func watchingCandidates(show *models.Show, episodes []models.Episode, sum Summary, today time.Time, opts Options) []Item {
	if !paceAllows(show.Pace, sum.LastWatched, today, opts) {
		return nil
	}

	next := nextUnwatched(episodes)
	if len(next) == 0 {
		return nil
	}

	if sum.LastWatched != nil && daysBetween(*sum.LastWatched, today) >= opts.PickupAgainDays {
		return []Item{makeItem(show, &next[0], BucketPickUpAgain, sum)}
	}

	limit := 1
	if cap := paceEpisodeLimit(show.Pace, opts); cap > limit {
		limit = cap
	}
	if limit > len(next) {
		limit = len(next)
	}

	items := make([]Item, 0, limit)
	for i := 0; i < limit; i++ {
		items = append(items, makeItem(show, &next[i], BucketUpNext, sum))
	}
	return items
}

// nextUnwatched returns the unwatched episodes in (season, episode) order
func nextUnwatched(episodes []models.Episode) []models.Episode {
	var out []models.Episode
	for i := range episodes {
		if !episodes[i].Watched {
			out = append(out, episodes[i])
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].SeasonNumber != out[j].SeasonNumber {
			return out[i].SeasonNumber < out[j].SeasonNumber
		}
		return out[i].EpisodeNumber < out[j].EpisodeNumber
	})
	return out
}

func makeItem(show *models.Show, ep *models.Episode, bucket Bucket, sum Summary) Item {
	var airDate *time.Time
	if ep.AirDate != nil {
		d := DateOf(*ep.AirDate)
		airDate = &d
	}
	return Item{
		ShowID:        show.TMDBID,
		SeasonNumber:  ep.SeasonNumber,
		EpisodeNumber: ep.EpisodeNumber,
		Bucket:        bucket,
		AirDate:       airDate,
		lastWatched:   sum.LastWatched,
	}
}

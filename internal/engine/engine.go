// Package engine implements the status and schedule derivation core: a
// pure, synchronous computation over an immutable snapshot of shows,
// episodes, and watch history. It performs no I/O and holds no cross-call
// state; its one side effect, the idle auto-abandon, is returned as a
// command for the caller's persistence layer to apply.
package engine

import (
	"sort"
	"time"

	"github.com/amaumene/nextup/internal/models"
)

// ShowState is one show's slice of the snapshot
type ShowState struct {
	Show     models.Show
	Episodes []models.Episode
	History  []models.WatchHistoryEntry
}

// Options carries the engine's thresholds. The numbers were never settled
// in one place, so all of them are injected rather than hard-coded.
type Options struct {
	DailyCap          int // max schedule items, negative = unlimited
	IdleHideDays      int // hide from schedule after this many idle days
	AutoAbandonDays   int // watching → abandoned after this many idle days
	NotStartedBacklog int // unwatched-aired threshold for parking unstarted airing shows
	PickupAgainDays   int // idle days before the pick-up-again nudge
	WeeklyGapDays     int // minimum days between weekly-pace appearances
	FastEpisodeLimit  int // per-run episode cap for fast pace

	// StrictHistory recomputes watch state from the raw history log
	// instead of trusting the denormalized episode flags
	StrictHistory bool
}

// DefaultOptions returns the standard thresholds
func DefaultOptions() Options {
	return Options{
		DailyCap:          -1,
		IdleHideDays:      90,
		AutoAbandonDays:   180,
		NotStartedBacklog: 6,
		PickupAgainDays:   14,
		WeeklyGapDays:     6,
		FastEpisodeLimit:  2,
	}
}

// Item is one entry of the daily schedule. Never stored; recomputed on
// each request.
type Item struct {
	ShowID        int64
	SeasonNumber  int
	EpisodeNumber int
	Bucket        Bucket
	AirDate       *time.Time

	lastWatched *time.Time // selector sort key
}

// Command is a status transition for the caller to persist. At most one
// per show per run.
type Command struct {
	ShowID    int64
	NewStatus models.StoredStatus
}

// Result is a complete run: the ordered schedule and the transitions it
// decided. A schedule is never silently truncated; the cap is the only
// thing that drops items.
type Result struct {
	Items    []Item
	Commands []Command
}

// Run derives today's schedule from the snapshot. Pure and deterministic:
// the same snapshot, clock, and options always produce identical output.
func Run(states []ShowState, now time.Time, opts Options) (*Result, error) {
	today := DateOf(now)

	var items []Item
	var commands []Command

	for i := range states {
		st := &states[i]

		episodes := st.Episodes
		if opts.StrictHistory {
			episodes = NormalizeEpisodes(episodes, st.History)
		}

		sum := Summarize(episodes, st.History, today)

		cat, err := DisplayCategoryFor(st.Show.Status, sum, st.Show.StillReleasing, opts.NotStartedBacklog)
		if err != nil {
			return nil, &DataError{ShowID: st.Show.TMDBID, Reason: err.Error()}
		}

		decision := applyStaleness(st.Show.Status, cat, sum.LastWatched, today, opts)
		if decision.Transition != nil {
			commands = append(commands, Command{ShowID: st.Show.TMDBID, NewStatus: *decision.Transition})
		}
		if !decision.Schedulable {
			continue
		}

		items = append(items, candidatesFor(&st.Show, episodes, sum, cat, today, opts)...)
	}

	items = selectItems(items, opts.DailyCap)
	sort.Slice(commands, func(i, j int) bool { return commands[i].ShowID < commands[j].ShowID })

	return &Result{Items: items, Commands: commands}, nil
}

// Classify exposes the summary and display category of a single show for
// library views, using the same derivation as a full run
func Classify(st ShowState, now time.Time, opts Options) (Summary, DisplayCategory, error) {
	today := DateOf(now)

	episodes := st.Episodes
	if opts.StrictHistory {
		episodes = NormalizeEpisodes(episodes, st.History)
	}

	sum := Summarize(episodes, st.History, today)
	cat, err := DisplayCategoryFor(st.Show.Status, sum, st.Show.StillReleasing, opts.NotStartedBacklog)
	if err != nil {
		return Summary{}, "", &DataError{ShowID: st.Show.TMDBID, Reason: err.Error()}
	}
	return sum, cat, nil
}

package engine

import (
	"reflect"
	"testing"
	"time"

	"github.com/amaumene/nextup/internal/models"
)

// test helpers shared by the engine test files

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func tp(t time.Time) *time.Time {
	return &t
}

func ep(season, episode int, airDate *time.Time, watched bool, watchedAt *time.Time) models.Episode {
	return models.Episode{
		SeasonNumber:  season,
		EpisodeNumber: episode,
		AirDate:       airDate,
		Watched:       watched,
		WatchedAt:     watchedAt,
	}
}

var today = day(2026, time.March, 10)

func TestRunAutoAbandonsIdleWatchingShow(t *testing.T) {
	lastWatched := today.AddDate(0, 0, -200)
	state := ShowState{
		Show: models.Show{
			TMDBID:         42,
			Status:         models.StatusWatching,
			Pace:           models.PaceBinge,
			StillReleasing: false,
		},
		Episodes: []models.Episode{
			ep(1, 1, tp(day(2020, time.January, 1)), true, tp(lastWatched)),
			ep(1, 2, tp(day(2020, time.January, 8)), false, nil),
		},
	}

	result, err := Run([]ShowState{state}, today, DefaultOptions())
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if len(result.Commands) != 1 {
		t.Fatalf("Expected 1 command, got %d", len(result.Commands))
	}
	cmd := result.Commands[0]
	if cmd.ShowID != 42 || cmd.NewStatus != models.StatusAbandoned {
		t.Errorf("Expected abandon command for show 42, got %+v", cmd)
	}

	if len(result.Items) != 0 {
		t.Errorf("Idle show must be excluded from the schedule, got %d items", len(result.Items))
	}
}

func TestRunFailsOnMalformedStatus(t *testing.T) {
	state := ShowState{
		Show: models.Show{TMDBID: 7, Status: "paused"},
	}

	_, err := Run([]ShowState{state}, today, DefaultOptions())
	if err == nil {
		t.Fatal("Expected error for malformed status")
	}
	dataErr, ok := err.(*DataError)
	if !ok {
		t.Fatalf("Expected *DataError, got %T", err)
	}
	if dataErr.ShowID != 7 {
		t.Errorf("Error must name the offending show, got %d", dataErr.ShowID)
	}
}

func TestRunIsIdempotent(t *testing.T) {
	states := []ShowState{
		{
			Show: models.Show{TMDBID: 1, Status: models.StatusAiring, Pace: models.PaceBinge, StillReleasing: true},
			Episodes: []models.Episode{
				ep(1, 1, tp(today.AddDate(0, 0, -20)), true, tp(today.AddDate(0, 0, -10))),
				ep(1, 2, tp(today.AddDate(0, 0, -13)), false, nil),
				ep(1, 3, tp(today.AddDate(0, 0, -6)), false, nil),
			},
		},
		{
			Show: models.Show{TMDBID: 2, Status: models.StatusWatching, Pace: models.PaceBinge},
			Episodes: []models.Episode{
				ep(1, 1, tp(day(2019, time.May, 1)), true, tp(today.AddDate(0, 0, -3))),
				ep(1, 2, tp(day(2019, time.May, 8)), false, nil),
			},
		},
	}

	first, err := Run(states, today, DefaultOptions())
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	second, err := Run(states, today, DefaultOptions())
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if !reflect.DeepEqual(first, second) {
		t.Errorf("Two runs over the same snapshot differ:\n%+v\n%+v", first, second)
	}
}

func TestRunCapInvariant(t *testing.T) {
	var states []ShowState
	for i := int64(1); i <= 5; i++ {
		states = append(states, ShowState{
			Show: models.Show{TMDBID: i, Status: models.StatusWatching, Pace: models.PaceBinge},
			Episodes: []models.Episode{
				ep(1, 1, tp(day(2020, time.June, 1)), true, tp(today.AddDate(0, 0, -2))),
				ep(1, 2, tp(day(2020, time.June, 8)), false, nil),
			},
		})
	}

	for _, cap := range []int{0, 1, 3, 5, 100} {
		opts := DefaultOptions()
		opts.DailyCap = cap
		result, err := Run(states, today, opts)
		if err != nil {
			t.Fatalf("Run failed: %v", err)
		}
		want := cap
		if cap > 5 {
			want = 5
		}
		if len(result.Items) != want {
			t.Errorf("cap %d: expected %d items, got %d", cap, want, len(result.Items))
		}
	}

	// unlimited: every eligible candidate appears exactly once
	opts := DefaultOptions()
	result, err := Run(states, today, opts)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if len(result.Items) != 5 {
		t.Fatalf("Expected 5 items with no cap, got %d", len(result.Items))
	}
	seen := make(map[int64]int)
	for _, item := range result.Items {
		seen[item.ShowID]++
	}
	for id, n := range seen {
		if n != 1 {
			t.Errorf("Show %d appears %d times", id, n)
		}
	}
}

func TestRunBucketExclusivity(t *testing.T) {
	states := []ShowState{
		{
			Show: models.Show{TMDBID: 1, Status: models.StatusAiring, Pace: models.PaceBinge, StillReleasing: true},
			Episodes: []models.Episode{
				ep(2, 1, tp(today.AddDate(0, 0, -30)), true, tp(today.AddDate(0, 0, -20))),
				ep(2, 2, tp(today.AddDate(0, 0, -14)), false, nil),
				ep(2, 3, tp(today.AddDate(0, 0, -7)), false, nil),
				ep(2, 4, tp(today.AddDate(0, 0, -1)), false, nil),
			},
		},
		{
			Show: models.Show{TMDBID: 2, Status: models.StatusWatching, Pace: models.PaceFast},
			Episodes: []models.Episode{
				ep(1, 1, tp(day(2018, time.April, 2)), true, tp(today.AddDate(0, 0, -1))),
				ep(1, 2, tp(day(2018, time.April, 9)), false, nil),
				ep(1, 3, tp(day(2018, time.April, 16)), false, nil),
				ep(1, 4, tp(day(2018, time.April, 23)), false, nil),
			},
		},
	}

	result, err := Run(states, today, DefaultOptions())
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	buckets := make(map[int64]map[Bucket]bool)
	for _, item := range result.Items {
		if buckets[item.ShowID] == nil {
			buckets[item.ShowID] = make(map[Bucket]bool)
		}
		buckets[item.ShowID][item.Bucket] = true
	}
	for id, set := range buckets {
		if len(set) != 1 {
			t.Errorf("Show %d contributed to %d buckets in one run", id, len(set))
		}
	}

	// fast pace caps the up-next contribution at two episodes
	count := 0
	for _, item := range result.Items {
		if item.ShowID == 2 {
			count++
		}
	}
	if count != 2 {
		t.Errorf("Fast-paced show should contribute 2 episodes, got %d", count)
	}
}

func TestClassifyMatchesRun(t *testing.T) {
	state := ShowState{
		Show: models.Show{TMDBID: 9, Status: models.StatusAiring, StillReleasing: true},
		Episodes: []models.Episode{
			ep(1, 1, tp(today.AddDate(0, 0, -7)), true, tp(today.AddDate(0, 0, -5))),
			ep(1, 2, tp(today.AddDate(0, 0, -1)), false, nil),
		},
	}

	sum, cat, err := Classify(state, today, DefaultOptions())
	if err != nil {
		t.Fatalf("Classify failed: %v", err)
	}
	if cat != CategoryAiringAvailable {
		t.Errorf("Expected airing-available, got %s", cat)
	}
	if sum.UnwatchedAired != 1 {
		t.Errorf("Expected 1 unwatched aired, got %d", sum.UnwatchedAired)
	}
}

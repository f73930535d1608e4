package controllers

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/amaumene/nextup/internal/config"
	"github.com/amaumene/nextup/internal/models"
	"github.com/sirupsen/logrus"
)

func testConfig() *config.Config {
	return &config.Config{
		ScheduleDailyCap:  -1,
		IdleHideDays:      90,
		AutoAbandonDays:   180,
		NotStartedBacklog: 6,
		PickupAgainDays:   14,
		WeeklyGapDays:     6,
		FastEpisodeLimit:  2,
	}
}

func testLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)
	return logger
}

func newTestDB(t *testing.T) *models.Database {
	t.Helper()
	db, err := models.NewDatabase(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("Failed to open database: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func addShowWithEpisodes(t *testing.T, db *models.Database, show *models.Show, airDates []time.Time) {
	t.Helper()
	if err := db.CreateShow(show); err != nil {
		t.Fatalf("Failed to create show: %v", err)
	}
	for i, air := range airDates {
		air := air
		ep := &models.Episode{
			TMDBShowID:    show.TMDBID,
			SeasonNumber:  1,
			EpisodeNumber: i + 1,
			AirDate:       &air,
		}
		if err := db.CreateEpisode(ep); err != nil {
			t.Fatalf("Failed to create episode: %v", err)
		}
	}
}

func markWatched(t *testing.T, db *models.Database, tmdbID int64, season, episode int, watchedAt time.Time) {
	t.Helper()
	err := db.AddWatchHistory(&models.WatchHistoryEntry{
		TMDBShowID:    tmdbID,
		SeasonNumber:  season,
		EpisodeNumber: episode,
		WatchedAt:     watchedAt,
	})
	if err != nil {
		t.Fatalf("Failed to add watch history: %v", err)
	}
}

func TestBuildTodayProducesScheduleCards(t *testing.T) {
	db := newTestDB(t)
	now := time.Date(2026, time.March, 10, 9, 0, 0, 0, time.UTC)

	addShowWithEpisodes(t, db, &models.Show{
		TMDBID: 10, Title: "Airing Show", Type: models.MediaTypeTV,
		Status: models.StatusAiring, Pace: models.PaceBinge, StillReleasing: true,
	}, []time.Time{
		now.AddDate(0, 0, -21),
		now.AddDate(0, 0, -14),
		now.AddDate(0, 0, -7),
	})
	markWatched(t, db, 10, 1, 1, now.AddDate(0, 0, -10))

	ctrl := NewScheduleController(db, testConfig(), testLogger())
	schedule, err := ctrl.BuildToday(now)
	if err != nil {
		t.Fatalf("BuildToday failed: %v", err)
	}

	if schedule.Date != "2026-03-10" {
		t.Errorf("Expected date 2026-03-10, got %s", schedule.Date)
	}
	if len(schedule.Items) != 2 {
		t.Fatalf("Expected 2 cards, got %d", len(schedule.Items))
	}
	for _, item := range schedule.Items {
		if item.Show.TMDBID != 10 || item.Show.Title != "Airing Show" {
			t.Errorf("Unexpected show header: %+v", item.Show)
		}
		if item.Bucket != "airing-now" {
			t.Errorf("Expected airing-now, got %s", item.Bucket)
		}
		if item.AvailableCount != 2 {
			t.Errorf("Expected available count 2, got %d", item.AvailableCount)
		}
	}
	// release order
	if schedule.Items[0].Episode.EpisodeNumber != 2 || schedule.Items[1].Episode.EpisodeNumber != 3 {
		t.Errorf("Expected episodes 2,3 in release order, got %d,%d",
			schedule.Items[0].Episode.EpisodeNumber, schedule.Items[1].Episode.EpisodeNumber)
	}
	if schedule.Items[0].Episode.AirDate == "" {
		t.Error("Expected air date on the card")
	}
}

func TestBuildTodayAppliesAutoAbandon(t *testing.T) {
	db := newTestDB(t)
	now := time.Date(2026, time.March, 10, 9, 0, 0, 0, time.UTC)

	addShowWithEpisodes(t, db, &models.Show{
		TMDBID: 20, Title: "Stale Show", Type: models.MediaTypeTV,
		Status: models.StatusWatching, Pace: models.PaceBinge,
	}, []time.Time{
		time.Date(2019, time.May, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2019, time.May, 8, 0, 0, 0, 0, time.UTC),
	})
	markWatched(t, db, 20, 1, 1, now.AddDate(0, 0, -200))

	ctrl := NewScheduleController(db, testConfig(), testLogger())
	schedule, err := ctrl.BuildToday(now)
	if err != nil {
		t.Fatalf("BuildToday failed: %v", err)
	}

	if len(schedule.Abandoned) != 1 || schedule.Abandoned[0] != 20 {
		t.Fatalf("Expected show 20 abandoned, got %v", schedule.Abandoned)
	}
	if len(schedule.Items) != 0 {
		t.Errorf("Abandoned show must not be scheduled, got %d items", len(schedule.Items))
	}

	// the transition is persisted, so the next run sees a stable state
	show, err := db.GetShowByTMDBID(20)
	if err != nil {
		t.Fatalf("GetShowByTMDBID failed: %v", err)
	}
	if show.Status != models.StatusAbandoned {
		t.Errorf("Expected persisted abandoned status, got %s", show.Status)
	}

	again, err := ctrl.BuildToday(now)
	if err != nil {
		t.Fatalf("Second BuildToday failed: %v", err)
	}
	if len(again.Abandoned) != 0 {
		t.Errorf("Second run must not re-abandon, got %v", again.Abandoned)
	}
}

func TestBuildTodayRespectsDailyCap(t *testing.T) {
	db := newTestDB(t)
	now := time.Date(2026, time.March, 10, 9, 0, 0, 0, time.UTC)

	for i := int64(1); i <= 3; i++ {
		addShowWithEpisodes(t, db, &models.Show{
			TMDBID: 30 + i, Title: "Show", Type: models.MediaTypeTV,
			Status: models.StatusWatching, Pace: models.PaceBinge,
		}, []time.Time{
			time.Date(2020, time.June, 1, 0, 0, 0, 0, time.UTC),
			time.Date(2020, time.June, 8, 0, 0, 0, 0, time.UTC),
		})
		markWatched(t, db, 30+i, 1, 1, now.AddDate(0, 0, -2))
	}

	cfg := testConfig()
	cfg.ScheduleDailyCap = 2
	ctrl := NewScheduleController(db, cfg, testLogger())
	schedule, err := ctrl.BuildToday(now)
	if err != nil {
		t.Fatalf("BuildToday failed: %v", err)
	}
	if len(schedule.Items) != 2 {
		t.Errorf("Expected cap of 2, got %d items", len(schedule.Items))
	}
}

func TestBuildTodayFailsOnMalformedStatus(t *testing.T) {
	db := newTestDB(t)

	show := &models.Show{
		TMDBID: 40, Title: "Broken", Type: models.MediaTypeTV,
		Status: models.StatusWatching, Pace: models.PaceBinge,
	}
	if err := db.CreateShow(show); err != nil {
		t.Fatalf("Failed to create show: %v", err)
	}
	// corrupt the stored status under the validation layer
	show.Status = "paused"
	if err := db.UpdateShow(show); err != nil {
		t.Fatalf("Failed to update show: %v", err)
	}

	ctrl := NewScheduleController(db, testConfig(), testLogger())
	if _, err := ctrl.BuildToday(time.Now()); err == nil {
		t.Fatal("Expected error for malformed stored status")
	}
}

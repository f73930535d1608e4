package models

import (
	"path/filepath"
	"testing"
	"time"
)

func newTestDB(t *testing.T) *Database {
	t.Helper()
	db, err := NewDatabase(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("Failed to open database: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func seedShow(t *testing.T, db *Database, tmdbID int64) *Show {
	t.Helper()
	show := &Show{
		TMDBID: tmdbID,
		Title:  "Test Show",
		Type:   MediaTypeTV,
		Status: StatusWatching,
		Pace:   PaceBinge,
	}
	if err := db.CreateShow(show); err != nil {
		t.Fatalf("Failed to create show: %v", err)
	}
	return show
}

func seedEpisode(t *testing.T, db *Database, tmdbShowID int64, season, episode int) *Episode {
	t.Helper()
	air := time.Date(2025, time.June, 1, 0, 0, 0, 0, time.UTC)
	ep := &Episode{
		TMDBShowID:    tmdbShowID,
		SeasonNumber:  season,
		EpisodeNumber: episode,
		AirDate:       &air,
	}
	if err := db.CreateEpisode(ep); err != nil {
		t.Fatalf("Failed to create episode: %v", err)
	}
	return ep
}

func TestAddWatchHistoryUpdatesCaches(t *testing.T) {
	db := newTestDB(t)
	seedShow(t, db, 100)
	seedEpisode(t, db, 100, 1, 1)

	watchedAt := time.Date(2026, time.January, 10, 20, 0, 0, 0, time.UTC)
	err := db.AddWatchHistory(&WatchHistoryEntry{
		TMDBShowID: 100, SeasonNumber: 1, EpisodeNumber: 1, WatchedAt: watchedAt,
	})
	if err != nil {
		t.Fatalf("AddWatchHistory failed: %v", err)
	}

	ep, err := db.GetEpisode(100, 1, 1)
	if err != nil {
		t.Fatalf("GetEpisode failed: %v", err)
	}
	if !ep.Watched || ep.WatchedAt == nil || !ep.WatchedAt.Equal(watchedAt) {
		t.Errorf("Episode cache not updated: %+v", ep)
	}

	show, err := db.GetShowByTMDBID(100)
	if err != nil {
		t.Fatalf("GetShowByTMDBID failed: %v", err)
	}
	if show.LastWatchedAt == nil || !show.LastWatchedAt.Equal(watchedAt) {
		t.Errorf("Show last-watched not updated: %+v", show.LastWatchedAt)
	}
}

func TestDeleteLastHistoryEntryResetsEpisode(t *testing.T) {
	db := newTestDB(t)
	seedShow(t, db, 200)
	seedEpisode(t, db, 200, 1, 1)

	entry := &WatchHistoryEntry{
		TMDBShowID: 200, SeasonNumber: 1, EpisodeNumber: 1,
		WatchedAt: time.Date(2026, time.January, 10, 0, 0, 0, 0, time.UTC),
	}
	if err := db.AddWatchHistory(entry); err != nil {
		t.Fatalf("AddWatchHistory failed: %v", err)
	}

	if err := db.DeleteWatchHistory(entry.ID); err != nil {
		t.Fatalf("DeleteWatchHistory failed: %v", err)
	}

	ep, err := db.GetEpisode(200, 1, 1)
	if err != nil {
		t.Fatalf("GetEpisode failed: %v", err)
	}
	if ep.Watched {
		t.Error("Expected episode unwatched after the last entry was deleted")
	}
	if ep.WatchedAt != nil {
		t.Errorf("Expected cleared timestamp, got %v", ep.WatchedAt)
	}
}

func TestDeleteOneOfTwoHistoryEntriesKeepsLatest(t *testing.T) {
	db := newTestDB(t)
	seedShow(t, db, 300)
	seedEpisode(t, db, 300, 1, 1)

	first := &WatchHistoryEntry{
		TMDBShowID: 300, SeasonNumber: 1, EpisodeNumber: 1,
		WatchedAt: time.Date(2025, time.November, 1, 0, 0, 0, 0, time.UTC),
	}
	second := &WatchHistoryEntry{
		TMDBShowID: 300, SeasonNumber: 1, EpisodeNumber: 1,
		WatchedAt: time.Date(2026, time.January, 15, 0, 0, 0, 0, time.UTC),
	}
	if err := db.AddWatchHistory(first); err != nil {
		t.Fatalf("AddWatchHistory failed: %v", err)
	}
	if err := db.AddWatchHistory(second); err != nil {
		t.Fatalf("AddWatchHistory failed: %v", err)
	}

	// deleting the rewatch entry leaves the older one as the cache source
	if err := db.DeleteWatchHistory(second.ID); err != nil {
		t.Fatalf("DeleteWatchHistory failed: %v", err)
	}

	ep, err := db.GetEpisode(300, 1, 1)
	if err != nil {
		t.Fatalf("GetEpisode failed: %v", err)
	}
	if !ep.Watched {
		t.Error("Episode must stay watched while an entry remains")
	}
	if ep.WatchedAt == nil || !ep.WatchedAt.Equal(first.WatchedAt) {
		t.Errorf("Expected cache timestamp %v, got %v", first.WatchedAt, ep.WatchedAt)
	}
}

func TestDeleteHistoryForEpisode(t *testing.T) {
	db := newTestDB(t)
	seedShow(t, db, 400)
	seedEpisode(t, db, 400, 2, 3)

	for _, watchedAt := range []time.Time{
		time.Date(2025, time.December, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2026, time.January, 1, 0, 0, 0, 0, time.UTC),
	} {
		err := db.AddWatchHistory(&WatchHistoryEntry{
			TMDBShowID: 400, SeasonNumber: 2, EpisodeNumber: 3, WatchedAt: watchedAt,
		})
		if err != nil {
			t.Fatalf("AddWatchHistory failed: %v", err)
		}
	}

	if err := db.DeleteHistoryForEpisode(400, 2, 3); err != nil {
		t.Fatalf("DeleteHistoryForEpisode failed: %v", err)
	}

	entries, err := db.GetHistoryForEpisode(400, 2, 3)
	if err != nil {
		t.Fatalf("GetHistoryForEpisode failed: %v", err)
	}
	if len(entries) != 0 {
		t.Errorf("Expected no entries, got %d", len(entries))
	}

	ep, err := db.GetEpisode(400, 2, 3)
	if err != nil {
		t.Fatalf("GetEpisode failed: %v", err)
	}
	if ep.Watched || ep.WatchedAt != nil {
		t.Errorf("Expected reset cache, got %+v", ep)
	}
}

func TestSetShowStatusRejectsInvalid(t *testing.T) {
	db := newTestDB(t)
	seedShow(t, db, 500)

	if err := db.SetShowStatus(500, "paused"); err == nil {
		t.Fatal("Expected error for invalid status")
	}

	if err := db.SetShowStatus(500, StatusAbandoned); err != nil {
		t.Fatalf("SetShowStatus failed: %v", err)
	}
	show, err := db.GetShowByTMDBID(500)
	if err != nil {
		t.Fatalf("GetShowByTMDBID failed: %v", err)
	}
	if show.Status != StatusAbandoned {
		t.Errorf("Expected abandoned, got %s", show.Status)
	}
}

func TestWatchedShowIDs(t *testing.T) {
	db := newTestDB(t)
	seedShow(t, db, 600)
	seedShow(t, db, 601)
	seedEpisode(t, db, 600, 1, 1)
	seedEpisode(t, db, 601, 1, 1)

	err := db.AddWatchHistory(&WatchHistoryEntry{
		TMDBShowID: 600, SeasonNumber: 1, EpisodeNumber: 1,
		WatchedAt: time.Date(2026, time.February, 1, 0, 0, 0, 0, time.UTC),
	})
	if err != nil {
		t.Fatalf("AddWatchHistory failed: %v", err)
	}

	ids, err := db.WatchedShowIDs()
	if err != nil {
		t.Fatalf("WatchedShowIDs failed: %v", err)
	}
	if !ids[600] {
		t.Error("Expected show 600 in the watched set")
	}
	if ids[601] {
		t.Error("Show 601 has no watch events and must not appear")
	}
}

func TestDeleteShowRemovesRelatedRecords(t *testing.T) {
	db := newTestDB(t)
	seedShow(t, db, 700)
	seedEpisode(t, db, 700, 1, 1)
	err := db.AddWatchHistory(&WatchHistoryEntry{
		TMDBShowID: 700, SeasonNumber: 1, EpisodeNumber: 1,
		WatchedAt: time.Date(2026, time.February, 1, 0, 0, 0, 0, time.UTC),
	})
	if err != nil {
		t.Fatalf("AddWatchHistory failed: %v", err)
	}

	if err := db.DeleteShow(700); err != nil {
		t.Fatalf("DeleteShow failed: %v", err)
	}

	if _, err := db.GetShowByTMDBID(700); err != ErrNotFound {
		t.Errorf("Expected ErrNotFound for deleted show, got %v", err)
	}
	count, err := db.CountEpisodes(700)
	if err != nil {
		t.Fatalf("CountEpisodes failed: %v", err)
	}
	if count != 0 {
		t.Errorf("Expected no episodes left, got %d", count)
	}
	entries, err := db.GetHistoryByShow(700)
	if err != nil {
		t.Fatalf("GetHistoryByShow failed: %v", err)
	}
	if len(entries) != 0 {
		t.Errorf("Expected no history left, got %d entries", len(entries))
	}
}

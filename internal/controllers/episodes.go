package controllers

import (
	"fmt"
	"time"

	"github.com/amaumene/nextup/internal/models"
	"github.com/sirupsen/logrus"
)

// EpisodeController manages per-episode watch state. All watch events go
// through the append-only history log; the denormalized episode flags are
// maintained by the store.
type EpisodeController struct {
	db     *models.Database
	logger *logrus.Logger
}

// NewEpisodeController creates a new episode controller
func NewEpisodeController(db *models.Database, logger *logrus.Logger) *EpisodeController {
	return &EpisodeController{db: db, logger: logger}
}

// MarkWatched records a viewing event for one episode. watchedAt defaults
// to now; a rewatch simply appends another entry.
func (c *EpisodeController) MarkWatched(tmdbShowID int64, season, episode int, watchedAt *time.Time) error {
	if _, err := c.db.GetEpisode(tmdbShowID, season, episode); err != nil {
		if err == models.ErrNotFound {
			return fmt.Errorf("episode %dx%d of show %d is not cached", season, episode, tmdbShowID)
		}
		return err
	}

	at := time.Now().UTC()
	if watchedAt != nil {
		at = watchedAt.UTC()
	}

	entry := &models.WatchHistoryEntry{
		TMDBShowID:    tmdbShowID,
		SeasonNumber:  season,
		EpisodeNumber: episode,
		WatchedAt:     at,
	}
	if err := c.db.AddWatchHistory(entry); err != nil {
		return fmt.Errorf("failed to record watch event: %w", err)
	}

	c.logger.WithFields(logrus.Fields{
		"tmdb_id": tmdbShowID,
		"episode": fmt.Sprintf("%dx%d", season, episode),
	}).Debug("Marked episode watched")

	return nil
}

// MarkUnwatched removes all viewing events for one episode, flipping its
// cached watched flag back to false
func (c *EpisodeController) MarkUnwatched(tmdbShowID int64, season, episode int) error {
	if _, err := c.db.GetEpisode(tmdbShowID, season, episode); err != nil {
		return err
	}
	return c.db.DeleteHistoryForEpisode(tmdbShowID, season, episode)
}

// BulkMarkWatched records viewing events for every unwatched episode of a
// show, optionally restricted to one season. Returns the number marked.
func (c *EpisodeController) BulkMarkWatched(tmdbShowID int64, season *int, watchedAt *time.Time) (int, error) {
	episodes, err := c.db.GetEpisodesByShow(tmdbShowID)
	if err != nil {
		return 0, err
	}

	at := time.Now().UTC()
	if watchedAt != nil {
		at = watchedAt.UTC()
	}

	marked := 0
	for _, ep := range episodes {
		if ep.Watched {
			continue
		}
		if season != nil && ep.SeasonNumber != *season {
			continue
		}
		entry := &models.WatchHistoryEntry{
			TMDBShowID:    tmdbShowID,
			SeasonNumber:  ep.SeasonNumber,
			EpisodeNumber: ep.EpisodeNumber,
			WatchedAt:     at,
		}
		if err := c.db.AddWatchHistory(entry); err != nil {
			return marked, fmt.Errorf("failed to record watch event: %w", err)
		}
		marked++
	}

	c.logger.WithFields(logrus.Fields{
		"tmdb_id": tmdbShowID,
		"marked":  marked,
	}).Info("Bulk-marked episodes watched")

	return marked, nil
}

// DeleteHistoryEntry removes one viewing event. The store recomputes the
// episode's cached flag and timestamp from the remaining entries.
func (c *EpisodeController) DeleteHistoryEntry(id uint64) error {
	return c.db.DeleteWatchHistory(id)
}

// History returns all viewing events for a show
func (c *EpisodeController) History(tmdbShowID int64) ([]*models.WatchHistoryEntry, error) {
	return c.db.GetHistoryByShow(tmdbShowID)
}

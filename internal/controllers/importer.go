package controllers

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/amaumene/nextup/internal/models"
	"github.com/sirupsen/logrus"
)

// ImportController loads an external watched-shows export (Trakt format)
// into the library. Safe to re-run: tracked shows are kept, and watched
// episodes already recorded are left unchanged.
type ImportController struct {
	db          *models.Database
	libraryCtrl *LibraryController
	logger      *logrus.Logger
}

// NewImportController creates a new import controller
func NewImportController(db *models.Database, libraryCtrl *LibraryController, logger *logrus.Logger) *ImportController {
	return &ImportController{
		db:          db,
		libraryCtrl: libraryCtrl,
		logger:      logger,
	}
}

// traktEntry mirrors one element of a Trakt watched-shows.json export
type traktEntry struct {
	Show struct {
		Title string `json:"title"`
		IDs   struct {
			TMDB *int64 `json:"tmdb"`
		} `json:"ids"`
	} `json:"show"`
	LastWatchedAt *time.Time `json:"last_watched_at"`
	Seasons       []struct {
		Number   int `json:"number"`
		Episodes []struct {
			Number        int        `json:"number"`
			Plays         int        `json:"plays"`
			LastWatchedAt *time.Time `json:"last_watched_at"`
		} `json:"episodes"`
	} `json:"seasons"`
}

// ImportStats summarizes one import run
type ImportStats struct {
	Shows    int `json:"shows"`
	Skipped  int `json:"skipped"`
	Episodes int `json:"episodes"`
}

// ImportFile imports a Trakt watched-shows.json export
func (c *ImportController) ImportFile(ctx context.Context, path string) (*ImportStats, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read import file: %w", err)
	}

	var entries []traktEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("failed to parse import file: %w", err)
	}

	c.logger.WithField("shows", len(entries)).Info("Starting watch-log import")

	stats := &ImportStats{}
	for _, entry := range entries {
		if entry.Show.IDs.TMDB == nil {
			c.logger.WithField("title", entry.Show.Title).Warn("No TMDB id, skipping")
			stats.Skipped++
			continue
		}

		marked, err := c.importShow(ctx, *entry.Show.IDs.TMDB, entry)
		if err != nil {
			c.logger.WithError(err).WithField("title", entry.Show.Title).Warn("Import failed for show, skipping")
			stats.Skipped++
			continue
		}

		stats.Shows++
		stats.Episodes += marked
	}

	c.logger.WithFields(logrus.Fields{
		"shows":    stats.Shows,
		"episodes": stats.Episodes,
		"skipped":  stats.Skipped,
	}).Info("Watch-log import completed")

	return stats, nil
}

func (c *ImportController) importShow(ctx context.Context, tmdbID int64, entry traktEntry) (int, error) {
	// Status is provisional; once episodes are marked it is settled from
	// actual progress below.
	show, err := c.libraryCtrl.AddShow(ctx, tmdbID, models.StatusWatching, models.PaceBinge)
	if err != nil {
		return 0, err
	}

	if err := c.libraryCtrl.EnsureEpisodesCached(ctx, show); err != nil {
		return 0, err
	}

	marked := 0
	for _, season := range entry.Seasons {
		if season.Number == 0 {
			continue
		}
		for _, episode := range season.Episodes {
			ep, err := c.db.GetEpisode(tmdbID, season.Number, episode.Number)
			if err == models.ErrNotFound {
				continue // not in the catalog, e.g. removed special
			}
			if err != nil {
				return marked, err
			}
			if ep.Watched {
				continue
			}

			watchedAt := time.Now().UTC()
			if episode.LastWatchedAt != nil {
				watchedAt = episode.LastWatchedAt.UTC()
			}
			if err := c.db.AddWatchHistory(&models.WatchHistoryEntry{
				TMDBShowID:    tmdbID,
				SeasonNumber:  season.Number,
				EpisodeNumber: episode.Number,
				WatchedAt:     watchedAt,
			}); err != nil {
				return marked, err
			}
			marked++
		}
	}

	if err := c.settleStatus(show); err != nil {
		return marked, err
	}

	return marked, nil
}

// settleStatus picks the imported show's status from its releasing state
// and remaining episodes: releasing shows are airing, fully watched
// completed shows are finished, the rest stay watching
func (c *ImportController) settleStatus(show *models.Show) error {
	status := models.StatusWatching
	if show.StillReleasing {
		status = models.StatusAiring
	} else {
		episodes, err := c.db.GetEpisodesByShow(show.TMDBID)
		if err != nil {
			return err
		}
		unwatched := 0
		for _, ep := range episodes {
			if !ep.Watched {
				unwatched++
			}
		}
		if unwatched == 0 && len(episodes) > 0 {
			status = models.StatusFinished
		}
	}

	if show.Status == status {
		return nil
	}
	return c.db.SetShowStatus(show.TMDBID, status)
}

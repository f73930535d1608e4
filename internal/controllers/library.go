package controllers

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/amaumene/nextup/internal/engine"
	"github.com/amaumene/nextup/internal/models"
	"github.com/amaumene/nextup/internal/services/tmdb"
	"github.com/sirupsen/logrus"
)

// LibraryController manages the tracked-show library and its TMDB-backed
// metadata caches
type LibraryController struct {
	db         *models.Database
	tmdbClient *tmdb.Client
	logger     *logrus.Logger
}

// NewLibraryController creates a new library controller
func NewLibraryController(db *models.Database, tmdbClient *tmdb.Client, logger *logrus.Logger) *LibraryController {
	return &LibraryController{
		db:         db,
		tmdbClient: tmdbClient,
		logger:     logger,
	}
}

// Search searches the TMDB catalog by title
func (c *LibraryController) Search(ctx context.Context, query string) ([]tmdb.SearchResult, error) {
	return c.tmdbClient.SearchTV(ctx, query)
}

// AddShow tracks a new show. Idempotent: adding an already-tracked show
// returns the existing record. Canonical title, poster, and the
// still-releasing fact come from TMDB, never from the caller.
func (c *LibraryController) AddShow(ctx context.Context, tmdbID int64, status models.StoredStatus, pace models.WatchPace) (*models.Show, error) {
	if !status.Valid() {
		return nil, fmt.Errorf("invalid status %q", status)
	}
	if pace == "" {
		pace = models.PaceBinge
	}
	if !pace.Valid() {
		return nil, fmt.Errorf("invalid pace %q", pace)
	}

	existing, err := c.db.GetShowByTMDBID(tmdbID)
	if err == nil {
		return existing, nil
	}
	if err != models.ErrNotFound {
		return nil, err
	}

	details, err := c.tmdbClient.GetShow(ctx, tmdbID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch show details: %w", err)
	}

	show := &models.Show{
		TMDBID:         tmdbID,
		Title:          details.Name,
		PosterPath:     details.PosterPath,
		Type:           models.MediaTypeTV,
		Status:         status,
		Pace:           pace,
		StillReleasing: details.Releasing(),
	}
	if err := c.db.CreateShow(show); err != nil {
		return nil, fmt.Errorf("failed to create show: %w", err)
	}

	c.logger.WithFields(logrus.Fields{
		"tmdb_id": tmdbID,
		"title":   show.Title,
		"status":  status,
	}).Info("Added show to library")

	return show, nil
}

// ListShows returns all tracked shows, most recently watched first and
// never-watched shows last
func (c *LibraryController) ListShows() ([]*models.Show, error) {
	shows, err := c.db.GetAllShows()
	if err != nil {
		return nil, err
	}
	sort.Slice(shows, func(i, j int) bool {
		a, b := shows[i], shows[j]
		switch {
		case a.LastWatchedAt == nil && b.LastWatchedAt != nil:
			return false
		case a.LastWatchedAt != nil && b.LastWatchedAt == nil:
			return true
		case a.LastWatchedAt != nil && !a.LastWatchedAt.Equal(*b.LastWatchedAt):
			return a.LastWatchedAt.After(*b.LastWatchedAt)
		}
		return a.TMDBID < b.TMDBID
	})
	return shows, nil
}

// SetStatus updates a show's stored status
func (c *LibraryController) SetStatus(tmdbID int64, status models.StoredStatus) error {
	if !status.Valid() {
		return fmt.Errorf("invalid status %q", status)
	}
	return c.db.SetShowStatus(tmdbID, status)
}

// SetPace updates a show's pace mode
func (c *LibraryController) SetPace(tmdbID int64, pace models.WatchPace) error {
	if !pace.Valid() {
		return fmt.Errorf("invalid pace %q", pace)
	}
	show, err := c.db.GetShowByTMDBID(tmdbID)
	if err != nil {
		return err
	}
	show.Pace = pace
	return c.db.UpdateShow(show)
}

// EnsureEpisodesCached fetches and caches all non-special seasons from
// TMDB if the show has no episodes yet
func (c *LibraryController) EnsureEpisodesCached(ctx context.Context, show *models.Show) error {
	count, err := c.db.CountEpisodes(show.TMDBID)
	if err != nil {
		return err
	}
	if count > 0 {
		return nil
	}
	return c.RefreshEpisodes(ctx, show)
}

// RefreshEpisodes re-fetches a show's seasons from TMDB, adding new
// episodes, updating air dates, and refreshing the still-releasing flag.
// Watch state is never touched.
func (c *LibraryController) RefreshEpisodes(ctx context.Context, show *models.Show) error {
	details, err := c.tmdbClient.GetShow(ctx, show.TMDBID)
	if err != nil {
		return fmt.Errorf("failed to fetch show details: %w", err)
	}

	added := 0
	for _, season := range details.Seasons {
		if season.SeasonNumber == 0 { // skip specials
			continue
		}
		seasonData, err := c.tmdbClient.GetSeason(ctx, show.TMDBID, season.SeasonNumber)
		if err != nil {
			c.logger.WithError(err).WithFields(logrus.Fields{
				"tmdb_id": show.TMDBID,
				"season":  season.SeasonNumber,
			}).Warn("Failed to fetch season, skipping")
			continue
		}

		for _, ep := range seasonData.Episodes {
			if ep.EpisodeNumber == 0 {
				continue
			}
			airDate := parseAirDate(ep.AirDate)

			existing, err := c.db.GetEpisode(show.TMDBID, season.SeasonNumber, ep.EpisodeNumber)
			if err == models.ErrNotFound {
				if err := c.db.CreateEpisode(&models.Episode{
					TMDBShowID:    show.TMDBID,
					SeasonNumber:  season.SeasonNumber,
					EpisodeNumber: ep.EpisodeNumber,
					Title:         ep.Name,
					AirDate:       airDate,
				}); err != nil {
					return fmt.Errorf("failed to create episode: %w", err)
				}
				added++
				continue
			}
			if err != nil {
				return err
			}

			changed := false
			if existing.Title != ep.Name && ep.Name != "" {
				existing.Title = ep.Name
				changed = true
			}
			if airDate != nil && (existing.AirDate == nil || !existing.AirDate.Equal(*airDate)) {
				existing.AirDate = airDate
				changed = true
			}
			if changed {
				if err := c.db.UpdateEpisode(existing); err != nil {
					return fmt.Errorf("failed to update episode: %w", err)
				}
			}
		}
	}

	releasing := details.Releasing()
	if show.StillReleasing != releasing || show.Title != details.Name {
		show.StillReleasing = releasing
		if details.Name != "" {
			show.Title = details.Name
		}
		if err := c.db.UpdateShow(show); err != nil {
			return err
		}
	}

	if added > 0 {
		c.logger.WithFields(logrus.Fields{
			"tmdb_id": show.TMDBID,
			"title":   show.Title,
			"added":   added,
		}).Info("Cached new episodes")
	}

	return nil
}

// RefreshReleasing refreshes episodes for every show still marked as
// releasing, used by the periodic job
func (c *LibraryController) RefreshReleasing(ctx context.Context) error {
	shows, err := c.db.GetShowsByType(models.MediaTypeTV)
	if err != nil {
		return err
	}

	for _, show := range shows {
		if !show.StillReleasing {
			continue
		}
		if err := c.RefreshEpisodes(ctx, show); err != nil {
			c.logger.WithError(err).WithField("tmdb_id", show.TMDBID).Error("Failed to refresh episodes")
		}
	}
	return nil
}

// Episodes returns a show's episodes, caching them from TMDB on first use
func (c *LibraryController) Episodes(ctx context.Context, tmdbID int64) ([]*models.Episode, error) {
	show, err := c.db.GetShowByTMDBID(tmdbID)
	if err != nil {
		return nil, err
	}
	if err := c.EnsureEpisodesCached(ctx, show); err != nil {
		return nil, err
	}
	return c.db.GetEpisodesByShow(tmdbID)
}

// ProgressReport is a show's overall watch progress
type ProgressReport struct {
	TMDBShowID    int64            `json:"tmdb_show_id"`
	Total         int              `json:"total"`
	Watched       int              `json:"watched"`
	Percent       float64          `json:"percent"`
	ActiveSeason  int              `json:"active_season"`
	CaughtUp      bool             `json:"caught_up"`
	NextUnwatched *ScheduleEpisode `json:"next_unwatched,omitempty"`
}

// Progress summarizes a show's watch progress
func (c *LibraryController) Progress(ctx context.Context, tmdbID int64, now time.Time) (*ProgressReport, error) {
	show, err := c.db.GetShowByTMDBID(tmdbID)
	if err != nil {
		return nil, err
	}
	if err := c.EnsureEpisodesCached(ctx, show); err != nil {
		return nil, err
	}

	episodes, err := c.db.GetEpisodesByShow(tmdbID)
	if err != nil {
		return nil, err
	}

	report := &ProgressReport{TMDBShowID: tmdbID, Total: len(episodes)}
	eps := make([]models.Episode, len(episodes))
	for i, ep := range episodes {
		eps[i] = *ep
		if ep.Watched {
			report.Watched++
		} else if report.NextUnwatched == nil {
			next := &ScheduleEpisode{
				SeasonNumber:  ep.SeasonNumber,
				EpisodeNumber: ep.EpisodeNumber,
				Title:         ep.Title,
			}
			report.NextUnwatched = next
		}
	}
	if report.Total > 0 {
		report.Percent = float64(report.Watched) / float64(report.Total) * 100
	}

	sum := engine.Summarize(eps, nil, now)
	report.ActiveSeason = sum.ActiveSeason
	report.CaughtUp = sum.CaughtUp

	return report, nil
}

func parseAirDate(s string) *time.Time {
	if s == "" {
		return nil
	}
	t, err := time.ParseInLocation("2006-01-02", s, time.UTC)
	if err != nil {
		return nil
	}
	return &t
}

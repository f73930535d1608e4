package controllers

import (
	"fmt"
	"time"

	"github.com/amaumene/nextup/internal/config"
	"github.com/amaumene/nextup/internal/engine"
	"github.com/amaumene/nextup/internal/models"
	"github.com/sirupsen/logrus"
)

// ScheduleController runs the derivation engine over the stored library
// and applies the transitions it returns
type ScheduleController struct {
	db     *models.Database
	opts   engine.Options
	logger *logrus.Logger
}

// NewScheduleController creates a new schedule controller
func NewScheduleController(db *models.Database, cfg *config.Config, logger *logrus.Logger) *ScheduleController {
	return &ScheduleController{
		db: db,
		opts: engine.Options{
			DailyCap:          cfg.ScheduleDailyCap,
			IdleHideDays:      cfg.IdleHideDays,
			AutoAbandonDays:   cfg.AutoAbandonDays,
			NotStartedBacklog: cfg.NotStartedBacklog,
			PickupAgainDays:   cfg.PickupAgainDays,
			WeeklyGapDays:     cfg.WeeklyGapDays,
			FastEpisodeLimit:  cfg.FastEpisodeLimit,
			StrictHistory:     cfg.StrictHistory,
		},
		logger: logger,
	}
}

// ScheduleShow is the show header of a schedule card
type ScheduleShow struct {
	TMDBID     int64               `json:"tmdb_id"`
	Title      string              `json:"title"`
	PosterPath string              `json:"poster_path"`
	Status     models.StoredStatus `json:"status"`
	Pace       models.WatchPace    `json:"pace"`
}

// ScheduleEpisode is the episode of a schedule card
type ScheduleEpisode struct {
	SeasonNumber  int    `json:"season_number"`
	EpisodeNumber int    `json:"episode_number"`
	Title         string `json:"title"`
	AirDate       string `json:"air_date,omitempty"`
}

// ScheduleItem is one card of the daily schedule
type ScheduleItem struct {
	Show    ScheduleShow    `json:"show"`
	Episode ScheduleEpisode `json:"episode"`
	Bucket  engine.Bucket   `json:"bucket"`

	// AvailableCount is the number of aired unwatched episodes in the
	// show's active season, for the "N available" badge
	AvailableCount int `json:"available_count"`
}

// Schedule is the full output of one run
type Schedule struct {
	Date      string         `json:"date"`
	Items     []ScheduleItem `json:"items"`
	Abandoned []int64        `json:"abandoned,omitempty"` // shows auto-transitioned this run
}

// BuildToday derives today's schedule and persists any status transitions
// the engine decided. It is the only place engine commands are applied.
func (c *ScheduleController) BuildToday(now time.Time) (*Schedule, error) {
	shows, err := c.db.GetShowsByType(models.MediaTypeTV)
	if err != nil {
		return nil, fmt.Errorf("failed to load shows: %w", err)
	}

	states := make([]engine.ShowState, 0, len(shows))
	showByID := make(map[int64]*models.Show, len(shows))
	episodesByID := make(map[int64][]*models.Episode, len(shows))

	for _, show := range shows {
		episodes, err := c.db.GetEpisodesByShow(show.TMDBID)
		if err != nil {
			return nil, fmt.Errorf("failed to load episodes for show %d: %w", show.TMDBID, err)
		}
		history, err := c.db.GetHistoryByShow(show.TMDBID)
		if err != nil {
			return nil, fmt.Errorf("failed to load history for show %d: %w", show.TMDBID, err)
		}

		state := engine.ShowState{Show: *show}
		state.Episodes = make([]models.Episode, len(episodes))
		for i, ep := range episodes {
			state.Episodes[i] = *ep
		}
		state.History = make([]models.WatchHistoryEntry, len(history))
		for i, entry := range history {
			state.History[i] = *entry
		}

		states = append(states, state)
		showByID[show.TMDBID] = show
		episodesByID[show.TMDBID] = episodes
	}

	result, err := engine.Run(states, now, c.opts)
	if err != nil {
		return nil, fmt.Errorf("schedule run failed: %w", err)
	}

	schedule := &Schedule{Date: engine.DateOf(now).Format("2006-01-02")}

	for _, cmd := range result.Commands {
		if err := c.db.SetShowStatus(cmd.ShowID, cmd.NewStatus); err != nil {
			return nil, fmt.Errorf("failed to apply status transition for show %d: %w", cmd.ShowID, err)
		}
		c.logger.WithFields(logrus.Fields{
			"tmdb_id": cmd.ShowID,
			"status":  cmd.NewStatus,
		}).Info("Auto-transitioned idle show")
		schedule.Abandoned = append(schedule.Abandoned, cmd.ShowID)
	}

	availableCounts := make(map[int64]int, len(states))
	for i := range states {
		sum, _, err := engine.Classify(states[i], now, c.opts)
		if err != nil {
			return nil, err
		}
		availableCounts[states[i].Show.TMDBID] = sum.UnwatchedAired
	}

	for _, item := range result.Items {
		show := showByID[item.ShowID]
		card := ScheduleItem{
			Show: ScheduleShow{
				TMDBID:     show.TMDBID,
				Title:      show.Title,
				PosterPath: show.PosterPath,
				Status:     show.Status,
				Pace:       show.Pace,
			},
			Episode: ScheduleEpisode{
				SeasonNumber:  item.SeasonNumber,
				EpisodeNumber: item.EpisodeNumber,
			},
			Bucket:         item.Bucket,
			AvailableCount: availableCounts[item.ShowID],
		}
		for _, ep := range episodesByID[item.ShowID] {
			if ep.SeasonNumber == item.SeasonNumber && ep.EpisodeNumber == item.EpisodeNumber {
				card.Episode.Title = ep.Title
				if ep.AirDate != nil {
					card.Episode.AirDate = engine.DateOf(*ep.AirDate).Format("2006-01-02")
				}
				break
			}
		}
		schedule.Items = append(schedule.Items, card)
	}

	c.logger.WithFields(logrus.Fields{
		"items":     len(schedule.Items),
		"abandoned": len(schedule.Abandoned),
	}).Info("Built daily schedule")

	return schedule, nil
}

package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/amaumene/nextup/internal/controllers"
	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

// Scheduler manages scheduled tasks
type Scheduler struct {
	cron                *cron.Cron
	scheduleCtrl        *controllers.ScheduleController
	libraryCtrl         *controllers.LibraryController
	episodeRefreshHours int
	logger              *logrus.Logger
}

// NewScheduler creates a new scheduler
func NewScheduler(
	scheduleCtrl *controllers.ScheduleController,
	libraryCtrl *controllers.LibraryController,
	episodeRefreshHours int,
	logger *logrus.Logger,
) *Scheduler {
	return &Scheduler{
		cron:                cron.New(),
		scheduleCtrl:        scheduleCtrl,
		libraryCtrl:         libraryCtrl,
		episodeRefreshHours: episodeRefreshHours,
		logger:              logger,
	}
}

// Start starts the scheduler
func (s *Scheduler) Start() error {
	s.logger.Info("Starting scheduler")

	// Daily at 04:00: run the schedule engine so idle auto-abandon
	// transitions apply even when no client asks for a schedule
	_, err := s.cron.AddFunc("0 4 * * *", func() {
		s.runDailySchedule()
	})
	if err != nil {
		return fmt.Errorf("failed to add daily schedule job: %w", err)
	}

	// Periodically: refresh episodes and the releasing flag for shows
	// still airing, so new air dates reach the engine
	refreshSpec := fmt.Sprintf("0 */%d * * *", s.episodeRefreshHours)
	_, err = s.cron.AddFunc(refreshSpec, func() {
		s.runEpisodeRefresh()
	})
	if err != nil {
		return fmt.Errorf("failed to add episode refresh job: %w", err)
	}

	s.cron.Start()
	s.logger.Info("Scheduler started")

	// Refresh immediately on startup so the first schedule request sees
	// current air dates
	go s.runEpisodeRefresh()

	return nil
}

// Stop stops the scheduler
func (s *Scheduler) Stop() {
	s.logger.Info("Stopping scheduler")
	s.cron.Stop()
}

// runDailySchedule executes the daily schedule job
func (s *Scheduler) runDailySchedule() {
	s.logger.Info("Running scheduled daily schedule build")

	schedule, err := s.scheduleCtrl.BuildToday(time.Now())
	if err != nil {
		s.logger.WithError(err).Error("Daily schedule job failed")
		return
	}

	s.logger.WithFields(logrus.Fields{
		"items":     len(schedule.Items),
		"abandoned": len(schedule.Abandoned),
	}).Info("Daily schedule job completed")
}

// runEpisodeRefresh executes the episode refresh job
func (s *Scheduler) runEpisodeRefresh() {
	s.logger.Info("Running scheduled episode refresh")
	ctx := context.Background()

	if err := s.libraryCtrl.RefreshReleasing(ctx); err != nil {
		s.logger.WithError(err).Error("Episode refresh job failed")
	} else {
		s.logger.Info("Episode refresh job completed")
	}
}

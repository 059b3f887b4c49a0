package scheduler

import (
	"fmt"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"

	"github.com/seenlogapp/seenlog/internal/controllers"
)

// Scheduler manages scheduled tasks
type Scheduler struct {
	cron      *cron.Cron
	statsCtrl *controllers.StatsController
	datesCtrl *controllers.DatesController
	logger    *logrus.Logger
}

// NewScheduler creates a new scheduler
func NewScheduler(statsCtrl *controllers.StatsController, datesCtrl *controllers.DatesController, logger *logrus.Logger) *Scheduler {
	return &Scheduler{
		cron:      cron.New(),
		statsCtrl: statsCtrl,
		datesCtrl: datesCtrl,
		logger:    logger,
	}
}

// Start starts the scheduler
func (s *Scheduler) Start() error {
	s.logger.Info("Starting scheduler")

	// Every night: refresh every owner's cached stats report so morning
	// dashboard loads are served from fresh cache
	_, err := s.cron.AddFunc("0 4 * * *", func() {
		s.runStatsRefresh()
	})
	if err != nil {
		return fmt.Errorf("failed to add stats refresh job: %w", err)
	}

	// Weekly: re-derive series date bounds from episode events to heal
	// any drift from racing writers
	_, err = s.cron.AddFunc("30 4 * * 1", func() {
		s.runDateSweep()
	})
	if err != nil {
		return fmt.Errorf("failed to add date sweep job: %w", err)
	}

	s.cron.Start()
	s.logger.Info("Scheduler started")

	return nil
}

// Stop stops the scheduler
func (s *Scheduler) Stop() {
	s.logger.Info("Stopping scheduler")
	s.cron.Stop()
}

// runStatsRefresh executes the stats refresh job
func (s *Scheduler) runStatsRefresh() {
	s.logger.Info("Running scheduled stats refresh")

	if err := s.statsCtrl.RefreshAll(); err != nil {
		s.logger.WithError(err).Error("Stats refresh job failed")
	} else {
		s.logger.Info("Stats refresh job completed successfully")
	}
}

// runDateSweep executes the series date integrity sweep
func (s *Scheduler) runDateSweep() {
	s.logger.Info("Running scheduled series date sweep")

	if err := s.datesCtrl.RederiveAll(); err != nil {
		s.logger.WithError(err).Error("Series date sweep failed")
	} else {
		s.logger.Info("Series date sweep completed successfully")
	}
}

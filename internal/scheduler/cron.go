package scheduler

import (
	"fmt"

	"github.com/kophyo6929/homietv/internal/controllers"
	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

// Scheduler manages scheduled maintenance tasks
type Scheduler struct {
	cron        *cron.Cron
	cleanupCtrl *controllers.CleanupController
	logger      *logrus.Logger
}

// NewScheduler creates a new scheduler
func NewScheduler(cleanupCtrl *controllers.CleanupController, logger *logrus.Logger) *Scheduler {
	return &Scheduler{
		cron:        cron.New(),
		cleanupCtrl: cleanupCtrl,
		logger:      logger,
	}
}

// Start starts the scheduler
func (s *Scheduler) Start() error {
	s.logger.Info("Starting scheduler")

	// Every hour: remove expired sessions
	_, err := s.cron.AddFunc("0 * * * *", func() {
		s.runSessionCleanup()
	})
	if err != nil {
		return fmt.Errorf("failed to add session cleanup job: %w", err)
	}

	// Every day at 04:00: prune uploads no row references
	_, err = s.cron.AddFunc("0 4 * * *", func() {
		s.runUploadCleanup()
	})
	if err != nil {
		return fmt.Errorf("failed to add upload cleanup job: %w", err)
	}

	s.cron.Start()
	s.logger.Info("Scheduler started")

	// Sweep sessions once at startup
	go s.runSessionCleanup()

	return nil
}

// Stop stops the scheduler
func (s *Scheduler) Stop() {
	s.logger.Info("Stopping scheduler")
	s.cron.Stop()
}

// runSessionCleanup executes the session cleanup job
func (s *Scheduler) runSessionCleanup() {
	s.logger.Debug("Running session cleanup")

	if err := s.cleanupCtrl.CleanupSessions(); err != nil {
		s.logger.WithError(err).Error("Session cleanup failed")
	}
}

// runUploadCleanup executes the orphaned upload cleanup job
func (s *Scheduler) runUploadCleanup() {
	s.logger.Info("Running upload cleanup")

	if err := s.cleanupCtrl.CleanupUploads(); err != nil {
		s.logger.WithError(err).Error("Upload cleanup failed")
	} else {
		s.logger.Info("Upload cleanup completed")
	}
}

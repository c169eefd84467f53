package jobs

import (
	"context"
	"time"

	"rentalhub-backend/internal/config"
	"rentalhub-backend/internal/domain"
	"rentalhub-backend/internal/logger"
	"rentalhub-backend/internal/repository"
)

// Reminder delivers a nudge about a waiting rental to one user.
type Reminder interface {
	SendReminder(ctx context.Context, rt domain.RentalRequest, userID int32) error
}

// JobRunner coordinates all scheduled jobs
type JobRunner struct {
	rentals   repository.RentalRepository
	reminders Reminder
	config    *config.Config
	now       func() time.Time
}

// NewJobRunner creates a new job runner with all dependencies
func NewJobRunner(rentals repository.RentalRepository, reminders Reminder, cfg *config.Config) *JobRunner {
	return &JobRunner{
		rentals:   rentals,
		reminders: reminders,
		config:    cfg,
		now:       time.Now,
	}
}

// Config returns the configuration the runner was built with.
func (jr *JobRunner) Config() *config.Config {
	return jr.config
}

// runWithRecovery wraps job execution with panic recovery
func (jr *JobRunner) runWithRecovery(jobName string, jobFunc func()) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error("Job panicked", "job", jobName, "panic", r)
		}
	}()

	logger.Info("Starting job", "job", jobName)
	jobFunc()
	logger.Info("Job completed", "job", jobName)
}

package jobs

import (
	"fmt"
	"log/slog"

	"dispatch/internal/core/application/usecases/commands"
)

// JobManager coordinates all scheduled jobs in the application.
// Provides a unified interface to start and stop all background jobs.
type JobManager struct {
	assignmentExpiryJob *AssignmentExpiryJob
	dispatchRetryJob    *DispatchRetryJob
}

// NewJobManager creates a new job manager with all required jobs.
// Takes command handlers as dependencies to wire up the job execution.
func NewJobManager(
	expireHandler commands.ExpireAssignmentsCommandHandler,
	dispatchHandler commands.DispatchPendingOrdersCommandHandler,
	retrySchedule string,
	logger *slog.Logger,
) *JobManager {
	return &JobManager{
		assignmentExpiryJob: NewAssignmentExpiryJob(expireHandler, logger),
		dispatchRetryJob:    NewDispatchRetryJob(dispatchHandler, retrySchedule, logger),
	}
}

// StartAll starts all scheduled jobs.
// Returns an error if any job fails to start.
func (jm *JobManager) StartAll() error {
	if err := jm.assignmentExpiryJob.Start(); err != nil {
		return fmt.Errorf("failed to start assignment expiry job: %w", err)
	}

	if err := jm.dispatchRetryJob.Start(); err != nil {
		// Stop already started jobs if this one fails
		jm.assignmentExpiryJob.Stop()
		return fmt.Errorf("failed to start dispatch retry job: %w", err)
	}

	return nil
}

// StopAll stops all scheduled jobs gracefully.
func (jm *JobManager) StopAll() {
	jm.dispatchRetryJob.Stop()
	jm.assignmentExpiryJob.Stop()
}

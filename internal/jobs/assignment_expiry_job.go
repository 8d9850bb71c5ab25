package jobs

import (
	"context"
	"log/slog"

	"dispatch/internal/core/application/usecases/commands"

	"github.com/robfig/cron/v3"
)

// AssignmentExpiryJob sweeps overdue broadcasts. Runs every second so an
// offer never outlives its TTL by more than a tick.
type AssignmentExpiryJob struct {
	handler commands.ExpireAssignmentsCommandHandler
	cron    *cron.Cron
	logger  *slog.Logger
}

// NewAssignmentExpiryJob creates the expiry sweep job.
func NewAssignmentExpiryJob(handler commands.ExpireAssignmentsCommandHandler, logger *slog.Logger) *AssignmentExpiryJob {
	return &AssignmentExpiryJob{
		handler: handler,
		cron:    cron.New(cron.WithSeconds()),
		logger:  logger.With("component", "assignment_expiry_job"),
	}
}

// Start begins the expiry sweep, running every second.
func (j *AssignmentExpiryJob) Start() error {
	_, err := j.cron.AddFunc("* * * * * *", func() {
		ctx := context.Background()
		cmd := commands.NewExpireAssignmentsCommand()

		if err := j.handler.Handle(ctx, cmd); err != nil {
			j.logger.ErrorContext(ctx, "Assignment expiry sweep failed", "error", err)
		}
	})

	if err != nil {
		return err
	}

	j.cron.Start()
	j.logger.InfoContext(context.Background(), "Assignment expiry job started (running every second)")
	return nil
}

// Stop stops the expiry sweep.
func (j *AssignmentExpiryJob) Stop() {
	j.cron.Stop()
	j.logger.InfoContext(context.Background(), "Assignment expiry job stopped")
}

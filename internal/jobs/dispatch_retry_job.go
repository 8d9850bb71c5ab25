package jobs

import (
	"context"
	"log/slog"

	"dispatch/internal/core/application/usecases/commands"

	"github.com/robfig/cron/v3"
)

// DispatchRetryJob re-broadcasts placed orders that have no live assignment:
// orders whose earlier broadcast expired or was declined by every candidate,
// and orders placed while no courier was eligible.
type DispatchRetryJob struct {
	handler  commands.DispatchPendingOrdersCommandHandler
	schedule string
	cron     *cron.Cron
	logger   *slog.Logger
}

// NewDispatchRetryJob creates the dispatch retry job. The schedule is a cron
// expression with a seconds field.
func NewDispatchRetryJob(
	handler commands.DispatchPendingOrdersCommandHandler,
	schedule string,
	logger *slog.Logger,
) *DispatchRetryJob {
	return &DispatchRetryJob{
		handler:  handler,
		schedule: schedule,
		cron:     cron.New(cron.WithSeconds()),
		logger:   logger.With("component", "dispatch_retry_job"),
	}
}

// Start begins the retry sweep on the configured schedule.
func (j *DispatchRetryJob) Start() error {
	_, err := j.cron.AddFunc(j.schedule, func() {
		ctx := context.Background()
		cmd := commands.NewDispatchPendingOrdersCommand()

		if err := j.handler.Handle(ctx, cmd); err != nil {
			j.logger.ErrorContext(ctx, "Dispatch retry sweep failed", "error", err)
		}
	})

	if err != nil {
		return err
	}

	j.cron.Start()
	j.logger.InfoContext(context.Background(), "Dispatch retry job started", "schedule", j.schedule)
	return nil
}

// Stop stops the retry sweep.
func (j *DispatchRetryJob) Stop() {
	j.cron.Stop()
	j.logger.InfoContext(context.Background(), "Dispatch retry job stopped")
}

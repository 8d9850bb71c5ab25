// Package jobs provides scheduled background tasks for the dispatch core.
//
// This package implements cron-based jobs using github.com/robfig/cron/v3
// to handle periodic operations required by the dispatch flow.
//
// # Available Jobs
//
// 1. AssignmentExpiryJob - Runs every second to expire broadcasts whose offer TTL elapsed
// 2. DispatchRetryJob - Re-broadcasts placed orders without a live assignment on a configurable schedule
//
// # Usage
//
// Jobs are managed through JobManager which provides a unified interface:
//
//	// Create job manager with required handlers
//	jobManager := jobs.NewJobManager(expireHandler, dispatchHandler, retrySchedule, logger)
//
//	// Start all jobs
//	if err := jobManager.StartAll(); err != nil {
//		log.Fatal("Failed to start jobs:", err)
//	}
//
//	// Stop all jobs when shutting down
//	defer jobManager.StopAll()
//
// # Error Handling
//
// Expected business outcomes (no pending orders, no eligible couriers) are
// filtered inside the handlers; anything a job sees in its error return is an
// infrastructure failure and gets logged.
package jobs

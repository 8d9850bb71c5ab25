package commands

import (
	"context"
	"time"

	"dispatch/internal/core/domain/model/assignment"
	"dispatch/internal/core/ports"
)

// ExpireAssignmentsCommandHandler times out unanswered broadcasts. An
// in-flight accept that reaches the storage-level conditional write before
// the sweep commits still wins; the sweep only catches assignments nobody
// acted on within the timeout.
type ExpireAssignmentsCommandHandler struct {
	uowFactory AssignmentUoWFactory
	publisher  ports.EventPublisher
	ttl        time.Duration
}

// NewExpireAssignmentsCommandHandler creates a handler for the expiry sweep
// with the given broadcast timeout.
func NewExpireAssignmentsCommandHandler(
	uowFactory AssignmentUoWFactory,
	publisher ports.EventPublisher,
	ttl time.Duration,
) ExpireAssignmentsCommandHandler {
	return ExpireAssignmentsCommandHandler{
		uowFactory: uowFactory,
		publisher:  publisher,
		ttl:        ttl,
	}
}

// Handle processes the sweep command. Expired assignments are committed
// first; withdrawal events go out after the commit, best effort.
func (h ExpireAssignmentsCommandHandler) Handle(ctx context.Context, command ExpireAssignmentsCommand) error {
	if err := command.Validate(); err != nil {
		return err
	}

	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	assignmentRepo := uow.AssignmentRepository()
	cutoff := time.Now().Add(-h.ttl)

	overdue, err := assignmentRepo.GetAllBroadcastedBefore(ctx, cutoff)
	if err != nil {
		return err
	}

	var expired []*assignment.Assignment
	for _, a := range overdue {
		if err = a.Expire(); err != nil {
			return err
		}
		if err = assignmentRepo.Update(ctx, a); err != nil {
			return err
		}
		expired = append(expired, a)
	}

	if err = uow.Commit(ctx); err != nil {
		return err
	}

	for _, a := range expired {
		withdrawn := ports.Event{
			Name: ports.EventAssignmentWithdrawn,
			Payload: ports.AssignmentWithdrawnPayload{
				AssignmentID: a.ID().String(),
			},
		}
		for _, candidate := range a.Candidates() {
			_ = h.publisher.PublishToCourier(ctx, candidate, withdrawn)
		}
	}

	return nil
}

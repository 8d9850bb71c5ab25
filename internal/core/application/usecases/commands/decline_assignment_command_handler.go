package commands

import (
	"context"
)

// DeclineAssignmentCommandHandler removes a courier from an assignment's
// broadcast set. Rejection of the whole assignment happens inside the
// aggregate when the last candidate declines; the order then stays placed
// and the dispatch retry job re-broadcasts it.
type DeclineAssignmentCommandHandler struct {
	uowFactory AssignmentUoWFactory
}

// NewDeclineAssignmentCommandHandler creates a handler for assignment
// decline operations.
func NewDeclineAssignmentCommandHandler(uowFactory AssignmentUoWFactory) DeclineAssignmentCommandHandler {
	return DeclineAssignmentCommandHandler{
		uowFactory: uowFactory,
	}
}

// Handle processes the decline command.
//
// Error contract: errs.ErrObjectNotFound for an unknown assignment,
// assignment.ErrAlreadyTaken when the race already resolved,
// assignment.ErrNotCandidate when the courier was never offered the
// assignment. Declining an already rejected assignment is a no-op success.
func (h DeclineAssignmentCommandHandler) Handle(ctx context.Context, command DeclineAssignmentCommand) error {
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
	declined, err := assignmentRepo.Get(ctx, command.AssignmentID())
	if err != nil {
		return err
	}

	if err = declined.Decline(command.CourierID()); err != nil {
		return err
	}

	if err = assignmentRepo.Update(ctx, declined); err != nil {
		return err
	}

	return uow.Commit(ctx)
}

package commands

import (
	"context"

	"dispatch/internal/core/domain/model/assignment"
	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/domain/model/order"
	"dispatch/internal/core/ports"
)

// AcceptAssignmentCommandHandler resolves the race to accept. The winner is
// decided by the repository's atomic conditional write, so concurrent
// accepts from different couriers are safe without any process-wide lock:
// exactly one caller gets the binding, the rest get
// assignment.ErrAlreadyTaken.
//
// On success the order advances to out-for-delivery, the courier is marked
// busy, and every losing candidate receives an assignment-withdrawn event.
type AcceptAssignmentCommandHandler struct {
	uowFactory UoWFactory
	publisher  ports.EventPublisher
}

// NewAcceptAssignmentCommandHandler creates a handler for assignment
// acceptance operations.
func NewAcceptAssignmentCommandHandler(uowFactory UoWFactory, publisher ports.EventPublisher) AcceptAssignmentCommandHandler {
	return AcceptAssignmentCommandHandler{
		uowFactory: uowFactory,
		publisher:  publisher,
	}
}

// Handle processes the accept command.
//
// Error contract: errs.ErrObjectNotFound for an unknown assignment,
// assignment.ErrAlreadyTaken when another courier won,
// assignment.ErrStaleAssignment when the broadcast already expired, and
// assignment.ErrNotCandidate when the courier was never offered the
// assignment. A repeated accept by the winner is a no-op success.
func (h AcceptAssignmentCommandHandler) Handle(ctx context.Context, command AcceptAssignmentCommand) error {
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

	accepted, err := uow.AssignmentRepository().Accept(ctx, command.AssignmentID(), command.CourierID())
	if err != nil {
		return err
	}

	ord, err := uow.OrderRepository().Get(ctx, accepted.OrderID())
	if err != nil {
		return err
	}

	// A repeated accept by the winner finds the order already advanced;
	// re-running the transition would reject the retry.
	if ord.Status() != order.OutForDelivery {
		if err = ord.Assign(command.CourierID()); err != nil {
			return err
		}
		if err = ord.StartDelivery(); err != nil {
			return err
		}
		if err = uow.OrderRepository().Update(ctx, ord); err != nil {
			return err
		}
	}

	winner, err := uow.CourierRepository().Get(ctx, command.CourierID())
	if err != nil {
		return err
	}
	winner.MarkBusy()
	if err = uow.CourierRepository().Update(ctx, winner); err != nil {
		return err
	}

	if err = uow.Commit(ctx); err != nil {
		return err
	}

	h.withdrawFromLosers(ctx, accepted, command.CourierID())
	return nil
}

func (h AcceptAssignmentCommandHandler) withdrawFromLosers(
	ctx context.Context,
	accepted *assignment.Assignment,
	winnerID kernel.UUID,
) {
	withdrawn := ports.Event{
		Name: ports.EventAssignmentWithdrawn,
		Payload: ports.AssignmentWithdrawnPayload{
			AssignmentID: accepted.ID().String(),
		},
	}

	for _, candidate := range accepted.Candidates() {
		if candidate.IsEqual(winnerID) {
			continue
		}
		_ = h.publisher.PublishToCourier(ctx, candidate, withdrawn)
	}
}

package commands

import (
	"context"
	"errors"

	"dispatch/internal/core/domain/model/assignment"
	"dispatch/internal/core/domain/model/order"
)

// DispatchPendingOrdersCommandHandler re-runs the broadcast for every placed
// order without a live assignment. Orders that still have no eligible
// couriers are skipped and stay placed for the next sweep.
type DispatchPendingOrdersCommandHandler struct {
	dispatcher DispatchOrderCommandHandler
}

// NewDispatchPendingOrdersCommandHandler creates a handler for the broadcast
// sweep. It reuses the single-order dispatch handler for each pending order.
func NewDispatchPendingOrdersCommandHandler(dispatcher DispatchOrderCommandHandler) DispatchPendingOrdersCommandHandler {
	return DispatchPendingOrdersCommandHandler{
		dispatcher: dispatcher,
	}
}

// Handle processes the sweep command. Each pending order is broadcast in its
// own transaction so one failing order does not block the rest; the first
// infrastructure error aborts the sweep.
func (h DispatchPendingOrdersCommandHandler) Handle(ctx context.Context, command DispatchPendingOrdersCommand) error {
	if err := command.Validate(); err != nil {
		return err
	}

	pending, err := h.pendingOrders(ctx)
	if err != nil {
		return err
	}

	for _, ord := range pending {
		if err = h.dispatchOne(ctx, ord); err != nil {
			return err
		}
	}

	return nil
}

func (h DispatchPendingOrdersCommandHandler) pendingOrders(ctx context.Context) ([]*order.Order, error) {
	uow := h.dispatcher.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	return uow.OrderRepository().GetAllInPlacedStatus(ctx)
}

func (h DispatchPendingOrdersCommandHandler) dispatchOne(ctx context.Context, ord *order.Order) error {
	cmd, err := NewDispatchOrderCommand(ord.ID())
	if err != nil {
		return err
	}

	_, err = h.dispatcher.Handle(ctx, cmd)
	switch {
	case errors.Is(err, ErrNoCouriersAvailable),
		errors.Is(err, ErrOrderAlreadyDispatched),
		errors.Is(err, assignment.ErrStaleAssignment):
		// Expected sweep outcomes: nothing to offer yet, or another path
		// already dispatched the order.
		return nil
	default:
		return err
	}
}

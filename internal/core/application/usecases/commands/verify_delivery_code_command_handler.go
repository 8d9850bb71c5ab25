package commands

import (
	"context"
	"errors"

	"dispatch/internal/core/domain/model/order"
	"dispatch/internal/pkg/errs"
	"dispatch/internal/pkg/locks"
)

var (
	// ErrCodeMismatch is returned when a code is active but the submitted
	// value differs. The correct value is never revealed.
	ErrCodeMismatch = errors.New("delivery code does not match")

	// ErrNoActiveCode is returned when no code is currently valid for the
	// order: none issued, already consumed, or the order is not out for
	// delivery.
	ErrNoActiveCode = errors.New("no active delivery code for order")
)

// VerifyDeliveryCodeCommandHandler confirms a delivery. On a match the code
// is consumed, the order and its assignment advance to delivered, and the
// courier returns to the available pool — all in one transaction. A mismatch
// persists the order's consecutive-mismatch counter and fails with
// ErrCodeMismatch.
//
// Runs under the same per-order mutex as code issue so the two never race.
type VerifyDeliveryCodeCommandHandler struct {
	uowFactory UoWFactory
	codeLocks  *locks.KeyedMutex
}

// NewVerifyDeliveryCodeCommandHandler creates a handler for delivery-code
// verification. The KeyedMutex must be shared with the issue handler.
func NewVerifyDeliveryCodeCommandHandler(uowFactory UoWFactory, codeLocks *locks.KeyedMutex) VerifyDeliveryCodeCommandHandler {
	return VerifyDeliveryCodeCommandHandler{
		uowFactory: uowFactory,
		codeLocks:  codeLocks,
	}
}

// Handle processes the verify command.
//
// Error contract: ErrNoActiveCode and ErrCodeMismatch are state conflicts
// the caller surfaces to the courier ("please re-enter code"); a repeated
// verify after the order was already delivered also returns ErrNoActiveCode
// since the matched code was consumed.
func (h VerifyDeliveryCodeCommandHandler) Handle(ctx context.Context, command VerifyDeliveryCodeCommand) error {
	if err := command.Validate(); err != nil {
		return err
	}

	key := command.OrderID().String()
	h.codeLocks.Lock(key)
	defer h.codeLocks.Unlock(key)

	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	ord, err := uow.OrderRepository().Get(ctx, command.OrderID())
	if err != nil {
		return err
	}

	switch ord.VerifyDeliveryCode(command.Code()) {
	case order.VerifyNoActiveCode:
		return ErrNoActiveCode

	case order.VerifyMismatch:
		if err = uow.OrderRepository().Update(ctx, ord); err != nil {
			return err
		}
		if err = uow.Commit(ctx); err != nil {
			return err
		}
		return ErrCodeMismatch

	case order.VerifyMatch:
		return h.finalize(ctx, uow, ord)

	default:
		return errs.NewValueIsInvalidError("verification outcome")
	}
}

// finalize advances order, assignment, and courier after a matched code.
func (h VerifyDeliveryCodeCommandHandler) finalize(ctx context.Context, uow UoW, ord *order.Order) error {
	if err := ord.Complete(); err != nil {
		return err
	}
	if err := uow.OrderRepository().Update(ctx, ord); err != nil {
		return err
	}

	courierID := ord.Courier()
	if courierID == nil {
		return errs.NewValueIsRequiredError("order courier")
	}

	active, err := uow.AssignmentRepository().GetActiveByOrder(ctx, ord.ID())
	switch {
	case errors.Is(err, errs.ErrObjectNotFound):
		// Assignment already archived; the order outcome still stands.
	case err != nil:
		return err
	default:
		if err = active.Complete(*courierID); err != nil {
			return err
		}
		if err = uow.AssignmentRepository().Update(ctx, active); err != nil {
			return err
		}
	}

	freed, err := uow.CourierRepository().Get(ctx, *courierID)
	if err != nil {
		return err
	}
	freed.MarkAvailable()
	if err = uow.CourierRepository().Update(ctx, freed); err != nil {
		return err
	}

	return uow.Commit(ctx)
}

package commands

import (
	"context"
	"log/slog"

	"dispatch/internal/core/domain/model/order"
	"dispatch/internal/core/ports"
	"dispatch/internal/pkg/locks"
)

// SendDeliveryCodeCommandHandler issues a delivery confirmation code for an
// out-for-delivery order and sends it to the recipient contact.
//
// Issue and verify for one order are serialized by a per-order mutex on top
// of the transaction, so a re-issue never races a verify in flight. The
// notification itself is fire-and-forget: a send failure is logged, never
// returned, and the recipient can request a new code.
type SendDeliveryCodeCommandHandler struct {
	uowFactory OrderUoWFactory
	notifier   ports.Notifier
	codeLocks  *locks.KeyedMutex
	logger     *slog.Logger
}

// NewSendDeliveryCodeCommandHandler creates a handler for delivery-code
// issue operations. The KeyedMutex must be shared with the verify handler.
func NewSendDeliveryCodeCommandHandler(
	uowFactory OrderUoWFactory,
	notifier ports.Notifier,
	codeLocks *locks.KeyedMutex,
	logger *slog.Logger,
) SendDeliveryCodeCommandHandler {
	return SendDeliveryCodeCommandHandler{
		uowFactory: uowFactory,
		notifier:   notifier,
		codeLocks:  codeLocks,
		logger:     logger.With("component", "send_delivery_code"),
	}
}

// Handle processes the issue command. The order must be out for delivery;
// a previously issued code is overwritten and its mismatch counter reset.
func (h SendDeliveryCodeCommandHandler) Handle(ctx context.Context, command SendDeliveryCodeCommand) error {
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

	code := order.GenerateDeliveryCode()
	if err = ord.IssueDeliveryCode(code); err != nil {
		return err
	}

	if err = uow.OrderRepository().Update(ctx, ord); err != nil {
		return err
	}

	if err = uow.Commit(ctx); err != nil {
		return err
	}

	if err = h.notifier.SendDeliveryCode(ctx, ord.RecipientContact(), code.Value()); err != nil {
		h.logger.ErrorContext(ctx, "delivery code notification failed",
			"orderId", ord.ID().String(), "error", err)
	}

	return nil
}

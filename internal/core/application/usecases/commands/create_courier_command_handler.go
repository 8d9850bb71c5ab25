package commands

import (
	"context"

	"dispatch/internal/core/domain/model/courier"
)

// CreateCourierCommandHandler handles the business logic for courier
// registration.
type CreateCourierCommandHandler struct {
	uowFactory CourierUoWFactory
}

// NewCreateCourierCommandHandler creates a handler for courier creation operations.
// Requires a CourierUoWFactory for transactional persistence.
func NewCreateCourierCommandHandler(uowFactory CourierUoWFactory) CreateCourierCommandHandler {
	return CreateCourierCommandHandler{
		uowFactory: uowFactory,
	}
}

// Handle processes the courier creation command.
// The courier starts available and joins the candidate pool of the next
// broadcast.
func (h *CreateCourierCommandHandler) Handle(ctx context.Context, cmd CreateCourierCommand) error {
	if err := cmd.Validate(); err != nil {
		return err
	}

	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	courierRepo := uow.CourierRepository()
	newCourier, err := courier.NewCourier(cmd.CourierID(), cmd.Name())
	if err != nil {
		return err
	}

	if err = courierRepo.Add(ctx, newCourier); err != nil {
		return err
	}

	return uow.Commit(ctx)
}

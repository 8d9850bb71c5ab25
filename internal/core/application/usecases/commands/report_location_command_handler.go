package commands

import (
	"context"
	"errors"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/ports"
	"dispatch/internal/pkg/errs"
)

// ReportLocationCommandHandler records a courier's position: on the courier
// row for the fleet view, in the location store for the hot dispatch reads,
// and as a fan-out to observers of the courier's active order. The fan-out is
// best effort.
type ReportLocationCommandHandler struct {
	uowFactory UoWFactory
	locations  ports.LocationStore
	publisher  ports.EventPublisher
}

// NewReportLocationCommandHandler creates a handler for courier position
// reports.
func NewReportLocationCommandHandler(
	uowFactory UoWFactory,
	locations ports.LocationStore,
	publisher ports.EventPublisher,
) ReportLocationCommandHandler {
	return ReportLocationCommandHandler{
		uowFactory: uowFactory,
		locations:  locations,
		publisher:  publisher,
	}
}

// Handle processes the position report. Couriers without an active order
// still get their position stored; there is just nobody to fan it out to.
func (h ReportLocationCommandHandler) Handle(ctx context.Context, command ReportLocationCommand) error {
	if err := command.Validate(); err != nil {
		return err
	}

	orderID, hasOrder, err := h.persistPosition(ctx, command)
	if err != nil {
		return err
	}

	if err := h.locations.Set(ctx, command.CourierID(), command.Location()); err != nil {
		return err
	}

	if !hasOrder {
		return nil
	}

	_ = h.publisher.PublishToOrder(ctx, orderID, ports.Event{
		Name: ports.EventCourierLocation,
		Payload: ports.CourierLocationPayload{
			Latitude:  command.Location().Latitude(),
			Longitude: command.Location().Longitude(),
		},
	})

	return nil
}

// persistPosition writes the position onto the courier row and resolves, in
// the same transaction, the courier's active order for the fan-out.
func (h ReportLocationCommandHandler) persistPosition(
	ctx context.Context,
	command ReportLocationCommand,
) (kernel.UUID, bool, error) {
	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return kernel.UUID{}, false, err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	reporting, err := uow.CourierRepository().Get(ctx, command.CourierID())
	if err != nil {
		return kernel.UUID{}, false, err
	}

	if err = reporting.UpdateLocation(command.Location()); err != nil {
		return kernel.UUID{}, false, err
	}

	if err = uow.CourierRepository().Update(ctx, reporting); err != nil {
		return kernel.UUID{}, false, err
	}

	var orderID kernel.UUID
	hasOrder := false

	current, err := uow.OrderRepository().GetCurrentByCourier(ctx, command.CourierID())
	switch {
	case err == nil:
		orderID = current.ID()
		hasOrder = true
	case !errors.Is(err, errs.ErrObjectNotFound):
		return kernel.UUID{}, false, err
	}

	if err = uow.Commit(ctx); err != nil {
		return kernel.UUID{}, false, err
	}

	return orderID, hasOrder, nil
}

package commands

import (
	"context"
	"errors"
	"time"

	"dispatch/internal/core/domain/model/assignment"
	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/domain/model/order"
	"dispatch/internal/core/domain/services"
	"dispatch/internal/core/ports"
	"dispatch/internal/pkg/errs"
)

var (
	ErrNoCouriersAvailable    = errors.New("no couriers available for broadcast")
	ErrOrderAlreadyDispatched = errors.New("order already has an active assignment")
	ErrOrderIsNotDispatchable = errors.New("order is not waiting for dispatch")
)

// DispatchOrderCommandHandler broadcasts a placed order to the eligible
// courier pool: it creates an Assignment in Broadcasted status and pushes a
// new-assignment event to every candidate session.
//
// The broadcast is transactional; events go out only after the assignment is
// committed. Event delivery itself is best effort.
type DispatchOrderCommandHandler struct {
	uowFactory UoWFactory
	selector   services.CandidateSelector
	locations  ports.LocationStore
	publisher  ports.EventPublisher
}

// NewDispatchOrderCommandHandler creates a handler for order broadcast
// operations.
func NewDispatchOrderCommandHandler(
	uowFactory UoWFactory,
	selector services.CandidateSelector,
	locations ports.LocationStore,
	publisher ports.EventPublisher,
) DispatchOrderCommandHandler {
	return DispatchOrderCommandHandler{
		uowFactory: uowFactory,
		selector:   selector,
		locations:  locations,
		publisher:  publisher,
	}
}

// Handle processes the dispatch command for a single order and returns the
// created assignment's ID.
//
// Returns ErrOrderAlreadyDispatched when the order already has a live
// assignment (an order has at most one non-terminal assignment at a time)
// and ErrNoCouriersAvailable when the candidate set comes up empty; the
// order then stays placed for the retry job to pick up.
func (h DispatchOrderCommandHandler) Handle(ctx context.Context, command DispatchOrderCommand) (kernel.UUID, error) {
	if err := command.Validate(); err != nil {
		return kernel.UUID{}, err
	}

	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return kernel.UUID{}, err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	ord, err := uow.OrderRepository().Get(ctx, command.OrderID())
	if err != nil {
		return kernel.UUID{}, err
	}

	created, err := h.broadcast(ctx, uow, ord)
	if err != nil {
		return kernel.UUID{}, err
	}

	if err = uow.Commit(ctx); err != nil {
		return kernel.UUID{}, err
	}

	h.publishOffer(ctx, ord, created)
	return created.ID(), nil
}

// broadcast creates the assignment for one placed order inside the caller's
// transaction. Shared with the pending-orders sweep.
func (h DispatchOrderCommandHandler) broadcast(
	ctx context.Context,
	uow UoW,
	ord *order.Order,
) (*assignment.Assignment, error) {
	if err := ord.ValidateAssign(); err != nil {
		return nil, ErrOrderIsNotDispatchable
	}

	_, err := uow.AssignmentRepository().GetActiveByOrder(ctx, ord.ID())
	if err == nil {
		return nil, ErrOrderAlreadyDispatched
	}
	if !errors.Is(err, errs.ErrObjectNotFound) {
		return nil, err
	}

	couriers, err := uow.CourierRepository().GetAllAvailable(ctx)
	if err != nil {
		return nil, err
	}

	// Courier positions live in the volatile location store, not in the
	// transactional one. Hydrate them before radius filtering.
	positions, err := h.locations.GetAll(ctx)
	if err != nil {
		return nil, err
	}
	for _, c := range couriers {
		if position, ok := positions[c.ID()]; ok {
			if err = c.UpdateLocation(position); err != nil {
				return nil, err
			}
		}
	}

	candidates, err := h.selector.SelectCandidates(ord, couriers)
	if errors.Is(err, services.ErrNoCandidates) {
		return nil, ErrNoCouriersAvailable
	}
	if err != nil {
		return nil, err
	}

	created, err := assignment.NewAssignment(kernel.NewUUID(), ord.ID(), candidates, time.Now())
	if err != nil {
		return nil, err
	}

	if err = uow.AssignmentRepository().Add(ctx, created); err != nil {
		return nil, err
	}

	return created, nil
}

func (h DispatchOrderCommandHandler) publishOffer(ctx context.Context, ord *order.Order, created *assignment.Assignment) {
	offer := ports.Event{
		Name: ports.EventNewAssignment,
		Payload: ports.AssignmentOfferPayload{
			AssignmentID: created.ID().String(),
			OrderID:      ord.ID().String(),
			Street:       ord.Street(),
			CreatedAt:    created.CreatedAt(),
		},
	}

	for _, candidate := range created.Candidates() {
		_ = h.publisher.PublishToCourier(ctx, candidate, offer)
	}
}

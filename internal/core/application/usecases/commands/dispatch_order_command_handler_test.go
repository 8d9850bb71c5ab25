package commands_test

import (
	"testing"

	"dispatch/internal/core/application/usecases/commands"
	"dispatch/internal/core/domain/model/assignment"
	"dispatch/internal/core/domain/model/courier"
	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/domain/model/order"
	"dispatch/internal/core/domain/services"
	"dispatch/internal/core/ports"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newDispatchHandler(uow *fakeAssignmentUoW, publisher ports.EventPublisher, radiusKm float64) commands.DispatchOrderCommandHandler {
	locations := new(MockLocationStore)
	locations.On("GetAll", mock.Anything).Return(map[kernel.UUID]kernel.Location{}, nil)

	return commands.NewDispatchOrderCommandHandler(
		uow, services.NewCandidateSelector(radiusKm), locations, publisher)
}

func seedPlacedOrder(t *testing.T, uow *fakeAssignmentUoW) *order.Order {
	t.Helper()

	location, err := kernel.NewLocation(40.7128, -74.0060)
	require.NoError(t, err)
	ord, err := order.NewOrder(kernel.NewUUID(), "350 5th Ave", location, "recipient@example.com")
	require.NoError(t, err)
	require.NoError(t, uow.OrderRepository().Add(t.Context(), ord))
	return ord
}

func seedAvailableCourier(t *testing.T, uow *fakeAssignmentUoW) *courier.Courier {
	t.Helper()

	c, err := courier.NewCourier(kernel.NewUUID(), "Courier")
	require.NoError(t, err)
	require.NoError(t, uow.CourierRepository().Add(t.Context(), c))
	return c
}

func TestDispatchOrderCommandHandler_Handle_Success(t *testing.T) {
	ctx := t.Context()
	uow := newFakeAssignmentUoW()
	ord := seedPlacedOrder(t, uow)
	courierA := seedAvailableCourier(t, uow)
	courierB := seedAvailableCourier(t, uow)

	publisher := new(MockEventPublisher)
	offer := mock.MatchedBy(func(e ports.Event) bool {
		payload, ok := e.Payload.(ports.AssignmentOfferPayload)
		return e.Name == ports.EventNewAssignment && ok && payload.OrderID == ord.ID().String()
	})
	publisher.On("PublishToCourier", ctx, courierA.ID(), offer).Return(nil).Once()
	publisher.On("PublishToCourier", ctx, courierB.ID(), offer).Return(nil).Once()

	handler := newDispatchHandler(uow, publisher, 0)
	cmd, err := commands.NewDispatchOrderCommand(ord.ID())
	require.NoError(t, err)

	assignmentID, err := handler.Handle(ctx, cmd)

	require.NoError(t, err)
	created, err := uow.AssignmentRepository().Get(ctx, assignmentID)
	require.NoError(t, err)
	assert.Equal(t, assignment.Broadcasted, created.Status())
	assert.Len(t, created.Candidates(), 2)
	assert.True(t, created.OrderID().IsEqual(ord.ID()))
	publisher.AssertExpectations(t)
}

func TestDispatchOrderCommandHandler_Handle_NoCouriers(t *testing.T) {
	ctx := t.Context()
	uow := newFakeAssignmentUoW()
	ord := seedPlacedOrder(t, uow)

	handler := newDispatchHandler(uow, new(MockEventPublisher), 0)
	cmd, _ := commands.NewDispatchOrderCommand(ord.ID())

	_, err := handler.Handle(ctx, cmd)

	require.ErrorIs(t, err, commands.ErrNoCouriersAvailable)
	// Order stays placed for the retry sweep.
	assert.Equal(t, order.Placed, ord.Status())
}

func TestDispatchOrderCommandHandler_Handle_BusyCouriersAreSkipped(t *testing.T) {
	ctx := t.Context()
	uow := newFakeAssignmentUoW()
	ord := seedPlacedOrder(t, uow)
	free := seedAvailableCourier(t, uow)
	busy := seedAvailableCourier(t, uow)
	busy.MarkBusy()

	publisher := new(MockEventPublisher)
	publisher.On("PublishToCourier", ctx, free.ID(), mock.Anything).Return(nil).Once()

	handler := newDispatchHandler(uow, publisher, 0)
	cmd, _ := commands.NewDispatchOrderCommand(ord.ID())

	assignmentID, err := handler.Handle(ctx, cmd)

	require.NoError(t, err)
	created, _ := uow.AssignmentRepository().Get(ctx, assignmentID)
	require.Len(t, created.Candidates(), 1)
	assert.True(t, created.Candidates()[0].IsEqual(free.ID()))
	publisher.AssertExpectations(t)
}

func TestDispatchOrderCommandHandler_Handle_AlreadyDispatched(t *testing.T) {
	ctx := t.Context()
	uow := newFakeAssignmentUoW()
	ord := seedPlacedOrder(t, uow)
	seedAvailableCourier(t, uow)

	publisher := new(MockEventPublisher)
	publisher.On("PublishToCourier", mock.Anything, mock.Anything, mock.Anything).Return(nil)

	handler := newDispatchHandler(uow, publisher, 0)
	cmd, _ := commands.NewDispatchOrderCommand(ord.ID())

	_, err := handler.Handle(ctx, cmd)
	require.NoError(t, err)

	_, err = handler.Handle(ctx, cmd)
	require.ErrorIs(t, err, commands.ErrOrderAlreadyDispatched)
}

func TestDispatchOrderCommandHandler_Handle_OrderNotDispatchable(t *testing.T) {
	ctx := t.Context()
	uow := newFakeAssignmentUoW()
	ord := seedPlacedOrder(t, uow)
	seedAvailableCourier(t, uow)
	require.NoError(t, ord.Fail())

	handler := newDispatchHandler(uow, new(MockEventPublisher), 0)
	cmd, _ := commands.NewDispatchOrderCommand(ord.ID())

	_, err := handler.Handle(ctx, cmd)

	require.ErrorIs(t, err, commands.ErrOrderIsNotDispatchable)
}

func TestDispatchOrderCommandHandler_Handle_RadiusFiltersByStoredLocation(t *testing.T) {
	ctx := t.Context()
	uow := newFakeAssignmentUoW()
	ord := seedPlacedOrder(t, uow)
	near := seedAvailableCourier(t, uow)
	far := seedAvailableCourier(t, uow)

	nearLoc, _ := kernel.NewLocation(40.7127, -74.0059)
	farLoc, _ := kernel.NewLocation(40.7357, -74.1724)
	locations := new(MockLocationStore)
	locations.On("GetAll", mock.Anything).Return(map[kernel.UUID]kernel.Location{
		near.ID(): nearLoc,
		far.ID():  farLoc,
	}, nil)

	publisher := new(MockEventPublisher)
	publisher.On("PublishToCourier", ctx, near.ID(), mock.Anything).Return(nil).Once()

	handler := commands.NewDispatchOrderCommandHandler(
		uow, services.NewCandidateSelector(5.0), locations, publisher)
	cmd, _ := commands.NewDispatchOrderCommand(ord.ID())

	assignmentID, err := handler.Handle(ctx, cmd)

	require.NoError(t, err)
	created, _ := uow.AssignmentRepository().Get(ctx, assignmentID)
	require.Len(t, created.Candidates(), 1)
	assert.True(t, created.Candidates()[0].IsEqual(near.ID()))
	publisher.AssertExpectations(t)
}

func TestDispatchPendingOrdersCommandHandler_Handle_SweepsAllPlacedOrders(t *testing.T) {
	ctx := t.Context()
	uow := newFakeAssignmentUoW()
	ordA := seedPlacedOrder(t, uow)
	ordB := seedPlacedOrder(t, uow)
	seedAvailableCourier(t, uow)

	publisher := new(MockEventPublisher)
	publisher.On("PublishToCourier", mock.Anything, mock.Anything, mock.Anything).Return(nil)

	handler := commands.NewDispatchPendingOrdersCommandHandler(newDispatchHandler(uow, publisher, 0))
	cmd := commands.NewDispatchPendingOrdersCommand()

	require.NoError(t, handler.Handle(ctx, cmd))

	for _, ord := range []kernel.UUID{ordA.ID(), ordB.ID()} {
		_, err := uow.AssignmentRepository().GetActiveByOrder(ctx, ord)
		assert.NoError(t, err)
	}
}

func TestDispatchPendingOrdersCommandHandler_Handle_NoCouriersIsNotAnError(t *testing.T) {
	ctx := t.Context()
	uow := newFakeAssignmentUoW()
	seedPlacedOrder(t, uow)

	handler := commands.NewDispatchPendingOrdersCommandHandler(
		newDispatchHandler(uow, new(MockEventPublisher), 0))

	require.NoError(t, handler.Handle(ctx, commands.NewDispatchPendingOrdersCommand()))
}

func TestDispatchPendingOrdersCommandHandler_Handle_ValidationError(t *testing.T) {
	handler := commands.NewDispatchPendingOrdersCommandHandler(commands.DispatchOrderCommandHandler{})

	err := handler.Handle(t.Context(), commands.DispatchPendingOrdersCommand{})

	require.ErrorIs(t, err, commands.ErrDispatchPendingOrdersCommandIsNotConstructed)
}

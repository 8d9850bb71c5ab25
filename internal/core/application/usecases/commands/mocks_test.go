package commands_test

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"time"

	"dispatch/internal/core/application/usecases/commands"
	"dispatch/internal/core/domain/model/assignment"
	"dispatch/internal/core/domain/model/courier"
	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/domain/model/order"
	"dispatch/internal/core/ports"
	"dispatch/internal/pkg/errs"

	"github.com/stretchr/testify/mock"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type MockOrderRepository struct{ mock.Mock }

func (m *MockOrderRepository) Add(ctx context.Context, o *order.Order) error {
	args := m.Called(ctx, o)
	return args.Error(0)
}

func (m *MockOrderRepository) Update(ctx context.Context, o *order.Order) error {
	args := m.Called(ctx, o)
	return args.Error(0)
}

func (m *MockOrderRepository) Get(ctx context.Context, id kernel.UUID) (*order.Order, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*order.Order), args.Error(1)
}

func (m *MockOrderRepository) GetAllInPlacedStatus(ctx context.Context) ([]*order.Order, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*order.Order), args.Error(1)
}

func (m *MockOrderRepository) GetAllUncompleted(ctx context.Context) ([]*order.Order, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*order.Order), args.Error(1)
}

func (m *MockOrderRepository) GetCurrentByCourier(ctx context.Context, courierID kernel.UUID) (*order.Order, error) {
	args := m.Called(ctx, courierID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*order.Order), args.Error(1)
}

type MockCourierRepository struct{ mock.Mock }

func (m *MockCourierRepository) Add(ctx context.Context, c *courier.Courier) error {
	args := m.Called(ctx, c)
	return args.Error(0)
}

func (m *MockCourierRepository) Update(ctx context.Context, c *courier.Courier) error {
	args := m.Called(ctx, c)
	return args.Error(0)
}

func (m *MockCourierRepository) Get(ctx context.Context, id kernel.UUID) (*courier.Courier, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*courier.Courier), args.Error(1)
}

func (m *MockCourierRepository) GetAllAvailable(ctx context.Context) ([]*courier.Courier, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*courier.Courier), args.Error(1)
}

type MockAssignmentRepository struct{ mock.Mock }

func (m *MockAssignmentRepository) Add(ctx context.Context, a *assignment.Assignment) error {
	args := m.Called(ctx, a)
	return args.Error(0)
}

func (m *MockAssignmentRepository) Update(ctx context.Context, a *assignment.Assignment) error {
	args := m.Called(ctx, a)
	return args.Error(0)
}

func (m *MockAssignmentRepository) Get(ctx context.Context, id kernel.UUID) (*assignment.Assignment, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*assignment.Assignment), args.Error(1)
}

func (m *MockAssignmentRepository) GetActiveByOrder(ctx context.Context, orderID kernel.UUID) (*assignment.Assignment, error) {
	args := m.Called(ctx, orderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*assignment.Assignment), args.Error(1)
}

func (m *MockAssignmentRepository) GetAllBroadcastedTo(ctx context.Context, courierID kernel.UUID) ([]*assignment.Assignment, error) {
	args := m.Called(ctx, courierID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*assignment.Assignment), args.Error(1)
}

func (m *MockAssignmentRepository) GetAllBroadcastedBefore(ctx context.Context, cutoff time.Time) ([]*assignment.Assignment, error) {
	args := m.Called(ctx, cutoff)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*assignment.Assignment), args.Error(1)
}

func (m *MockAssignmentRepository) Accept(ctx context.Context, id kernel.UUID, courierID kernel.UUID) (*assignment.Assignment, error) {
	args := m.Called(ctx, id, courierID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*assignment.Assignment), args.Error(1)
}

// MockUoW satisfies every UoW flavor the command handlers use.
type MockUoW struct{ mock.Mock }

func (m *MockUoW) Begin(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockUoW) Commit(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockUoW) Rollback(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockUoW) OrderRepository() ports.OrderRepository {
	args := m.Called()
	return args.Get(0).(ports.OrderRepository)
}

func (m *MockUoW) CourierRepository() ports.CourierRepository {
	args := m.Called()
	return args.Get(0).(ports.CourierRepository)
}

func (m *MockUoW) AssignmentRepository() ports.AssignmentRepository {
	args := m.Called()
	return args.Get(0).(ports.AssignmentRepository)
}

type MockUoWFactory struct{ mock.Mock }

func (m *MockUoWFactory) Create() commands.UoW {
	args := m.Called()
	return args.Get(0).(commands.UoW)
}

type MockOrderUoWFactory struct{ mock.Mock }

func (m *MockOrderUoWFactory) Create() commands.OrderUoW {
	args := m.Called()
	return args.Get(0).(commands.OrderUoW)
}

type MockCourierUoWFactory struct{ mock.Mock }

func (m *MockCourierUoWFactory) Create() commands.CourierUoW {
	args := m.Called()
	return args.Get(0).(commands.CourierUoW)
}

type MockAssignmentUoWFactory struct{ mock.Mock }

func (m *MockAssignmentUoWFactory) Create() commands.AssignmentUoW {
	args := m.Called()
	return args.Get(0).(commands.AssignmentUoW)
}

type MockEventPublisher struct{ mock.Mock }

func (m *MockEventPublisher) PublishToCourier(ctx context.Context, courierID kernel.UUID, event ports.Event) error {
	args := m.Called(ctx, courierID, event)
	return args.Error(0)
}

func (m *MockEventPublisher) PublishToOrder(ctx context.Context, orderID kernel.UUID, event ports.Event) error {
	args := m.Called(ctx, orderID, event)
	return args.Error(0)
}

type MockLocationStore struct{ mock.Mock }

func (m *MockLocationStore) Set(ctx context.Context, courierID kernel.UUID, location kernel.Location) error {
	args := m.Called(ctx, courierID, location)
	return args.Error(0)
}

func (m *MockLocationStore) Get(ctx context.Context, courierID kernel.UUID) (kernel.Location, error) {
	args := m.Called(ctx, courierID)
	return args.Get(0).(kernel.Location), args.Error(1)
}

func (m *MockLocationStore) GetAll(ctx context.Context) (map[kernel.UUID]kernel.Location, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[kernel.UUID]kernel.Location), args.Error(1)
}

type MockNotifier struct{ mock.Mock }

func (m *MockNotifier) SendDeliveryCode(ctx context.Context, recipientContact string, code string) error {
	args := m.Called(ctx, recipientContact, code)
	return args.Error(0)
}

// fakeAssignmentUoW backs the concurrency tests: a race needs a real
// conditional write, which mock expectations cannot provide.
type fakeAssignmentUoW struct {
	mu          sync.Mutex
	assignments map[kernel.UUID]*assignment.Assignment
	orders      map[kernel.UUID]*order.Order
	couriers    map[kernel.UUID]*courier.Courier
}

func newFakeAssignmentUoW() *fakeAssignmentUoW {
	return &fakeAssignmentUoW{
		assignments: make(map[kernel.UUID]*assignment.Assignment),
		orders:      make(map[kernel.UUID]*order.Order),
		couriers:    make(map[kernel.UUID]*courier.Courier),
	}
}

func (f *fakeAssignmentUoW) Create() commands.UoW { return f }

// Narrow factory views over the fake for handlers that take a smaller UoW.
type orderUoWFactory struct{ uow commands.OrderUoW }

func (f orderUoWFactory) Create() commands.OrderUoW { return f.uow }

type courierUoWFactory struct{ uow commands.CourierUoW }

func (f courierUoWFactory) Create() commands.CourierUoW { return f.uow }

type assignmentUoWFactory struct{ uow commands.AssignmentUoW }

func (f assignmentUoWFactory) Create() commands.AssignmentUoW { return f.uow }

func (f *fakeAssignmentUoW) Begin(context.Context) error    { return nil }
func (f *fakeAssignmentUoW) Commit(context.Context) error   { return nil }
func (f *fakeAssignmentUoW) Rollback(context.Context) error { return nil }

func (f *fakeAssignmentUoW) OrderRepository() ports.OrderRepository           { return (*fakeOrderRepo)(f) }
func (f *fakeAssignmentUoW) CourierRepository() ports.CourierRepository       { return (*fakeCourierRepo)(f) }
func (f *fakeAssignmentUoW) AssignmentRepository() ports.AssignmentRepository { return (*fakeAssignmentRepo)(f) }

type fakeOrderRepo fakeAssignmentUoW

func (f *fakeOrderRepo) Add(_ context.Context, o *order.Order) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.orders[o.ID()] = o
	return nil
}

func (f *fakeOrderRepo) Update(_ context.Context, o *order.Order) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.orders[o.ID()] = o
	return nil
}

func (f *fakeOrderRepo) Get(_ context.Context, id kernel.UUID) (*order.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	o, ok := f.orders[id]
	if !ok {
		return nil, errs.NewObjectNotFoundError("order", id)
	}
	return o, nil
}

func (f *fakeOrderRepo) GetAllInPlacedStatus(context.Context) ([]*order.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var placed []*order.Order
	for _, o := range f.orders {
		if o.Status() == order.Placed {
			placed = append(placed, o)
		}
	}
	return placed, nil
}

func (f *fakeOrderRepo) GetAllUncompleted(context.Context) ([]*order.Order, error) {
	return nil, nil
}

func (f *fakeOrderRepo) GetCurrentByCourier(_ context.Context, courierID kernel.UUID) (*order.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, o := range f.orders {
		if o.Courier() != nil && o.Courier().IsEqual(courierID) && !o.Status().IsTerminal() {
			return o, nil
		}
	}
	return nil, errs.NewObjectNotFoundError("order", courierID)
}

type fakeCourierRepo fakeAssignmentUoW

func (f *fakeCourierRepo) Add(_ context.Context, c *courier.Courier) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.couriers[c.ID()] = c
	return nil
}

func (f *fakeCourierRepo) Update(_ context.Context, c *courier.Courier) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.couriers[c.ID()] = c
	return nil
}

func (f *fakeCourierRepo) Get(_ context.Context, id kernel.UUID) (*courier.Courier, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	c, ok := f.couriers[id]
	if !ok {
		return nil, errs.NewObjectNotFoundError("courier", id)
	}
	return c, nil
}

func (f *fakeCourierRepo) GetAllAvailable(context.Context) ([]*courier.Courier, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var available []*courier.Courier
	for _, c := range f.couriers {
		if c.IsAvailable() {
			available = append(available, c)
		}
	}
	return available, nil
}

type fakeAssignmentRepo fakeAssignmentUoW

func (f *fakeAssignmentRepo) Add(_ context.Context, a *assignment.Assignment) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.assignments[a.ID()] = a
	return nil
}

func (f *fakeAssignmentRepo) Update(_ context.Context, a *assignment.Assignment) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.assignments[a.ID()] = a
	return nil
}

func (f *fakeAssignmentRepo) Get(_ context.Context, id kernel.UUID) (*assignment.Assignment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	a, ok := f.assignments[id]
	if !ok {
		return nil, errs.NewObjectNotFoundError("assignment", id)
	}
	return a, nil
}

func (f *fakeAssignmentRepo) GetActiveByOrder(_ context.Context, orderID kernel.UUID) (*assignment.Assignment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, a := range f.assignments {
		if a.OrderID().IsEqual(orderID) && !a.Status().IsTerminal() {
			return a, nil
		}
	}
	return nil, errs.NewObjectNotFoundError("assignment", orderID)
}

func (f *fakeAssignmentRepo) GetAllBroadcastedTo(_ context.Context, courierID kernel.UUID) ([]*assignment.Assignment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var offers []*assignment.Assignment
	for _, a := range f.assignments {
		if a.Status() == assignment.Broadcasted && a.IsCandidate(courierID) {
			offers = append(offers, a)
		}
	}
	return offers, nil
}

func (f *fakeAssignmentRepo) GetAllBroadcastedBefore(_ context.Context, cutoff time.Time) ([]*assignment.Assignment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var overdue []*assignment.Assignment
	for _, a := range f.assignments {
		if a.Status() == assignment.Broadcasted && a.CreatedAt().Before(cutoff) {
			overdue = append(overdue, a)
		}
	}
	return overdue, nil
}

// Accept performs the conditional write under the store lock, mirroring the
// storage-level compare-and-swap: first caller in wins.
func (f *fakeAssignmentRepo) Accept(_ context.Context, id kernel.UUID, courierID kernel.UUID) (*assignment.Assignment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	a, ok := f.assignments[id]
	if !ok {
		return nil, errs.NewObjectNotFoundError("assignment", id)
	}

	if err := a.Accept(courierID); err != nil {
		return nil, err
	}

	return a, nil
}

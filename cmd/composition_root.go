package cmd

import (
	"context"
	"log/slog"

	"dispatch/internal/adapters/in/ws"
	"dispatch/internal/adapters/out/notifier"
	"dispatch/internal/adapters/out/postgres"
	"dispatch/internal/adapters/out/postgres/orderrepo"
	"dispatch/internal/core/application/usecases/commands"
	"dispatch/internal/core/application/usecases/queries"
	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/domain/services"
	"dispatch/internal/core/ports"
	"dispatch/internal/pkg/errs"
	"dispatch/internal/pkg/locks"

	"gorm.io/gorm"
)

type CompositionRoot struct {
	config     Config
	gormDB     *gorm.DB
	uowFactory postgres.GormUnitOfWorkFactory
	logger     *slog.Logger

	locationStore ports.LocationStore
	hub           *ws.Hub
	notifier      ports.Notifier
	codeLocks     *locks.KeyedMutex
	selector      services.CandidateSelector
	reporter      *lazyLocationReporter
}

func NewCompositionRoot(
	config Config,
	gormDB *gorm.DB,
	locationStore ports.LocationStore,
	logger *slog.Logger,
) *CompositionRoot {
	root := &CompositionRoot{
		config:        config,
		gormDB:        gormDB,
		uowFactory:    *postgres.NewGormUnitOfWorkFactory(gormDB),
		logger:        logger,
		locationStore: locationStore,
		notifier:      notifier.NewLogNotifier(logger),
		codeLocks:     locks.NewKeyedMutex(),
		selector:      services.NewCandidateSelector(config.ServiceRadiusKm),
		reporter:      &lazyLocationReporter{},
	}

	// The hub publishes events for the location handler and the location
	// handler feeds inbound hub reports, hence the late binding.
	root.hub = ws.NewHub(root.reporter, chatDirectory{
		orders: orderrepo.NewGormOrderRepository(gormDB, nopTracker{}),
	}, logger)

	handler := root.CreateReportLocationCommandHandler()
	root.reporter.handler = &handler

	return root
}

// Hub returns the realtime session hub, which doubles as the event publisher.
func (c *CompositionRoot) Hub() *ws.Hub {
	return c.hub
}

func (c *CompositionRoot) CreateCreateCourierCommandHandler() commands.CreateCourierCommandHandler {
	var f commands.CourierUoWFactory = FuncCourierUoWFactory(func() commands.CourierUoW {
		return c.uowFactory.Create()
	})
	return commands.NewCreateCourierCommandHandler(f)
}

func (c *CompositionRoot) CreateCreateOrderCommandHandler() commands.CreateOrderCommandHandler {
	var f commands.OrderUoWFactory = FuncOrderUoWFactory(func() commands.OrderUoW {
		return c.uowFactory.Create()
	})
	return commands.NewCreateOrderCommandHandler(f)
}

func (c *CompositionRoot) CreateDispatchOrderCommandHandler() commands.DispatchOrderCommandHandler {
	var f commands.UoWFactory = FuncUoWFactory(func() commands.UoW {
		return c.uowFactory.Create()
	})
	return commands.NewDispatchOrderCommandHandler(f, c.selector, c.locationStore, c.hub)
}

func (c *CompositionRoot) CreateDispatchPendingOrdersCommandHandler() commands.DispatchPendingOrdersCommandHandler {
	return commands.NewDispatchPendingOrdersCommandHandler(c.CreateDispatchOrderCommandHandler())
}

func (c *CompositionRoot) CreateAcceptAssignmentCommandHandler() commands.AcceptAssignmentCommandHandler {
	var f commands.UoWFactory = FuncUoWFactory(func() commands.UoW {
		return c.uowFactory.Create()
	})
	return commands.NewAcceptAssignmentCommandHandler(f, c.hub)
}

func (c *CompositionRoot) CreateDeclineAssignmentCommandHandler() commands.DeclineAssignmentCommandHandler {
	var f commands.AssignmentUoWFactory = FuncAssignmentUoWFactory(func() commands.AssignmentUoW {
		return c.uowFactory.Create()
	})
	return commands.NewDeclineAssignmentCommandHandler(f)
}

func (c *CompositionRoot) CreateExpireAssignmentsCommandHandler() commands.ExpireAssignmentsCommandHandler {
	var f commands.AssignmentUoWFactory = FuncAssignmentUoWFactory(func() commands.AssignmentUoW {
		return c.uowFactory.Create()
	})
	return commands.NewExpireAssignmentsCommandHandler(f, c.hub, c.config.AssignmentTTL)
}

func (c *CompositionRoot) CreateSendDeliveryCodeCommandHandler() commands.SendDeliveryCodeCommandHandler {
	var f commands.OrderUoWFactory = FuncOrderUoWFactory(func() commands.OrderUoW {
		return c.uowFactory.Create()
	})
	return commands.NewSendDeliveryCodeCommandHandler(f, c.notifier, c.codeLocks, c.logger)
}

func (c *CompositionRoot) CreateVerifyDeliveryCodeCommandHandler() commands.VerifyDeliveryCodeCommandHandler {
	var f commands.UoWFactory = FuncUoWFactory(func() commands.UoW {
		return c.uowFactory.Create()
	})
	return commands.NewVerifyDeliveryCodeCommandHandler(f, c.codeLocks)
}

func (c *CompositionRoot) CreateReportLocationCommandHandler() commands.ReportLocationCommandHandler {
	var f commands.UoWFactory = FuncUoWFactory(func() commands.UoW {
		return c.uowFactory.Create()
	})
	return commands.NewReportLocationCommandHandler(f, c.locationStore, c.hub)
}

func (c *CompositionRoot) CreateGetAllCouriersQueryHandler() queries.GetAllCouriersQueryHandler {
	return queries.NewGetAllCouriersQueryHandler(c.gormDB)
}

func (c *CompositionRoot) CreateGetUncompletedOrdersQueryHandler() queries.GetUncompletedOrdersQueryHandler {
	return queries.NewGetUncompletedOrdersQueryHandler(c.gormDB)
}

func (c *CompositionRoot) CreateGetCourierAssignmentsQueryHandler() queries.GetCourierAssignmentsQueryHandler {
	return queries.NewGetCourierAssignmentsQueryHandler(c.gormDB)
}

func (c *CompositionRoot) CreateGetCurrentOrderQueryHandler() queries.GetCurrentOrderQueryHandler {
	return queries.NewGetCurrentOrderQueryHandler(c.gormDB)
}

type FuncCourierUoWFactory func() commands.CourierUoW

func (f FuncCourierUoWFactory) Create() commands.CourierUoW {
	return f()
}

type FuncOrderUoWFactory func() commands.OrderUoW

func (f FuncOrderUoWFactory) Create() commands.OrderUoW {
	return f()
}

type FuncAssignmentUoWFactory func() commands.AssignmentUoW

func (f FuncAssignmentUoWFactory) Create() commands.AssignmentUoW {
	return f()
}

type FuncUoWFactory func() commands.UoW

func (f FuncUoWFactory) Create() commands.UoW {
	return f()
}

// lazyLocationReporter breaks the hub/location-handler construction cycle.
type lazyLocationReporter struct {
	handler *commands.ReportLocationCommandHandler
}

func (l *lazyLocationReporter) Handle(ctx context.Context, cmd commands.ReportLocationCommand) error {
	return l.handler.Handle(ctx, cmd)
}

// nopTracker satisfies the repositories' aggregate tracker outside a unit of
// work.
type nopTracker struct{}

func (nopTracker) TrackAggregate(kernel.UUID, any) {}

// chatDirectory resolves courier/order pairings for the chat relay straight
// from the orders table.
type chatDirectory struct {
	orders *orderrepo.GormOrderRepository
}

func (d chatDirectory) ActiveOrderFor(ctx context.Context, courierID kernel.UUID) (kernel.UUID, error) {
	current, err := d.orders.GetCurrentByCourier(ctx, courierID)
	if err != nil {
		return kernel.UUID{}, err
	}
	return current.ID(), nil
}

func (d chatDirectory) CourierFor(ctx context.Context, orderID kernel.UUID) (kernel.UUID, error) {
	ord, err := d.orders.Get(ctx, orderID)
	if err != nil {
		return kernel.UUID{}, err
	}
	if ord.Courier() == nil {
		return kernel.UUID{}, errs.NewObjectNotFoundError("courier", "for order "+orderID.String())
	}
	return *ord.Courier(), nil
}

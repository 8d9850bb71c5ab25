package http

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"dispatch/internal/core/application/usecases/commands"
	"dispatch/internal/core/application/usecases/queries"
	"dispatch/internal/core/domain/model/assignment"
	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/pkg/errs"

	"github.com/labstack/echo/v4"
)

// Server exposes the dispatch use cases over HTTP.
// It coordinates between HTTP handlers and application use cases.
type Server struct {
	// Command handlers
	createCourierHandler     commands.CreateCourierCommandHandler
	createOrderHandler       commands.CreateOrderCommandHandler
	dispatchOrderHandler     commands.DispatchOrderCommandHandler
	acceptAssignmentHandler  commands.AcceptAssignmentCommandHandler
	declineAssignmentHandler commands.DeclineAssignmentCommandHandler
	sendDeliveryCodeHandler  commands.SendDeliveryCodeCommandHandler
	verifyDeliveryHandler    commands.VerifyDeliveryCodeCommandHandler
	reportLocationHandler    commands.ReportLocationCommandHandler

	// Query handlers
	getAllCouriersHandler        queries.GetAllCouriersQueryHandler
	getUncompletedOrdersHandler  queries.GetUncompletedOrdersQueryHandler
	getCourierAssignmentsHandler queries.GetCourierAssignmentsQueryHandler
	getCurrentOrderHandler       queries.GetCurrentOrderQueryHandler

	logger *slog.Logger
}

// NewServer creates a new HTTP server with the required command and query handlers.
func NewServer(
	createCourierHandler commands.CreateCourierCommandHandler,
	createOrderHandler commands.CreateOrderCommandHandler,
	dispatchOrderHandler commands.DispatchOrderCommandHandler,
	acceptAssignmentHandler commands.AcceptAssignmentCommandHandler,
	declineAssignmentHandler commands.DeclineAssignmentCommandHandler,
	sendDeliveryCodeHandler commands.SendDeliveryCodeCommandHandler,
	verifyDeliveryHandler commands.VerifyDeliveryCodeCommandHandler,
	reportLocationHandler commands.ReportLocationCommandHandler,
	getAllCouriersHandler queries.GetAllCouriersQueryHandler,
	getUncompletedOrdersHandler queries.GetUncompletedOrdersQueryHandler,
	getCourierAssignmentsHandler queries.GetCourierAssignmentsQueryHandler,
	getCurrentOrderHandler queries.GetCurrentOrderQueryHandler,
	logger *slog.Logger,
) *Server {
	return &Server{
		createCourierHandler:         createCourierHandler,
		createOrderHandler:           createOrderHandler,
		dispatchOrderHandler:         dispatchOrderHandler,
		acceptAssignmentHandler:      acceptAssignmentHandler,
		declineAssignmentHandler:     declineAssignmentHandler,
		sendDeliveryCodeHandler:      sendDeliveryCodeHandler,
		verifyDeliveryHandler:        verifyDeliveryHandler,
		reportLocationHandler:        reportLocationHandler,
		getAllCouriersHandler:        getAllCouriersHandler,
		getUncompletedOrdersHandler:  getUncompletedOrdersHandler,
		getCourierAssignmentsHandler: getCourierAssignmentsHandler,
		getCurrentOrderHandler:       getCurrentOrderHandler,
		logger:                       logger.With("component", "http-server"),
	}
}

// RegisterRoutes attaches all dispatch endpoints under /api/v1.
func (s *Server) RegisterRoutes(e *echo.Echo) {
	api := e.Group("/api/v1")

	api.POST("/orders", s.CreateOrder)
	api.GET("/orders/active", s.GetOrders)
	api.POST("/orders/:orderId/delivery-code", s.SendDeliveryCode)
	api.POST("/orders/:orderId/delivery-code/verify", s.VerifyDeliveryCode)

	api.POST("/couriers", s.CreateCourier)
	api.GET("/couriers", s.GetCouriers)
	api.GET("/couriers/:courierId/assignments", s.GetCourierAssignments)
	api.GET("/couriers/:courierId/current-order", s.GetCurrentOrder)
	api.POST("/couriers/:courierId/location", s.ReportLocation)

	api.POST("/assignments/:assignmentId/accept", s.AcceptAssignment)
	api.POST("/assignments/:assignmentId/decline", s.DeclineAssignment)
}

// CreateOrder handles POST /api/v1/orders - registers a ready-to-ship order.
func (s *Server) CreateOrder(ctx echo.Context) error {
	var newOrder NewOrder
	if err := ctx.Bind(&newOrder); err != nil {
		return badRequest(ctx, "Invalid request body")
	}

	location, err := kernel.NewLocation(newOrder.Location.Latitude, newOrder.Location.Longitude)
	if err != nil {
		return badRequest(ctx, "Invalid order data: "+err.Error())
	}

	orderID := kernel.NewUUID()
	cmd, err := commands.NewCreateOrderCommand(orderID, newOrder.Street, location, newOrder.RecipientContact)
	if err != nil {
		return badRequest(ctx, "Invalid order data: "+err.Error())
	}

	if handleErr := s.createOrderHandler.Handle(ctx.Request().Context(), cmd); handleErr != nil {
		return respondError(ctx, handleErr)
	}

	s.broadcastOrder(ctx.Request().Context(), orderID)

	return ctx.JSON(http.StatusCreated, OrderCreated{ID: orderID.String()})
}

// broadcastOrder fans the freshly created order out to the courier pool. The
// order is already committed, so broadcast failures never fail the request;
// an order left in placed is picked up by the retry sweep.
func (s *Server) broadcastOrder(ctx context.Context, orderID kernel.UUID) {
	cmd, err := commands.NewDispatchOrderCommand(orderID)
	if err != nil {
		s.logger.Error("broadcast skipped", "order", orderID.String(), "error", err)
		return
	}

	if _, err := s.dispatchOrderHandler.Handle(ctx, cmd); err != nil &&
		!errors.Is(err, commands.ErrNoCouriersAvailable) {
		s.logger.Error("broadcast failed", "order", orderID.String(), "error", err)
	}
}

// GetOrders handles GET /api/v1/orders/active - retrieves all uncompleted orders.
func (s *Server) GetOrders(ctx echo.Context) error {
	query := queries.NewGetUncompletedOrdersQuery()

	orders, err := s.getUncompletedOrdersHandler.Handle(ctx.Request().Context(), query)
	if err != nil {
		return respondError(ctx, err)
	}

	response := make([]Order, len(orders))
	for i, o := range orders {
		response[i] = Order{
			ID:     o.ID.String(),
			Street: o.Street,
			Location: Location{
				Latitude:  o.Location.Latitude(),
				Longitude: o.Location.Longitude(),
			},
			Status: o.Status,
		}
		if o.CourierID != nil {
			courierID := o.CourierID.String()
			response[i].CourierID = &courierID
		}
	}

	return ctx.JSON(http.StatusOK, response)
}

// CreateCourier handles POST /api/v1/couriers - registers a new courier.
func (s *Server) CreateCourier(ctx echo.Context) error {
	var newCourier NewCourier
	if err := ctx.Bind(&newCourier); err != nil {
		return badRequest(ctx, "Invalid request body")
	}

	cmd, err := commands.NewCreateCourierCommand(newCourier.Name)
	if err != nil {
		return badRequest(ctx, "Invalid courier data: "+err.Error())
	}

	if handleErr := s.createCourierHandler.Handle(ctx.Request().Context(), cmd); handleErr != nil {
		return respondError(ctx, handleErr)
	}

	return ctx.NoContent(http.StatusCreated)
}

// GetCouriers handles GET /api/v1/couriers - retrieves all couriers.
func (s *Server) GetCouriers(ctx echo.Context) error {
	query := queries.NewGetAllCouriersQuery()

	couriers, err := s.getAllCouriersHandler.Handle(ctx.Request().Context(), query)
	if err != nil {
		return respondError(ctx, err)
	}

	response := make([]Courier, len(couriers))
	for i, c := range couriers {
		response[i] = Courier{
			ID:        c.ID.String(),
			Name:      c.Name,
			Available: c.Available,
		}
		if c.Location != nil {
			response[i].Location = &Location{
				Latitude:  c.Location.Latitude(),
				Longitude: c.Location.Longitude(),
			}
		}
	}

	return ctx.JSON(http.StatusOK, response)
}

// GetCourierAssignments handles GET /api/v1/couriers/:courierId/assignments -
// retrieves the courier's open assignment offers.
func (s *Server) GetCourierAssignments(ctx echo.Context) error {
	courierID, err := kernel.UUIDFromString(ctx.Param("courierId"))
	if err != nil {
		return badRequest(ctx, "Invalid courier id")
	}

	query, err := queries.NewGetCourierAssignmentsQuery(courierID)
	if err != nil {
		return badRequest(ctx, err.Error())
	}

	offers, err := s.getCourierAssignmentsHandler.Handle(ctx.Request().Context(), query)
	if err != nil {
		return respondError(ctx, err)
	}

	response := make([]AssignmentOffer, len(offers))
	for i, offer := range offers {
		response[i] = AssignmentOffer{
			AssignmentID: offer.AssignmentID.String(),
			OrderID:      offer.OrderID.String(),
			Street:       offer.Street,
			CreatedAt:    offer.CreatedAt,
		}
	}

	return ctx.JSON(http.StatusOK, response)
}

// GetCurrentOrder handles GET /api/v1/couriers/:courierId/current-order -
// retrieves the courier's active delivery.
func (s *Server) GetCurrentOrder(ctx echo.Context) error {
	courierID, err := kernel.UUIDFromString(ctx.Param("courierId"))
	if err != nil {
		return badRequest(ctx, "Invalid courier id")
	}

	query, err := queries.NewGetCurrentOrderQuery(courierID)
	if err != nil {
		return badRequest(ctx, err.Error())
	}

	current, err := s.getCurrentOrderHandler.Handle(ctx.Request().Context(), query)
	if err != nil {
		return respondError(ctx, err)
	}

	return ctx.JSON(http.StatusOK, CurrentOrder{
		ID:     current.ID.String(),
		Street: current.Street,
		Location: Location{
			Latitude:  current.Location.Latitude(),
			Longitude: current.Location.Longitude(),
		},
		Status:     current.Status,
		CodeIssued: current.CodeIssued,
	})
}

// ReportLocation handles POST /api/v1/couriers/:courierId/location - records
// the courier's current position.
func (s *Server) ReportLocation(ctx echo.Context) error {
	courierID, err := kernel.UUIDFromString(ctx.Param("courierId"))
	if err != nil {
		return badRequest(ctx, "Invalid courier id")
	}

	var body Location
	if err := ctx.Bind(&body); err != nil {
		return badRequest(ctx, "Invalid request body")
	}

	location, err := kernel.NewLocation(body.Latitude, body.Longitude)
	if err != nil {
		return badRequest(ctx, "Invalid location: "+err.Error())
	}

	cmd, err := commands.NewReportLocationCommand(courierID, location)
	if err != nil {
		return badRequest(ctx, err.Error())
	}

	if handleErr := s.reportLocationHandler.Handle(ctx.Request().Context(), cmd); handleErr != nil {
		return respondError(ctx, handleErr)
	}

	return ctx.NoContent(http.StatusNoContent)
}

// AcceptAssignment handles POST /api/v1/assignments/:assignmentId/accept -
// the courier's race-to-accept claim on a broadcast offer.
func (s *Server) AcceptAssignment(ctx echo.Context) error {
	assignmentID, err := kernel.UUIDFromString(ctx.Param("assignmentId"))
	if err != nil {
		return badRequest(ctx, "Invalid assignment id")
	}

	var action CourierAction
	if err := ctx.Bind(&action); err != nil {
		return badRequest(ctx, "Invalid request body")
	}

	courierID, err := kernel.UUIDFromString(action.CourierID)
	if err != nil {
		return badRequest(ctx, "Invalid courier id")
	}

	cmd, err := commands.NewAcceptAssignmentCommand(assignmentID, courierID)
	if err != nil {
		return badRequest(ctx, err.Error())
	}

	if handleErr := s.acceptAssignmentHandler.Handle(ctx.Request().Context(), cmd); handleErr != nil {
		return respondError(ctx, handleErr)
	}

	return ctx.NoContent(http.StatusNoContent)
}

// DeclineAssignment handles POST /api/v1/assignments/:assignmentId/decline -
// the courier's refusal of a broadcast offer.
func (s *Server) DeclineAssignment(ctx echo.Context) error {
	assignmentID, err := kernel.UUIDFromString(ctx.Param("assignmentId"))
	if err != nil {
		return badRequest(ctx, "Invalid assignment id")
	}

	var action CourierAction
	if err := ctx.Bind(&action); err != nil {
		return badRequest(ctx, "Invalid request body")
	}

	courierID, err := kernel.UUIDFromString(action.CourierID)
	if err != nil {
		return badRequest(ctx, "Invalid courier id")
	}

	cmd, err := commands.NewDeclineAssignmentCommand(assignmentID, courierID)
	if err != nil {
		return badRequest(ctx, err.Error())
	}

	if handleErr := s.declineAssignmentHandler.Handle(ctx.Request().Context(), cmd); handleErr != nil {
		return respondError(ctx, handleErr)
	}

	return ctx.NoContent(http.StatusNoContent)
}

// SendDeliveryCode handles POST /api/v1/orders/:orderId/delivery-code - issues
// a fresh delivery code and notifies the recipient.
func (s *Server) SendDeliveryCode(ctx echo.Context) error {
	orderID, err := kernel.UUIDFromString(ctx.Param("orderId"))
	if err != nil {
		return badRequest(ctx, "Invalid order id")
	}

	cmd, err := commands.NewSendDeliveryCodeCommand(orderID)
	if err != nil {
		return badRequest(ctx, err.Error())
	}

	if handleErr := s.sendDeliveryCodeHandler.Handle(ctx.Request().Context(), cmd); handleErr != nil {
		return respondError(ctx, handleErr)
	}

	return ctx.NoContent(http.StatusNoContent)
}

// VerifyDeliveryCode handles POST /api/v1/orders/:orderId/delivery-code/verify -
// checks the submitted code and finalizes the delivery on a match.
func (s *Server) VerifyDeliveryCode(ctx echo.Context) error {
	orderID, err := kernel.UUIDFromString(ctx.Param("orderId"))
	if err != nil {
		return badRequest(ctx, "Invalid order id")
	}

	var body VerifyCode
	if err := ctx.Bind(&body); err != nil {
		return badRequest(ctx, "Invalid request body")
	}

	cmd, err := commands.NewVerifyDeliveryCodeCommand(orderID, body.Code)
	if err != nil {
		return badRequest(ctx, err.Error())
	}

	if handleErr := s.verifyDeliveryHandler.Handle(ctx.Request().Context(), cmd); handleErr != nil {
		return respondError(ctx, handleErr)
	}

	return ctx.NoContent(http.StatusNoContent)
}

func badRequest(ctx echo.Context, message string) error {
	return ctx.JSON(http.StatusBadRequest, Error{
		Code:    http.StatusBadRequest,
		Message: message,
	})
}

// respondError translates a use case error into an HTTP status: missing
// objects map to 404, state conflicts to 409, everything else to 500.
func respondError(ctx echo.Context, err error) error {
	status := statusOf(err)
	return ctx.JSON(status, Error{
		Code:    status,
		Message: err.Error(),
	})
}

func statusOf(err error) int {
	switch {
	case errors.Is(err, errs.ErrObjectNotFound):
		return http.StatusNotFound
	case errors.Is(err, assignment.ErrAlreadyTaken),
		errors.Is(err, assignment.ErrStaleAssignment),
		errors.Is(err, assignment.ErrNotCandidate),
		errors.Is(err, commands.ErrNoActiveCode),
		errors.Is(err, commands.ErrCodeMismatch),
		errors.Is(err, commands.ErrOrderAlreadyDispatched),
		errors.Is(err, commands.ErrOrderIsNotDispatchable):
		return http.StatusConflict
	case errors.Is(err, errs.ErrValueIsInvalid),
		errors.Is(err, errs.ErrValueIsRequired),
		errors.Is(err, errs.ErrValueIsOutOfRange):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

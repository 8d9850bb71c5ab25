package ws

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"

	"dispatch/internal/core/application/usecases/commands"
	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/ports"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
)

// LocationReporter consumes courier position reports arriving over the
// realtime channel.
type LocationReporter interface {
	Handle(ctx context.Context, command commands.ReportLocationCommand) error
}

// ChatDirectory resolves the courier/order pairing of an active delivery so
// chat messages can cross between the two session kinds.
type ChatDirectory interface {
	// ActiveOrderFor returns the order the courier is currently delivering.
	ActiveOrderFor(ctx context.Context, courierID kernel.UUID) (kernel.UUID, error)

	// CourierFor returns the courier bound to the order.
	CourierFor(ctx context.Context, orderID kernel.UUID) (kernel.UUID, error)
}

// Hub owns every live realtime session and implements ports.EventPublisher.
// Sessions are registered on connect and removed on disconnect; each session
// is bound to exactly one courier id or one observed order id. Delivery is
// best effort: a session whose outbound queue is full is dropped rather than
// blocked on.
type Hub struct {
	upgrader  websocket.Upgrader
	logger    *slog.Logger
	reporter  LocationReporter
	directory ChatDirectory

	mu        sync.RWMutex
	byCourier map[kernel.UUID]map[*session]struct{}
	byOrder   map[kernel.UUID]map[*session]struct{}
}

// NewHub creates a hub with no connected sessions.
func NewHub(reporter LocationReporter, directory ChatDirectory, logger *slog.Logger) *Hub {
	return &Hub{
		upgrader: websocket.Upgrader{
			// Cross-origin access control is handled by the edge proxy.
			CheckOrigin: func(*http.Request) bool { return true },
		},
		logger:    logger.With("component", "ws-hub"),
		reporter:  reporter,
		directory: directory,
		byCourier: make(map[kernel.UUID]map[*session]struct{}),
		byOrder:   make(map[kernel.UUID]map[*session]struct{}),
	}
}

// Handle upgrades GET /ws to a websocket session. The caller identifies as a
// courier via ?courierId= or as an order observer via ?orderId=, exactly one
// of the two.
func (h *Hub) Handle(ctx echo.Context) error {
	identity, err := identityFromRequest(ctx)
	if err != nil {
		return ctx.JSON(http.StatusBadRequest, map[string]string{"message": err.Error()})
	}

	conn, err := h.upgrader.Upgrade(ctx.Response(), ctx.Request(), nil)
	if err != nil {
		return err
	}

	s := newSession(h, conn, identity)
	h.register(s)

	go s.writePump()
	s.readPump(ctx.Request().Context())
	return nil
}

func identityFromRequest(ctx echo.Context) (identity, error) {
	courierParam := ctx.QueryParam("courierId")
	orderParam := ctx.QueryParam("orderId")

	switch {
	case courierParam != "" && orderParam != "":
		return identity{}, errAmbiguousIdentity
	case courierParam != "":
		id, err := kernel.UUIDFromString(courierParam)
		if err != nil {
			return identity{}, err
		}
		return identity{kind: courierSession, id: id}, nil
	case orderParam != "":
		id, err := kernel.UUIDFromString(orderParam)
		if err != nil {
			return identity{}, err
		}
		return identity{kind: observerSession, id: id}, nil
	default:
		return identity{}, errMissingIdentity
	}
}

// PublishToCourier delivers the event to the courier's live sessions.
// Couriers without a session silently miss the event.
func (h *Hub) PublishToCourier(_ context.Context, courierID kernel.UUID, event ports.Event) error {
	payload, err := encodeEvent(event)
	if err != nil {
		return err
	}

	h.mu.RLock()
	sessions := snapshot(h.byCourier[courierID])
	h.mu.RUnlock()

	h.deliver(sessions, payload)
	return nil
}

// PublishToOrder delivers the event to every observer session watching the
// order.
func (h *Hub) PublishToOrder(_ context.Context, orderID kernel.UUID, event ports.Event) error {
	payload, err := encodeEvent(event)
	if err != nil {
		return err
	}

	h.mu.RLock()
	sessions := snapshot(h.byOrder[orderID])
	h.mu.RUnlock()

	h.deliver(sessions, payload)
	return nil
}

func (h *Hub) deliver(sessions []*session, payload []byte) {
	for _, s := range sessions {
		if !s.enqueue(payload) {
			h.logger.Warn("dropping slow session", "session", s.identity.id.String())
			h.unregister(s)
			s.close()
		}
	}
}

func snapshot(set map[*session]struct{}) []*session {
	sessions := make([]*session, 0, len(set))
	for s := range set {
		sessions = append(sessions, s)
	}
	return sessions
}

func (h *Hub) register(s *session) {
	h.mu.Lock()
	defer h.mu.Unlock()

	registry := h.registryFor(s)
	if registry[s.identity.id] == nil {
		registry[s.identity.id] = make(map[*session]struct{})
	}
	registry[s.identity.id][s] = struct{}{}
}

func (h *Hub) unregister(s *session) {
	h.mu.Lock()
	defer h.mu.Unlock()

	registry := h.registryFor(s)
	if set, ok := registry[s.identity.id]; ok {
		delete(set, s)
		if len(set) == 0 {
			delete(registry, s.identity.id)
		}
	}
}

func (h *Hub) registryFor(s *session) map[kernel.UUID]map[*session]struct{} {
	if s.identity.kind == courierSession {
		return h.byCourier
	}
	return h.byOrder
}

// handleLocationReport processes an inbound update-location frame. Only
// courier sessions may report, and only for themselves.
func (h *Hub) handleLocationReport(ctx context.Context, s *session, payload json.RawMessage) {
	if s.identity.kind != courierSession {
		h.logger.Warn("location report from non-courier session ignored")
		return
	}

	var report locationReportPayload
	if err := json.Unmarshal(payload, &report); err != nil {
		h.logger.Warn("malformed location report", "error", err)
		return
	}

	if report.UserID != "" && report.UserID != s.identity.id.String() {
		h.logger.Warn("location report identity mismatch",
			"session", s.identity.id.String(), "claimed", report.UserID)
		return
	}

	location, err := kernel.NewLocation(report.Latitude, report.Longitude)
	if err != nil {
		h.logger.Warn("invalid reported location", "error", err)
		return
	}

	cmd, err := commands.NewReportLocationCommand(s.identity.id, location)
	if err != nil {
		h.logger.Warn("invalid location report", "error", err)
		return
	}

	if err := h.reporter.Handle(ctx, cmd); err != nil {
		h.logger.Error("location report failed", "error", err)
	}
}

// handleChatMessage relays an inbound chat frame to the other side of the
// delivery. Relay is best effort and nothing is persisted.
func (h *Hub) handleChatMessage(ctx context.Context, s *session, payload json.RawMessage) {
	var message chatMessagePayload
	if err := json.Unmarshal(payload, &message); err != nil {
		h.logger.Warn("malformed chat message", "error", err)
		return
	}

	switch s.identity.kind {
	case courierSession:
		orderID, err := h.directory.ActiveOrderFor(ctx, s.identity.id)
		if err != nil {
			h.logger.Warn("chat from courier without active delivery dropped",
				"courier", s.identity.id.String())
			return
		}
		_ = h.PublishToOrder(ctx, orderID, ports.Event{
			Name: ports.EventChatMessage,
			Payload: ports.ChatMessagePayload{
				OrderID: orderID.String(),
				Sender:  "courier",
				Text:    message.Text,
			},
		})

	case observerSession:
		courierID, err := h.directory.CourierFor(ctx, s.identity.id)
		if err != nil {
			h.logger.Warn("chat for order without courier dropped",
				"order", s.identity.id.String())
			return
		}
		_ = h.PublishToCourier(ctx, courierID, ports.Event{
			Name: ports.EventChatMessage,
			Payload: ports.ChatMessagePayload{
				OrderID: s.identity.id.String(),
				Sender:  "recipient",
				Text:    message.Text,
			},
		})
	}
}

package ws

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/ports"

	"github.com/gorilla/websocket"
)

var (
	errMissingIdentity   = errors.New("courierId or orderId query parameter is required")
	errAmbiguousIdentity = errors.New("a session binds to either a courier or an order, not both")
)

const (
	// outboundQueueSize bounds the per-session backlog before the session is
	// considered too slow and dropped.
	outboundQueueSize = 16

	writeTimeout = 10 * time.Second
)

type sessionKind int

const (
	courierSession sessionKind = iota
	observerSession
)

type identity struct {
	kind sessionKind
	id   kernel.UUID
}

// frame is the wire envelope of every message in both directions.
type frame struct {
	Event   string          `json:"event"`
	Payload json.RawMessage `json:"payload"`
}

type outboundFrame struct {
	Event   string `json:"event"`
	Payload any    `json:"payload"`
}

type locationReportPayload struct {
	UserID    string  `json:"userId,omitempty"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

type chatMessagePayload struct {
	Text string `json:"text"`
}

func encodeEvent(event ports.Event) ([]byte, error) {
	return json.Marshal(outboundFrame{Event: event.Name, Payload: event.Payload})
}

// session is one live websocket connection bound to a courier or an observed
// order.
type session struct {
	hub      *Hub
	conn     *websocket.Conn
	identity identity

	// mu guards closed and the send on outbound: publishers hold session
	// pointers snapshotted before an unregister, so the channel may only be
	// closed while no send is in flight.
	mu       sync.Mutex
	closed   bool
	outbound chan []byte
}

func newSession(hub *Hub, conn *websocket.Conn, id identity) *session {
	return &session{
		hub:      hub,
		conn:     conn,
		identity: id,
		outbound: make(chan []byte, outboundQueueSize),
	}
}

// enqueue hands the payload to the write pump. Reports false when the queue
// is full or the session is closed.
func (s *session) enqueue(payload []byte) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return false
	}

	select {
	case s.outbound <- payload:
		return true
	default:
		return false
	}
}

func (s *session) close() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return
	}
	s.closed = true
	close(s.outbound)
}

// readPump consumes inbound frames until the connection drops, then removes
// the session from the hub.
func (s *session) readPump(ctx context.Context) {
	defer func() {
		s.hub.unregister(s)
		s.close()
	}()

	for {
		_, raw, err := s.conn.ReadMessage()
		if err != nil {
			return
		}

		var f frame
		if err := json.Unmarshal(raw, &f); err != nil {
			s.hub.logger.Warn("malformed frame", "error", err)
			continue
		}

		switch f.Event {
		case "update-location":
			s.hub.handleLocationReport(ctx, s, f.Payload)
		case "chat-message":
			s.hub.handleChatMessage(ctx, s, f.Payload)
		default:
			s.hub.logger.Warn("unknown inbound event", "event", f.Event)
		}
	}
}

// writePump flushes queued events to the connection. It owns all writes so
// the connection never sees concurrent writers.
func (s *session) writePump() {
	defer func() {
		_ = s.conn.Close()
	}()

	for payload := range s.outbound {
		_ = s.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
		if err := s.conn.WriteMessage(websocket.TextMessage, payload); err != nil {
			return
		}
	}

	_ = s.conn.WriteMessage(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
}

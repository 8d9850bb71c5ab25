package ports

import (
	"context"
	"time"

	"dispatch/internal/core/domain/model/kernel"
)

// Realtime event names. They are a contract the courier and observer UIs
// depend on and must not change without coordinating with them.
const (
	// EventNewAssignment carries a fresh assignment offer to candidate couriers.
	EventNewAssignment = "new-assignment"

	// EventAssignmentWithdrawn tells non-winning candidates to retract the offer.
	EventAssignmentWithdrawn = "assignment-withdrawn"

	// EventCourierLocation fans a courier's position out to order observers.
	EventCourierLocation = "update-deliveryBoy-location"

	// EventChatMessage relays an order-scoped chat message between courier
	// and recipient.
	EventChatMessage = "chat-message"
)

// Event is a single named message pushed over the realtime channel.
type Event struct {
	Name    string
	Payload any
}

// AssignmentOfferPayload is the payload of EventNewAssignment.
type AssignmentOfferPayload struct {
	AssignmentID string    `json:"assignmentId"`
	OrderID      string    `json:"orderId"`
	Street       string    `json:"street"`
	CreatedAt    time.Time `json:"createdAt"`
}

// AssignmentWithdrawnPayload is the payload of EventAssignmentWithdrawn.
type AssignmentWithdrawnPayload struct {
	AssignmentID string `json:"assignmentId"`
}

// CourierLocationPayload is the payload of EventCourierLocation.
type CourierLocationPayload struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// ChatMessagePayload is the payload of EventChatMessage.
type ChatMessagePayload struct {
	OrderID string `json:"orderId"`
	Sender  string `json:"sender"`
	Text    string `json:"text"`
}

// EventPublisher pushes events to connected realtime sessions. Publishing is
// keyed by courier id or by order id so authorization stays enforceable at
// the publish boundary: a session only ever receives events published to the
// courier or order it is bound to.
//
// Delivery is best effort. Events for couriers or observers without a live
// session are dropped.
type EventPublisher interface {
	// PublishToCourier delivers the event to the courier's live sessions.
	PublishToCourier(ctx context.Context, courierID kernel.UUID, event Event) error

	// PublishToOrder delivers the event to every observer session watching
	// the order.
	PublishToOrder(ctx context.Context, orderID kernel.UUID, event Event) error
}

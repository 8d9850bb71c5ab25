package http

import "time"

// Error is the uniform error body returned by every endpoint.
type Error struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// Location is a geographic point in request and response bodies.
type Location struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// NewOrder is the request body for order registration.
type NewOrder struct {
	Street           string   `json:"street"`
	Location         Location `json:"location"`
	RecipientContact string   `json:"recipientContact"`
}

// OrderCreated is the response body for successful order registration.
type OrderCreated struct {
	ID string `json:"id"`
}

// Order is an in-flight order in list responses.
type Order struct {
	ID        string   `json:"id"`
	Street    string   `json:"street"`
	Location  Location `json:"location"`
	Status    string   `json:"status"`
	CourierID *string  `json:"courierId,omitempty"`
}

// NewCourier is the request body for courier registration.
type NewCourier struct {
	Name string `json:"name"`
}

// Courier is a courier in list responses. Location is absent until the
// courier reports a position.
type Courier struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Available bool      `json:"available"`
	Location  *Location `json:"location,omitempty"`
}

// AssignmentOffer is an open assignment offer in a courier's offer list.
type AssignmentOffer struct {
	AssignmentID string    `json:"assignmentId"`
	OrderID      string    `json:"orderId"`
	Street       string    `json:"street"`
	CreatedAt    time.Time `json:"createdAt"`
}

// CourierAction identifies the courier acting on an assignment.
type CourierAction struct {
	CourierID string `json:"courierId"`
}

// VerifyCode is the request body for delivery code verification.
type VerifyCode struct {
	Code string `json:"code"`
}

// CurrentOrder is the courier's active delivery.
type CurrentOrder struct {
	ID         string   `json:"id"`
	Street     string   `json:"street"`
	Location   Location `json:"location"`
	Status     string   `json:"status"`
	CodeIssued bool     `json:"codeIssued"`
}

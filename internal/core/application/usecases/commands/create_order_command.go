package commands

import (
	"errors"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/pkg/guard"
)

var (
	ErrCreateOrderCommandIsNotConstructed = errors.New(
		"CreateOrderCommand must be created via NewCreateOrderCommand constructor",
	)
	ErrStreetIsRequired           = errors.New("street is required")
	ErrRecipientContactIsRequired = errors.New("recipient contact is required")
)

// CreateOrderCommand represents a request to register a ready-to-ship order
// with the dispatch core. The order record itself is owned by the order
// management collaborator; this command ingests the subset dispatch needs.
//
// Example:
//
//	orderID := kernel.NewUUID()
//	location, _ := kernel.NewLocation(40.7128, -74.0060)
//	cmd, err := NewCreateOrderCommand(orderID, "123 Main Street", location, "jane@example.com")
//	if err != nil {
//	    return fmt.Errorf("invalid order data: %w", err)
//	}
//
//	handler := NewCreateOrderCommandHandler(uowFactory)
//	if err := handler.Handle(ctx, cmd); err != nil {
//	    return fmt.Errorf("failed to create order: %w", err)
//	}
type CreateOrderCommand struct { //nolint:recvcheck //using for validation
	orderID          kernel.UUID
	street           string
	location         kernel.Location
	recipientContact string

	guard guard.ConstructorGuard
}

// NewCreateOrderCommand creates a command to register a new delivery order.
// Validates that the order ID and destination are valid and that street and
// recipient contact are not empty.
func NewCreateOrderCommand(
	orderID kernel.UUID,
	street string,
	location kernel.Location,
	recipientContact string,
) (CreateOrderCommand, error) {
	orderCommand := CreateOrderCommand{
		guard: guard.NewConstructorGuard(),
	}

	if err := errors.Join(
		orderCommand.setOrderID(orderID),
		orderCommand.setStreet(street),
		orderCommand.setLocation(location),
		orderCommand.setRecipientContact(recipientContact),
	); err != nil {
		return CreateOrderCommand{}, err
	}

	return orderCommand, nil
}

// Validate ensures the command was created through the constructor.
// Returns ErrCreateOrderCommandIsNotConstructed if validation fails.
func (c CreateOrderCommand) Validate() error {
	return c.guard.Validate(ErrCreateOrderCommandIsNotConstructed)
}

// OrderID returns the unique identifier for the order.
func (c CreateOrderCommand) OrderID() kernel.UUID {
	return c.orderID
}

// Street returns the delivery destination street address.
func (c CreateOrderCommand) Street() string {
	return c.street
}

// Location returns the delivery destination coordinates.
func (c CreateOrderCommand) Location() kernel.Location {
	return c.location
}

// RecipientContact returns the contact delivery notifications go to.
func (c CreateOrderCommand) RecipientContact() string {
	return c.recipientContact
}

func (c *CreateOrderCommand) setOrderID(orderID kernel.UUID) error {
	if err := orderID.Validate(); err != nil {
		return err
	}

	c.orderID = orderID
	return nil
}

func (c *CreateOrderCommand) setStreet(street string) error {
	if street == "" {
		return ErrStreetIsRequired
	}

	c.street = street
	return nil
}

func (c *CreateOrderCommand) setLocation(location kernel.Location) error {
	if err := location.Validate(); err != nil {
		return err
	}

	c.location = location
	return nil
}

func (c *CreateOrderCommand) setRecipientContact(contact string) error {
	if contact == "" {
		return ErrRecipientContactIsRequired
	}

	c.recipientContact = contact
	return nil
}

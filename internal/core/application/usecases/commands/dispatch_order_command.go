package commands

import (
	"errors"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/pkg/guard"
)

var ErrDispatchOrderCommandIsNotConstructed = errors.New(
	"DispatchOrderCommand must be created via NewDispatchOrderCommand constructor",
)

// DispatchOrderCommand triggers the broadcast of one placed order to every
// eligible courier, opening the race to accept.
//
// Example:
//
//	cmd, _ := NewDispatchOrderCommand(orderID)
//	assignmentID, err := handler.Handle(ctx, cmd)
//	if errors.Is(err, ErrNoCouriersAvailable) {
//	    // Order stays placed; the retry job will re-run the broadcast
//	}
type DispatchOrderCommand struct { //nolint:recvcheck //using for validation
	orderID kernel.UUID

	guard guard.ConstructorGuard
}

// NewDispatchOrderCommand creates a command to broadcast the given order.
func NewDispatchOrderCommand(orderID kernel.UUID) (DispatchOrderCommand, error) {
	command := DispatchOrderCommand{
		guard: guard.NewConstructorGuard(),
	}

	if err := command.setOrderID(orderID); err != nil {
		return DispatchOrderCommand{}, err
	}

	return command, nil
}

// Validate ensures the command was created through the constructor.
// Returns ErrDispatchOrderCommandIsNotConstructed if validation fails.
func (c DispatchOrderCommand) Validate() error {
	return c.guard.Validate(ErrDispatchOrderCommandIsNotConstructed)
}

// OrderID returns the order to broadcast.
func (c DispatchOrderCommand) OrderID() kernel.UUID {
	return c.orderID
}

func (c *DispatchOrderCommand) setOrderID(orderID kernel.UUID) error {
	if err := orderID.Validate(); err != nil {
		return err
	}

	c.orderID = orderID
	return nil
}

package commands

import (
	"errors"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/pkg/guard"
)

var ErrSendDeliveryCodeCommandIsNotConstructed = errors.New(
	"SendDeliveryCodeCommand must be created via NewSendDeliveryCodeCommand constructor",
)

// SendDeliveryCodeCommand represents a request to issue a fresh delivery
// confirmation code for an out-for-delivery order and send it to the
// recipient. Re-issuing invalidates any previously sent code.
type SendDeliveryCodeCommand struct { //nolint:recvcheck //using for validation
	orderID kernel.UUID

	guard guard.ConstructorGuard
}

// NewSendDeliveryCodeCommand creates a command to issue a delivery code for
// the given order.
func NewSendDeliveryCodeCommand(orderID kernel.UUID) (SendDeliveryCodeCommand, error) {
	command := SendDeliveryCodeCommand{
		guard: guard.NewConstructorGuard(),
	}

	if err := command.setOrderID(orderID); err != nil {
		return SendDeliveryCodeCommand{}, err
	}

	return command, nil
}

// Validate ensures the command was created through the constructor.
// Returns ErrSendDeliveryCodeCommandIsNotConstructed if validation fails.
func (c SendDeliveryCodeCommand) Validate() error {
	return c.guard.Validate(ErrSendDeliveryCodeCommandIsNotConstructed)
}

// OrderID returns the order the code is issued for.
func (c SendDeliveryCodeCommand) OrderID() kernel.UUID {
	return c.orderID
}

func (c *SendDeliveryCodeCommand) setOrderID(orderID kernel.UUID) error {
	if err := orderID.Validate(); err != nil {
		return err
	}

	c.orderID = orderID
	return nil
}

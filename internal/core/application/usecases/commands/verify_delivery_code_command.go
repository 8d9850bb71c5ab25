package commands

import (
	"errors"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/pkg/guard"
)

var (
	ErrVerifyDeliveryCodeCommandIsNotConstructed = errors.New(
		"VerifyDeliveryCodeCommand must be created via NewVerifyDeliveryCodeCommand constructor",
	)
	ErrCodeIsRequired = errors.New("code is required")
)

// VerifyDeliveryCodeCommand represents the recipient-facing confirmation of
// a delivery: the courier submits the code the recipient received.
type VerifyDeliveryCodeCommand struct { //nolint:recvcheck //using for validation
	orderID kernel.UUID
	code    string

	guard guard.ConstructorGuard
}

// NewVerifyDeliveryCodeCommand creates a command to verify the submitted
// code against the order's active one.
func NewVerifyDeliveryCodeCommand(orderID kernel.UUID, code string) (VerifyDeliveryCodeCommand, error) {
	command := VerifyDeliveryCodeCommand{
		guard: guard.NewConstructorGuard(),
	}

	if err := errors.Join(
		command.setOrderID(orderID),
		command.setCode(code),
	); err != nil {
		return VerifyDeliveryCodeCommand{}, err
	}

	return command, nil
}

// Validate ensures the command was created through the constructor.
// Returns ErrVerifyDeliveryCodeCommandIsNotConstructed if validation fails.
func (c VerifyDeliveryCodeCommand) Validate() error {
	return c.guard.Validate(ErrVerifyDeliveryCodeCommandIsNotConstructed)
}

// OrderID returns the order being confirmed.
func (c VerifyDeliveryCodeCommand) OrderID() kernel.UUID {
	return c.orderID
}

// Code returns the submitted confirmation code.
func (c VerifyDeliveryCodeCommand) Code() string {
	return c.code
}

func (c *VerifyDeliveryCodeCommand) setOrderID(orderID kernel.UUID) error {
	if err := orderID.Validate(); err != nil {
		return err
	}

	c.orderID = orderID
	return nil
}

func (c *VerifyDeliveryCodeCommand) setCode(code string) error {
	if code == "" {
		return ErrCodeIsRequired
	}

	c.code = code
	return nil
}

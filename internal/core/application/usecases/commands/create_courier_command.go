package commands

import (
	"errors"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/pkg/guard"
)

var (
	ErrCreateCourierCommandIsNotConstructed = errors.New(
		"CreateCourierCommand must be created via NewCreateCourierCommand constructor",
	)
	ErrNameIsRequired = errors.New("name is required")
)

// CreateCourierCommand represents a request to register a new courier with
// the dispatch core. New couriers start available with no known location.
//
// Example:
//
//	cmd, err := NewCreateCourierCommand("John Doe")
//	if err != nil {
//	    return fmt.Errorf("invalid courier data: %w", err)
//	}
//
//	handler := NewCreateCourierCommandHandler(uowFactory)
//	if err := handler.Handle(ctx, cmd); err != nil {
//	    return fmt.Errorf("failed to create courier: %w", err)
//	}
//	fmt.Printf("Created courier with ID: %s", cmd.CourierID())
type CreateCourierCommand struct { //nolint:recvcheck //using for validation
	courierID kernel.UUID
	name      string

	guard guard.ConstructorGuard
}

// NewCreateCourierCommand creates a command to register a new courier.
// Automatically generates a unique ID for the courier.
// Validates that the name is not empty.
func NewCreateCourierCommand(name string) (CreateCourierCommand, error) {
	command := CreateCourierCommand{
		guard: guard.NewConstructorGuard(),
	}

	if err := errors.Join(
		command.setCourierID(kernel.NewUUID()),
		command.setName(name),
	); err != nil {
		return CreateCourierCommand{}, err
	}

	return command, nil
}

// Validate ensures the command was created through the constructor.
// Returns ErrCreateCourierCommandIsNotConstructed if validation fails.
func (c CreateCourierCommand) Validate() error {
	return c.guard.Validate(ErrCreateCourierCommandIsNotConstructed)
}

// CourierID returns the courier ID from the command.
func (c CreateCourierCommand) CourierID() kernel.UUID {
	return c.courierID
}

// Name returns the courier name from the command.
func (c CreateCourierCommand) Name() string {
	return c.name
}

func (c *CreateCourierCommand) setCourierID(id kernel.UUID) error {
	if err := id.Validate(); err != nil {
		return err
	}

	c.courierID = id
	return nil
}

func (c *CreateCourierCommand) setName(name string) error {
	if name == "" {
		return ErrNameIsRequired
	}

	c.name = name
	return nil
}

package commands

import (
	"errors"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/pkg/guard"
)

var ErrDeclineAssignmentCommandIsNotConstructed = errors.New(
	"DeclineAssignmentCommand must be created via NewDeclineAssignmentCommand constructor",
)

// DeclineAssignmentCommand represents a courier's explicit refusal of an
// open assignment offer. The courier leaves the broadcast set; when the last
// candidate declines, the assignment is rejected and the order goes back to
// the dispatch queue.
type DeclineAssignmentCommand struct { //nolint:recvcheck //using for validation
	assignmentID kernel.UUID
	courierID    kernel.UUID

	guard guard.ConstructorGuard
}

// NewDeclineAssignmentCommand creates a command for the given courier to
// decline the given assignment.
func NewDeclineAssignmentCommand(assignmentID kernel.UUID, courierID kernel.UUID) (DeclineAssignmentCommand, error) {
	command := DeclineAssignmentCommand{
		guard: guard.NewConstructorGuard(),
	}

	if err := errors.Join(
		command.setAssignmentID(assignmentID),
		command.setCourierID(courierID),
	); err != nil {
		return DeclineAssignmentCommand{}, err
	}

	return command, nil
}

// Validate ensures the command was created through the constructor.
// Returns ErrDeclineAssignmentCommandIsNotConstructed if validation fails.
func (c DeclineAssignmentCommand) Validate() error {
	return c.guard.Validate(ErrDeclineAssignmentCommandIsNotConstructed)
}

// AssignmentID returns the assignment being declined.
func (c DeclineAssignmentCommand) AssignmentID() kernel.UUID {
	return c.assignmentID
}

// CourierID returns the declining courier.
func (c DeclineAssignmentCommand) CourierID() kernel.UUID {
	return c.courierID
}

func (c *DeclineAssignmentCommand) setAssignmentID(assignmentID kernel.UUID) error {
	if err := assignmentID.Validate(); err != nil {
		return err
	}

	c.assignmentID = assignmentID
	return nil
}

func (c *DeclineAssignmentCommand) setCourierID(courierID kernel.UUID) error {
	if err := courierID.Validate(); err != nil {
		return err
	}

	c.courierID = courierID
	return nil
}

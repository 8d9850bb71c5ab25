package commands

import (
	"errors"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/pkg/guard"
)

var ErrAcceptAssignmentCommandIsNotConstructed = errors.New(
	"AcceptAssignmentCommand must be created via NewAcceptAssignmentCommand constructor",
)

// AcceptAssignmentCommand represents a courier's attempt to win an open
// assignment offer. Exactly one accept succeeds per assignment; every other
// concurrent attempt observes the post-state and fails.
//
// Example:
//
//	cmd, _ := NewAcceptAssignmentCommand(assignmentID, courierID)
//	err := handler.Handle(ctx, cmd)
//	if errors.Is(err, assignment.ErrAlreadyTaken) {
//	    // Another courier won; the UI retracts the offer
//	}
type AcceptAssignmentCommand struct { //nolint:recvcheck //using for validation
	assignmentID kernel.UUID
	courierID    kernel.UUID

	guard guard.ConstructorGuard
}

// NewAcceptAssignmentCommand creates a command for the given courier to
// accept the given assignment.
func NewAcceptAssignmentCommand(assignmentID kernel.UUID, courierID kernel.UUID) (AcceptAssignmentCommand, error) {
	command := AcceptAssignmentCommand{
		guard: guard.NewConstructorGuard(),
	}

	if err := errors.Join(
		command.setAssignmentID(assignmentID),
		command.setCourierID(courierID),
	); err != nil {
		return AcceptAssignmentCommand{}, err
	}

	return command, nil
}

// Validate ensures the command was created through the constructor.
// Returns ErrAcceptAssignmentCommandIsNotConstructed if validation fails.
func (c AcceptAssignmentCommand) Validate() error {
	return c.guard.Validate(ErrAcceptAssignmentCommandIsNotConstructed)
}

// AssignmentID returns the assignment being accepted.
func (c AcceptAssignmentCommand) AssignmentID() kernel.UUID {
	return c.assignmentID
}

// CourierID returns the accepting courier.
func (c AcceptAssignmentCommand) CourierID() kernel.UUID {
	return c.courierID
}

func (c *AcceptAssignmentCommand) setAssignmentID(assignmentID kernel.UUID) error {
	if err := assignmentID.Validate(); err != nil {
		return err
	}

	c.assignmentID = assignmentID
	return nil
}

func (c *AcceptAssignmentCommand) setCourierID(courierID kernel.UUID) error {
	if err := courierID.Validate(); err != nil {
		return err
	}

	c.courierID = courierID
	return nil
}

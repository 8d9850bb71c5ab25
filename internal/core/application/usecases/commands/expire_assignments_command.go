package commands

import (
	"errors"

	"dispatch/internal/pkg/guard"
)

var ErrExpireAssignmentsCommandIsNotConstructed = errors.New(
	"ExpireAssignmentsCommand must be created via NewExpireAssignmentsCommand constructor",
)

// ExpireAssignmentsCommand triggers the expiry sweep: every broadcast older
// than the configured timeout transitions to Expired and its candidates are
// told to retract the offer. Fired periodically by the expiry job.
type ExpireAssignmentsCommand struct {
	guard guard.ConstructorGuard
}

// NewExpireAssignmentsCommand creates a new command to trigger the expiry
// sweep. This is a parameterless command.
func NewExpireAssignmentsCommand() ExpireAssignmentsCommand {
	return ExpireAssignmentsCommand{
		guard: guard.NewConstructorGuard(),
	}
}

// Validate ensures the command was created through the constructor.
// Returns ErrExpireAssignmentsCommandIsNotConstructed if validation fails.
func (c *ExpireAssignmentsCommand) Validate() error {
	return c.guard.Validate(
		ErrExpireAssignmentsCommandIsNotConstructed,
	)
}

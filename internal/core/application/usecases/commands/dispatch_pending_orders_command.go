package commands

import (
	"errors"

	"dispatch/internal/pkg/guard"
)

var ErrDispatchPendingOrdersCommandIsNotConstructed = errors.New(
	"DispatchPendingOrdersCommand must be created via NewDispatchPendingOrdersCommand constructor",
)

// DispatchPendingOrdersCommand triggers a broadcast sweep over every placed
// order that has no live assignment. Fired periodically by the dispatch
// retry job so orders whose earlier broadcast found no couriers, expired, or
// was fully declined get re-offered.
type DispatchPendingOrdersCommand struct {
	guard guard.ConstructorGuard
}

// NewDispatchPendingOrdersCommand creates a new command to trigger the
// broadcast sweep. This is a parameterless command.
func NewDispatchPendingOrdersCommand() DispatchPendingOrdersCommand {
	return DispatchPendingOrdersCommand{
		guard: guard.NewConstructorGuard(),
	}
}

// Validate ensures the command was created through the constructor.
// Returns ErrDispatchPendingOrdersCommandIsNotConstructed if validation fails.
func (c *DispatchPendingOrdersCommand) Validate() error {
	return c.guard.Validate(
		ErrDispatchPendingOrdersCommandIsNotConstructed,
	)
}

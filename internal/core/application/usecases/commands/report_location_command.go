package commands

import (
	"errors"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/pkg/guard"
)

var ErrReportLocationCommandIsNotConstructed = errors.New(
	"ReportLocationCommand must be created via NewReportLocationCommand constructor",
)

// ReportLocationCommand carries a courier's position report. Reports within
// one courier's stream are applied in arrival order, last write wins.
type ReportLocationCommand struct { //nolint:recvcheck //using for validation
	courierID kernel.UUID
	location  kernel.Location

	guard guard.ConstructorGuard
}

// NewReportLocationCommand creates a command recording the courier's
// current position.
func NewReportLocationCommand(courierID kernel.UUID, location kernel.Location) (ReportLocationCommand, error) {
	command := ReportLocationCommand{
		guard: guard.NewConstructorGuard(),
	}

	if err := errors.Join(
		command.setCourierID(courierID),
		command.setLocation(location),
	); err != nil {
		return ReportLocationCommand{}, err
	}

	return command, nil
}

// Validate ensures the command was created through the constructor.
// Returns ErrReportLocationCommandIsNotConstructed if validation fails.
func (c ReportLocationCommand) Validate() error {
	return c.guard.Validate(ErrReportLocationCommandIsNotConstructed)
}

// CourierID returns the reporting courier.
func (c ReportLocationCommand) CourierID() kernel.UUID {
	return c.courierID
}

// Location returns the reported position.
func (c ReportLocationCommand) Location() kernel.Location {
	return c.location
}

func (c *ReportLocationCommand) setCourierID(courierID kernel.UUID) error {
	if err := courierID.Validate(); err != nil {
		return err
	}

	c.courierID = courierID
	return nil
}

func (c *ReportLocationCommand) setLocation(location kernel.Location) error {
	if err := location.Validate(); err != nil {
		return err
	}

	c.location = location
	return nil
}

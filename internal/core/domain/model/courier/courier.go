package courier

import (
	"errors"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/pkg/errs"
	"dispatch/internal/pkg/guard"
)

// Domain errors for courier operations.
var (
	// ErrNameIsRequired is returned when attempting to create a courier without a name.
	ErrNameIsRequired = errs.NewValueIsRequiredError("name")
	// ErrCourierIsNotConstructed is returned when using an improperly initialized Courier.
	ErrCourierIsNotConstructed = errors.New("Courier must be created via NewCourier constructor")
	// ErrLocationIsUnknown is returned when an operation needs the courier's
	// position but none has been reported yet.
	ErrLocationIsUnknown = errors.New("courier location is unknown")
)

// Courier represents a delivery courier.
//
// Business rules:
//   - Courier must have a valid UUID and a non-empty name
//   - A new courier starts available with no known location
//   - Location is last-write-wins: UpdateLocation replaces the previous value
//   - Availability is toggled by the dispatch workflow, not by the courier aggregate itself
type Courier struct {
	id kernel.UUID

	name string

	// available reports whether the courier can receive new assignment offers
	available bool

	// location is the last reported position, nil until the first report
	location *kernel.Location

	guard guard.ConstructorGuard
}

// NewCourier creates a new available Courier with no known location.
func NewCourier(id kernel.UUID, name string) (*Courier, error) {
	courier := &Courier{
		available: true,
		guard:     guard.NewConstructorGuard(),
	}

	if err := errors.Join(
		courier.setID(id),
		courier.setName(name),
	); err != nil {
		return nil, err
	}

	return courier, nil
}

// RestoreCourier reconstructs a Courier aggregate from persistent storage,
// preserving its availability and last known location.
func RestoreCourier(id kernel.UUID, name string, available bool, location *kernel.Location) (*Courier, error) {
	courier := &Courier{
		available: available,
		guard:     guard.NewConstructorGuard(),
	}

	if err := errors.Join(
		courier.setID(id),
		courier.setName(name),
		courier.setLocation(location),
	); err != nil {
		return nil, err
	}

	return courier, nil
}

// Validate ensures the Courier was constructed through NewCourier or RestoreCourier.
func (c *Courier) Validate() error {
	if c == nil {
		return ErrCourierIsNotConstructed
	}

	return c.guard.Validate(ErrCourierIsNotConstructed)
}

// IsEqual compares two couriers by their unique identifiers.
func (c *Courier) IsEqual(other *Courier) bool {
	return other != nil && c.id.IsEqual(other.id)
}

// ID returns the courier's unique identifier.
func (c *Courier) ID() kernel.UUID {
	return c.id
}

// Name returns the courier's human-readable name.
func (c *Courier) Name() string {
	return c.name
}

// IsAvailable reports whether the courier can receive assignment offers.
func (c *Courier) IsAvailable() bool {
	return c.available
}

// Location returns the last reported position, nil if none has been reported.
func (c *Courier) Location() *kernel.Location {
	return c.location
}

// MarkBusy removes the courier from the pool of broadcast candidates.
// Called when the courier accepts an assignment.
func (c *Courier) MarkBusy() {
	c.available = false
}

// MarkAvailable returns the courier to the pool of broadcast candidates.
// Called when the courier's active delivery reaches a terminal state.
func (c *Courier) MarkAvailable() {
	c.available = true
}

// UpdateLocation replaces the courier's last known position. Within one
// courier's stream updates are applied in arrival order; no cross-courier
// ordering is implied.
func (c *Courier) UpdateLocation(location kernel.Location) error {
	if err := location.Validate(); err != nil {
		return err
	}

	c.location = &location
	return nil
}

// DistanceTo calculates the great-circle distance in kilometers from the
// courier's last known position to the target. Returns ErrLocationIsUnknown
// when no position has been reported.
func (c *Courier) DistanceTo(target kernel.Location) (float64, error) {
	if c.location == nil {
		return 0, ErrLocationIsUnknown
	}

	return c.location.DistanceTo(target)
}

func (c *Courier) setID(id kernel.UUID) error {
	if err := id.Validate(); err != nil {
		return err
	}
	c.id = id
	return nil
}

func (c *Courier) setName(name string) error {
	if name == "" {
		return ErrNameIsRequired
	}
	c.name = name
	return nil
}

func (c *Courier) setLocation(location *kernel.Location) error {
	if location == nil {
		return nil
	}
	if err := location.Validate(); err != nil {
		return err
	}
	c.location = location
	return nil
}

package order

import (
	"errors"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/pkg/errs"
	"dispatch/internal/pkg/guard"
)

var (
	// ErrOrderIsNotConstructed is returned when an Order instance was not
	// created through NewOrder or RestoreOrder.
	ErrOrderIsNotConstructed = errors.New("Order must be created via NewOrder constructor")

	// ErrRecipientContactIsRequired is returned when creating an order
	// without a recipient contact.
	ErrRecipientContactIsRequired = errs.NewValueIsRequiredError("recipient contact")

	// ErrStreetIsRequired is returned when creating an order without a
	// delivery street address.
	ErrStreetIsRequired = errs.NewValueIsRequiredError("street")
)

// VerifyResult classifies the outcome of a delivery-code verification.
type VerifyResult int

const (
	// VerifyUnknown is the zero value and never a valid outcome.
	VerifyUnknown VerifyResult = iota
	// VerifyMatch means the submitted code matched the active code.
	// The code is consumed and the order becomes delivery-verified.
	VerifyMatch
	// VerifyMismatch means a code is active but the submitted value differs.
	VerifyMismatch
	// VerifyNoActiveCode means no code is currently valid for the order,
	// either because none was issued, it was already consumed, or the
	// order is not out for delivery.
	VerifyNoActiveCode
)

// Order is the aggregate root for a delivery order. It owns the order's
// status transitions, the courier binding, and the delivery confirmation
// code lifecycle.
//
// Invariants:
//   - Must have a valid unique identifier, street, location, and recipient contact
//   - Status transitions follow the rules encoded in Status
//   - A delivery code exists only while the order is out for delivery and
//     only its most recently issued value matches
//   - Can only be created through NewOrder or RestoreOrder
type Order struct {
	id kernel.UUID

	// courierID is the bound courier (nil until an assignment is accepted)
	courierID *kernel.UUID

	// street is the human-readable delivery address line
	street string

	// location is the delivery destination coordinates
	location kernel.Location

	// recipientContact is where the delivery code is sent (email or phone).
	// The contact itself is owned by the order-management collaborator.
	recipientContact string

	status Status

	// deliveryCode is the single active confirmation code, nil when none
	deliveryCode *DeliveryCode

	// deliveryVerified is set once a code has been successfully matched
	deliveryVerified bool

	// codeMismatches counts consecutive failed verifications since the last
	// issue. Exposed as a hook for rate limiting.
	codeMismatches int

	guard guard.ConstructorGuard
}

// NewOrder creates a new Order in Placed status. This is the only way to
// create a fresh order; all parameters are validated and errors aggregated.
func NewOrder(id kernel.UUID, street string, location kernel.Location, recipientContact string) (*Order, error) {
	order := &Order{
		status: Placed,
		guard:  guard.NewConstructorGuard(),
	}

	if err := errors.Join(
		order.setID(id),
		order.setStreet(street),
		order.setLocation(location),
		order.setRecipientContact(recipientContact),
	); err != nil {
		return nil, err
	}

	return order, nil
}

// RestoreOrder reconstructs an Order aggregate from persistent storage,
// preserving its status, courier binding, and delivery-code state. The
// restored order behaves identically to one built through domain operations.
func RestoreOrder(
	id kernel.UUID,
	street string,
	location kernel.Location,
	recipientContact string,
	status Status,
	courierID *kernel.UUID,
	deliveryCode *DeliveryCode,
	deliveryVerified bool,
	codeMismatches int,
) (*Order, error) {
	order := &Order{
		deliveryVerified: deliveryVerified,
		codeMismatches:   codeMismatches,
		guard:            guard.NewConstructorGuard(),
	}

	if err := errors.Join(
		order.setID(id),
		order.setStreet(street),
		order.setLocation(location),
		order.setRecipientContact(recipientContact),
		order.setStatus(status, courierID),
		order.setDeliveryCode(deliveryCode),
	); err != nil {
		return nil, err
	}

	return order, nil
}

// Validate ensures the Order was constructed through NewOrder or RestoreOrder.
func (o *Order) Validate() error {
	if o == nil {
		return ErrOrderIsNotConstructed
	}

	return o.guard.Validate(ErrOrderIsNotConstructed)
}

// IsEqual compares two orders by their unique identifiers.
func (o *Order) IsEqual(other *Order) bool {
	return other != nil && o.id.IsEqual(other.id)
}

// ID returns the order's unique identifier.
func (o *Order) ID() kernel.UUID {
	return o.id
}

// Street returns the delivery address line.
func (o *Order) Street() string {
	return o.street
}

// Location returns the delivery destination coordinates.
func (o *Order) Location() kernel.Location {
	return o.location
}

// RecipientContact returns the contact the delivery code is dispatched to.
func (o *Order) RecipientContact() string {
	return o.recipientContact
}

// Status returns the current lifecycle status.
func (o *Order) Status() Status {
	return o.status
}

// Courier returns the bound courier's ID, nil if none.
func (o *Order) Courier() *kernel.UUID {
	return o.courierID
}

// DeliveryCode returns the active confirmation code, nil if none.
func (o *Order) DeliveryCode() *DeliveryCode {
	return o.deliveryCode
}

// DeliveryVerified reports whether a delivery code has been matched.
func (o *Order) DeliveryVerified() bool {
	return o.deliveryVerified
}

// CodeMismatches returns the count of consecutive failed verifications since
// the last issued code.
func (o *Order) CodeMismatches() int {
	return o.codeMismatches
}

// ValidateAssign reports whether a courier may be bound in the current
// status, without performing the transition.
func (o *Order) ValidateAssign() error {
	return o.status.ValidateAssign()
}

// Assign binds the order to a courier and advances the status to Assigned.
// Permitted from Placed and, for reassignment, from Assigned.
func (o *Order) Assign(courierID kernel.UUID) error {
	if err := courierID.Validate(); err != nil {
		return err
	}

	newStatus, err := o.status.Assign()
	if err != nil {
		return err
	}

	o.status = newStatus
	o.courierID = &courierID
	return nil
}

// StartDelivery advances the order to OutForDelivery. The order must be
// Assigned with a bound courier.
func (o *Order) StartDelivery() error {
	newStatus, err := o.status.StartDelivery()
	if err != nil {
		return err
	}

	o.status = newStatus
	return nil
}

// IssueDeliveryCode binds a fresh confirmation code, invalidating any
// previously issued one and resetting the mismatch counter. Codes can only
// be issued while the order is out for delivery.
func (o *Order) IssueDeliveryCode(code DeliveryCode) error {
	if err := code.Validate(); err != nil {
		return err
	}

	if o.status != OutForDelivery {
		return errs.NewValueIsInvalidError("order is not out for delivery")
	}

	o.deliveryCode = &code
	o.codeMismatches = 0
	return nil
}

// VerifyDeliveryCode checks a submitted code against the active one.
//
// On VerifyMatch the code is consumed (single use) and the order becomes
// delivery-verified. VerifyNoActiveCode is returned when no code is valid:
// none issued, already consumed, or the order is not out for delivery. A
// mismatch increments the consecutive-mismatch counter.
func (o *Order) VerifyDeliveryCode(submitted string) VerifyResult {
	if o.status != OutForDelivery || o.deliveryCode == nil {
		return VerifyNoActiveCode
	}

	if !o.deliveryCode.Matches(submitted) {
		o.codeMismatches++
		return VerifyMismatch
	}

	o.deliveryCode = nil
	o.deliveryVerified = true
	o.codeMismatches = 0
	return VerifyMatch
}

// Complete marks the order Delivered. Requires a verified delivery code.
// Completing an already Delivered order is an idempotent no-op so at-least-
// once client retries stay safe.
func (o *Order) Complete() error {
	if o.status == Delivered {
		return nil
	}

	if !o.deliveryVerified {
		return errs.NewValueIsInvalidError("delivery is not verified")
	}

	newStatus, err := o.status.Complete()
	if err != nil {
		return err
	}

	o.status = newStatus
	return nil
}

// Fail marks the order Failed. Failing an already Failed order is an
// idempotent no-op; failing a Delivered order is an error.
func (o *Order) Fail() error {
	if o.status == Failed {
		return nil
	}

	newStatus, err := o.status.Fail()
	if err != nil {
		return err
	}

	o.status = newStatus
	return nil
}

func (o *Order) setID(id kernel.UUID) error {
	if err := id.Validate(); err != nil {
		return err
	}
	o.id = id
	return nil
}

func (o *Order) setStreet(street string) error {
	if street == "" {
		return ErrStreetIsRequired
	}
	o.street = street
	return nil
}

func (o *Order) setLocation(location kernel.Location) error {
	if err := location.Validate(); err != nil {
		return err
	}
	o.location = location
	return nil
}

func (o *Order) setRecipientContact(contact string) error {
	if contact == "" {
		return ErrRecipientContactIsRequired
	}
	o.recipientContact = contact
	return nil
}

func (o *Order) setStatus(status Status, courierID *kernel.UUID) error {
	if err := status.Validate(); err != nil {
		return err
	}
	if err := status.ValidateCanHaveCourier(courierID != nil); err != nil {
		return err
	}
	if courierID != nil {
		if err := courierID.Validate(); err != nil {
			return err
		}
	}

	o.status = status
	o.courierID = courierID
	return nil
}

func (o *Order) setDeliveryCode(code *DeliveryCode) error {
	if code == nil {
		return nil
	}
	if err := code.Validate(); err != nil {
		return err
	}
	if o.status != OutForDelivery {
		return errs.NewValueIsInvalidError("delivery code requires out-for-delivery status")
	}

	o.deliveryCode = code
	return nil
}

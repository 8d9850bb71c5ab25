package order

import (
	"fmt"

	"dispatch/internal/pkg/errs"
)

// Status represents the lifecycle state of an order.
//
// State transitions:
//
//	Placed ──> Assigned ──> OutForDelivery ──> Delivered
//	   │           │              │
//	   └───────────┴──────────────┴──> Failed
//
// Delivered and Failed are terminal: no further transitions are permitted.
// Reassignment (Assigned -> Assigned) is allowed while the order has not yet
// left for delivery.
type Status int

const (
	// Unknown represents an invalid or undefined status.
	// This value (0) helps catch uninitialized Status values.
	Unknown Status = iota

	// Placed is the initial status: the order is ready for dispatch and
	// waiting to be offered to couriers.
	Placed

	// Assigned indicates a courier accepted the order's assignment.
	Assigned

	// OutForDelivery indicates the bound courier is en route to the
	// recipient. Delivery codes are only valid in this status.
	OutForDelivery

	// Delivered indicates the order was handed over and the delivery code
	// verified. Terminal.
	Delivered

	// Failed indicates the order could not be delivered. Terminal.
	Failed
)

func getStatusStrings() map[Status]string {
	return map[Status]string{
		Unknown:        "Unknown",
		Placed:         "Placed",
		Assigned:       "Assigned",
		OutForDelivery: "OutForDelivery",
		Delivered:      "Delivered",
		Failed:         "Failed",
	}
}

func getValidStatusStrings() map[Status]string {
	//nolint:exhaustive // Unknown is intentionally excluded as it's invalid
	return map[Status]string{
		Placed:         "Placed",
		Assigned:       "Assigned",
		OutForDelivery: "OutForDelivery",
		Delivered:      "Delivered",
		Failed:         "Failed",
	}
}

// Validate checks if the Status value is one of the defined lifecycle states.
func (s Status) Validate() error {
	if _, ok := getValidStatusStrings()[s]; !ok {
		return errs.NewValueIsInvalidErrorWithCause("status is invalid", fmt.Errorf("%d is not a valid status", s))
	}
	return nil
}

// String returns the human-readable name of the status.
// It implements fmt.Stringer and is safe on invalid values.
func (s Status) String() string {
	if str, ok := getStatusStrings()[s]; ok {
		return str
	}
	return "Unknown"
}

// IsTerminal reports whether no further transitions are permitted.
func (s Status) IsTerminal() bool {
	return s == Delivered || s == Failed
}

// ValidateAssign checks whether a courier may be bound in the current status
// without performing the transition. Assignment is allowed from Placed and,
// for reassignment, from Assigned.
func (s Status) ValidateAssign() error {
	if s != Placed && s != Assigned {
		return errs.NewValueIsInvalidErrorWithCause(
			"status is invalid",
			fmt.Errorf("%s is not a valid status to assign", s.String()),
		)
	}
	return nil
}

// ValidateCanHaveCourier validates consistency between status and courier
// binding: Assigned, OutForDelivery, and Delivered orders must have a
// courier, Placed orders must not. Failed orders may have failed before or
// after a courier was bound, so either is allowed.
func (s Status) ValidateCanHaveCourier(courier bool) error {
	if courier && s == Placed {
		return errs.NewValueIsInvalidErrorWithCause(
			"status is invalid",
			fmt.Errorf("%s is not a valid status to have a courier", s.String()),
		)
	}

	if !courier && (s == Assigned || s == OutForDelivery || s == Delivered) {
		return errs.NewValueIsInvalidErrorWithCause(
			"status is invalid",
			fmt.Errorf("%s is not a valid status to have no courier", s.String()),
		)
	}

	return nil
}

// Assign transitions the status to Assigned.
func (s Status) Assign() (Status, error) {
	if err := s.ValidateAssign(); err != nil {
		return 0, err
	}

	return Assigned, nil
}

// StartDelivery transitions the status to OutForDelivery.
// Only Assigned orders can leave for delivery.
func (s Status) StartDelivery() (Status, error) {
	if s != Assigned {
		return 0, errs.NewValueIsInvalidErrorWithCause(
			"status is invalid",
			fmt.Errorf("%s is not a valid status to start delivery", s.String()),
		)
	}

	return OutForDelivery, nil
}

// Complete transitions the status to Delivered.
// Only OutForDelivery orders can be completed.
func (s Status) Complete() (Status, error) {
	if s != OutForDelivery {
		return 0, errs.NewValueIsInvalidErrorWithCause(
			"status is invalid",
			fmt.Errorf("%s is not a valid status to complete", s.String()),
		)
	}

	return Delivered, nil
}

// Fail transitions the status to Failed. Permitted from any non-terminal
// status.
func (s Status) Fail() (Status, error) {
	if s.IsTerminal() {
		return 0, errs.NewValueIsInvalidErrorWithCause(
			"status is invalid",
			fmt.Errorf("%s is terminal and cannot fail", s.String()),
		)
	}

	return Failed, nil
}

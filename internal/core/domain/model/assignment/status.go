package assignment

import (
	"fmt"

	"dispatch/internal/pkg/errs"
)

// Status represents the lifecycle state of an assignment.
//
// State transitions:
//
//	Broadcasted ──> Accepted ──> Delivered
//	     │              │
//	     ├──> Rejected  └──> Rejected
//	     └──> Expired
//
// Delivered, Rejected, and Expired are terminal: no further transitions
// are permitted.
type Status int

const (
	// Unknown represents an invalid or undefined status.
	// This value (0) helps catch uninitialized Status values.
	Unknown Status = iota

	// Broadcasted is the initial status: the offer is live for every
	// candidate courier and the race to accept is open.
	Broadcasted

	// Accepted indicates exactly one courier won the race and is bound to
	// the assignment.
	Accepted

	// Delivered indicates the bound courier completed the delivery. Terminal.
	Delivered

	// Rejected indicates every candidate declined, or the bound courier
	// abandoned the assignment. Terminal.
	Rejected

	// Expired indicates the broadcast timed out with no acceptor. Terminal.
	Expired
)

func getStatusStrings() map[Status]string {
	return map[Status]string{
		Unknown:     "Unknown",
		Broadcasted: "Broadcasted",
		Accepted:    "Accepted",
		Delivered:   "Delivered",
		Rejected:    "Rejected",
		Expired:     "Expired",
	}
}

func getValidStatusStrings() map[Status]string {
	//nolint:exhaustive // Unknown is intentionally excluded as it's invalid
	return map[Status]string{
		Broadcasted: "Broadcasted",
		Accepted:    "Accepted",
		Delivered:   "Delivered",
		Rejected:    "Rejected",
		Expired:     "Expired",
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
	return s == Delivered || s == Rejected || s == Expired
}

// Accept transitions the status to Accepted. Only an open broadcast can be
// accepted.
func (s Status) Accept() (Status, error) {
	if s != Broadcasted {
		return 0, errs.NewValueIsInvalidErrorWithCause(
			"status is invalid",
			fmt.Errorf("%s is not a valid status to accept", s.String()),
		)
	}

	return Accepted, nil
}

// Deliver transitions the status to Delivered. Only accepted assignments can
// be delivered.
func (s Status) Deliver() (Status, error) {
	if s != Accepted {
		return 0, errs.NewValueIsInvalidErrorWithCause(
			"status is invalid",
			fmt.Errorf("%s is not a valid status to deliver", s.String()),
		)
	}

	return Delivered, nil
}

// Reject transitions the status to Rejected. Permitted from Broadcasted and
// Accepted.
func (s Status) Reject() (Status, error) {
	if s != Broadcasted && s != Accepted {
		return 0, errs.NewValueIsInvalidErrorWithCause(
			"status is invalid",
			fmt.Errorf("%s is not a valid status to reject", s.String()),
		)
	}

	return Rejected, nil
}

// Expire transitions the status to Expired. Only an open broadcast can
// expire; accepted assignments are past the timeout window.
func (s Status) Expire() (Status, error) {
	if s != Broadcasted {
		return 0, errs.NewValueIsInvalidErrorWithCause(
			"status is invalid",
			fmt.Errorf("%s is not a valid status to expire", s.String()),
		)
	}

	return Expired, nil
}

// ValidateCanHaveCourier validates consistency between status and the
// accepted-courier binding: Accepted and Delivered assignments must have a
// bound courier, Broadcasted and Expired must not. Rejected assignments may
// have been rejected before or after acceptance, so either is allowed.
func (s Status) ValidateCanHaveCourier(courier bool) error {
	if courier && (s == Broadcasted || s == Expired) {
		return errs.NewValueIsInvalidErrorWithCause(
			"status is invalid",
			fmt.Errorf("%s is not a valid status to have an accepted courier", s.String()),
		)
	}

	if !courier && (s == Accepted || s == Delivered) {
		return errs.NewValueIsInvalidErrorWithCause(
			"status is invalid",
			fmt.Errorf("%s is not a valid status to have no accepted courier", s.String()),
		)
	}

	return nil
}

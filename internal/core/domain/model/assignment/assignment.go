package assignment

import (
	"errors"
	"time"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/pkg/errs"
	"dispatch/internal/pkg/guard"
)

var (
	// ErrAssignmentIsNotConstructed is returned when an Assignment instance
	// was not created through NewAssignment or RestoreAssignment.
	ErrAssignmentIsNotConstructed = errors.New("Assignment must be created via NewAssignment constructor")

	// ErrCandidatesAreRequired is returned when broadcasting an assignment
	// without any candidate courier.
	ErrCandidatesAreRequired = errs.NewValueIsRequiredError("candidates")

	// ErrAlreadyTaken is returned when a courier tries to accept an
	// assignment another courier already won.
	ErrAlreadyTaken = errors.New("assignment is already taken by another courier")

	// ErrStaleAssignment is returned when an operation targets an assignment
	// in a terminal status and the operation is not the idempotent re-delivery
	// of that same status.
	ErrStaleAssignment = errors.New("assignment is in a terminal status")

	// ErrNotCandidate is returned when a courier acts on an assignment it is
	// not a party to: not in the broadcast set, or not the accepted courier
	// for a bound operation.
	ErrNotCandidate = errors.New("courier is not a candidate of this assignment")
)

// Assignment is the aggregate root for one order-to-courier pairing. It owns
// the race-to-accept resolution and the offer lifecycle.
//
// Invariants:
//   - Must have a valid unique identifier, order reference, and at least one
//     candidate on creation
//   - At most one courier ever holds the accepted binding; once accepted the
//     candidate set is frozen and no further accept is honored
//   - Status transitions follow the rules encoded in Status; terminal states
//     absorb retries of the operation that produced them
//   - Can only be created through NewAssignment or RestoreAssignment
type Assignment struct {
	id kernel.UUID

	orderID kernel.UUID

	// candidates is the broadcast set. Declines shrink it while the offer is
	// open; it is frozen once a courier accepts.
	candidates []kernel.UUID

	// acceptedBy is the winning courier (nil until accept resolves)
	acceptedBy *kernel.UUID

	status Status

	// createdAt anchors the expiry timeout for the broadcast
	createdAt time.Time

	guard guard.ConstructorGuard
}

// NewAssignment creates a new Assignment in Broadcasted status offered to the
// given candidate couriers. At least one candidate is required.
func NewAssignment(id kernel.UUID, orderID kernel.UUID, candidates []kernel.UUID, createdAt time.Time) (*Assignment, error) {
	assignment := &Assignment{
		status:    Broadcasted,
		createdAt: createdAt,
		guard:     guard.NewConstructorGuard(),
	}

	if err := errors.Join(
		assignment.setID(id),
		assignment.setOrderID(orderID),
		assignment.setCandidates(candidates),
	); err != nil {
		return nil, err
	}

	return assignment, nil
}

// RestoreAssignment reconstructs an Assignment aggregate from persistent
// storage, preserving its status, candidate set, and accepted-courier
// binding.
func RestoreAssignment(
	id kernel.UUID,
	orderID kernel.UUID,
	candidates []kernel.UUID,
	acceptedBy *kernel.UUID,
	status Status,
	createdAt time.Time,
) (*Assignment, error) {
	assignment := &Assignment{
		createdAt: createdAt,
		guard:     guard.NewConstructorGuard(),
	}

	if err := errors.Join(
		assignment.setID(id),
		assignment.setOrderID(orderID),
		assignment.setRestoredCandidates(candidates, status),
		assignment.setStatus(status, acceptedBy),
	); err != nil {
		return nil, err
	}

	return assignment, nil
}

// Validate ensures the Assignment was constructed through NewAssignment or
// RestoreAssignment.
func (a *Assignment) Validate() error {
	if a == nil {
		return ErrAssignmentIsNotConstructed
	}

	return a.guard.Validate(ErrAssignmentIsNotConstructed)
}

// IsEqual compares two assignments by their unique identifiers.
func (a *Assignment) IsEqual(other *Assignment) bool {
	return other != nil && a.id.IsEqual(other.id)
}

// ID returns the assignment's unique identifier.
func (a *Assignment) ID() kernel.UUID {
	return a.id
}

// OrderID returns the identifier of the order being offered.
func (a *Assignment) OrderID() kernel.UUID {
	return a.orderID
}

// Candidates returns a copy of the current broadcast set.
func (a *Assignment) Candidates() []kernel.UUID {
	candidates := make([]kernel.UUID, len(a.candidates))
	copy(candidates, a.candidates)
	return candidates
}

// IsCandidate reports whether the courier is in the current broadcast set.
func (a *Assignment) IsCandidate(courierID kernel.UUID) bool {
	for _, candidate := range a.candidates {
		if candidate.IsEqual(courierID) {
			return true
		}
	}
	return false
}

// AcceptedBy returns the winning courier's ID, nil while the race is open.
func (a *Assignment) AcceptedBy() *kernel.UUID {
	return a.acceptedBy
}

// Status returns the current lifecycle status.
func (a *Assignment) Status() Status {
	return a.status
}

// CreatedAt returns the broadcast time the expiry timeout is anchored to.
func (a *Assignment) CreatedAt() time.Time {
	return a.createdAt
}

// Accept resolves the race in favor of the given courier.
//
// Exactly one accept succeeds per assignment. A repeated accept by the
// winning courier is an idempotent no-op; an accept by anybody else after
// the race resolved returns ErrAlreadyTaken. Couriers outside the broadcast
// set get ErrNotCandidate, and terminal assignments get ErrStaleAssignment.
func (a *Assignment) Accept(courierID kernel.UUID) error {
	if err := courierID.Validate(); err != nil {
		return err
	}

	if a.status == Accepted {
		if a.acceptedBy.IsEqual(courierID) {
			return nil
		}
		return ErrAlreadyTaken
	}

	if a.status.IsTerminal() {
		return ErrStaleAssignment
	}

	if !a.IsCandidate(courierID) {
		return ErrNotCandidate
	}

	newStatus, err := a.status.Accept()
	if err != nil {
		return err
	}

	a.status = newStatus
	a.acceptedBy = &courierID
	return nil
}

// Decline removes the courier from the broadcast set. When the last
// candidate declines, the assignment transitions to Rejected. Declining an
// already Rejected assignment is an idempotent no-op; declining after
// another courier accepted returns ErrAlreadyTaken.
func (a *Assignment) Decline(courierID kernel.UUID) error {
	if err := courierID.Validate(); err != nil {
		return err
	}

	if a.status == Rejected {
		return nil
	}

	if a.status == Accepted {
		return ErrAlreadyTaken
	}

	if a.status.IsTerminal() {
		return ErrStaleAssignment
	}

	if !a.IsCandidate(courierID) {
		return ErrNotCandidate
	}

	a.removeCandidate(courierID)
	if len(a.candidates) > 0 {
		return nil
	}

	newStatus, err := a.status.Reject()
	if err != nil {
		return err
	}

	a.status = newStatus
	return nil
}

// Complete marks the assignment Delivered. Only the accepted courier may
// complete. Completing an already Delivered assignment by the same courier
// is an idempotent no-op.
func (a *Assignment) Complete(courierID kernel.UUID) error {
	if err := courierID.Validate(); err != nil {
		return err
	}

	if a.acceptedBy == nil || !a.acceptedBy.IsEqual(courierID) {
		return ErrNotCandidate
	}

	if a.status == Delivered {
		return nil
	}

	if a.status.IsTerminal() {
		return ErrStaleAssignment
	}

	newStatus, err := a.status.Deliver()
	if err != nil {
		return err
	}

	a.status = newStatus
	return nil
}

// Reject abandons the assignment regardless of who holds it: used when the
// order itself fails after acceptance. Rejecting an already Rejected
// assignment is an idempotent no-op.
func (a *Assignment) Reject() error {
	if a.status == Rejected {
		return nil
	}

	if a.status.IsTerminal() {
		return ErrStaleAssignment
	}

	newStatus, err := a.status.Reject()
	if err != nil {
		return err
	}

	a.status = newStatus
	return nil
}

// Expire times out an unanswered broadcast. Expiring an already Expired
// assignment is an idempotent no-op; any other terminal status returns
// ErrStaleAssignment.
func (a *Assignment) Expire() error {
	if a.status == Expired {
		return nil
	}

	if a.status.IsTerminal() {
		return ErrStaleAssignment
	}

	newStatus, err := a.status.Expire()
	if err != nil {
		return err
	}

	a.status = newStatus
	return nil
}

func (a *Assignment) removeCandidate(courierID kernel.UUID) {
	remaining := a.candidates[:0]
	for _, candidate := range a.candidates {
		if !candidate.IsEqual(courierID) {
			remaining = append(remaining, candidate)
		}
	}
	a.candidates = remaining
}

func (a *Assignment) setID(id kernel.UUID) error {
	if err := id.Validate(); err != nil {
		return err
	}
	a.id = id
	return nil
}

func (a *Assignment) setOrderID(orderID kernel.UUID) error {
	if err := orderID.Validate(); err != nil {
		return err
	}
	a.orderID = orderID
	return nil
}

func (a *Assignment) setCandidates(candidates []kernel.UUID) error {
	if len(candidates) == 0 {
		return ErrCandidatesAreRequired
	}

	for _, candidate := range candidates {
		if err := candidate.Validate(); err != nil {
			return err
		}
	}

	a.candidates = make([]kernel.UUID, len(candidates))
	copy(a.candidates, candidates)
	return nil
}

// setRestoredCandidates allows an empty set for statuses a fully declined or
// resolved assignment can legitimately hold.
func (a *Assignment) setRestoredCandidates(candidates []kernel.UUID, status Status) error {
	if len(candidates) == 0 && status == Broadcasted {
		return ErrCandidatesAreRequired
	}

	for _, candidate := range candidates {
		if err := candidate.Validate(); err != nil {
			return err
		}
	}

	a.candidates = make([]kernel.UUID, len(candidates))
	copy(a.candidates, candidates)
	return nil
}

func (a *Assignment) setStatus(status Status, acceptedBy *kernel.UUID) error {
	if err := status.Validate(); err != nil {
		return err
	}
	if err := status.ValidateCanHaveCourier(acceptedBy != nil); err != nil {
		return err
	}
	if acceptedBy != nil {
		if err := acceptedBy.Validate(); err != nil {
			return err
		}
	}

	a.status = status
	a.acceptedBy = acceptedBy
	return nil
}

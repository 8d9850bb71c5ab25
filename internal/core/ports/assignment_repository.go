package ports

import (
	"context"
	"time"

	"dispatch/internal/core/domain/model/assignment"
	"dispatch/internal/core/domain/model/kernel"
)

// AssignmentRepository defines the persistence contract for assignment
// aggregates, including the atomic conditional write that resolves the
// race to accept.
type AssignmentRepository interface {
	// Add persists a new assignment aggregate to storage.
	// The assignment must be valid and not already exist in the repository.
	Add(ctx context.Context, aggregate *assignment.Assignment) error

	// Update persists changes to an existing assignment aggregate.
	// The assignment must exist in the repository and be valid.
	Update(ctx context.Context, aggregate *assignment.Assignment) error

	// Get retrieves an assignment aggregate by its unique identifier.
	Get(ctx context.Context, id kernel.UUID) (*assignment.Assignment, error)

	// GetActiveByOrder retrieves the order's single non-terminal assignment.
	// Returns errs.ErrObjectNotFound when none exists.
	GetActiveByOrder(ctx context.Context, orderID kernel.UUID) (*assignment.Assignment, error)

	// GetAllBroadcastedTo retrieves every open broadcast the courier is a
	// candidate of. Backs the courier's offer list.
	GetAllBroadcastedTo(ctx context.Context, courierID kernel.UUID) ([]*assignment.Assignment, error)

	// GetAllBroadcastedBefore retrieves every open broadcast created before
	// the cutoff. Used by the expiry job to time out unanswered offers.
	GetAllBroadcastedBefore(ctx context.Context, cutoff time.Time) ([]*assignment.Assignment, error)

	// Accept atomically binds the courier to the assignment: a conditional
	// write that succeeds only while the assignment is still broadcasted and
	// unbound. Exactly one concurrent caller wins; the rest receive
	// assignment.ErrAlreadyTaken (or assignment.ErrStaleAssignment when the
	// broadcast expired first). Returns the post-write aggregate.
	Accept(ctx context.Context, id kernel.UUID, courierID kernel.UUID) (*assignment.Assignment, error)
}

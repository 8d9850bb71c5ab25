package ports

import (
	"context"

	"dispatch/internal/core/domain/model/kernel"
)

// LocationStore holds the last reported position of every courier.
// Writes are last-write-wins within a courier's own stream; there is no
// cross-courier coordination. Positions are volatile operational data and
// live outside the transactional store.
type LocationStore interface {
	// Set records the courier's current position, replacing any previous one.
	Set(ctx context.Context, courierID kernel.UUID, location kernel.Location) error

	// Get returns the courier's last reported position.
	// Returns errs.ErrObjectNotFound when the courier never reported one.
	Get(ctx context.Context, courierID kernel.UUID) (kernel.Location, error)

	// GetAll returns the last reported position of every courier that has one.
	GetAll(ctx context.Context) (map[kernel.UUID]kernel.Location, error)
}

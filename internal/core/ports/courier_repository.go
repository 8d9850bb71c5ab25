// Package ports defines the contracts between the application core and
// infrastructure: repositories, the unit of work, the realtime event
// publisher, the courier location store, and the recipient notifier.
// These interfaces enable dependency inversion and testability.
package ports

import (
	"context"

	"dispatch/internal/core/domain/model/courier"
	"dispatch/internal/core/domain/model/kernel"
)

// CourierRepository defines the persistence contract for courier aggregates.
type CourierRepository interface {
	// Add persists a new courier aggregate to storage.
	// The courier must be valid and not already exist in the repository.
	Add(ctx context.Context, courier *courier.Courier) error

	// Update persists changes to an existing courier aggregate.
	// The courier must exist in the repository and be valid.
	Update(ctx context.Context, courier *courier.Courier) error

	// Get retrieves a courier aggregate by its unique identifier.
	Get(ctx context.Context, id kernel.UUID) (*courier.Courier, error)

	// GetAllAvailable retrieves every courier currently accepting new
	// assignment offers. Used to build the broadcast candidate set.
	GetAllAvailable(ctx context.Context) ([]*courier.Courier, error)
}

package ports

import (
	"context"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/domain/model/order"
)

// OrderRepository defines the persistence contract for order aggregates.
// Provides methods for storing, retrieving, and querying order entities
// based on their lifecycle status and courier binding.
type OrderRepository interface {
	// Add persists a new order aggregate to storage.
	// The order must be valid and not already exist in the repository.
	Add(ctx context.Context, aggregate *order.Order) error

	// Update persists changes to an existing order aggregate.
	// The order must exist in the repository and be valid.
	Update(ctx context.Context, aggregate *order.Order) error

	// Get retrieves an order aggregate by its unique identifier.
	// Returns the complete order with its current status, courier binding,
	// and delivery-code state.
	Get(ctx context.Context, id kernel.UUID) (*order.Order, error)

	// GetAllInPlacedStatus retrieves every order waiting for dispatch.
	// Used by the dispatch workflow to find orders that need a broadcast.
	GetAllInPlacedStatus(ctx context.Context) ([]*order.Order, error)

	// GetAllUncompleted retrieves every order not yet in a terminal status.
	// Used by progress-tracking queries for couriers and observers.
	GetAllUncompleted(ctx context.Context) ([]*order.Order, error)

	// GetCurrentByCourier retrieves the order a courier is actively working
	// on: Assigned or OutForDelivery and bound to the given courier.
	// Returns errs.ErrObjectNotFound when the courier has no active order.
	GetCurrentByCourier(ctx context.Context, courierID kernel.UUID) (*order.Order, error)
}

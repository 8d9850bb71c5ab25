package queries

import (
	"errors"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/pkg/guard"
)

var (
	ErrGetUncompletedOrdersQueryIsNotConstructed = errors.New(
		"GetUncompletedOrdersQuery must be created via NewGetUncompletedOrdersQuery constructor",
	)
)

// GetUncompletedOrdersQuery retrieves all orders that have not reached a
// terminal status. Provides visibility into the active delivery workload.
type GetUncompletedOrdersQuery struct {
	guard guard.ConstructorGuard
}

// NewGetUncompletedOrdersQuery creates a query to retrieve pending orders.
// This is a parameterless query that fetches all non-terminal orders.
func NewGetUncompletedOrdersQuery() GetUncompletedOrdersQuery {
	return GetUncompletedOrdersQuery{guard: guard.NewConstructorGuard()}
}

// Validate ensures the query was created through the constructor.
// Returns ErrGetUncompletedOrdersQueryIsNotConstructed if validation fails.
func (q GetUncompletedOrdersQuery) Validate() error {
	return q.guard.Validate(ErrGetUncompletedOrdersQueryIsNotConstructed)
}

// GetUncompletedOrdersQueryResponse represents pending order information in
// the read model. CourierID is nil for orders that are not yet accepted.
type GetUncompletedOrdersQueryResponse struct {
	ID        kernel.UUID
	Street    string
	Location  kernel.Location
	Status    string
	CourierID *kernel.UUID
}

package queries

import (
	"errors"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/pkg/guard"
)

var (
	ErrGetCurrentOrderQueryIsNotConstructed = errors.New(
		"GetCurrentOrderQuery must be created via NewGetCurrentOrderQuery constructor",
	)
)

// GetCurrentOrderQuery retrieves the courier's active delivery, if any. A
// courier app restores its in-progress screen from this after a restart.
type GetCurrentOrderQuery struct {
	courierID kernel.UUID

	guard guard.ConstructorGuard
}

// NewGetCurrentOrderQuery creates a query for the courier's active delivery.
func NewGetCurrentOrderQuery(courierID kernel.UUID) (GetCurrentOrderQuery, error) {
	query := GetCurrentOrderQuery{guard: guard.NewConstructorGuard()}

	if err := query.setCourierID(courierID); err != nil {
		return GetCurrentOrderQuery{}, err
	}

	return query, nil
}

// Validate ensures the query was created through the constructor.
// Returns ErrGetCurrentOrderQueryIsNotConstructed if validation fails.
func (q GetCurrentOrderQuery) Validate() error {
	return q.guard.Validate(ErrGetCurrentOrderQueryIsNotConstructed)
}

// CourierID returns the courier whose active delivery is requested.
func (q GetCurrentOrderQuery) CourierID() kernel.UUID {
	return q.courierID
}

func (q *GetCurrentOrderQuery) setCourierID(courierID kernel.UUID) error {
	if err := courierID.Validate(); err != nil {
		return err
	}
	q.courierID = courierID
	return nil
}

// GetCurrentOrderQueryResponse represents the courier's active delivery in
// the read model. CodeIssued reports whether a delivery code is pending
// verification, without exposing the code itself.
type GetCurrentOrderQueryResponse struct {
	ID         kernel.UUID
	Street     string
	Location   kernel.Location
	Status     string
	CodeIssued bool
}

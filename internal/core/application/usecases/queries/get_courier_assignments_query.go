package queries

import (
	"errors"
	"time"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/pkg/guard"
)

var (
	ErrGetCourierAssignmentsQueryIsNotConstructed = errors.New(
		"GetCourierAssignmentsQuery must be created via NewGetCourierAssignmentsQuery constructor",
	)
)

// GetCourierAssignmentsQuery retrieves the open assignment offers a courier
// can still act on. A courier that reconnects uses this to rebuild its offer
// list instead of waiting for the next push.
type GetCourierAssignmentsQuery struct {
	courierID kernel.UUID

	guard guard.ConstructorGuard
}

// NewGetCourierAssignmentsQuery creates a query for the courier's open offers.
func NewGetCourierAssignmentsQuery(courierID kernel.UUID) (GetCourierAssignmentsQuery, error) {
	query := GetCourierAssignmentsQuery{guard: guard.NewConstructorGuard()}

	if err := query.setCourierID(courierID); err != nil {
		return GetCourierAssignmentsQuery{}, err
	}

	return query, nil
}

// Validate ensures the query was created through the constructor.
// Returns ErrGetCourierAssignmentsQueryIsNotConstructed if validation fails.
func (q GetCourierAssignmentsQuery) Validate() error {
	return q.guard.Validate(ErrGetCourierAssignmentsQueryIsNotConstructed)
}

// CourierID returns the courier whose open offers are requested.
func (q GetCourierAssignmentsQuery) CourierID() kernel.UUID {
	return q.courierID
}

func (q *GetCourierAssignmentsQuery) setCourierID(courierID kernel.UUID) error {
	if err := courierID.Validate(); err != nil {
		return err
	}
	q.courierID = courierID
	return nil
}

// GetCourierAssignmentsQueryResponse represents one open offer in the read
// model, carrying enough context for the courier to decide.
type GetCourierAssignmentsQueryResponse struct {
	AssignmentID kernel.UUID
	OrderID      kernel.UUID
	Street       string
	CreatedAt    time.Time
}

package queries

import (
	"context"
	"time"

	"dispatch/internal/core/domain/model/assignment"
	"dispatch/internal/core/domain/model/kernel"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GetCourierAssignmentsQueryHandler retrieves a courier's open assignment
// offers from the database, joined with the order's street so the offer can
// be rendered without a second lookup.
type GetCourierAssignmentsQueryHandler struct {
	db *gorm.DB
}

// NewGetCourierAssignmentsQueryHandler creates a handler for open offer queries.
// Requires a GORM database connection for query execution.
func NewGetCourierAssignmentsQueryHandler(db *gorm.DB) GetCourierAssignmentsQueryHandler {
	return GetCourierAssignmentsQueryHandler{db: db}
}

// Handle executes the query to retrieve the courier's open offers, oldest
// first. Only Broadcasted assignments the courier has not declined appear.
func (h GetCourierAssignmentsQueryHandler) Handle(
	ctx context.Context,
	query GetCourierAssignmentsQuery,
) ([]GetCourierAssignmentsQueryResponse, error) {
	if err := query.Validate(); err != nil {
		return nil, err
	}

	offers := make([]GetCourierAssignmentsQueryResponse, 0)

	rows, err := h.db.WithContext(ctx).Raw(`
		SELECT
			assignments.id,
			assignments.order_id,
			orders.street,
			assignments.created_at
		FROM assignments
		JOIN assignment_candidates ON assignment_candidates.assignment_id = assignments.id
		JOIN orders ON orders.id = assignments.order_id
		WHERE assignment_candidates.courier_id = ?
		  AND assignments.status = ?
		ORDER BY assignments.created_at
	`, query.CourierID().Bytes(), int(assignment.Broadcasted)).Rows()
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var offer GetCourierAssignmentsQueryResponse
		var assignmentID, orderID uuid.UUID
		var createdAt time.Time

		err = rows.Scan(
			&assignmentID,
			&orderID,
			&offer.Street,
			&createdAt,
		)
		if err != nil {
			return nil, err
		}

		aID, idErr := kernel.UUIDFromBytes(assignmentID[:])
		if idErr != nil {
			return nil, idErr
		}
		oID, idErr := kernel.UUIDFromBytes(orderID[:])
		if idErr != nil {
			return nil, idErr
		}

		offer.AssignmentID = aID
		offer.OrderID = oID
		offer.CreatedAt = createdAt
		offers = append(offers, offer)
	}

	if err = rows.Err(); err != nil {
		return nil, err
	}

	return offers, nil
}

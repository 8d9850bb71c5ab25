package queries

import (
	"context"
	"database/sql"
	"errors"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/domain/model/order"
	"dispatch/internal/pkg/errs"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GetCurrentOrderQueryHandler retrieves the courier's active delivery from
// the database. At most one order per courier is in Assigned or
// OutForDelivery status at a time.
type GetCurrentOrderQueryHandler struct {
	db *gorm.DB
}

// NewGetCurrentOrderQueryHandler creates a handler for active delivery queries.
// Requires a GORM database connection for query execution.
func NewGetCurrentOrderQueryHandler(db *gorm.DB) GetCurrentOrderQueryHandler {
	return GetCurrentOrderQueryHandler{db: db}
}

// Handle executes the query to retrieve the courier's active delivery.
// Returns an ObjectNotFoundError when the courier has no delivery underway.
func (h GetCurrentOrderQueryHandler) Handle(
	ctx context.Context,
	query GetCurrentOrderQuery,
) (GetCurrentOrderQueryResponse, error) {
	if err := query.Validate(); err != nil {
		return GetCurrentOrderQueryResponse{}, err
	}

	row := h.db.WithContext(ctx).Raw(`
		SELECT
			id,
			street,
			latitude,
			longitude,
			status,
			delivery_code IS NOT NULL
		FROM orders
		WHERE courier_id = ?
		  AND status IN (?, ?)
	`, query.CourierID().Bytes(), int(order.Assigned), int(order.OutForDelivery)).Row()

	var response GetCurrentOrderQueryResponse
	var id uuid.UUID
	var latitude, longitude float64
	var status int

	err := row.Scan(
		&id,
		&response.Street,
		&latitude,
		&longitude,
		&status,
		&response.CodeIssued,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return GetCurrentOrderQueryResponse{}, errs.NewObjectNotFoundError(
				"order", "current for courier "+query.CourierID().String())
		}
		return GetCurrentOrderQueryResponse{}, err
	}

	orderID, err := kernel.UUIDFromBytes(id[:])
	if err != nil {
		return GetCurrentOrderQueryResponse{}, err
	}
	response.ID = orderID

	location, err := kernel.NewLocation(latitude, longitude)
	if err != nil {
		return GetCurrentOrderQueryResponse{}, err
	}
	response.Location = location
	response.Status = order.Status(status).String()

	return response, nil
}

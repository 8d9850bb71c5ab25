package queries

import (
	"context"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/domain/model/order"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GetUncompletedOrdersQueryHandler retrieves orders pending delivery from the
// database. Filters out terminal orders to provide active workload
// visibility.
//
// Example:
//
//	handler := NewGetUncompletedOrdersQueryHandler(db)
//	query := NewGetUncompletedOrdersQuery()
//
//	pendingOrders, err := handler.Handle(ctx, query)
//	if err != nil {
//	    log.Printf("Failed to get pending orders: %v", err)
//	    return err
//	}
//
//	if len(pendingOrders) > 0 {
//	    fmt.Printf("%d orders awaiting delivery\n", len(pendingOrders))
//	}
type GetUncompletedOrdersQueryHandler struct {
	db *gorm.DB
}

// NewGetUncompletedOrdersQueryHandler creates a handler for pending order queries.
// Requires a GORM database connection for query execution.
func NewGetUncompletedOrdersQueryHandler(db *gorm.DB) GetUncompletedOrdersQueryHandler {
	return GetUncompletedOrdersQueryHandler{db: db}
}

// Handle executes the query to retrieve all uncompleted orders.
// Returns orders in Placed, Assigned, or OutForDelivery status, sorted by
// order ID for consistent output.
func (h GetUncompletedOrdersQueryHandler) Handle(
	ctx context.Context,
	query GetUncompletedOrdersQuery,
) ([]GetUncompletedOrdersQueryResponse, error) {
	if err := query.Validate(); err != nil {
		return nil, err
	}

	orders := make([]GetUncompletedOrdersQueryResponse, 0)

	rows, err := h.db.WithContext(ctx).Raw(`
		SELECT
			id,
			street,
			latitude,
			longitude,
			status,
			courier_id
		FROM orders
		WHERE status NOT IN (?, ?)
		ORDER BY id
	`, int(order.Delivered), int(order.Failed)).Rows()
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var orderResp GetUncompletedOrdersQueryResponse
		var id uuid.UUID
		var latitude, longitude float64
		var status int
		var courierID *uuid.UUID

		err = rows.Scan(
			&id,
			&orderResp.Street,
			&latitude,
			&longitude,
			&status,
			&courierID,
		)
		if err != nil {
			return nil, err
		}

		orderID, idErr := kernel.UUIDFromBytes(id[:])
		if idErr != nil {
			return nil, idErr
		}
		orderResp.ID = orderID

		location, locErr := kernel.NewLocation(latitude, longitude)
		if locErr != nil {
			return nil, locErr
		}
		orderResp.Location = location
		orderResp.Status = order.Status(status).String()

		if courierID != nil {
			cID, courierErr := kernel.UUIDFromBytes((*courierID)[:])
			if courierErr != nil {
				return nil, courierErr
			}
			orderResp.CourierID = &cID
		}

		orders = append(orders, orderResp)
	}

	if err = rows.Err(); err != nil {
		return nil, err
	}

	return orders, nil
}

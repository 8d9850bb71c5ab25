// Package orderrepo provides data transfer objects and mapping functions for
// order persistence. It implements the repository pattern for the order
// aggregate, converting between domain entities and database rows.
package orderrepo

import (
	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/domain/model/order"

	"github.com/google/uuid"
)

// OrderDTO represents the database structure for persisting order aggregates.
// Indexed by status and courier binding for the dispatch sweep and the
// current-order lookup. The delivery code is stored only while a code is
// active; verification invalidates it.
type OrderDTO struct {
	ID               uuid.UUID  `gorm:"type:uuid;primaryKey"`
	Street           string     `gorm:"type:varchar(512);not null"`
	RecipientContact string     `gorm:"type:varchar(255);not null"`
	Latitude         float64    `gorm:"type:double precision;not null"`
	Longitude        float64    `gorm:"type:double precision;not null"`
	Status           int        `gorm:"index;not null"`
	CourierID        *uuid.UUID `gorm:"type:uuid;index"`
	DeliveryCode     *string    `gorm:"type:varchar(8)"`
	DeliveryVerified bool       `gorm:"not null"`
	CodeMismatches   int        `gorm:"not null"`
}

// TableName specifies the database table name for order entities.
// Overrides GORM's default naming convention to use "orders".
func (OrderDTO) TableName() string {
	return "orders"
}

// fromDomain converts an order domain aggregate to its database representation.
func fromDomain(order *order.Order) OrderDTO {
	var courierID *uuid.UUID
	if id := order.Courier(); id != nil {
		raw := id.Bytes()
		courierID = &raw
	}

	var deliveryCode *string
	if code := order.DeliveryCode(); code != nil {
		value := code.Value()
		deliveryCode = &value
	}

	return OrderDTO{
		ID:               order.ID().Bytes(),
		Street:           order.Street(),
		RecipientContact: order.RecipientContact(),
		Latitude:         order.Location().Latitude(),
		Longitude:        order.Location().Longitude(),
		Status:           int(order.Status()),
		CourierID:        courierID,
		DeliveryCode:     deliveryCode,
		DeliveryVerified: order.DeliveryVerified(),
		CodeMismatches:   order.CodeMismatches(),
	}
}

// toDomain converts a database DTO to an order domain aggregate using
// RestoreOrder.
func toDomain(dto OrderDTO) (*order.Order, error) {
	id, err := kernel.UUIDFromBytes(dto.ID[:])
	if err != nil {
		return nil, err
	}

	var courierID *kernel.UUID
	if dto.CourierID != nil {
		cID, courierErr := kernel.UUIDFromBytes((*dto.CourierID)[:])
		if courierErr != nil {
			return nil, courierErr
		}

		courierID = &cID
	}

	loc, err := kernel.NewLocation(dto.Latitude, dto.Longitude)
	if err != nil {
		return nil, err
	}

	var deliveryCode *order.DeliveryCode
	if dto.DeliveryCode != nil {
		code, codeErr := order.NewDeliveryCode(*dto.DeliveryCode)
		if codeErr != nil {
			return nil, codeErr
		}

		deliveryCode = &code
	}

	return order.RestoreOrder(
		id,
		dto.Street,
		loc,
		dto.RecipientContact,
		order.Status(dto.Status),
		courierID,
		deliveryCode,
		dto.DeliveryVerified,
		dto.CodeMismatches,
	)
}

// Package courierrepo provides data transfer objects and mapping functions for
// courier persistence. It implements the repository pattern for the courier
// aggregate, converting between domain entities and database rows.
package courierrepo

import (
	"dispatch/internal/core/domain/model/courier"
	"dispatch/internal/core/domain/model/kernel"

	"github.com/google/uuid"
)

// CourierDTO represents the database structure for persisting courier
// aggregates. The last known position is nullable because a courier has no
// location until the first report arrives.
type CourierDTO struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	Name      string    `gorm:"type:varchar(255);not null"`
	Available bool      `gorm:"not null"`
	Latitude  *float64  `gorm:"type:double precision"`
	Longitude *float64  `gorm:"type:double precision"`
}

// TableName specifies the database table name for courier entities.
// Overrides GORM's default naming convention to use "couriers" instead of "courier_dtos".
func (CourierDTO) TableName() string {
	return "couriers"
}

// fromDomain converts a courier domain aggregate to its database representation.
func fromDomain(courier *courier.Courier) CourierDTO {
	dto := CourierDTO{
		ID:        courier.ID().Bytes(),
		Name:      courier.Name(),
		Available: courier.IsAvailable(),
	}

	if location := courier.Location(); location != nil {
		latitude := location.Latitude()
		longitude := location.Longitude()
		dto.Latitude = &latitude
		dto.Longitude = &longitude
	}

	return dto
}

// toDomain converts a database DTO to a courier domain aggregate using
// RestoreCourier.
func toDomain(dto CourierDTO) (*courier.Courier, error) {
	id, err := kernel.UUIDFromBytes(dto.ID[:])
	if err != nil {
		return nil, err
	}

	var location *kernel.Location
	if dto.Latitude != nil && dto.Longitude != nil {
		loc, locErr := kernel.NewLocation(*dto.Latitude, *dto.Longitude)
		if locErr != nil {
			return nil, locErr
		}
		location = &loc
	}

	return courier.RestoreCourier(id, dto.Name, dto.Available, location)
}

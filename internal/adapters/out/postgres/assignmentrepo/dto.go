// Package assignmentrepo provides data transfer objects and mapping functions
// for assignment persistence. The package owns the storage-level conditional
// write that resolves the race between couriers accepting the same broadcast.
package assignmentrepo

import (
	"time"

	"dispatch/internal/core/domain/model/assignment"
	"dispatch/internal/core/domain/model/kernel"

	"github.com/google/uuid"
)

// AssignmentDTO represents the database structure for persisting assignment
// aggregates. The candidate set lives in a child table so that declines
// shrink it row by row.
type AssignmentDTO struct {
	ID         uuid.UUID      `gorm:"type:uuid;primaryKey"`
	OrderID    uuid.UUID      `gorm:"type:uuid;not null;index"`
	Status     int            `gorm:"index;not null"`
	AcceptedBy *uuid.UUID     `gorm:"type:uuid"`
	CreatedAt  time.Time      `gorm:"not null;index"`
	Candidates []CandidateDTO `gorm:"foreignKey:AssignmentID;constraint:OnDelete:CASCADE"`
}

// TableName specifies the database table name for assignment entities.
// Overrides GORM's default naming convention to use "assignments".
func (AssignmentDTO) TableName() string {
	return "assignments"
}

// CandidateDTO represents one courier in an assignment's broadcast set.
type CandidateDTO struct {
	AssignmentID uuid.UUID `gorm:"type:uuid;primaryKey"`
	CourierID    uuid.UUID `gorm:"type:uuid;primaryKey;index"`
}

// TableName specifies the database table name for broadcast set entries.
func (CandidateDTO) TableName() string {
	return "assignment_candidates"
}

// fromDomain converts an assignment domain aggregate to its database
// representation.
func fromDomain(assignment *assignment.Assignment) AssignmentDTO {
	assignmentID := assignment.ID().Bytes()

	var acceptedBy *uuid.UUID
	if id := assignment.AcceptedBy(); id != nil {
		raw := id.Bytes()
		acceptedBy = &raw
	}

	candidates := assignment.Candidates()
	candidateDTOs := make([]CandidateDTO, 0, len(candidates))
	for _, candidate := range candidates {
		candidateDTOs = append(candidateDTOs, CandidateDTO{
			AssignmentID: assignmentID,
			CourierID:    candidate.Bytes(),
		})
	}

	return AssignmentDTO{
		ID:         assignmentID,
		OrderID:    assignment.OrderID().Bytes(),
		Status:     int(assignment.Status()),
		AcceptedBy: acceptedBy,
		CreatedAt:  assignment.CreatedAt(),
		Candidates: candidateDTOs,
	}
}

// toDomain converts a database DTO to an assignment domain aggregate using
// RestoreAssignment.
func toDomain(dto AssignmentDTO) (*assignment.Assignment, error) {
	id, err := kernel.UUIDFromBytes(dto.ID[:])
	if err != nil {
		return nil, err
	}

	orderID, err := kernel.UUIDFromBytes(dto.OrderID[:])
	if err != nil {
		return nil, err
	}

	var acceptedBy *kernel.UUID
	if dto.AcceptedBy != nil {
		courierID, courierErr := kernel.UUIDFromBytes((*dto.AcceptedBy)[:])
		if courierErr != nil {
			return nil, courierErr
		}

		acceptedBy = &courierID
	}

	candidates := make([]kernel.UUID, 0, len(dto.Candidates))
	for _, candidate := range dto.Candidates {
		courierID, candidateErr := kernel.UUIDFromBytes(candidate.CourierID[:])
		if candidateErr != nil {
			return nil, candidateErr
		}
		candidates = append(candidates, courierID)
	}

	return assignment.RestoreAssignment(
		id,
		orderID,
		candidates,
		acceptedBy,
		assignment.Status(dto.Status),
		dto.CreatedAt,
	)
}

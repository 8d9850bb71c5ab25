package assignmentrepo

import (
	"context"
	"errors"
	"time"

	"dispatch/internal/core/domain/model/assignment"
	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/pkg/errs"

	"gorm.io/gorm"
)

// GormAssignmentRepository implements AssignmentRepository using GORM.
type GormAssignmentRepository struct {
	db      *gorm.DB
	tracker aggregateTracker
}

// aggregateTracker defines the interface for tracking aggregates.
type aggregateTracker interface {
	TrackAggregate(id kernel.UUID, aggregate any)
}

// NewGormAssignmentRepository creates a new GORM assignment repository.
func NewGormAssignmentRepository(db *gorm.DB, tracker aggregateTracker) *GormAssignmentRepository {
	return &GormAssignmentRepository{
		db:      db,
		tracker: tracker,
	}
}

// Add saves a new assignment with its broadcast set to the database.
func (r *GormAssignmentRepository) Add(ctx context.Context, aggregate *assignment.Assignment) error {
	if err := aggregate.Validate(); err != nil {
		return err
	}

	dto := fromDomain(aggregate)
	if err := r.db.WithContext(ctx).Create(&dto).Error; err != nil {
		return err
	}

	r.tracker.TrackAggregate(aggregate.ID(), aggregate)
	return nil
}

// Update saves an existing assignment. The candidate rows are rewritten so
// that declines shrink the stored broadcast set.
func (r *GormAssignmentRepository) Update(ctx context.Context, aggregate *assignment.Assignment) error {
	if err := aggregate.Validate(); err != nil {
		return err
	}

	dto := fromDomain(aggregate)
	db := r.db.WithContext(ctx)

	result := db.Model(&AssignmentDTO{}).
		Where("id = ?", dto.ID).
		Select("order_id", "status", "accepted_by", "created_at").
		Updates(&dto)
	if result.Error != nil {
		return result.Error
	}

	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}

	if err := db.Where("assignment_id = ?", dto.ID).Delete(&CandidateDTO{}).Error; err != nil {
		return err
	}

	if len(dto.Candidates) > 0 {
		if err := db.Create(&dto.Candidates).Error; err != nil {
			return err
		}
	}

	r.tracker.TrackAggregate(aggregate.ID(), aggregate)
	return nil
}

// Get retrieves an assignment by ID.
func (r *GormAssignmentRepository) Get(ctx context.Context, id kernel.UUID) (*assignment.Assignment, error) {
	if err := id.Validate(); err != nil {
		return nil, err
	}

	return r.getByID(ctx, id)
}

// GetActiveByOrder retrieves the order's assignment in Broadcasted or
// Accepted status. At most one active assignment exists per order.
func (r *GormAssignmentRepository) GetActiveByOrder(ctx context.Context, orderID kernel.UUID) (*assignment.Assignment, error) {
	if err := orderID.Validate(); err != nil {
		return nil, err
	}

	var dto AssignmentDTO
	err := r.db.WithContext(ctx).
		Preload("Candidates").
		Where("order_id = ?", orderID.Bytes()).
		Where("status IN ?", activeStatuses()).
		First(&dto).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.NewObjectNotFoundError("assignment", "active for order "+orderID.String())
		}
		return nil, err
	}

	return toDomain(dto)
}

// GetAllBroadcastedTo retrieves the open broadcasts the courier is still a
// candidate for, oldest first.
func (r *GormAssignmentRepository) GetAllBroadcastedTo(ctx context.Context, courierID kernel.UUID) ([]*assignment.Assignment, error) {
	if err := courierID.Validate(); err != nil {
		return nil, err
	}

	var dtos []AssignmentDTO
	err := r.db.WithContext(ctx).
		Preload("Candidates").
		Joins("JOIN assignment_candidates ON assignment_candidates.assignment_id = assignments.id").
		Where("assignment_candidates.courier_id = ?", courierID.Bytes()).
		Where("assignments.status = ?", int(assignment.Broadcasted)).
		Order("assignments.created_at").
		Find(&dtos).Error
	if err != nil {
		return nil, err
	}

	return toDomainAll(dtos)
}

// GetAllBroadcastedBefore retrieves open broadcasts older than the cutoff,
// the input of the expiry sweep.
func (r *GormAssignmentRepository) GetAllBroadcastedBefore(ctx context.Context, cutoff time.Time) ([]*assignment.Assignment, error) {
	var dtos []AssignmentDTO
	err := r.db.WithContext(ctx).
		Preload("Candidates").
		Where("status = ?", int(assignment.Broadcasted)).
		Where("created_at < ?", cutoff).
		Find(&dtos).Error
	if err != nil {
		return nil, err
	}

	return toDomainAll(dtos)
}

// Accept resolves the accept race with a single conditional UPDATE. The row
// flips from Broadcasted to Accepted only while accepted_by is still NULL
// and the courier is in the broadcast set, so exactly one accept can ever
// take effect no matter how many arrive concurrently.
//
// Losers are classified from the row state after the write: a repeated
// accept by the winner succeeds, anybody else gets ErrAlreadyTaken, and
// accepts against an expired or rejected broadcast get ErrStaleAssignment.
func (r *GormAssignmentRepository) Accept(ctx context.Context, id kernel.UUID, courierID kernel.UUID) (*assignment.Assignment, error) {
	if err := id.Validate(); err != nil {
		return nil, err
	}
	if err := courierID.Validate(); err != nil {
		return nil, err
	}

	result := r.db.WithContext(ctx).
		Model(&AssignmentDTO{}).
		Where("id = ?", id.Bytes()).
		Where("status = ?", int(assignment.Broadcasted)).
		Where("accepted_by IS NULL").
		Where(
			"EXISTS (SELECT 1 FROM assignment_candidates WHERE assignment_id = assignments.id AND courier_id = ?)",
			courierID.Bytes(),
		).
		Updates(map[string]any{
			"status":      int(assignment.Accepted),
			"accepted_by": courierID.Bytes(),
		})
	if result.Error != nil {
		return nil, result.Error
	}

	won := result.RowsAffected > 0

	current, err := r.getByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if won {
		return current, nil
	}

	if err := classifyLoss(current, courierID); err != nil {
		return nil, err
	}

	return current, nil
}

func (r *GormAssignmentRepository) getByID(ctx context.Context, id kernel.UUID) (*assignment.Assignment, error) {
	var dto AssignmentDTO
	if err := r.db.WithContext(ctx).Preload("Candidates").First(&dto, "id = ?", id.Bytes()).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.NewObjectNotFoundError("assignment", id.String())
		}
		return nil, err
	}

	return toDomain(dto)
}

// classifyLoss maps the post-write row state to the error the losing accept
// should surface.
func classifyLoss(current *assignment.Assignment, courierID kernel.UUID) error {
	switch {
	case current.Status() == assignment.Accepted:
		if acceptedBy := current.AcceptedBy(); acceptedBy != nil && acceptedBy.IsEqual(courierID) {
			return nil
		}
		return assignment.ErrAlreadyTaken
	case current.Status().IsTerminal():
		return assignment.ErrStaleAssignment
	case !current.IsCandidate(courierID):
		return assignment.ErrNotCandidate
	default:
		// Broadcasted, candidate, yet the conditional write missed: a
		// concurrent winner holds the row lock and has not committed.
		return assignment.ErrAlreadyTaken
	}
}

func activeStatuses() []int {
	return []int{int(assignment.Broadcasted), int(assignment.Accepted)}
}

func toDomainAll(dtos []AssignmentDTO) ([]*assignment.Assignment, error) {
	assignments := make([]*assignment.Assignment, 0, len(dtos))
	for _, dto := range dtos {
		a, err := toDomain(dto)
		if err != nil {
			return nil, err
		}
		assignments = append(assignments, a)
	}

	return assignments, nil
}

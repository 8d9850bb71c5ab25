package services

import (
	"errors"

	"dispatch/internal/core/domain/model/courier"
	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/domain/model/order"
)

// ErrNoCandidates is returned when no courier qualifies for an order's
// broadcast. This occurs when no couriers are provided, none of them are
// available, or none is within the configured service radius.
var ErrNoCandidates = errors.New("no candidate couriers available")

// CandidateSelector is a domain service that picks the set of couriers an
// order's assignment is broadcast to.
//
// Business rules:
//   - Orders must be in a dispatchable status
//   - Only available couriers qualify
//   - With a positive service radius, a courier additionally needs a known
//     location within that many kilometers of the delivery destination
//
// Example usage:
//
//	selector := services.NewCandidateSelector(5.0)
//	candidates, err := selector.SelectCandidates(order, couriers)
//	if errors.Is(err, services.ErrNoCandidates) {
//	    // Nobody to broadcast to, retry later
//	    return
//	}
type CandidateSelector struct {
	// radiusKm limits candidates to couriers within this distance of the
	// delivery destination. Zero disables the radius filter; couriers with no
	// reported location then still qualify.
	radiusKm float64
}

// NewCandidateSelector creates a CandidateSelector with the given service
// radius in kilometers. A non-positive radius disables distance filtering.
func NewCandidateSelector(radiusKm float64) CandidateSelector {
	return CandidateSelector{radiusKm: radiusKm}
}

// SelectCandidates returns the IDs of every courier the order's assignment
// should be offered to.
func (s CandidateSelector) SelectCandidates(ord *order.Order, couriers []*courier.Courier) ([]kernel.UUID, error) {
	if err := ord.Validate(); err != nil {
		return nil, err
	}

	if err := ord.ValidateAssign(); err != nil {
		return nil, err
	}

	var candidates []kernel.UUID
	for _, c := range couriers {
		if err := c.Validate(); err != nil {
			return nil, err
		}

		if !c.IsAvailable() {
			continue
		}

		if s.radiusKm > 0 {
			if c.Location() == nil {
				continue
			}

			distance, err := c.DistanceTo(ord.Location())
			if err != nil {
				return nil, err
			}
			if distance > s.radiusKm {
				continue
			}
		}

		candidates = append(candidates, c.ID())
	}

	if len(candidates) == 0 {
		return nil, ErrNoCandidates
	}

	return candidates, nil
}

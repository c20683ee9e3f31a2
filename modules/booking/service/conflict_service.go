package service

import (
	"campus-scheduler/core/errors"
	"campus-scheduler/modules/booking/dto"
	"campus-scheduler/modules/timeline/entity"
)

// ConflictService is the client-side scheduling conflict detector. Its
// verdict is advisory: callers decide whether to proceed, and the upstream
// check-conflicts endpoint wins at commit time.
type ConflictService struct{}

func NewConflictService() *ConflictService {
	return &ConflictService{}
}

// FindConflicts scans the existing timeline for entries colliding with the
// proposal. Cancelled entries never conflict, the proposal's own entry
// (ExcludeID) is skipped, and a collision requires a time overlap plus a
// shared venue or resource. Location matching is exact and case-sensitive;
// entries without a location never match on venue. An empty result is the
// success path, not an error.
func (s *ConflictService) FindConflicts(proposed dto.BookingProposal, existing []entity.CalendarEntry) ([]entity.CalendarEntry, *errors.AppError) {
	proposedRange, appErr := entity.NewTimeRange(proposed.Start, proposed.End)
	if appErr != nil {
		return nil, appErr
	}

	proposedResources := make(map[string]bool, len(proposed.ResourceIDs))
	for _, id := range proposed.ResourceIDs {
		proposedResources[id] = true
	}

	conflicts := make([]entity.CalendarEntry, 0)
	for _, candidate := range existing {
		if candidate.State == entity.StateCancelled {
			continue
		}
		if proposed.ExcludeID != "" && candidate.ID == proposed.ExcludeID {
			continue
		}
		if !proposedRange.Overlaps(candidate.Range()) {
			continue
		}
		if s.sharesVenue(proposed, candidate) || s.sharesResource(proposedResources, candidate) {
			conflicts = append(conflicts, candidate)
		}
	}
	return conflicts, nil
}

func (s *ConflictService) sharesVenue(proposed dto.BookingProposal, candidate entity.CalendarEntry) bool {
	if proposed.Location == "" || candidate.Location == "" {
		return false
	}
	return proposed.Location == candidate.Location
}

func (s *ConflictService) sharesResource(proposedResources map[string]bool, candidate entity.CalendarEntry) bool {
	for _, id := range candidate.ResourceIDs {
		if proposedResources[id] {
			return true
		}
	}
	return false
}

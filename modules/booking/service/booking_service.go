package service

import (
	"context"
	"time"

	"campus-scheduler/core/constants"
	"campus-scheduler/core/errors"
	"campus-scheduler/core/logger"
	"campus-scheduler/core/mutation"
	"campus-scheduler/core/upstream"
	"campus-scheduler/core/utils"
	"campus-scheduler/modules/booking/dto"
	"campus-scheduler/modules/booking/repository"
	"campus-scheduler/modules/timeline/entity"
	timelinesvc "campus-scheduler/modules/timeline/service"

	"github.com/google/uuid"
)

type BookingService interface {
	CheckConflicts(ctx context.Context, proposal dto.BookingProposal) ([]entity.CalendarEntry, *errors.AppError)
	Create(ctx context.Context, userID uuid.UUID, req *dto.CreateBookingRequest) (*entity.CalendarEntry, *errors.AppError)
	Update(ctx context.Context, userID uuid.UUID, bookingID string, req *dto.UpdateBookingRequest) (*entity.CalendarEntry, *errors.AppError)
	Delete(ctx context.Context, userID uuid.UUID, bookingID string) *errors.AppError
}

type bookingService struct {
	client      upstream.Client
	timeline    timelinesvc.TimelineService
	merge       *timelinesvc.MergeService
	conflicts   *ConflictService
	overlay     *repository.OverlayRepository
	coordinator *mutation.Coordinator
}

func NewBookingService(
	client upstream.Client,
	timeline timelinesvc.TimelineService,
	merge *timelinesvc.MergeService,
	conflicts *ConflictService,
	overlay *repository.OverlayRepository,
	coordinator *mutation.Coordinator,
) BookingService {
	return &bookingService{
		client:      client,
		timeline:    timeline,
		merge:       merge,
		conflicts:   conflicts,
		overlay:     overlay,
		coordinator: coordinator,
	}
}

// CheckConflicts runs the local detector against the current timeline and
// merges in the upstream verdict when the server check is available. Server
// findings win over local ones; a missing or failing server check degrades
// to the local result because the pre-flight is advisory either way.
func (s *bookingService) CheckConflicts(ctx context.Context, proposal dto.BookingProposal) ([]entity.CalendarEntry, *errors.AppError) {
	existing, appErr := s.fetchWindow(ctx, proposal.Start, proposal.End)
	if appErr != nil {
		return nil, appErr
	}

	local, appErr := s.conflicts.FindConflicts(proposal, existing)
	if appErr != nil {
		return nil, appErr
	}

	serverResult, serverErr := s.client.CheckConflicts(ctx, upstream.ConflictCheckPayload{
		Start:       upstream.FormatTime(proposal.Start),
		End:         upstream.FormatTime(proposal.End),
		Location:    proposal.Location,
		ResourceIDs: proposal.ResourceIDs,
		ExcludeID:   proposal.ExcludeID,
	})
	if serverErr != nil {
		logger.Warn("BookingService:CheckConflicts:ServerCheckUnavailable", "error", serverErr)
		return local, nil
	}

	return unionConflicts(local, serverResult.ConflictingIDs, existing), nil
}

func (s *bookingService) Create(ctx context.Context, userID uuid.UUID, req *dto.CreateBookingRequest) (*entity.CalendarEntry, *errors.AppError) {
	logger.Info("BookingService:Create:Start", "user_id", userID, "title", req.Title)

	proposal := dto.BookingProposal{
		Start:       req.Start,
		End:         req.End,
		Location:    req.Location,
		ResourceIDs: req.ResourceIDs,
	}
	if appErr := s.preflight(ctx, proposal, req.Force); appErr != nil {
		return nil, appErr
	}

	// Placeholder identity until the server assigns the real one.
	pendingID := "pending-" + utils.GenerateID()
	optimistic := entity.CalendarEntry{
		ID:          pendingID,
		Source:      entity.SourceSchedule,
		Title:       req.Title,
		Description: req.Description,
		Start:       req.Start,
		End:         req.End,
		Location:    req.Location,
		Audience:    entity.NormalizeAudience(req.Audience),
		OwnerID:     userID.String(),
		RawStatus:   "SCHEDULED",
		State:       entity.StateActive,
		ResourceIDs: req.ResourceIDs,
		Color:       constants.ColorSchedule,
	}

	result, appErr := s.coordinator.Execute(ctx, mutation.EntityBooking, pendingID, userID, mutation.Operation{
		Description: "Create booking",
		Apply: func(ctx context.Context) *errors.AppError {
			s.overlay.PutPending(optimistic)
			return nil
		},
		Call: func(ctx context.Context) (any, *errors.AppError) {
			created, appErr := s.client.CreateSchedule(ctx, s.payload(req.Title, req.Description, req.Start, req.End, req.Location, req.Audience, req.ResourceIDs))
			if appErr != nil {
				return nil, appErr
			}
			return created, nil
		},
		Confirm: func(ctx context.Context, result any) *errors.AppError {
			s.overlay.Confirm(pendingID)
			return nil
		},
		Rollback: func(ctx context.Context) {
			s.overlay.RemovePending(pendingID)
		},
	})
	if appErr != nil {
		return nil, appErr
	}

	created := result.(*upstream.RawSchedule)
	entry, ok := s.merge.MapSchedule(*created)
	if !ok {
		return nil, errors.NewAppError(errors.ErrUpstreamRejected, "Upstream returned a malformed booking", nil)
	}

	logger.Info("BookingService:Create:Success", "user_id", userID, "booking_id", entry.ID)
	return &entry, nil
}

func (s *bookingService) Update(ctx context.Context, userID uuid.UUID, bookingID string, req *dto.UpdateBookingRequest) (*entity.CalendarEntry, *errors.AppError) {
	logger.Info("BookingService:Update:Start", "user_id", userID, "booking_id", bookingID)

	if !req.End.After(req.Start) {
		return nil, errors.NewAppError(errors.ErrInvalidRange, "Booking end must be after start", nil)
	}

	// Fetch the prior booking by id rather than through a time window: a
	// reschedule may move the booking arbitrarily far from its old slot.
	raw, appErr := s.client.FetchSchedule(ctx, bookingID)
	if appErr != nil {
		if appErr.Code == errors.ErrNotFound {
			return nil, errors.NewAppError(errors.ErrNotFound, "Booking not found", nil)
		}
		return nil, appErr
	}
	priorEntry, ok := s.merge.MapSchedule(*raw)
	if !ok {
		return nil, errors.NewAppError(errors.ErrUpstreamRejected, "Upstream returned a malformed booking", nil)
	}
	prior := &priorEntry
	if prior.OwnerID != "" && prior.OwnerID != userID.String() {
		return nil, errors.NewAppError(errors.ErrForbidden, "Only the booking owner may modify it", nil)
	}

	proposal := dto.BookingProposal{
		Start:       req.Start,
		End:         req.End,
		Location:    req.Location,
		ResourceIDs: req.ResourceIDs,
		ExcludeID:   bookingID,
	}
	if appErr := s.preflight(ctx, proposal, req.Force); appErr != nil {
		return nil, appErr
	}

	optimistic := *prior
	optimistic.Title = req.Title
	optimistic.Description = req.Description
	optimistic.Start = req.Start
	optimistic.End = req.End
	optimistic.Location = req.Location
	optimistic.Audience = entity.NormalizeAudience(req.Audience)
	optimistic.ResourceIDs = req.ResourceIDs

	result, appErr := s.coordinator.Execute(ctx, mutation.EntityBooking, bookingID, userID, mutation.Operation{
		Description: "Update booking",
		Apply: func(ctx context.Context) *errors.AppError {
			s.overlay.PutPending(optimistic)
			return nil
		},
		Call: func(ctx context.Context) (any, *errors.AppError) {
			updated, appErr := s.client.UpdateSchedule(ctx, bookingID, s.payload(req.Title, req.Description, req.Start, req.End, req.Location, req.Audience, req.ResourceIDs))
			if appErr != nil {
				return nil, appErr
			}
			return updated, nil
		},
		Confirm: func(ctx context.Context, result any) *errors.AppError {
			s.overlay.Confirm(bookingID)
			return nil
		},
		Rollback: func(ctx context.Context) {
			s.overlay.RemovePending(bookingID)
		},
	})
	if appErr != nil {
		return nil, appErr
	}

	updated := result.(*upstream.RawSchedule)
	entry, ok := s.merge.MapSchedule(*updated)
	if !ok {
		return nil, errors.NewAppError(errors.ErrUpstreamRejected, "Upstream returned a malformed booking", nil)
	}

	logger.Info("BookingService:Update:Success", "user_id", userID, "booking_id", bookingID)
	return &entry, nil
}

func (s *bookingService) Delete(ctx context.Context, userID uuid.UUID, bookingID string) *errors.AppError {
	logger.Info("BookingService:Delete:Start", "user_id", userID, "booking_id", bookingID)

	_, appErr := s.coordinator.Execute(ctx, mutation.EntityBooking, bookingID, userID, mutation.Operation{
		Description: "Delete booking",
		Apply: func(ctx context.Context) *errors.AppError {
			s.overlay.MarkDeleted(bookingID)
			return nil
		},
		Call: func(ctx context.Context) (any, *errors.AppError) {
			if appErr := s.client.DeleteSchedule(ctx, bookingID); appErr != nil {
				return nil, appErr
			}
			return nil, nil
		},
		Confirm: func(ctx context.Context, result any) *errors.AppError {
			s.overlay.Confirm(bookingID)
			return nil
		},
		Rollback: func(ctx context.Context) {
			s.overlay.UnmarkDeleted(bookingID)
		},
	})
	if appErr != nil {
		return appErr
	}

	logger.Info("BookingService:Delete:Success", "user_id", userID, "booking_id", bookingID)
	return nil
}

// preflight surfaces conflicts as ErrConflictDetected unless the caller
// explicitly forces through. Detection stays advisory: force always wins,
// and commit-time rejection by the server still rolls back.
func (s *bookingService) preflight(ctx context.Context, proposal dto.BookingProposal, force bool) *errors.AppError {
	conflicts, appErr := s.CheckConflicts(ctx, proposal)
	if appErr != nil {
		return appErr
	}
	if len(conflicts) > 0 && !force {
		return errors.NewAppError(errors.ErrConflictDetected, "Proposed booking conflicts with existing entries", conflicts)
	}
	return nil
}

// fetchWindow pads the proposal range by a day on each side so bordering
// bookings are present for the detector.
func (s *bookingService) fetchWindow(ctx context.Context, start, end time.Time) ([]entity.CalendarEntry, *errors.AppError) {
	if !end.After(start) {
		return nil, errors.NewAppError(errors.ErrInvalidRange, "Booking end must be after start", nil)
	}
	return s.timeline.GetEntries(ctx, start.Add(-24*time.Hour), end.Add(24*time.Hour))
}

func (s *bookingService) payload(title, description string, start, end time.Time, location, audience string, resourceIDs []string) upstream.SchedulePayload {
	return upstream.SchedulePayload{
		Title:       title,
		Description: description,
		Start:       upstream.FormatTime(start),
		End:         upstream.FormatTime(end),
		Location:    location,
		Audience:    audience,
		ResourceIDs: resourceIDs,
	}
}

func findByID(entries []entity.CalendarEntry, id string) *entity.CalendarEntry {
	for i := range entries {
		if entries[i].ID == id {
			return &entries[i]
		}
	}
	return nil
}

// unionConflicts adds server-reported ids missing from the local verdict.
func unionConflicts(local []entity.CalendarEntry, serverIDs []string, existing []entity.CalendarEntry) []entity.CalendarEntry {
	seen := make(map[string]bool, len(local))
	for _, c := range local {
		seen[c.ID] = true
	}
	out := local
	for _, id := range serverIDs {
		if seen[id] {
			continue
		}
		if found := findByID(existing, id); found != nil {
			out = append(out, *found)
			seen[id] = true
		}
	}
	return out
}

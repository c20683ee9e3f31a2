package service

import (
	"context"
	"sort"
	"time"

	"campus-scheduler/core/errors"
	"campus-scheduler/core/logger"
	"campus-scheduler/core/upstream"
	bookingrepo "campus-scheduler/modules/booking/repository"
	"campus-scheduler/modules/timeline/entity"
)

type TimelineService interface {
	// GetTimeline returns the merged, audience-filtered timeline for the
	// viewer, sorted by start ascending, with pending optimistic booking
	// mutations spliced in.
	GetTimeline(ctx context.Context, viewerID, role string, from, to time.Time) ([]entity.CalendarEntry, *errors.AppError)

	// GetEntries returns the merged timeline without audience filtering.
	// Used by the conflict detector, which must see every active booking.
	GetEntries(ctx context.Context, from, to time.Time) ([]entity.CalendarEntry, *errors.AppError)
}

type timelineService struct {
	client  upstream.Client
	merge   *MergeService
	overlay *bookingrepo.OverlayRepository
}

func NewTimelineService(client upstream.Client, merge *MergeService, overlay *bookingrepo.OverlayRepository) TimelineService {
	return &timelineService{
		client:  client,
		merge:   merge,
		overlay: overlay,
	}
}

func (s *timelineService) GetEntries(ctx context.Context, from, to time.Time) ([]entity.CalendarEntry, *errors.AppError) {
	schedules, appErr := s.client.FetchSchedules(ctx, from, to)
	if appErr != nil {
		logger.Error("TimelineService:GetEntries:FetchSchedules:Error", "error", appErr)
		return nil, appErr
	}

	events, appErr := s.client.FetchEvents(ctx)
	if appErr != nil {
		logger.Error("TimelineService:GetEntries:FetchEvents:Error", "error", appErr)
		return nil, appErr
	}

	merged := s.merge.Merge(schedules, events)
	return s.overlay.Apply(merged), nil
}

func (s *timelineService) GetTimeline(ctx context.Context, viewerID, role string, from, to time.Time) ([]entity.CalendarEntry, *errors.AppError) {
	logger.Info("TimelineService:GetTimeline:Start", "viewer_id", viewerID, "role", role)

	entries, appErr := s.GetEntries(ctx, from, to)
	if appErr != nil {
		return nil, appErr
	}

	visible := make([]entity.CalendarEntry, 0, len(entries))
	for _, e := range entries {
		if e.VisibleTo(role, viewerID) {
			visible = append(visible, e)
		}
	}

	sort.Slice(visible, func(i, j int) bool {
		if visible[i].Start.Equal(visible[j].Start) {
			return visible[i].ID < visible[j].ID
		}
		return visible[i].Start.Before(visible[j].Start)
	})

	logger.Info("TimelineService:GetTimeline:Success", "viewer_id", viewerID, "count", len(visible))
	return visible, nil
}

package service

import (
	"context"
	"strings"

	"campus-scheduler/core/constants"
	"campus-scheduler/core/errors"
	"campus-scheduler/core/logger"
	"campus-scheduler/core/mutation"
	"campus-scheduler/core/upstream"
	"campus-scheduler/modules/registration/dto"
	"campus-scheduler/modules/registration/entity"

	"github.com/google/uuid"
)

type RegistrationService interface {
	Register(ctx context.Context, userID uuid.UUID, eventID string) (*dto.RegisterResponse, *errors.AppError)
	Unregister(ctx context.Context, userID uuid.UUID, eventID string) (*dto.RegisterResponse, *errors.AppError)
	Status(ctx context.Context, userID uuid.UUID, eventID string) dto.RegistrationStatusResponse
	List(ctx context.Context, userID uuid.UUID) (*dto.RegistrationListResponse, *errors.AppError)
}

type registrationService struct {
	client      upstream.Client
	reconciler  *Reconciler
	coordinator *mutation.Coordinator
}

func NewRegistrationService(client upstream.Client, reconciler *Reconciler, coordinator *mutation.Coordinator) RegistrationService {
	return &registrationService{
		client:      client,
		reconciler:  reconciler,
		coordinator: coordinator,
	}
}

// Register runs the optimistic registration pipeline under a ticket keyed by
// (user, event): PENDING is visible immediately, the upstream call confirms
// or rolls back, and a second click while in flight fails with Busy without
// a second network call.
func (s *registrationService) Register(ctx context.Context, userID uuid.UUID, eventID string) (*dto.RegisterResponse, *errors.AppError) {
	return s.execute(ctx, userID, eventID, entity.StatusRegistered, "Event registration")
}

func (s *registrationService) Unregister(ctx context.Context, userID uuid.UUID, eventID string) (*dto.RegisterResponse, *errors.AppError) {
	return s.execute(ctx, userID, eventID, entity.StatusNone, "Event unregistration")
}

func (s *registrationService) execute(ctx context.Context, userID uuid.UUID, eventID string, target entity.RegistrationStatus, description string) (*dto.RegisterResponse, *errors.AppError) {
	uid := userID.String()
	eventID = normalizeEventID(eventID)
	key := ticketKey(uid, eventID)
	logger.Info("RegistrationService:Execute:Start", "user_id", uid, "event_id", eventID, "target", target)

	result, appErr := s.coordinator.Execute(ctx, mutation.EntityRegistration, key, userID, mutation.Operation{
		Description: description,
		Apply: func(ctx context.Context) *errors.AppError {
			return s.reconciler.ApplyOptimistic(ctx, uid, eventID, target)
		},
		Call: func(ctx context.Context) (any, *errors.AppError) {
			if target == entity.StatusRegistered {
				return s.call(s.client.Register(ctx, eventID, uid))
			}
			return s.call(s.client.Unregister(ctx, eventID, uid))
		},
		Confirm: func(ctx context.Context, result any) *errors.AppError {
			// The returned entity's attendee list is the server truth,
			// not our own optimistic guess.
			event := result.(*upstream.RawEvent)
			s.reconciler.Confirm(ctx, uid, eventID, serverStatus(event, uid))
			return nil
		},
		Rollback: func(ctx context.Context) {
			s.reconciler.Rollback(ctx, uid, eventID)
		},
	})
	if appErr != nil {
		return nil, appErr
	}

	event := result.(*upstream.RawEvent)
	return &dto.RegisterResponse{
		EventID:   eventID,
		Status:    s.reconciler.CurrentStatus(ctx, uid, eventID),
		Attendees: len(event.Attendees),
	}, nil
}

func (s *registrationService) call(event *upstream.RawEvent, appErr *errors.AppError) (any, *errors.AppError) {
	if appErr != nil {
		return nil, appErr
	}
	return event, nil
}

func (s *registrationService) Status(ctx context.Context, userID uuid.UUID, eventID string) dto.RegistrationStatusResponse {
	eventID = normalizeEventID(eventID)
	record := s.reconciler.Record(ctx, userID.String(), eventID)
	return dto.RegistrationStatusResponse{
		EventID: eventID,
		Status:  record.Status.ViewStatus(),
		Source:  record.Source,
	}
}

// List refreshes the confirmed snapshot from the upstream attendee lists and
// returns the reconciled status for every known event.
func (s *registrationService) List(ctx context.Context, userID uuid.UUID) (*dto.RegistrationListResponse, *errors.AppError) {
	uid := userID.String()

	events, appErr := s.client.FetchEvents(ctx)
	if appErr != nil {
		logger.Error("RegistrationService:List:FetchEvents:Error", "error", appErr, "user_id", uid)
		return nil, appErr
	}

	registered := make([]string, 0)
	for _, event := range events {
		if attends(event, uid) {
			registered = append(registered, event.ID)
		}
	}
	s.reconciler.SetSnapshot(ctx, uid, registered)

	resp := &dto.RegistrationListResponse{Registrations: make([]dto.RegistrationStatusResponse, 0, len(events))}
	for _, event := range events {
		record := s.reconciler.Record(ctx, uid, event.ID)
		if record.Status == entity.StatusNone {
			continue
		}
		resp.Registrations = append(resp.Registrations, dto.RegistrationStatusResponse{
			EventID: event.ID,
			Status:  record.Status.ViewStatus(),
			Source:  record.Source,
		})
	}
	return resp, nil
}

// ticketKey scopes the single-ticket rule to the (user, event) pair; two
// different users registering for the same event never block each other.
func ticketKey(userID, eventID string) string {
	return userID + ":" + eventID
}

func attends(event upstream.RawEvent, userID string) bool {
	for _, attendee := range event.Attendees {
		if attendee == userID {
			return true
		}
	}
	return false
}

func serverStatus(event *upstream.RawEvent, userID string) entity.RegistrationStatus {
	if event != nil && attends(*event, userID) {
		return entity.StatusRegistered
	}
	return entity.StatusNone
}

// normalizeEventID accepts both the raw upstream id and the prefixed
// timeline display id.
func normalizeEventID(id string) string {
	return strings.TrimPrefix(id, constants.EventIDPrefix)
}

package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"campus-scheduler/core/errors"
	"campus-scheduler/core/mutation"
	"campus-scheduler/core/upstream"
	"campus-scheduler/modules/booking/dto"
	"campus-scheduler/modules/booking/repository"
	"campus-scheduler/modules/timeline/entity"
	timelinesvc "campus-scheduler/modules/timeline/service"

	"github.com/google/uuid"
)

// scheduleUpstream implements upstream.Client over in-memory schedules.
type scheduleUpstream struct {
	mu              sync.Mutex
	schedules       []upstream.RawSchedule
	serverConflicts []string
	failServerCheck bool
	failCreate      *errors.AppError
	failDelete      *errors.AppError
	createCalls     int
}

func (f *scheduleUpstream) FetchEvents(context.Context) ([]upstream.RawEvent, *errors.AppError) {
	return nil, nil
}

// FetchSchedules honors the requested window the way the real endpoint
// does: only schedules overlapping [start, end) come back.
func (f *scheduleUpstream) FetchSchedules(_ context.Context, start, end time.Time) ([]upstream.RawSchedule, *errors.AppError) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []upstream.RawSchedule
	for _, s := range f.schedules {
		sStart, err1 := time.Parse(time.RFC3339, s.Start)
		sEnd, err2 := time.Parse(time.RFC3339, s.End)
		if err1 != nil || err2 != nil {
			continue
		}
		if sStart.Before(end) && start.Before(sEnd) {
			out = append(out, s)
		}
	}
	return out, nil
}

func (f *scheduleUpstream) FetchSchedule(_ context.Context, id string) (*upstream.RawSchedule, *errors.AppError) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, s := range f.schedules {
		if s.ID == id {
			copied := s
			return &copied, nil
		}
	}
	return nil, errors.NewAppError(errors.ErrNotFound, "schedule not found", nil)
}

func (f *scheduleUpstream) Register(context.Context, string, string) (*upstream.RawEvent, *errors.AppError) {
	return nil, errors.NewAppError(errors.ErrInternalServer, "not implemented", nil)
}

func (f *scheduleUpstream) Unregister(context.Context, string, string) (*upstream.RawEvent, *errors.AppError) {
	return nil, errors.NewAppError(errors.ErrInternalServer, "not implemented", nil)
}

func (f *scheduleUpstream) CreateSchedule(_ context.Context, payload upstream.SchedulePayload) (*upstream.RawSchedule, *errors.AppError) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.createCalls++
	if f.failCreate != nil {
		return nil, f.failCreate
	}
	created := upstream.RawSchedule{
		ID:          "sch-created",
		Title:       payload.Title,
		Description: payload.Description,
		Start:       payload.Start,
		End:         payload.End,
		Location:    payload.Location,
		Status:      "SCHEDULED",
		ResourceIDs: payload.ResourceIDs,
	}
	f.schedules = append(f.schedules, created)
	return &created, nil
}

func (f *scheduleUpstream) UpdateSchedule(_ context.Context, id string, payload upstream.SchedulePayload) (*upstream.RawSchedule, *errors.AppError) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.schedules {
		if f.schedules[i].ID == id {
			f.schedules[i].Title = payload.Title
			f.schedules[i].Start = payload.Start
			f.schedules[i].End = payload.End
			f.schedules[i].Location = payload.Location
			copied := f.schedules[i]
			return &copied, nil
		}
	}
	return nil, errors.NewAppError(errors.ErrNotFound, "schedule not found", nil)
}

func (f *scheduleUpstream) DeleteSchedule(_ context.Context, id string) *errors.AppError {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failDelete != nil {
		return f.failDelete
	}
	kept := f.schedules[:0]
	for _, s := range f.schedules {
		if s.ID != id {
			kept = append(kept, s)
		}
	}
	f.schedules = kept
	return nil
}

func (f *scheduleUpstream) CheckConflicts(context.Context, upstream.ConflictCheckPayload) (*upstream.ConflictCheckResult, *errors.AppError) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failServerCheck {
		return nil, errors.NewAppError(errors.ErrNetwork, "check endpoint down", nil)
	}
	return &upstream.ConflictCheckResult{ConflictingIDs: f.serverConflicts}, nil
}

type silentNotifier struct {
	mu    sync.Mutex
	count int
}

func (n *silentNotifier) NotifyFailure(context.Context, uuid.UUID, string, string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.count++
	return nil
}

func newBookingFixture(client *scheduleUpstream) (BookingService, *repository.OverlayRepository, *silentNotifier, timelinesvc.TimelineService) {
	overlay := repository.NewOverlayRepository()
	merge := timelinesvc.NewMergeService()
	timeline := timelinesvc.NewTimelineService(client, merge, overlay)
	notifier := &silentNotifier{}
	coordinator := mutation.NewCoordinator(time.Second, notifier)
	svc := NewBookingService(client, timeline, merge, NewConflictService(), overlay, coordinator)
	return svc, overlay, notifier, timeline
}

func existingLecture(owner string) upstream.RawSchedule {
	return upstream.RawSchedule{
		ID:       "sch-1",
		Title:    "CS101 Lecture",
		Start:    "2025-09-01T09:00:00Z",
		End:      "2025-09-01T10:00:00Z",
		Location: "Lab A",
		Status:   "SCHEDULED",
		OwnerID:  owner,
	}
}

func TestCreateBookingSuccess(t *testing.T) {
	client := &scheduleUpstream{}
	svc, overlay, notifier, _ := newBookingFixture(client)

	userID := uuid.New()
	entry, appErr := svc.Create(context.Background(), userID, &dto.CreateBookingRequest{
		Title:    "Project sync",
		Start:    at(t, "2025-09-01T11:00:00Z"),
		End:      at(t, "2025-09-01T12:00:00Z"),
		Location: "Lab A",
	})
	if appErr != nil {
		t.Fatalf("create failed: %v", appErr)
	}
	if entry.ID != "sch-created" {
		t.Fatalf("entry id = %q, want server-assigned sch-created", entry.ID)
	}
	if entry.Source != entity.SourceSchedule {
		t.Fatalf("source = %q, want %q", entry.Source, entity.SourceSchedule)
	}
	if notifier.count != 0 {
		t.Fatalf("notifications = %d, want 0", notifier.count)
	}
	// Overlay holds nothing once the ticket resolves.
	if got := overlay.Apply(nil); len(got) != 0 {
		t.Fatalf("overlay still holds %d entries after confirm", len(got))
	}
}

func TestCreateBookingConflictIsAdvisory(t *testing.T) {
	client := &scheduleUpstream{schedules: []upstream.RawSchedule{existingLecture("someone-else")}}
	svc, _, _, _ := newBookingFixture(client)

	userID := uuid.New()
	req := &dto.CreateBookingRequest{
		Title:    "Overlapping booking",
		Start:    at(t, "2025-09-01T09:30:00Z"),
		End:      at(t, "2025-09-01T10:30:00Z"),
		Location: "Lab A",
	}

	_, appErr := svc.Create(context.Background(), userID, req)
	if appErr == nil || appErr.Code != errors.ErrConflictDetected {
		t.Fatalf("got %v, want conflict error", appErr)
	}
	if client.createCalls != 0 {
		t.Fatalf("create calls = %d, want 0 before force", client.createCalls)
	}

	// Force commits despite the conflict.
	req.Force = true
	entry, appErr := svc.Create(context.Background(), userID, req)
	if appErr != nil {
		t.Fatalf("forced create failed: %v", appErr)
	}
	if entry == nil || client.createCalls != 1 {
		t.Fatalf("forced create did not reach upstream (calls=%d)", client.createCalls)
	}
}

func TestCreateBookingFailureRollsBackOverlay(t *testing.T) {
	client := &scheduleUpstream{failCreate: errors.NewAppError(errors.ErrNetwork, "connection refused", nil)}
	svc, overlay, notifier, _ := newBookingFixture(client)

	userID := uuid.New()
	_, appErr := svc.Create(context.Background(), userID, &dto.CreateBookingRequest{
		Title: "Doomed booking",
		Start: at(t, "2025-09-01T11:00:00Z"),
		End:   at(t, "2025-09-01T12:00:00Z"),
	})
	if appErr == nil || appErr.Code != errors.ErrNetwork {
		t.Fatalf("got %v, want network error", appErr)
	}
	if got := overlay.Apply(nil); len(got) != 0 {
		t.Fatalf("overlay still holds %d entries after rollback", len(got))
	}
	if notifier.count != 1 {
		t.Fatalf("notifications = %d, want 1", notifier.count)
	}
}

func TestUpdateBookingOwnership(t *testing.T) {
	owner := uuid.New()
	client := &scheduleUpstream{schedules: []upstream.RawSchedule{existingLecture(owner.String())}}
	svc, _, _, _ := newBookingFixture(client)

	req := &dto.UpdateBookingRequest{
		Title:    "Moved lecture",
		Start:    at(t, "2025-09-01T13:00:00Z"),
		End:      at(t, "2025-09-01T14:00:00Z"),
		Location: "Lab A",
	}

	if _, appErr := svc.Update(context.Background(), uuid.New(), "sch-1", req); appErr == nil || appErr.Code != errors.ErrForbidden {
		t.Fatalf("got %v, want forbidden for non-owner", appErr)
	}

	entry, appErr := svc.Update(context.Background(), owner, "sch-1", req)
	if appErr != nil {
		t.Fatalf("owner update failed: %v", appErr)
	}
	if entry.Title != "Moved lecture" {
		t.Fatalf("title = %q, want Moved lecture", entry.Title)
	}
}

func TestUpdateBookingRescheduleAcrossDays(t *testing.T) {
	owner := uuid.New()
	client := &scheduleUpstream{schedules: []upstream.RawSchedule{existingLecture(owner.String())}}
	svc, _, _, _ := newBookingFixture(client)

	// Moving the lecture nine days out: the old slot falls outside any
	// window around the new time, so the lookup must not depend on one.
	entry, appErr := svc.Update(context.Background(), owner, "sch-1", &dto.UpdateBookingRequest{
		Title:    "CS101 Lecture",
		Start:    at(t, "2025-09-10T13:00:00Z"),
		End:      at(t, "2025-09-10T14:00:00Z"),
		Location: "Lab A",
	})
	if appErr != nil {
		t.Fatalf("reschedule failed: %v", appErr)
	}
	if !entry.Start.Equal(at(t, "2025-09-10T13:00:00Z")) {
		t.Fatalf("start = %v, want the new slot", entry.Start)
	}
}

func TestUpdateBookingNotFound(t *testing.T) {
	client := &scheduleUpstream{}
	svc, _, _, _ := newBookingFixture(client)

	_, appErr := svc.Update(context.Background(), uuid.New(), "missing", &dto.UpdateBookingRequest{
		Start: at(t, "2025-09-01T13:00:00Z"),
		End:   at(t, "2025-09-01T14:00:00Z"),
	})
	if appErr == nil || appErr.Code != errors.ErrNotFound {
		t.Fatalf("got %v, want not found", appErr)
	}
}

func TestDeleteBookingFailureRestoresEntry(t *testing.T) {
	owner := uuid.New()
	client := &scheduleUpstream{
		schedules:  []upstream.RawSchedule{existingLecture(owner.String())},
		failDelete: errors.NewAppError(errors.ErrNetwork, "connection refused", nil),
	}
	svc, _, _, timeline := newBookingFixture(client)

	appErr := svc.Delete(context.Background(), owner, "sch-1")
	if appErr == nil || appErr.Code != errors.ErrNetwork {
		t.Fatalf("got %v, want network error", appErr)
	}

	// The entry must be visible again after the rollback.
	entries, tErr := timeline.GetEntries(context.Background(), at(t, "2025-09-01T00:00:00Z"), at(t, "2025-09-02T00:00:00Z"))
	if tErr != nil {
		t.Fatalf("timeline fetch failed: %v", tErr)
	}
	if len(entries) != 1 || entries[0].ID != "sch-1" {
		t.Fatalf("entry not restored after failed delete: %v", entries)
	}
}

func TestCheckConflictsUnionsServerVerdict(t *testing.T) {
	// The evening slot does not collide locally (different venue), but the
	// server reports it anyway. Server findings win.
	evening := upstream.RawSchedule{
		ID: "sch-evening", Title: "Evening seminar",
		Start: "2025-09-01T09:30:00Z", End: "2025-09-01T10:30:00Z",
		Location: "Room 204", Status: "SCHEDULED",
	}
	client := &scheduleUpstream{
		schedules:       []upstream.RawSchedule{existingLecture(""), evening},
		serverConflicts: []string{"sch-evening"},
	}
	svc, _, _, _ := newBookingFixture(client)

	conflicts, appErr := svc.CheckConflicts(context.Background(), dto.BookingProposal{
		Start:    at(t, "2025-09-01T09:30:00Z"),
		End:      at(t, "2025-09-01T10:30:00Z"),
		Location: "Lab A",
	})
	if appErr != nil {
		t.Fatalf("check failed: %v", appErr)
	}
	if len(conflicts) != 2 {
		t.Fatalf("got %d conflicts, want 2 (local + server)", len(conflicts))
	}
}

func TestCheckConflictsDegradesWhenServerCheckFails(t *testing.T) {
	client := &scheduleUpstream{
		schedules:       []upstream.RawSchedule{existingLecture("")},
		failServerCheck: true,
	}
	svc, _, _, _ := newBookingFixture(client)

	conflicts, appErr := svc.CheckConflicts(context.Background(), dto.BookingProposal{
		Start:    at(t, "2025-09-01T09:30:00Z"),
		End:      at(t, "2025-09-01T10:30:00Z"),
		Location: "Lab A",
	})
	if appErr != nil {
		t.Fatalf("advisory check must not fail with the server down: %v", appErr)
	}
	if len(conflicts) != 1 || conflicts[0].ID != "sch-1" {
		t.Fatalf("local verdict missing, got %v", conflicts)
	}
}

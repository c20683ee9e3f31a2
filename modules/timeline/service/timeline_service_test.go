package service

import (
	"context"
	"testing"
	"time"

	"campus-scheduler/core/constants"
	"campus-scheduler/core/errors"
	"campus-scheduler/core/upstream"
	bookingrepo "campus-scheduler/modules/booking/repository"
	"campus-scheduler/modules/timeline/entity"
)

type stubClient struct {
	schedules []upstream.RawSchedule
	events    []upstream.RawEvent
}

func (s *stubClient) FetchEvents(context.Context) ([]upstream.RawEvent, *errors.AppError) {
	return s.events, nil
}

func (s *stubClient) FetchSchedules(context.Context, time.Time, time.Time) ([]upstream.RawSchedule, *errors.AppError) {
	return s.schedules, nil
}

func (s *stubClient) FetchSchedule(context.Context, string) (*upstream.RawSchedule, *errors.AppError) {
	return nil, errors.NewAppError(errors.ErrInternalServer, "not implemented", nil)
}

func (s *stubClient) Register(context.Context, string, string) (*upstream.RawEvent, *errors.AppError) {
	return nil, errors.NewAppError(errors.ErrInternalServer, "not implemented", nil)
}

func (s *stubClient) Unregister(context.Context, string, string) (*upstream.RawEvent, *errors.AppError) {
	return nil, errors.NewAppError(errors.ErrInternalServer, "not implemented", nil)
}

func (s *stubClient) CreateSchedule(context.Context, upstream.SchedulePayload) (*upstream.RawSchedule, *errors.AppError) {
	return nil, errors.NewAppError(errors.ErrInternalServer, "not implemented", nil)
}

func (s *stubClient) UpdateSchedule(context.Context, string, upstream.SchedulePayload) (*upstream.RawSchedule, *errors.AppError) {
	return nil, errors.NewAppError(errors.ErrInternalServer, "not implemented", nil)
}

func (s *stubClient) DeleteSchedule(context.Context, string) *errors.AppError {
	return errors.NewAppError(errors.ErrInternalServer, "not implemented", nil)
}

func (s *stubClient) CheckConflicts(context.Context, upstream.ConflictCheckPayload) (*upstream.ConflictCheckResult, *errors.AppError) {
	return &upstream.ConflictCheckResult{}, nil
}

func window(t *testing.T) (time.Time, time.Time) {
	t.Helper()
	from, err := time.Parse(time.RFC3339, "2025-09-01T00:00:00Z")
	if err != nil {
		t.Fatal(err)
	}
	return from, from.Add(48 * time.Hour)
}

func TestGetTimelineSortsByStart(t *testing.T) {
	client := &stubClient{
		schedules: []upstream.RawSchedule{
			{ID: "late", Title: "Afternoon", Start: "2025-09-01T14:00:00Z", End: "2025-09-01T15:00:00Z"},
			{ID: "early", Title: "Morning", Start: "2025-09-01T08:00:00Z", End: "2025-09-01T09:00:00Z"},
		},
		events: []upstream.RawEvent{
			{ID: "1", Title: "Midday", StartDate: "2025-09-01T12:00:00Z", EndDate: "2025-09-01T13:00:00Z"},
		},
	}
	svc := NewTimelineService(client, NewMergeService(), bookingrepo.NewOverlayRepository())

	from, to := window(t)
	got, appErr := svc.GetTimeline(context.Background(), "viewer", constants.RoleStudent, from, to)
	if appErr != nil {
		t.Fatalf("timeline failed: %v", appErr)
	}
	if len(got) != 3 {
		t.Fatalf("got %d entries, want 3", len(got))
	}
	wantOrder := []string{"early", "event-1", "late"}
	for i, want := range wantOrder {
		if got[i].ID != want {
			t.Fatalf("position %d = %q, want %q", i, got[i].ID, want)
		}
	}
}

func TestGetTimelineFiltersByAudience(t *testing.T) {
	client := &stubClient{
		schedules: []upstream.RawSchedule{
			{ID: "for-students", Title: "Lecture", Start: "2025-09-01T09:00:00Z", End: "2025-09-01T10:00:00Z", Audience: "STUDENTS"},
			{ID: "for-lecturers", Title: "Staff meeting", Start: "2025-09-01T11:00:00Z", End: "2025-09-01T12:00:00Z", Audience: "LECTURERS"},
			{ID: "for-all", Title: "Open day", Start: "2025-09-01T13:00:00Z", End: "2025-09-01T14:00:00Z"},
		},
	}
	svc := NewTimelineService(client, NewMergeService(), bookingrepo.NewOverlayRepository())
	from, to := window(t)

	student, appErr := svc.GetTimeline(context.Background(), "viewer", constants.RoleStudent, from, to)
	if appErr != nil {
		t.Fatalf("timeline failed: %v", appErr)
	}
	if len(student) != 2 {
		t.Fatalf("student sees %d entries, want 2", len(student))
	}
	for _, e := range student {
		if e.ID == "for-lecturers" {
			t.Fatal("student must not see lecturer-only entries")
		}
	}

	// GetEntries stays unfiltered for the conflict detector.
	all, appErr := svc.GetEntries(context.Background(), from, to)
	if appErr != nil {
		t.Fatalf("entries failed: %v", appErr)
	}
	if len(all) != 3 {
		t.Fatalf("unfiltered view has %d entries, want 3", len(all))
	}
}

func TestGetEntriesSplicesOverlay(t *testing.T) {
	client := &stubClient{
		schedules: []upstream.RawSchedule{
			{ID: "sch-1", Title: "Existing", Start: "2025-09-01T09:00:00Z", End: "2025-09-01T10:00:00Z"},
		},
	}
	overlay := bookingrepo.NewOverlayRepository()
	svc := NewTimelineService(client, NewMergeService(), overlay)
	from, to := window(t)

	overlay.PutPending(entity.CalendarEntry{
		ID: "pending-1", Title: "Optimistic create", Source: entity.SourceSchedule, State: entity.StateActive,
		Start: from.Add(2 * time.Hour), End: from.Add(3 * time.Hour),
	})
	overlay.MarkDeleted("sch-1")

	got, appErr := svc.GetEntries(context.Background(), from, to)
	if appErr != nil {
		t.Fatalf("entries failed: %v", appErr)
	}
	if len(got) != 1 || got[0].ID != "pending-1" {
		t.Fatalf("overlay not applied, got %v", got)
	}
}

package service

import (
	"testing"
	"time"

	"campus-scheduler/core/errors"
	"campus-scheduler/modules/booking/dto"
	"campus-scheduler/modules/timeline/entity"
)

func at(t *testing.T, value string) time.Time {
	t.Helper()
	parsed, err := time.Parse(time.RFC3339, value)
	if err != nil {
		t.Fatalf("parse %q: %v", value, err)
	}
	return parsed
}

func labSlot(t *testing.T, id, location, start, end string) entity.CalendarEntry {
	t.Helper()
	return entity.CalendarEntry{
		ID:       id,
		Title:    id,
		Location: location,
		Start:    at(t, start),
		End:      at(t, end),
		State:    entity.StateActive,
	}
}

func TestFindConflicts(t *testing.T) {
	svc := NewConflictService()

	existing := []entity.CalendarEntry{
		labSlot(t, "lecture", "Lab A", "2025-09-01T09:00:00Z", "2025-09-01T10:00:00Z"),
		labSlot(t, "seminar", "Room 204", "2025-09-01T09:00:00Z", "2025-09-01T10:00:00Z"),
		labSlot(t, "evening", "Lab A", "2025-09-01T18:00:00Z", "2025-09-01T20:00:00Z"),
	}

	tests := []struct {
		name     string
		proposal dto.BookingProposal
		wantIDs  []string
	}{
		{
			name: "overlapping same venue",
			proposal: dto.BookingProposal{
				Start: at(t, "2025-09-01T09:30:00Z"), End: at(t, "2025-09-01T10:30:00Z"), Location: "Lab A",
			},
			wantIDs: []string{"lecture"},
		},
		{
			name: "overlapping different venue",
			proposal: dto.BookingProposal{
				Start: at(t, "2025-09-01T09:30:00Z"), End: at(t, "2025-09-01T10:30:00Z"), Location: "Lab B",
			},
			wantIDs: nil,
		},
		{
			name: "same venue no time overlap",
			proposal: dto.BookingProposal{
				Start: at(t, "2025-09-01T10:00:00Z"), End: at(t, "2025-09-01T11:00:00Z"), Location: "Lab A",
			},
			wantIDs: nil,
		},
		{
			name: "case sensitive venue match",
			proposal: dto.BookingProposal{
				Start: at(t, "2025-09-01T09:30:00Z"), End: at(t, "2025-09-01T10:30:00Z"), Location: "lab a",
			},
			wantIDs: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, appErr := svc.FindConflicts(tt.proposal, existing)
			if appErr != nil {
				t.Fatalf("unexpected error: %v", appErr)
			}
			if len(got) != len(tt.wantIDs) {
				t.Fatalf("got %d conflicts, want %d", len(got), len(tt.wantIDs))
			}
			for i, want := range tt.wantIDs {
				if got[i].ID != want {
					t.Fatalf("conflict[%d] = %q, want %q", i, got[i].ID, want)
				}
			}
		})
	}
}

func TestFindConflictsInvalidRange(t *testing.T) {
	svc := NewConflictService()

	start := at(t, "2025-09-01T10:00:00Z")
	_, appErr := svc.FindConflicts(dto.BookingProposal{Start: start, End: start, Location: "Lab A"}, nil)
	if appErr == nil {
		t.Fatal("expected error for zero-length range")
	}
	if appErr.Code != errors.ErrInvalidRange {
		t.Fatalf("got code %q, want %q", appErr.Code, errors.ErrInvalidRange)
	}
}

func TestFindConflictsSkipsCancelledAndSelf(t *testing.T) {
	svc := NewConflictService()

	cancelled := labSlot(t, "cancelled", "Lab A", "2025-09-01T09:00:00Z", "2025-09-01T10:00:00Z")
	cancelled.State = entity.StateCancelled
	self := labSlot(t, "self", "Lab A", "2025-09-01T09:00:00Z", "2025-09-01T10:00:00Z")

	proposal := dto.BookingProposal{
		Start: at(t, "2025-09-01T09:00:00Z"), End: at(t, "2025-09-01T10:00:00Z"),
		Location:  "Lab A",
		ExcludeID: "self",
	}

	got, appErr := svc.FindConflicts(proposal, []entity.CalendarEntry{cancelled, self})
	if appErr != nil {
		t.Fatalf("unexpected error: %v", appErr)
	}
	if len(got) != 0 {
		t.Fatalf("got %d conflicts, want 0", len(got))
	}
}

func TestFindConflictsSharedResource(t *testing.T) {
	svc := NewConflictService()

	projector := labSlot(t, "with-projector", "Room 204", "2025-09-01T09:00:00Z", "2025-09-01T10:00:00Z")
	projector.ResourceIDs = []string{"projector-1"}

	proposal := dto.BookingProposal{
		Start: at(t, "2025-09-01T09:30:00Z"), End: at(t, "2025-09-01T10:30:00Z"),
		Location:    "Lab B",
		ResourceIDs: []string{"projector-1"},
	}

	got, appErr := svc.FindConflicts(proposal, []entity.CalendarEntry{projector})
	if appErr != nil {
		t.Fatalf("unexpected error: %v", appErr)
	}
	if len(got) != 1 || got[0].ID != "with-projector" {
		t.Fatalf("shared resource should conflict, got %v", got)
	}
}

func TestFindConflictsEmptyLocationNeverMatchesVenue(t *testing.T) {
	svc := NewConflictService()

	noVenue := labSlot(t, "no-venue", "", "2025-09-01T09:00:00Z", "2025-09-01T10:00:00Z")

	proposal := dto.BookingProposal{
		Start: at(t, "2025-09-01T09:00:00Z"), End: at(t, "2025-09-01T10:00:00Z"),
		Location: "",
	}

	got, appErr := svc.FindConflicts(proposal, []entity.CalendarEntry{noVenue})
	if appErr != nil {
		t.Fatalf("unexpected error: %v", appErr)
	}
	if len(got) != 0 {
		t.Fatalf("two empty locations must not venue-match, got %v", got)
	}
}

package entity

import (
	"time"

	"campus-scheduler/core/constants"
)

type Source string

const (
	SourceSchedule Source = "SCHEDULE"
	SourceEvent    Source = "EVENT"
)

type Audience string

const (
	AudienceAll       Audience = "ALL"
	AudienceStudents  Audience = "STUDENTS"
	AudienceLecturers Audience = "LECTURERS"
)

// ViewState is the shared normalization of the two source status vocabularies
// (SCHEDULED/CANCELLED/COMPLETED for schedules, UPCOMING/ONGOING/COMPLETED/
// CANCELLED for events).
type ViewState string

const (
	StateActive    ViewState = "ACTIVE"
	StateCancelled ViewState = "CANCELLED"
	StateDone      ViewState = "DONE"
)

// CalendarEntry is the normalized timeline item. Entries are immutable value
// objects, discarded and rebuilt on every merge; nothing downstream needs to
// branch on source-specific field names.
type CalendarEntry struct {
	ID          string    `json:"id"`
	Source      Source    `json:"source"`
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	Start       time.Time `json:"start"`
	End         time.Time `json:"end"`
	Location    string    `json:"location,omitempty"`
	Audience    Audience  `json:"target_audience"`
	OwnerID     string    `json:"owner_id,omitempty"`
	RawStatus   string    `json:"raw_status"`
	State       ViewState `json:"state"`
	ResourceIDs []string  `json:"resource_ids,omitempty"`
	Color       string    `json:"color"`
}

func (e CalendarEntry) Range() TimeRange {
	return TimeRange{Start: e.Start, End: e.End}
}

// VisibleTo gates entries by viewer role. Owners and admins always see their
// entries; ALL-audience entries are visible to everyone.
func (e CalendarEntry) VisibleTo(role string, viewerID string) bool {
	if e.OwnerID != "" && e.OwnerID == viewerID {
		return true
	}
	if role == constants.RoleAdmin {
		return true
	}
	switch e.Audience {
	case AudienceStudents:
		return role == constants.RoleStudent
	case AudienceLecturers:
		return role == constants.RoleLecturer
	default:
		return true
	}
}

// NormalizeStatus maps a raw source status onto the shared view state.
// Unknown statuses count as active so a new upstream status never hides
// entries.
func NormalizeStatus(raw string) ViewState {
	switch raw {
	case "CANCELLED":
		return StateCancelled
	case "COMPLETED":
		return StateDone
	default:
		return StateActive
	}
}

// NormalizeAudience defaults anything unrecognized to ALL.
func NormalizeAudience(raw string) Audience {
	switch raw {
	case string(AudienceStudents):
		return AudienceStudents
	case string(AudienceLecturers):
		return AudienceLecturers
	default:
		return AudienceAll
	}
}

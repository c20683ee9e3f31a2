package upstream

import "time"

// Raw wire shapes as the campus API returns them. Field names are loose on
// purpose: schedules and events disagree on time and venue fields, and both
// get normalized into one CalendarEntry shape at the merge boundary.

type RawSchedule struct {
	ID          string   `json:"id"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Type        string   `json:"type"`
	Start       string   `json:"start"`
	End         string   `json:"end"`
	Date        string   `json:"date,omitempty"`
	Time        string   `json:"time,omitempty"`
	Location    string   `json:"location"`
	Status      string   `json:"status"` // SCHEDULED | CANCELLED | COMPLETED
	Audience    string   `json:"targetAudience"`
	OwnerID     string   `json:"ownerId"`
	ResourceIDs []string `json:"resourceIds,omitempty"`
}

type RawEvent struct {
	ID          string   `json:"id"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	StartDate   string   `json:"startDate"`
	EndDate     string   `json:"endDate"`
	Date        string   `json:"date,omitempty"`
	Time        string   `json:"time,omitempty"`
	Venue       string   `json:"venue"`
	Status      string   `json:"status"` // UPCOMING | ONGOING | COMPLETED | CANCELLED
	Audience    string   `json:"targetAudience"`
	OwnerID     string   `json:"ownerId"`
	Attendees   []string `json:"attendees,omitempty"`
}

// SchedulePayload is the body for schedule create/update calls.
type SchedulePayload struct {
	Title       string   `json:"title"`
	Description string   `json:"description,omitempty"`
	Start       string   `json:"start"`
	End         string   `json:"end"`
	Location    string   `json:"location,omitempty"`
	Audience    string   `json:"targetAudience,omitempty"`
	ResourceIDs []string `json:"resourceIds,omitempty"`
}

// ConflictCheckPayload mirrors POST /schedules/check-conflicts. The server
// check is authoritative at commit time; the local detector is pre-flight.
type ConflictCheckPayload struct {
	Start       string   `json:"start"`
	End         string   `json:"end"`
	Location    string   `json:"location,omitempty"`
	ResourceIDs []string `json:"resourceIds,omitempty"`
	ExcludeID   string   `json:"excludeId,omitempty"`
}

type ConflictCheckResult struct {
	ConflictingIDs []string `json:"conflictingIds"`
}

func FormatTime(t time.Time) string {
	return t.Format(time.RFC3339)
}

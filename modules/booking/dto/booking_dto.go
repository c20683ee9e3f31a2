package dto

import (
	"time"

	"campus-scheduler/modules/timeline/entity"
)

// BookingProposal is the transient input to conflict checking; it is never
// persisted, only constructed per check.
type BookingProposal struct {
	Start       time.Time `json:"start"`
	End         time.Time `json:"end"`
	Location    string    `json:"location,omitempty"`
	ResourceIDs []string  `json:"resource_ids,omitempty"`
	// ExcludeID is the booking's own id, so an edit never conflicts with
	// itself.
	ExcludeID string `json:"exclude_id,omitempty"`
}

func (p BookingProposal) Range() entity.TimeRange {
	return entity.TimeRange{Start: p.Start, End: p.End}
}

type ConflictCheckResponse struct {
	Conflicts []entity.CalendarEntry `json:"conflicts"`
	Count     int                    `json:"count"`
}

type CreateBookingRequest struct {
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	Start       time.Time `json:"start"`
	End         time.Time `json:"end"`
	Location    string    `json:"location,omitempty"`
	Audience    string    `json:"target_audience,omitempty"`
	ResourceIDs []string  `json:"resource_ids,omitempty"`
	// Force commits despite advisory conflicts (the "proceed anyway" flow).
	Force bool `json:"force,omitempty"`
}

type UpdateBookingRequest struct {
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	Start       time.Time `json:"start"`
	End         time.Time `json:"end"`
	Location    string    `json:"location,omitempty"`
	Audience    string    `json:"target_audience,omitempty"`
	ResourceIDs []string  `json:"resource_ids,omitempty"`
	Force       bool      `json:"force,omitempty"`
}

type BookingResponse struct {
	Entry entity.CalendarEntry `json:"entry"`
}

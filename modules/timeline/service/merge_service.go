package service

import (
	"time"

	"campus-scheduler/core/constants"
	"campus-scheduler/core/logger"
	"campus-scheduler/core/upstream"
	"campus-scheduler/modules/timeline/entity"
)

// MergeService combines the two heterogeneous upstream streams into one
// normalized timeline. It never deduplicates across sources and never
// validates overlap between them; a schedule entry and an event entry are
// always distinct timeline items.
type MergeService struct{}

func NewMergeService() *MergeService {
	return &MergeService{}
}

// Merge maps every parseable raw record to a CalendarEntry. A malformed
// record (missing or unparseable start/end, or end <= start) is dropped with
// a logged warning; one bad record never aborts the whole merge.
func (s *MergeService) Merge(schedules []upstream.RawSchedule, events []upstream.RawEvent) []entity.CalendarEntry {
	merged := make([]entity.CalendarEntry, 0, len(schedules)+len(events))

	for _, raw := range schedules {
		e, ok := s.MapSchedule(raw)
		if !ok {
			logger.Warn("MergeService:Merge:DroppedSchedule", "id", raw.ID, "title", raw.Title)
			continue
		}
		merged = append(merged, e)
	}

	for _, raw := range events {
		e, ok := s.MapEvent(raw)
		if !ok {
			logger.Warn("MergeService:Merge:DroppedEvent", "id", raw.ID, "title", raw.Title)
			continue
		}
		merged = append(merged, e)
	}

	return merged
}

func (s *MergeService) MapSchedule(raw upstream.RawSchedule) (entity.CalendarEntry, bool) {
	start, end, ok := parseTimes(raw.Start, raw.End, raw.Date, raw.Time)
	if !ok {
		return entity.CalendarEntry{}, false
	}
	return entity.CalendarEntry{
		ID:          raw.ID,
		Source:      entity.SourceSchedule,
		Title:       raw.Title,
		Description: raw.Description,
		Start:       start,
		End:         end,
		Location:    raw.Location,
		Audience:    entity.NormalizeAudience(raw.Audience),
		OwnerID:     raw.OwnerID,
		RawStatus:   raw.Status,
		State:       entity.NormalizeStatus(raw.Status),
		ResourceIDs: raw.ResourceIDs,
		Color:       constants.ColorSchedule,
	}, true
}

func (s *MergeService) MapEvent(raw upstream.RawEvent) (entity.CalendarEntry, bool) {
	start, end, ok := parseTimes(raw.StartDate, raw.EndDate, raw.Date, raw.Time)
	if !ok {
		return entity.CalendarEntry{}, false
	}
	return entity.CalendarEntry{
		// Prefixing keeps EVENT ids collision-free in the merged space.
		ID:          constants.EventIDPrefix + raw.ID,
		Source:      entity.SourceEvent,
		Title:       raw.Title,
		Description: raw.Description,
		Start:       start,
		End:         end,
		Location:    raw.Venue,
		Audience:    entity.NormalizeAudience(raw.Audience),
		OwnerID:     raw.OwnerID,
		RawStatus:   raw.Status,
		State:       entity.NormalizeStatus(raw.Status),
		Color:       constants.ColorEvent,
	}, true
}

var timeLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04",
}

func parseOne(value string) (time.Time, bool) {
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// parseTimes resolves the loose upstream time shapes: either explicit
// start/end values, or a date plus a "HH:MM-HH:MM" time window.
func parseTimes(start, end, date, window string) (time.Time, time.Time, bool) {
	if start != "" && end != "" {
		s, okS := parseOne(start)
		e, okE := parseOne(end)
		if okS && okE && e.After(s) {
			return s, e, true
		}
		return time.Time{}, time.Time{}, false
	}

	if date != "" && len(window) == 11 && window[5] == '-' {
		s, errS := time.Parse("2006-01-02 15:04", date+" "+window[:5])
		e, errE := time.Parse("2006-01-02 15:04", date+" "+window[6:])
		if errS == nil && errE == nil && e.After(s) {
			return s, e, true
		}
	}

	return time.Time{}, time.Time{}, false
}

package entity

import (
	"time"

	"campus-scheduler/core/errors"
)

// TimeRange is a half-open interval [Start, End). Touching endpoints do not
// overlap.
type TimeRange struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// NewTimeRange rejects a range where end <= start. That is always a caller
// bug, never retryable.
func NewTimeRange(start, end time.Time) (TimeRange, *errors.AppError) {
	r := TimeRange{Start: start, End: end}
	if appErr := r.Validate(); appErr != nil {
		return TimeRange{}, appErr
	}
	return r, nil
}

func (r TimeRange) Validate() *errors.AppError {
	if !r.End.After(r.Start) {
		return errors.NewAppError(errors.ErrInvalidRange, "Range end must be after start",
			map[string]any{"start": r.Start, "end": r.End})
	}
	return nil
}

// Overlaps implements a.start < b.end AND b.start < a.end.
func (r TimeRange) Overlaps(other TimeRange) bool {
	return r.Start.Before(other.End) && other.Start.Before(r.End)
}

func (r TimeRange) DurationMinutes() int {
	return int(r.End.Sub(r.Start).Minutes())
}

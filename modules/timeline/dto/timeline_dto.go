package dto

import "campus-scheduler/modules/timeline/entity"

type TimelineResponse struct {
	Entries []entity.CalendarEntry `json:"entries"`
	Count   int                    `json:"count"`
}

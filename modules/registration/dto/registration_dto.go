package dto

import "campus-scheduler/modules/registration/entity"

type RegistrationStatusResponse struct {
	EventID string                    `json:"event_id"`
	Status  entity.RegistrationStatus `json:"status"`
	Source  entity.RegistrationSource `json:"source"`
}

type RegistrationListResponse struct {
	Registrations []RegistrationStatusResponse `json:"registrations"`
}

type RegisterResponse struct {
	EventID   string                    `json:"event_id"`
	Status    entity.RegistrationStatus `json:"status"`
	Attendees int                       `json:"attendees"`
}

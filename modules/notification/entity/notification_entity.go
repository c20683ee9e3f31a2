package entity

import (
	"time"

	"campus-scheduler/core/entity"

	"github.com/google/uuid"
)

const (
	TypeMutationFailed = "MUTATION_FAILED"
	TypeGeneral        = "GENERAL"
)

type Notification struct {
	ID        uuid.UUID      `json:"id"`
	UserID    uuid.UUID      `json:"user_id"`
	Title     string         `json:"title"`
	Message   string         `json:"message"`
	Type      string         `json:"type"`
	Data      map[string]any `json:"data,omitempty"`
	IsRead    bool           `json:"is_read"`
	CreatedAt time.Time      `json:"created_at"`
}

type PaginatedNotificationEntity = entity.Pagination[Notification]

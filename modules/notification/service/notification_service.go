package service

import (
	"context"
	"time"

	"campus-scheduler/core/logger"
	"campus-scheduler/core/params"
	"campus-scheduler/modules/notification/dto"
	"campus-scheduler/modules/notification/entity"
	"campus-scheduler/modules/notification/repository"

	"github.com/google/uuid"
)

type NotificationService struct {
	repo *repository.NotificationRepository
}

func NewNotificationService(repo *repository.NotificationRepository) *NotificationService {
	return &NotificationService{repo: repo}
}

func (s *NotificationService) Create(ctx context.Context, req *dto.CreateNotificationRequest) error {
	notif := &entity.Notification{
		ID:        uuid.New(),
		UserID:    req.UserID,
		Title:     req.Title,
		Message:   req.Message,
		Type:      req.Type,
		Data:      req.Data,
		IsRead:    false,
		CreatedAt: time.Now(),
	}
	return s.repo.Create(ctx, notif)
}

// NotifyFailure records a failed mutation for the user. Delivery is
// best effort; the caller does not retry.
func (s *NotificationService) NotifyFailure(ctx context.Context, userID uuid.UUID, title, message string) error {
	err := s.Create(ctx, &dto.CreateNotificationRequest{
		UserID:  userID,
		Title:   title,
		Message: message,
		Type:    entity.TypeMutationFailed,
	})
	if err != nil {
		logger.Error("NotificationService:NotifyFailure:Error", err, "user_id", userID)
	}
	return err
}

func (s *NotificationService) GetMyNotifications(ctx context.Context, userID uuid.UUID, queryParams params.QueryParams) (*entity.PaginatedNotificationEntity, error) {
	return s.repo.GetByUserID(ctx, userID, queryParams)
}

func (s *NotificationService) MarkAsRead(ctx context.Context, userID uuid.UUID, ids []string) error {
	return s.repo.MarkAsRead(ctx, userID, ids)
}

func (s *NotificationService) MarkAllAsRead(ctx context.Context, userID uuid.UUID) error {
	return s.repo.MarkAllAsRead(ctx, userID)
}

func (s *NotificationService) CountUnread(ctx context.Context, userID uuid.UUID) (int, error) {
	return s.repo.CountUnread(ctx, userID)
}

package repository

import (
	"context"
	"encoding/json"

	"campus-scheduler/core/cache"
	"campus-scheduler/core/constants"
	"campus-scheduler/core/logger"
	"campus-scheduler/core/params"
	"campus-scheduler/modules/notification/entity"

	"github.com/google/uuid"
)

// NotificationRepository stores each user's notifications in a redis list,
// newest first. Read flags are updated in place with LSET.
type NotificationRepository struct {
	cache cache.Cache
}

func NewNotificationRepository(c cache.Cache) *NotificationRepository {
	return &NotificationRepository{cache: c}
}

func key(userID uuid.UUID) string {
	return constants.RedisKeyNotifications + userID.String()
}

func (r *NotificationRepository) Create(ctx context.Context, notification *entity.Notification) error {
	raw, err := json.Marshal(notification)
	if err != nil {
		return err
	}
	if err := r.cache.LPush(ctx, key(notification.UserID), string(raw)); err != nil {
		logger.Error("NotificationRepository:Create:Error", err)
		return err
	}
	return nil
}

func (r *NotificationRepository) GetByUserID(ctx context.Context, userID uuid.UUID, params params.QueryParams) (*entity.PaginatedNotificationEntity, error) {
	total, err := r.cache.LLen(ctx, key(userID))
	if err != nil {
		logger.Error("NotificationRepository:GetByUserID:Len:Error", err)
		return nil, err
	}

	offset := int64((params.PageNumber - 1) * params.PageSize)
	raws, err := r.cache.LRange(ctx, key(userID), offset, offset+int64(params.PageSize)-1)
	if err != nil {
		logger.Error("NotificationRepository:GetByUserID:Range:Error", err)
		return nil, err
	}

	notifications := make([]entity.Notification, 0, len(raws))
	for _, raw := range raws {
		var n entity.Notification
		if err := json.Unmarshal([]byte(raw), &n); err != nil {
			logger.Warn("NotificationRepository:GetByUserID:Corrupt", "user_id", userID, "raw", raw)
			continue
		}
		notifications = append(notifications, n)
	}

	return &entity.PaginatedNotificationEntity{
		Items:      notifications,
		TotalItems: int(total),
		PageNumber: params.PageNumber,
		PageSize:   params.PageSize,
	}, nil
}

func (r *NotificationRepository) MarkAsRead(ctx context.Context, userID uuid.UUID, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	wanted := make(map[string]bool, len(ids))
	for _, id := range ids {
		wanted[id] = true
	}
	return r.markRead(ctx, userID, func(n *entity.Notification) bool {
		return wanted[n.ID.String()]
	})
}

func (r *NotificationRepository) MarkAllAsRead(ctx context.Context, userID uuid.UUID) error {
	return r.markRead(ctx, userID, func(*entity.Notification) bool { return true })
}

func (r *NotificationRepository) markRead(ctx context.Context, userID uuid.UUID, match func(*entity.Notification) bool) error {
	raws, err := r.cache.LRange(ctx, key(userID), 0, -1)
	if err != nil {
		logger.Error("NotificationRepository:MarkRead:Range:Error", err)
		return err
	}

	for i, raw := range raws {
		var n entity.Notification
		if err := json.Unmarshal([]byte(raw), &n); err != nil {
			continue
		}
		if n.IsRead || !match(&n) {
			continue
		}
		n.IsRead = true
		updated, err := json.Marshal(&n)
		if err != nil {
			return err
		}
		if err := r.cache.LSet(ctx, key(userID), int64(i), string(updated)); err != nil {
			logger.Error("NotificationRepository:MarkRead:Set:Error", err)
			return err
		}
	}
	return nil
}

func (r *NotificationRepository) CountUnread(ctx context.Context, userID uuid.UUID) (int, error) {
	raws, err := r.cache.LRange(ctx, key(userID), 0, -1)
	if err != nil {
		logger.Error("NotificationRepository:CountUnread:Error", err)
		return 0, err
	}

	count := 0
	for _, raw := range raws {
		var n entity.Notification
		if err := json.Unmarshal([]byte(raw), &n); err != nil {
			continue
		}
		if !n.IsRead {
			count++
		}
	}
	return count, nil
}

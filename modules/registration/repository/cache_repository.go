package repository

import (
	"context"
	"encoding/json"

	"campus-scheduler/core/cache"
	"campus-scheduler/core/constants"
	"campus-scheduler/core/logger"
	"campus-scheduler/modules/registration/entity"
)

// CacheRepository is the durable registration cache: one keyed collection
// per user (eventId -> {status, timestamp}). Writes go through a full
// read-modify-write of the collection; concurrent writers are last-write-wins
// by design, which is acceptable at this scale.
type CacheRepository interface {
	GetAll(ctx context.Context, userID string) (map[string]entity.CacheEntry, error)
	Get(ctx context.Context, userID, eventID string) (*entity.CacheEntry, error)
	Put(ctx context.Context, userID, eventID string, e entity.CacheEntry) error
	Remove(ctx context.Context, userID, eventID string) error
}

type redisCacheRepository struct {
	cache cache.Cache
}

func NewCacheRepository(c cache.Cache) CacheRepository {
	return &redisCacheRepository{cache: c}
}

func key(userID string) string {
	return constants.RedisKeyRegistrationCache + userID
}

func (r *redisCacheRepository) GetAll(ctx context.Context, userID string) (map[string]entity.CacheEntry, error) {
	raw, err := r.cache.HGetAll(ctx, key(userID))
	if err != nil {
		logger.Error("RegistrationCacheRepository:GetAll:Error", "error", err, "user_id", userID)
		return nil, err
	}

	entries := make(map[string]entity.CacheEntry, len(raw))
	for eventID, value := range raw {
		var e entity.CacheEntry
		if err := json.Unmarshal([]byte(value), &e); err != nil {
			logger.Warn("RegistrationCacheRepository:GetAll:BadEntry", "user_id", userID, "event_id", eventID)
			continue
		}
		entries[eventID] = e
	}
	return entries, nil
}

func (r *redisCacheRepository) Get(ctx context.Context, userID, eventID string) (*entity.CacheEntry, error) {
	entries, err := r.GetAll(ctx, userID)
	if err != nil {
		return nil, err
	}
	if e, ok := entries[eventID]; ok {
		return &e, nil
	}
	return nil, nil
}

func (r *redisCacheRepository) Put(ctx context.Context, userID, eventID string, e entity.CacheEntry) error {
	entries, err := r.GetAll(ctx, userID)
	if err != nil {
		return err
	}
	entries[eventID] = e
	return r.writeAll(ctx, userID, entries)
}

func (r *redisCacheRepository) Remove(ctx context.Context, userID, eventID string) error {
	entries, err := r.GetAll(ctx, userID)
	if err != nil {
		return err
	}
	if _, ok := entries[eventID]; !ok {
		return nil
	}
	delete(entries, eventID)
	return r.writeAll(ctx, userID, entries)
}

// writeAll replaces the whole collection, mirroring the read-filter-write
// pattern of the persisted cache.
func (r *redisCacheRepository) writeAll(ctx context.Context, userID string, entries map[string]entity.CacheEntry) error {
	k := key(userID)
	if err := r.cache.Del(ctx, k); err != nil {
		logger.Error("RegistrationCacheRepository:writeAll:Del:Error", "error", err, "user_id", userID)
		return err
	}
	if len(entries) == 0 {
		return nil
	}

	values := make(map[string]string, len(entries))
	for eventID, e := range entries {
		raw, err := json.Marshal(e)
		if err != nil {
			return err
		}
		values[eventID] = string(raw)
	}
	if err := r.cache.HSet(ctx, k, values); err != nil {
		logger.Error("RegistrationCacheRepository:writeAll:HSet:Error", "error", err, "user_id", userID)
		return err
	}
	return nil
}

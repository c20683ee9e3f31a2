package service

import (
	"context"
	"sync"
	"time"

	"campus-scheduler/core/errors"
	"campus-scheduler/core/logger"
	"campus-scheduler/modules/registration/entity"
	"campus-scheduler/modules/registration/repository"
)

type optimisticEntry struct {
	status entity.RegistrationStatus // the pending transition
	prior  entity.RegistrationStatus // confirmed status before the apply
}

// Reconciler owns the authoritative "is this user registered for event X"
// predicate across three sources of truth: in-flight optimistic writes, the
// durable cache, and the last server-confirmed snapshot. Priority is in that
// order so a just-issued optimistic write is visible before the network
// round-trip completes. All transitions are synchronous and atomic under one
// lock; only the network legs between them suspend.
type Reconciler struct {
	mu         sync.Mutex
	cacheRepo  repository.CacheRepository
	confirmed  map[string]map[string]entity.RegistrationStatus
	optimistic map[string]map[string]optimisticEntry
}

func NewReconciler(cacheRepo repository.CacheRepository) *Reconciler {
	return &Reconciler{
		cacheRepo:  cacheRepo,
		confirmed:  make(map[string]map[string]entity.RegistrationStatus),
		optimistic: make(map[string]map[string]optimisticEntry),
	}
}

// CurrentStatus resolves the predicate in priority order: optimistic ticket,
// durable cache, confirmed snapshot. The result is a view status (both
// pending states collapse to PENDING).
func (r *Reconciler) CurrentStatus(ctx context.Context, userID, eventID string) entity.RegistrationStatus {
	return r.Record(ctx, userID, eventID).Status.ViewStatus()
}

// Record returns the resolved status with its source tag.
func (r *Reconciler) Record(ctx context.Context, userID, eventID string) entity.RegistrationRecord {
	r.mu.Lock()
	if byEvent, ok := r.optimistic[userID]; ok {
		if e, ok := byEvent[eventID]; ok {
			r.mu.Unlock()
			return entity.RegistrationRecord{EventID: eventID, Status: e.status, Source: entity.SourceLocalOptimistic}
		}
	}
	confirmed := r.confirmedLocked(userID, eventID)
	r.mu.Unlock()

	// The durable cache outranks the snapshot: a pending grant persisted
	// before a restart must stay visible until it resolves.
	if cached, err := r.cacheRepo.Get(ctx, userID, eventID); err == nil && cached != nil {
		return entity.RegistrationRecord{EventID: eventID, Status: cached.Status, Source: entity.SourceLocalOptimistic}
	}

	return entity.RegistrationRecord{EventID: eventID, Status: confirmed, Source: entity.SourceServerConfirmed}
}

// ApplyOptimistic records the pending transition toward target and persists
// it to the durable cache as one logical step: a cache failure undoes the
// in-memory write so UI state and cache can never diverge.
func (r *Reconciler) ApplyOptimistic(ctx context.Context, userID, eventID string, target entity.RegistrationStatus) *errors.AppError {
	var pending entity.RegistrationStatus
	switch target {
	case entity.StatusRegistered:
		pending = entity.StatusPendingRegister
	case entity.StatusNone:
		pending = entity.StatusPendingUnregister
	default:
		return errors.NewAppError(errors.ErrInvalidInput, "Optimistic target must be REGISTERED or NONE", nil)
	}

	r.mu.Lock()
	prior := r.confirmedLocked(userID, eventID)
	if r.optimistic[userID] == nil {
		r.optimistic[userID] = make(map[string]optimisticEntry)
	}
	r.optimistic[userID][eventID] = optimisticEntry{status: pending, prior: prior}
	r.mu.Unlock()

	if err := r.cacheRepo.Put(ctx, userID, eventID, entity.CacheEntry{Status: pending, Timestamp: time.Now()}); err != nil {
		r.mu.Lock()
		delete(r.optimistic[userID], eventID)
		r.mu.Unlock()
		logger.Error("Reconciler:ApplyOptimistic:CacheWrite:Error", "error", err, "user_id", userID, "event_id", eventID)
		return errors.NewAppError(errors.ErrInternalServer, "Failed to persist optimistic registration state", err)
	}

	logger.Info("Reconciler:ApplyOptimistic:Applied", "user_id", userID, "event_id", eventID, "pending", pending)
	return nil
}

// Confirm replaces optimistic state with server truth and clears the
// durable-cache pending flag. After it returns no pending state remains for
// the event.
func (r *Reconciler) Confirm(ctx context.Context, userID, eventID string, serverStatus entity.RegistrationStatus) {
	r.mu.Lock()
	r.setConfirmedLocked(userID, eventID, serverStatus)
	delete(r.optimistic[userID], eventID)
	r.mu.Unlock()

	r.settleCache(ctx, userID, eventID, serverStatus)
	logger.Info("Reconciler:Confirm:Resolved", "user_id", userID, "event_id", eventID, "status", serverStatus)
}

// Rollback restores the pre-optimistic confirmed status and removes the
// durable-cache pending entry. Calling it without a matching optimistic
// write is a no-op.
func (r *Reconciler) Rollback(ctx context.Context, userID, eventID string) {
	r.mu.Lock()
	e, ok := r.optimistic[userID][eventID]
	if ok {
		delete(r.optimistic[userID], eventID)
		r.setConfirmedLocked(userID, eventID, e.prior)
	}
	prior := r.confirmedLocked(userID, eventID)
	r.mu.Unlock()

	if !ok {
		return
	}

	r.settleCache(ctx, userID, eventID, prior)
	logger.Info("Reconciler:Rollback:Resolved", "user_id", userID, "event_id", eventID, "restored", prior)
}

// SetSnapshot replaces the server-confirmed snapshot for the user from an
// authoritative registration list. In-flight optimistic state is untouched;
// pending cache entries no ticket owns are settled against the snapshot.
func (r *Reconciler) SetSnapshot(ctx context.Context, userID string, registeredEventIDs []string) {
	snapshot := make(map[string]entity.RegistrationStatus, len(registeredEventIDs))
	for _, id := range registeredEventIDs {
		snapshot[id] = entity.StatusRegistered
	}

	r.mu.Lock()
	r.confirmed[userID] = snapshot
	r.mu.Unlock()

	r.settleStale(ctx, userID, snapshot)
}

// settleStale resolves pending durable-cache entries that have no in-flight
// optimistic write backing them. A crashed process or a settle that failed
// all its attempts leaves such an entry behind, and without this pass it
// would report PENDING forever; server truth decides its terminal state.
func (r *Reconciler) settleStale(ctx context.Context, userID string, snapshot map[string]entity.RegistrationStatus) {
	entries, err := r.cacheRepo.GetAll(ctx, userID)
	if err != nil {
		logger.Warn("Reconciler:SetSnapshot:CacheRead:Error", "error", err, "user_id", userID)
		return
	}

	for eventID, cached := range entries {
		if !cached.Status.Pending() {
			continue
		}
		r.mu.Lock()
		_, inFlight := r.optimistic[userID][eventID]
		r.mu.Unlock()
		if inFlight {
			continue
		}
		status := entity.StatusNone
		if _, registered := snapshot[eventID]; registered {
			status = entity.StatusRegistered
		}
		r.settleCache(ctx, userID, eventID, status)
		logger.Info("Reconciler:SetSnapshot:SettledStalePending", "user_id", userID, "event_id", eventID, "status", status)
	}
}

func (r *Reconciler) confirmedLocked(userID, eventID string) entity.RegistrationStatus {
	if byEvent, ok := r.confirmed[userID]; ok {
		if status, ok := byEvent[eventID]; ok {
			return status
		}
	}
	return entity.StatusNone
}

func (r *Reconciler) setConfirmedLocked(userID, eventID string, status entity.RegistrationStatus) {
	if r.confirmed[userID] == nil {
		r.confirmed[userID] = make(map[string]entity.RegistrationStatus)
	}
	if status == entity.StatusNone {
		delete(r.confirmed[userID], eventID)
		return
	}
	r.confirmed[userID][eventID] = status
}

// settleCacheAttempts bounds retries of the terminal cache write. An entry
// still unsettled after the last attempt is picked up by settleStale on the
// next snapshot refresh.
const settleCacheAttempts = 2

// settleCache writes the terminal state to the durable cache: registered
// states are kept (so a reload sees them without a server round trip),
// everything else is removed. Leaving a pending entry behind would make
// Record report PENDING forever, so failed writes are retried.
func (r *Reconciler) settleCache(ctx context.Context, userID, eventID string, status entity.RegistrationStatus) {
	for attempt := 1; attempt <= settleCacheAttempts; attempt++ {
		var err error
		if status == entity.StatusRegistered {
			err = r.cacheRepo.Put(ctx, userID, eventID, entity.CacheEntry{Status: entity.StatusRegistered, Timestamp: time.Now()})
		} else {
			err = r.cacheRepo.Remove(ctx, userID, eventID)
		}
		if err == nil {
			return
		}
		logger.Error("Reconciler:settleCache:Error", "error", err, "user_id", userID, "event_id", eventID, "attempt", attempt)
	}
}

package mutation

import (
	"context"
	"sync"
	"time"

	"campus-scheduler/core/constants"
	"campus-scheduler/core/errors"
	"campus-scheduler/core/logger"
	"campus-scheduler/core/utils"

	"github.com/google/uuid"
)

type EntityType string

const (
	EntityRegistration EntityType = "event_registration"
	EntityBooking      EntityType = "booking"
)

// Ticket marks one in-flight command against one entity. Only one ticket may
// be open per (entityType, entityID) at a time; a second command is rejected
// with ErrBusy rather than queued, which stops double-submit races at the
// door.
type Ticket struct {
	ID       string
	Type     EntityType
	EntityID string
	UserID   uuid.UUID
	OpenedAt time.Time
}

type ticketKey struct {
	entityType EntityType
	entityID   string
}

// Notifier surfaces exactly one user-visible message per failed ticket.
// Implemented by the notification module and injected at wiring time.
type Notifier interface {
	NotifyFailure(ctx context.Context, userID uuid.UUID, title, message string) error
}

// Operation is one command run under a ticket. Apply performs the optimistic
// local update, Call is the network leg, Confirm reconciles local state with
// the authoritative payload, Rollback restores the pre-mutation state.
type Operation struct {
	Description string
	Apply       func(ctx context.Context) *errors.AppError
	Call        func(ctx context.Context) (any, *errors.AppError)
	Confirm     func(ctx context.Context, result any) *errors.AppError
	Rollback    func(ctx context.Context)
}

type Coordinator struct {
	mu       sync.Mutex
	inflight map[ticketKey]*Ticket
	timeout  time.Duration
	notifier Notifier
}

func NewCoordinator(timeout time.Duration, notifier Notifier) *Coordinator {
	if timeout <= 0 {
		timeout = constants.DefaultMutationTimeout
	}
	return &Coordinator{
		inflight: make(map[ticketKey]*Ticket),
		timeout:  timeout,
		notifier: notifier,
	}
}

// Acquire opens a ticket for the entity, or fails with ErrBusy when one is
// already in flight.
func (c *Coordinator) Acquire(entityType EntityType, entityID string, userID uuid.UUID) (*Ticket, *errors.AppError) {
	key := ticketKey{entityType: entityType, entityID: entityID}

	c.mu.Lock()
	defer c.mu.Unlock()

	if existing, ok := c.inflight[key]; ok {
		return nil, errors.NewAppError(errors.ErrBusy,
			"Another operation is in flight for this entity",
			map[string]any{"ticket_id": existing.ID, "opened_at": existing.OpenedAt})
	}

	ticket := &Ticket{
		ID:       utils.GenerateID(),
		Type:     entityType,
		EntityID: entityID,
		UserID:   userID,
		OpenedAt: time.Now(),
	}
	c.inflight[key] = ticket
	return ticket, nil
}

// Release closes the ticket. Safe to call more than once.
func (c *Coordinator) Release(t *Ticket) {
	if t == nil {
		return
	}
	key := ticketKey{entityType: t.Type, entityID: t.EntityID}

	c.mu.Lock()
	defer c.mu.Unlock()
	if current, ok := c.inflight[key]; ok && current.ID == t.ID {
		delete(c.inflight, key)
	}
}

// InFlight reports whether a ticket is open for the entity.
func (c *Coordinator) InFlight(entityType EntityType, entityID string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.inflight[ticketKey{entityType: entityType, entityID: entityID}]
	return ok
}

// Execute runs the optimistic-apply / network / confirm-or-rollback pipeline
// under a ticket. The network leg is bounded by the coordinator timeout so a
// hung upstream call cannot hold the ticket forever; expiry rolls back like
// any other failure. Final state is always written even if the caller has
// stopped waiting on the surrounding request.
func (c *Coordinator) Execute(ctx context.Context, entityType EntityType, entityID string, userID uuid.UUID, op Operation) (any, *errors.AppError) {
	ticket, appErr := c.Acquire(entityType, entityID, userID)
	if appErr != nil {
		logger.Warn("Coordinator:Execute:Busy", "entity_type", entityType, "entity_id", entityID)
		return nil, appErr
	}
	defer c.Release(ticket)

	logger.Info("Coordinator:Execute:Start",
		"ticket_id", ticket.ID, "entity_type", entityType, "entity_id", entityID, "op", op.Description)

	if op.Apply != nil {
		if appErr := op.Apply(ctx); appErr != nil {
			logger.Error("Coordinator:Execute:Apply:Error", "ticket_id", ticket.ID, "error", appErr)
			return nil, appErr
		}
	}

	callCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	// Resolution context survives caller cancellation: a superseding
	// navigation must not stop the final state from being written.
	resolveCtx := context.WithoutCancel(ctx)

	result, callErr := op.Call(callCtx)
	if callErr == nil && callCtx.Err() != nil {
		callErr = errors.NewAppError(errors.ErrNetwork, "Operation timed out", callCtx.Err())
	}
	if callErr != nil {
		c.fail(resolveCtx, ticket, op, callErr)
		return nil, callErr
	}

	if op.Confirm != nil {
		if appErr := op.Confirm(resolveCtx, result); appErr != nil {
			c.fail(resolveCtx, ticket, op, appErr)
			return nil, appErr
		}
	}

	logger.Info("Coordinator:Execute:Success", "ticket_id", ticket.ID, "entity_type", entityType, "entity_id", entityID)
	return result, nil
}

// fail rolls back the optimistic update and emits the single failure
// notification for this ticket.
func (c *Coordinator) fail(ctx context.Context, ticket *Ticket, op Operation, cause *errors.AppError) {
	logger.Error("Coordinator:Execute:Failed",
		"ticket_id", ticket.ID, "entity_type", ticket.Type, "entity_id", ticket.EntityID, "error", cause)

	if op.Rollback != nil {
		op.Rollback(ctx)
	}

	if c.notifier != nil {
		title := "Operation failed"
		if op.Description != "" {
			title = op.Description + " failed"
		}
		if err := c.notifier.NotifyFailure(ctx, ticket.UserID, title, cause.Message); err != nil {
			logger.Error("Coordinator:Execute:Notify:Error", "ticket_id", ticket.ID, "error", err)
		}
	}
}

package entity

import "time"

// RegistrationStatus is the per (user, event) state machine:
// NONE -> PENDING_REGISTER -> REGISTERED and
// REGISTERED -> PENDING_UNREGISTER -> NONE, with either pending state able
// to fail back to the prior confirmed one.
type RegistrationStatus string

const (
	StatusNone              RegistrationStatus = "NONE"
	StatusPendingRegister   RegistrationStatus = "PENDING_REGISTER"
	StatusRegistered        RegistrationStatus = "REGISTERED"
	StatusPendingUnregister RegistrationStatus = "PENDING_UNREGISTER"
)

// Pending reports whether the status is transient. A pending status must
// resolve to a confirmed one within a single ticket resolution.
func (s RegistrationStatus) Pending() bool {
	return s == StatusPendingRegister || s == StatusPendingUnregister
}

// ViewStatus collapses both pending states for presentation: callers only
// distinguish NONE, PENDING, REGISTERED.
func (s RegistrationStatus) ViewStatus() RegistrationStatus {
	if s.Pending() {
		return "PENDING"
	}
	return s
}

// Target returns the confirmed status a pending transition is headed for.
func (s RegistrationStatus) Target() RegistrationStatus {
	switch s {
	case StatusPendingRegister:
		return StatusRegistered
	case StatusPendingUnregister:
		return StatusNone
	default:
		return s
	}
}

type RegistrationSource string

const (
	SourceServerConfirmed RegistrationSource = "SERVER_CONFIRMED"
	SourceLocalOptimistic RegistrationSource = "LOCAL_OPTIMISTIC"
)

// RegistrationRecord is one observation of the (user, event) registration
// predicate, tagged with the source of truth that produced it.
type RegistrationRecord struct {
	EventID string             `json:"event_id"`
	Status  RegistrationStatus `json:"status"`
	Source  RegistrationSource `json:"source"`
}

// CacheEntry is the durable-cache value persisted per eventId, so a reload
// does not lose a pending optimistic grant before confirmation arrives.
type CacheEntry struct {
	Status    RegistrationStatus `json:"status"`
	Timestamp time.Time          `json:"timestamp"`
}

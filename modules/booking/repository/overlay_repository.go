package repository

import (
	"sync"

	"campus-scheduler/modules/timeline/entity"
)

// OverlayRepository holds the optimistic local view of booking mutations
// that have not been confirmed upstream yet: pending creates and updates are
// spliced into timeline reads, pending deletes hide their entry. Every
// overlay write is reverted on rollback and cleared on confirm, so the
// overlay is empty whenever no ticket is in flight.
type OverlayRepository struct {
	mu      sync.Mutex
	pending map[string]entity.CalendarEntry // id -> optimistic entry (create/update)
	deleted map[string]bool                 // id -> hidden by a pending delete
}

func NewOverlayRepository() *OverlayRepository {
	return &OverlayRepository{
		pending: make(map[string]entity.CalendarEntry),
		deleted: make(map[string]bool),
	}
}

// PutPending records an optimistic create or update. Rollback is a plain
// RemovePending: the base timeline still carries the pre-update entry, so it
// shows again once the pending one is gone.
func (r *OverlayRepository) PutPending(e entity.CalendarEntry) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.pending[e.ID] = e
}

// RemovePending drops an optimistic create/update (rollback path).
func (r *OverlayRepository) RemovePending(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.pending, id)
}

// Confirm clears all overlay traces for the id; the next upstream fetch is
// authoritative.
func (r *OverlayRepository) Confirm(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.pending, id)
	delete(r.deleted, id)
}

// MarkDeleted hides an entry while its delete is in flight.
func (r *OverlayRepository) MarkDeleted(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.deleted[id] = true
}

// UnmarkDeleted reverses MarkDeleted (rollback path).
func (r *OverlayRepository) UnmarkDeleted(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.deleted, id)
}

// Apply splices the overlay into a freshly merged timeline: pending updates
// replace their entry, pending deletes hide theirs, pending creates append.
func (r *OverlayRepository) Apply(entries []entity.CalendarEntry) []entity.CalendarEntry {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]entity.CalendarEntry, 0, len(entries)+len(r.pending))
	seen := make(map[string]bool, len(entries))

	for _, e := range entries {
		seen[e.ID] = true
		if r.deleted[e.ID] {
			continue
		}
		if pending, ok := r.pending[e.ID]; ok {
			out = append(out, pending)
			continue
		}
		out = append(out, e)
	}

	for id, pending := range r.pending {
		if !seen[id] {
			out = append(out, pending)
		}
	}
	return out
}

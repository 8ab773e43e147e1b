package invites

import (
	"hangout-backend/models"

	"github.com/google/uuid"
)

// Store holds the active invite collection for one user session, newest
// first. It is pure in-memory bookkeeping: no I/O, no locking. Callers
// that need synchronization (the Coordinator) provide their own.
type Store struct {
	invites []models.Invite
}

// NewStore builds a store from an already-ordered snapshot (newest first).
func NewStore(initial []models.Invite) *Store {
	s := &Store{invites: make([]models.Invite, 0, len(initial))}
	for _, inv := range initial {
		s.invites = append(s.invites, inv.Clone())
	}
	return s
}

// Add prepends an invite so reads stay most-recent-first.
func (s *Store) Add(inv models.Invite) {
	s.invites = append([]models.Invite{inv.Clone()}, s.invites...)
}

// Replace locates an invite by id and swaps it for updater's result,
// keeping its position. Returns false when the id is absent; an absent id
// is never an error here because UI state can be stale by a render cycle.
func (s *Store) Replace(id uuid.UUID, updater func(models.Invite) models.Invite) bool {
	for i, inv := range s.invites {
		if inv.ID == id {
			s.invites[i] = updater(inv.Clone())
			return true
		}
	}
	return false
}

// Remove deletes the invite with the given id. Removing an absent id is a
// no-op.
func (s *Store) Remove(id uuid.UUID) {
	for i, inv := range s.invites {
		if inv.ID == id {
			s.invites = append(s.invites[:i], s.invites[i+1:]...)
			return
		}
	}
}

// Get returns a copy of the invite with the given id.
func (s *Store) Get(id uuid.UUID) (models.Invite, bool) {
	for _, inv := range s.invites {
		if inv.ID == id {
			return inv.Clone(), true
		}
	}
	return models.Invite{}, false
}

// Partition splits the collection into the two inbox tabs: outgoing
// invites, and inbound ones (received plus review requests). Computed
// fresh on every call so it always reflects the current collection.
func (s *Store) Partition() (sent, inbox []models.Invite) {
	for _, inv := range s.invites {
		if inv.Category == models.CategorySent {
			sent = append(sent, inv.Clone())
		} else {
			inbox = append(inbox, inv.Clone())
		}
	}
	return sent, inbox
}

// CountInbound returns the badge count: received invites plus review
// requests.
func (s *Store) CountInbound() int {
	count := 0
	for _, inv := range s.invites {
		if inv.IsInbound() {
			count++
		}
	}
	return count
}

// All returns a copy of the full collection, newest first.
func (s *Store) All() []models.Invite {
	out := make([]models.Invite, 0, len(s.invites))
	for _, inv := range s.invites {
		out = append(out, inv.Clone())
	}
	return out
}

// Len returns the number of active invites.
func (s *Store) Len() int {
	return len(s.invites)
}

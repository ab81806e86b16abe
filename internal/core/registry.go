// Package core holds the connection registry and the event routing engine.
// It never touches transport resources; adapters own those.
package core

import (
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/hallwey/office/internal/domain"
)

// Registry is the threadsafe store of live participants keyed by their
// connection id. A record exists iff its connection has joined and not yet
// disconnected. All operations are atomic with respect to each other and
// return copies, so callers can never observe a half-updated record.
type Registry struct {
	mu           sync.RWMutex
	participants map[domain.ConnectionID]*domain.Participant
	order        []domain.ConnectionID
}

func NewRegistry() *Registry {
	return &Registry{
		participants: make(map[domain.ConnectionID]*domain.Participant),
	}
}

// Join inserts the record for id, merging client-supplied fields with the
// connection identity and voice off. A second join for a live id overwrites
// the record (join is idempotent per connection identity) but keeps its
// original position in the snapshot order.
func (r *Registry) Join(id domain.ConnectionID, p domain.Participant) domain.Participant {
	r.mu.Lock()
	defer r.mu.Unlock()

	p.ConnectionID = id
	p.VoiceEnabled = false
	if _, live := r.participants[id]; !live {
		r.order = append(r.order, id)
	}
	stored := p
	r.participants[id] = &stored
	log.Info().Str("module", "core.registry").Str("sid", string(id)).Str("name", p.Name).Msg("participant joined")
	return p
}

// UpdatePosition mutates the record's position if the connection has joined.
func (r *Registry) UpdatePosition(id domain.ConnectionID, x, y float64) (domain.Participant, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.participants[id]
	if !ok {
		return domain.Participant{}, false
	}
	p.X = x
	p.Y = y
	return *p, true
}

// UpdateStatus mutates the record's status if the connection has joined.
func (r *Registry) UpdateStatus(id domain.ConnectionID, status string) (domain.Participant, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.participants[id]
	if !ok {
		return domain.Participant{}, false
	}
	p.Status = status
	return *p, true
}

// UpdateVoice mutates the record's voice flag if the connection has joined.
func (r *Registry) UpdateVoice(id domain.ConnectionID, enabled bool) (domain.Participant, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.participants[id]
	if !ok {
		return domain.Participant{}, false
	}
	p.VoiceEnabled = enabled
	return *p, true
}

// Get returns a copy of the record for id.
func (r *Registry) Get(id domain.ConnectionID) (domain.Participant, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.participants[id]
	if !ok {
		return domain.Participant{}, false
	}
	return *p, true
}

// Remove deletes the record and returns what was stored. Removing an absent
// id is a no-op; disconnects racing ahead of joins are routine.
func (r *Registry) Remove(id domain.ConnectionID) (domain.Participant, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.participants[id]
	if !ok {
		return domain.Participant{}, false
	}
	delete(r.participants, id)
	for i, oid := range r.order {
		if oid == id {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	log.Info().Str("module", "core.registry").Str("sid", string(id)).Str("name", p.Name).Msg("participant removed")
	return *p, true
}

// Snapshot returns copies of all live records in join order, consistent at a
// single point in time.
func (r *Registry) Snapshot() []domain.Participant {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]domain.Participant, 0, len(r.participants))
	for _, id := range r.order {
		if p, ok := r.participants[id]; ok {
			out = append(out, *p)
		}
	}
	return out
}

// Count returns the number of live participants.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.participants)
}

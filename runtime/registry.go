package runtime

import (
	"chat-relay/contract"
	"chat-relay/domain"
	"sync"
)

// Registry tracks the single live connection of each role. It is the only
// serialization point for the role -> channel association: at any instant it
// holds at most one entry per role.
type Registry struct {
	mu    sync.RWMutex
	sinks map[domain.Role]contract.EventSink
}

func NewRegistry() *Registry {
	return &Registry{sinks: make(map[domain.Role]contract.EventSink)}
}

// Register installs sink as the live connection for role. A previous
// connection for the same role is superseded: it is removed and closed, so
// two channels never both believe they are "the" admin or "the" guest.
// Returns the superseded sink, or nil if the slot was free.
func (r *Registry) Register(role domain.Role, sink contract.EventSink) contract.EventSink {
	r.mu.Lock()
	prior := r.sinks[role]
	r.sinks[role] = sink
	r.mu.Unlock()

	// Closed outside the lock; Close may wake a write pump synchronously.
	if prior != nil {
		prior.Close()
	}
	return prior
}

// Unregister removes the entry for role only if sink is still the registered
// handle. The delayed disconnect of a superseded connection must not clobber
// the connection that replaced it.
func (r *Registry) Unregister(role domain.Role, sink contract.EventSink) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	current, ok := r.sinks[role]
	if !ok || current != sink {
		return false
	}
	delete(r.sinks, role)
	return true
}

// Snapshot returns a point-in-time copy of all live entries. Iterating the
// result needs no lock, so sends happen outside the critical section and a
// slow send never blocks register/unregister.
func (r *Registry) Snapshot() []contract.RegistryEntry {
	r.mu.RLock()
	defer r.mu.RUnlock()

	entries := make([]contract.RegistryEntry, 0, len(r.sinks))
	for role, sink := range r.sinks {
		entries = append(entries, contract.RegistryEntry{Role: role, Sink: sink})
	}
	return entries
}

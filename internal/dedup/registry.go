// Package dedup tracks which side effects have already been performed for a
// timer so that each one runs at most once per completion.
package dedup

import "sync"

// Kind separates independent side effects for the same timer id.
type Kind string

const (
	Completed Kind = "completed"
	Modal     Kind = "modal"
	Alert     Kind = "alert"
)

// Kinds lists every tracked kind.
var Kinds = []Kind{Completed, Modal, Alert}

// Registry is an in-memory set of claimed (kind, id) pairs. It is safe for
// concurrent use and is never persisted.
type Registry struct {
	mu      sync.Mutex
	claimed map[Kind]map[string]struct{}
}

func NewRegistry() *Registry {
	return &Registry{claimed: make(map[Kind]map[string]struct{})}
}

// TryClaim marks (kind, id) as handled. It reports true only for the first
// caller; every later call returns false until the pair is released.
func (r *Registry) TryClaim(kind Kind, id string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	set, ok := r.claimed[kind]
	if !ok {
		set = make(map[string]struct{})
		r.claimed[kind] = set
	}
	if _, taken := set[id]; taken {
		return false
	}
	set[id] = struct{}{}
	return true
}

// Has reports whether (kind, id) is currently claimed.
func (r *Registry) Has(kind Kind, id string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.claimed[kind][id]
	return ok
}

// Release forgets (kind, id) so that it can be claimed again.
func (r *Registry) Release(kind Kind, id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.claimed[kind], id)
}

// ReleaseAll forgets every kind for each id.
func (r *Registry) ReleaseAll(ids ...string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, set := range r.claimed {
		for _, id := range ids {
			delete(set, id)
		}
	}
}

// Reset empties the registry.
func (r *Registry) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.claimed = make(map[Kind]map[string]struct{})
}

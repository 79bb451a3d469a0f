package store

import "math"

// Registry allocates notification ids. Zero is reserved by the protocol to
// mean "assign a new id", so allocation starts at 1 and wraps back to 1 past
// the maximum value.
//
// Ids are never released during the process's lifetime: a replaced or removed
// notification keeps its id marked used so it cannot be reissued. The registry
// is owned by the store's single writer and is not safe for concurrent use.
type Registry struct {
	next uint32
	used map[uint32]struct{}
}

func NewRegistry() *Registry {
	return &Registry{next: 1, used: map[uint32]struct{}{}}
}

// Allocate returns the next free id, scanning upward from the candidate and
// skipping used ids. Running out of ids requires all 2^32-1 non-zero ids to be
// live at once, which is treated as unreachable.
func (r *Registry) Allocate() uint32 {
	for {
		if _, taken := r.used[r.next]; !taken {
			break
		}
		if r.next == math.MaxUint32 {
			r.next = 1
		} else {
			r.next++
		}
	}
	id := r.next
	r.used[id] = struct{}{}
	return id
}

// Mark records an id chosen by the client (a nonzero replaces_id) as used.
func (r *Registry) Mark(id uint32) {
	if id != 0 {
		r.used[id] = struct{}{}
	}
}

// Release frees an id for reallocation. No-op if absent. The store does not
// call this; it exists for callers that want id reuse.
func (r *Registry) Release(id uint32) {
	delete(r.used, id)
}

// Used reports whether id has ever been handed out.
func (r *Registry) Used(id uint32) bool {
	_, ok := r.used[id]
	return ok
}

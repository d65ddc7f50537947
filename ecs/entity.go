package ecs

import (
	"fmt"
	"sync"
)

// Entity encodes both the slot index (lower 32 bits) and the generation
// counter (upper 32 bits). The zero Entity is never valid: generations
// start at 1.
type Entity uint64

func newEntity(index, generation uint32) Entity {
	return Entity(uint64(generation)<<32 | uint64(index))
}

// Index extracts the slot index from the entity handle
func (e Entity) Index() uint32 {
	return uint32(e & 0xFFFFFFFF)
}

// Generation extracts the generation counter from the entity handle
func (e Entity) Generation() uint32 {
	return uint32(e >> 32)
}

// IsZero reports whether the handle is the zero value
func (e Entity) IsZero() bool {
	return e == 0
}

func (e Entity) String() string {
	return fmt.Sprintf("Entity(%d:%d)", e.Index(), e.Generation())
}

// Registry owns entity identity and liveness. Slots are recycled through a
// free list; every recycle bumps the slot's generation so stale handles are
// detectable in O(1).
type Registry struct {
	mu          sync.RWMutex
	generations []uint32
	free        []uint32
	alive       int
}

// NewRegistry creates an empty entity registry.
func NewRegistry() *Registry {
	return &Registry{}
}

// Create allocates a free slot (reusing a previously freed one when
// available) and returns a handle carrying the slot's current generation.
func (r *Registry) Create() Entity {
	r.mu.Lock()
	defer r.mu.Unlock()

	var index uint32
	if n := len(r.free); n > 0 {
		index = r.free[n-1]
		r.free = r.free[:n-1]
	} else {
		index = uint32(len(r.generations))
		r.generations = append(r.generations, 1)
	}

	r.alive++
	return newEntity(index, r.generations[index])
}

// Destroy releases the entity's slot and bumps its generation so the handle
// can never validate again. Returns false if the handle is already stale.
func (r *Registry) Destroy(e Entity) bool {
	if e.IsZero() {
		return false
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.isValidLocked(e) {
		return false
	}

	r.generations[e.Index()]++
	r.free = append(r.free, e.Index())
	r.alive--
	return true
}

// IsValid reports whether the handle refers to a currently live entity.
// This is the single source of truth used to reject stale references.
func (r *Registry) IsValid(e Entity) bool {
	if e.IsZero() {
		return false
	}

	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.isValidLocked(e)
}

// Alive returns the number of live entities.
func (r *Registry) Alive() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.alive
}

func (r *Registry) isValidLocked(e Entity) bool {
	idx := e.Index()
	if idx >= uint32(len(r.generations)) {
		return false
	}
	return r.generations[idx] == e.Generation()
}

// handleFor rebuilds the full handle for a slot that is known to hold a live
// entity (component stores only ever reference live slots).
func (r *Registry) handleFor(index uint32) Entity {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return newEntity(index, r.generations[index])
}

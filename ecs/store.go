package ecs

import (
	"fmt"
	"iter"
	"unsafe"

	"github.com/kamstrup/intmap"
)

// store is a sparse-set storage for components of type T: a dense array with
// no holes, a reverse dense-slot -> entity-index slice, and a sparse
// entity-index -> dense-slot map. Add, remove and existence checks are O(1);
// iteration walks the dense array linearly.
//
// Capacity is fixed at registration time. Exceeding it is rejected rather
// than reallocating, so component pointers stay stable within a frame.
type store[T any] struct {
	desc    ComponentTypeDescriptor
	dense   []T
	reverse []uint32
	sparse  *intmap.Map[uint32, uint32]
}

func newStore[T any](desc ComponentTypeDescriptor) *store[T] {
	return &store[T]{
		desc:    desc,
		dense:   make([]T, 0, desc.MaxInstances),
		reverse: make([]uint32, 0, desc.MaxInstances),
		sparse:  intmap.New[uint32, uint32](256),
	}
}

// add appends the value to the dense array and records both mappings.
func (s *store[T]) add(entity uint32, value T) error {
	if _, exists := s.sparse.Get(entity); exists {
		return fmt.Errorf("%w: %s", ErrDuplicateComponent, s.desc.Name)
	}
	if len(s.dense) >= s.desc.MaxInstances {
		return fmt.Errorf("%w: %s (max %d)", ErrStoreCapacityExceeded, s.desc.Name, s.desc.MaxInstances)
	}

	slot := uint32(len(s.dense))
	s.dense = append(s.dense, value)
	s.reverse = append(s.reverse, entity)
	s.sparse.Put(entity, slot)
	return nil
}

// remove swaps the last dense element into the removed slot and fixes up
// both maps. Returns false if the entity holds no component of this type.
func (s *store[T]) remove(entity uint32) bool {
	slot, exists := s.sparse.Get(entity)
	if !exists {
		return false
	}

	last := uint32(len(s.dense) - 1)
	if slot != last {
		s.dense[slot] = s.dense[last]
		moved := s.reverse[last]
		s.reverse[slot] = moved
		s.sparse.Put(moved, slot)
	}

	var zero T
	s.dense[last] = zero
	s.dense = s.dense[:last]
	s.reverse = s.reverse[:last]
	s.sparse.Del(entity)
	return true
}

// get returns a pointer into the dense array, or nil if absent.
func (s *store[T]) get(entity uint32) *T {
	slot, exists := s.sparse.Get(entity)
	if !exists {
		return nil
	}
	return &s.dense[slot]
}

// all iterates the dense array directly (cache-linear). Must not run
// concurrently with add/remove for the same type; the scheduler's conflict
// analysis guarantees that, not locking inside the store.
func (s *store[T]) all() iter.Seq2[uint32, *T] {
	return func(yield func(uint32, *T) bool) {
		for slot := range s.dense {
			if !yield(s.reverse[slot], &s.dense[slot]) {
				return
			}
		}
	}
}

// componentStore implementation

func (s *store[T]) addErased(entity uint32, value any) error {
	switch v := value.(type) {
	case T:
		return s.add(entity, v)
	case *T:
		return s.add(entity, *v)
	default:
		return fmt.Errorf("%w: value %T is not %s", ErrComponentTypeMismatch, value, s.desc.Name)
	}
}

func (s *store[T]) removeEntity(entity uint32) bool {
	return s.remove(entity)
}

func (s *store[T]) ptrTo(entity uint32) unsafe.Pointer {
	slot, exists := s.sparse.Get(entity)
	if !exists {
		return nil
	}
	return unsafe.Pointer(&s.dense[slot])
}

func (s *store[T]) count() int {
	return len(s.dense)
}

func (s *store[T]) owners() iter.Seq[uint32] {
	return func(yield func(uint32) bool) {
		for _, entity := range s.reverse {
			if !yield(entity) {
				return
			}
		}
	}
}

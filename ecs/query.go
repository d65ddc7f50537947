package ecs

import "iter"

// Query is a View that systems declare as a struct field; the scheduler
// initializes it during registration by calling Init. Iteration is lazy and
// restartable within a frame.
type Query[T any] struct {
	view *View[T]
}

// NewQuery creates an initialized Query outside of a system struct.
func NewQuery[T any](world *World) *Query[T] {
	return &Query[T]{view: NewView[T](world)}
}

// Init initializes or re-initializes the Query against a world.
// Called by the scheduler during system registration.
func (q *Query[T]) Init(world *World) {
	q.view = NewView[T](world)
}

// Iter returns an iterator over matching entities and component data.
func (q *Query[T]) Iter() iter.Seq2[Entity, T] {
	return q.view.Iter()
}

// Values returns an iterator over component data only.
func (q *Query[T]) Values() iter.Seq[T] {
	return func(yield func(T) bool) {
		for _, item := range q.view.Iter() {
			if !yield(item) {
				return
			}
		}
	}
}

// Get returns a populated view struct for a single entity, or nil.
func (q *Query[T]) Get(e Entity) *T {
	return q.view.Get(e)
}

// Count returns the number of matching entities.
func (q *Query[T]) Count() int {
	return q.view.Count()
}

package ecs

import (
	"iter"
	"reflect"
	"unsafe"
)

// View represents a query for entities possessing a specific combination of
// components. The type T should be a struct with pointer fields for each
// component type; embedded fields are always required, and named fields can
// be marked optional with the `ecs:"optional"` struct tag.
//
// Iteration walks the dense array of the smallest required store and tests
// membership in the others, to minimize wasted probes.
type View[T any] struct {
	world       *World
	ids         []TypeID
	optional    []bool
	fieldOffset []uintptr
	required    int
}

// NewView creates a new view for the given struct type. Every field's
// component type must already be registered.
func NewView[T any](world *World) *View[T] {
	var zero T
	structType := reflect.TypeOf(zero)

	if structType.Kind() != reflect.Struct {
		panic("View type parameter must be a struct")
	}

	v := &View[T]{world: world}

	for i := 0; i < structType.NumField(); i++ {
		field := structType.Field(i)

		if field.Type.Kind() != reflect.Ptr {
			panic("View struct fields must be pointer types")
		}

		componentType := field.Type.Elem()
		id, ok := world.types.idFor(componentType)
		if !ok {
			panic("component type " + componentType.String() + " not registered")
		}

		// Embedded fields (field.Anonymous) are always required
		isOptional := false
		if !field.Anonymous {
			tag := field.Tag.Get("ecs")
			if tag != "" {
				if tag == "optional" {
					isOptional = true
				} else {
					panic("invalid ecs tag value: \"" + tag + "\" (only \"optional\" is supported)")
				}
			}
		}

		v.ids = append(v.ids, id)
		v.optional = append(v.optional, isOptional)
		v.fieldOffset = append(v.fieldOffset, field.Offset)
		if !isOptional {
			v.required++
		}
	}

	if v.required == 0 {
		panic("View must declare at least one required component field")
	}

	return v
}

// Fill populates the struct with pointers into component storage for the
// given entity. Returns false if the handle is stale or a required component
// is missing; optional fields are set to nil when absent.
func (v *View[T]) Fill(e Entity, out *T) bool {
	if !v.world.registry.IsValid(e) {
		return false
	}
	return v.fillIndex(e.Index(), out)
}

func (v *View[T]) fillIndex(index uint32, out *T) bool {
	structPtr := unsafe.Pointer(out)

	for i, id := range v.ids {
		var componentPtr unsafe.Pointer
		if st := v.world.storeByID(id); st != nil {
			componentPtr = st.ptrTo(index)
		}

		if componentPtr == nil && !v.optional[i] {
			return false
		}

		fieldPtr := unsafe.Pointer(uintptr(structPtr) + v.fieldOffset[i])
		*(*unsafe.Pointer)(fieldPtr) = componentPtr
	}

	return true
}

// Get returns a populated view struct for the given entity, or nil if the
// entity doesn't have all the required components.
func (v *View[T]) Get(e Entity) *T {
	var result T
	if !v.Fill(e, &result) {
		return nil
	}
	return &result
}

// smallestRequired picks the required store with the fewest instances.
// Returns nil when any required type has no store yet (no entity can match).
func (v *View[T]) smallestRequired() componentStore {
	var smallest componentStore
	for i, id := range v.ids {
		if v.optional[i] {
			continue
		}
		st := v.world.storeByID(id)
		if st == nil {
			return nil
		}
		if smallest == nil || st.count() < smallest.count() {
			smallest = st
		}
	}
	return smallest
}

// Iter returns a lazy, restartable iterator over matching entities and their
// component data. The smallest involved store is re-selected on every
// restart.
func (v *View[T]) Iter() iter.Seq2[Entity, T] {
	return func(yield func(Entity, T) bool) {
		smallest := v.smallestRequired()
		if smallest == nil {
			return
		}

		var result T
		for index := range smallest.owners() {
			if !v.fillIndex(index, &result) {
				continue
			}
			if !yield(v.world.registry.handleFor(index), result) {
				return
			}
		}
	}
}

// Count returns the number of entities currently matching the view.
func (v *View[T]) Count() int {
	smallest := v.smallestRequired()
	if smallest == nil {
		return 0
	}

	var result T
	n := 0
	for index := range smallest.owners() {
		if v.fillIndex(index, &result) {
			n++
		}
	}
	return n
}

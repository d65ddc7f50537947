package ecs

import (
	"fmt"
	"reflect"

	"github.com/cespare/xxhash/v2"
)

// TypeID is a stable identifier for a registered component type, derived
// from the type's fully qualified name so it does not vary between runs.
type TypeID uint64

// TypeOf returns the TypeID for a component type.
func TypeOf[T any]() TypeID {
	return typeIDFor(reflect.TypeFor[T]())
}

func typeIDFor(t reflect.Type) TypeID {
	return TypeID(xxhash.Sum64String(t.String()))
}

// DefaultMaxInstances is the store capacity used when a component type is
// registered without an explicit maximum.
const DefaultMaxInstances = 1 << 16

// ComponentTypeDescriptor describes a registered component type: identity,
// memory layout, and the fixed capacity used to pre-size its store.
type ComponentTypeDescriptor struct {
	ID           TypeID
	Name         string
	Size         uintptr
	Align        uintptr
	MaxInstances int
}

// ComponentRegistry manages component type registration for a World.
// Each World has its own ComponentRegistry, allowing multiple independent
// worlds to coexist without interference.
type ComponentRegistry struct {
	descriptors map[TypeID]ComponentTypeDescriptor
	factories   map[TypeID]func() componentStore
	byType      map[reflect.Type]TypeID
}

// NewComponentRegistry creates a new component registry.
func NewComponentRegistry() *ComponentRegistry {
	return &ComponentRegistry{
		descriptors: make(map[TypeID]ComponentTypeDescriptor),
		factories:   make(map[TypeID]func() componentStore),
		byType:      make(map[reflect.Type]TypeID),
	}
}

// RegisterComponentType registers a component type with the given maximum
// instance count. It must be called exactly once per type before the first
// AddComponent for that type; maxInstances <= 0 selects
// DefaultMaxInstances.
func RegisterComponentType[T any](r *ComponentRegistry, maxInstances int) error {
	t := reflect.TypeFor[T]()
	if k := t.Kind(); k == reflect.Ptr || k == reflect.Map || k == reflect.Chan || k == reflect.Func {
		panic("components cannot be pointers, maps, channels, or functions")
	}

	if maxInstances <= 0 {
		maxInstances = DefaultMaxInstances
	}

	id := typeIDFor(t)
	if _, exists := r.descriptors[id]; exists {
		return fmt.Errorf("%w: %s", ErrTypeAlreadyRegistered, t.String())
	}

	desc := ComponentTypeDescriptor{
		ID:           id,
		Name:         t.String(),
		Size:         t.Size(),
		Align:        uintptr(t.Align()),
		MaxInstances: maxInstances,
	}

	r.descriptors[id] = desc
	r.byType[t] = id
	r.factories[id] = func() componentStore {
		return newStore[T](desc)
	}
	return nil
}

// Descriptor returns the descriptor for a registered type ID.
func (r *ComponentRegistry) Descriptor(id TypeID) (ComponentTypeDescriptor, bool) {
	desc, ok := r.descriptors[id]
	return desc, ok
}

// idFor maps a reflect.Type to its registered TypeID.
func (r *ComponentRegistry) idFor(t reflect.Type) (TypeID, bool) {
	if t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	id, ok := r.byType[t]
	return id, ok
}

// newStore instantiates the pre-sized store for a registered type.
// Returns nil if the type is not registered.
func (r *ComponentRegistry) newStore(id TypeID) componentStore {
	factory := r.factories[id]
	if factory == nil {
		return nil
	}
	return factory()
}

package ecs_test

import "github.com/plus3/simcore/ecs"

// Common test component types
type Position struct {
	X, Y float32
}

type Velocity struct {
	DX, DY float32
}

type Name struct {
	Value string
}

type Health struct {
	Current int
	Max     int
}

type Counter struct {
	Ticks   int
	Initial float64
	Value   float64
}

type Target struct {
	X, Y float32
}

// Custom primitive types for testing non-struct components
type Score int32
type Tag string

func newTestRegistry() *ecs.ComponentRegistry {
	registry := ecs.NewComponentRegistry()
	mustRegister[Position](registry, 0)
	mustRegister[Velocity](registry, 0)
	mustRegister[Name](registry, 0)
	mustRegister[Health](registry, 0)
	mustRegister[Counter](registry, 0)
	mustRegister[Target](registry, 0)
	mustRegister[Score](registry, 0)
	mustRegister[Tag](registry, 0)
	return registry
}

func mustRegister[T any](r *ecs.ComponentRegistry, maxInstances int) {
	if err := ecs.RegisterComponentType[T](r, maxInstances); err != nil {
		panic(err)
	}
}

func newTestWorld(opts ...ecs.Option) *ecs.World {
	return ecs.NewWorld(newTestRegistry(), opts...)
}

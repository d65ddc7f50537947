package main

import (
	"math/rand"

	"github.com/plus3/simcore/ecs"
)

// Synthetic component set sized to force several hazard-separated batches.
type Transform struct {
	X, Y, Z float64
}

type Motion struct {
	VX, VY, VZ float64
}

type Vitals struct {
	HP    float64
	Regen float64
}

type Combat struct {
	Damage float64
}

type Decay struct {
	TTL float64
}

func registerStressComponents(registry *ecs.ComponentRegistry, maxInstances int) error {
	if err := ecs.RegisterComponentType[Transform](registry, maxInstances); err != nil {
		return err
	}
	if err := ecs.RegisterComponentType[Motion](registry, maxInstances); err != nil {
		return err
	}
	if err := ecs.RegisterComponentType[Vitals](registry, maxInstances); err != nil {
		return err
	}
	if err := ecs.RegisterComponentType[Combat](registry, maxInstances); err != nil {
		return err
	}
	return ecs.RegisterComponentType[Decay](registry, maxInstances)
}

func spawnRandomEntity(w *ecs.World, rng *rand.Rand) error {
	e := w.CreateEntity()

	if err := ecs.AddComponent(w, e, Transform{X: rng.Float64() * 100, Y: rng.Float64() * 100}); err != nil {
		return err
	}
	if rng.Float64() < 0.8 {
		if err := ecs.AddComponent(w, e, Motion{VX: rng.Float64(), VY: rng.Float64()}); err != nil {
			return err
		}
	}
	if rng.Float64() < 0.6 {
		if err := ecs.AddComponent(w, e, Vitals{HP: 100, Regen: rng.Float64()}); err != nil {
			return err
		}
	}
	if rng.Float64() < 0.3 {
		if err := ecs.AddComponent(w, e, Combat{Damage: rng.Float64() * 5}); err != nil {
			return err
		}
	}
	if rng.Float64() < 0.4 {
		if err := ecs.AddComponent(w, e, Decay{TTL: 60 + rng.Float64()*60}); err != nil {
			return err
		}
	}
	return nil
}

type driftSystem struct {
	Entities ecs.Query[struct{ *Motion }]
}

func (s *driftSystem) Execute(frame *ecs.UpdateFrame) {
	n := 0
	for _, item := range s.Entities.Iter() {
		item.Motion.VX *= 0.999
		item.Motion.VY *= 0.999
		n++
	}
	frame.CountProcessed(n)
}

type movementSystem struct {
	Entities ecs.Query[struct {
		*Transform
		*Motion
	}]
}

func (s *movementSystem) Execute(frame *ecs.UpdateFrame) {
	n := 0
	for _, item := range s.Entities.Iter() {
		item.Transform.X += item.Motion.VX * frame.DeltaTime
		item.Transform.Y += item.Motion.VY * frame.DeltaTime
		n++
	}
	frame.CountProcessed(n)
}

type damageSystem struct {
	Entities ecs.Query[struct {
		*Vitals
		*Combat
	}]
}

func (s *damageSystem) Execute(frame *ecs.UpdateFrame) {
	n := 0
	for _, item := range s.Entities.Iter() {
		item.Vitals.HP -= item.Combat.Damage * frame.DeltaTime
		n++
	}
	frame.CountProcessed(n)
}

type regenSystem struct {
	Entities ecs.Query[struct{ *Vitals }]
}

func (s *regenSystem) Execute(frame *ecs.UpdateFrame) {
	n := 0
	for _, item := range s.Entities.Iter() {
		item.Vitals.HP += item.Vitals.Regen * frame.DeltaTime
		n++
	}
	frame.CountProcessed(n)
}

type decaySystem struct {
	Entities ecs.Query[struct{ *Decay }]
}

func (s *decaySystem) Execute(frame *ecs.UpdateFrame) {
	n := 0
	for _, item := range s.Entities.Iter() {
		item.Decay.TTL -= frame.DeltaTime
		n++
	}
	frame.CountProcessed(n)
}

type auditSystem struct {
	Transforms ecs.Query[struct{ *Transform }]
	Checksum   float64
}

func (s *auditSystem) Execute(frame *ecs.UpdateFrame) {
	sum := 0.0
	n := 0
	for _, item := range s.Transforms.Iter() {
		sum += item.Transform.X
		n++
	}
	s.Checksum = sum
	frame.CountProcessed(n)
}

func registerStressSystems(w *ecs.World) error {
	transform := ecs.TypeOf[Transform]()
	motion := ecs.TypeOf[Motion]()
	vitals := ecs.TypeOf[Vitals]()
	combat := ecs.TypeOf[Combat]()
	decay := ecs.TypeOf[Decay]()

	type reg struct {
		name string
		sys  ecs.System
		reqs ecs.ThreadingRequirements
	}

	regs := []reg{
		{"drift", &driftSystem{}, ecs.ThreadingRequirements{
			Writes: []ecs.TypeID{motion}, Phase: ecs.PhasePreUpdate, Parallel: true,
		}},
		{"movement", &movementSystem{}, ecs.ThreadingRequirements{
			Reads: []ecs.TypeID{motion}, Writes: []ecs.TypeID{transform},
			Phase: ecs.PhaseUpdate, Parallel: true,
		}},
		{"damage", &damageSystem{}, ecs.ThreadingRequirements{
			Reads: []ecs.TypeID{combat}, Writes: []ecs.TypeID{vitals},
			Phase: ecs.PhaseUpdate, Parallel: true,
		}},
		// Hazard against damage on Vitals; the explicit predecessor fixes
		// the order regardless of declaration position.
		{"regen", &regenSystem{}, ecs.ThreadingRequirements{
			Writes: []ecs.TypeID{vitals}, After: []string{"damage"},
			Phase: ecs.PhaseUpdate, Parallel: true,
		}},
		{"decay", &decaySystem{}, ecs.ThreadingRequirements{
			Writes: []ecs.TypeID{decay}, Phase: ecs.PhaseUpdate, Parallel: true,
		}},
		{"audit", &auditSystem{}, ecs.ThreadingRequirements{
			Reads: []ecs.TypeID{transform}, Phase: ecs.PhasePostUpdate, Parallel: false,
		}},
	}

	for _, r := range regs {
		if err := w.RegisterSystem(r.name, r.sys, r.reqs); err != nil {
			return err
		}
	}
	return nil
}

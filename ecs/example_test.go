package ecs_test

import (
	"fmt"

	"github.com/plus3/simcore/ecs"
)

type Fuel struct {
	Liters float64
}

type Engine struct {
	Running bool
}

func ExampleWorld() {
	registry := ecs.NewComponentRegistry()
	if err := ecs.RegisterComponentType[Fuel](registry, 1024); err != nil {
		panic(err)
	}

	world := ecs.NewWorld(registry)

	tank := world.CreateEntity()
	if err := ecs.AddComponent(world, tank, Fuel{Liters: 40}); err != nil {
		panic(err)
	}

	fuel, ok := ecs.GetComponent[Fuel](world, tank)
	fmt.Println(ok, fuel.Liters)

	world.DestroyEntity(tank)
	fmt.Println(world.IsValid(tank))

	// Output:
	// true 40
	// false
}

type burnSystem struct {
	Tanks ecs.Query[struct{ *Fuel }]
}

func (s *burnSystem) Execute(frame *ecs.UpdateFrame) {
	for _, item := range s.Tanks.Iter() {
		item.Fuel.Liters -= 0.5 * frame.DeltaTime
	}
}

func ExampleWorld_RegisterSystem() {
	registry := ecs.NewComponentRegistry()
	if err := ecs.RegisterComponentType[Fuel](registry, 1024); err != nil {
		panic(err)
	}

	world := ecs.NewWorld(registry)

	tank := world.CreateEntity()
	if err := ecs.AddComponent(world, tank, Fuel{Liters: 10}); err != nil {
		panic(err)
	}

	err := world.RegisterSystem("burn", &burnSystem{}, ecs.ThreadingRequirements{
		Writes:   []ecs.TypeID{ecs.TypeOf[Fuel]()},
		Phase:    ecs.PhaseUpdate,
		Parallel: true,
	})
	if err != nil {
		panic(err)
	}

	for i := 0; i < 4; i++ {
		if err := world.Step(1.0); err != nil {
			panic(err)
		}
	}

	fuel, _ := ecs.GetComponent[Fuel](world, tank)
	fmt.Println(fuel.Liters)

	// Output:
	// 8
}

type lowFuelEvent struct {
	Tank ecs.Entity
}

func ExampleSubscribe() {
	registry := ecs.NewComponentRegistry()
	if err := ecs.RegisterComponentType[Engine](registry, 16); err != nil {
		panic(err)
	}

	world := ecs.NewWorld(registry)

	ecs.Subscribe(world.Events(), func(e lowFuelEvent) {
		fmt.Println("low fuel on", e.Tank.Index())
	})

	ecs.Publish(world.Events(), lowFuelEvent{Tank: world.CreateEntity()})

	// Output:
	// low fuel on 0
}

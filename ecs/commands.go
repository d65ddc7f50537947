package ecs

import (
	"reflect"
	"sync"
)

// Commands buffers structural changes requested during a frame so they apply
// atomically at a single designated point after the last batch, never
// interleaved with an in-progress iteration. Safe for concurrent use by
// systems running in the same batch.
type Commands struct {
	mu       sync.Mutex
	spawns   []spawnCommand
	destroys []Entity
	adds     []addComponentCommand
	removes  []removeComponentCommand
	defers   []func()
}

func newCommands() *Commands {
	return &Commands{}
}

type spawnCommand struct {
	components []any
}

type addComponentCommand struct {
	entity    Entity
	component any
}

type removeComponentCommand struct {
	entity   Entity
	compType reflect.Type
}

// Spawn queues creation of an entity holding the given components.
func (c *Commands) Spawn(components ...any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.spawns = append(c.spawns, spawnCommand{components: components})
}

// Destroy queues destruction of an entity.
func (c *Commands) Destroy(e Entity) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.destroys = append(c.destroys, e)
}

// AddComponent queues a component addition.
func (c *Commands) AddComponent(e Entity, component any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.adds = append(c.adds, addComponentCommand{entity: e, component: component})
}

// RemoveComponent queues a component removal.
func (c *Commands) RemoveComponent(e Entity, compType reflect.Type) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.removes = append(c.removes, removeComponentCommand{entity: e, compType: compType})
}

// RemoveComponentLater queues removal of component type T from the entity.
func RemoveComponentLater[T any](c *Commands, e Entity) {
	c.RemoveComponent(e, reflect.TypeFor[T]())
}

// Defer queues an arbitrary function, run after all structural commands.
func (c *Commands) Defer(fn func()) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.defers = append(c.defers, fn)
}

// flush applies all buffered commands against the world and resets the
// buffer. Operations targeting an entity destroyed in the same flush are
// dropped.
func (c *Commands) flush(w *World) {
	c.mu.Lock()
	defer c.mu.Unlock()

	destroyed := make(map[Entity]bool)

	for _, e := range c.destroys {
		if w.DestroyEntity(e) {
			destroyed[e] = true
		}
	}

	for _, cmd := range c.removes {
		if !destroyed[cmd.entity] {
			w.removeComponentErased(cmd.entity, cmd.compType)
		}
	}

	for _, cmd := range c.adds {
		if !destroyed[cmd.entity] {
			w.addComponentErased(cmd.entity, cmd.component)
		}
	}

	for _, cmd := range c.spawns {
		w.spawnErased(cmd.components)
	}

	for _, fn := range c.defers {
		fn()
	}

	c.spawns = c.spawns[:0]
	c.destroys = c.destroys[:0]
	c.adds = c.adds[:0]
	c.removes = c.removes[:0]
	c.defers = c.defers[:0]
}

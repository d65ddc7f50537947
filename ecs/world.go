package ecs

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"reflect"
	"runtime"
	"time"

	"go.uber.org/zap"
)

// World composes the entity registry, the per-type component stores, the
// scheduler and the event bus. It is the sole entry point offered to
// collaborating subsystems; none of them reach into store internals.
type World struct {
	types    *ComponentRegistry
	registry *Registry
	stores   map[TypeID]componentStore
	sched    *scheduler
	events   *EventBus
	log      *zap.Logger
}

type worldOptions struct {
	log     *zap.Logger
	workers int
}

// Option configures a World at construction time.
type Option func(*worldOptions)

// WithLogger sets the structured logger. Defaults to a no-op logger.
func WithLogger(log *zap.Logger) Option {
	return func(o *worldOptions) {
		o.log = log
	}
}

// WithWorkers bounds the batch worker pool. A value of 1 selects the
// single-threaded fallback, which executes the identical plan sequentially.
func WithWorkers(n int) Option {
	return func(o *worldOptions) {
		if n > 0 {
			o.workers = n
		}
	}
}

// NewWorld creates a world over the given component registry.
func NewWorld(types *ComponentRegistry, opts ...Option) *World {
	o := worldOptions{
		log:     zap.NewNop(),
		workers: runtime.GOMAXPROCS(0),
	}
	for _, opt := range opts {
		opt(&o)
	}

	w := &World{
		types:    types,
		registry: NewRegistry(),
		stores:   make(map[TypeID]componentStore),
		events:   NewEventBus(),
		log:      o.log,
	}
	w.sched = newScheduler(w, o.workers, o.log)
	return w
}

// CreateEntity allocates a new entity handle.
func (w *World) CreateEntity() Entity {
	return w.registry.Create()
}

// DestroyEntity destroys the entity and removes its components from every
// store. Destroying a stale handle is a logged no-op.
func (w *World) DestroyEntity(e Entity) bool {
	if !w.registry.Destroy(e) {
		w.log.Debug("destroy of stale entity ignored", zap.Stringer("entity", e))
		return false
	}

	for _, st := range w.stores {
		st.removeEntity(e.Index())
	}
	return true
}

// IsValid reports whether the handle refers to a live entity.
func (w *World) IsValid(e Entity) bool {
	return w.registry.IsValid(e)
}

// Alive returns the number of live entities.
func (w *World) Alive() int {
	return w.registry.Alive()
}

// Events returns the world's event bus.
func (w *World) Events() *EventBus {
	return w.events
}

// RegisterSystem registers a named update routine with its declared access
// requirements. The system set is established at startup; registering
// mid-frame is not supported. An empty name derives one from the system's
// type.
func (w *World) RegisterSystem(name string, system System, reqs ThreadingRequirements) error {
	return w.sched.register(name, system, reqs)
}

// Plan returns the planned batch layout as system names, computing it if
// needed. Planning errors are fatal: Step refuses to run while one stands.
func (w *World) Plan() ([][]string, error) {
	return w.sched.batchNames()
}

// Stats returns per-system execution statistics.
func (w *World) Stats() *SchedulerStats {
	return w.sched.getStats()
}

// Step executes one frame: every planned batch in order, queued events
// delivered between batches, buffered structural commands applied at the
// end.
func (w *World) Step(dt float64) error {
	return w.sched.executeFrame(dt)
}

// Run steps the world repeatedly at the given interval until the context is
// cancelled or planning fails.
func (w *World) Run(ctx context.Context, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	lastTime := time.Now()

	for {
		select {
		case <-ctx.Done():
			return nil
		case now := <-ticker.C:
			dt := now.Sub(lastTime).Seconds()
			lastTime = now
			if err := w.Step(dt); err != nil {
				return err
			}
		}
	}
}

func (w *World) storeByID(id TypeID) componentStore {
	return w.stores[id]
}

func (w *World) ensureStore(id TypeID) (componentStore, error) {
	if st := w.stores[id]; st != nil {
		return st, nil
	}

	st := w.types.newStore(id)
	if st == nil {
		return nil, ErrTypeNotRegistered
	}
	w.stores[id] = st
	return st, nil
}

// AddComponent attaches a component value to the entity. Fails with
// ErrInvalidEntity for stale handles, ErrDuplicateComponent if the entity
// already holds T, and ErrStoreCapacityExceeded when the store is full.
func AddComponent[T any](w *World, e Entity, value T) error {
	if !w.registry.IsValid(e) {
		return fmt.Errorf("%w: %s", ErrInvalidEntity, e)
	}

	st, err := w.ensureStore(TypeOf[T]())
	if err != nil {
		return fmt.Errorf("%w: %s", err, reflect.TypeFor[T]().String())
	}

	if err := st.(*store[T]).add(e.Index(), value); err != nil {
		if errors.Is(err, ErrStoreCapacityExceeded) {
			w.log.Warn("component store is full", zap.Error(err))
		}
		return err
	}
	return nil
}

// GetComponent returns a pointer to the entity's component of type T, or
// (nil, false) if the handle is stale or the component is absent.
func GetComponent[T any](w *World, e Entity) (*T, bool) {
	if !w.registry.IsValid(e) {
		return nil, false
	}

	st := w.stores[TypeOf[T]()]
	if st == nil {
		return nil, false
	}

	ptr := st.(*store[T]).get(e.Index())
	return ptr, ptr != nil
}

// HasComponent reports whether the entity holds a component of type T.
func HasComponent[T any](w *World, e Entity) bool {
	_, ok := GetComponent[T](w, e)
	return ok
}

// RemoveComponent detaches the entity's component of type T. Removing an
// absent component (or using a stale handle) is a no-op returning false.
func RemoveComponent[T any](w *World, e Entity) bool {
	if !w.registry.IsValid(e) {
		return false
	}

	st := w.stores[TypeOf[T]()]
	if st == nil {
		return false
	}
	return st.(*store[T]).remove(e.Index())
}

// Components iterates every stored component of type T in dense order,
// cache-linear. Must not run concurrently with structural changes to T's
// store; within a frame the scheduler's conflict analysis guarantees that.
func Components[T any](w *World) iter.Seq2[Entity, *T] {
	return func(yield func(Entity, *T) bool) {
		st := w.stores[TypeOf[T]()]
		if st == nil {
			return
		}

		for index, ptr := range st.(*store[T]).all() {
			if !yield(w.registry.handleFor(index), ptr) {
				return
			}
		}
	}
}

// ComponentCount returns the number of stored components of type T.
func ComponentCount[T any](w *World) int {
	st := w.stores[TypeOf[T]()]
	if st == nil {
		return 0
	}
	return st.count()
}

// addComponentErased attaches a component given as any, used by the Commands
// flush path. Failures are logged rather than propagated: by flush time the
// requesting system has already finished its frame.
func (w *World) addComponentErased(e Entity, component any) {
	if !w.registry.IsValid(e) {
		w.log.Debug("deferred add against stale entity ignored", zap.Stringer("entity", e))
		return
	}

	id, ok := w.types.idFor(reflect.TypeOf(component))
	if !ok {
		w.log.Warn("deferred add of unregistered component type",
			zap.String("type", reflect.TypeOf(component).String()))
		return
	}

	st, err := w.ensureStore(id)
	if err != nil {
		w.log.Warn("deferred add failed", zap.Error(err))
		return
	}
	if err := st.addErased(e.Index(), component); err != nil {
		w.log.Warn("deferred add failed", zap.Error(err))
	}
}

func (w *World) removeComponentErased(e Entity, compType reflect.Type) bool {
	if !w.registry.IsValid(e) {
		return false
	}

	id, ok := w.types.idFor(compType)
	if !ok {
		return false
	}

	st := w.stores[id]
	if st == nil {
		return false
	}
	return st.removeEntity(e.Index())
}

func (w *World) spawnErased(components []any) Entity {
	e := w.registry.Create()
	for _, component := range components {
		w.addComponentErased(e, component)
	}
	return e
}

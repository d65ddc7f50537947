package ecs_test

import (
	"sync"
	"testing"

	"github.com/plus3/simcore/ecs"
	"github.com/stretchr/testify/assert"
)

type collisionEvent struct {
	A, B ecs.Entity
}

type scoreEvent struct {
	Points int
}

func TestEventBusImmediateDelivery(t *testing.T) {
	bus := ecs.NewEventBus()

	var got []collisionEvent
	ecs.Subscribe(bus, func(e collisionEvent) {
		got = append(got, e)
	})

	ecs.Publish(bus, collisionEvent{A: 1, B: 2})

	assert.Len(t, got, 1)
	assert.Equal(t, ecs.Entity(1), got[0].A)
}

func TestEventBusTypeIsolation(t *testing.T) {
	bus := ecs.NewEventBus()

	collisions := 0
	scores := 0
	ecs.Subscribe(bus, func(collisionEvent) { collisions++ })
	ecs.Subscribe(bus, func(scoreEvent) { scores++ })

	ecs.Publish(bus, scoreEvent{Points: 5})

	assert.Equal(t, 0, collisions)
	assert.Equal(t, 1, scores)
}

func TestEventBusMultipleSubscribers(t *testing.T) {
	bus := ecs.NewEventBus()

	count := 0
	ecs.Subscribe(bus, func(scoreEvent) { count++ })
	ecs.Subscribe(bus, func(scoreEvent) { count++ })

	ecs.Publish(bus, scoreEvent{})
	assert.Equal(t, 2, count)
}

func TestEventBusCancel(t *testing.T) {
	bus := ecs.NewEventBus()

	count := 0
	sub := ecs.Subscribe(bus, func(scoreEvent) { count++ })

	ecs.Publish(bus, scoreEvent{})
	sub.Cancel()
	sub.Cancel() // second cancel is safe
	ecs.Publish(bus, scoreEvent{})

	assert.Equal(t, 1, count)
}

func TestEventBusConcurrentPublish(t *testing.T) {
	bus := ecs.NewEventBus()

	var mu sync.Mutex
	count := 0
	ecs.Subscribe(bus, func(scoreEvent) {
		mu.Lock()
		count++
		mu.Unlock()
	})

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				ecs.Publish(bus, scoreEvent{})
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 800, count)
}

type publishingSystem struct {
	bus *ecs.EventBus
}

func (s *publishingSystem) Execute(frame *ecs.UpdateFrame) {
	ecs.Publish(s.bus, scoreEvent{Points: 1})
}

type observingSystem struct {
	sawAtExecution int
	counter        *int
}

func (s *observingSystem) Execute(frame *ecs.UpdateFrame) {
	s.sawAtExecution = *s.counter
}

func TestEventsDeliveredBetweenBatches(t *testing.T) {
	w := newTestWorld()

	received := 0
	ecs.Subscribe(w.Events(), func(scoreEvent) { received++ })

	posID := ecs.TypeOf[Position]()

	// Same write target forces the two systems into consecutive batches.
	register(t, w, "publisher", &publishingSystem{bus: w.Events()}, ecs.ThreadingRequirements{
		Writes: []ecs.TypeID{posID}, Phase: ecs.PhaseUpdate, Parallel: true,
	})
	observer := &observingSystem{counter: &received}
	register(t, w, "observer", observer, ecs.ThreadingRequirements{
		Writes: []ecs.TypeID{posID}, Phase: ecs.PhaseUpdate, Parallel: true,
	})

	plan, err := w.Plan()
	assert.NoError(t, err)
	assert.Less(t, batchIndexOf(plan, "publisher"), batchIndexOf(plan, "observer"))

	assert.NoError(t, w.Step(1.0))

	assert.Equal(t, 1, observer.sawAtExecution,
		"event published in batch k must be delivered before batch k+1 runs")
	assert.Equal(t, 1, received)
}

func TestEventsQueuedWithinBatch(t *testing.T) {
	w := newTestWorld()

	received := 0
	ecs.Subscribe(w.Events(), func(scoreEvent) { received++ })

	seenDuringExecution := -1
	sys := systemFunc(func(frame *ecs.UpdateFrame) {
		ecs.Publish(w.Events(), scoreEvent{})
		seenDuringExecution = received
	})
	register(t, w, "pub", sys, ecs.ThreadingRequirements{Phase: ecs.PhaseUpdate})

	assert.NoError(t, w.Step(1.0))

	assert.Equal(t, 0, seenDuringExecution, "delivery happens after the batch, not inside it")
	assert.Equal(t, 1, received)
}

func TestEventsPublishedByHandlerDrainedSameBoundary(t *testing.T) {
	w := newTestWorld()

	var log []string
	ecs.Subscribe(w.Events(), func(e scoreEvent) {
		log = append(log, "score")
		if e.Points == 1 {
			ecs.Publish(w.Events(), collisionEvent{})
		}
	})
	ecs.Subscribe(w.Events(), func(collisionEvent) {
		log = append(log, "collision")
	})

	register(t, w, "pub", systemFunc(func(frame *ecs.UpdateFrame) {
		ecs.Publish(w.Events(), scoreEvent{Points: 1})
	}), ecs.ThreadingRequirements{Phase: ecs.PhaseUpdate})

	assert.NoError(t, w.Step(1.0))

	assert.Equal(t, []string{"score", "collision"}, log)
}

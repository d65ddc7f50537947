package ecs

import (
	"reflect"
	"sync"

	"github.com/google/uuid"
)

// EventBus is a lightweight in-process pub/sub bus keyed by event type, used
// for loosely-coupled cross-system notification. Delivery is synchronous and
// frame-coherent: events published while a batch is executing are queued and
// handed to subscribers after that batch completes, before the next batch
// starts. Outside frame execution, Publish delivers immediately.
type EventBus struct {
	mu        sync.Mutex
	handlers  map[reflect.Type]map[string]func(any)
	queue     []queuedEvent
	buffering bool
}

type queuedEvent struct {
	eventType reflect.Type
	event     any
}

// Subscription is a cancellable handle to a registered event handler.
type Subscription struct {
	id     string
	cancel func()
}

// ID returns the subscription's unique identifier.
func (s *Subscription) ID() string {
	return s.id
}

// Cancel removes the handler. Safe to call more than once.
func (s *Subscription) Cancel() {
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
}

// NewEventBus creates an empty event bus.
func NewEventBus() *EventBus {
	return &EventBus{
		handlers: make(map[reflect.Type]map[string]func(any)),
	}
}

// Subscribe registers a handler for events of type E.
func Subscribe[E any](b *EventBus, handler func(E)) *Subscription {
	t := reflect.TypeFor[E]()

	b.mu.Lock()
	defer b.mu.Unlock()

	if b.handlers[t] == nil {
		b.handlers[t] = make(map[string]func(any))
	}

	id := uuid.NewString()
	b.handlers[t][id] = func(event any) {
		handler(event.(E))
	}

	return &Subscription{
		id: id,
		cancel: func() {
			b.mu.Lock()
			defer b.mu.Unlock()
			delete(b.handlers[t], id)
		},
	}
}

// Publish delivers the event to all subscribers of its type. During a frame
// the event is queued until the publishing system's batch completes.
func Publish[E any](b *EventBus, event E) {
	t := reflect.TypeFor[E]()

	b.mu.Lock()
	if b.buffering {
		b.queue = append(b.queue, queuedEvent{eventType: t, event: event})
		b.mu.Unlock()
		return
	}
	handlers := b.snapshotLocked(t)
	b.mu.Unlock()

	for _, h := range handlers {
		h(event)
	}
}

// snapshotLocked copies the handler set so delivery runs without the lock
// and handlers may subscribe or cancel freely.
func (b *EventBus) snapshotLocked(t reflect.Type) []func(any) {
	set := b.handlers[t]
	if len(set) == 0 {
		return nil
	}
	out := make([]func(any), 0, len(set))
	for _, h := range set {
		out = append(out, h)
	}
	return out
}

// beginFrame switches the bus to queued delivery for the duration of a frame.
func (b *EventBus) beginFrame() {
	b.mu.Lock()
	b.buffering = true
	b.mu.Unlock()
}

// endFrame drains any remaining events and restores immediate delivery.
func (b *EventBus) endFrame() {
	b.drain()
	b.mu.Lock()
	b.buffering = false
	b.mu.Unlock()
}

// drain delivers queued events in publish order. Events published by the
// handlers themselves are delivered in the same drain, so the queue is empty
// when the next batch starts.
func (b *EventBus) drain() {
	for {
		b.mu.Lock()
		if len(b.queue) == 0 {
			b.mu.Unlock()
			return
		}
		pending := b.queue
		b.queue = nil
		b.mu.Unlock()

		for _, q := range pending {
			b.mu.Lock()
			handlers := b.snapshotLocked(q.eventType)
			b.mu.Unlock()
			for _, h := range handlers {
				h(q.event)
			}
		}
	}
}

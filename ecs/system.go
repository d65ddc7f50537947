package ecs

// System represents a behavior that operates on entities with specific
// components. User-defined systems implement this interface and can include
// Query fields for accessing entities, as well as custom state fields that
// persist between frames.
//
// A system must never block on I/O or external completion; long-running work
// belongs in an outside worker and reports back through the event bus or a
// completion-flag component.
type System interface {
	Execute(frame *UpdateFrame)
}

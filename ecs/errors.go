package ecs

import "errors"

// Recoverable per-call errors. Component operations return these so callers
// can make local decisions (e.g. skip a missing component this frame).
var (
	ErrInvalidEntity         = errors.New("ecs: invalid entity handle")
	ErrDuplicateComponent    = errors.New("ecs: entity already holds component")
	ErrMissingComponent      = errors.New("ecs: entity does not hold component")
	ErrComponentTypeMismatch = errors.New("ecs: value type does not match component type")
	ErrStoreCapacityExceeded = errors.New("ecs: component store capacity exceeded")
	ErrTypeNotRegistered     = errors.New("ecs: component type not registered")
	ErrTypeAlreadyRegistered = errors.New("ecs: component type already registered")
)

// Fatal planning errors. The world refuses to execute a frame while any of
// these stand; there is no safe partial schedule.
var (
	ErrConflictingAccess  = errors.New("ecs: system read set and write set overlap")
	ErrInvalidPhase       = errors.New("ecs: phase out of range")
	ErrDependencyCycle    = errors.New("ecs: dependency cycle between systems")
	ErrUnknownPredecessor = errors.New("ecs: predecessor system not registered")
	ErrPredecessorPhase   = errors.New("ecs: predecessor runs in a later phase")
	ErrDuplicateSystem    = errors.New("ecs: system name already registered")

	// ErrRaceHazard is statically unreachable given registration-time access
	// validation. Observing it means a declaration bug.
	ErrRaceHazard = errors.New("ecs: planned batch contains conflicting access")
)

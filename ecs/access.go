package ecs

import (
	"fmt"
	"slices"
)

// Phase tags order system execution coarsely: all PreUpdate batches run
// before any Update batch, which run before any PostUpdate batch.
type Phase uint8

const (
	PhasePreUpdate Phase = iota
	PhaseUpdate
	PhasePostUpdate
)

func (p Phase) String() string {
	switch p {
	case PhasePreUpdate:
		return "pre-update"
	case PhaseUpdate:
		return "update"
	case PhasePostUpdate:
		return "post-update"
	default:
		return fmt.Sprintf("phase(%d)", uint8(p))
	}
}

// ThreadingRequirements declares a system's data-access pattern and ordering
// constraints. Under-declaring reads or writes is a correctness bug the
// scheduler cannot detect; over-declaring only costs parallelism.
type ThreadingRequirements struct {
	// Reads and Writes list the component types the system touches.
	// They must be disjoint; overlap is rejected at registration.
	Reads  []TypeID
	Writes []TypeID

	// Phase selects the coarse execution stage. Zero value is PhasePreUpdate,
	// so most systems set PhaseUpdate explicitly.
	Phase Phase

	// After names systems that must complete before this one runs.
	// Named systems must be registered and in the same or an earlier phase.
	After []string

	// Parallel marks the system safe to run alongside other members of its
	// batch. Non-parallel systems are placed alone in their own batch.
	Parallel bool
}

// validate rejects a read set overlapping the write set, which would make
// the system a data hazard against itself, and a phase outside the defined
// range, which the planner could never place.
func (t ThreadingRequirements) validate() error {
	if t.Phase > PhasePostUpdate {
		return fmt.Errorf("%w: %s", ErrInvalidPhase, t.Phase)
	}
	for _, id := range t.Writes {
		if slices.Contains(t.Reads, id) {
			return fmt.Errorf("%w: type id %d appears in both sets", ErrConflictingAccess, id)
		}
	}
	return nil
}

// conflictsWith reports a data hazard: one side writes what the other reads
// or writes.
func (t ThreadingRequirements) conflictsWith(o ThreadingRequirements) bool {
	for _, w := range t.Writes {
		if slices.Contains(o.Writes, w) || slices.Contains(o.Reads, w) {
			return true
		}
	}
	for _, w := range o.Writes {
		if slices.Contains(t.Reads, w) {
			return true
		}
	}
	return false
}

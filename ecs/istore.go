package ecs

import (
	"iter"
	"unsafe"
)

// componentStore is the type-erased face of a per-type store. The World uses
// it for structural sweeps and the query layer uses it for membership probes;
// all typed access goes through store[T].
type componentStore interface {
	addErased(entity uint32, value any) error
	removeEntity(entity uint32) bool
	ptrTo(entity uint32) unsafe.Pointer
	count() int
	owners() iter.Seq[uint32]
}

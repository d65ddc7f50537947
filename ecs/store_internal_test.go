package ecs

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

type testComp struct {
	V int
}

func newTestStore(maxInstances int) *store[testComp] {
	return newStore[testComp](ComponentTypeDescriptor{
		ID:           TypeOf[testComp](),
		Name:         "ecs.testComp",
		MaxInstances: maxInstances,
	})
}

func TestStoreAddGet(t *testing.T) {
	s := newTestStore(16)

	assert.NoError(t, s.add(3, testComp{V: 42}))

	ptr := s.get(3)
	assert.NotNil(t, ptr)
	assert.Equal(t, 42, ptr.V)
	assert.Nil(t, s.get(4))
	assert.Equal(t, 1, s.count())
}

func TestStoreDuplicateAdd(t *testing.T) {
	s := newTestStore(16)

	assert.NoError(t, s.add(1, testComp{V: 1}))
	err := s.add(1, testComp{V: 2})
	assert.ErrorIs(t, err, ErrDuplicateComponent)

	// Original value untouched
	assert.Equal(t, 1, s.get(1).V)
}

func TestStoreCapacity(t *testing.T) {
	s := newTestStore(2)

	assert.NoError(t, s.add(0, testComp{}))
	assert.NoError(t, s.add(1, testComp{}))
	assert.ErrorIs(t, s.add(2, testComp{}), ErrStoreCapacityExceeded)
	assert.Equal(t, 2, s.count())
}

func TestStoreSwapRemoveFixup(t *testing.T) {
	s := newTestStore(16)

	for i := uint32(0); i < 4; i++ {
		assert.NoError(t, s.add(i*10, testComp{V: int(i)}))
	}

	// Removing a middle element swaps the last one into its slot.
	assert.True(t, s.remove(10))
	assert.Equal(t, 3, s.count())
	assert.Equal(t, 3, len(s.dense), "dense array must shrink by exactly one")
	assert.Equal(t, 3, len(s.reverse))

	// The moved element is still reachable through the sparse map.
	ptr := s.get(30)
	assert.NotNil(t, ptr)
	assert.Equal(t, 3, ptr.V)

	// No holes: every dense slot maps back consistently.
	for slot, entity := range s.reverse {
		mapped, ok := s.sparse.Get(entity)
		assert.True(t, ok)
		assert.Equal(t, uint32(slot), mapped)
	}
}

func TestStoreAddErasedTypeMismatch(t *testing.T) {
	s := newTestStore(4)

	err := s.addErased(0, "not a testComp")
	assert.ErrorIs(t, err, ErrComponentTypeMismatch)
	assert.Equal(t, 0, s.count())

	// Value and pointer forms both land.
	assert.NoError(t, s.addErased(1, testComp{V: 1}))
	assert.NoError(t, s.addErased(2, &testComp{V: 2}))
	assert.Equal(t, 2, s.count())
}

func TestStoreRemoveIdempotent(t *testing.T) {
	s := newTestStore(16)

	assert.NoError(t, s.add(5, testComp{}))
	assert.True(t, s.remove(5))
	assert.False(t, s.remove(5), "second remove must be a no-op")
	assert.Equal(t, 0, s.count())
}

func TestStoreDenseIteration(t *testing.T) {
	s := newTestStore(16)

	for i := uint32(0); i < 8; i++ {
		assert.NoError(t, s.add(i, testComp{V: int(i)}))
	}
	s.remove(2)
	s.remove(5)

	seen := make(map[uint32]int)
	for entity, ptr := range s.all() {
		seen[entity] = ptr.V
	}

	assert.Len(t, seen, 6)
	for entity, v := range seen {
		assert.Equal(t, int(entity), v)
	}
	_, has2 := seen[2]
	_, has5 := seen[5]
	assert.False(t, has2)
	assert.False(t, has5)
}

func TestStoreCapacityReusableAfterRemove(t *testing.T) {
	s := newTestStore(1)

	assert.NoError(t, s.add(0, testComp{}))
	assert.ErrorIs(t, s.add(1, testComp{}), ErrStoreCapacityExceeded)
	assert.True(t, s.remove(0))
	assert.NoError(t, s.add(1, testComp{}))
}

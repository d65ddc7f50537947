package ecs_test

import (
	"testing"

	"github.com/plus3/simcore/ecs"
	"github.com/stretchr/testify/assert"
)

func TestEntityHandleEncoding(t *testing.T) {
	registry := ecs.NewRegistry()

	e := registry.Create()
	assert.False(t, e.IsZero())
	assert.Equal(t, uint32(0), e.Index())
	assert.Equal(t, uint32(1), e.Generation())

	e2 := registry.Create()
	assert.Equal(t, uint32(1), e2.Index())
}

func TestEntityValidAfterCreate(t *testing.T) {
	registry := ecs.NewRegistry()

	e := registry.Create()
	assert.True(t, registry.IsValid(e))
	assert.Equal(t, 1, registry.Alive())
}

func TestEntityInvalidAfterDestroy(t *testing.T) {
	registry := ecs.NewRegistry()

	e := registry.Create()
	assert.True(t, registry.Destroy(e))
	assert.False(t, registry.IsValid(e))
	assert.Equal(t, 0, registry.Alive())
}

func TestStaleHandleNeverRevalidates(t *testing.T) {
	registry := ecs.NewRegistry()

	// Recycle the same slot repeatedly; every old handle must stay invalid.
	var stale []ecs.Entity
	for i := 0; i < 10; i++ {
		e := registry.Create()
		assert.Equal(t, uint32(0), e.Index(), "slot should be reused")

		for _, old := range stale {
			assert.False(t, registry.IsValid(old), "stale handle revalidated after reuse")
			assert.Greater(t, e.Generation(), old.Generation(), "generation must strictly increase")
		}

		stale = append(stale, e)
		registry.Destroy(e)
	}
}

func TestDestroyIdempotent(t *testing.T) {
	registry := ecs.NewRegistry()

	e := registry.Create()
	assert.True(t, registry.Destroy(e))
	assert.False(t, registry.Destroy(e), "second destroy must be a no-op")
	assert.Equal(t, 0, registry.Alive())
}

func TestZeroHandleInvalid(t *testing.T) {
	registry := ecs.NewRegistry()

	var zero ecs.Entity
	assert.True(t, zero.IsZero())
	assert.False(t, registry.IsValid(zero))
	assert.False(t, registry.Destroy(zero))
}

func TestFreeListReuse(t *testing.T) {
	registry := ecs.NewRegistry()

	first := registry.Create()
	second := registry.Create()
	registry.Destroy(first)

	reused := registry.Create()
	assert.Equal(t, first.Index(), reused.Index())
	assert.NotEqual(t, first.Generation(), reused.Generation())
	assert.True(t, registry.IsValid(second))
	assert.True(t, registry.IsValid(reused))
	assert.False(t, registry.IsValid(first))
}

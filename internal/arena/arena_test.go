package arena

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestArena_AllocateWithinCapacity(t *testing.T) {
	a := New(64)
	p1 := a.Allocate(16)
	assert.Len(t, p1, 16)
	assert.Equal(t, 16, a.Used())

	p2 := a.Allocate(16)
	assert.Len(t, p2, 16)
	assert.Equal(t, 32, a.Used())
}

func TestArena_AllocateOverflow(t *testing.T) {
	a := New(8)
	p := a.Allocate(32)
	assert.Len(t, p, 32)
	// overflow allocation does not move the bump pointer
	assert.Equal(t, 0, a.Used())
}

func TestArena_DeallocateMostRecent(t *testing.T) {
	a := New(64)
	_ = a.Allocate(16)
	p2 := a.Allocate(16)
	assert.Equal(t, 32, a.Used())

	a.Deallocate(p2)
	assert.Equal(t, 16, a.Used())
}

func TestArena_DeallocateNonRecentIsNoop(t *testing.T) {
	a := New(64)
	p1 := a.Allocate(16)
	_ = a.Allocate(16)

	a.Deallocate(p1)
	assert.Equal(t, 32, a.Used())
}

func TestArena_RewindRestoresPosition(t *testing.T) {
	a := New(64)
	mark := a.Position()
	a.Allocate(16)
	a.Allocate(16)
	assert.Equal(t, 32, a.Used())

	a.Rewind(mark)
	assert.Equal(t, mark, a.Used())
}

func TestRewinder_ReleaseBoundsGrowth(t *testing.T) {
	a := New(64)
	r := NewRewinder(a)
	a.Allocate(40)
	assert.Equal(t, 40, a.Used())

	r.Release()
	assert.Equal(t, 0, a.Used())
}

func TestRewinder_ReleaseIdempotent(t *testing.T) {
	a := New(64)
	r := NewRewinder(a)
	a.Allocate(16)

	r.Release()
	a.Allocate(16) // simulate further use of the arena after release
	r.Release()    // must not rewind past the new allocation

	assert.Equal(t, 16, a.Used())
}

func TestRewinder_NestedScopes(t *testing.T) {
	a := New(64)
	outer := NewRewinder(a)
	a.Allocate(8)

	inner := NewRewinder(a)
	a.Allocate(8)
	assert.Equal(t, 16, a.Used())
	inner.Release()
	assert.Equal(t, 8, a.Used())

	outer.Release()
	assert.Equal(t, 0, a.Used())
}

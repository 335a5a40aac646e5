package valuesets

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBitsetValues_Sum(t *testing.T) {
	a := NewBitsetValues(8, 0, 1, 2)
	b := NewBitsetValues(8, 2, 3)
	assert.True(t, a.Sum(b).Equal(NewBitsetValues(8, 0, 1, 2, 3)))
}

func TestBitsetValues_Intersection(t *testing.T) {
	a := NewBitsetValues(8, 0, 1, 2)
	b := NewBitsetValues(8, 1, 2, 3)
	assert.True(t, a.Intersection(b).Equal(NewBitsetValues(8, 1, 2)))
}

func TestBitsetValues_Difference(t *testing.T) {
	a := NewBitsetValues(8, 0, 1, 2)
	b := NewBitsetValues(8, 1)
	assert.True(t, a.Difference(b).Equal(NewBitsetValues(8, 0, 2)))
}

func TestBitsetValues_Empty(t *testing.T) {
	v := NewBitsetValues(8)
	assert.True(t, v.Empty())
	assert.True(t, v.FastIterable())
}

func TestBitsetValues_ForEach(t *testing.T) {
	v := NewBitsetValues(8, 1, 3, 5)
	var seen []uint64
	v.ForEach(func(val uint64) bool {
		seen = append(seen, val)
		return true
	})
	assert.Equal(t, []uint64{1, 3, 5}, seen)
}

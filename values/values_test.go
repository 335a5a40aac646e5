package values

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// intSetValues is a minimal Values implementation used only to check that
// the interface is satisfiable and behaves as documented; the reference
// implementations live in pkg/valuesets.
type intSetValues struct {
	elems map[uint64]struct{}
}

func newIntSetValues(elems ...uint64) *intSetValues {
	m := make(map[uint64]struct{}, len(elems))
	for _, e := range elems {
		m[e] = struct{}{}
	}
	return &intSetValues{elems: m}
}

func (s *intSetValues) Equal(other Values) bool {
	o, ok := other.(*intSetValues)
	if !ok || len(o.elems) != len(s.elems) {
		return false
	}
	for e := range s.elems {
		if _, ok := o.elems[e]; !ok {
			return false
		}
	}
	return true
}

func (s *intSetValues) Hash() uint64 {
	var h uint64
	for e := range s.elems {
		h += e*31 + 1
	}
	return h
}

func (s *intSetValues) Empty() bool { return len(s.elems) == 0 }
func (s *intSetValues) Size() int   { return len(s.elems) }

func (s *intSetValues) Sum(other Values) Values {
	o := other.(*intSetValues)
	out := newIntSetValues()
	for e := range s.elems {
		out.elems[e] = struct{}{}
	}
	for e := range o.elems {
		out.elems[e] = struct{}{}
	}
	return out
}

func (s *intSetValues) Intersection(other Values) Values {
	o := other.(*intSetValues)
	out := newIntSetValues()
	for e := range s.elems {
		if _, ok := o.elems[e]; ok {
			out.elems[e] = struct{}{}
		}
	}
	return out
}

func (s *intSetValues) Difference(other Values) Values {
	o := other.(*intSetValues)
	out := newIntSetValues()
	for e := range s.elems {
		if _, ok := o.elems[e]; !ok {
			out.elems[e] = struct{}{}
		}
	}
	return out
}

func (s *intSetValues) ForEach(fn func(v uint64) bool) {
	for e := range s.elems {
		if !fn(e) {
			return
		}
	}
}

func (s *intSetValues) FastIterable() bool { return true }

func TestValues_SetOperations(t *testing.T) {
	a := newIntSetValues(1, 2, 3)
	b := newIntSetValues(2, 3, 4)

	assert.True(t, a.Sum(b).Equal(newIntSetValues(1, 2, 3, 4)))
	assert.True(t, a.Intersection(b).Equal(newIntSetValues(2, 3)))
	assert.True(t, a.Difference(b).Equal(newIntSetValues(1)))
	assert.False(t, a.Equal(b))
	assert.True(t, a.Equal(newIntSetValues(3, 2, 1)))
}

func TestValues_Empty(t *testing.T) {
	var v Values = newIntSetValues()
	assert.True(t, v.Empty())
	assert.Equal(t, 0, v.Size())
}

type incrementFunction struct {
	modulus uint64
}

func (f incrementFunction) Apply(v Values) Values {
	s := v.(*intSetValues)
	out := newIntSetValues()
	s.ForEach(func(e uint64) bool {
		out.elems[(e+1)%f.modulus] = struct{}{}
		return true
	})
	return out
}

func (f incrementFunction) Selector() bool { return true }
func (f incrementFunction) Shifter() bool  { return true }

func TestFunction_Apply(t *testing.T) {
	var fn Function = incrementFunction{modulus: 3}
	out := fn.Apply(newIntSetValues(0, 1, 2))
	assert.True(t, out.Equal(newIntSetValues(1, 2, 0)))
	assert.True(t, fn.Selector())
	assert.True(t, fn.Shifter())
}

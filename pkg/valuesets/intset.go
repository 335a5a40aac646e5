// Package valuesets provides reference implementations of the values.Values
// external collaborator contract: a flat sorted-set and a bitset-backed set.
// Neither is "the" value-set implementation the engine assumes — callers are
// free to bring their own — but both are complete enough to exercise every
// operation the algebra needs.
package valuesets

import (
	"sort"

	"github.com/hsdd-project/hsdd/values"
)

// IntSet is a sorted, deduplicated slice of uint64 values, appropriate for
// sparse value sets where membership testing by bitset would waste memory.
type IntSet struct {
	elems []uint64
}

// NewIntSet builds an IntSet from the given elements, sorting and
// deduplicating them.
func NewIntSet(elems ...uint64) *IntSet {
	cp := append([]uint64(nil), elems...)
	sort.Slice(cp, func(i, j int) bool { return cp[i] < cp[j] })
	out := cp[:0]
	for i, e := range cp {
		if i == 0 || e != out[len(out)-1] {
			out = append(out, e)
		}
	}
	return &IntSet{elems: out}
}

var _ values.Values = (*IntSet)(nil)

// Equal reports whether other is an *IntSet with the same elements.
func (s *IntSet) Equal(other values.Values) bool {
	o, ok := other.(*IntSet)
	if !ok || len(o.elems) != len(s.elems) {
		return false
	}
	for i, e := range s.elems {
		if o.elems[i] != e {
			return false
		}
	}
	return true
}

// Hash returns a hash consistent with Equal.
func (s *IntSet) Hash() uint64 {
	var h uint64 = 1469598103934665603
	for _, e := range s.elems {
		h ^= e
		h *= 1099511628211
	}
	return h
}

// Empty reports whether the set has no elements.
func (s *IntSet) Empty() bool { return len(s.elems) == 0 }

// Size returns the number of elements.
func (s *IntSet) Size() int { return len(s.elems) }

// Sum returns the sorted union of s and other.
func (s *IntSet) Sum(other values.Values) values.Values {
	o := other.(*IntSet)
	out := make([]uint64, 0, len(s.elems)+len(o.elems))
	i, j := 0, 0
	for i < len(s.elems) && j < len(o.elems) {
		switch {
		case s.elems[i] < o.elems[j]:
			out = append(out, s.elems[i])
			i++
		case s.elems[i] > o.elems[j]:
			out = append(out, o.elems[j])
			j++
		default:
			out = append(out, s.elems[i])
			i++
			j++
		}
	}
	out = append(out, s.elems[i:]...)
	out = append(out, o.elems[j:]...)
	return &IntSet{elems: out}
}

// Intersection returns the elements common to s and other.
func (s *IntSet) Intersection(other values.Values) values.Values {
	o := other.(*IntSet)
	var out []uint64
	i, j := 0, 0
	for i < len(s.elems) && j < len(o.elems) {
		switch {
		case s.elems[i] < o.elems[j]:
			i++
		case s.elems[i] > o.elems[j]:
			j++
		default:
			out = append(out, s.elems[i])
			i++
			j++
		}
	}
	return &IntSet{elems: out}
}

// Difference returns the elements of s not in other.
func (s *IntSet) Difference(other values.Values) values.Values {
	o := other.(*IntSet)
	var out []uint64
	i, j := 0, 0
	for i < len(s.elems) {
		if j >= len(o.elems) || s.elems[i] < o.elems[j] {
			out = append(out, s.elems[i])
			i++
			continue
		}
		if s.elems[i] > o.elems[j] {
			j++
			continue
		}
		i++
		j++
	}
	return &IntSet{elems: out}
}

// ForEach iterates elements in ascending order.
func (s *IntSet) ForEach(fn func(v uint64) bool) {
	for _, e := range s.elems {
		if !fn(e) {
			return
		}
	}
}

// FastIterable reports false: sorted-slice membership and per-value
// splitting cost O(log n).
func (s *IntSet) FastIterable() bool { return false }

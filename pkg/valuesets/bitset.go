package valuesets

import (
	"github.com/hsdd-project/hsdd/pkg/collections"
	"github.com/hsdd-project/hsdd/values"
)

// BitsetValues is a values.Values backed by pkg/collections.Bitset, suited
// to dense value domains (e.g. a variable ranging over a small, fixed
// alphabet) where per-value iteration and membership testing should be O(1).
type BitsetValues struct {
	bits *collections.Bitset
}

// NewBitsetValues builds a BitsetValues of the given domain size with the
// given elements set.
func NewBitsetValues(domainSize int, elems ...uint64) *BitsetValues {
	b := collections.NewBitset(domainSize)
	for _, e := range elems {
		b.Set(int(e))
	}
	return &BitsetValues{bits: b}
}

var _ values.Values = (*BitsetValues)(nil)

// Equal reports whether other is a *BitsetValues with the same members.
func (v *BitsetValues) Equal(other values.Values) bool {
	o, ok := other.(*BitsetValues)
	if !ok {
		return false
	}
	if v.bits.Count() != o.bits.Count() {
		return false
	}
	equal := true
	v.bits.Iterate(func(i int) bool {
		if !o.bits.Test(i) {
			equal = false
			return false
		}
		return true
	})
	return equal
}

// Hash returns a hash consistent with Equal.
func (v *BitsetValues) Hash() uint64 {
	var h uint64 = 1469598103934665603
	v.bits.Iterate(func(i int) bool {
		h ^= uint64(i)
		h *= 1099511628211
		return true
	})
	return h
}

// Empty reports whether no bit is set.
func (v *BitsetValues) Empty() bool { return v.bits.Count() == 0 }

// Size returns the population count.
func (v *BitsetValues) Size() int { return v.bits.Count() }

// Sum returns the bitwise union of v and other.
func (v *BitsetValues) Sum(other values.Values) values.Values {
	o := other.(*BitsetValues)
	out := v.bits.Clone()
	out.Or(o.bits)
	return &BitsetValues{bits: out}
}

// Intersection returns the bitwise intersection of v and other.
func (v *BitsetValues) Intersection(other values.Values) values.Values {
	o := other.(*BitsetValues)
	out := v.bits.Clone()
	out.And(o.bits)
	return &BitsetValues{bits: out}
}

// Difference returns the bitwise difference of v and other.
func (v *BitsetValues) Difference(other values.Values) values.Values {
	o := other.(*BitsetValues)
	out := v.bits.Clone()
	out.AndNot(o.bits)
	return &BitsetValues{bits: out}
}

// ForEach iterates set bit indices in ascending order.
func (v *BitsetValues) ForEach(fn func(val uint64) bool) {
	v.bits.Iterate(func(i int) bool { return fn(uint64(i)) })
}

// FastIterable reports true: bitset membership and iteration are O(1) per
// value.
func (v *BitsetValues) FastIterable() bool { return true }

// Package sdd implements canonical, immutable, hash-consed hierarchical set
// decision diagrams: the two terminals, flat nodes whose arcs are valuated
// by value sets, and hierarchical nodes whose arcs are valuated by nested
// SDDs.
package sdd

import (
	"github.com/hsdd-project/hsdd/internal/unique"
	"github.com/hsdd-project/hsdd/values"
)

type kind uint8

const (
	kindZero kind = iota
	kindOne
	kindFlat
	kindHier
)

// Arc is one entry of a node's alpha. Exactly one of Values or Nested is set,
// depending on the owning node's kind.
type Arc struct {
	Values values.Values
	Nested *SDD
	Succ   *SDD
}

// SDD is a canonical decision diagram node. The zero value is not valid;
// obtain instances from a Builder.
type SDD struct {
	kind     kind
	variable int
	arcs     []Arc
	hash     uint64
	seq      uint64
	refcount int
	pinned   bool
}

// IsZero reports whether this is the bottom terminal |0|.
func (s *SDD) IsZero() bool { return s.kind == kindZero }

// IsOne reports whether this is the top terminal |1|.
func (s *SDD) IsOne() bool { return s.kind == kindOne }

// IsTerminal reports whether s is either terminal.
func (s *SDD) IsTerminal() bool { return s.kind == kindZero || s.kind == kindOne }

// IsFlat reports whether s is a flat node.
func (s *SDD) IsFlat() bool { return s.kind == kindFlat }

// IsHier reports whether s is a hierarchical node.
func (s *SDD) IsHier() bool { return s.kind == kindHier }

// Variable returns the node's variable position. Invalid on a terminal.
func (s *SDD) Variable() int { return s.variable }

// Arcs returns the node's alpha, in canonical (ascending successor-seq)
// order. Invalid on a terminal.
func (s *SDD) Arcs() []Arc { return s.arcs }

// Seq returns the node's intern sequence number, the deterministic tie
// breaker used to order arcs by "successor pointer identity" (seq is
// assigned once, at first construction, and never changes).
func (s *SDD) Seq() uint64 { return s.seq }

// Refcount returns the node's current reference count. Go's garbage
// collector is the actual memory reclaimer for SDD graphs; the count exists
// so Builder can erase dead canonical entries from the unique table
// promptly, bounding its size the way the source's refcounted smart pointer
// does, rather than waiting for reachability to change.
func (s *SDD) Refcount() int { return s.refcount }

// Builder owns the unique table and the two pinned terminals. All SDD
// construction goes through it so that structural equality collapses to
// pointer equality.
type Builder struct {
	table      *unique.Table[*SDD]
	zero, one  *SDD
}

// NewBuilder creates a Builder with the given initial unique-table bucket
// count.
func NewBuilder(initialBuckets int) *Builder {
	b := &Builder{}
	b.table = unique.New[*SDD](initialBuckets, hashSDD, equalSDD)
	b.zero = &SDD{kind: kindZero, pinned: true}
	b.one = &SDD{kind: kindOne, pinned: true}
	return b
}

// Zero returns the bottom terminal |0|.
func (b *Builder) Zero() *SDD { return b.zero }

// One returns the top terminal |1|.
func (b *Builder) One() *SDD { return b.one }

// Stats returns unique-table interning statistics.
func (b *Builder) Stats() unique.Stats { return b.table.Stats() }

// Flat interns a flat node (variable, arcs), enforcing the canonicity
// invariants: non-empty valuations, no arc to |0|, pairwise-distinct
// successors, deterministic ascending-by-successor-seq arc order. A node
// with zero arcs collapses to |0|.
func (b *Builder) Flat(variable int, arcs []Arc) (*SDD, error) {
	return b.build(kindFlat, variable, arcs)
}

// Hier interns a hierarchical node (variable, arcs) with the same
// invariants as Flat, except each arc's valuation is itself a nested SDD.
func (b *Builder) Hier(variable int, arcs []Arc) (*SDD, error) {
	return b.build(kindHier, variable, arcs)
}

func (b *Builder) build(k kind, variable int, arcs []Arc) (*SDD, error) {
	if len(arcs) == 0 {
		return b.zero, nil
	}
	seen := make(map[uint64]bool, len(arcs))
	for _, a := range arcs {
		if a.Succ == nil {
			return nil, invariantViolation("arc has nil successor")
		}
		if a.Succ.IsZero() {
			return nil, invariantViolation("arc leads to the zero terminal")
		}
		if k == kindFlat {
			if a.Values == nil || a.Values.Empty() {
				return nil, invariantViolation("arc has an empty valuation")
			}
			if a.Nested != nil {
				return nil, invariantViolation("flat arc carries a nested valuation")
			}
		} else {
			if a.Nested == nil {
				return nil, invariantViolation("hierarchical arc has a nil nested valuation")
			}
			if a.Nested.IsZero() {
				return nil, invariantViolation("hierarchical arc valuation is empty")
			}
			if a.Values != nil {
				return nil, invariantViolation("hierarchical arc carries a flat valuation")
			}
		}
		if seen[a.Succ.seq] {
			return nil, invariantViolation("duplicate successor in alpha; callers must square-union first")
		}
		seen[a.Succ.seq] = true
	}

	sorted := make([]Arc, len(arcs))
	copy(sorted, arcs)
	sortArcsBySucc(sorted)

	candidate := &SDD{kind: k, variable: variable, arcs: sorted}
	candidate.hash = hashSDD(candidate)

	canonical, seq, inserted := b.table.Intern(candidate)
	if inserted {
		canonical.seq = seq
		canonical.refcount = 1
		for _, a := range canonical.arcs {
			b.Retain(a.Succ)
			if a.Nested != nil {
				b.Retain(a.Nested)
			}
		}
		return canonical, nil
	}
	b.Retain(canonical)
	return canonical, nil
}

// Retain increments n's reference count and returns n, for chaining at call
// sites that hand out a new owned handle to an existing node.
func (b *Builder) Retain(n *SDD) *SDD {
	if n == nil || n.pinned {
		return n
	}
	n.refcount++
	return n
}

// Release decrements n's reference count; at zero it erases n from the
// unique table and recursively releases the children n held arcs into.
// Releasing a pinned terminal is a no-op.
func (b *Builder) Release(n *SDD) {
	if n == nil || n.pinned {
		return
	}
	n.refcount--
	if n.refcount > 0 {
		return
	}
	b.table.Erase(n)
	for _, a := range n.arcs {
		b.Release(a.Succ)
		if a.Nested != nil {
			b.Release(a.Nested)
		}
	}
}

func sortArcsBySucc(arcs []Arc) {
	// insertion sort: alpha width is small in practice and this keeps the
	// comparator (successor intern sequence) trivial to read.
	for i := 1; i < len(arcs); i++ {
		for j := i; j > 0 && arcs[j-1].Succ.seq > arcs[j].Succ.seq; j-- {
			arcs[j-1], arcs[j] = arcs[j], arcs[j-1]
		}
	}
}

func hashSDD(s *SDD) uint64 {
	h := unique.MixHash(1469598103934665603, uint64(s.kind))
	h = unique.MixHash(h, uint64(s.variable))
	for _, a := range s.arcs {
		if a.Values != nil {
			h = unique.MixHash(h, a.Values.Hash())
		}
		if a.Nested != nil {
			h = unique.MixHash(h, a.Nested.seq)
		}
		h = unique.MixHash(h, a.Succ.seq)
	}
	return h
}

func equalSDD(a, b *SDD) bool {
	if a.kind != b.kind || a.variable != b.variable || len(a.arcs) != len(b.arcs) {
		return false
	}
	for i := range a.arcs {
		if a.arcs[i].Succ != b.arcs[i].Succ {
			return false
		}
		if a.kind == kindFlat {
			if !a.arcs[i].Values.Equal(b.arcs[i].Values) {
				return false
			}
		} else {
			if a.arcs[i].Nested != b.arcs[i].Nested {
				return false
			}
		}
	}
	return true
}

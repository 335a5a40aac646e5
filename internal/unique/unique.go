// Package unique implements a generic hash-consing table: a chained hash
// table keyed by a caller-supplied structural hash, used to intern SDD
// nodes and homomorphisms so that structural equality collapses to pointer
// equality.
//
// Go's generics have no placement-construction story, so the "allocate raw
// storage, then construct in place" half of the contract collapses to
// ordinary boxed values; what survives is the interning semantics: Intern
// returns the canonical value for a just-built candidate, disposing of the
// candidate when an equal entry is already present.
package unique

// loadFactorThreshold is the load factor at or above which the table
// doubles its bucket count.
const loadFactorThreshold = 0.75

type node[T any] struct {
	value T
	hash  uint64
	seq   uint64
	next  *node[T]
}

// Table is a hash-consing unique table over values of type T. Equality and
// hashing are supplied by the caller since T is typically a pointer to a
// struct whose fields determine structural identity.
type Table[T any] struct {
	buckets []*node[T]
	count   int
	hashFn  func(T) uint64
	eqFn    func(a, b T) bool
	nextSeq uint64

	hits, misses, evictions uint64
}

// New creates a Table with the given initial bucket count (rounded up to at
// least 1) and the hash/equality functions used to intern values.
func New[T any](initialBuckets int, hashFn func(T) uint64, eqFn func(a, b T) bool) *Table[T] {
	if initialBuckets < 1 {
		initialBuckets = 1
	}
	return &Table[T]{
		buckets: make([]*node[T], initialBuckets),
		hashFn:  hashFn,
		eqFn:    eqFn,
	}
}

// Intern returns the canonical instance equal to x: if an equal entry
// already exists, it is returned (along with its original intern sequence
// number and inserted=false, signaling the caller to discard x); otherwise x
// is inserted and becomes canonical (inserted=true). The sequence number is
// monotonically increasing across all interns performed by this table and
// is used by callers that need a deterministic tie-break over successor
// pointers (square-union).
func (t *Table[T]) Intern(x T) (value T, seq uint64, inserted bool) {
	h := t.hashFn(x)
	idx := int(h % uint64(len(t.buckets)))
	for n := t.buckets[idx]; n != nil; n = n.next {
		if n.hash == h && t.eqFn(n.value, x) {
			t.hits++
			return n.value, n.seq, false
		}
	}
	t.misses++
	seq = t.nextSeq
	t.nextSeq++
	n := &node[T]{value: x, hash: h, seq: seq, next: t.buckets[idx]}
	t.buckets[idx] = n
	t.count++
	t.maybeGrow()
	return x, seq, true
}

// Erase removes the entry equal to x, known by the caller to be otherwise
// unreferenced. It reports whether an entry was found and removed.
func (t *Table[T]) Erase(x T) bool {
	h := t.hashFn(x)
	idx := int(h % uint64(len(t.buckets)))
	var prev *node[T]
	for n := t.buckets[idx]; n != nil; n = n.next {
		if n.hash == h && t.eqFn(n.value, x) {
			if prev == nil {
				t.buckets[idx] = n.next
			} else {
				prev.next = n.next
			}
			t.count--
			t.evictions++
			return true
		}
		prev = n
	}
	return false
}

// Len returns the number of interned entries.
func (t *Table[T]) Len() int { return t.count }

func (t *Table[T]) maybeGrow() {
	if float64(t.count)/float64(len(t.buckets)) < loadFactorThreshold {
		return
	}
	newBuckets := make([]*node[T], len(t.buckets)*2)
	for _, head := range t.buckets {
		for n := head; n != nil; {
			next := n.next
			idx := int(n.hash % uint64(len(newBuckets)))
			n.next = newBuckets[idx]
			newBuckets[idx] = n
			n = next
		}
	}
	t.buckets = newBuckets
}

// Stats reports interning activity for diagnostics.
type Stats struct {
	Size      int
	Buckets   int
	Hits      uint64
	Misses    uint64
	Evictions uint64
}

// Stats returns a snapshot of the table's activity counters.
func (t *Table[T]) Stats() Stats {
	return Stats{
		Size:      t.count,
		Buckets:   len(t.buckets),
		Hits:      t.hits,
		Misses:    t.misses,
		Evictions: t.evictions,
	}
}

// MixHash combines a seed with a pointer-derived or component value the way
// the structural hash of an interned object combines its children's hashes.
// It is the FNV-1a-style mixer used throughout this module wherever a
// composite hash is needed (node arcs, homomorphism operand lists).
func MixHash(seed uint64, v uint64) uint64 {
	seed ^= v
	seed *= 1099511628211
	return seed
}

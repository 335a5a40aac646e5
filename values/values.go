// Package values declares the contracts that external value-set and
// user-function collaborators must satisfy to plug into the engine: the
// Values type itself, value-transforming functions and the order-node view
// they receive (inductive homomorphism bodies are declared in package hom).
// Nothing in this package constructs a concrete value
// set; see pkg/valuesets for reference implementations.
package values

// Values is a set of primitive values attached to an SDD arc. Implementations
// must be immutable: every operation returns a new Values rather than
// mutating the receiver, so a Values can be shared freely across nodes
// without defensive copying.
type Values interface {
	// Equal reports structural equality with another Values of the same
	// concrete type.
	Equal(other Values) bool

	// Hash returns a stable hash consistent with Equal.
	Hash() uint64

	// Empty reports whether the set has no elements.
	Empty() bool

	// Size returns the number of elements.
	Size() int

	// Sum returns the union of this set and other.
	Sum(other Values) Values

	// Intersection returns the elements common to this set and other.
	Intersection(other Values) Values

	// Difference returns the elements of this set not in other.
	Difference(other Values) Values

	// ForEach calls fn once per element in an implementation-defined
	// order, stopping early if fn returns false.
	ForEach(fn func(v uint64) bool)

	// FastIterable reports whether single-value iteration is cheap (O(1)
	// or close to it). The evaluator does not consult it: function
	// application always transforms whole valuations.
	FastIterable() bool
}

// Stateful is implemented by a Values type that keeps its own interning
// state (e.g. an interned sorted-set table). manager.Manager does not
// register, size or close Stateful values: neither New nor Close looks for
// this interface.
type Stateful interface {
	// StateKind names the state type for diagnostic purposes.
	StateKind() string

	// Close releases any resources owned by the state (interning tables,
	// arenas). Nothing in the engine calls it.
	Close() error
}

// Function is a values-to-values transformer supplied by the caller, the
// leaf of an Inductive or Function homomorphism.
type Function interface {
	// Apply transforms a Values into another Values.
	Apply(v Values) Values

	// Selector reports whether Apply never maps two distinct inputs to
	// overlapping outputs, letting the evaluator apply it value-by-value
	// instead of rebuilding the whole arc.
	Selector() bool

	// Shifter reports whether Apply never grows the set (|Apply(v)| <=
	// |v| for all v). A shifter still permits the selector code path even
	// when Apply(v) != v, because it cannot create new overlaps between
	// previously disjoint arcs.
	Shifter() bool
}

// Order carries the narrow order-node contract the user-function world
// needs: the identifier being visited plus its position, so callers never
// need to import the order package directly.
type Order interface {
	ID() string
	Position() int
}

// InductiveBody (the recursive-definition contract for an inductive
// homomorphism) lives in package hom, not here: its Operator methods must
// return a homomorphism and an SDD, and hom is the package that owns both of
// those types. Defining it here would force this package to import hom,
// which already must import this package for Values and Function.

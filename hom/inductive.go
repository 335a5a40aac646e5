package hom

import (
	"github.com/hsdd-project/hsdd/order"
	"github.com/hsdd-project/hsdd/sdd"
	"github.com/hsdd-project/hsdd/values"
)

// InductiveBody is the recursive-definition contract an inductive
// homomorphism dispatches to. It is defined here rather than in package
// values because its Operator methods return a *Hom and a *sdd.SDD, and this
// package already depends on both values and sdd; defining it in values
// would force that package to import this one.
type InductiveBody interface {
	// Skip reports whether the body commutes with prepending order
	// position o, queried by the evaluator at apply time (not cached at
	// construction, since the answer may depend on o).
	Skip(o int) bool

	// Selector reports whether the body always returns a subset of its
	// input.
	Selector() bool

	// OperatorValues is invoked for a flat arc: given the order node
	// being visited and the arc's valuation, it returns the
	// homomorphism to apply to the arc's successor.
	OperatorValues(o *order.Node, vals values.Values) (*Hom, error)

	// OperatorSDD is invoked for a hierarchical arc: given the order
	// node being visited and the arc's nested valuation, it returns the
	// homomorphism to apply to the arc's successor.
	OperatorSDD(o *order.Node, nested *sdd.SDD) (*Hom, error)

	// OperatorTerminal is invoked when evaluation reaches |1|, supplying
	// the base case SDD.
	OperatorTerminal() (*sdd.SDD, error)
}

package cmd

import (
	"github.com/hsdd-project/hsdd/hom"
	"github.com/hsdd-project/hsdd/manager"
	"github.com/hsdd-project/hsdd/order"
	"github.com/hsdd-project/hsdd/pkg/valuesets"
	"github.com/hsdd-project/hsdd/sdd"
	"github.com/hsdd-project/hsdd/values"
)

// scenarioFlags are the parameters shared by build, eval and stats: how many
// variables the demo order carries, the domain each one ranges over, and how
// many seed tuples to union together into the starting relation.
type scenarioFlags struct {
	vars    int
	modulus uint64
	tuples  int
}

func registerScenarioFlags(flags interface {
	IntVar(p *int, name string, value int, usage string)
	Uint64Var(p *uint64, name string, value uint64, usage string)
}, f *scenarioFlags) {
	flags.IntVar(&f.vars, "vars", 3, "Number of variables in the demo order")
	flags.Uint64Var(&f.modulus, "modulus", 4, "Domain size each variable's value wraps around")
	flags.IntVar(&f.tuples, "tuples", 2, "Number of seed tuples unioned into the starting relation")
}

// buildOrder constructs a flat chain order of n variables named "a", "b",
// "c", ..., ordered from "a" at the top down to the n-th letter at the bottom.
func buildOrder(n int) (*order.Order, error) {
	decls := make([]order.Decl, n)
	for i := range decls {
		decls[i] = order.Decl{ID: varName(i)}
	}
	return order.Build(decls)
}

func varName(i int) string {
	return string(rune('a' + i))
}

// buildTupleSpace unions f.tuples singleton tuples into one relation: tuple
// k assigns every variable the value k mod modulus, so the relation
// grows by exactly one path per extra requested tuple (fewer once the
// modulus forces a collision, which is itself a useful thing to observe).
func buildTupleSpace(sb *sdd.Builder, o *order.Order, f scenarioFlags) (*sdd.SDD, error) {
	var tuples []*sdd.SDD
	for k := 0; k < f.tuples; k++ {
		val := uint64(k) % f.modulus
		tuple, err := singletonTuple(sb, o.Root(), val)
		if err != nil {
			return nil, err
		}
		tuples = append(tuples, tuple)
	}
	opCtx := sdd.NewOpContext(sb, 64, 64, 64, 1<<16)
	return sdd.Union(opCtx, tuples...)
}

// singletonTuple builds the chain of flat nodes assigning val to every
// variable from n down to the end of the chain.
func singletonTuple(sb *sdd.Builder, n *order.Node, val uint64) (*sdd.SDD, error) {
	if n == nil {
		return sb.One(), nil
	}
	succ, err := singletonTuple(sb, n.Next(), val)
	if err != nil {
		return nil, err
	}
	return sb.Flat(n.Position(), []sdd.Arc{{Values: valuesets.NewIntSet(val), Succ: succ}})
}

// incrementMod is the demo values.Function: it adds one to every element of
// an *valuesets.IntSet, wrapping modulo m. It reports itself as a selector
// and as a shifter (it changes element identity rather than merely
// filtering), so the evaluator rewrites each arc's valuation in place instead
// of unioning one-arc nodes.
type incrementMod struct {
	modulus uint64
}

func (f incrementMod) Apply(val values.Values) values.Values {
	s := val.(*valuesets.IntSet)
	var out []uint64
	s.ForEach(func(e uint64) bool {
		out = append(out, (e+1)%f.modulus)
		return true
	})
	return valuesets.NewIntSet(out...)
}

func (incrementMod) Selector() bool { return true }
func (incrementMod) Shifter() bool  { return true }

// buildCycleFixpoint builds the naive Fixpoint(Sum(increment@a, ...,
// increment@<last variable>, id)) homomorphism: repeatedly incrementing every
// coordinate mod f.modulus until nothing changes, which happens once every
// coordinate has cycled back to a value already seen along that branch.
func buildCycleFixpoint(hb *hom.Builder, o *order.Order, f scenarioFlags) (*hom.Hom, error) {
	operands := []*hom.Hom{hb.ID()}
	for n := o.Root(); n != nil; n = n.Next() {
		fn, err := hb.Function(n.Position(), incrementMod{modulus: f.modulus})
		if err != nil {
			return nil, err
		}
		operands = append(operands, fn)
	}
	sum, err := hb.Sum(operands...)
	if err != nil {
		return nil, err
	}
	return hb.Fixpoint(sum)
}

// runScenarioEval builds the tuple space and the cycle fixpoint for f,
// rewrites the fixpoint into its saturation schedule and evaluates both the
// naive and rewritten forms, returning everything a caller might want to
// report.
type evalResult struct {
	order        *order.Order
	input        *sdd.SDD
	naive        *hom.Hom
	rewritten    *hom.Hom
	naiveOut     *sdd.SDD
	rewrittenOut *sdd.SDD
}

func runScenarioEval(m *manager.Manager, f scenarioFlags) (*evalResult, error) {
	o, err := buildOrder(f.vars)
	if err != nil {
		return nil, err
	}
	input, err := buildTupleSpace(m.SDDBuilder(), o, f)
	if err != nil {
		return nil, err
	}
	naive, err := buildCycleFixpoint(m.HomBuilder(), o, f)
	if err != nil {
		return nil, err
	}
	rewritten, err := m.Rewrite(naive, o.Root())
	if err != nil {
		return nil, err
	}
	naiveOut, err := m.Eval(o.Root(), naive, input)
	if err != nil {
		return nil, err
	}
	rewrittenOut, err := m.Eval(o.Root(), rewritten, input)
	if err != nil {
		return nil, err
	}
	return &evalResult{
		order:        o,
		input:        input,
		naive:        naive,
		rewritten:    rewritten,
		naiveOut:     naiveOut,
		rewrittenOut: rewrittenOut,
	}, nil
}

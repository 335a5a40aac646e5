package hom

import (
	"errors"

	"github.com/hsdd-project/hsdd/internal/cache"
	"github.com/hsdd-project/hsdd/order"
	"github.com/hsdd-project/hsdd/sdd"
)

type cacheKey = [2]uint64

// EvalContext is the per-call-root object threading the homomorphism
// evaluation cache and the underlying SDD operation context through a
// recursive apply call. Cheap to copy (shared pointers), so nested recursion
// reuses the same tables.
type EvalContext struct {
	homBuilder *Builder
	sddOp      *sdd.OpContext
	cache      *cache.Cache[cacheKey, *sdd.SDD]
}

// NewEvalContext builds an EvalContext over homBuilder/sddOp with the given
// evaluation-cache capacity.
func NewEvalContext(homBuilder *Builder, sddOp *sdd.OpContext, cacheSize int) *EvalContext {
	return &EvalContext{
		homBuilder: homBuilder,
		sddOp:      sddOp,
		cache:      cache.New[cacheKey, *sdd.SDD](cacheSize),
	}
}

// HomBuilder returns the homomorphism builder backing this context.
func (c *EvalContext) HomBuilder() *Builder { return c.homBuilder }

// SDDOpContext returns the SDD operation context backing this evaluator.
func (c *EvalContext) SDDOpContext() *sdd.OpContext { return c.sddOp }

func (c *EvalContext) sddBuilder() *sdd.Builder { return c.sddOp.Builder() }

// CacheStats reports the homomorphism evaluation cache's activity.
func (c *EvalContext) CacheStats() cache.Stats { return c.cache.Stats() }

// Apply is the top-level homomorphism application h(o, x): dispatches per
// §4.6 — identity short-circuits to x, |0| short-circuits to |0|, a cache
// hit returns the stored result, and a miss dispatches on both h's and x's
// shape, pushing h down one level when it commutes with o rather than
// invoking the variant's own recursive formula.
func Apply(ctx *EvalContext, o *order.Node, h *Hom, x *sdd.SDD) (*sdd.SDD, error) {
	return apply(ctx, o, h, x, nil)
}

func apply(ctx *EvalContext, o *order.Node, h *Hom, x *sdd.SDD, chain []*Hom) (*sdd.SDD, error) {
	if h.kind == kindID {
		return x, nil
	}
	if x.IsZero() {
		return ctx.sddBuilder().Zero(), nil
	}

	useCache := h.shouldCache()
	var key cacheKey
	if useCache {
		key = cacheKey{h.seq, x.seq}
		if v, ok := ctx.cache.Get(key); ok {
			return ctx.sddBuilder().Retain(v), nil
		}
	}

	nested := pushChain(chain, h)
	result, err := dispatch(ctx, o, h, x, nested)
	if err != nil {
		if errors.Is(err, ErrInterrupt) {
			return nil, err
		}
		var evalErr *EvalError
		if errors.As(err, &evalErr) {
			return nil, err
		}
		var topErr *sdd.TopError
		if errors.As(err, &topErr) {
			return nil, evalError(x, nested, err)
		}
		return nil, err
	}

	if useCache {
		ctx.cache.Put(key, result)
	}
	return result, nil
}

func pushChain(chain []*Hom, h *Hom) []*Hom {
	out := make([]*Hom, len(chain)+1)
	copy(out, chain)
	out[len(chain)] = h
	return out
}

func dispatch(ctx *EvalContext, o *order.Node, h *Hom, x *sdd.SDD, chain []*Hom) (*sdd.SDD, error) {
	if !x.IsOne() && h.Skip(o.Position()) {
		return pushDown(ctx, o, h, x, chain)
	}
	return applyFormula(ctx, o, h, x, chain)
}

// pushDown is the "key automatic optimization": when h commutes with
// prepending o, apply it to each arc's successor directly (recursing one
// order position down) instead of invoking the variant's own body, then
// rebuild the alpha. Valuations are untouched, so only successors can
// collide; MergeFlatArcs/MergeHierArcs square-union away any collision.
func pushDown(ctx *EvalContext, o *order.Node, h *Hom, x *sdd.SDD, chain []*Hom) (*sdd.SDD, error) {
	arcs := x.Arcs()
	out := make([]sdd.Arc, len(arcs))
	for i, a := range arcs {
		succ, err := apply(ctx, o.Next(), h, a.Succ, chain)
		if err != nil {
			return nil, err
		}
		out[i] = sdd.Arc{Values: a.Values, Nested: a.Nested, Succ: succ}
	}
	if x.IsFlat() {
		merged, err := sdd.MergeFlatArcs(out)
		if err != nil {
			return nil, err
		}
		return ctx.sddBuilder().Flat(x.Variable(), merged)
	}
	merged, err := sdd.MergeHierArcs(ctx.sddOp, out)
	if err != nil {
		return nil, err
	}
	return ctx.sddBuilder().Hier(x.Variable(), merged)
}

func applyFormula(ctx *EvalContext, o *order.Node, h *Hom, x *sdd.SDD, chain []*Hom) (*sdd.SDD, error) {
	switch h.kind {
	case kindConst:
		return ctx.sddBuilder().Retain(h.constant), nil
	case kindCons:
		return applyCons(ctx, o, h, x, chain)
	case kindComp:
		mid, err := apply(ctx, o, h.right, x, chain)
		if err != nil {
			return nil, err
		}
		return apply(ctx, o, h.left, mid, chain)
	case kindSum:
		return applyNaryOp(ctx, o, h, x, chain, sdd.Union)
	case kindInter:
		return applyNaryOp(ctx, o, h, x, chain, sdd.Intersection)
	case kindFixpoint:
		return applyFixpoint(ctx, o, h, x, chain)
	case kindLocal:
		if x.IsOne() {
			return x, nil
		}
		return applyLocal(ctx, o, h, x, chain)
	case kindInductive:
		if x.IsOne() {
			s, err := h.body.OperatorTerminal()
			if err != nil {
				return nil, err
			}
			return ctx.sddBuilder().Retain(s), nil
		}
		return applyInductive(ctx, o, h, x, chain)
	case kindFunction:
		if x.IsOne() {
			return x, nil
		}
		return applyFunction(ctx, o, h, x, chain)
	case kindITE:
		return applyITE(ctx, o, h, x, chain)
	case kindSatFix:
		return applySatFix(ctx, o, h, x, chain)
	case kindSatSum:
		return applySatContainer(ctx, o, h, x, chain, sdd.Union)
	case kindSatInter:
		return applySatContainer(ctx, o, h, x, chain, sdd.Intersection)
	default:
		return nil, invariantViolation("unhandled homomorphism kind in evaluator")
	}
}

func applyCons(ctx *EvalContext, o *order.Node, h *Hom, x *sdd.SDD, chain []*Hom) (*sdd.SDD, error) {
	succ, err := apply(ctx, o.Next(), h.inner, x, chain)
	if err != nil {
		return nil, err
	}
	return ctx.sddBuilder().Flat(h.variable, []sdd.Arc{{Values: h.valuation, Succ: succ}})
}

func applyNaryOp(ctx *EvalContext, o *order.Node, h *Hom, x *sdd.SDD, chain []*Hom, combine func(*sdd.OpContext, ...*sdd.SDD) (*sdd.SDD, error)) (*sdd.SDD, error) {
	results := make([]*sdd.SDD, len(h.operands))
	for i, op := range h.operands {
		r, err := apply(ctx, o, op, x, chain)
		if err != nil {
			return nil, err
		}
		results[i] = r
	}
	return combine(ctx.sddOp, results...)
}

func applyFixpoint(ctx *EvalContext, o *order.Node, h *Hom, x *sdd.SDD, chain []*Hom) (*sdd.SDD, error) {
	cur := x
	for {
		next, err := apply(ctx, o, h.inner, cur, chain)
		if err != nil {
			return nil, err
		}
		if next == cur {
			return cur, nil
		}
		cur = next
	}
}

func applyLocal(ctx *EvalContext, o *order.Node, h *Hom, x *sdd.SDD, chain []*Hom) (*sdd.SDD, error) {
	if !x.IsHier() {
		return nil, invariantViolation("local applied to a flat node")
	}
	arcs := x.Arcs()
	out := make([]sdd.Arc, len(arcs))
	for i, a := range arcs {
		newNested, err := apply(ctx, o.Nested(), h.inner, a.Nested, chain)
		if err != nil {
			return nil, err
		}
		out[i] = sdd.Arc{Nested: newNested, Succ: a.Succ}
	}
	merged, err := sdd.MergeHierArcs(ctx.sddOp, out)
	if err != nil {
		return nil, err
	}
	return ctx.sddBuilder().Hier(x.Variable(), merged)
}

func applyInductive(ctx *EvalContext, o *order.Node, h *Hom, x *sdd.SDD, chain []*Hom) (*sdd.SDD, error) {
	arcs := x.Arcs()
	out := make([]sdd.Arc, len(arcs))
	if x.IsFlat() {
		for i, a := range arcs {
			arcHom, err := h.body.OperatorValues(o, a.Values)
			if err != nil {
				return nil, err
			}
			newSucc, err := apply(ctx, o.Next(), arcHom, a.Succ, chain)
			if err != nil {
				return nil, err
			}
			out[i] = sdd.Arc{Values: a.Values, Succ: newSucc}
		}
		merged, err := sdd.MergeFlatArcs(out)
		if err != nil {
			return nil, err
		}
		return ctx.sddBuilder().Flat(x.Variable(), merged)
	}
	for i, a := range arcs {
		arcHom, err := h.body.OperatorSDD(o, a.Nested)
		if err != nil {
			return nil, err
		}
		newSucc, err := apply(ctx, o.Next(), arcHom, a.Succ, chain)
		if err != nil {
			return nil, err
		}
		out[i] = sdd.Arc{Nested: a.Nested, Succ: newSucc}
	}
	merged, err := sdd.MergeHierArcs(ctx.sddOp, out)
	if err != nil {
		return nil, err
	}
	return ctx.sddBuilder().Hier(x.Variable(), merged)
}

func applyFunction(ctx *EvalContext, o *order.Node, h *Hom, x *sdd.SDD, chain []*Hom) (*sdd.SDD, error) {
	if !x.IsFlat() {
		return nil, invariantViolation("function applied to a hierarchical node")
	}
	arcs := x.Arcs()
	if h.fn.Selector() || h.fn.Shifter() {
		out := make([]sdd.Arc, len(arcs))
		for i, a := range arcs {
			out[i] = sdd.Arc{Values: h.fn.Apply(a.Values), Succ: a.Succ}
		}
		merged, err := sdd.MergeFlatArcs(out)
		if err != nil {
			return nil, err
		}
		return ctx.sddBuilder().Flat(x.Variable(), merged)
	}
	acc := ctx.sddBuilder().Zero()
	for _, a := range arcs {
		single, err := ctx.sddBuilder().Flat(x.Variable(), []sdd.Arc{{Values: h.fn.Apply(a.Values), Succ: a.Succ}})
		if err != nil {
			return nil, err
		}
		acc, err = sdd.Union(ctx.sddOp, acc, single)
		if err != nil {
			return nil, err
		}
	}
	return acc, nil
}

func applyITE(ctx *EvalContext, o *order.Node, h *Hom, x *sdd.SDD, chain []*Hom) (*sdd.SDD, error) {
	px, err := apply(ctx, o, h.pred, x, chain)
	if err != nil {
		return nil, err
	}
	tpx, err := apply(ctx, o, h.then, px, chain)
	if err != nil {
		return nil, err
	}
	rest, err := sdd.Difference(ctx.sddOp, x, px)
	if err != nil {
		return nil, err
	}
	epx, err := apply(ctx, o, h.els, rest, chain)
	if err != nil {
		return nil, err
	}
	return sdd.Union(ctx.sddOp, tpx, epx)
}

func applySatFix(ctx *EvalContext, o *order.Node, h *Hom, x *sdd.SDD, chain []*Hom) (*sdd.SDD, error) {
	cur := x
	for {
		next, err := apply(ctx, o, h.f, cur, chain)
		if err != nil {
			return nil, err
		}
		next, err = apply(ctx, o, h.l, next, chain)
		if err != nil {
			return nil, err
		}
		for _, g := range h.operands {
			step, err := apply(ctx, o, g, next, chain)
			if err != nil {
				return nil, err
			}
			next, err = sdd.Union(ctx.sddOp, next, step)
			if err != nil {
				return nil, err
			}
		}
		if next == cur {
			return cur, nil
		}
		cur = next
	}
}

func applySatContainer(ctx *EvalContext, o *order.Node, h *Hom, x *sdd.SDD, chain []*Hom, combine func(*sdd.OpContext, ...*sdd.SDD) (*sdd.SDD, error)) (*sdd.SDD, error) {
	results := make([]*sdd.SDD, 0, len(h.operands)+2)
	fRes, err := apply(ctx, o, h.f, x, chain)
	if err != nil {
		return nil, err
	}
	results = append(results, fRes)
	lRes, err := apply(ctx, o, h.l, x, chain)
	if err != nil {
		return nil, err
	}
	results = append(results, lRes)
	for _, g := range h.operands {
		gRes, err := apply(ctx, o, g, x, chain)
		if err != nil {
			return nil, err
		}
		results = append(results, gRes)
	}
	return combine(ctx.sddOp, results...)
}

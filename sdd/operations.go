package sdd

import (
	"sort"
	"strconv"
	"strings"

	"github.com/hsdd-project/hsdd/internal/arena"
	"github.com/hsdd-project/hsdd/internal/cache"
	"github.com/hsdd-project/hsdd/values"
)

// OpContext is the per-call-root object threading the three DD operation
// caches and the scratch arena through a recursive union/intersection/
// difference call. Contexts are cheap to copy (the caches and arena are
// shared pointers), so nested recursion reuses them freely.
type OpContext struct {
	builder    *Builder
	sumCache   *cache.Cache[string, *SDD]
	interCache *cache.Cache[string, *SDD]
	diffCache  *cache.Cache[[2]uint64, *SDD]
	arena      *arena.Arena
}

// NewOpContext builds an OpContext over builder with the given cache
// capacities and arena size.
func NewOpContext(builder *Builder, sumCacheSize, interCacheSize, diffCacheSize, arenaSize int) *OpContext {
	return &OpContext{
		builder:    builder,
		sumCache:   cache.New[string, *SDD](sumCacheSize),
		interCache: cache.New[string, *SDD](interCacheSize),
		diffCache:  cache.New[[2]uint64, *SDD](diffCacheSize),
		arena:      arena.New(arenaSize),
	}
}

// Builder returns the SDD builder backing this context.
func (c *OpContext) Builder() *Builder { return c.builder }

// Arena returns the scratch arena backing this context.
func (c *OpContext) Arena() *arena.Arena { return c.arena }

// CacheStats reports activity for the three operation caches, in
// (union, intersection, difference) order.
func (c *OpContext) CacheStats() (sum, inter, diff cache.Stats) {
	return c.sumCache.Stats(), c.interCache.Stats(), c.diffCache.Stats()
}

func isZeroNode(n *SDD) bool { return n.IsZero() }

// Union computes the n-ary union of operands. The empty operand list and
// any zero operands collapse away; a singleton returns its sole operand; if
// any operand is the one terminal all must be, else a TopError is raised.
func Union(ctx *OpContext, operands ...*SDD) (*SDD, error) {
	rewind := arena.NewRewinder(ctx.arena)
	defer rewind.Release()

	ops := dedupSortNonZero(operands, ctx.builder.zero)
	if len(ops) == 0 {
		return ctx.builder.Retain(ctx.builder.zero), nil
	}
	if len(ops) == 1 {
		return ctx.builder.Retain(ops[0]), nil
	}

	anyOne, allOne := false, true
	for _, o := range ops {
		if o.IsOne() {
			anyOne = true
		} else {
			allOne = false
		}
	}
	if anyOne {
		if !allOne {
			return nil, topError(ops[0], ops[len(ops)-1], "cannot union the one terminal with a node")
		}
		return ctx.builder.Retain(ctx.builder.one), nil
	}

	key := seqKey(ops)
	if v, ok := ctx.sumCache.Get(key); ok {
		return ctx.builder.Retain(v), nil
	}

	for _, o := range ops[1:] {
		if o.kind != ops[0].kind || o.variable != ops[0].variable {
			return nil, topError(ops[0], o, "shape mismatch in union")
		}
	}

	acc := ops[0]
	for _, o := range ops[1:] {
		var err error
		acc, err = unionPair(ctx, acc, o)
		if err != nil {
			return nil, err
		}
	}
	ctx.sumCache.Put(key, acc)
	return acc, nil
}

func unionPair(ctx *OpContext, a, b *SDD) (*SDD, error) {
	if a == b {
		return a, nil
	}
	if a.IsZero() {
		return b, nil
	}
	if b.IsZero() {
		return a, nil
	}
	if a.kind != b.kind || a.variable != b.variable {
		return nil, topError(a, b, "shape mismatch in union")
	}
	recurse := func(x, y *SDD) (*SDD, error) { return Union(ctx, x, y) }
	if a.kind == kindFlat {
		merged, err := combineUnion(toFlatGenArcs(a.arcs), toFlatGenArcs(b.arcs), flatOps(), recurse, isZeroNode)
		if err != nil {
			return nil, err
		}
		return ctx.builder.Flat(a.variable, fromFlatGenArcs(merged))
	}
	merged, err := combineUnion(toHierGenArcs(a.arcs), toHierGenArcs(b.arcs), hierOps(ctx), recurse, isZeroNode)
	if err != nil {
		return nil, err
	}
	return ctx.builder.Hier(a.variable, fromHierGenArcs(merged))
}

// Intersection computes the n-ary intersection of operands. Any zero
// operand short-circuits the whole intersection to zero; a singleton
// returns its sole operand; if any operand is the one terminal all must be,
// else a TopError is raised.
func Intersection(ctx *OpContext, operands ...*SDD) (*SDD, error) {
	rewind := arena.NewRewinder(ctx.arena)
	defer rewind.Release()

	if len(operands) == 0 {
		return ctx.builder.Retain(ctx.builder.zero), nil
	}
	for _, o := range operands {
		if o.IsZero() {
			return ctx.builder.Retain(ctx.builder.zero), nil
		}
	}
	ops := dedupSort(operands)
	if len(ops) == 1 {
		return ctx.builder.Retain(ops[0]), nil
	}

	anyOne, allOne := false, true
	for _, o := range ops {
		if o.IsOne() {
			anyOne = true
		} else {
			allOne = false
		}
	}
	if anyOne {
		if !allOne {
			return nil, topError(ops[0], ops[len(ops)-1], "cannot intersect the one terminal with a node")
		}
		return ctx.builder.Retain(ctx.builder.one), nil
	}

	key := seqKey(ops)
	if v, ok := ctx.interCache.Get(key); ok {
		return ctx.builder.Retain(v), nil
	}

	for _, o := range ops[1:] {
		if o.kind != ops[0].kind || o.variable != ops[0].variable {
			return nil, topError(ops[0], o, "shape mismatch in intersection")
		}
	}

	acc := ops[0]
	for _, o := range ops[1:] {
		var err error
		acc, err = interPair(ctx, acc, o)
		if err != nil {
			return nil, err
		}
		if acc.IsZero() {
			break
		}
	}
	ctx.interCache.Put(key, acc)
	return acc, nil
}

func interPair(ctx *OpContext, a, b *SDD) (*SDD, error) {
	if a == b {
		return a, nil
	}
	if a.IsZero() || b.IsZero() {
		return ctx.builder.zero, nil
	}
	if a.kind != b.kind || a.variable != b.variable {
		return nil, topError(a, b, "shape mismatch in intersection")
	}
	recurse := func(x, y *SDD) (*SDD, error) { return Intersection(ctx, x, y) }
	if a.kind == kindFlat {
		merged, err := combineIntersection(toFlatGenArcs(a.arcs), toFlatGenArcs(b.arcs), flatOps(), recurse, isZeroNode)
		if err != nil {
			return nil, err
		}
		return ctx.builder.Flat(a.variable, fromFlatGenArcs(merged))
	}
	merged, err := combineIntersection(toHierGenArcs(a.arcs), toHierGenArcs(b.arcs), hierOps(ctx), recurse, isZeroNode)
	if err != nil {
		return nil, err
	}
	return ctx.builder.Hier(a.variable, fromHierGenArcs(merged))
}

// Difference computes a minus b. The three trivial cases (x−x, 0−x, x−0)
// are resolved without touching the cache.
func Difference(ctx *OpContext, a, b *SDD) (*SDD, error) {
	if a == b {
		return ctx.builder.Retain(ctx.builder.zero), nil
	}
	if a.IsZero() {
		return ctx.builder.Retain(ctx.builder.zero), nil
	}
	if b.IsZero() {
		return ctx.builder.Retain(a), nil
	}

	rewind := arena.NewRewinder(ctx.arena)
	defer rewind.Release()

	if a.kind != b.kind || a.variable != b.variable {
		return nil, topError(a, b, "shape mismatch in difference")
	}
	if a.IsOne() {
		// both are the singleton One, already excluded by a == b above.
		return nil, topError(a, b, "shape mismatch in difference")
	}

	key := [2]uint64{a.seq, b.seq}
	if v, ok := ctx.diffCache.Get(key); ok {
		return ctx.builder.Retain(v), nil
	}

	recurse := func(x, y *SDD) (*SDD, error) { return Difference(ctx, x, y) }
	var result *SDD
	var err error
	if a.kind == kindFlat {
		var merged []genArc[values.Values]
		merged, err = combineDifference(toFlatGenArcs(a.arcs), toFlatGenArcs(b.arcs), flatOps(), recurse, isZeroNode)
		if err != nil {
			return nil, err
		}
		result, err = ctx.builder.Flat(a.variable, fromFlatGenArcs(merged))
	} else {
		var merged []genArc[*SDD]
		merged, err = combineDifference(toHierGenArcs(a.arcs), toHierGenArcs(b.arcs), hierOps(ctx), recurse, isZeroNode)
		if err != nil {
			return nil, err
		}
		result, err = ctx.builder.Hier(a.variable, fromHierGenArcs(merged))
	}
	if err != nil {
		return nil, err
	}
	ctx.diffCache.Put(key, result)
	return result, nil
}

func flatOps() valOps[values.Values] {
	return valOps[values.Values]{
		Empty:     func(v values.Values) bool { return v == nil || v.Empty() },
		Sum:       func(a, b values.Values) (values.Values, error) { return a.Sum(b), nil },
		Intersect: func(a, b values.Values) (values.Values, error) { return a.Intersection(b), nil },
		Diff:      func(a, b values.Values) (values.Values, error) { return a.Difference(b), nil },
	}
}

func hierOps(ctx *OpContext) valOps[*SDD] {
	return valOps[*SDD]{
		Empty:     func(v *SDD) bool { return v.IsZero() },
		Sum:       func(a, b *SDD) (*SDD, error) { return Union(ctx, a, b) },
		Intersect: func(a, b *SDD) (*SDD, error) { return Intersection(ctx, a, b) },
		Diff:      func(a, b *SDD) (*SDD, error) { return Difference(ctx, a, b) },
	}
}

func toFlatGenArcs(arcs []Arc) []genArc[values.Values] {
	out := make([]genArc[values.Values], len(arcs))
	for i, a := range arcs {
		out[i] = genArc[values.Values]{Val: a.Values, Succ: a.Succ}
	}
	return out
}

func fromFlatGenArcs(arcs []genArc[values.Values]) []Arc {
	out := make([]Arc, len(arcs))
	for i, a := range arcs {
		out[i] = Arc{Values: a.Val, Succ: a.Succ}
	}
	return out
}

func toHierGenArcs(arcs []Arc) []genArc[*SDD] {
	out := make([]genArc[*SDD], len(arcs))
	for i, a := range arcs {
		out[i] = genArc[*SDD]{Val: a.Nested, Succ: a.Succ}
	}
	return out
}

func fromHierGenArcs(arcs []genArc[*SDD]) []Arc {
	out := make([]Arc, len(arcs))
	for i, a := range arcs {
		out[i] = Arc{Nested: a.Val, Succ: a.Succ}
	}
	return out
}

func seqKey(ops []*SDD) string {
	var sb strings.Builder
	for i, o := range ops {
		if i > 0 {
			sb.WriteByte(',')
		}
		sb.WriteString(strconv.FormatUint(o.seq, 10))
	}
	return sb.String()
}

func dedupSort(operands []*SDD) []*SDD {
	seen := make(map[*SDD]bool, len(operands))
	out := make([]*SDD, 0, len(operands))
	for _, o := range operands {
		if !seen[o] {
			seen[o] = true
			out = append(out, o)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].seq < out[j].seq })
	return out
}

func dedupSortNonZero(operands []*SDD, zero *SDD) []*SDD {
	filtered := make([]*SDD, 0, len(operands))
	for _, o := range operands {
		if o != zero && !o.IsZero() {
			filtered = append(filtered, o)
		}
	}
	return dedupSort(filtered)
}

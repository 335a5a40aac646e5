// Package hom implements the homomorphism algebra: canonical,
// reference-counted, hash-consed transformations over SDDs, along with the
// evaluator that applies them and the rewriter that turns a naive global
// fixpoint into a saturation schedule.
package hom

import (
	"sort"

	"github.com/hsdd-project/hsdd/internal/unique"
	"github.com/hsdd-project/hsdd/order"
	"github.com/hsdd-project/hsdd/sdd"
	"github.com/hsdd-project/hsdd/values"
)

type kind uint8

const (
	kindID kind = iota
	kindConst
	kindCons
	kindComp
	kindSum
	kindInter
	kindFixpoint
	kindLocal
	kindInductive
	kindFunction
	kindITE
	kindSatFix
	kindSatSum
	kindSatInter
)

// Hom is a canonical homomorphism node. The zero value is not valid; obtain
// instances from a Builder. Every variant lives in the same struct, a closed
// tagged union rather than an open-vocabulary hierarchy, so that equality
// between two homomorphisms is pointer equality after interning.
type Hom struct {
	kind     kind
	variable int // cons/local/function/sat_* target order position
	constant *sdd.SDD
	valuation values.Values // cons's V
	fn       values.Function
	body     InductiveBody
	inner    *Hom // cons/fixpoint/local body
	left     *Hom // comp's l
	right    *Hom // comp's r
	pred     *Hom // ite's p
	then     *Hom // ite's t
	els      *Hom // ite's e
	operands []*Hom // sum/inter flat operand set; sat_*'s G list
	f        *Hom // sat_*'s F
	l        *Hom // sat_*'s L

	hash     uint64
	seq      uint64
	refcount int
	pinned   bool
	selector bool
}

// Variable returns the target order position for cons/local/function/sat_*
// variants. Meaningless for other kinds.
func (h *Hom) Variable() int { return h.variable }

// Seq returns the intern sequence number used as the deterministic cache-key
// and sort component across this package.
func (h *Hom) Seq() uint64 { return h.seq }

// Selector reports whether h always returns a subset of its input. Computed
// once at construction per §4.4's "used to enable optimizations" contract.
func (h *Hom) Selector() bool { return h.selector }

// Skip reports whether h commutes with prepending order position o: it can
// be pushed down one level without changing semantics. Unlike Selector, Skip
// genuinely depends on the order position being tested, so it is computed on
// demand rather than cached at construction.
func (h *Hom) Skip(o int) bool {
	switch h.kind {
	case kindID:
		return true
	case kindConst:
		return false
	case kindCons:
		return false
	case kindComp:
		return h.left.Skip(o) && h.right.Skip(o)
	case kindSum, kindInter:
		for _, op := range h.operands {
			if !op.Skip(o) {
				return false
			}
		}
		return true
	case kindFixpoint:
		return h.inner.Skip(o)
	case kindLocal:
		return h.variable != o
	case kindInductive:
		return h.body.Skip(o)
	case kindFunction:
		return h.variable != o
	case kindITE:
		return h.pred.Skip(o) && h.then.Skip(o) && h.els.Skip(o)
	case kindSatFix, kindSatSum, kindSatInter:
		return h.variable != o
	default:
		return false
	}
}

// shouldCache reports whether the evaluator should consult/populate the
// evaluation cache for this variant. Constants, cons and identity are not
// cached: constants/cons would bloat the
// cache with one-shot entries, and identity never reaches the cache (it
// short-circuits first).
func (h *Hom) shouldCache() bool {
	switch h.kind {
	case kindID, kindConst, kindCons:
		return false
	default:
		return true
	}
}

// Builder owns the homomorphism unique table and the pinned identity and
// terminal constants. All construction goes through it.
type Builder struct {
	table          *unique.Table[*Hom]
	sddBuilder     *sdd.Builder
	idHom          *Hom
	constZero      *Hom
	constOne       *Hom
}

// NewBuilder creates a Builder backed by sddBuilder with the given initial
// unique-table bucket count.
func NewBuilder(sddBuilder *sdd.Builder, initialBuckets int) *Builder {
	b := &Builder{sddBuilder: sddBuilder}
	b.table = unique.New[*Hom](initialBuckets, hashHom, equalHom)
	b.idHom = &Hom{kind: kindID, pinned: true, selector: true}
	b.constZero = &Hom{kind: kindConst, constant: sddBuilder.Zero(), pinned: true, selector: true}
	b.constOne = &Hom{kind: kindConst, constant: sddBuilder.One(), pinned: true, selector: false}
	return b
}

// ID returns the pinned identity homomorphism.
func (b *Builder) ID() *Hom { return b.idHom }

// SDDBuilder returns the SDD builder this Builder was constructed with.
func (b *Builder) SDDBuilder() *sdd.Builder { return b.sddBuilder }

// Stats returns unique-table interning statistics.
func (b *Builder) Stats() unique.Stats { return b.table.Stats() }

// Const returns the constant homomorphism always yielding s, normalizing the
// two pinned terminal cases.
func (b *Builder) Const(s *sdd.SDD) (*Hom, error) {
	if s.IsZero() {
		return b.constZero, nil
	}
	if s.IsOne() {
		return b.constOne, nil
	}
	return b.intern(&Hom{kind: kindConst, constant: s, selector: s.IsZero()})
}

// Cons prepends arc (val, inner(successor)) at order position o. Never
// skips, per §4.7.
func (b *Builder) Cons(o int, val values.Values, inner *Hom) (*Hom, error) {
	return b.intern(&Hom{kind: kindCons, variable: o, valuation: val, inner: inner, selector: false})
}

// Comp builds the sequential composition l ∘ r, normalizing away identity
// operands and merging two locals sharing a hierarchical target into one
// local wrapping their inner composition.
func (b *Builder) Comp(l, r *Hom) (*Hom, error) {
	if l.kind == kindID {
		return r, nil
	}
	if r.kind == kindID {
		return l, nil
	}
	if l.kind == kindLocal && r.kind == kindLocal && l.variable == r.variable {
		innerComp, err := b.Comp(l.inner, r.inner)
		if err != nil {
			return nil, err
		}
		return b.Local(l.variable, innerComp)
	}
	return b.intern(&Hom{kind: kindComp, left: l, right: r, selector: l.selector && r.selector})
}

// Sum builds the union of operands' images, flattening nested sums, merging
// locals sharing a hierarchical target into one local wrapping an inner sum,
// and producing a flat sorted, de-duplicated operand set.
func (b *Builder) Sum(hs ...*Hom) (*Hom, error) {
	return b.buildContainer(kindSum, hs)
}

// Inter builds the intersection of operands' images, with the same
// normalization Sum applies.
func (b *Builder) Inter(hs ...*Hom) (*Hom, error) {
	return b.buildContainer(kindInter, hs)
}

func (b *Builder) buildContainer(k kind, hs []*Hom) (*Hom, error) {
	flat := flattenContainer(k, hs)
	flat, err := b.mergeLocals(k, flat)
	if err != nil {
		return nil, err
	}
	flat = dedupSortHoms(flat)
	if len(flat) == 1 {
		return flat[0], nil
	}
	allSelector := true
	for _, h := range flat {
		if !h.selector {
			allSelector = false
			break
		}
	}
	return b.intern(&Hom{kind: k, operands: flat, selector: allSelector})
}

func flattenContainer(k kind, hs []*Hom) []*Hom {
	var out []*Hom
	for _, h := range hs {
		if h.kind == k {
			out = append(out, h.operands...)
			continue
		}
		out = append(out, h)
	}
	return out
}

// mergeLocals collapses every run of local(v, ·) operands sharing the same
// target v into a single local(v, sum-or-inter(inners)); non-local operands
// pass through untouched. The container kind the merged inners are combined
// with matches the caller (buildContainer always calls this before the
// final container is built, so the merge always uses the same algebra as
// the outer container).
func (b *Builder) mergeLocals(k kind, hs []*Hom) ([]*Hom, error) {
	byTarget := make(map[int][]*Hom)
	var order []int
	var rest []*Hom
	for _, h := range hs {
		if h.kind == kindLocal {
			if _, seen := byTarget[h.variable]; !seen {
				order = append(order, h.variable)
			}
			byTarget[h.variable] = append(byTarget[h.variable], h.inner)
			continue
		}
		rest = append(rest, h)
	}
	if len(byTarget) == 0 {
		return rest, nil
	}
	out := make([]*Hom, 0, len(rest)+len(order))
	out = append(out, rest...)
	for _, v := range order {
		inners := byTarget[v]
		var merged *Hom
		var err error
		if len(inners) == 1 {
			merged = inners[0]
		} else {
			merged, err = b.buildContainer(k, inners)
			if err != nil {
				return nil, err
			}
		}
		local, err := b.Local(v, merged)
		if err != nil {
			return nil, err
		}
		out = append(out, local)
	}
	return out, nil
}

// Fixpoint builds the least fixpoint of h. Wrapping the identity, or an
// existing fixpoint, collapses to the inner homomorphism.
func (b *Builder) Fixpoint(h *Hom) (*Hom, error) {
	if h.kind == kindID {
		return h, nil
	}
	if h.kind == kindFixpoint {
		return h, nil
	}
	return b.intern(&Hom{kind: kindFixpoint, inner: h, selector: h.selector})
}

// Local builds the homomorphism that applies inner inside the nested DD at
// hierarchical variable v. Wrapping the identity collapses to the identity:
// local(v, id) never touches anything id itself wouldn't, so there is no
// need to pay for a live node (and, critically, a flat |1|/flat-node input
// must never reach applyLocal's "nested DD only" body, which a live
// local(v,id) would trigger).
func (b *Builder) Local(v int, inner *Hom) (*Hom, error) {
	if inner.kind == kindID {
		return inner, nil
	}
	return b.intern(&Hom{kind: kindLocal, variable: v, inner: inner, selector: inner.selector})
}

// Inductive builds the homomorphism dispatching to a user-supplied
// InductiveBody.
func (b *Builder) Inductive(body InductiveBody) (*Hom, error) {
	return b.intern(&Hom{kind: kindInductive, body: body, selector: body.Selector()})
}

// Function builds the homomorphism applying fn to the valuation at flat
// variable v.
func (b *Builder) Function(v int, fn values.Function) (*Hom, error) {
	return b.intern(&Hom{kind: kindFunction, variable: v, fn: fn, selector: fn.Selector()})
}

// ITE builds the if-then-else p ? t : e. p must be a selector; construction
// fails otherwise. Short-circuits: p = id reduces to t; t = e reduces to t.
func (b *Builder) ITE(p, t, e *Hom) (*Hom, error) {
	if !p.selector {
		return nil, invariantViolation("ite predicate must be a selector")
	}
	if p.kind == kindID {
		return t, nil
	}
	if t == e {
		return t, nil
	}
	return b.intern(&Hom{kind: kindITE, pred: p, then: t, els: e, selector: t.selector && e.selector})
}

// SatFix builds a saturation fixpoint at order position v: semantically
// fixpoint(f ⊎ l ⊎ g... ⊎ id), where l is applied as given (Rewrite passes
// an already wrapped local(v, ·), or id), evaluated by the interleaved loop
// §4.8 describes rather than a naive global fixpoint. Built by Rewrite, but
// exposed for direct construction by advanced callers.
func (b *Builder) SatFix(v int, f *Hom, g []*Hom, l *Hom) (*Hom, error) {
	return b.intern(&Hom{kind: kindSatFix, variable: v, f: f, operands: g, l: l})
}

// SatSum builds the saturation-aware union variant at order position v.
func (b *Builder) SatSum(v int, f *Hom, g []*Hom, l *Hom) (*Hom, error) {
	return b.intern(&Hom{kind: kindSatSum, variable: v, f: f, operands: g, l: l})
}

// SatInter builds the saturation-aware intersection variant at order
// position v.
func (b *Builder) SatInter(v int, f *Hom, g []*Hom, l *Hom) (*Hom, error) {
	return b.intern(&Hom{kind: kindSatInter, variable: v, f: f, operands: g, l: l})
}

// Carrier walks ord's path down to the identifier id and wraps h in nested
// locals as needed, lifting a homomorphism targeting a deep identifier up to
// the order's root. Not a variant of its own, a construction helper.
func Carrier(b *Builder, ord *order.Order, id string, h *Hom) (*Hom, error) {
	path, err := ord.PathToID(id)
	if err != nil {
		return nil, err
	}
	result := h
	for i := len(path) - 1; i > 0; i-- {
		// path[i] is nested one level below path[i-1]; wrap at the
		// enclosing position so h ends up applied inside that nesting.
		var werr error
		result, werr = b.Local(path[i-1], result)
		if werr != nil {
			return nil, werr
		}
	}
	return result, nil
}

func (b *Builder) intern(candidate *Hom) (*Hom, error) {
	candidate.hash = hashHom(candidate)
	canonical, seq, inserted := b.table.Intern(candidate)
	if inserted {
		canonical.seq = seq
		canonical.refcount = 1
		return canonical, nil
	}
	b.Retain(canonical)
	return canonical, nil
}

// Retain increments h's reference count and returns h, for chaining at call
// sites handing out a new owned handle to an existing homomorphism.
func (b *Builder) Retain(h *Hom) *Hom {
	if h == nil || h.pinned {
		return h
	}
	h.refcount++
	return h
}

// Release decrements h's reference count; at zero it erases h from the
// unique table. Releasing a pinned identity/terminal is a no-op.
func (b *Builder) Release(h *Hom) {
	if h == nil || h.pinned {
		return
	}
	h.refcount--
	if h.refcount > 0 {
		return
	}
	b.table.Erase(h)
}

func dedupSortHoms(hs []*Hom) []*Hom {
	seen := make(map[*Hom]bool, len(hs))
	out := make([]*Hom, 0, len(hs))
	for _, h := range hs {
		if !seen[h] {
			seen[h] = true
			out = append(out, h)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].seq < out[j].seq })
	return out
}

func hashHom(h *Hom) uint64 {
	hv := unique.MixHash(1469598103934665603, uint64(h.kind))
	hv = unique.MixHash(hv, uint64(h.variable))
	if h.constant != nil {
		hv = unique.MixHash(hv, h.constant.Seq())
	}
	if h.valuation != nil {
		hv = unique.MixHash(hv, h.valuation.Hash())
	}
	if h.inner != nil {
		hv = unique.MixHash(hv, h.inner.seq)
	}
	if h.left != nil {
		hv = unique.MixHash(hv, h.left.seq)
	}
	if h.right != nil {
		hv = unique.MixHash(hv, h.right.seq)
	}
	if h.pred != nil {
		hv = unique.MixHash(hv, h.pred.seq)
	}
	if h.then != nil {
		hv = unique.MixHash(hv, h.then.seq)
	}
	if h.els != nil {
		hv = unique.MixHash(hv, h.els.seq)
	}
	if h.f != nil {
		hv = unique.MixHash(hv, h.f.seq)
	}
	if h.l != nil {
		hv = unique.MixHash(hv, h.l.seq)
	}
	for _, op := range h.operands {
		hv = unique.MixHash(hv, op.seq)
	}
	return hv
}

func equalHom(a, b *Hom) bool {
	if a.kind != b.kind || a.variable != b.variable {
		return false
	}
	if a.constant != b.constant {
		return false
	}
	if (a.valuation == nil) != (b.valuation == nil) {
		return false
	}
	if a.valuation != nil && !a.valuation.Equal(b.valuation) {
		return false
	}
	if a.fn != b.fn {
		return false
	}
	if a.body != b.body {
		return false
	}
	if a.inner != b.inner || a.left != b.left || a.right != b.right {
		return false
	}
	if a.pred != b.pred || a.then != b.then || a.els != b.els {
		return false
	}
	if a.f != b.f || a.l != b.l {
		return false
	}
	if len(a.operands) != len(b.operands) {
		return false
	}
	for i := range a.operands {
		if a.operands[i] != b.operands[i] {
			return false
		}
	}
	return true
}

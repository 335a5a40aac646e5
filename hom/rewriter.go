package hom

import (
	"sort"

	"github.com/hsdd-project/hsdd/order"
)

// Rewrite turns a naive global fixpoint (or sum/intersection) into a
// saturation schedule: rather than evaluating level by level from the top on
// every iteration, operands that only touch variables strictly below the
// current order position, or strictly inside a nested DD, are folded into
// dedicated sub-fixpoints evaluated once per level. Rewriting is
// semantics-preserving: for any order position o and DD x,
// Apply(rewrite(b, h, o), o, x) == Apply(h, o, x).
func Rewrite(b *Builder, h *Hom, o *order.Node) (*Hom, error) {
	if o == nil {
		return h, nil
	}
	switch h.kind {
	case kindSum:
		return rewriteContainer(b, h, o, kindSum)
	case kindInter:
		return rewriteContainer(b, h, o, kindInter)
	case kindFixpoint:
		return rewriteFixpoint(b, h, o)
	default:
		return h, nil
	}
}

// partition splits a container's operands into F (skip the current
// position, forwardable below), L (locals targeting the current position,
// replaced by their inner homomorphism), and G (everything else, global at
// this level), plus whether id was among the operands.
func partition(operands []*Hom, o *order.Node) (f, lInner, g []*Hom, hasID bool) {
	for _, op := range operands {
		switch {
		case op.kind == kindID:
			hasID = true
		case op.kind == kindLocal && op.variable == o.Position():
			lInner = append(lInner, op.inner)
		case op.Skip(o.Position()):
			f = append(f, op)
		default:
			g = append(g, op)
		}
	}
	return f, lInner, g, hasID
}

func rewriteContainer(b *Builder, h *Hom, o *order.Node, k kind) (*Hom, error) {
	f, lInner, g, hasID := partition(h.operands, o)
	if len(f) == 0 && len(lInner) == 0 {
		// Nothing forwardable or local to fold into a saturation schedule;
		// bail before even considering id, so a container with no F/L
		// material (whether or not it carries id) is returned unchanged
		// rather than losing or gaining an identity term.
		return h, nil
	}
	if hasID {
		f = append(f, b.idHom)
	}

	fh, err := combineOperands(b, k, f)
	if err != nil {
		return nil, err
	}
	fRewritten, err := Rewrite(b, fh, o.Next())
	if err != nil {
		return nil, err
	}

	lh, err := combineOperands(b, k, lInner)
	if err != nil {
		return nil, err
	}
	lRewritten, err := Rewrite(b, lh, o.Nested())
	if err != nil {
		return nil, err
	}
	lWrapped, err := b.Local(o.Position(), lRewritten)
	if err != nil {
		return nil, err
	}

	if k == kindSum {
		return b.SatSum(o.Position(), fRewritten, g, lWrapped)
	}
	return b.SatInter(o.Position(), fRewritten, g, lWrapped)
}

func rewriteFixpoint(b *Builder, h *Hom, o *order.Node) (*Hom, error) {
	body := h.inner
	if body.kind != kindSum {
		return h, nil
	}
	f, lInner, g, hasID := partition(body.operands, o)
	if !hasID {
		// a fixpoint without id is ill-formed for saturation; leave the
		// naive fixpoint in place rather than produce an unsound rewrite.
		return h, nil
	}
	if len(f) == 0 && len(lInner) == 0 {
		return h, nil
	}

	fBody, err := b.Sum(append(append([]*Hom{}, f...), b.idHom)...)
	if err != nil {
		return nil, err
	}
	fFix, err := b.Fixpoint(fBody)
	if err != nil {
		return nil, err
	}
	fRewritten, err := Rewrite(b, fFix, o.Next())
	if err != nil {
		return nil, err
	}

	lBody, err := b.Sum(append(append([]*Hom{}, lInner...), b.idHom)...)
	if err != nil {
		return nil, err
	}
	lFix, err := b.Fixpoint(lBody)
	if err != nil {
		return nil, err
	}
	lRewritten, err := Rewrite(b, lFix, o.Nested())
	if err != nil {
		return nil, err
	}
	lWrapped, err := b.Local(o.Position(), lRewritten)
	if err != nil {
		return nil, err
	}

	gSorted := make([]*Hom, len(g))
	copy(gSorted, g)
	sort.SliceStable(gSorted, func(i, j int) bool {
		if gSorted[i].selector != gSorted[j].selector {
			return gSorted[i].selector
		}
		return gSorted[i].seq < gSorted[j].seq
	})

	return b.SatFix(o.Position(), fRewritten, gSorted, lWrapped)
}

func combineOperands(b *Builder, k kind, hs []*Hom) (*Hom, error) {
	if len(hs) == 0 {
		return b.idHom, nil
	}
	if len(hs) == 1 {
		return hs[0], nil
	}
	if k == kindSum {
		return b.Sum(hs...)
	}
	return b.Inter(hs...)
}

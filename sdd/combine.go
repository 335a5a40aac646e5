package sdd

import "sort"

// genArc is a valuation/successor pair generic over the valuation type: a
// values.Values for flat nodes, a *SDD for hierarchical nodes. Union,
// Intersection and Difference share one combination algorithm parameterized
// over this type so the "partial overlap" splitting logic is written once.
type genArc[V any] struct {
	Val  V
	Succ *SDD
}

// valOps supplies the valuation-algebra operations the combination
// algorithm needs: flat nodes wire these to values.Values methods,
// hierarchical nodes wire them to recursive sdd Union/Intersection/
// Difference calls over the nested DDs.
type valOps[V any] struct {
	Empty     func(v V) bool
	Sum       func(a, b V) (V, error)
	Intersect func(a, b V) (V, error)
	Diff      func(a, b V) (V, error)
}

// squareUnion merges arcs that share a successor, unioning their
// valuations, and returns the result in deterministic ascending-successor-
// seq order. This is the "reverse-alpha builder keyed by successor"
// described for DD combination.
func squareUnion[V any](arcs []genArc[V], ops valOps[V]) ([]genArc[V], error) {
	merged := make(map[uint64]*genArc[V], len(arcs))
	seqs := make([]uint64, 0, len(arcs))
	for _, a := range arcs {
		if ops.Empty(a.Val) {
			continue
		}
		if existing, ok := merged[a.Succ.seq]; ok {
			v, err := ops.Sum(existing.Val, a.Val)
			if err != nil {
				return nil, err
			}
			existing.Val = v
			continue
		}
		cp := a
		merged[a.Succ.seq] = &cp
		seqs = append(seqs, a.Succ.seq)
	}
	sort.Slice(seqs, func(i, j int) bool { return seqs[i] < seqs[j] })
	out := make([]genArc[V], 0, len(seqs))
	for _, seq := range seqs {
		out = append(out, *merged[seq])
	}
	return out, nil
}

// combineUnion implements the union of two alphas: arcs from different
// operands may have partially-overlapping valuations, so every pair is
// split into its intersection (recursing on the union of successors) and
// residuals, which are deferred and re-inserted once the double loop
// finishes; square-union then merges arcs landing on the same successor.
func combineUnion[V any](arcsA, arcsB []genArc[V], ops valOps[V], recurse func(a, b *SDD) (*SDD, error), isZero func(*SDD) bool) ([]genArc[V], error) {
	usedA := make([]V, len(arcsA))
	usedB := make([]V, len(arcsB))
	for i, a := range arcsA {
		usedA[i] = a.Val
	}
	for j, b := range arcsB {
		usedB[j] = b.Val
	}

	var pending []genArc[V]
	for i := range arcsA {
		for j := range arcsB {
			overlap, err := ops.Intersect(usedA[i], usedB[j])
			if err != nil {
				return nil, err
			}
			if ops.Empty(overlap) {
				continue
			}
			child, err := recurse(arcsA[i].Succ, arcsB[j].Succ)
			if err != nil {
				return nil, err
			}
			if !isZero(child) {
				pending = append(pending, genArc[V]{Val: overlap, Succ: child})
			}
			usedA[i], err = ops.Diff(usedA[i], overlap)
			if err != nil {
				return nil, err
			}
			usedB[j], err = ops.Diff(usedB[j], overlap)
			if err != nil {
				return nil, err
			}
		}
	}
	for i, remaining := range usedA {
		if !ops.Empty(remaining) {
			pending = append(pending, genArc[V]{Val: remaining, Succ: arcsA[i].Succ})
		}
	}
	for j, remaining := range usedB {
		if !ops.Empty(remaining) {
			pending = append(pending, genArc[V]{Val: remaining, Succ: arcsB[j].Succ})
		}
	}
	return squareUnion(pending, ops)
}

// combineIntersection implements the intersection of two alphas: every
// pair of arcs contributes its overlapping valuation onto the recursive
// intersection of successors, when both are non-empty.
func combineIntersection[V any](arcsA, arcsB []genArc[V], ops valOps[V], recurse func(a, b *SDD) (*SDD, error), isZero func(*SDD) bool) ([]genArc[V], error) {
	var pending []genArc[V]
	for i := range arcsA {
		for j := range arcsB {
			overlap, err := ops.Intersect(arcsA[i].Val, arcsB[j].Val)
			if err != nil {
				return nil, err
			}
			if ops.Empty(overlap) {
				continue
			}
			child, err := recurse(arcsA[i].Succ, arcsB[j].Succ)
			if err != nil {
				return nil, err
			}
			if !isZero(child) {
				pending = append(pending, genArc[V]{Val: overlap, Succ: child})
			}
		}
	}
	return squareUnion(pending, ops)
}

// combineDifference implements lhs minus rhs: first the part of each lhs
// arc's valuation not covered by any rhs valuation survives unchanged, then
// every overlapping (lhs, rhs) pair contributes the recursive difference of
// their successors over the overlap.
func combineDifference[V any](arcsA, arcsB []genArc[V], ops valOps[V], recurse func(a, b *SDD) (*SDD, error), isZero func(*SDD) bool) ([]genArc[V], error) {
	if len(arcsB) == 0 {
		out := make([]genArc[V], len(arcsA))
		copy(out, arcsA)
		return out, nil
	}

	r := arcsB[0].Val
	var err error
	for _, b := range arcsB[1:] {
		r, err = ops.Sum(r, b.Val)
		if err != nil {
			return nil, err
		}
	}

	var pending []genArc[V]
	for _, a := range arcsA {
		residual, err := ops.Diff(a.Val, r)
		if err != nil {
			return nil, err
		}
		if !ops.Empty(residual) {
			pending = append(pending, genArc[V]{Val: residual, Succ: a.Succ})
		}
	}
	for i := range arcsA {
		for j := range arcsB {
			overlap, err := ops.Intersect(arcsA[i].Val, arcsB[j].Val)
			if err != nil {
				return nil, err
			}
			if ops.Empty(overlap) {
				continue
			}
			child, err := recurse(arcsA[i].Succ, arcsB[j].Succ)
			if err != nil {
				return nil, err
			}
			if !isZero(child) {
				pending = append(pending, genArc[V]{Val: overlap, Succ: child})
			}
		}
	}
	return squareUnion(pending, ops)
}

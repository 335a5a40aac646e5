package sdd

import "math/big"

// Counter memoizes the cardinality of SDDs across calls. Go has no
// arbitrary-precision integer type in the standard numeric set the way most
// systems languages do, and none of the example pack's dependencies supply
// one either, so this is the one deliberate standard-library leaf in the
// engine: math/big.Int is the only available arbitrary-precision type, and
// pulling in a third-party bignum library to replace a complete standard
// one would be churn for no benefit.
type Counter struct {
	memo map[*SDD]*big.Int
}

// NewCounter creates an empty Counter. A Counter is unbounded (no LRU
// eviction): it is keyed by canonical node identity, and the unique table
// already bounds how many distinct nodes can exist.
func NewCounter() *Counter {
	return &Counter{memo: make(map[*SDD]*big.Int)}
}

// Count returns the number of tuples represented by n, memoizing per node.
// |0| contributes 0, |1| contributes 1; a flat node sums |V_i| * count(s_i)
// over its arcs, a hierarchical node sums count(V_i) * count(s_i).
func (c *Counter) Count(n *SDD) *big.Int {
	if n.IsZero() {
		return big.NewInt(0)
	}
	if n.IsOne() {
		return big.NewInt(1)
	}
	if v, ok := c.memo[n]; ok {
		return v
	}

	total := new(big.Int)
	for _, a := range n.arcs {
		var valCount *big.Int
		if n.IsFlat() {
			valCount = big.NewInt(int64(a.Values.Size()))
		} else {
			valCount = c.Count(a.Nested)
		}
		succCount := c.Count(a.Succ)
		term := new(big.Int).Mul(valCount, succCount)
		total.Add(total, term)
	}
	c.memo[n] = total
	return total
}

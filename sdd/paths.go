package sdd

import (
	"iter"

	"github.com/hsdd-project/hsdd/values"
)

// PathSeq is a lazy, pull-style sequence of paths from a DD's root to |1|,
// one []Values per call to the iterator's yield. Consuming it with a
// `for path := range seq` loop that breaks early stops the underlying walk
// with no further work performed, the Go analogue of the source's
// cooperative producer being dropped by its consumer.
type PathSeq = iter.Seq[[]values.Values]

// AllPaths enumerates every path from root to |1| as a sequence of value
// sets, one per level. For a hierarchical arc, the nested DD's own paths
// are enumerated first and spliced into the prefix before the walk resumes
// at the arc's successor, so a single yielded path covers the whole nested
// structure flattened into the order's global position sequence. Order
// among paths is unspecified but finite.
func AllPaths(root *SDD) PathSeq {
	return func(yield func([]values.Values) bool) {
		prefix := make([]values.Values, 0, 8)
		var walk func(n *SDD) bool
		walk = func(n *SDD) bool {
			if n.IsOne() {
				path := make([]values.Values, len(prefix))
				copy(path, prefix)
				return yield(path)
			}
			if n.IsZero() {
				return true
			}
			for _, a := range n.arcs {
				if n.IsFlat() {
					prefix = append(prefix, a.Values)
					cont := walk(a.Succ)
					prefix = prefix[:len(prefix)-1]
					if !cont {
						return false
					}
					continue
				}
				stopped := false
				for nestedPath := range AllPaths(a.Nested) {
					prefix = append(prefix, nestedPath...)
					cont := walk(a.Succ)
					prefix = prefix[:len(prefix)-len(nestedPath)]
					if !cont {
						stopped = true
						break
					}
				}
				if stopped {
					return false
				}
			}
			return true
		}
		walk(root)
	}
}

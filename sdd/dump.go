package sdd

import (
	"fmt"
	"io"

	"github.com/hsdd-project/hsdd/pkg/collections"
)

// AllNodes performs a breadth-first traversal of every node reachable from
// root (including root itself, excluding the terminals), visiting each
// exactly once. Uses the generic Queue for the frontier and a fresh
// VersionedBitset per call, keyed by intern sequence number, for the
// visited set.
func AllNodes(root *SDD) []*SDD {
	if root == nil || root.IsTerminal() {
		return nil
	}
	seen := collections.NewVersionedBitset(64)
	queue := collections.NewQueue[*SDD](16)
	queue.Enqueue(root)
	seen.Set(int(root.seq))

	var out []*SDD
	for {
		n, ok := queue.Dequeue()
		if !ok {
			break
		}
		out = append(out, n)
		for _, a := range n.arcs {
			if !a.Succ.IsTerminal() && !seen.Test(int(a.Succ.seq)) {
				seen.Set(int(a.Succ.seq))
				queue.Enqueue(a.Succ)
			}
			if a.Nested != nil && !a.Nested.IsTerminal() && !seen.Test(int(a.Nested.seq)) {
				seen.Set(int(a.Nested.seq))
				queue.Enqueue(a.Nested)
			}
		}
	}
	return out
}

// DumpDot writes a minimal best-effort Graphviz dot rendering of the graph
// reachable from root: one node per intern sequence number, one edge per
// arc labeled with its valuation's size (flat) or "nested#" plus the nested
// DD's sequence number (hierarchical; the nested DD's own nodes are drawn as
// separate nodes, with no edge from the arc to them). Not a
// pretty-printer: full visual layout is an external collaborator's job.
func DumpDot(w io.Writer, root *SDD) error {
	fmt.Fprintln(w, "digraph sdd {")
	defer fmt.Fprintln(w, "}")

	if root == nil {
		return nil
	}
	if root.IsZero() {
		fmt.Fprintln(w, `  "0" [shape=box,label="0"];`)
		return nil
	}
	if root.IsOne() {
		fmt.Fprintln(w, `  "1" [shape=box,label="1"];`)
		return nil
	}

	nodes := AllNodes(root)
	fmt.Fprintln(w, `  "0" [shape=box,label="0"];`)
	fmt.Fprintln(w, `  "1" [shape=box,label="1"];`)
	for _, n := range nodes {
		shape := "ellipse"
		if n.IsHier() {
			shape = "doubleoctagon"
		}
		if _, err := fmt.Fprintf(w, "  \"%d\" [shape=%s,label=\"v%d\"];\n", n.seq, shape, n.variable); err != nil {
			return err
		}
		for _, a := range n.arcs {
			succLabel := terminalOrSeq(a.Succ)
			if n.IsFlat() {
				fmt.Fprintf(w, "  \"%d\" -> \"%s\" [label=\"%d elems\"];\n", n.seq, succLabel, a.Values.Size())
			} else {
				fmt.Fprintf(w, "  \"%d\" -> \"%s\" [label=\"nested#%s\"];\n", n.seq, succLabel, terminalOrSeq(a.Nested))
			}
		}
	}
	return nil
}

func terminalOrSeq(n *SDD) string {
	if n.IsZero() {
		return "0"
	}
	if n.IsOne() {
		return "1"
	}
	return fmt.Sprintf("%d", n.seq)
}

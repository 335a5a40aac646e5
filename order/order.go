// Package order implements the variable order: an ordered tree of
// identifiers, each carrying a dense preorder position, a possibly-empty
// nested sub-order and a possibly-empty next sibling.
//
// Positions are assigned once at construction time and never change
// afterwards; this mirrors the teacher's practice of front-loading
// validation into a single Build/Load call (pkg/config.Load) rather than
// mutating state incrementally.
package order

import (
	"fmt"

	hsdderrors "github.com/hsdd-project/hsdd/pkg/errors"
)

// Node is one entry of the order tree. The zero value is not a valid Node;
// construct orders via Build.
type Node struct {
	id         string
	artificial bool
	position   int
	nested     *Node
	next       *Node
	parent     *Node // nil at the top level
}

// ID returns the node's user identifier, or a synthetic token of the form
// "$artificial#<position>" for pure hierarchy wrappers that carry no user
// identifier.
func (n *Node) ID() string {
	if n.artificial {
		return fmt.Sprintf("$artificial#%d", n.position)
	}
	return n.id
}

// Position returns the node's dense preorder rank.
func (n *Node) Position() int { return n.position }

// Artificial reports whether this node has no user identifier.
func (n *Node) Artificial() bool { return n.artificial }

// Nested returns the node's nested sub-order root, or nil if the node is flat.
func (n *Node) Nested() *Node { return n.nested }

// Next returns the node's next sibling, or nil if it is the last in its chain.
func (n *Node) Next() *Node { return n.next }

// Hierarchical reports whether this node has a nested sub-order.
func (n *Node) Hierarchical() bool { return n.nested != nil }

// Order is an ordered tree over identifiers, the schema shared by every SDD
// built against it.
type Order struct {
	root *Node
	byID map[string]*Node
	size int
}

// Root returns the first node at the top level of the order, or nil if the
// order is empty.
func (o *Order) Root() *Node { return o.root }

// Len returns the total number of nodes (positions) in the order.
func (o *Order) Len() int { return o.size }

// Empty reports whether the order has no nodes.
func (o *Order) Empty() bool { return o.size == 0 }

// Lookup returns the node carrying the given user identifier.
func (o *Order) Lookup(id string) (*Node, bool) {
	n, ok := o.byID[id]
	return n, ok
}

// MustLookup is Lookup but panics on a missing identifier; reserved for
// cases where the caller has already validated the identifier exists (e.g.
// closure construction over the order's own node set).
func (o *Order) MustLookup(id string) *Node {
	n, ok := o.byID[id]
	if !ok {
		panic(fmt.Sprintf("order: unknown identifier %q", id))
	}
	return n
}

// Path returns the positions from the order's top level down to n,
// inclusive, following parent links. The first element is the top-level
// ancestor's position, the last is n.Position().
func (o *Order) Path(n *Node) []int {
	var rev []int
	for cur := n; cur != nil; cur = cur.parent {
		rev = append(rev, cur.position)
	}
	path := make([]int, len(rev))
	for i, p := range rev {
		path[len(rev)-1-i] = p
	}
	return path
}

// PathToID is Path but resolves the identifier first; it is an invariant
// violation to ask for the path of an identifier the order does not contain.
func (o *Order) PathToID(id string) ([]int, error) {
	n, ok := o.byID[id]
	if !ok {
		return nil, hsdderrors.Wrap(hsdderrors.CodeInvariantViolation,
			fmt.Sprintf("unknown identifier %q", id), nil)
	}
	return o.Path(n), nil
}

// Decl is the declarative description used to Build an Order: an identifier
// (empty means artificial) and an optional nested sub-order. A top-level
// order and every nested sub-order are both described as a []Decl, the
// chain of siblings at that level.
type Decl struct {
	ID     string
	Nested []Decl
}

// Build constructs an Order from a slice of sibling declarations, assigning
// positions so that they strictly decrease while descending into a nested
// sub-order or along a next chain. Positions are assigned by a single
// preorder counter that starts at len-1 and counts down, visiting a node,
// then its nested sub-order, then its next sibling; since preorder always
// visits a node before any of its descendants, every descendant necessarily
// receives a strictly smaller position.
func Build(decls []Decl) (*Order, error) {
	total := countNodes(decls)
	o := &Order{byID: make(map[string]*Node, total)}
	counter := total
	root, err := buildChain(decls, nil, o, &counter)
	if err != nil {
		return nil, err
	}
	o.root = root
	o.size = total
	return o, nil
}

func countNodes(decls []Decl) int {
	n := 0
	for _, d := range decls {
		n++
		n += countNodes(d.Nested)
	}
	return n
}

func buildChain(decls []Decl, parent *Node, o *Order, counter *int) (*Node, error) {
	if len(decls) == 0 {
		return nil, nil
	}
	var head, prev *Node
	for _, d := range decls {
		*counter--
		n := &Node{
			id:         d.ID,
			artificial: d.ID == "",
			position:   *counter,
			parent:     parent,
		}
		if !n.artificial {
			if _, dup := o.byID[n.id]; dup {
				return nil, hsdderrors.Wrap(hsdderrors.CodeInvariantViolation,
					fmt.Sprintf("duplicate identifier %q in order", n.id), nil)
			}
			o.byID[n.id] = n
		}
		nested, err := buildChain(d.Nested, n, o, counter)
		if err != nil {
			return nil, err
		}
		n.nested = nested
		if prev == nil {
			head = n
		} else {
			prev.next = n
		}
		prev = n
	}
	return head, nil
}

package parser

import (
	tree_sitter "github.com/tree-sitter/go-tree-sitter"

	"github.com/scalpel-dev/scalpel/internal/types"
)

// Visit is called for each node during a depth-first walk. Returning false
// skips the node's subtree; traversal continues with its siblings.
type Visit func(node *tree_sitter.Node) bool

// Walk performs a depth-first pre-order traversal rooted at node.
func Walk(node *tree_sitter.Node, visit Visit) {
	WalkWithDepth(node, func(n *tree_sitter.Node, _ int) bool {
		return visit(n)
	}, nil)
}

// DepthVisit is a Visit that also receives the node's depth below the root.
type DepthVisit func(node *tree_sitter.Node, depth int) bool

// WalkWithDepth performs a depth-first pre-order traversal using the
// tree-sitter cursor, invoking visit on descent and onAscent (if non-nil)
// each time the cursor climbs back out of a node. A false visit result
// skips the node's children; the walk proceeds with its siblings.
func WalkWithDepth(node *tree_sitter.Node, visit DepthVisit, onAscent func(node *tree_sitter.Node, depth int)) {
	cursor := node.Walk()
	defer cursor.Close()

	depth := 0
	for {
		if visit(cursor.Node(), depth) && cursor.GotoFirstChild() {
			depth++
			continue
		}
		for {
			if onAscent != nil {
				onAscent(cursor.Node(), depth)
			}
			if cursor.GotoNextSibling() {
				break
			}
			if !cursor.GotoParent() {
				return
			}
			depth--
		}
	}
}

// ToTSPoint converts a wire point (zero-based line and column) into
// tree-sitter's row/column form.
func ToTSPoint(p types.Point) tree_sitter.Point {
	return tree_sitter.Point{Row: uint(p.Line), Column: uint(p.Column)}
}

// FromTSPoint converts a tree-sitter point back to the wire form.
func FromTSPoint(p tree_sitter.Point) types.Point {
	return types.Point{Line: uint32(p.Row), Column: uint32(p.Column)}
}

// NodeRange returns the node's span as a wire range.
func NodeRange(node *tree_sitter.Node) types.Range {
	return types.Range{
		Start: FromTSPoint(node.StartPosition()),
		End:   FromTSPoint(node.EndPosition()),
	}
}

// childForPoint returns the first child whose span extends past the point,
// or nil when every child ends at or before it.
func childForPoint(node *tree_sitter.Node, point tree_sitter.Point) *tree_sitter.Node {
	for i := uint(0); i < node.ChildCount(); i++ {
		child := node.Child(i)
		end := child.EndPosition()
		if point.Row < end.Row || (point.Row == end.Row && point.Column < end.Column) {
			return child
		}
	}
	return nil
}

// DescendToPoint walks from root to the smallest node whose span still
// extends past the point, recording each node along the path.
func DescendToPoint(root *tree_sitter.Node, point tree_sitter.Point) []*tree_sitter.Node {
	path := []*tree_sitter.Node{root}
	node := root
	for {
		child := childForPoint(node, point)
		if child == nil {
			return path
		}
		path = append(path, child)
		node = child
	}
}

// NodeAtPoint returns the smallest node covering the point.
func NodeAtPoint(root *tree_sitter.Node, point tree_sitter.Point) *tree_sitter.Node {
	path := DescendToPoint(root, point)
	return path[len(path)-1]
}

// DeepestOfKind returns the innermost node along the path to point for
// which match returns true, or nil when none does.
func DeepestOfKind(root *tree_sitter.Node, point tree_sitter.Point, match func(kind string) bool) *tree_sitter.Node {
	path := DescendToPoint(root, point)
	for i := len(path) - 1; i >= 0; i-- {
		if match(path[i].Kind()) {
			return path[i]
		}
	}
	return nil
}

// EnclosingOfKind climbs from node to the nearest ancestor (or node itself)
// whose kind matches.
func EnclosingOfKind(node *tree_sitter.Node, match func(kind string) bool) *tree_sitter.Node {
	for n := node; n != nil; n = n.Parent() {
		if match(n.Kind()) {
			return n
		}
	}
	return nil
}

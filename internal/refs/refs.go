// Package refs builds the flat, scope-unaware reference model the slicer
// runs on: every name occurrence, its enclosing statement, and a statement
// index answering "which statements touch this name".
package refs

import (
	"strings"

	tree_sitter "github.com/tree-sitter/go-tree-sitter"

	"github.com/scalpel-dev/scalpel/internal/grammar"
	"github.com/scalpel-dev/scalpel/internal/parser"
	"github.com/scalpel-dev/scalpel/internal/types"
)

// NameRef is one occurrence of a possibly dotted name. Components holds the
// identifier fragments in source order, so `self.total.count` carries
// ["self", "total", "count"].
type NameRef struct {
	Node       *tree_sitter.Node
	Components []string
}

// NewNameRef builds the NameRef for a name node.
func NewNameRef(node *tree_sitter.Node, content []byte, cfg *grammar.Config) NameRef {
	return NameRef{Node: node, Components: componentsOf(node, content, cfg)}
}

// Key renders the dotted form of the name.
func (r NameRef) Key() string {
	return strings.Join(r.Components, ".")
}

// Start returns the occurrence position.
func (r NameRef) Start() types.Point {
	return parser.FromTSPoint(r.Node.StartPosition())
}

// Affects reports whether a write through r could change the value read
// through other. With no type information this is a component-prefix test
// in both directions: `a.b` affects `a.b.c` and vice versa.
func (r NameRef) Affects(other NameRef) bool {
	short, long := r.Components, other.Components
	if len(short) > len(long) {
		short, long = long, short
	}
	for i, c := range short {
		if long[i] != c {
			return false
		}
	}
	return len(short) > 0
}

// componentsOf collects the identifier fragments under a name node in
// source order.
func componentsOf(node *tree_sitter.Node, content []byte, cfg *grammar.Config) []string {
	var out []string
	parser.Walk(node, func(n *tree_sitter.Node) bool {
		if cfg.IsIdentifier(n.Kind()) {
			out = append(out, string(content[n.StartByte():n.EndByte()]))
		}
		return true
	})
	return out
}

// outermostName climbs from a node to the widest enclosing name chain, so
// landing on the `count` of `self.total.count` yields the whole chain.
func outermostName(node *tree_sitter.Node, cfg *grammar.Config) *tree_sitter.Node {
	if !cfg.IsName(node.Kind()) && !cfg.IsIdentifier(node.Kind()) {
		return nil
	}
	top := node
	for top.Parent() != nil && cfg.IsName(top.Parent().Kind()) {
		top = top.Parent()
	}
	return top
}

// Statement is one statement-classified node with the names it touches.
// Names holds every occurrence (reads and writes, undistinguished); Defs
// additionally holds the occurrences on the binding side of an assignment,
// declaration, or loop header.
type Statement struct {
	Node  *tree_sitter.Node
	Range types.Range
	Names []NameRef
	Defs  []NameRef
}

// Index is the reference model for one slice scope, statements in source
// order.
type Index struct {
	cfg        *grammar.Config
	content    []byte
	Scope      *tree_sitter.Node
	Statements []*Statement

	byName map[string][]*Statement
	byNode map[uintptr]*Statement
}

// Build walks scope and records every statement and the names it
// references and defines. Names are matched by text across the whole
// scope, never by binding, which deliberately over-approximates.
func Build(scope *tree_sitter.Node, content []byte, cfg *grammar.Config) *Index {
	ix := &Index{
		cfg:     cfg,
		content: content,
		Scope:   scope,
		byName:  make(map[string][]*Statement),
		byNode:  make(map[uintptr]*Statement),
	}

	parser.Walk(scope, func(n *tree_sitter.Node) bool {
		if cfg.IsStatement(n.Kind()) && ix.byNode[n.Id()] == nil {
			stmt := &Statement{Node: n, Range: parser.NodeRange(n)}
			ix.byNode[n.Id()] = stmt
			ix.Statements = append(ix.Statements, stmt)
		}
		if top := outermostName(n, cfg); top != nil && top.Id() == n.Id() {
			ref := NameRef{Node: n, Components: componentsOf(n, content, cfg)}
			if stmt := ix.enclosingStatement(n); stmt != nil {
				stmt.Names = append(stmt.Names, ref)
				ix.byName[ref.Key()] = append(ix.byName[ref.Key()], stmt)
			}
			// Children of a name chain are fragments, not occurrences.
			return false
		}
		return true
	})

	for _, stmt := range ix.Statements {
		ix.collectDefs(stmt)
	}
	return ix
}

// enclosingStatement returns the innermost registered statement containing
// the node, or nil for names outside any statement (e.g. a function name).
func (ix *Index) enclosingStatement(node *tree_sitter.Node) *Statement {
	for n := node.Parent(); n != nil; n = n.Parent() {
		if stmt := ix.byNode[n.Id()]; stmt != nil {
			return stmt
		}
	}
	return nil
}

// collectDefs finds the binding sides of the grammar's propagating forms
// inside the statement, without descending into nested statements (those
// own their bindings).
func (ix *Index) collectDefs(stmt *Statement) {
	parser.Walk(stmt.Node, func(n *tree_sitter.Node) bool {
		if n.Id() != stmt.Node.Id() && ix.byNode[n.Id()] != nil {
			return false
		}
		for _, p := range ix.cfg.Propagating {
			if n.Kind() != p.Kind {
				continue
			}
			defSide := n.ChildByFieldName(p.DefsField)
			if defSide == nil {
				continue
			}
			parser.Walk(defSide, func(d *tree_sitter.Node) bool {
				if top := outermostName(d, ix.cfg); top != nil && top.Id() == d.Id() {
					stmt.Defs = append(stmt.Defs, NameRef{
						Node:       d,
						Components: componentsOf(d, ix.content, ix.cfg),
					})
					return false
				}
				return true
			})
		}
		return true
	})
}

// StatementFor returns the registered statement for a node, or nil.
func (ix *Index) StatementFor(node *tree_sitter.Node) *Statement {
	if node == nil {
		return nil
	}
	return ix.byNode[node.Id()]
}

// Referencing returns, in source order, every statement with at least one
// name occurrence affecting the given name.
func (ix *Index) Referencing(name NameRef) []*Statement {
	var out []*Statement
	for _, stmt := range ix.Statements {
		for _, ref := range stmt.Names {
			if ref.Affects(name) {
				out = append(out, stmt)
				break
			}
		}
	}
	return out
}

// Seed picks the slicing seed for a cursor position: backward slicing seeds
// on the last name occurrence at or before the point, forward slicing on
// the first at or after it. The asymmetry matches interactive use, where
// the cursor usually rests on or just past the interesting reference.
func (ix *Index) Seed(point types.Point, dir types.Direction) (*Statement, *NameRef) {
	var best *NameRef
	var bestStmt *Statement
	for _, stmt := range ix.Statements {
		for i := range stmt.Names {
			ref := &stmt.Names[i]
			at := ref.Start()
			if dir == types.Backward {
				if at.BeforeOrEqual(point) && (best == nil || best.Start().Before(at)) {
					best, bestStmt = ref, stmt
				}
			} else {
				if point.BeforeOrEqual(at) && (best == nil || at.Before(best.Start())) {
					best, bestStmt = ref, stmt
				}
			}
		}
	}
	return bestStmt, best
}

// Package slicer computes directional program slices over the reference
// model: a fixpoint over the statement set reachable from the seed name,
// with everything outside the fixpoint returned as ranges to remove.
package slicer

import (
	tree_sitter "github.com/tree-sitter/go-tree-sitter"

	"github.com/scalpel-dev/scalpel/internal/debug"
	scerrors "github.com/scalpel-dev/scalpel/internal/errors"
	"github.com/scalpel-dev/scalpel/internal/grammar"
	"github.com/scalpel-dev/scalpel/internal/parser"
	"github.com/scalpel-dev/scalpel/internal/refs"
	"github.com/scalpel-dev/scalpel/internal/textedit"
	"github.com/scalpel-dev/scalpel/internal/types"
)

// Slice returns the source ranges a directional slice at point would
// remove. Slicing is confined to the innermost function-like scope around
// the cursor; with no enclosing scope the whole file is sliced.
func Slice(root *tree_sitter.Node, content []byte, cfg *grammar.Config, point types.Point, dir types.Direction) ([]types.Range, error) {
	at := parser.NodeAtPoint(root, parser.ToTSPoint(point))
	scope := parser.EnclosingOfKind(at, cfg.IsSliceScope)
	if scope == nil {
		scope = root
	}

	ix := refs.Build(scope, content, cfg)
	seedStmt, seedName := ix.Seed(point, dir)
	if seedStmt == nil {
		// No names anywhere near the cursor. Degrade to keeping just the
		// statement under it, if there is one.
		seedStmt = ix.StatementFor(parser.EnclosingOfKind(at, cfg.IsStatement))
		if seedStmt == nil {
			return nil, &scerrors.SeedNotFoundError{Point: point}
		}
	}
	if seedName != nil {
		debug.LogSlice("seed %q at %s, %s", seedName.Key(), seedName.Start(), dir)
	}

	kept := keptStatements(ix, seedStmt, seedName, dir)
	removed := removedStatements(ix, kept)
	return textedit.MergeRanges(coalesce(removed)), nil
}

// keptStatements runs the fixpoint: starting from the seed statement and
// seed name, statements referencing a frontier name on the eligible side of
// the seed join the slice and contribute all of their names in turn. The
// directional filter applies at every step, so a statement reached through
// chaining still cannot enter from the wrong side.
func keptStatements(ix *refs.Index, seedStmt *refs.Statement, seedName *refs.NameRef, dir types.Direction) map[*refs.Statement]bool {
	kept := map[*refs.Statement]bool{seedStmt: true}
	if seedName == nil {
		return kept
	}

	eligible := func(stmt *refs.Statement) bool {
		if dir == types.Backward {
			return stmt.Range.Start.BeforeOrEqual(seedStmt.Range.Start)
		}
		return seedStmt.Range.Start.BeforeOrEqual(stmt.Range.Start)
	}

	frontier := []refs.NameRef{*seedName}
	seenName := map[string]bool{seedName.Key(): true}
	expanded := map[*refs.Statement]bool{}
	for len(frontier) > 0 {
		name := frontier[0]
		frontier = frontier[1:]
		for _, stmt := range ix.Referencing(name) {
			if !eligible(stmt) || expanded[stmt] {
				continue
			}
			expanded[stmt] = true
			kept[stmt] = true
			for _, group := range [][]refs.NameRef{stmt.Names, stmt.Defs} {
				for _, ref := range group {
					if !seenName[ref.Key()] {
						seenName[ref.Key()] = true
						frontier = append(frontier, ref)
					}
				}
			}
		}
	}
	return kept
}

// removedStatements returns, in source order, the outermost removable
// statements: not kept, containing no kept statement, and not already
// covered by a removed ancestor.
func removedStatements(ix *refs.Index, kept map[*refs.Statement]bool) []*tree_sitter.Node {
	protected := map[uintptr]bool{}
	for stmt := range kept {
		for n := stmt.Node; n != nil; n = n.Parent() {
			protected[n.Id()] = true
		}
	}

	removedIDs := map[uintptr]bool{}
	var removed []*tree_sitter.Node
	for _, stmt := range ix.Statements {
		if kept[stmt] || protected[stmt.Node.Id()] {
			continue
		}
		covered := false
		for n := stmt.Node.Parent(); n != nil; n = n.Parent() {
			if removedIDs[n.Id()] {
				covered = true
				break
			}
		}
		if covered {
			continue
		}
		removedIDs[stmt.Node.Id()] = true
		removed = append(removed, stmt.Node)
	}
	return removed
}

// coalesce merges the spans of removed nodes that are adjacent in the tree,
// so a run of consecutive siblings deletes as one range. Adjacency follows
// the next sibling chain, climbing to an ancestor's sibling when a node is
// the last child.
func coalesce(nodes []*tree_sitter.Node) []types.Range {
	var ranges []types.Range
	for i := 0; i < len(nodes); i++ {
		start := nodes[i].StartPosition()
		end := nodes[i]
		for i+1 < len(nodes) {
			next := astSuccessor(end)
			if next == nil || next.Id() != nodes[i+1].Id() {
				break
			}
			end = next
			i++
		}
		ranges = append(ranges, types.Range{
			Start: parser.FromTSPoint(start),
			End:   parser.FromTSPoint(end.EndPosition()),
		})
	}
	return ranges
}

func astSuccessor(node *tree_sitter.Node) *tree_sitter.Node {
	for n := node; n != nil; n = n.Parent() {
		if sib := n.NextSibling(); sib != nil {
			return sib
		}
	}
	return nil
}

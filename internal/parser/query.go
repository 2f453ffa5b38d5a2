package parser

import (
	tree_sitter "github.com/tree-sitter/go-tree-sitter"
)

// CaptureMaps runs a query over node and returns one capture-name to node
// map per match, in match order. Returned nodes stay valid as long as the
// tree they came from.
func CaptureMaps(query *tree_sitter.Query, node *tree_sitter.Node, content []byte) []map[string]*tree_sitter.Node {
	qc := tree_sitter.NewQueryCursor()
	defer qc.Close()

	names := query.CaptureNames()
	matches := qc.Matches(query, node, content)

	var out []map[string]*tree_sitter.Node
	for {
		match := matches.Next()
		if match == nil {
			break
		}
		caps := make(map[string]*tree_sitter.Node, len(match.Captures))
		for _, c := range match.Captures {
			n := c.Node
			caps[names[c.Index]] = &n
		}
		out = append(out, caps)
	}
	return out
}

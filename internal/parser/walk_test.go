package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	tree_sitter "github.com/tree-sitter/go-tree-sitter"

	"github.com/scalpel-dev/scalpel/internal/grammar"
	"github.com/scalpel-dev/scalpel/internal/lang"
	"github.com/scalpel-dev/scalpel/internal/types"
)

func parsePython(t *testing.T, src string) (*tree_sitter.Tree, *grammar.Config) {
	t.Helper()
	cfg, err := grammar.ForLanguage(lang.Python)
	require.NoError(t, err)
	p := New(0)
	t.Cleanup(p.Close)
	tree, err := p.Parse([]byte(src), cfg)
	require.NoError(t, err)
	return tree, cfg
}

const pySample = "def foo(a, b, c): return a + b + c"

var pySampleKinds = []string{
	"module",
	"function_definition",
	"def",
	"identifier",
	"parameters",
	"(",
	"identifier",
	",",
	"identifier",
	",",
	"identifier",
	")",
	":",
	"block",
	"return_statement",
	"return",
	"binary_operator",
	"binary_operator",
	"identifier",
	"+",
	"identifier",
	"+",
	"identifier",
}

func TestWalkVisitsAllNodes(t *testing.T) {
	tree, _ := parsePython(t, pySample)

	var kinds []string
	Walk(tree.RootNode(), func(n *tree_sitter.Node) bool {
		kinds = append(kinds, n.Kind())
		return true
	})
	assert.Equal(t, pySampleKinds, kinds)
}

func TestWalkSkipsSubtreeOnFalse(t *testing.T) {
	tree, _ := parsePython(t, pySample)

	var kinds []string
	Walk(tree.RootNode(), func(n *tree_sitter.Node) bool {
		kinds = append(kinds, n.Kind())
		return n.Kind() != "binary_operator"
	})
	// Descent stops at the outer binary_operator, so its operands never
	// appear.
	assert.Equal(t, pySampleKinds[:17], kinds)
}

func TestWalkContinuesPastSkippedSubtree(t *testing.T) {
	tree, _ := parsePython(t, "a.b = 1\nc = 2")

	statements := 0
	var insideSkipped []string
	Walk(tree.RootNode(), func(n *tree_sitter.Node) bool {
		switch n.Kind() {
		case "expression_statement":
			statements++
		case "attribute":
			return false
		case "identifier":
			if p := n.Parent(); p != nil && p.Kind() == "attribute" {
				insideSkipped = append(insideSkipped, n.Kind())
			}
		}
		return true
	})
	// Skipping the attribute chain must not end the walk; the second
	// statement still gets visited.
	assert.Equal(t, 2, statements)
	assert.Empty(t, insideSkipped)
}

func TestWalkWithDepthTracksAscent(t *testing.T) {
	tree, _ := parsePython(t, pySample)

	maxDepth := 0
	ascents := 0
	WalkWithDepth(tree.RootNode(), func(n *tree_sitter.Node, depth int) bool {
		if depth > maxDepth {
			maxDepth = depth
		}
		return true
	}, func(n *tree_sitter.Node, depth int) {
		ascents++
	})
	// module > function_definition > block > return_statement >
	// binary_operator > binary_operator > identifier
	assert.Equal(t, 6, maxDepth)
	assert.Greater(t, ascents, 0)
}

func TestNodeAtPoint(t *testing.T) {
	tree, _ := parsePython(t, pySample)

	// The "a" of "a + b + c".
	n := NodeAtPoint(tree.RootNode(), tree_sitter.Point{Row: 0, Column: 25})
	require.NotNil(t, n)
	assert.Equal(t, "identifier", n.Kind())
	assert.Equal(t, uint(25), n.StartPosition().Column)
}

func TestDeepestOfKind(t *testing.T) {
	tree, cfg := parsePython(t, pySample)

	stmt := DeepestOfKind(tree.RootNode(), tree_sitter.Point{Row: 0, Column: 25}, cfg.IsStatement)
	require.NotNil(t, stmt)
	assert.Equal(t, "return_statement", stmt.Kind())

	scope := DeepestOfKind(tree.RootNode(), tree_sitter.Point{Row: 0, Column: 25}, cfg.IsSliceScope)
	require.NotNil(t, scope)
	assert.Equal(t, "function_definition", scope.Kind())

	assert.Nil(t, DeepestOfKind(tree.RootNode(), tree_sitter.Point{Row: 0, Column: 0}, cfg.IsCall))
}

func TestEnclosingOfKind(t *testing.T) {
	tree, cfg := parsePython(t, pySample)

	leaf := NodeAtPoint(tree.RootNode(), tree_sitter.Point{Row: 0, Column: 25})
	scope := EnclosingOfKind(leaf, cfg.IsSliceScope)
	require.NotNil(t, scope)
	assert.Equal(t, "function_definition", scope.Kind())

	assert.Nil(t, EnclosingOfKind(leaf, func(kind string) bool { return kind == "class_definition" }))
}

func TestPointConversionRoundTrip(t *testing.T) {
	p := types.Point{Line: 3, Column: 14}
	assert.Equal(t, p, FromTSPoint(ToTSPoint(p)))
}

func TestParserCachesTrees(t *testing.T) {
	cfg, err := grammar.ForLanguage(lang.Python)
	require.NoError(t, err)
	p := New(2)
	defer p.Close()

	src := []byte("x = 1")
	first, err := p.Parse(src, cfg)
	require.NoError(t, err)
	second, err := p.Parse(src, cfg)
	require.NoError(t, err)
	assert.Same(t, first, second)

	other, err := p.Parse([]byte("y = 2"), cfg)
	require.NoError(t, err)
	assert.NotSame(t, first, other)
}

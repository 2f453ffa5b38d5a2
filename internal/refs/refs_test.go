package refs

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	tree_sitter "github.com/tree-sitter/go-tree-sitter"

	"github.com/scalpel-dev/scalpel/internal/grammar"
	"github.com/scalpel-dev/scalpel/internal/lang"
	"github.com/scalpel-dev/scalpel/internal/parser"
	"github.com/scalpel-dev/scalpel/internal/types"
)

func buildIndex(t *testing.T, l lang.Language, src string) *Index {
	t.Helper()
	cfg, err := grammar.ForLanguage(l)
	require.NoError(t, err)
	p := parser.New(0)
	t.Cleanup(p.Close)
	tree, err := p.Parse([]byte(src), cfg)
	require.NoError(t, err)
	return Build(tree.RootNode(), []byte(src), cfg)
}

func stmtKeys(stmt *Statement) []string {
	var keys []string
	for _, n := range stmt.Names {
		keys = append(keys, n.Key())
	}
	return keys
}

func defKeys(stmt *Statement) []string {
	var keys []string
	for _, n := range stmt.Defs {
		keys = append(keys, n.Key())
	}
	return keys
}

func TestAffectsIsPrefixMatchBothWays(t *testing.T) {
	ab := NameRef{Components: []string{"a", "b"}}
	abc := NameRef{Components: []string{"a", "b", "c"}}
	a := NameRef{Components: []string{"a"}}
	x := NameRef{Components: []string{"x"}}
	empty := NameRef{}

	assert.True(t, ab.Affects(abc))
	assert.True(t, abc.Affects(ab))
	assert.True(t, a.Affects(abc))
	assert.True(t, ab.Affects(ab))
	assert.False(t, ab.Affects(x))
	assert.False(t, x.Affects(ab))
	assert.False(t, empty.Affects(a))
}

func TestDottedNameComponents(t *testing.T) {
	ix := buildIndex(t, lang.Python, "self.total.count = self.total.count + delta")

	require.NotEmpty(t, ix.Statements)
	stmt := ix.Statements[0]
	assert.Equal(t, []string{"self.total.count", "self.total.count", "delta"}, stmtKeys(stmt))
	assert.Equal(t, []string{"self.total.count"}, defKeys(stmt))
}

func TestStatementsAndDefsC(t *testing.T) {
	src := `int main() {
    int i;
    int sum = 0;
    sum = sum + i;
}`
	ix := buildIndex(t, lang.C, src)

	var decl, declInit, assign *Statement
	for _, stmt := range ix.Statements {
		switch int(stmt.Range.Start.Line) {
		case 1:
			decl = stmt
		case 2:
			declInit = stmt
		case 3:
			assign = stmt
		}
	}
	require.NotNil(t, decl)
	require.NotNil(t, declInit)
	require.NotNil(t, assign)

	assert.Equal(t, []string{"i"}, stmtKeys(decl))
	assert.Empty(t, defKeys(decl))

	assert.Equal(t, []string{"sum"}, stmtKeys(declInit))
	assert.Equal(t, []string{"sum"}, defKeys(declInit))

	assert.Equal(t, []string{"sum", "sum", "i"}, stmtKeys(assign))
	assert.Equal(t, []string{"sum"}, defKeys(assign))
}

func TestNestedStatementsOwnTheirDefs(t *testing.T) {
	src := `int main() {
    for (i = 0; i < 10; ++i) {
        sum = sum + i;
    }
}`
	ix := buildIndex(t, lang.C, src)

	var forStmt, body *Statement
	for _, stmt := range ix.Statements {
		switch stmt.Node.Kind() {
		case "for_statement":
			forStmt = stmt
		case "expression_statement":
			if stmt.Range.Start.Line == 2 {
				body = stmt
			}
		}
	}
	require.NotNil(t, forStmt)
	require.NotNil(t, body)

	// The loop header binds i; the body statement binds sum. Neither leaks
	// into the other.
	assert.Equal(t, []string{"i"}, defKeys(forStmt))
	assert.Equal(t, []string{"sum"}, defKeys(body))
}

func TestReferencingUsesAffectMatching(t *testing.T) {
	src := "self.total = 1\nother = self.total.count\nunrelated = 3"
	ix := buildIndex(t, lang.Python, src)

	hits := ix.Referencing(NameRef{Components: []string{"self", "total"}})
	var lines []int
	for _, stmt := range hits {
		lines = append(lines, int(stmt.Range.Start.Line))
	}
	assert.Equal(t, []int{0, 1}, lines)
}

func TestSeedSelectionIsDirectional(t *testing.T) {
	src := "x = 1\ny = x + 2\nprint(y)"
	ix := buildIndex(t, lang.Python, src)

	point := types.Point{Line: 1, Column: 5}

	stmt, name := ix.Seed(point, types.Backward)
	require.NotNil(t, name)
	assert.Equal(t, "x", name.Key())
	assert.Equal(t, uint32(1), stmt.Range.Start.Line)

	stmt, name = ix.Seed(point, types.Forward)
	require.NotNil(t, name)
	assert.Equal(t, "print", name.Key())
	assert.Equal(t, uint32(2), stmt.Range.Start.Line)
}

func TestSeedOnIdentifier(t *testing.T) {
	src := "total = 0\ntotal = total + 1"
	ix := buildIndex(t, lang.Python, src)

	// Cursor on the second line's left-hand "total".
	point := types.Point{Line: 1, Column: 0}
	_, name := ix.Seed(point, types.Backward)
	require.NotNil(t, name)
	assert.Equal(t, "total", name.Key())
	assert.Equal(t, types.Point{Line: 1, Column: 0}, name.Start())
}

func TestSeedNoneFound(t *testing.T) {
	ix := buildIndex(t, lang.Python, "x = 1")
	// Forward from past the end of the file.
	stmt, name := ix.Seed(types.Point{Line: 5, Column: 0}, types.Forward)
	assert.Nil(t, stmt)
	assert.Nil(t, name)
}

func TestEnclosingStatementIsInnermost(t *testing.T) {
	src := `while True:
    x = x + 1`
	ix := buildIndex(t, lang.Python, src)

	var assign *Statement
	for _, stmt := range ix.Statements {
		if stmt.Range.Start.Line == 1 && stmt.Node.Kind() == "expression_statement" {
			assign = stmt
		}
	}
	require.NotNil(t, assign)
	assert.Equal(t, []string{"x", "x"}, stmtKeys(assign))

	var whileStmt *Statement
	for _, stmt := range ix.Statements {
		if stmt.Node.Kind() == "while_statement" {
			whileStmt = stmt
		}
	}
	require.NotNil(t, whileStmt)
	// True is a constant, x lives in the nested statement.
	assert.Empty(t, stmtKeys(whileStmt))
}

func TestNewNameRef(t *testing.T) {
	src := "a.b.c"
	cfg, err := grammar.ForLanguage(lang.Python)
	require.NoError(t, err)
	p := parser.New(0)
	t.Cleanup(p.Close)
	tree, err := p.Parse([]byte(src), cfg)
	require.NoError(t, err)

	var chain *tree_sitter.Node
	parser.Walk(tree.RootNode(), func(n *tree_sitter.Node) bool {
		if n.Kind() == "attribute" && chain == nil {
			chain = n
		}
		return chain == nil
	})
	require.NotNil(t, chain)
	assert.Equal(t, "a.b.c", NewNameRef(chain, []byte(src), cfg).Key())
}

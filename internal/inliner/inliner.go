// Package inliner replaces a call expression with the body of its target
// function. The transform is textual: parameter occurrences in the body are
// substituted with the argument source text, complex arguments are hoisted
// into temporaries first, and a single trailing return feeds the value back
// into the call position.
package inliner

import (
	"fmt"
	"strings"

	tree_sitter "github.com/tree-sitter/go-tree-sitter"

	"github.com/scalpel-dev/scalpel/internal/debug"
	scerrors "github.com/scalpel-dev/scalpel/internal/errors"
	"github.com/scalpel-dev/scalpel/internal/grammar"
	"github.com/scalpel-dev/scalpel/internal/parser"
	"github.com/scalpel-dev/scalpel/internal/refs"
	"github.com/scalpel-dev/scalpel/internal/types"
)

type param struct {
	name *tree_sitter.Node
	typ  *tree_sitter.Node
}

type tempVar struct {
	name  string
	typ   string
	value string
}

func (t tempVar) format(format string) string {
	if t.typ == "" {
		format = strings.ReplaceAll(format, "{type} ", "")
	}
	return strings.NewReplacer(
		"{type}", t.typ,
		"{name}", t.name,
		"{value}", t.value,
	).Replace(format)
}

// Inline rewrites the document in content so the call under point is
// replaced by the target function's body. The target definition lives at
// targetPoint in targetContent, which may be the same document. The whole
// rewritten document is returned.
func Inline(root *tree_sitter.Node, content []byte, cfg *grammar.Config, point types.Point,
	targetRoot *tree_sitter.Node, targetContent []byte, targetPoint types.Point) (string, error) {

	if !cfg.SupportsInline() {
		return "", fmt.Errorf("inlining is not supported for %s", cfg.Name)
	}
	callArgsQ, paramsQ, functionQ, returnsQ, err := cfg.Queries()
	if err != nil {
		return "", err
	}

	callsite := parser.DeepestOfKind(root, parser.ToTSPoint(point), cfg.IsCall)
	if callsite == nil {
		return "", &scerrors.NoCallError{Point: point}
	}
	def := parser.DeepestOfKind(targetRoot, parser.ToTSPoint(targetPoint), cfg.IsSliceScope)
	if def == nil {
		return "", &scerrors.TargetUnresolvableError{Point: targetPoint}
	}

	args := callArguments(callArgsQ, callsite, content)
	params := defParameters(paramsQ, def, targetContent)
	if len(args) != len(params) {
		return "", &scerrors.ArityMismatchError{
			Function: defName(def, targetContent),
			Params:   len(params),
			Args:     len(args),
		}
	}

	body := defBody(functionQ, def, targetContent)
	if body == nil {
		return "", &scerrors.TargetUnresolvableError{Point: targetPoint}
	}
	debug.LogInline("inlining %s with %d argument(s)", defName(def, targetContent), len(args))

	// Positional substitution map. Arguments that are more than a bare
	// name or constant are hoisted into temporaries so the rewritten body
	// cannot appear to evaluate them more than once.
	renames := map[string]string{}
	var temps []tempVar
	for i, arg := range args {
		pname := refs.NewNameRef(params[i].name, targetContent, cfg)
		argText := string(content[arg.StartByte():arg.EndByte()])
		if cfg.IsConstant(arg.Kind()) || cfg.IsName(arg.Kind()) {
			renames[pname.Key()] = argText
			continue
		}
		temp := tempVar{
			name:  "inline_" + string(targetContent[pname.Node.StartByte():pname.Node.EndByte()]),
			value: argText,
		}
		if params[i].typ != nil {
			temp.typ = string(targetContent[params[i].typ.StartByte():params[i].typ.EndByte()])
		}
		temps = append(temps, temp)
		renames[pname.Key()] = temp.name
	}

	// A body with exactly one return feeds its value into the call
	// position; otherwise the call expression is simply dropped and the
	// body's own returns are left in place.
	returns := parser.CaptureMaps(returnsQ, body, targetContent)
	skip := map[uintptr]bool{}
	replacement := ""
	if len(returns) == 1 {
		if stmt := returns[0][grammar.CaptureReturnStmt]; stmt != nil {
			skip[stmt.Id()] = true
		}
		if val := returns[0][grammar.CaptureReturnValue]; val != nil {
			replacement = rewriteRegion(val, val.StartByte(), val.EndByte(), renames, nil, targetContent, cfg)
		}
	}

	return assemble(content, cfg, callsite, body, targetContent, temps, renames, skip, replacement), nil
}

// callArguments returns the callsite's argument nodes in order, ignoring
// matches produced by calls nested inside the arguments.
func callArguments(q *tree_sitter.Query, callsite *tree_sitter.Node, content []byte) []*tree_sitter.Node {
	var out []*tree_sitter.Node
	for _, m := range parser.CaptureMaps(q, callsite, content) {
		call, value := m[grammar.CaptureCall], m[grammar.CaptureValue]
		if call == nil || value == nil || call.Id() != callsite.Id() {
			continue
		}
		out = append(out, value)
	}
	return out
}

func defParameters(q *tree_sitter.Query, def *tree_sitter.Node, content []byte) []param {
	var out []param
	for _, m := range parser.CaptureMaps(q, def, content) {
		name := m[grammar.CaptureParamName]
		if name == nil {
			continue
		}
		out = append(out, param{name: name, typ: m[grammar.CaptureParamType]})
	}
	return out
}

func defBody(q *tree_sitter.Query, def *tree_sitter.Node, content []byte) *tree_sitter.Node {
	for _, m := range parser.CaptureMaps(q, def, content) {
		body := m[grammar.CaptureFunctionBody]
		if body == nil {
			continue
		}
		// Skip bodies of functions nested inside the target.
		if p := body.Parent(); p == nil || p.Id() == def.Id() {
			return body
		}
	}
	return nil
}

func defName(def *tree_sitter.Node, content []byte) string {
	name := def.ChildByFieldName("name")
	if name == nil {
		name = def.ChildByFieldName("declarator")
	}
	if name == nil {
		return ""
	}
	return string(content[name.StartByte():name.EndByte()])
}

// rewriteRegion emits the text of [start, end) with renamed name nodes
// substituted and skipped nodes omitted. A name chain that has no rename of
// its own is still descended so a renamed head rewrites in place.
func rewriteRegion(node *tree_sitter.Node, start, end uint, renames map[string]string,
	skip map[uintptr]bool, content []byte, cfg *grammar.Config) string {

	var b strings.Builder
	prev := start
	parser.Walk(node, func(n *tree_sitter.Node) bool {
		if skip[n.Id()] {
			b.Write(content[prev:n.StartByte()])
			prev = n.EndByte()
			return false
		}
		if cfg.IsName(n.Kind()) {
			ref := refs.NewNameRef(n, content, cfg)
			if repl, ok := renames[ref.Key()]; ok {
				b.Write(content[prev:n.StartByte()])
				b.WriteString(repl)
				prev = n.EndByte()
				return false
			}
		}
		return true
	})
	if prev < end {
		b.Write(content[prev:end])
	}
	return b.String()
}

// assemble splices the rewritten body into the document: lines before the
// call, hoisted temporaries, the re-indented body, then the call line with
// the call expression replaced by the return value (or removed).
func assemble(content []byte, cfg *grammar.Config, callsite, body *tree_sitter.Node,
	targetContent []byte, temps []tempVar, renames map[string]string,
	skip map[uintptr]bool, replacement string) string {

	// When the call stands alone as its own statement and produces no
	// replacement value, drop the whole statement so no bare terminator is
	// left behind.
	replaceNode := callsite
	if replacement == "" && callsite.Parent() != nil {
		if stmt := parser.EnclosingOfKind(callsite.Parent(), cfg.IsStatement); stmt != nil {
			stmtText := string(content[stmt.StartByte():stmt.EndByte()])
			callText := string(content[callsite.StartByte():callsite.EndByte()])
			rest := strings.Replace(stmtText, callText, "", 1)
			if strings.TrimLeft(strings.TrimSpace(rest), ";") == "" {
				replaceNode = stmt
			}
		}
	}

	lines := strings.Split(string(content), "\n")
	callRow := int(replaceNode.StartPosition().Row)
	callLine := lines[callRow]
	indent := callLine[:len(callLine)-len(strings.TrimLeft(callLine, " \t"))]

	var b strings.Builder
	if callRow > 0 {
		b.WriteString(strings.Join(lines[:callRow], "\n"))
		b.WriteString("\n")
	}
	for _, t := range temps {
		b.WriteString(indent)
		b.WriteString(t.format(cfg.TempVarFormat))
		b.WriteString("\n")
	}

	start, end := bodyExtent(body)
	if start < end {
		inlined := rewriteRegion(body, start, end, renames, skip, targetContent, cfg)
		defIndent := lineIndentAt(targetContent, start)
		for _, line := range strings.Split(inlined, "\n") {
			line = strings.TrimPrefix(line, defIndent)
			if strings.TrimSpace(line) == "" {
				continue
			}
			b.WriteString(indent)
			b.WriteString(line)
			b.WriteString("\n")
		}
	}

	prefix := callLine[:int(replaceNode.StartPosition().Column)]
	tail := string(content[replaceNode.EndByte():])
	if replacement == "" && strings.TrimSpace(prefix) == "" {
		// Nothing goes on the call line anymore.
		tail = strings.TrimPrefix(tail, "\n")
	} else {
		b.WriteString(prefix)
		b.WriteString(replacement)
	}
	b.WriteString(tail)
	return b.String()
}

// bodyExtent returns the byte span from the first to the last named child
// of the body, excluding the block delimiters.
func bodyExtent(body *tree_sitter.Node) (uint, uint) {
	var start, end uint
	first := true
	for i := uint(0); i < body.ChildCount(); i++ {
		child := body.Child(i)
		if !child.IsNamed() {
			continue
		}
		if first {
			start = child.StartByte()
			first = false
		}
		end = child.EndByte()
	}
	if first {
		return 0, 0
	}
	return start, end
}

// lineIndentAt returns the leading whitespace of the line containing the
// byte offset.
func lineIndentAt(content []byte, offset uint) string {
	lineStart := int(offset)
	for lineStart > 0 && content[lineStart-1] != '\n' {
		lineStart--
	}
	i := lineStart
	for i < len(content) && (content[i] == ' ' || content[i] == '\t') {
		i++
	}
	return string(content[lineStart:i])
}

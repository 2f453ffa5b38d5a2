// Package grammar holds the per-language capability tables that make the
// slicer and inliner language agnostic. Each supported grammar contributes
// one Config mapping its native node kinds onto the normalized predicates
// the analysis passes use (identifier, name, statement, call, scope) plus
// the tree-sitter queries the inliner needs. Adding a language means adding
// one Config here, not touching the slicer or inliner.
package grammar

import (
	"context"
	"fmt"
	"slices"
	"sync"

	tree_sitter "github.com/tree-sitter/go-tree-sitter"
	"golang.org/x/sync/errgroup"

	"github.com/scalpel-dev/scalpel/internal/lang"
)

// Capture names shared by all per-language queries.
const (
	CaptureCall         = "call"
	CaptureValue        = "value"
	CaptureParamName    = "param.name"
	CaptureParamType    = "param.type"
	CaptureFunctionBody = "function.body"
	CaptureReturnStmt   = "return.stmt"
	CaptureReturnValue  = "return.value"
)

// Propagation describes one way a value flows into a new name in a grammar:
// the node kind and the field names of its defining and referencing sides
// (e.g. "assignment_expression" with fields "left" and "right").
type Propagation struct {
	Kind      string
	DefsField string
	RefsField string
}

// Config is the capability table for one grammar.
type Config struct {
	Name lang.Language
	TS   *tree_sitter.Language

	// Node kinds representing atomic name fragments (e.g. `foo` in `a.foo`).
	IdentifierKinds []string
	// Node kinds representing any complete name (e.g. a whole `self.foo.bar`).
	NameKinds []string
	// Node kinds that are literal constants; used to decide whether a call
	// argument can be substituted verbatim during inlining.
	ConstantKinds []string
	// Node kinds representing call expressions.
	CallKinds []string
	// Concrete node kinds classified as statements. Supertypes from the
	// grammar's node-types metadata are pre-expanded into this list.
	StatementKinds []string
	// Node kinds representing the scopes slicing operates within.
	SliceScopeKinds []string

	Propagating []Propagation

	// TempVarFormat renders a hoisted argument binding during inlining.
	// Placeholders: {name}, {value}, {type}.
	TempVarFormat string

	callArgsSrc string
	paramsSrc   string
	functionSrc string
	returnsSrc  string

	compileOnce sync.Once
	compileErr  error
	callArgs    *tree_sitter.Query
	params      *tree_sitter.Query
	function    *tree_sitter.Query
	returns     *tree_sitter.Query
}

func (c *Config) IsIdentifier(kind string) bool { return slices.Contains(c.IdentifierKinds, kind) }
func (c *Config) IsName(kind string) bool       { return slices.Contains(c.NameKinds, kind) }
func (c *Config) IsConstant(kind string) bool   { return slices.Contains(c.ConstantKinds, kind) }
func (c *Config) IsCall(kind string) bool       { return slices.Contains(c.CallKinds, kind) }
func (c *Config) IsStatement(kind string) bool  { return slices.Contains(c.StatementKinds, kind) }
func (c *Config) IsSliceScope(kind string) bool { return slices.Contains(c.SliceScopeKinds, kind) }

// SupportsInline reports whether the grammar carries the queries the inliner
// needs. Slicing works for every registered grammar; inlining only for those
// with call/parameter/body extraction queries.
func (c *Config) SupportsInline() bool {
	return c.callArgsSrc != "" && c.paramsSrc != "" && c.functionSrc != ""
}

func (c *Config) compile() {
	compileOne := func(src string) (*tree_sitter.Query, error) {
		if src == "" {
			return nil, nil
		}
		// The tree-sitter Go binding can return a typed nil error, so the
		// query pointer is the reliable success signal.
		query, qerr := tree_sitter.NewQuery(c.TS, src)
		if query == nil {
			return nil, fmt.Errorf("query compile failed for %s: %v", c.Name, qerr)
		}
		return query, nil
	}

	var err error
	if c.callArgs, err = compileOne(c.callArgsSrc); err != nil {
		c.compileErr = err
		return
	}
	if c.params, err = compileOne(c.paramsSrc); err != nil {
		c.compileErr = err
		return
	}
	if c.function, err = compileOne(c.functionSrc); err != nil {
		c.compileErr = err
		return
	}
	if c.returns, err = compileOne(c.returnsSrc); err != nil {
		c.compileErr = err
		return
	}
}

// Queries returns the compiled inline queries (call args, params, function,
// returns). Compilation happens once per Config and is reused afterwards.
func (c *Config) Queries() (callArgs, params, function, returns *tree_sitter.Query, err error) {
	c.compileOnce.Do(c.compile)
	if c.compileErr != nil {
		return nil, nil, nil, nil, c.compileErr
	}
	return c.callArgs, c.params, c.function, c.returns, nil
}

var (
	registryOnce sync.Once
	registry     map[lang.Language]*Config
)

func configs() map[lang.Language]*Config {
	registryOnce.Do(func() {
		registry = make(map[lang.Language]*Config)
		for _, c := range allConfigs() {
			registry[c.Name] = c
		}
	})
	return registry
}

// ForLanguage returns the capability table for a language.
func ForLanguage(l lang.Language) (*Config, error) {
	c, ok := configs()[l]
	if !ok {
		return nil, fmt.Errorf("no grammar registered for language %q", l)
	}
	return c, nil
}

// OverrideTempVarFormat replaces the hoisted-binding template of a
// registered grammar. Call during startup, before any requests are served;
// the registry has no lock against concurrent readers.
func OverrideTempVarFormat(l lang.Language, format string) error {
	c, err := ForLanguage(l)
	if err != nil {
		return err
	}
	c.TempVarFormat = format
	return nil
}

// Languages lists the registered grammars in no particular order.
func Languages() []lang.Language {
	out := make([]lang.Language, 0, len(configs()))
	for l := range configs() {
		out = append(out, l)
	}
	return out
}

// WarmUp compiles every registered grammar's queries ahead of time so the
// first request does not pay the compilation cost. Intended for server
// startup; safe to skip for one-shot use.
func WarmUp(ctx context.Context) error {
	g, _ := errgroup.WithContext(ctx)
	for _, c := range configs() {
		g.Go(func() error {
			_, _, _, _, err := c.Queries()
			return err
		})
	}
	return g.Wait()
}

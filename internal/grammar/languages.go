package grammar

import (
	tree_sitter_zig "github.com/tree-sitter-grammars/tree-sitter-zig/bindings/go"
	tree_sitter "github.com/tree-sitter/go-tree-sitter"
	tree_sitter_csharp "github.com/tree-sitter/tree-sitter-c-sharp/bindings/go"
	tree_sitter_cpp "github.com/tree-sitter/tree-sitter-cpp/bindings/go"
	tree_sitter_go "github.com/tree-sitter/tree-sitter-go/bindings/go"
	tree_sitter_java "github.com/tree-sitter/tree-sitter-java/bindings/go"
	tree_sitter_javascript "github.com/tree-sitter/tree-sitter-javascript/bindings/go"
	tree_sitter_php "github.com/tree-sitter/tree-sitter-php/bindings/go"
	tree_sitter_python "github.com/tree-sitter/tree-sitter-python/bindings/go"
	tree_sitter_rust "github.com/tree-sitter/tree-sitter-rust/bindings/go"
	tree_sitter_typescript "github.com/tree-sitter/tree-sitter-typescript/bindings/go"

	"github.com/scalpel-dev/scalpel/internal/lang"
)

// C-family statement kinds shared by the C and C++ tables. The cpp grammar
// parses both, so both tables hold the same language handle.
var cStatementKinds = []string{
	"declaration", "expression_statement", "if_statement", "for_statement",
	"while_statement", "do_statement", "return_statement", "switch_statement",
	"case_statement", "break_statement", "continue_statement", "goto_statement",
	"labeled_statement", "compound_statement",
}

func setupC() *Config {
	ts := tree_sitter.NewLanguage(tree_sitter_cpp.Language())
	return &Config{
		Name:            lang.C,
		TS:              ts,
		IdentifierKinds: []string{"identifier", "field_identifier"},
		NameKinds:       []string{"identifier", "field_expression"},
		ConstantKinds: []string{
			"number_literal", "string_literal", "char_literal",
			"concatenated_string", "true", "false", "null",
		},
		CallKinds:       []string{"call_expression"},
		StatementKinds:  cStatementKinds,
		SliceScopeKinds: []string{"function_definition"},
		Propagating: []Propagation{
			{Kind: "assignment_expression", DefsField: "left", RefsField: "right"},
			{Kind: "init_declarator", DefsField: "declarator", RefsField: "value"},
		},
		TempVarFormat: "{type} {name} = {value};",
		callArgsSrc:   `(call_expression arguments: (argument_list (_) @value)) @call`,
		paramsSrc:     `(parameter_declaration type: (_) @param.type declarator: (_) @param.name)`,
		functionSrc:   `(function_definition body: (compound_statement) @function.body)`,
		returnsSrc:    `(return_statement (_) @return.value) @return.stmt`,
	}
}

func setupCPP() *Config {
	c := setupC()
	c.Name = lang.CPP
	c.StatementKinds = append([]string{"for_range_loop", "try_statement", "throw_statement"}, cStatementKinds...)
	c.SliceScopeKinds = []string{"function_definition", "lambda_expression"}
	c.Propagating = append(c.Propagating, Propagation{
		Kind: "for_range_loop", DefsField: "declarator", RefsField: "right",
	})
	return c
}

func setupCSharp() *Config {
	return &Config{
		Name:            lang.CSharp,
		TS:              tree_sitter.NewLanguage(tree_sitter_csharp.Language()),
		IdentifierKinds: []string{"identifier"},
		NameKinds:       []string{"identifier", "member_access_expression"},
		ConstantKinds: []string{
			"integer_literal", "real_literal", "string_literal",
			"verbatim_string_literal", "character_literal", "boolean_literal",
			"null_literal",
		},
		CallKinds: []string{"invocation_expression"},
		StatementKinds: []string{
			"local_declaration_statement", "expression_statement", "if_statement",
			"for_statement", "for_each_statement", "while_statement", "do_statement",
			"return_statement", "switch_statement", "break_statement",
			"continue_statement", "throw_statement", "try_statement",
			"using_statement", "block",
		},
		SliceScopeKinds: []string{"method_declaration", "constructor_declaration", "local_function_statement"},
		Propagating: []Propagation{
			{Kind: "assignment_expression", DefsField: "left", RefsField: "right"},
		},
		TempVarFormat: "var {name} = {value};",
		callArgsSrc:   `(invocation_expression arguments: (argument_list (argument (_) @value))) @call`,
		paramsSrc:     `(parameter type: (_) @param.type name: (identifier) @param.name)`,
		functionSrc: `(method_declaration body: (block) @function.body)
(local_function_statement body: (block) @function.body)`,
		returnsSrc: `(return_statement (_) @return.value) @return.stmt`,
	}
}

func setupGo() *Config {
	return &Config{
		Name:            lang.Go,
		TS:              tree_sitter.NewLanguage(tree_sitter_go.Language()),
		IdentifierKinds: []string{"identifier", "field_identifier", "package_identifier"},
		NameKinds:       []string{"identifier", "selector_expression"},
		ConstantKinds: []string{
			"int_literal", "float_literal", "imaginary_literal", "rune_literal",
			"interpreted_string_literal", "raw_string_literal", "true", "false",
			"nil", "iota",
		},
		CallKinds: []string{"call_expression"},
		StatementKinds: []string{
			"short_var_declaration", "var_declaration", "const_declaration",
			"assignment_statement", "expression_statement", "if_statement",
			"for_statement", "return_statement", "go_statement", "defer_statement",
			"send_statement", "inc_statement", "dec_statement", "break_statement",
			"continue_statement", "labeled_statement", "expression_switch_statement",
			"type_switch_statement", "select_statement", "block",
		},
		SliceScopeKinds: []string{"function_declaration", "method_declaration", "func_literal"},
		Propagating: []Propagation{
			{Kind: "assignment_statement", DefsField: "left", RefsField: "right"},
			{Kind: "short_var_declaration", DefsField: "left", RefsField: "right"},
			{Kind: "range_clause", DefsField: "left", RefsField: "right"},
		},
		TempVarFormat: "{name} := {value}",
		callArgsSrc:   `(call_expression arguments: (argument_list (_) @value)) @call`,
		paramsSrc:     `(parameter_declaration name: (identifier) @param.name type: (_) @param.type)`,
		functionSrc: `(function_declaration body: (block) @function.body)
(method_declaration body: (block) @function.body)
(func_literal body: (block) @function.body)`,
		returnsSrc: `(return_statement (_) @return.value) @return.stmt`,
	}
}

func setupJava() *Config {
	return &Config{
		Name:            lang.Java,
		TS:              tree_sitter.NewLanguage(tree_sitter_java.Language()),
		IdentifierKinds: []string{"identifier"},
		NameKinds:       []string{"identifier", "field_access"},
		ConstantKinds: []string{
			"decimal_integer_literal", "hex_integer_literal",
			"decimal_floating_point_literal", "string_literal",
			"character_literal", "true", "false", "null_literal",
		},
		CallKinds: []string{"method_invocation"},
		StatementKinds: []string{
			"local_variable_declaration", "expression_statement", "if_statement",
			"for_statement", "enhanced_for_statement", "while_statement",
			"do_statement", "return_statement", "switch_expression",
			"break_statement", "continue_statement", "throw_statement",
			"try_statement", "block",
		},
		SliceScopeKinds: []string{"method_declaration", "constructor_declaration", "lambda_expression"},
		Propagating: []Propagation{
			{Kind: "assignment_expression", DefsField: "left", RefsField: "right"},
			{Kind: "variable_declarator", DefsField: "name", RefsField: "value"},
		},
		TempVarFormat: "var {name} = {value};",
		callArgsSrc:   `(method_invocation arguments: (argument_list (_) @value)) @call`,
		paramsSrc:     `(formal_parameter type: (_) @param.type name: (identifier) @param.name)`,
		functionSrc:   `(method_declaration body: (block) @function.body)`,
		returnsSrc:    `(return_statement (_) @return.value) @return.stmt`,
	}
}

var jsStatementKinds = []string{
	"lexical_declaration", "variable_declaration", "expression_statement",
	"if_statement", "for_statement", "for_in_statement", "while_statement",
	"do_statement", "return_statement", "switch_statement", "break_statement",
	"continue_statement", "throw_statement", "try_statement",
	"labeled_statement", "statement_block",
}

var jsScopeKinds = []string{
	"function_declaration", "generator_function_declaration", "arrow_function",
	"method_definition", "function_expression",
}

var jsPropagating = []Propagation{
	{Kind: "assignment_expression", DefsField: "left", RefsField: "right"},
	{Kind: "augmented_assignment_expression", DefsField: "left", RefsField: "right"},
	{Kind: "variable_declarator", DefsField: "name", RefsField: "value"},
}

const jsFunctionSrc = `(function_declaration body: (statement_block) @function.body)
(generator_function_declaration body: (statement_block) @function.body)
(method_definition body: (statement_block) @function.body)
(arrow_function body: (statement_block) @function.body)
(function_expression body: (statement_block) @function.body)`

func setupJavaScript() *Config {
	return &Config{
		Name:            lang.JavaScript,
		TS:              tree_sitter.NewLanguage(tree_sitter_javascript.Language()),
		IdentifierKinds: []string{"identifier", "property_identifier", "shorthand_property_identifier"},
		NameKinds:       []string{"identifier", "member_expression"},
		ConstantKinds: []string{
			"number", "string", "template_string", "regex", "true", "false",
			"null", "undefined",
		},
		CallKinds:       []string{"call_expression"},
		StatementKinds:  jsStatementKinds,
		SliceScopeKinds: jsScopeKinds,
		Propagating:     jsPropagating,
		TempVarFormat:   "const {name} = {value};",
		callArgsSrc:     `(call_expression arguments: (arguments (_) @value)) @call`,
		paramsSrc:       `(formal_parameters (identifier) @param.name)`,
		functionSrc:     jsFunctionSrc,
		returnsSrc:      `(return_statement (_) @return.value) @return.stmt`,
	}
}

func setupTypeScript() *Config {
	c := setupJavaScript()
	c.Name = lang.TypeScript
	c.TS = tree_sitter.NewLanguage(tree_sitter_typescript.LanguageTypescript())
	c.paramsSrc = `(required_parameter pattern: (identifier) @param.name)
(optional_parameter pattern: (identifier) @param.name)`
	return c
}

func setupPHP() *Config {
	return &Config{
		Name:            lang.PHP,
		TS:              tree_sitter.NewLanguage(tree_sitter_php.LanguagePHP()),
		IdentifierKinds: []string{"name"},
		NameKinds:       []string{"variable_name", "member_access_expression", "name"},
		ConstantKinds: []string{
			"integer", "float", "string", "encapsed_string", "boolean", "null",
		},
		CallKinds: []string{"function_call_expression", "member_call_expression"},
		StatementKinds: []string{
			"expression_statement", "echo_statement", "if_statement",
			"for_statement", "foreach_statement", "while_statement",
			"do_statement", "return_statement", "switch_statement",
			"break_statement", "continue_statement", "try_statement",
			"compound_statement",
		},
		SliceScopeKinds: []string{"function_definition", "method_declaration"},
		Propagating: []Propagation{
			{Kind: "assignment_expression", DefsField: "left", RefsField: "right"},
			{Kind: "augmented_assignment_expression", DefsField: "left", RefsField: "right"},
		},
		TempVarFormat: "{name} = {value};",
		callArgsSrc: `(function_call_expression arguments: (arguments (argument (_) @value))) @call
(member_call_expression arguments: (arguments (argument (_) @value))) @call`,
		paramsSrc: `(simple_parameter name: (variable_name) @param.name)`,
		functionSrc: `(function_definition body: (compound_statement) @function.body)
(method_declaration body: (compound_statement) @function.body)`,
		returnsSrc: `(return_statement (_) @return.value) @return.stmt`,
	}
}

func setupPython() *Config {
	return &Config{
		Name:            lang.Python,
		TS:              tree_sitter.NewLanguage(tree_sitter_python.Language()),
		IdentifierKinds: []string{"identifier"},
		NameKinds:       []string{"identifier", "attribute"},
		ConstantKinds: []string{
			"integer", "float", "string", "concatenated_string", "true",
			"false", "none",
		},
		CallKinds: []string{"call"},
		StatementKinds: []string{
			"expression_statement", "if_statement", "for_statement",
			"while_statement", "return_statement", "assert_statement",
			"raise_statement", "pass_statement", "break_statement",
			"continue_statement", "with_statement", "try_statement",
			"import_statement", "import_from_statement", "global_statement",
			"delete_statement", "block",
		},
		SliceScopeKinds: []string{"function_definition"},
		Propagating: []Propagation{
			{Kind: "assignment", DefsField: "left", RefsField: "right"},
			{Kind: "augmented_assignment", DefsField: "left", RefsField: "right"},
			{Kind: "for_statement", DefsField: "left", RefsField: "right"},
			// Guarded at use sites: with_item may not bind anything.
			{Kind: "with_item", DefsField: "alias", RefsField: "value"},
		},
		TempVarFormat: "{name} = {value}",
		callArgsSrc:   `(call arguments: (argument_list (_) @value)) @call`,
		paramsSrc: `(parameters (identifier) @param.name)
(typed_parameter (identifier) @param.name type: (type) @param.type)
(default_parameter name: (identifier) @param.name)`,
		functionSrc: `(function_definition body: (block) @function.body)`,
		returnsSrc:  `(return_statement (_) @return.value) @return.stmt`,
	}
}

func setupRust() *Config {
	return &Config{
		Name:            lang.Rust,
		TS:              tree_sitter.NewLanguage(tree_sitter_rust.Language()),
		IdentifierKinds: []string{"identifier", "field_identifier"},
		NameKinds:       []string{"identifier", "field_expression", "scoped_identifier"},
		ConstantKinds: []string{
			"integer_literal", "float_literal", "string_literal",
			"raw_string_literal", "char_literal", "boolean_literal",
		},
		CallKinds: []string{"call_expression"},
		// The rust grammar has no statement supertype, so the usual
		// statement positions are enumerated directly.
		StatementKinds: []string{
			"let_declaration", "expression_statement", "macro_invocation",
			"assignment_expression", "compound_assignment_expr",
			"await_expression", "call_expression", "for_expression",
			"if_expression", "loop_expression", "match_expression",
			"return_expression", "while_expression", "block",
		},
		SliceScopeKinds: []string{"function_item", "closure_expression"},
		Propagating: []Propagation{
			{Kind: "assignment_expression", DefsField: "left", RefsField: "right"},
			{Kind: "let_declaration", DefsField: "pattern", RefsField: "value"},
		},
		TempVarFormat: "let {name} = {value};",
		callArgsSrc:   `(call_expression arguments: (arguments (_) @value)) @call`,
		paramsSrc:     `(parameter pattern: (identifier) @param.name type: (_) @param.type)`,
		functionSrc:   `(function_item body: (block) @function.body)`,
		returnsSrc:    `(return_expression (_) @return.value) @return.stmt`,
	}
}

func setupZig() *Config {
	return &Config{
		Name:            lang.Zig,
		TS:              tree_sitter.NewLanguage(tree_sitter_zig.Language()),
		IdentifierKinds: []string{"identifier"},
		NameKinds:       []string{"identifier", "field_expression"},
		ConstantKinds:   []string{"integer", "float", "string"},
		CallKinds:       []string{"call_expression"},
		StatementKinds: []string{
			"variable_declaration", "expression_statement", "if_statement",
			"for_statement", "while_statement", "return_statement", "block",
		},
		SliceScopeKinds: []string{"function_declaration"},
		Propagating: []Propagation{
			{Kind: "assignment_expression", DefsField: "left", RefsField: "right"},
		},
		// No inline queries yet: the community grammar's parameter shape is
		// still settling, so zig is slice-only for now.
		TempVarFormat: "const {name} = {value};",
	}
}

func allConfigs() []*Config {
	return []*Config{
		setupC(),
		setupCPP(),
		setupCSharp(),
		setupGo(),
		setupJava(),
		setupJavaScript(),
		setupTypeScript(),
		setupPHP(),
		setupPython(),
		setupRust(),
		setupZig(),
	}
}

package errors

import (
	"fmt"

	"github.com/scalpel-dev/scalpel/internal/types"
)

// ErrorType classifies engine failures for transport surfaces that carry a
// status code alongside the message.
type ErrorType string

const (
	ErrorTypeUnsupported ErrorType = "unsupported_language"
	ErrorTypeParse       ErrorType = "parse_failure"
	ErrorTypeSeed        ErrorType = "seed_not_found"
	ErrorTypeCall        ErrorType = "no_call_at_point"
	ErrorTypeArity       ErrorType = "arity_mismatch"
	ErrorTypeTarget      ErrorType = "target_unresolvable"
	ErrorTypeConfig      ErrorType = "config"
)

// UnsupportedLanguageError is returned when neither the language hint nor the
// filename maps to a known grammar. Suggestion, when set, is the closest
// known language name to the hint.
type UnsupportedLanguageError struct {
	Filename   string
	Hint       string
	Suggestion string
}

func (e *UnsupportedLanguageError) Error() string {
	switch {
	case e.Hint != "" && e.Suggestion != "":
		return fmt.Sprintf("unsupported language %q (did you mean %q?)", e.Hint, e.Suggestion)
	case e.Hint != "":
		return fmt.Sprintf("unsupported language %q", e.Hint)
	default:
		return fmt.Sprintf("cannot determine language for %q", e.Filename)
	}
}

// ParseError is returned when a grammar is present but the parser could not
// produce any tree. Rare, since tree-sitter parsing is error tolerant.
type ParseError struct {
	Language   string
	Underlying error
}

func (e *ParseError) Error() string {
	if e.Underlying != nil {
		return fmt.Sprintf("parse failed for language %s: %v", e.Language, e.Underlying)
	}
	return fmt.Sprintf("parse failed for language %s", e.Language)
}

func (e *ParseError) Unwrap() error {
	return e.Underlying
}

// SeedNotFoundError is returned when the cursor does not land on or near any
// identifier or statement the slicer could seed from.
type SeedNotFoundError struct {
	Point types.Point
}

func (e *SeedNotFoundError) Error() string {
	return fmt.Sprintf("no identifier at point %s", e.Point)
}

// NoCallError is returned by the inliner when the cursor is not on a call
// expression.
type NoCallError struct {
	Point types.Point
}

func (e *NoCallError) Error() string {
	return fmt.Sprintf("no call expression at point %s", e.Point)
}

// ArityMismatchError is returned when an inline target's parameter count
// differs from the call site's argument count.
type ArityMismatchError struct {
	Function string
	Params   int
	Args     int
}

func (e *ArityMismatchError) Error() string {
	if e.Function != "" {
		return fmt.Sprintf("cannot inline %s: %d parameter(s) but %d argument(s)", e.Function, e.Params, e.Args)
	}
	return fmt.Sprintf("cannot inline: %d parameter(s) but %d argument(s)", e.Params, e.Args)
}

// TargetUnresolvableError is returned when the target content/point given to
// Inline do not contain a recognizable function definition.
type TargetUnresolvableError struct {
	Point types.Point
}

func (e *TargetUnresolvableError) Error() string {
	return fmt.Sprintf("no function definition at target point %s", e.Point)
}

// ConfigError represents a configuration failure.
type ConfigError struct {
	Field      string
	Value      string
	Underlying error
}

func NewConfigError(field, value string, err error) *ConfigError {
	return &ConfigError{Field: field, Value: value, Underlying: err}
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("config error for field %s (value %s): %v", e.Field, e.Value, e.Underlying)
}

func (e *ConfigError) Unwrap() error {
	return e.Underlying
}

// TypeOf maps an engine error to its transport classification. Unknown
// errors classify as parse failures, the catch-all for a failed request.
func TypeOf(err error) ErrorType {
	switch err.(type) {
	case *UnsupportedLanguageError:
		return ErrorTypeUnsupported
	case *SeedNotFoundError:
		return ErrorTypeSeed
	case *NoCallError:
		return ErrorTypeCall
	case *ArityMismatchError:
		return ErrorTypeArity
	case *TargetUnresolvableError:
		return ErrorTypeTarget
	case *ConfigError:
		return ErrorTypeConfig
	default:
		return ErrorTypeParse
	}
}

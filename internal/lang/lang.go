// Package lang maps filenames and editor language hints to a supported
// grammar. Detection is static: a hint table, an extension table, and
// optional user-configured glob overrides. No file content sniffing.
package lang

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/hbollon/go-edlib"

	scerrors "github.com/scalpel-dev/scalpel/internal/errors"
)

// Language identifies a supported grammar.
type Language string

const (
	C          Language = "c"
	CPP        Language = "cpp"
	CSharp     Language = "csharp"
	Go         Language = "go"
	Java       Language = "java"
	JavaScript Language = "javascript"
	PHP        Language = "php"
	Python     Language = "python"
	Rust       Language = "rust"
	TypeScript Language = "typescript"
	Zig        Language = "zig"
)

var byExtension = map[string]Language{
	".c":     C,
	".h":     C,
	".cpp":   CPP,
	".cc":    CPP,
	".cxx":   CPP,
	".hpp":   CPP,
	".hh":    CPP,
	".cs":    CSharp,
	".go":    Go,
	".java":  Java,
	".js":    JavaScript,
	".jsx":   JavaScript,
	".mjs":   JavaScript,
	".cjs":   JavaScript,
	".php":   PHP,
	".phtml": PHP,
	".py":    Python,
	".pyi":   Python,
	".rs":    Rust,
	".ts":    TypeScript,
	".tsx":   TypeScript,
	".zig":   Zig,
}

// aliases accepts the names editors commonly report for each language.
var aliases = map[string]Language{
	"c":                C,
	"cpp":              CPP,
	"c++":              CPP,
	"cplusplus":        CPP,
	"csharp":           CSharp,
	"c#":               CSharp,
	"cs":               CSharp,
	"go":               Go,
	"golang":           Go,
	"java":             Java,
	"javascript":       JavaScript,
	"js":               JavaScript,
	"javascriptreact":  JavaScript,
	"php":              PHP,
	"python":           Python,
	"py":               Python,
	"rust":             Rust,
	"rs":               Rust,
	"typescript":       TypeScript,
	"ts":               TypeScript,
	"typescriptreact":  TypeScript,
	"zig":              Zig,
}

// Names returns the canonical language names, sorted.
func Names() []string {
	seen := map[Language]bool{}
	for _, l := range byExtension {
		seen[l] = true
	}
	names := make([]string, 0, len(seen))
	for l := range seen {
		names = append(names, string(l))
	}
	sort.Strings(names)
	return names
}

// Override maps a filename glob to a language, letting projects route
// nonstandard extensions (e.g. "**/*.inc" to php).
type Override struct {
	Pattern  string
	Language Language
}

// Resolver resolves a (filename, hint) pair to a Language. A zero Resolver
// uses only the built-in tables.
type Resolver struct {
	overrides []Override
}

// NewResolver builds a resolver with glob overrides. Patterns use doublestar
// syntax; languages must be canonical names or known aliases.
func NewResolver(overrides map[string]string) (*Resolver, error) {
	r := &Resolver{}
	patterns := make([]string, 0, len(overrides))
	for p := range overrides {
		patterns = append(patterns, p)
	}
	sort.Strings(patterns)
	for _, p := range patterns {
		name := overrides[p]
		l, ok := aliases[strings.ToLower(name)]
		if !ok {
			return nil, scerrors.NewConfigError("languages", p+"="+name, &scerrors.UnsupportedLanguageError{
				Hint:       name,
				Suggestion: closestName(name),
			})
		}
		if !doublestar.ValidatePattern(p) {
			return nil, scerrors.NewConfigError("languages", p, fmt.Errorf("invalid glob pattern"))
		}
		r.overrides = append(r.overrides, Override{Pattern: p, Language: l})
	}
	return r, nil
}

// FromName resolves a language name or editor alias to its canonical
// Language.
func FromName(name string) (Language, error) {
	if l, ok := aliases[strings.ToLower(strings.TrimSpace(name))]; ok {
		return l, nil
	}
	return "", &scerrors.UnsupportedLanguageError{Hint: name, Suggestion: closestName(name)}
}

// Detect resolves the language for a request. The hint wins when it names a
// known language; otherwise configured glob overrides are consulted, then
// the filename extension. A hint that names nothing at all fails even if the
// extension would resolve, so a caller's explicit choice is never silently
// overridden.
func (r *Resolver) Detect(filename, hint string) (Language, error) {
	if hint != "" {
		if l, ok := aliases[strings.ToLower(strings.TrimSpace(hint))]; ok {
			return l, nil
		}
		return "", &scerrors.UnsupportedLanguageError{
			Filename:   filename,
			Hint:       hint,
			Suggestion: closestName(hint),
		}
	}
	for _, o := range r.overrides {
		if ok, _ := doublestar.Match(o.Pattern, filepath.ToSlash(filename)); ok {
			return o.Language, nil
		}
		// Also try the basename so patterns like "*.inc" behave intuitively.
		if ok, _ := doublestar.Match(o.Pattern, filepath.Base(filename)); ok {
			return o.Language, nil
		}
	}
	if l, ok := byExtension[strings.ToLower(filepath.Ext(filename))]; ok {
		return l, nil
	}
	return "", &scerrors.UnsupportedLanguageError{Filename: filename}
}

// closestName returns the known language name nearest to the given hint, or
// "" when nothing is close enough to be a plausible typo.
func closestName(hint string) string {
	best := ""
	bestScore := float32(0)
	for _, name := range Names() {
		score, err := edlib.StringsSimilarity(strings.ToLower(hint), name, edlib.JaroWinkler)
		if err != nil {
			continue
		}
		if score > bestScore {
			bestScore = score
			best = name
		}
	}
	if bestScore < 0.75 {
		return ""
	}
	return best
}

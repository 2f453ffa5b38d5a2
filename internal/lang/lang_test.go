package lang

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	scerrors "github.com/scalpel-dev/scalpel/internal/errors"
)

func TestDetectByExtension(t *testing.T) {
	r := &Resolver{}
	cases := map[string]Language{
		"main.c":          C,
		"vec.hpp":         CPP,
		"Program.cs":      CSharp,
		"main.go":         Go,
		"App.java":        Java,
		"index.js":        JavaScript,
		"widget.jsx":      JavaScript,
		"index.php":       PHP,
		"script.py":       Python,
		"lib.rs":          Rust,
		"app.ts":          TypeScript,
		"component.tsx":   TypeScript,
		"build.zig":       Zig,
		"dir/nested/x.py": Python,
	}
	for filename, want := range cases {
		got, err := r.Detect(filename, "")
		require.NoError(t, err, filename)
		assert.Equal(t, want, got, filename)
	}
}

func TestDetectHintWinsOverExtension(t *testing.T) {
	r := &Resolver{}
	got, err := r.Detect("weird.txt", "python")
	require.NoError(t, err)
	assert.Equal(t, Python, got)

	// Editor aliases resolve too.
	got, err = r.Detect("x", "golang")
	require.NoError(t, err)
	assert.Equal(t, Go, got)

	// A hint that resolves to nothing fails even when the extension would
	// have worked.
	_, err = r.Detect("main.go", "klingon")
	var unsupported *scerrors.UnsupportedLanguageError
	require.ErrorAs(t, err, &unsupported)
	assert.Equal(t, "klingon", unsupported.Hint)
}

func TestDetectSuggestsCloseName(t *testing.T) {
	r := &Resolver{}
	_, err := r.Detect("x", "pythn")
	var unsupported *scerrors.UnsupportedLanguageError
	require.ErrorAs(t, err, &unsupported)
	assert.Equal(t, "python", unsupported.Suggestion)
}

func TestDetectUnknownExtension(t *testing.T) {
	r := &Resolver{}
	_, err := r.Detect("README.md", "")
	var unsupported *scerrors.UnsupportedLanguageError
	require.ErrorAs(t, err, &unsupported)
	assert.Equal(t, "README.md", unsupported.Filename)
}

func TestResolverOverrides(t *testing.T) {
	r, err := NewResolver(map[string]string{
		"**/*.inc":    "php",
		"templates/*": "javascript",
	})
	require.NoError(t, err)

	got, err := r.Detect("src/deep/helper.inc", "")
	require.NoError(t, err)
	assert.Equal(t, PHP, got)

	got, err = r.Detect("templates/page", "")
	require.NoError(t, err)
	assert.Equal(t, JavaScript, got)

	// Extensions still work when no override matches.
	got, err = r.Detect("main.go", "")
	require.NoError(t, err)
	assert.Equal(t, Go, got)
}

func TestNewResolverRejectsUnknownLanguage(t *testing.T) {
	_, err := NewResolver(map[string]string{"*.x": "brainfuck"})
	require.Error(t, err)
	var cfgErr *scerrors.ConfigError
	assert.ErrorAs(t, err, &cfgErr)
}

func TestNames(t *testing.T) {
	names := Names()
	assert.Contains(t, names, "python")
	assert.Contains(t, names, "zig")
	assert.IsNonDecreasing(t, names)
}

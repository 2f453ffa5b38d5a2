// Package parser wraps tree-sitter parsing with a small content-addressed
// tree cache and the traversal helpers the analysis passes share.
package parser

import (
	"fmt"

	"github.com/cespare/xxhash/v2"
	lru "github.com/hashicorp/golang-lru/v2"
	tree_sitter "github.com/tree-sitter/go-tree-sitter"

	"github.com/scalpel-dev/scalpel/internal/debug"
	scerrors "github.com/scalpel-dev/scalpel/internal/errors"
	"github.com/scalpel-dev/scalpel/internal/grammar"
)

// DefaultCacheSize bounds the number of parse trees kept per Parser.
const DefaultCacheSize = 32

// Parser parses source text and caches the resulting trees keyed by a hash
// of content and language. Cached trees are owned by the Parser and freed
// on eviction or Close; callers must not retain nodes past either.
//
// A Parser is not safe for concurrent use. Transports that handle requests
// concurrently give each in-flight request its own Parser.
type Parser struct {
	cache *lru.Cache[uint64, *tree_sitter.Tree]
}

// New returns a Parser with a tree cache of the given size. Sizes below one
// fall back to DefaultCacheSize.
func New(cacheSize int) *Parser {
	if cacheSize < 1 {
		cacheSize = DefaultCacheSize
	}
	cache, _ := lru.NewWithEvict(cacheSize, func(_ uint64, tree *tree_sitter.Tree) {
		tree.Close()
	})
	return &Parser{cache: cache}
}

func cacheKey(content []byte, cfg *grammar.Config) uint64 {
	h := xxhash.New()
	h.Write(content)
	h.WriteString("\x00")
	h.WriteString(string(cfg.Name))
	return h.Sum64()
}

// Parse returns the syntax tree for content under the given grammar,
// reusing a cached tree when the same content was parsed before. The
// returned tree remains owned by the Parser.
func (p *Parser) Parse(content []byte, cfg *grammar.Config) (*tree_sitter.Tree, error) {
	key := cacheKey(content, cfg)
	if tree, ok := p.cache.Get(key); ok {
		debug.LogParse("cache hit for %s (%d bytes)", cfg.Name, len(content))
		return tree, nil
	}

	tsParser := tree_sitter.NewParser()
	defer tsParser.Close()
	if err := tsParser.SetLanguage(cfg.TS); err != nil {
		return nil, &scerrors.ParseError{Language: string(cfg.Name), Underlying: err}
	}
	tree := tsParser.Parse(content, nil)
	if tree == nil {
		return nil, &scerrors.ParseError{
			Language:   string(cfg.Name),
			Underlying: fmt.Errorf("parser produced no tree"),
		}
	}
	debug.LogParse("parsed %s (%d bytes)", cfg.Name, len(content))
	p.cache.Add(key, tree)
	return tree, nil
}

// Close frees every cached tree.
func (p *Parser) Close() {
	p.cache.Purge()
}

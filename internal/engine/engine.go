// Package engine ties the pipeline together: resolve the language, parse,
// build the reference model, run the slicer or inliner, shape the response.
package engine

import (
	"github.com/scalpel-dev/scalpel/internal/grammar"
	"github.com/scalpel-dev/scalpel/internal/inliner"
	"github.com/scalpel-dev/scalpel/internal/lang"
	"github.com/scalpel-dev/scalpel/internal/parser"
	"github.com/scalpel-dev/scalpel/internal/slicer"
	"github.com/scalpel-dev/scalpel/internal/textedit"
	"github.com/scalpel-dev/scalpel/internal/types"
)

// Engine processes slice and inline requests. It owns a parser with a
// small tree cache and is therefore not safe for concurrent use; give each
// concurrent request stream its own Engine.
type Engine struct {
	resolver *lang.Resolver
	parser   *parser.Parser
}

// New builds an Engine. resolver may be nil for built-in detection only;
// cacheSize below one uses the default.
func New(resolver *lang.Resolver, cacheSize int) *Engine {
	if resolver == nil {
		resolver = &lang.Resolver{}
	}
	return &Engine{resolver: resolver, parser: parser.New(cacheSize)}
}

// Close releases the cached parse trees.
func (e *Engine) Close() {
	e.parser.Close()
}

func (e *Engine) grammarFor(src types.Source) (*grammar.Config, error) {
	l, err := e.resolver.Detect(src.Filename, src.Language)
	if err != nil {
		return nil, err
	}
	return grammar.ForLanguage(l)
}

// Slice computes the ranges a directional slice at the request point would
// remove.
func (e *Engine) Slice(req types.SliceRequest) (*types.SliceResponse, error) {
	cfg, err := e.grammarFor(req.Source)
	if err != nil {
		return nil, err
	}
	content := []byte(req.Content)
	tree, err := e.parser.Parse(content, cfg)
	if err != nil {
		return nil, err
	}
	ranges, err := slicer.Slice(tree.RootNode(), content, cfg, req.Point, req.Direction)
	if err != nil {
		return nil, err
	}
	return &types.SliceResponse{RangesToRemove: ranges}, nil
}

// SliceText slices and applies the removal, returning the filtered content
// and the cursor adjusted to its new location.
func (e *Engine) SliceText(req types.SliceRequest) (string, types.Point, error) {
	resp, err := e.Slice(req)
	if err != nil {
		return "", types.Point{}, err
	}
	filtered, cursor := textedit.DeleteRanges(req.Content, resp.RangesToRemove, req.Point)
	return filtered, cursor, nil
}

// Inline replaces the call at the request point with the body of the
// function defined at TargetPoint in TargetContent and returns the whole
// rewritten document.
func (e *Engine) Inline(req types.InlineRequest) (*types.InlineResponse, error) {
	cfg, err := e.grammarFor(req.Source)
	if err != nil {
		return nil, err
	}
	content := []byte(req.Content)
	tree, err := e.parser.Parse(content, cfg)
	if err != nil {
		return nil, err
	}

	targetContent := content
	targetTree := tree
	if req.TargetContent != "" && req.TargetContent != req.Content {
		targetContent = []byte(req.TargetContent)
		targetTree, err = e.parser.Parse(targetContent, cfg)
		if err != nil {
			return nil, err
		}
	}

	out, err := inliner.Inline(tree.RootNode(), content, cfg, req.Point,
		targetTree.RootNode(), targetContent, req.TargetPoint)
	if err != nil {
		return nil, err
	}
	return &types.InlineResponse{Content: out}, nil
}

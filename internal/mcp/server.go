// Package mcp exposes the slicing engine over the Model Context Protocol
// so agents can request slices and inlines against buffer contents.
package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/jsonschema-go/jsonschema"
	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/scalpel-dev/scalpel/internal/config"
	"github.com/scalpel-dev/scalpel/internal/engine"
	scerrors "github.com/scalpel-dev/scalpel/internal/errors"
	"github.com/scalpel-dev/scalpel/internal/grammar"
	"github.com/scalpel-dev/scalpel/internal/lang"
	"github.com/scalpel-dev/scalpel/internal/types"
	"github.com/scalpel-dev/scalpel/internal/version"
)

// Server wraps the MCP stdio server. Each tool call builds its own Engine,
// so concurrent calls never share state.
type Server struct {
	server    *mcp.Server
	resolver  *lang.Resolver
	cacheSize int
}

// NewServer builds the MCP server and registers the tools.
func NewServer(cfg *config.Config) (*Server, error) {
	resolver, err := cfg.Resolver()
	if err != nil {
		return nil, err
	}
	if err := cfg.ApplyTempVars(); err != nil {
		return nil, err
	}
	s := &Server{
		server: mcp.NewServer(&mcp.Implementation{
			Name:    "scalpel",
			Version: version.Version,
		}, nil),
		resolver:  resolver,
		cacheSize: cfg.Cache.Trees,
	}
	s.registerTools()
	return s, nil
}

// Run serves MCP over stdio until the context is cancelled or the client
// disconnects.
func (s *Server) Run(ctx context.Context) error {
	return s.server.Run(ctx, &mcp.StdioTransport{})
}

var sourceProperties = map[string]*jsonschema.Schema{
	"filename": {
		Type:        "string",
		Description: "Name of the file the content came from; decides the language when no explicit language is given",
	},
	"content": {
		Type:        "string",
		Description: "Full text of the buffer",
	},
	"language": {
		Type:        "string",
		Description: "Language name or editor alias, overriding filename detection",
	},
	"line": {
		Type:        "integer",
		Description: "Zero-based cursor line",
	},
	"col": {
		Type:        "integer",
		Description: "Zero-based cursor column",
	},
}

func (s *Server) registerTools() {
	sliceProps := map[string]*jsonschema.Schema{
		"direction": {
			Type:        "string",
			Description: "\"backward\" keeps what influences the variable under the cursor, \"forward\" keeps what it influences",
		},
		"apply": {
			Type:        "boolean",
			Description: "Return the filtered source text instead of the ranges to remove",
		},
	}
	for k, v := range sourceProperties {
		sliceProps[k] = v
	}
	s.server.AddTool(&mcp.Tool{
		Name:        "slice",
		Description: "Compute a program slice for the variable under a cursor position: the source ranges that do not affect (or are not affected by) it",
		InputSchema: &jsonschema.Schema{
			Type:       "object",
			Properties: sliceProps,
			Required:   []string{"filename", "content", "line", "col"},
		},
	}, s.handleSlice)

	inlineProps := map[string]*jsonschema.Schema{
		"target_content": {
			Type:        "string",
			Description: "Full text of the file containing the function definition; defaults to content",
		},
		"target_line": {
			Type:        "integer",
			Description: "Zero-based line of the function definition",
		},
		"target_col": {
			Type:        "integer",
			Description: "Zero-based column of the function definition",
		},
	}
	for k, v := range sourceProperties {
		inlineProps[k] = v
	}
	s.server.AddTool(&mcp.Tool{
		Name:        "inline",
		Description: "Replace the function call under the cursor with the target function's body, substituting arguments for parameters",
		InputSchema: &jsonschema.Schema{
			Type:       "object",
			Properties: inlineProps,
			Required:   []string{"filename", "content", "line", "col", "target_line", "target_col"},
		},
	}, s.handleInline)

	s.server.AddTool(&mcp.Tool{
		Name:        "languages",
		Description: "List the supported languages and whether each supports inlining",
		InputSchema: &jsonschema.Schema{
			Type:       "object",
			Properties: map[string]*jsonschema.Schema{},
		},
	}, s.handleLanguages)
}

type sourceParams struct {
	Filename string `json:"filename"`
	Content  string `json:"content"`
	Language string `json:"language"`
	Line     uint32 `json:"line"`
	Col      uint32 `json:"col"`
}

func (p sourceParams) source() types.Source {
	return types.Source{
		Filename: p.Filename,
		Content:  p.Content,
		Language: p.Language,
		Point:    types.Point{Line: p.Line, Column: p.Col},
	}
}

func (s *Server) handleSlice(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var params struct {
		sourceParams
		Direction string `json:"direction"`
		Apply     bool   `json:"apply"`
	}
	if err := json.Unmarshal(req.Params.Arguments, &params); err != nil {
		return errorResult("bad_request", err), nil
	}
	dir := types.Backward
	if params.Direction != "" {
		var err error
		if dir, err = types.ParseDirection(params.Direction); err != nil {
			return errorResult("bad_request", err), nil
		}
	}

	eng := engine.New(s.resolver, s.cacheSize)
	defer eng.Close()
	sliceReq := types.SliceRequest{Source: params.source(), Direction: dir}

	if params.Apply {
		filtered, _, err := eng.SliceText(sliceReq)
		if err != nil {
			return engineError(err), nil
		}
		return textResult(filtered), nil
	}
	resp, err := eng.Slice(sliceReq)
	if err != nil {
		return engineError(err), nil
	}
	return jsonResult(resp)
}

func (s *Server) handleInline(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var params struct {
		sourceParams
		TargetContent string `json:"target_content"`
		TargetLine    uint32 `json:"target_line"`
		TargetCol     uint32 `json:"target_col"`
	}
	if err := json.Unmarshal(req.Params.Arguments, &params); err != nil {
		return errorResult("bad_request", err), nil
	}

	eng := engine.New(s.resolver, s.cacheSize)
	defer eng.Close()
	resp, err := eng.Inline(types.InlineRequest{
		Source:        params.source(),
		TargetContent: params.TargetContent,
		TargetPoint:   types.Point{Line: params.TargetLine, Column: params.TargetCol},
	})
	if err != nil {
		return engineError(err), nil
	}
	return textResult(resp.Content), nil
}

func (s *Server) handleLanguages(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var lines []string
	for _, name := range lang.Names() {
		cfg, err := grammar.ForLanguage(lang.Language(name))
		if err != nil {
			continue
		}
		ops := "slice"
		if cfg.SupportsInline() {
			ops = "slice, inline"
		}
		lines = append(lines, fmt.Sprintf("%s (%s)", name, ops))
	}
	return textResult(strings.Join(lines, "\n")), nil
}

func textResult(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: text}},
	}
}

func jsonResult(v interface{}) (*mcp.CallToolResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, err
	}
	return textResult(string(data)), nil
}

func engineError(err error) *mcp.CallToolResult {
	return errorResult(string(scerrors.TypeOf(err)), err)
}

func errorResult(kind string, err error) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		IsError: true,
		Content: []mcp.Content{&mcp.TextContent{Text: fmt.Sprintf("%s: %v", kind, err)}},
	}
}

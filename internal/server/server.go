// Package server implements the line-oriented JSON protocol: one request
// object per line on stdin, one response object per line on stdout.
// Requests may be answered out of order; the id field correlates them.
package server

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/scalpel-dev/scalpel/internal/config"
	"github.com/scalpel-dev/scalpel/internal/debug"
	"github.com/scalpel-dev/scalpel/internal/engine"
	scerrors "github.com/scalpel-dev/scalpel/internal/errors"
	"github.com/scalpel-dev/scalpel/internal/lang"
	"github.com/scalpel-dev/scalpel/internal/types"
)

// maxLine bounds a single request line; buffers hold whole file contents.
const maxLine = 64 * 1024 * 1024

// Request is the wire envelope. Params is decoded per op.
type Request struct {
	ID     int64           `json:"id"`
	Op     string          `json:"op"`
	Params json.RawMessage `json:"params"`
}

// Response carries either a result or an error, never both.
type Response struct {
	ID     int64       `json:"id"`
	Result interface{} `json:"result,omitempty"`
	Error  *WireError  `json:"error,omitempty"`
}

// WireError is the structured error surface of the protocol.
type WireError struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

// Server answers slice and inline requests read from a stream. Requests
// are handled concurrently; each in-flight request gets its own Engine so
// nothing is shared across goroutines.
type Server struct {
	resolver    *lang.Resolver
	cacheSize   int
	concurrency int
}

// New builds a Server from project configuration.
func New(cfg *config.Config) (*Server, error) {
	resolver, err := cfg.Resolver()
	if err != nil {
		return nil, err
	}
	if err := cfg.ApplyTempVars(); err != nil {
		return nil, err
	}
	return &Server{resolver: resolver, cacheSize: cfg.Cache.Trees, concurrency: 4}, nil
}

// Run serves requests from r until EOF or context cancellation. Responses
// are written to w one JSON object per line, serialized by a mutex.
func (s *Server) Run(ctx context.Context, r io.Reader, w io.Writer) error {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLine)

	var writeMu sync.Mutex
	respond := func(resp Response) {
		writeMu.Lock()
		defer writeMu.Unlock()
		data, err := json.Marshal(resp)
		if err != nil {
			debug.LogServer("marshal response: %v", err)
			return
		}
		fmt.Fprintf(w, "%s\n", data)
	}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency)

	for scanner.Scan() {
		if ctx.Err() != nil {
			break
		}
		line := make([]byte, len(scanner.Bytes()))
		copy(line, scanner.Bytes())
		if len(line) == 0 {
			continue
		}
		g.Go(func() error {
			respond(s.handle(line))
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}
	return scanner.Err()
}

func (s *Server) handle(line []byte) Response {
	var req Request
	if err := json.Unmarshal(line, &req); err != nil {
		return Response{Error: &WireError{Type: "bad_request", Message: err.Error()}}
	}
	debug.LogServer("request %d: %s", req.ID, req.Op)

	eng := engine.New(s.resolver, s.cacheSize)
	defer eng.Close()

	var result interface{}
	var err error
	switch req.Op {
	case "slice":
		var params types.SliceRequest
		if uerr := json.Unmarshal(req.Params, &params); uerr != nil {
			return Response{ID: req.ID, Error: &WireError{Type: "bad_request", Message: uerr.Error()}}
		}
		result, err = eng.Slice(params)
	case "inline":
		var params types.InlineRequest
		if uerr := json.Unmarshal(req.Params, &params); uerr != nil {
			return Response{ID: req.ID, Error: &WireError{Type: "bad_request", Message: uerr.Error()}}
		}
		result, err = eng.Inline(params)
	default:
		return Response{ID: req.ID, Error: &WireError{Type: "bad_request", Message: fmt.Sprintf("unknown op %q", req.Op)}}
	}

	if err != nil {
		return Response{ID: req.ID, Error: &WireError{
			Type:    string(scerrors.TypeOf(err)),
			Message: err.Error(),
		}}
	}
	return Response{ID: req.ID, Result: result}
}

// ABOUTME: Newline-delimited JSON-RPC transport over a reader/writer pair (stdin/stdout).
// ABOUTME: Sessionless; notifications produce no output.

package mcp

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
)

// ServeStdio reads one JSON-RPC message per line from r and writes each
// response as one line to w. It returns nil when r is exhausted and
// ctx.Err() once ctx is done.
func (s *Server) ServeStdio(ctx context.Context, r io.Reader, w io.Writer) error {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), MaxRequestBodySize)
	enc := json.NewEncoder(w)

	s.logger.Info("MCP stdio transport ready", "server", s.name)

	for scanner.Scan() {
		if err := ctx.Err(); err != nil {
			return err
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		resp := s.handleLine(ctx, []byte(line))
		if resp == nil {
			continue
		}
		if err := enc.Encode(resp); err != nil {
			return fmt.Errorf("write response: %w", err)
		}
	}

	if err := scanner.Err(); err != nil {
		if errors.Is(err, bufio.ErrTooLong) {
			_ = enc.Encode(errorResponse(nil, JSONRPCInvalidRequest, "request body too large"))
		}
		return fmt.Errorf("read request: %w", err)
	}
	return nil
}

// handleLine processes one message; nil means nothing should be written.
func (s *Server) handleLine(ctx context.Context, line []byte) *JSONRPCResponse {
	var req JSONRPCRequest
	if err := json.Unmarshal(line, &req); err != nil {
		return errorResponse(nil, JSONRPCParseError, "invalid JSON")
	}
	if req.JSONRPC != "2.0" {
		return errorResponse(req.ID, JSONRPCInvalidRequest, "invalid JSON-RPC version")
	}
	if req.isNotification() {
		s.logger.Debug("accepted MCP notification", "method", req.Method)
		return nil
	}
	return s.dispatch(ctx, req)
}

// ABOUTME: JSON-RPC 2.0 and MCP message types plus the transport-independent dispatcher.
// ABOUTME: Maps registry errors onto JSON-RPC codes and tool failures onto isError results.

package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"strings"

	"github.com/2389/hiring-router/internal/tools"
)

// Supported MCP protocol versions
var supportedProtocolVersions = map[string]bool{
	"2024-11-05": true,
	"2025-03-26": true,
	"2025-06-18": true,
	"2025-11-25": true,
}

// latestProtocolVersion is the version we advertise in initialize responses
const latestProtocolVersion = "2025-11-25"

// MaxRequestBodySize is the maximum allowed size for request bodies (1MB).
const MaxRequestBodySize = 1 << 20

// JSON-RPC 2.0 types

// JSONRPCRequest represents a JSON-RPC 2.0 request.
type JSONRPCRequest struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      json.RawMessage `json:"id"`
	Method  string          `json:"method"`
	Params  json.RawMessage `json:"params,omitempty"`
}

// isNotification reports whether the request carries no id.
func (r JSONRPCRequest) isNotification() bool {
	return len(r.ID) == 0 || string(r.ID) == "null"
}

// JSONRPCResponse represents a JSON-RPC 2.0 response.
type JSONRPCResponse struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      json.RawMessage `json:"id"`
	Result  any             `json:"result,omitempty"`
	Error   *JSONRPCError   `json:"error,omitempty"`
}

// JSONRPCError represents a JSON-RPC 2.0 error object.
type JSONRPCError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

// Standard JSON-RPC error codes
const (
	JSONRPCParseError     = -32700
	JSONRPCInvalidRequest = -32600
	JSONRPCMethodNotFound = -32601
	JSONRPCInvalidParams  = -32602
	JSONRPCInternalError  = -32603
)

// MCP-specific types

// MCPToolInfo represents an MCP tool definition.
type MCPToolInfo struct {
	Name        string          `json:"name"`
	Description string          `json:"description"`
	InputSchema json.RawMessage `json:"inputSchema"`
}

// MCPListToolsResult is the result for tools/list.
type MCPListToolsResult struct {
	Tools []MCPToolInfo `json:"tools"`
}

// MCPCallToolParams are the params for tools/call.
type MCPCallToolParams struct {
	Name      string          `json:"name"`
	Arguments json.RawMessage `json:"arguments,omitempty"`
}

// MCPCallToolResult is the result for tools/call.
type MCPCallToolResult struct {
	Content []MCPContent `json:"content"`
	IsError bool         `json:"isError,omitempty"`
}

// MCPContent represents content in a tool result.
type MCPContent struct {
	Type string `json:"type"`
	Text string `json:"text,omitempty"`
}

// emptyObjectSchema is advertised for tools without an input schema.
const emptyObjectSchema = `{"type":"object"}`

func resultResponse(id json.RawMessage, result any) *JSONRPCResponse {
	return &JSONRPCResponse{JSONRPC: "2.0", ID: id, Result: result}
}

func errorResponse(id json.RawMessage, code int, message string) *JSONRPCResponse {
	return &JSONRPCResponse{
		JSONRPC: "2.0",
		ID:      id,
		Error:   &JSONRPCError{Code: code, Message: message},
	}
}

// dispatch handles one non-notification request other than the session
// bookkeeping of initialize, which transports do themselves.
func (s *Server) dispatch(ctx context.Context, req JSONRPCRequest) *JSONRPCResponse {
	switch req.Method {
	case "initialize":
		return resultResponse(req.ID, s.initializeResult())
	case "ping":
		return resultResponse(req.ID, map[string]any{})
	case "tools/list":
		return resultResponse(req.ID, s.listTools())
	case "tools/call":
		return s.callTool(ctx, req)
	default:
		return errorResponse(req.ID, JSONRPCMethodNotFound, "method not found")
	}
}

func (s *Server) initializeResult() map[string]any {
	return map[string]any{
		"protocolVersion": latestProtocolVersion,
		"capabilities": map[string]any{
			"tools": map[string]any{},
		},
		"serverInfo": map[string]any{
			"name":    s.name,
			"version": s.version,
		},
	}
}

func (s *Server) listTools() MCPListToolsResult {
	list := s.registry.List()
	result := MCPListToolsResult{Tools: make([]MCPToolInfo, len(list))}
	for i, t := range list {
		schema := t.InputSchema
		if strings.TrimSpace(schema) == "" {
			schema = emptyObjectSchema
		}
		result.Tools[i] = MCPToolInfo{
			Name:        t.Name,
			Description: t.Description,
			InputSchema: json.RawMessage(schema),
		}
	}
	s.logger.Debug("tools/list", "count", len(list))
	return result
}

func (s *Server) callTool(ctx context.Context, req JSONRPCRequest) *JSONRPCResponse {
	var params MCPCallToolParams
	if len(req.Params) > 0 {
		if err := json.Unmarshal(req.Params, &params); err != nil {
			return errorResponse(req.ID, JSONRPCInvalidParams, "invalid params")
		}
	}
	if params.Name == "" {
		return errorResponse(req.ID, JSONRPCInvalidParams, "tool name is required")
	}

	args := map[string]any{}
	if raw := strings.TrimSpace(string(params.Arguments)); raw != "" && raw != "null" {
		if err := json.Unmarshal(params.Arguments, &args); err != nil {
			return errorResponse(req.ID, JSONRPCInvalidParams, "arguments must be an object")
		}
	}

	s.logger.Debug("tools/call", "tool_name", params.Name)

	out, err := s.registry.Call(ctx, params.Name, args)
	if err != nil {
		return s.toolError(req.ID, params.Name, err)
	}

	text, err := marshalResult(out)
	if err != nil {
		s.logger.Warn("tool result not serializable", "tool_name", params.Name, "error", err)
		return errorResponse(req.ID, JSONRPCInternalError, "tool result not serializable")
	}
	return resultResponse(req.ID, MCPCallToolResult{
		Content: []MCPContent{{Type: "text", Text: text}},
	})
}

// toolError maps a failed call. Lookup and argument problems are the
// caller's fault and become JSON-RPC errors; anything the tool itself
// returned becomes an isError result the model can read.
func (s *Server) toolError(id json.RawMessage, toolName string, err error) *JSONRPCResponse {
	s.logger.Warn("tool execution failed", "tool_name", toolName, "error", err)

	switch {
	case errors.Is(err, tools.ErrToolNotFound):
		return errorResponse(id, JSONRPCInvalidParams, "tool not found")
	case errors.Is(err, tools.ErrInvalidArguments):
		return &JSONRPCResponse{
			JSONRPC: "2.0",
			ID:      id,
			Error:   &JSONRPCError{Code: JSONRPCInvalidParams, Message: "invalid arguments", Data: err.Error()},
		}
	case errors.Is(err, context.DeadlineExceeded):
		return errorResponse(id, JSONRPCInternalError, "tool execution timed out")
	case errors.Is(err, context.Canceled):
		return errorResponse(id, JSONRPCInternalError, "request cancelled")
	}

	return resultResponse(id, MCPCallToolResult{
		Content: []MCPContent{{Type: "text", Text: err.Error()}},
		IsError: true,
	})
}

func marshalResult(v any) (string, error) {
	var b strings.Builder
	enc := json.NewEncoder(&b)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return "", err
	}
	return strings.TrimSuffix(b.String(), "\n"), nil
}

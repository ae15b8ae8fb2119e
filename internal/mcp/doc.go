// Package mcp implements the Model Context Protocol server for the hiring tools.
//
// # Overview
//
// The server exposes a tools.Registry to MCP clients using JSON-RPC 2.0. Two
// transports share one dispatcher:
//
//   - Streamable HTTP: POST /mcp carries one JSON-RPC message per request;
//     DELETE /mcp ends a session.
//   - stdio: one JSON-RPC message per line on stdin, one response per line
//     on stdout.
//
// # Sessions
//
// Over HTTP, initialize creates a session and returns its id in the
// Mcp-Session-Id header. Every later request must carry that header;
// unknown ids get 404 so the client re-initializes. Notifications (messages
// without an id) are acknowledged with 202 and no body. The stdio transport
// has no sessions.
//
// # Tool Discovery
//
// Clients call tools/list to discover available tools:
//
//	{
//	  "jsonrpc": "2.0",
//	  "method": "tools/list",
//	  "id": 1
//	}
//
// Each tool is listed with its JSON Schema input definition.
//
// # Tool Execution
//
// Clients call tools/call with a tool name and an arguments object:
//
//	{
//	  "jsonrpc": "2.0",
//	  "method": "tools/call",
//	  "params": {"name": "route_hiring_task", "arguments": {"user_type": "recruiter", "task_description": "job post"}},
//	  "id": 2
//	}
//
// The tool's JSON result is returned as a single text content item. Errors
// returned by the tool become an isError result; unknown tools and
// arguments failing schema validation are JSON-RPC invalid-params errors.
//
// # Probes
//
// GET /health returns {"ok":true}; GET / returns the service name and status.
package mcp

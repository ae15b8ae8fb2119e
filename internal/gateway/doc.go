// Package gateway assembles the hiring-router servers.
//
// # Overview
//
// A Gateway owns one tools.Registry, the MCP server exposing it and the
// HTTP server carrying both. Two constructors exist:
//
//   - New: the hiring router (recruiter, candidate, analytics and routing packs)
//   - NewResearch: search and fetch over a JSON record corpus
//
// Both take the request-log pipeline built by NewPipeline. Every tool is
// wrapped in tools.Instrument so each call writes a tool_call record and a
// tool_result or tool_error record to requests.jsonl.
//
// # Lifecycle
//
//	pipeline, _ := gateway.NewPipeline(cfg, consoleLogger)
//	defer pipeline.Close()
//	gw, _ := gateway.New(cfg, pipeline, logger)
//	err := gw.Run(ctx) // blocks until ctx is canceled
//
// Run listens on server.bind:server.port, and on cancellation shuts the
// HTTP server down with a 5 second deadline. The pipeline is left open for
// the caller to close.
//
// # HTTP Endpoints
//
//   - POST /mcp, DELETE /mcp: MCP streamable HTTP
//   - GET /health: {"ok":true}
//   - GET /: service name and status
//
// For stdio clients, MCP returns the server so the CLI can call ServeStdio.
package gateway

// Package tools provides the registry of named operations exposed to callers.
//
// # Architecture
//
//   - Tool: name, description, JSON Schema and handler
//   - Pack: tools registered together
//   - Registry: lookup and invocation, safe for concurrent use
//   - Middleware: wrappers composed around every handler at registration
//
// A registered handler runs as
//
//	middleware[0](middleware[1](...(validate(handler))))
//
// so argument validation happens inside the instrumentation and a rejected
// call is still recorded.
//
// # Call records
//
// Instrument is the middleware that writes call records through a
// telemetry.Emitter: a tool_call event, then exactly one tool_result or
// tool_error event carrying the same request_id. Only argument keys are
// recorded, never values.
package tools

// ABOUTME: Tool, Pack and Handler types for in-process operations.
// ABOUTME: Handlers take keyword-style arguments and return a JSON-serializable result.

package tools

import (
	"context"
	"encoding/json"
	"fmt"
)

// Handler executes one operation. args holds the caller's keyword
// arguments; the result must be JSON-serializable.
type Handler func(ctx context.Context, args map[string]any) (any, error)

// Middleware wraps a handler. The tool name is passed explicitly so
// wrappers never have to recover it from the function value.
type Middleware func(name string, next Handler) Handler

// Tool is a named operation exposed to callers.
type Tool struct {
	Name        string
	Description string
	InputSchema string // JSON Schema for args; empty means any object
	Handler     Handler
}

// Pack is a group of tools registered together.
type Pack struct {
	ID    string
	Tools []*Tool
}

// Names returns the tool names of the pack in declaration order.
func (p *Pack) Names() []string {
	names := make([]string, len(p.Tools))
	for i, t := range p.Tools {
		names[i] = t.Name
	}
	return names
}

// DecodeArgs copies args into the struct pointed to by dst using the
// struct's json tags. Keys the struct does not declare are ignored.
func DecodeArgs(args map[string]any, dst any) error {
	if len(args) == 0 {
		return nil
	}
	data, err := json.Marshal(args)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidArguments, err)
	}
	if err := json.Unmarshal(data, dst); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidArguments, err)
	}
	return nil
}

// Chain composes middleware so the first element is the outermost wrapper.
func Chain(name string, h Handler, mws ...Middleware) Handler {
	for i := len(mws) - 1; i >= 0; i-- {
		h = mws[i](name, h)
	}
	return h
}

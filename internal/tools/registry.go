// ABOUTME: Thread-safe registry of tool packs with lookup and invocation.
// ABOUTME: Middleware and argument validation are composed around handlers at registration.

package tools

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"
)

// ErrToolNotFound indicates the requested tool is not registered.
var ErrToolNotFound = errors.New("tool not found")

// ErrToolCollision indicates a tool name is already registered.
var ErrToolCollision = errors.New("tool name collision")

// ErrInvalidArguments indicates the arguments do not satisfy the tool's schema.
var ErrInvalidArguments = errors.New("invalid arguments")

// entry is a registered tool with its composed handler.
type entry struct {
	tool    *Tool
	packID  string
	handler Handler
}

// Registry holds registered tools. Handlers are wrapped once, when their
// pack is registered; the wrapped handler is what Call invokes.
type Registry struct {
	mu         sync.RWMutex
	tools      map[string]*entry
	order      []string
	middleware []Middleware
	logger     *slog.Logger
}

// NewRegistry creates a registry that wraps every handler with mws, the
// first being outermost.
func NewRegistry(logger *slog.Logger, mws ...Middleware) *Registry {
	if logger == nil {
		logger = slog.Default()
	}
	return &Registry{
		tools:      make(map[string]*entry),
		middleware: append([]Middleware(nil), mws...),
		logger:     logger,
	}
}

// Register validates and stores every tool of pack.
// Returns ErrToolCollision if any name is already taken; nothing is
// registered in that case.
func (r *Registry) Register(pack *Pack) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	seen := make(map[string]struct{}, len(pack.Tools))
	for _, tool := range pack.Tools {
		if tool.Name == "" || tool.Handler == nil {
			return fmt.Errorf("pack %q: tool name and handler are required", pack.ID)
		}
		if existing, exists := r.tools[tool.Name]; exists {
			return fmt.Errorf("%w: tool '%s' already registered by pack '%s'",
				ErrToolCollision, tool.Name, existing.packID)
		}
		if _, dup := seen[tool.Name]; dup {
			return fmt.Errorf("%w: tool '%s' declared twice in pack '%s'",
				ErrToolCollision, tool.Name, pack.ID)
		}
		seen[tool.Name] = struct{}{}
	}

	entries := make([]*entry, 0, len(pack.Tools))
	for _, tool := range pack.Tools {
		validate, err := compileSchema(tool.Name, tool.InputSchema)
		if err != nil {
			return fmt.Errorf("pack %q: %w", pack.ID, err)
		}
		inner := tool.Handler
		if validate != nil {
			inner = validateArgs(validate, tool.Handler)
		}
		entries = append(entries, &entry{
			tool:    tool,
			packID:  pack.ID,
			handler: Chain(tool.Name, inner, r.middleware...),
		})
	}

	for _, e := range entries {
		r.tools[e.tool.Name] = e
		r.order = append(r.order, e.tool.Name)
	}

	r.logger.Info("tool pack registered",
		"pack_id", pack.ID,
		"tool_count", len(pack.Tools),
		"total_tools", len(r.tools),
	)
	return nil
}

// Get returns the tool definition by name, or nil.
func (r *Registry) Get(name string) *Tool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if e, ok := r.tools[name]; ok {
		return e.tool
	}
	return nil
}

// List returns all tools in registration order.
func (r *Registry) List() []*Tool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*Tool, 0, len(r.order))
	for _, name := range r.order {
		out = append(out, r.tools[name].tool)
	}
	return out
}

// Names returns registered tool names, sorted.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := append([]string(nil), r.order...)
	sort.Strings(names)
	return names
}

// Call invokes the named tool through its middleware chain. The error
// returned by the tool is passed through unchanged.
func (r *Registry) Call(ctx context.Context, name string, args map[string]any) (any, error) {
	r.mu.RLock()
	e, ok := r.tools[name]
	r.mu.RUnlock()

	if !ok {
		r.logger.Debug("tool not found in registry", "tool_name", name)
		return nil, fmt.Errorf("%w: %s", ErrToolNotFound, name)
	}
	if args == nil {
		args = map[string]any{}
	}
	return e.handler(ctx, args)
}

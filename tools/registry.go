// Package tools binds named, schema-described tool implementations into a
// dispatch table. A Registry is built once at setup time and only read
// afterwards: registration compiles each tool's argument type to its JSON
// Schema definition, and dispatch validates incoming payloads against that
// type before the handler runs.
package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/DrewRidley/aiform/core/protocol"
	"github.com/DrewRidley/aiform/schema"
)

// Handler is the function signature for tool implementations. Handlers
// receive the request context and the JSON-encoded arguments emitted by the
// model, and return the text result fed back into the next model turn.
type Handler func(ctx context.Context, args json.RawMessage) (string, error)

// Tool declares one registrable tool: a unique name, a description shown to
// the model, the argument type its payloads must satisfy, and the handler
// invoked on dispatch. Args may be nil for tools accepting free-form JSON.
type Tool struct {
	Name        string
	Description string
	Args        *schema.ArgumentType
	Handler     Handler
}

type entry struct {
	definition protocol.Tool
	args       *schema.ArgumentType
	handler    Handler
}

// Registry maps tool names to dispatchable entries. Registration order is
// preserved so Definitions is deterministic. Thread-safe for concurrent
// reads; intended to be fully populated before first dispatch.
type Registry struct {
	mu      sync.RWMutex
	gen     *schema.Generator
	entries map[string]entry
	order   []string
}

// NewRegistry creates an empty Registry with its own schema generator.
func NewRegistry() *Registry {
	return &Registry{
		gen:     schema.NewGenerator(),
		entries: make(map[string]entry),
	}
}

// Types returns the registry's schema generator. Shared named argument types
// must be defined on it before registering tools that reference them.
func (r *Registry) Types() *schema.Generator {
	return r.gen
}

// Register adds a tool to the registry, compiling its argument type to the
// JSON Schema definition sent to the model. Returns ErrAlreadyExists if a
// tool with the same name is registered.
func (r *Registry) Register(t Tool) error {
	if t.Name == "" {
		return ErrEmptyName
	}
	if t.Handler == nil {
		return fmt.Errorf("%w: %s", ErrNilHandler, t.Name)
	}

	var parameters map[string]any
	if t.Args != nil {
		if t.Args.Name != "" {
			if _, defined := r.gen.Lookup(t.Args.Name); !defined {
				if err := r.gen.Define(t.Args); err != nil {
					return fmt.Errorf("tool %s: %w", t.Name, err)
				}
			}
		}
		compiled, err := r.gen.Generate(t.Args)
		if err != nil {
			return fmt.Errorf("tool %s: %w", t.Name, err)
		}
		parameters = compiled
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.entries[t.Name]; exists {
		return fmt.Errorf("%w: %s", ErrAlreadyExists, t.Name)
	}

	r.entries[t.Name] = entry{
		definition: protocol.Tool{
			Name:        t.Name,
			Description: t.Description,
			Parameters:  parameters,
		},
		args:    t.Args,
		handler: t.Handler,
	}
	r.order = append(r.order, t.Name)
	return nil
}

// Len returns the number of registered tools.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.entries)
}

// Definitions returns the registered tool definitions in registration order.
// The slice is built fresh on every call so it always reflects the current
// registry contents.
func (r *Registry) Definitions() []protocol.Tool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	defs := make([]protocol.Tool, 0, len(r.order))
	for _, name := range r.order {
		defs = append(defs, r.entries[name].definition)
	}
	return defs
}

// Dispatch routes a tool call to the registered handler by name. The raw
// argument payload is decoded and validated against the tool's declared
// argument type before the handler runs; mismatches fail with
// ErrInvalidArguments and the handler is never invoked. Handler failures are
// wrapped as *ExecutionError. Dispatch does not retry.
func (r *Registry) Dispatch(ctx context.Context, name string, args json.RawMessage) (string, error) {
	r.mu.RLock()
	e, exists := r.entries[name]
	r.mu.RUnlock()

	if !exists {
		return "", fmt.Errorf("%w: %s", ErrNotFound, name)
	}

	if e.args != nil {
		var decoded any
		if err := json.Unmarshal(args, &decoded); err != nil {
			return "", fmt.Errorf("%w: %s: %v", ErrInvalidArguments, name, err)
		}
		if err := r.gen.Validate(e.args, decoded); err != nil {
			return "", fmt.Errorf("%w: %s: %v", ErrInvalidArguments, name, err)
		}
	}

	result, err := e.handler(ctx, args)
	if err != nil {
		return "", &ExecutionError{Name: name, Err: err}
	}

	return result, nil
}

package runloop

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/agencyboard/agentrun/modelio"
)

// PayloadFunc decodes a tool call's raw JSON input into the tool's own
// payload type. Validation happens here, at the dispatcher boundary, so
// tool handlers receive well-formed values.
type PayloadFunc func(raw json.RawMessage) (any, error)

// HandlerFunc runs one tool against its decoded payload.
type HandlerFunc func(ctx context.Context, payload any, ec ExecContext) (Result, error)

// RegisteredTool pairs a tool definition with its decoder and handler.
type RegisteredTool struct {
	Definition modelio.ToolDefinition
	Decode     PayloadFunc // nil falls back to map[string]any
	Run        HandlerFunc
}

// Registry is a Dispatcher that routes tool calls by name to registered
// handlers, decoding each call's input into the tool's typed payload first.
type Registry struct {
	tools map[string]*RegisteredTool
	mu    sync.RWMutex
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{tools: make(map[string]*RegisteredTool)}
}

// Register adds or replaces a tool in the registry.
func (r *Registry) Register(tool RegisteredTool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.tools[tool.Definition.Name] = &tool
}

// Get returns a registered tool by name, or nil if not found.
func (r *Registry) Get(name string) *RegisteredTool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.tools[name]
}

// Definitions returns all tool definitions for the model catalog.
func (r *Registry) Definitions() []modelio.ToolDefinition {
	r.mu.RLock()
	defer r.mu.RUnlock()
	defs := make([]modelio.ToolDefinition, 0, len(r.tools))
	for _, tool := range r.tools {
		defs = append(defs, tool.Definition)
	}
	return defs
}

// Names returns the names of all registered tools.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.tools))
	for name := range r.tools {
		names = append(names, name)
	}
	return names
}

// Count returns the number of registered tools.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.tools)
}

// Execute implements Dispatcher. Unknown tools and malformed inputs are
// reported as failed Results so the model can correct itself; only handler
// infrastructure errors propagate as faults.
func (r *Registry) Execute(ctx context.Context, call modelio.ToolCall, ec ExecContext) (Result, error) {
	tool := r.Get(call.Name)
	if tool == nil {
		return Result{OK: false, Message: fmt.Sprintf("unknown tool: %s", call.Name)}, nil
	}

	decode := tool.Decode
	if decode == nil {
		decode = decodeGeneric
	}
	payload, err := decode(call.Input)
	if err != nil {
		return Result{OK: false, Message: fmt.Sprintf("invalid input for %s: %v", call.Name, err)}, nil
	}

	return tool.Run(ctx, payload, ec)
}

// Payload returns a PayloadFunc that decodes into T with strict field
// checking. Use it for tools with a fixed input shape.
func Payload[T any]() PayloadFunc {
	return func(raw json.RawMessage) (any, error) {
		var v T
		if len(raw) == 0 {
			return v, nil
		}
		dec := json.NewDecoder(bytes.NewReader(raw))
		dec.DisallowUnknownFields()
		if err := dec.Decode(&v); err != nil {
			return nil, err
		}
		return v, nil
	}
}

// decodeGeneric is the fallback for genuinely open-ended tools.
func decodeGeneric(raw json.RawMessage) (any, error) {
	if len(raw) == 0 {
		return map[string]any{}, nil
	}
	var m map[string]any
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil, err
	}
	return m, nil
}

// Package dispatch runs the single-turn tool-dispatch loop: one user
// utterance, at most one model-selected tool call, one final answer.
package dispatch

import (
	"context"
	"encoding/json"
	"fmt"

	"quill/internal/domain"
	"quill/internal/tooling"
)

// Dispatcher resolves model tool calls against the registry. It validates the
// model-supplied JSON arguments against the tool's schema before execution;
// an unknown tool name or invalid arguments fail without the tool ever
// running.
type Dispatcher struct {
	registry *tooling.Registry
}

// NewDispatcher creates a dispatcher backed by the given registry.
// Panics if registry is nil.
func NewDispatcher(registry *tooling.Registry) *Dispatcher {
	if registry == nil {
		panic("dispatch: registry must not be nil")
	}
	return &Dispatcher{registry: registry}
}

// Definitions returns the tool definitions for the function-calling request.
func (d *Dispatcher) Definitions() []domain.ToolDefinition {
	return d.registry.Definitions()
}

// Handle looks up the called tool, validates the arguments against its JSON
// Schema, and executes it. The returned error wraps tooling.ErrUnknownTool
// when the model invented a name outside the registry.
func (d *Dispatcher) Handle(ctx context.Context, call domain.ToolCall) (*domain.ToolResult, error) {
	tool, err := d.registry.Get(call.Name)
	if err != nil {
		return nil, err
	}

	args := json.RawMessage(call.Arguments)
	if err := tooling.ValidateAgainstSchema(args, tool.Definition()); err != nil {
		return nil, fmt.Errorf("schema validation failed for tool %q: %w", call.Name, err)
	}

	return tool.Call(ctx, args)
}

package tooling

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"

	"quill/internal/domain"
)

// ErrUnknownTool is returned by Get for names the model invented. The
// dispatch loop treats it as a contract violation and fails loudly.
var ErrUnknownTool = errors.New("unknown tool")

// Registry holds SchemaTool implementations keyed by name. The dispatch loop
// uses it to enumerate tool definitions for the model and to resolve calls.
type Registry struct {
	tools map[string]SchemaTool
}

// NewRegistry returns an empty, ready-to-use registry.
func NewRegistry() *Registry {
	return &Registry{tools: make(map[string]SchemaTool)}
}

// Register adds a tool. Returns an error if the tool is nil, has an empty
// name, or a tool with the same name is already registered.
func (r *Registry) Register(tool SchemaTool) error {
	if tool == nil {
		return fmt.Errorf("tool must not be nil")
	}
	name := tool.Name()
	if name == "" {
		return fmt.Errorf("tool name must not be empty")
	}
	if _, exists := r.tools[name]; exists {
		return fmt.Errorf("tool %q is already registered", name)
	}
	r.tools[name] = tool
	return nil
}

// Get returns the tool with the given name, or ErrUnknownTool.
func (r *Registry) Get(name string) (SchemaTool, error) {
	tool, ok := r.tools[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownTool, name)
	}
	return tool, nil
}

// Len returns the number of registered tools.
func (r *Registry) Len() int {
	return len(r.tools)
}

// List returns all registered tools sorted by name.
func (r *Registry) List() []SchemaTool {
	out := make([]SchemaTool, 0, len(r.tools))
	for _, t := range r.tools {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name() < out[j].Name() })
	return out
}

// Definitions returns a domain.ToolDefinition for every registered tool,
// sorted by name, ready for the function-calling request.
func (r *Registry) Definitions() []domain.ToolDefinition {
	tools := r.List()
	out := make([]domain.ToolDefinition, 0, len(tools))
	for _, t := range tools {
		out = append(out, domain.ToolDefinition{
			Name:        t.Name(),
			Description: t.Description(),
			InputSchema: json.RawMessage(t.Definition()),
		})
	}
	return out
}

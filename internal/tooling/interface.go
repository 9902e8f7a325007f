// Package tooling defines the schema-described tools the model may invoke
// and the registry the dispatch loop draws them from.
package tooling

import (
	"context"
	"encoding/json"

	"quill/internal/domain"
)

// SchemaTool is a tool whose input is described by a JSON Schema generated
// from a Go struct. The dispatch loop passes Definition() to the completion
// provider and validates model-supplied arguments before calling Call().
type SchemaTool interface {
	// Name returns the unique tool name used in function-calling (e.g. "web_search").
	Name() string
	// Description returns a human-readable description for the LLM.
	Description() string
	// Definition returns the JSON Schema string for the tool's input struct.
	Definition() string
	// Call executes the tool with the given JSON arguments. Call does not
	// validate args; the dispatcher does that before invoking it.
	Call(ctx context.Context, args json.RawMessage) (*domain.ToolResult, error)
}
